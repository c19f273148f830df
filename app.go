package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SergeyParamoshkin/postsclient/client"
	"github.com/SergeyParamoshkin/postsclient/internal/config"
	"github.com/SergeyParamoshkin/postsclient/internal/controller"
	"github.com/SergeyParamoshkin/postsclient/internal/metrics"
	"github.com/SergeyParamoshkin/postsclient/internal/mockapi"
	"github.com/SergeyParamoshkin/postsclient/internal/model"
	"github.com/SergeyParamoshkin/postsclient/internal/store"
	"github.com/SergeyParamoshkin/postsclient/internal/view"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errNoBaseURL = errors.New("no API base URL saved, pass -url")

type App struct {
	sugarLogger *zap.SugaredLogger
	config      config.Config
	out         io.Writer
}

func (a *App) Run() error {
	if a.config.Command == "mock-server" {
		return a.serveMock()
	}

	st, err := store.Open(a.config.Store, a.config.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	exporter, err := metrics.Setup()
	if err != nil {
		return err
	}
	meter := exporter.MeterProvider().Meter(ServiceName)

	api := client.New(metrics.NewTransport(http.DefaultTransport, meter))
	ctrl := controller.New(api, st, view.NewList(), a.sugarLogger)

	ctx := context.Background()
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	err = a.dispatch(ctx, ctrl)
	if a.config.Debug {
		a.logMetrics(exporter)
	}

	return err
}

func (a *App) logMetrics(exporter http.Handler) {
	body, err := metrics.Scrape(exporter)
	if err != nil {
		a.sugarLogger.Debugw("metrics scrape failed", "error", err)
		return
	}
	a.sugarLogger.Debugw("client metrics", "exposition", body)
}

func (a *App) dispatch(ctx context.Context, ctrl *controller.Controller) error {
	cfg := a.config

	if cfg.Command == "" || cfg.Command == "init" {
		baseURL, err := ctrl.Initialize(ctx)
		if err != nil {
			return err
		}
		if baseURL == "" {
			return errNoBaseURL
		}

		return ctrl.List().Render(a.out)
	}

	if cfg.Command == "config" {
		settings, err := ctrl.Settings(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(a.out, "%s=%s\nlogged_in=%t\n", store.KeyAPIBaseURL, settings.BaseURL, settings.LoggedIn)

		return err
	}

	baseURL, err := a.baseURL(ctx, ctrl)
	if err != nil {
		return err
	}

	input := model.PostInput{Title: cfg.Title, Content: cfg.Content}
	creds := model.Credentials{Username: cfg.Username, Password: cfg.Password}

	switch cfg.Command {
	case "load":
		err = ctrl.LoadPosts(ctx, baseURL)
	case "add":
		err = ctrl.AddPost(ctx, baseURL, input)
	case "update":
		err = ctrl.UpdatePost(ctx, baseURL, cfg.ID, input)
	case "delete":
		err = ctrl.DeletePost(ctx, baseURL, cfg.ID)
	case "search":
		err = ctrl.SearchPosts(ctx, baseURL, model.SearchQuery{Title: cfg.Title, Content: cfg.Content})
	case "register":
		if err = ctrl.RegisterUser(ctx, baseURL, creds); err == nil {
			_, err = fmt.Fprintf(a.out, "registered %s\n", creds.Username)
		}

		return err
	case "login":
		if err = ctrl.LoginUser(ctx, baseURL, creds); err == nil {
			_, err = fmt.Fprintf(a.out, "logged in as %s\n", creds.Username)
		}

		return err
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
	if err != nil {
		return err
	}

	return ctrl.List().Render(a.out)
}

// baseURL is the -url flag, or the saved value like a prefilled form field.
func (a *App) baseURL(ctx context.Context, ctrl *controller.Controller) (string, error) {
	if a.config.BaseURL != "" {
		return a.config.BaseURL, nil
	}

	settings, err := ctrl.Settings(ctx)
	if err != nil {
		return "", err
	}
	if settings.BaseURL == "" {
		return "", errNoBaseURL
	}

	return settings.BaseURL, nil
}

func (a *App) serveMock() error {
	secret := a.config.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		a.sugarLogger.Infow("generated token secret, tokens will not survive a restart")
	}

	exporter, err := metrics.Setup()
	if err != nil {
		return fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}

	app := mockapi.New(mockapi.Options{
		Logger: a.sugarLogger,
		Meter:  metrics.Meter(mockapi.ServiceName),
		Secret: []byte(secret),
	})

	// Passing -routes prints the route docs instead of serving.
	if a.config.Routes {
		_, err := fmt.Fprintln(a.out, app.RoutesDoc())

		return err
	}

	diagRouter := chi.NewRouter()
	diagRouter.Get("/metrics", exporter.ServeHTTP)

	servers := []*http.Server{
		{Addr: a.config.Addr, Handler: app.Router()},
		{Addr: a.config.DiagAddr, Handler: diagRouter},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, len(servers))
	for _, srv := range servers {
		srv := srv
		go func() {
			a.sugarLogger.Infow("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err = <-errs:
		a.sugarLogger.Errorw(err.Error())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, srv := range servers {
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			a.sugarLogger.Errorw(shutdownErr.Error())
		}
	}

	return err
}
