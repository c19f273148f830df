// Package mockapi serves an in-memory implementation of the posts API the
// client talks to. Tests run it behind httptest and the CLI can start it for
// local use.
package mockapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/SergeyParamoshkin/postsclient/internal/errresponse"
	"github.com/SergeyParamoshkin/postsclient/internal/metrics"
	"github.com/SergeyParamoshkin/postsclient/internal/model"
	"github.com/SergeyParamoshkin/postsclient/internal/post"
	"github.com/SergeyParamoshkin/postsclient/internal/user"
	"github.com/SergeyParamoshkin/postsclient/internal/userpayload"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/docgen"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const ServiceName = "postsapi"

type CtxKey int8

const (
	CtxKeyLogger CtxKey = iota
	CtxKeyUser
)

var errMissingBearer = errors.New("missing bearer token")

type Options struct {
	Logger *zap.SugaredLogger
	Meter  metric.Meter
	Secret []byte
	// TokenTTL defaults to 24h.
	TokenTTL time.Duration
	// Posts seeds the store; nil starts with Fixtures.
	Posts []*model.Post
	Users *user.Registry
}

type App struct {
	sugarLogger *zap.SugaredLogger
	posts       *post.Handler
	users       *user.Registry
	tokens      *user.Tokens
	meter       metric.Meter
}

func New(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Meter == (metric.Meter{}) {
		opts.Meter = metrics.Meter(ServiceName)
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.Posts == nil {
		opts.Posts = post.Fixtures()
	}
	if opts.Users == nil {
		opts.Users = user.NewRegistry()
	}

	return &App{
		sugarLogger: opts.Logger,
		posts:       post.NewHandler(post.NewStore(opts.Posts...), opts.Logger),
		users:       opts.Users,
		tokens:      user.NewTokens(opts.Secret, opts.TokenTTL),
		meter:       opts.Meter,
	}
}

// Router builds the API routes.
func (a *App) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(a.Logger)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware(a.meter))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		logger := loggerFromContext(r.Context())
		logger.Infow("ping")
		if _, err := w.Write([]byte("pong")); err != nil {
			logger.Errorw(err.Error())
		}
	})

	r.Post("/register", a.Register)
	r.Post("/login", a.Login)

	// RESTy routes for "posts" resource
	r.Route("/posts", func(r chi.Router) {
		r.Get("/", a.posts.ListPosts)
		r.With(a.Authenticator).Post("/", a.posts.CreatePost)
		r.Get("/search", a.posts.SearchPosts)

		r.Route("/{postID}", func(r chi.Router) {
			r.Use(a.posts.PostCtx)
			r.Get("/", a.posts.GetPost)
			r.With(a.Authenticator).Put("/", a.posts.UpdatePost)
			r.With(a.Authenticator).Delete("/", a.posts.DeletePost)
		})
	})

	return r
}

// RoutesDoc renders the routes as markdown.
func (a *App) RoutesDoc() string {
	return docgen.MarkdownRoutesDoc(a.Router(), docgen.MarkdownOpts{
		ProjectPath: "github.com/SergeyParamoshkin/postsclient",
		Intro:       "Routes of the posts API mock.",
	})
}

func (a *App) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := a.sugarLogger.With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), CtxKeyLogger, logger)))
	})
}

func loggerFromContext(ctx context.Context) *zap.SugaredLogger {
	if logger, ok := ctx.Value(CtxKeyLogger).(*zap.SugaredLogger); ok {
		return logger
	}

	return zap.NewNop().Sugar()
}

// Authenticator middleware rejects requests without a valid bearer token.
func (a *App) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			a.render(w, r, errresponse.ErrUnauthorized(errMissingBearer))

			return
		}

		name, err := a.tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			a.render(w, r, errresponse.ErrUnauthorized(err))

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), CtxKeyUser, name)))
	})
}

func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	data := &userpayload.CredentialsRequest{}
	if err := render.Bind(r, data); err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	u, err := a.users.Register(data.Username, data.Password)
	if errors.Is(err, user.ErrExists) {
		a.render(w, r, errresponse.ErrConflict(err))

		return
	}
	if err != nil {
		a.render(w, r, errresponse.ErrInternal(err))

		return
	}
	loggerFromContext(r.Context()).Infow("user registered", "username", u.Name)

	render.Status(r, http.StatusCreated)
	a.render(w, r, userpayload.NewUserPayloadResponse(u))
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	data := &userpayload.CredentialsRequest{}
	if err := render.Bind(r, data); err != nil {
		a.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	u, err := a.users.Authenticate(data.Username, data.Password)
	if err != nil {
		a.render(w, r, errresponse.ErrUnauthorized(err))

		return
	}

	token, err := a.tokens.Issue(u)
	if err != nil {
		a.render(w, r, errresponse.ErrInternal(err))

		return
	}

	a.render(w, r, userpayload.NewLoginPayload(token))
}

func (a *App) render(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		loggerFromContext(r.Context()).Errorw("render response", "error", err)
	}
}
