// Package controller implements the user-facing operations of the posts
// client: each one reads its inputs, issues one request and reflects the
// outcome in the local store or the rendered post list.
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SergeyParamoshkin/postsclient/client"
	"github.com/SergeyParamoshkin/postsclient/internal/model"
	"github.com/SergeyParamoshkin/postsclient/internal/store"
	"github.com/SergeyParamoshkin/postsclient/internal/view"
	"go.uber.org/zap"
)

var (
	ErrInvalidBaseURL = errors.New("invalid API base URL")
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrInvalidInput   = errors.New("invalid input")
)

// API is the part of *client.Client the controller drives.
type API interface {
	ListPosts(ctx context.Context, cfg client.Config) ([]model.Post, error)
	SearchPosts(ctx context.Context, cfg client.Config, q model.SearchQuery) ([]model.Post, error)
	CreatePost(ctx context.Context, cfg client.Config, in model.PostInput) (*model.Post, error)
	UpdatePost(ctx context.Context, cfg client.Config, id int64, in model.PostInput) (*model.Post, error)
	DeletePost(ctx context.Context, cfg client.Config, id int64) error
	Register(ctx context.Context, cfg client.Config, creds model.Credentials) (json.RawMessage, error)
	Login(ctx context.Context, cfg client.Config, creds model.Credentials) (*client.LoginResponse, error)
}

type Controller struct {
	api    API
	store  store.Store
	list   *view.List
	logger *zap.SugaredLogger
}

func New(api API, st store.Store, list *view.List, logger *zap.SugaredLogger) *Controller {
	return &Controller{
		api:    api,
		store:  st,
		list:   list,
		logger: logger,
	}
}

// List is the container the posts are rendered into.
func (c *Controller) List() *view.List {
	return c.list
}

// Settings is the persisted configuration.
type Settings struct {
	BaseURL  string
	LoggedIn bool
}

func (c *Controller) Settings(ctx context.Context) (Settings, error) {
	baseURL, _, err := c.store.Get(ctx, store.KeyAPIBaseURL)
	if err != nil {
		return Settings{}, err
	}
	token, _, err := c.store.Get(ctx, store.KeyToken)
	if err != nil {
		return Settings{}, err
	}

	return Settings{BaseURL: baseURL, LoggedIn: token != ""}, nil
}

// Initialize restores the persisted base URL and, if there is one, loads the
// posts from it. It returns the restored URL, empty when none was saved.
func (c *Controller) Initialize(ctx context.Context) (string, error) {
	baseURL, _, err := c.store.Get(ctx, store.KeyAPIBaseURL)
	if err != nil {
		c.logger.Errorw("read saved base url", "error", err)

		return "", err
	}
	if baseURL == "" {
		return "", nil
	}

	return baseURL, c.LoadPosts(ctx, baseURL)
}

// LoadPosts saves baseURL, fetches the posts and replaces the rendered list.
// On failure the list keeps its previous contents.
func (c *Controller) LoadPosts(ctx context.Context, baseURL string) error {
	if err := c.store.Set(ctx, store.KeyAPIBaseURL, baseURL); err != nil {
		c.logger.Errorw("save base url", "error", err)

		return err
	}

	cfg, err := c.config(baseURL)
	if err != nil {
		return c.fail("load posts", err)
	}

	posts, err := c.api.ListPosts(ctx, cfg)
	if err != nil {
		return c.fail("load posts", err)
	}

	c.render(baseURL, posts)
	c.logger.Debugw("posts loaded", "count", len(posts))

	return nil
}

// SearchPosts renders only the posts matching q.
func (c *Controller) SearchPosts(ctx context.Context, baseURL string, q model.SearchQuery) error {
	cfg, err := c.config(baseURL)
	if err != nil {
		return c.fail("search posts", err)
	}

	posts, err := c.api.SearchPosts(ctx, cfg, q)
	if err != nil {
		return c.fail("search posts", err)
	}

	c.render(baseURL, posts)

	return nil
}

// AddPost creates a post and then reloads the list.
func (c *Controller) AddPost(ctx context.Context, baseURL string, in model.PostInput) error {
	if err := in.Validate(); err != nil {
		return c.fail("add post", fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}

	cfg, err := c.session(ctx, baseURL)
	if err != nil {
		return c.fail("add post", err)
	}

	post, err := c.api.CreatePost(ctx, cfg, in)
	if err != nil {
		return c.fail("add post", err)
	}
	c.logger.Infow("post added", "post", post)

	return c.LoadPosts(ctx, baseURL)
}

// UpdatePost replaces a post's title and content and then reloads the list.
func (c *Controller) UpdatePost(ctx context.Context, baseURL string, id int64, in model.PostInput) error {
	if err := in.Validate(); err != nil {
		return c.fail("update post", fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}

	cfg, err := c.session(ctx, baseURL)
	if err != nil {
		return c.fail("update post", err)
	}

	post, err := c.api.UpdatePost(ctx, cfg, id, in)
	if err != nil {
		return c.fail("update post", err)
	}
	c.logger.Infow("post updated", "post", post)

	return c.LoadPosts(ctx, baseURL)
}

// DeletePost deletes a post and then reloads the list.
func (c *Controller) DeletePost(ctx context.Context, baseURL string, id int64) error {
	cfg, err := c.session(ctx, baseURL)
	if err != nil {
		return c.fail("delete post", err)
	}

	if err := c.api.DeletePost(ctx, cfg, id); err != nil {
		return c.fail("delete post", err)
	}
	c.logger.Infow("post deleted", "id", id)

	return c.LoadPosts(ctx, baseURL)
}

// RegisterUser creates an account. Neither the list nor the session change.
func (c *Controller) RegisterUser(ctx context.Context, baseURL string, creds model.Credentials) error {
	if err := creds.Validate(); err != nil {
		return c.fail("register user", fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}

	cfg, err := c.config(baseURL)
	if err != nil {
		return c.fail("register user", err)
	}

	resp, err := c.api.Register(ctx, cfg, creds)
	if err != nil {
		return c.fail("register user", err)
	}
	c.logger.Infow("user registered", "username", creds.Username, "response", string(resp))

	return nil
}

// LoginUser stores the access token of a successful login. A failed login
// leaves the stored token as it was.
func (c *Controller) LoginUser(ctx context.Context, baseURL string, creds model.Credentials) error {
	if err := creds.Validate(); err != nil {
		return c.fail("login user", fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}

	cfg, err := c.config(baseURL)
	if err != nil {
		return c.fail("login user", err)
	}

	resp, err := c.api.Login(ctx, cfg, creds)
	if err != nil {
		return c.fail("login user", err)
	}

	if err := c.store.Set(ctx, store.KeyToken, resp.AccessToken); err != nil {
		return c.fail("login user", err)
	}
	c.logger.Infow("user logged in", "username", creds.Username)

	return nil
}

func (c *Controller) config(baseURL string) (client.Config, error) {
	if err := (model.Endpoint{BaseURL: baseURL}).Validate(); err != nil {
		return client.Config{}, fmt.Errorf("%w %q", ErrInvalidBaseURL, baseURL)
	}

	return client.Config{BaseURL: baseURL}, nil
}

// session is config plus the stored token, which mutating calls require.
func (c *Controller) session(ctx context.Context, baseURL string) (client.Config, error) {
	cfg, err := c.config(baseURL)
	if err != nil {
		return cfg, err
	}

	token, _, err := c.store.Get(ctx, store.KeyToken)
	if err != nil {
		return cfg, err
	}
	if token == "" {
		return cfg, ErrNotLoggedIn
	}
	cfg.Token = token

	return cfg, nil
}

func (c *Controller) render(baseURL string, posts []model.Post) {
	blocks := make([]view.Block, 0, len(posts))
	for _, p := range posts {
		id := p.ID
		blocks = append(blocks, view.Block{
			ID:      p.ID,
			Title:   p.Title,
			Content: p.Content,
			Delete: func(ctx context.Context) error {
				return c.DeletePost(ctx, baseURL, id)
			},
		})
	}

	c.list.Replace(blocks)
}

func (c *Controller) fail(op string, err error) error {
	c.logger.Errorw(op, "error", err)

	return fmt.Errorf("%s: %w", op, err)
}
