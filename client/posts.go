package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SergeyParamoshkin/postsclient/internal/model"
)

// postList accepts both `{"posts": [...]}` and a bare array.
type postList []model.Post

func (l *postList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]model.Post)(l))
	}

	var wrapped struct {
		Posts *[]model.Post `json:"posts"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.Posts == nil {
		return fmt.Errorf("missing posts field")
	}
	*l = *wrapped.Posts

	return nil
}

// ListPosts fetches GET /posts.
func (c *Client) ListPosts(ctx context.Context, cfg Config) ([]model.Post, error) {
	req, err := c.newRequest(ctx, cfg, http.MethodGet, "/posts", nil, false)
	if err != nil {
		return nil, err
	}

	var posts postList
	if err := c.doJSON(req, &posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// SearchPosts fetches GET /posts/search with the non-empty query fields.
func (c *Client) SearchPosts(ctx context.Context, cfg Config, q model.SearchQuery) ([]model.Post, error) {
	values := url.Values{}
	if q.Title != "" {
		values.Set("title", q.Title)
	}
	if q.Content != "" {
		values.Set("content", q.Content)
	}

	path := "/posts/search"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}

	req, err := c.newRequest(ctx, cfg, http.MethodGet, path, nil, false)
	if err != nil {
		return nil, err
	}

	var posts postList
	if err := c.doJSON(req, &posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// CreatePost sends POST /posts. The returned post is nil when the backend
// answers with something other than a single post object.
func (c *Client) CreatePost(ctx context.Context, cfg Config, in model.PostInput) (*model.Post, error) {
	req, err := c.newRequest(ctx, cfg, http.MethodPost, "/posts", in, true)
	if err != nil {
		return nil, err
	}

	return c.doPost(req)
}

// UpdatePost sends PUT /posts/{id}.
func (c *Client) UpdatePost(ctx context.Context, cfg Config, id int64, in model.PostInput) (*model.Post, error) {
	req, err := c.newRequest(ctx, cfg, http.MethodPut, postPath(id), in, true)
	if err != nil {
		return nil, err
	}

	return c.doPost(req)
}

// DeletePost sends DELETE /posts/{id}. The reply body is ignored.
func (c *Client) DeletePost(ctx context.Context, cfg Config, id int64) error {
	req, err := c.newRequest(ctx, cfg, http.MethodDelete, postPath(id), nil, true)
	if err != nil {
		return err
	}

	_, err = c.do(req)

	return err
}

func (c *Client) doPost(req *http.Request) (*model.Post, error) {
	var raw json.RawMessage
	if err := c.doJSON(req, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}

	var post model.Post
	if err := json.Unmarshal(raw, &post); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrDecode, req.Method, req.URL, err)
	}

	return &post, nil
}

func postPath(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10)
}
