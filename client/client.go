package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Config is the per-call target of a request: where to send it and which
// bearer token to attach.
type Config struct {
	BaseURL string
	Token   string
}

// Client talks to the posts REST API. The zero value uses a default
// http.Client and is ready to use.
type Client struct {
	http.Client
}

func New(transport http.RoundTripper) *Client {
	return &Client{Client: http.Client{Transport: transport}}
}

func (cfg Config) url(path string) string {
	return strings.TrimRight(cfg.BaseURL, "/") + path
}

// newRequest builds a request carrying a request id, a JSON body when
// payload is not nil and, when auth is set, the bearer token.
func (c *Client) newRequest(ctx context.Context, cfg Config, method, path string, payload interface{}, auth bool) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, cfg.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	return req, nil
}

// do sends req and returns the body of a 2xx response. Any other status is
// reported as an *APIError.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %v", ErrTransport, req.Method, req.URL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	return body, nil
}

// doJSON sends req and decodes a 2xx body into v.
func (c *Client) doJSON(req *http.Request, v interface{}) error {
	body, err := c.do(req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrDecode, req.Method, req.URL, err)
	}

	return nil
}

func (c *Client) Ping(ctx context.Context, cfg Config) (string, error) {
	req, err := c.newRequest(ctx, cfg, http.MethodGet, "/ping", nil, false)
	if err != nil {
		return "", err
	}

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	return string(body), nil
}
