package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SergeyParamoshkin/postsclient/internal/model"
)

// LoginResponse is the reply of POST /login. Raw keeps the whole body for
// logging since backends add fields of their own.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	Raw         json.RawMessage `json:"-"`
}

// Register sends POST /register without credentials and returns the reply
// verbatim.
func (c *Client) Register(ctx context.Context, cfg Config, creds model.Credentials) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, cfg, http.MethodPost, "/register", creds, false)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.doJSON(req, &raw); err != nil {
		return nil, err
	}

	return raw, nil
}

// Login sends POST /login. A successful reply must carry access_token.
func (c *Client) Login(ctx context.Context, cfg Config, creds model.Credentials) (*LoginResponse, error) {
	req, err := c.newRequest(ctx, cfg, http.MethodPost, "/login", creds, false)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.doJSON(req, &raw); err != nil {
		return nil, err
	}

	resp := &LoginResponse{Raw: raw}
	if err := json.Unmarshal(raw, resp); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrDecode, req.Method, req.URL, err)
	}
	if resp.AccessToken == "" {
		return nil, ErrNoAccessToken
	}

	return resp, nil
}
