package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrTransport wraps failures to reach the backend or read its reply.
	ErrTransport = errors.New("transport error")
	// ErrDecode wraps replies that are not the JSON the call expects.
	ErrDecode = errors.New("decode error")
	// ErrNoAccessToken is returned by Login when the reply has no access_token.
	ErrNoAccessToken = errors.New("login response has no access_token")
)

// APIError is a reply with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}

	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// newAPIError picks the most specific message the backend offered.
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			e.Message = payload.Error
		case payload.Message != "":
			e.Message = payload.Message
		default:
			e.Message = payload.Status
		}

		return e
	}

	if len(body) > 0 && len(body) <= 256 {
		e.Message = strings.TrimSpace(string(body))
	}

	return e
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
