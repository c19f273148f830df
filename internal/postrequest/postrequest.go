package postrequest

import (
	"errors"
	"net/http"
)

// PostRequest is the request payload for the Post data model. Fields are
// pointers so a missing field can be told apart from an empty one.
type PostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`

	ProtectedID *int64 `json:"id"` // ids are assigned by the store
}

var (
	ErrMissingTitle   = errors.New("post's title is missing")
	ErrMissingContent = errors.New("post's content is missing")
)

// Bind checks a create request: both fields must be present.
func (p *PostRequest) Bind(r *http.Request) error {
	p.ProtectedID = nil

	if r.Method != http.MethodPost {
		return nil
	}
	if p.Title == nil {
		return ErrMissingTitle
	}
	if p.Content == nil {
		return ErrMissingContent
	}

	return nil
}
