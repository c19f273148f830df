package model

import (
	"github.com/go-playground/validator/v10"
)

// nolint
var validate = validator.New()

// Post data model. Posts are owned by the backend, the client only keeps
// the copy it last fetched.
type Post struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PostInput is the body of create and update requests.
type PostInput struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (p PostInput) Validate() error {
	return validate.Struct(p)
}

// SearchQuery holds the optional substrings matched against title and content.
type SearchQuery struct {
	Title   string
	Content string
}
