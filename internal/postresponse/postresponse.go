package postresponse

import (
	"fmt"
	"net/http"

	"github.com/SergeyParamoshkin/postsclient/internal/model"
)

// PostResponse is the response payload for the Post data model.
type PostResponse struct {
	*model.Post
}

func NewPostResponse(post *model.Post) *PostResponse {
	return &PostResponse{Post: post}
}

func (rd *PostResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// PostListResponse wraps a list as `{"posts": [...]}`.
type PostListResponse struct {
	Posts []*model.Post `json:"posts"`
}

func NewPostListResponse(posts []*model.Post) *PostListResponse {
	if posts == nil {
		posts = []*model.Post{}
	}

	return &PostListResponse{Posts: posts}
}

func (rd *PostListResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// DeletedResponse acknowledges a removed post.
type DeletedResponse struct {
	Message string `json:"message"`
}

func NewDeletedResponse(id int64) *DeletedResponse {
	return &DeletedResponse{Message: fmt.Sprintf("Post with id '%d' has been deleted successfully.", id)}
}

func (rd *DeletedResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
