package post

import (
	"net/http"

	"github.com/SergeyParamoshkin/postsclient/internal/errresponse"
	"github.com/SergeyParamoshkin/postsclient/internal/model"
	"github.com/SergeyParamoshkin/postsclient/internal/postrequest"
	"github.com/SergeyParamoshkin/postsclient/internal/postresponse"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

// Handler serves the posts resource.
type Handler struct {
	store  *Store
	logger *zap.SugaredLogger
}

func NewHandler(store *Store, logger *zap.SugaredLogger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		h.logger.Errorw("render response", "error", err)
	}
}

// ListPosts returns every post as `{"posts": [...]}`.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, postresponse.NewPostListResponse(h.store.List()))
}

// SearchPosts filters posts by the title and content query parameters.
func (h *Handler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	q := model.SearchQuery{
		Title:   r.URL.Query().Get("title"),
		Content: r.URL.Query().Get("content"),
	}

	h.render(w, r, postresponse.NewPostListResponse(h.store.Search(q)))
}

// CreatePost persists the posted Post and returns it
// back to the client as an acknowledgement.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	data := &postrequest.PostRequest{}
	if err := render.Bind(r, data); err != nil {
		h.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	post := h.store.New(*data.Title, *data.Content)
	h.logger.Infow("post created", "id", post.ID)

	render.Status(r, http.StatusCreated)
	h.render(w, r, postresponse.NewPostResponse(post))
}

// GetPost returns the Post loaded by PostCtx.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, postresponse.NewPostResponse(postFromContext(r.Context())))
}

// UpdatePost merges the sent fields into the existing Post.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	post := postFromContext(r.Context())

	data := &postrequest.PostRequest{}
	if err := render.Bind(r, data); err != nil {
		h.render(w, r, errresponse.ErrInvalidRequest(err))

		return
	}

	post, err := h.store.Update(post.ID, data.Title, data.Content)
	if err != nil {
		h.render(w, r, errresponse.ErrNotFound)

		return
	}

	h.render(w, r, postresponse.NewPostResponse(post))
}

// DeletePost removes an existing Post from the store.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	post := postFromContext(r.Context())

	if _, err := h.store.Remove(post.ID); err != nil {
		h.render(w, r, errresponse.ErrNotFound)

		return
	}
	h.logger.Infow("post deleted", "id", post.ID)

	h.render(w, r, postresponse.NewDeletedResponse(post.ID))
}
