package post

import (
	"context"
	"net/http"
	"strconv"

	"github.com/SergeyParamoshkin/postsclient/internal/errresponse"
	"github.com/SergeyParamoshkin/postsclient/internal/model"
	"github.com/go-chi/chi/v5"
)

type ctxKey int8

const ctxKeyPost ctxKey = iota

// PostCtx middleware is used to load a Post object from
// the URL parameters passed through as the request. In case
// the Post could not be found, we stop here and return a 404.
func (h *Handler) PostCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
		if err != nil {
			h.render(w, r, errresponse.ErrNotFound)

			return
		}

		post, err := h.store.Get(id)
		if err != nil {
			h.render(w, r, errresponse.ErrNotFound)

			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyPost, post)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func postFromContext(ctx context.Context) *model.Post {
	// Handlers are only mounted behind PostCtx.
	// nolint
	return ctx.Value(ctxKeyPost).(*model.Post)
}
