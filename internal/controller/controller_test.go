package controller

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/SergeyParamoshkin/postsclient/client"
	"github.com/SergeyParamoshkin/postsclient/internal/mockapi"
	"github.com/SergeyParamoshkin/postsclient/internal/model"
	"github.com/SergeyParamoshkin/postsclient/internal/store"
	"github.com/SergeyParamoshkin/postsclient/internal/user"
	"github.com/SergeyParamoshkin/postsclient/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

var creds = model.Credentials{Username: "peter", Password: "secret"}

type harness struct {
	ctrl   *Controller
	store  store.Store
	errors *observer.ObservedLogs
	url    string

	mutex sync.Mutex
	hits  map[string]int
}

func (h *harness) count(key string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return h.hits[key]
}

func (h *harness) reset() {
	h.mutex.Lock()
	h.hits = map[string]int{}
	h.mutex.Unlock()
}

func newStore(t *testing.T) store.Store {
	t.Helper()

	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "storage.json"))
	require.NoError(t, err)

	return st
}

func newController(t *testing.T, api API, st store.Store) (*Controller, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.ErrorLevel)

	return New(api, st, view.NewList(), zap.New(core).Sugar()), logs
}

// newHarness runs the controller against the mock API and counts the
// requests it receives by "METHOD /path".
func newHarness(t *testing.T, posts []*model.Post) *harness {
	t.Helper()

	app := mockapi.New(mockapi.Options{
		Secret: []byte("test-secret"),
		Posts:  posts,
		Users:  user.NewRegistry().WithCost(bcrypt.MinCost),
	})
	router := app.Router()

	h := &harness{hits: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mutex.Lock()
		h.hits[r.Method+" "+r.URL.Path]++
		h.mutex.Unlock()
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	h.url = srv.URL
	h.store = newStore(t)
	h.ctrl, h.errors = newController(t, &client.Client{}, h.store)

	return h
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, h.ctrl.RegisterUser(ctx, h.url, creds))
	require.NoError(t, h.ctrl.LoginUser(ctx, h.url, creds))
	h.reset()
}

func titles(l *view.List) []string {
	var out []string
	for _, b := range l.Blocks() {
		out = append(out, b.Title)
	}

	return out
}

func TestInitializeWithoutSavedURL(t *testing.T) {
	h := newHarness(t, nil)

	baseURL, err := h.ctrl.Initialize(context.Background())
	require.NoError(t, err)
	assert.Empty(t, baseURL)
	assert.Equal(t, 0, h.ctrl.List().Len())
	assert.Empty(t, h.hits)
}

func TestInitializeLoadsSavedURL(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, store.KeyAPIBaseURL, h.url))

	baseURL, err := h.ctrl.Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, h.url, baseURL)
	assert.Equal(t, 1, h.count("GET /posts"))
	assert.Equal(t, []string{"First post", "Second post"}, titles(h.ctrl.List()))
}

func TestLoadPostsRendersEveryPost(t *testing.T) {
	posts := []*model.Post{
		{ID: 1, Title: "<h1>one</h1>", Content: "a & b"},
		{ID: 5, Title: "two", Content: ""},
		{ID: 9, Title: "three", Content: "3"},
	}
	h := newHarness(t, posts)

	require.NoError(t, h.ctrl.LoadPosts(context.Background(), h.url))

	blocks := h.ctrl.List().Blocks()
	require.Len(t, blocks, len(posts))
	for i, p := range posts {
		assert.Equal(t, p.ID, blocks[i].ID)
		assert.Equal(t, p.Title, blocks[i].Title)
		assert.Equal(t, p.Content, blocks[i].Content)
		assert.NotNil(t, blocks[i].Delete)
	}
}

func TestLoadPostsEmpty(t *testing.T) {
	h := newHarness(t, []*model.Post{})
	h.ctrl.List().Replace([]view.Block{{ID: 99, Title: "stale"}})

	require.NoError(t, h.ctrl.LoadPosts(context.Background(), h.url))
	assert.Equal(t, 0, h.ctrl.List().Len())
	assert.Equal(t, 0, h.errors.Len())
}

func TestLoadPostsPersistsBaseURL(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	require.NoError(t, h.ctrl.LoadPosts(ctx, h.url))

	saved, ok, err := h.store.Get(ctx, store.KeyAPIBaseURL)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, h.url, saved)
}

func TestLoadPostsFailureKeepsList(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	deadURL := srv.URL
	srv.Close()

	st := newStore(t)
	ctrl, errs := newController(t, &client.Client{}, st)
	ctx := context.Background()
	before := []view.Block{{ID: 1, Title: "kept"}}
	ctrl.List().Replace(before)

	err := ctrl.LoadPosts(ctx, deadURL)
	assert.ErrorIs(t, err, client.ErrTransport)
	assert.Equal(t, []string{"kept"}, titles(ctrl.List()))
	assert.Equal(t, 1, errs.Len())

	saved, _, err := st.Get(ctx, store.KeyAPIBaseURL)
	require.NoError(t, err)
	assert.Equal(t, deadURL, saved, "base url is saved even when the load fails")
}

func TestLoadPostsParseFailureKeepsList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not the api</html>"))
	}))
	defer srv.Close()

	ctrl, errs := newController(t, &client.Client{}, newStore(t))
	ctrl.List().Replace([]view.Block{{ID: 1, Title: "kept"}})

	err := ctrl.LoadPosts(context.Background(), srv.URL)
	assert.ErrorIs(t, err, client.ErrDecode)
	assert.Equal(t, []string{"kept"}, titles(ctrl.List()))
	assert.Equal(t, 1, errs.Len())
}

func TestInvalidBaseURLSendsNothing(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	assert.ErrorIs(t, h.ctrl.LoadPosts(ctx, ""), ErrInvalidBaseURL)
	assert.ErrorIs(t, h.ctrl.RegisterUser(ctx, "api.test", creds), ErrInvalidBaseURL)
	assert.Empty(t, h.hits)
}

func TestAddPostRefreshesOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t)

	err := h.ctrl.AddPost(context.Background(), h.url, model.PostInput{Title: "Third post", Content: "third"})
	require.NoError(t, err)

	assert.Equal(t, 1, h.count("POST /posts"))
	assert.Equal(t, 1, h.count("GET /posts"))
	assert.Equal(t, []string{"First post", "Second post", "Third post"}, titles(h.ctrl.List()))
}

func TestAddPostWithoutTokenSendsNothing(t *testing.T) {
	h := newHarness(t, nil)

	err := h.ctrl.AddPost(context.Background(), h.url, model.PostInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Empty(t, h.hits)
	assert.Equal(t, 1, h.errors.Len())
}

func TestAddPostInvalidInput(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t)

	err := h.ctrl.AddPost(context.Background(), h.url, model.PostInput{Title: "t"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, h.hits)
}

func TestAddPostRejectedKeepsList(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, store.KeyToken, "bogus"))
	h.ctrl.List().Replace([]view.Block{{ID: 1, Title: "kept"}})

	err := h.ctrl.AddPost(ctx, h.url, model.PostInput{Title: "t", Content: "c"})
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, 0, h.count("GET /posts"))
	assert.Equal(t, []string{"kept"}, titles(h.ctrl.List()))
}

func TestDeletePostRefreshesOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t)

	require.NoError(t, h.ctrl.DeletePost(context.Background(), h.url, 1))

	assert.Equal(t, 1, h.count("DELETE /posts/1"))
	assert.Equal(t, 1, h.count("GET /posts"))
	assert.Equal(t, []string{"Second post"}, titles(h.ctrl.List()))
}

func TestDeleteControlOnBlock(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t)
	ctx := context.Background()

	require.NoError(t, h.ctrl.LoadPosts(ctx, h.url))
	block, ok := h.ctrl.List().Find(2)
	require.True(t, ok)

	require.NoError(t, block.Delete(ctx))
	assert.Equal(t, 1, h.count("DELETE /posts/2"))
	assert.Equal(t, []string{"First post"}, titles(h.ctrl.List()))
}

func TestDeleteUnknownPostLogsOnly(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t)

	err := h.ctrl.DeletePost(context.Background(), h.url, 42)
	assert.True(t, client.IsStatus(err, http.StatusNotFound))
	assert.Equal(t, 0, h.count("GET /posts"))
	assert.Equal(t, 1, h.errors.Len())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestDeleteScenario(t *testing.T) {
	type call struct{ method, url, auth string }
	var calls []call

	api := client.New(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls = append(calls, call{r.Method, r.URL.String(), r.Header.Get("Authorization")})

		body := `{"message":"Post with id '42' has been deleted successfully."}`
		if r.Method == http.MethodGet {
			body = `{"posts":[{"id":1,"title":"left","content":"over"}]}`
		}

		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    r,
		}, nil
	}))

	st := newStore(t)
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, store.KeyToken, "abc123"))
	ctrl, _ := newController(t, api, st)

	require.NoError(t, ctrl.DeletePost(ctx, "http://api.test", 42))

	require.Len(t, calls, 2)
	assert.Equal(t, call{http.MethodDelete, "http://api.test/posts/42", "Bearer abc123"}, calls[0])
	assert.Equal(t, http.MethodGet, calls[1].method)
	assert.Equal(t, "http://api.test/posts", calls[1].url)
	assert.Equal(t, []string{"left"}, titles(ctrl.List()))
}

func TestLoginPersistsToken(t *testing.T) {
	var paths []string
	api := client.New(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		paths = append(paths, r.URL.Path)

		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{"access_token":"tok-xyz","token_type":"bearer"}`)),
			Request:    r,
		}, nil
	}))

	st := newStore(t)
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, store.KeyToken, "old"))
	ctrl, _ := newController(t, api, st)

	require.NoError(t, ctrl.LoginUser(ctx, "http://api.test", creds))
	assert.Equal(t, []string{"/login"}, paths)

	token, ok, err := st.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok-xyz", token)

	settings, err := ctrl.Settings(ctx)
	require.NoError(t, err)
	assert.True(t, settings.LoggedIn)
}

func TestLoginAgainstMockPersistsIssuedToken(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, store.KeyToken, "old"))

	require.NoError(t, h.ctrl.RegisterUser(ctx, h.url, creds))
	require.NoError(t, h.ctrl.LoginUser(ctx, h.url, creds))

	token, _, err := h.store.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	assert.NotEqual(t, "old", token)
	assert.Len(t, strings.Split(token, "."), 3, "a signed JWT")
}

func TestFailedLoginKeepsToken(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, store.KeyToken, "old"))

	err := h.ctrl.LoginUser(ctx, h.url, model.Credentials{Username: "nobody", Password: "nope"})
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))

	token, _, err := h.store.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "old", token)
}

func TestRegisterChangesNothing(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.ctrl.List().Replace([]view.Block{{ID: 1, Title: "kept"}})

	require.NoError(t, h.ctrl.RegisterUser(ctx, h.url, creds))

	_, ok, err := h.store.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"kept"}, titles(h.ctrl.List()))
	assert.Equal(t, 1, h.count("POST /register"))
	assert.Equal(t, 0, h.count("GET /posts"))
}

func TestSearchRendersMatches(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.ctrl.SearchPosts(context.Background(), h.url, model.SearchQuery{Title: "second"}))
	assert.Equal(t, []string{"Second post"}, titles(h.ctrl.List()))
}

func TestUpdatePostRefreshesOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.login(t)

	err := h.ctrl.UpdatePost(context.Background(), h.url, 2, model.PostInput{Title: "Second, edited", Content: "new"})
	require.NoError(t, err)

	assert.Equal(t, 1, h.count("PUT /posts/2"))
	assert.Equal(t, 1, h.count("GET /posts"))
	assert.Equal(t, []string{"First post", "Second, edited"}, titles(h.ctrl.List()))
}
