package posts

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tanakrit/postboard-backend/internal/middleware"
	"github.com/tanakrit/postboard-backend/internal/models"
	"github.com/tanakrit/postboard-backend/internal/store"
	"github.com/tanakrit/postboard-backend/internal/upload"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

type fakePostStore struct {
	posts  []models.Post
	nextID int64
}

func (f *fakePostStore) CreatePost(_ context.Context, p *models.Post) (*models.Post, error) {
	f.nextID++
	p.ID = f.nextID
	f.posts = append(f.posts, *p)
	return p, nil
}

func (f *fakePostStore) ListPostsByUser(_ context.Context, userID string) ([]models.Post, error) {
	var out []models.Post
	for _, p := range f.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePostStore) UpdatePost(_ context.Context, id int64, userID, title, content string) error {
	for i, p := range f.posts {
		if p.ID == id && p.UserID == userID {
			f.posts[i].Title = title
			f.posts[i].Content = content
			return nil
		}
	}
	return store.ErrNotOwner
}

func (f *fakePostStore) DeletePost(_ context.Context, id int64, userID string) error {
	for i, p := range f.posts {
		if p.ID == id && p.UserID == userID {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return nil
		}
	}
	return store.ErrNotOwner
}

type fakeObjectStore struct {
	objects      map[string][]byte
	contentTypes map[string]string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (f *fakeObjectStore) Upload(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	f.contentTypes[key] = contentType
	return nil
}

func (f *fakeObjectStore) Download(_ context.Context, key string) ([]byte, string, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, "", store.ErrNotFound
	}
	return data, f.contentTypes[key], nil
}

func newTestHandler() (*Handler, *fakePostStore, *fakeObjectStore) {
	posts := &fakePostStore{}
	files := newFakeObjectStore()
	h := NewHandler(posts, upload.NewHandler(files, zap.NewNop()), zap.NewNop())
	return h, posts, files
}

func asUser(req *http.Request, userID, email string) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(),
		middleware.Identity{UserID: userID, Email: email}))
}

func withPostID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreate_JSONBody(t *testing.T) {
	h, posts, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/posts",
		strings.NewReader(`{"title":"hello","content":"world"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Create(rec, asUser(req, "u1", "a@x.com"))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.CreatedPost
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "hello", resp.Title)
	require.Equal(t, "a@x.com", resp.Author)
	require.Nil(t, resp.ImageURL)

	require.Len(t, posts.posts, 1)
	require.Equal(t, "u1", posts.posts[0].UserID)
}

func TestCreate_WithImage(t *testing.T) {
	h, posts, files := newTestHandler()

	imageBytes := append(append([]byte{}, pngHeader...), []byte("pixels")...)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "with pic"))
	require.NoError(t, mw.WriteField("content", "body"))
	fw, err := mw.CreateFormFile("image", "pic.png")
	require.NoError(t, err)
	_, err = fw.Write(imageBytes)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Create(rec, asUser(req, "u1", "a@x.com"))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.CreatedPost
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.ImageURL)
	require.True(t, strings.HasPrefix(*resp.ImageURL, upload.PublicPrefix))

	// The stored object must hold exactly the uploaded bytes.
	key := strings.TrimPrefix(*resp.ImageURL, upload.PublicPrefix)
	require.Equal(t, imageBytes, files.objects[key])

	require.Len(t, posts.posts, 1)
	require.Equal(t, *resp.ImageURL, *posts.posts[0].ImageURL)
}

func TestCreate_RejectsNonImageUpload(t *testing.T) {
	h, posts, _ := newTestHandler()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "t"))
	require.NoError(t, mw.WriteField("content", "c"))
	fw, err := mw.CreateFormFile("image", "evil.exe")
	require.NoError(t, err)
	_, err = fw.Write([]byte("MZ this is not an image at all"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Create(rec, asUser(req, "u1", "a@x.com"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, posts.posts)
}

func TestList_ScopedToOwner(t *testing.T) {
	h, posts, _ := newTestHandler()
	posts.posts = []models.Post{
		{ID: 1, Title: "mine", UserID: "u1", Author: "a@x.com"},
		{ID: 2, Title: "theirs", UserID: "u2", Author: "b@x.com"},
		{ID: 3, Title: "also mine", UserID: "u1", Author: "a@x.com"},
	}
	posts.nextID = 3

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rec := httptest.NewRecorder()
	h.List(rec, asUser(req, "u1", "a@x.com"))

	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	for _, p := range got {
		require.Equal(t, "u1", p.UserID)
	}
}

func TestList_EmptyIsArray(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rec := httptest.NewRecorder()
	h.List(rec, asUser(req, "u1", "a@x.com"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestUpdate_Owner(t *testing.T) {
	h, posts, _ := newTestHandler()
	posts.posts = []models.Post{{ID: 1, Title: "old", Content: "old", UserID: "u1"}}
	posts.nextID = 1

	req := httptest.NewRequest(http.MethodPut, "/api/posts/1",
		strings.NewReader(`{"title":"new","content":"fresh"}`))
	rec := httptest.NewRecorder()
	h.Update(rec, withPostID(asUser(req, "u1", "a@x.com"), "1"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "new", posts.posts[0].Title)
	require.Equal(t, "fresh", posts.posts[0].Content)
}

func TestUpdate_NotOwner(t *testing.T) {
	h, posts, _ := newTestHandler()
	posts.posts = []models.Post{{ID: 1, Title: "old", Content: "old", UserID: "u1"}}
	posts.nextID = 1

	req := httptest.NewRequest(http.MethodPut, "/api/posts/1",
		strings.NewReader(`{"title":"hijack","content":"x"}`))
	rec := httptest.NewRecorder()
	h.Update(rec, withPostID(asUser(req, "u2", "b@x.com"), "1"))

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "old", posts.posts[0].Title, "post must be left unmodified")
}

func TestUpdate_AbsentLooksLikeNotOwned(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPut, "/api/posts/99",
		strings.NewReader(`{"title":"t","content":"c"}`))
	rec := httptest.NewRecorder()
	h.Update(rec, withPostID(asUser(req, "u1", "a@x.com"), "99"))

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdate_BadID(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPut, "/api/posts/abc",
		strings.NewReader(`{"title":"t","content":"c"}`))
	rec := httptest.NewRecorder()
	h.Update(rec, withPostID(asUser(req, "u1", "a@x.com"), "abc"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDelete_Owner(t *testing.T) {
	h, posts, _ := newTestHandler()
	posts.posts = []models.Post{{ID: 1, UserID: "u1"}}
	posts.nextID = 1

	req := httptest.NewRequest(http.MethodDelete, "/api/posts/1", nil)
	rec := httptest.NewRecorder()
	h.Delete(rec, withPostID(asUser(req, "u1", "a@x.com"), "1"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, posts.posts)
}

func TestDelete_NotOwner(t *testing.T) {
	h, posts, _ := newTestHandler()
	posts.posts = []models.Post{{ID: 1, UserID: "u1"}}
	posts.nextID = 1

	req := httptest.NewRequest(http.MethodDelete, "/api/posts/1", nil)
	rec := httptest.NewRecorder()
	h.Delete(rec, withPostID(asUser(req, "u2", "b@x.com"), "1"))

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Len(t, posts.posts, 1, "post must be left in place")
}
