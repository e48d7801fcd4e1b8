package posts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tanakrit/postboard-backend/internal/middleware"
	"github.com/tanakrit/postboard-backend/internal/models"
	"github.com/tanakrit/postboard-backend/internal/store"
	"github.com/tanakrit/postboard-backend/internal/upload"
	"github.com/tanakrit/postboard-backend/internal/webutil"
)

// PostStore defines the post persistence used by the handlers. Update and
// delete are ownership-filtered: they return store.ErrNotOwner when the post
// is absent or owned by another user.
type PostStore interface {
	CreatePost(ctx context.Context, p *models.Post) (*models.Post, error)
	ListPostsByUser(ctx context.Context, userID string) ([]models.Post, error)
	UpdatePost(ctx context.Context, id int64, userID, title, content string) error
	DeletePost(ctx context.Context, id int64, userID string) error
}

// Handler holds post CRUD HTTP handlers.
type Handler struct {
	posts   PostStore
	uploads *upload.Handler
	log     *zap.Logger
}

func NewHandler(posts PostStore, uploads *upload.Handler, log *zap.Logger) *Handler {
	return &Handler{posts: posts, uploads: uploads, log: log}
}

// Create stores a new post owned by the caller, persisting the optional
// attached image first.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		webutil.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var title, content string
	var imageURL *string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(upload.MaxFileSize + 1<<20); err != nil {
			webutil.Error(w, http.StatusBadRequest, "invalid form data")
			return
		}
		title = r.FormValue("title")
		content = r.FormValue("content")

		path, err := h.uploads.SaveFromForm(r, "image")
		if errors.Is(err, upload.ErrTooLarge) || errors.Is(err, upload.ErrNotImage) {
			webutil.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			h.log.Error("image upload failed", zap.Error(err))
			webutil.Error(w, http.StatusInternalServerError, "could not store image")
			return
		}
		if path != "" {
			imageURL = &path
		}
	} else {
		var req models.CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			webutil.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
		title = req.Title
		content = req.Content
	}

	post := &models.Post{
		Title:    title,
		Content:  content,
		Author:   id.Email,
		ImageURL: imageURL,
		UserID:   id.UserID,
	}
	if _, err := h.posts.CreatePost(r.Context(), post); err != nil {
		h.log.Error("create post failed", zap.Error(err))
		webutil.Error(w, http.StatusInternalServerError, "could not create post")
		return
	}

	webutil.JSON(w, http.StatusCreated, models.CreatedPost{
		Message:  "post created",
		Title:    post.Title,
		Content:  post.Content,
		Author:   post.Author,
		ImageURL: post.ImageURL,
	})
}

// List returns all posts owned by the caller.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		webutil.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	posts, err := h.posts.ListPostsByUser(r.Context(), id.UserID)
	if err != nil {
		h.log.Error("list posts failed", zap.Error(err))
		webutil.Error(w, http.StatusInternalServerError, "could not fetch posts")
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	webutil.JSON(w, http.StatusOK, posts)
}

// Update changes title and content of a post the caller owns.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		webutil.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		webutil.Error(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var req models.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webutil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.posts.UpdatePost(r.Context(), postID, id.UserID, req.Title, req.Content)
	if errors.Is(err, store.ErrNotOwner) {
		webutil.Error(w, http.StatusForbidden, "you do not have permission to edit this post")
		return
	}
	if err != nil {
		h.log.Error("update post failed", zap.Int64("post_id", postID), zap.Error(err))
		webutil.Error(w, http.StatusInternalServerError, "could not update post")
		return
	}

	webutil.JSON(w, http.StatusOK, map[string]string{"message": "post updated"})
}

// Delete removes a post the caller owns.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		webutil.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		webutil.Error(w, http.StatusBadRequest, "invalid post id")
		return
	}

	err = h.posts.DeletePost(r.Context(), postID, id.UserID)
	if errors.Is(err, store.ErrNotOwner) {
		webutil.Error(w, http.StatusForbidden, "you do not have permission to delete this post")
		return
	}
	if err != nil {
		h.log.Error("delete post failed", zap.Int64("post_id", postID), zap.Error(err))
		webutil.Error(w, http.StatusInternalServerError, "could not delete post")
		return
	}

	webutil.JSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}
