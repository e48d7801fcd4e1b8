package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/tanakrit/postboard-backend/internal/middleware"
	"github.com/tanakrit/postboard-backend/internal/models"
	"github.com/tanakrit/postboard-backend/internal/store"
	"github.com/tanakrit/postboard-backend/internal/upload"
	"github.com/tanakrit/postboard-backend/internal/webutil"
)

// UserStore defines the user persistence needed by profile management.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, p models.ProfileUpdate) error
}

// Handler holds profile-related HTTP handlers.
type Handler struct {
	users   UserStore
	uploads *upload.Handler
	log     *zap.Logger
}

func NewHandler(users UserStore, uploads *upload.Handler, log *zap.Logger) *Handler {
	return &Handler{users: users, uploads: uploads, log: log}
}

// UpdateProfile applies a partial update to the caller's own profile. Name
// and email are required; phone number and profile picture change only when
// supplied.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		webutil.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(upload.MaxFileSize + 1<<20); err != nil {
			webutil.Error(w, http.StatusBadRequest, "invalid form data")
			return
		}
	} else if err := r.ParseForm(); err != nil {
		webutil.Error(w, http.StatusBadRequest, "invalid form data")
		return
	}

	name := r.FormValue("name")
	email := r.FormValue("email")
	if name == "" || email == "" {
		webutil.Error(w, http.StatusBadRequest, "name and email are required")
		return
	}

	update := models.ProfileUpdate{Name: name, Email: email}
	if number := r.FormValue("number"); number != "" {
		update.Number = &number
	}

	path, err := h.uploads.SaveFromForm(r, "profilePicture")
	if errors.Is(err, upload.ErrTooLarge) || errors.Is(err, upload.ErrNotImage) {
		webutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.Error("profile picture upload failed", zap.Error(err))
		webutil.Error(w, http.StatusInternalServerError, "could not store picture")
		return
	}
	if path != "" {
		update.Picture = &path
	}

	err = h.users.UpdateProfile(r.Context(), id.UserID, update)
	if errors.Is(err, store.ErrDuplicateEmail) {
		webutil.Error(w, http.StatusBadRequest, "email already in use")
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		webutil.Error(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.log.Error("profile update failed", zap.Error(err))
		webutil.Error(w, http.StatusInternalServerError, "could not update profile")
		return
	}

	webutil.JSON(w, http.StatusOK, map[string]string{"message": "profile updated"})
}

// Account returns the caller's own profile.
func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		webutil.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), id.UserID)
	if errors.Is(err, store.ErrNotFound) {
		webutil.Error(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.log.Error("account fetch failed", zap.Error(err))
		webutil.Error(w, http.StatusInternalServerError, "could not fetch account")
		return
	}

	webutil.JSON(w, http.StatusOK, models.Account{
		Email:   user.Email,
		Name:    user.Name,
		Picture: user.Picture,
		Number:  user.Number,
	})
}
