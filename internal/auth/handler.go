package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tanakrit/postboard-backend/internal/models"
	"github.com/tanakrit/postboard-backend/internal/store"
	"github.com/tanakrit/postboard-backend/internal/webutil"
)

// UserStore defines the user persistence needed by registration and login.
type UserStore interface {
	CreateUser(ctx context.Context, email, hashedPw, name string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users  UserStore
	secret []byte
	log    *zap.Logger
}

func NewHandler(users UserStore, secret []byte, log *zap.Logger) *Handler {
	return &Handler{users: users, secret: secret, log: log}
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webutil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		webutil.Error(w, http.StatusBadRequest, "email, password, and name are required")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.log.Error("password hash failed", zap.Error(err))
		webutil.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	if _, err := h.users.CreateUser(r.Context(), req.Email, string(hashed), req.Name); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			webutil.Error(w, http.StatusBadRequest, "email already in use")
			return
		}
		h.log.Error("create user failed", zap.Error(err))
		webutil.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	webutil.JSON(w, http.StatusCreated, map[string]string{"message": "registration successful"})
}

// Login authenticates a user and issues a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webutil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		webutil.Error(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.log.Error("user lookup failed", zap.Error(err))
		webutil.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		webutil.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := IssueToken(user.ID, user.Email, h.secret, TokenTTL)
	if err != nil {
		h.log.Error("token issue failed", zap.Error(err))
		webutil.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	webutil.JSON(w, http.StatusOK, map[string]string{"token": token})
}
