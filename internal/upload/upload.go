// Package upload accepts a single image file per request, persists it to the
// object store under a timestamp-derived name, and serves stored files back.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tanakrit/postboard-backend/internal/store"
	"github.com/tanakrit/postboard-backend/internal/webutil"
)

const (
	// MaxFileSize caps a single uploaded file at 10 MiB.
	MaxFileSize = 10 << 20

	// PublicPrefix is the path prefix under which stored files are served.
	PublicPrefix = "/uploads/"
)

var (
	ErrTooLarge = errors.New("file too large")
	ErrNotImage = errors.New("file is not an image")
)

// ObjectStore is the file storage backend.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
}

// Handler stores and serves uploaded images.
type Handler struct {
	files ObjectStore
	log   *zap.Logger
}

func NewHandler(files ObjectStore, log *zap.Logger) *Handler {
	return &Handler{files: files, log: log}
}

// SaveFromForm stores the file uploaded under the given multipart field and
// returns its public retrieval path, or "" when the field carries no file.
func (h *Handler) SaveFromForm(r *http.Request, field string) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return "", nil
	}
	return h.save(r.Context(), headers[0])
}

func (h *Handler) save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxFileSize {
		return "", ErrTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	// Sniff the real content type instead of trusting the client header.
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}

	key := strconv.FormatInt(time.Now().UnixMilli(), 10) + strings.ToLower(filepath.Ext(fh.Filename))
	body := io.MultiReader(bytes.NewReader(head[:n]), f)
	if err := h.files.Upload(ctx, key, body, fh.Size, contentType); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return PublicPrefix + key, nil
}

// Serve streams a stored upload back to the client.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "file")

	data, contentType, err := h.files.Download(r.Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		webutil.Error(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		h.log.Error("upload download failed", zap.String("key", key), zap.Error(err))
		webutil.Error(w, http.StatusInternalServerError, "could not read file")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
