package http

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/middleware"
	"github.com/atinyakov/DigitalHouse/internal/models"
	"github.com/atinyakov/DigitalHouse/internal/repository"
)

// MediaService defines the upload operations required by the handlers.
type MediaService interface {
	// UploadURL validates an upload request and returns a presigned destination.
	UploadURL(ctx context.Context, userID int64, req models.UploadURLRequest) (models.UploadTarget, error)
	// HoroscopeUploadURL is UploadURL for horoscope documents.
	HoroscopeUploadURL(ctx context.Context, userID int64, req models.HoroscopeUploadRequest) (models.UploadTarget, error)
	// Accept stores body under key if sig grants that upload.
	Accept(ctx context.Context, key, sig, contentType string, body io.Reader) error
	// Object returns a stored upload.
	Object(ctx context.Context, key string) (repository.Object, error)
}

// MediaHandler serves presigned upload URLs and the uploaded objects.
type MediaHandler struct {
	// MediaService signs and stores uploads.
	MediaService MediaService
	// Log records failed requests.
	Log          *zap.Logger
}

func writeTarget(w http.ResponseWriter, log *zap.Logger, t models.UploadTarget, err error) {
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		envelope
		models.UploadTarget
	}{ok, t})
}

// UploadURL handles POST /api/media/upload-url.
func (h *MediaHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	var req models.UploadURLRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := h.MediaService.UploadURL(r.Context(), userID(r), req)
	writeTarget(w, h.Log, t, err)
}

// Put handles PUT /uploads/{key}?sig=. The signature stands in for a bearer
// token, like a presigned object storage URL.
func (h *MediaHandler) Put(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	sig := r.URL.Query().Get("sig")
	if key == "" || sig == "" {
		middleware.WriteError(w, http.StatusForbidden, "Missing upload signature")
		return
	}
	if err := h.MediaService.Accept(r.Context(), key, sig, r.Header.Get("Content-Type"), r.Body); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Get handles GET /uploads/{key}.
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.MediaService.Object(r.Context(), strings.TrimPrefix(chi.URLParam(r, "*"), "/"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.Header().Set("Content-Type", o.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(o.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(o.Data)
}
