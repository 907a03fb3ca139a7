// Package http provides the HTTP handlers of the development backend. Every
// JSON response carries an "ok" flag; failures carry a "message".
package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/middleware"
	"github.com/atinyakov/DigitalHouse/internal/service"
)

// maxBody caps JSON request bodies.
const maxBody = 1 << 20

// envelope is embedded in every JSON response.
type envelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

var ok = envelope{OK: true}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var kindStatus = map[service.Kind]int{
	service.KindInvalid:      http.StatusBadRequest,
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindForbidden:    http.StatusForbidden,
	service.KindNotFound:     http.StatusNotFound,
	service.KindConflict:     http.StatusConflict,
	service.KindTooLarge:     http.StatusRequestEntityTooLarge,
}

// writeError maps a service error to its status. Unexpected errors are
// logged and answered with a generic message.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	if status, known := kindStatus[service.KindOf(err)]; known {
		middleware.WriteError(w, status, service.MessageOf(err))
		return
	}
	log.Error("request failed", zap.Error(err))
	middleware.WriteError(w, http.StatusInternalServerError, "internal error")
}

// decode reads a JSON body into dst and answers 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(dst); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request")
		return false
	}
	return true
}

// rawBody reads a JSON body verbatim and answers 400 when it is not JSON.
func rawBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil || !json.Valid(data) {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request")
		return nil, false
	}
	return data, true
}

// idParam parses a positive integer URL parameter and answers 400 otherwise.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// pageParams reads page and limit; missing or malformed values become 0
// and are clamped by the service.
func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}

func userID(r *http.Request) int64 {
	return middleware.GetUserIDFromContext(r.Context())
}
