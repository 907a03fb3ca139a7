package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

// OptionsSource lists the selectable registration values.
type OptionsSource interface {
	// Locations lists the locations offered at registration.
	Locations(ctx context.Context) []models.Option
	// Kulams lists the kulams offered at registration.
	Kulams(ctx context.Context) []models.Option
}

// OptionsHandler serves the public /api/options endpoints.
type OptionsHandler struct {
	// Options supplies the option lists.
	Options OptionsSource
}

// Locations handles GET /api/options/locations.
func (h *OptionsHandler) Locations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		envelope
		Locations []models.Option `json:"locations"`
	}{ok, h.Options.Locations(r.Context())})
}

// Kulams handles GET /api/options/kulams.
func (h *OptionsHandler) Kulams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		envelope
		Kulams []models.Option `json:"kulams"`
	}{ok, h.Options.Kulams(r.Context())})
}
