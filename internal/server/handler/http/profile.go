package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

// ProfileService defines the profile operations required by ProfileHandler.
type ProfileService interface {
	// Profile returns the profile of userID.
	Profile(ctx context.Context, userID int64) (models.Profile, error)
	// UpdateProfile changes the top-level account fields.
	UpdateProfile(ctx context.Context, userID int64, req models.ProfileUpdateRequest) (models.Profile, error)
	// PutSection replaces one section. Restricted sections go to review.
	PutSection(ctx context.Context, userID int64, section models.SectionName, payload []byte) (models.Profile, error)
	// PatchSection merges top-level fields into one section.
	PatchSection(ctx context.Context, userID int64, section models.SectionName, payload []byte) (models.Profile, error)
	// Activity returns one page of a profile activity tab.
	Activity(ctx context.Context, userID int64, tab models.ActivityTab, page, limit int) (models.ActivityPage, error)
}

// ProfileHandler serves /api/profile.
type ProfileHandler struct {
	// ProfileService reads and edits profiles.
	ProfileService ProfileService
	// MediaService signs horoscope uploads.
	MediaService   MediaService
	// Log records failed requests.
	Log            *zap.Logger
}

func (h *ProfileHandler) writeProfile(w http.ResponseWriter, p models.Profile, err error) {
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		envelope
		models.Profile
	}{ok, p})
}

// Me handles GET /api/profile/me.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProfileService.Profile(r.Context(), userID(r))
	h.writeProfile(w, p, err)
}

// Update handles PUT /api/profile/me.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdateRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.ProfileService.UpdateProfile(r.Context(), userID(r), req)
	h.writeProfile(w, p, err)
}

// PutSection handles PUT /api/profile/{section}, replacing the section.
func (h *ProfileHandler) PutSection(w http.ResponseWriter, r *http.Request) {
	body, valid := rawBody(w, r)
	if !valid {
		return
	}
	section := models.SectionName(chi.URLParam(r, "section"))
	p, err := h.ProfileService.PutSection(r.Context(), userID(r), section, body)
	h.writeProfile(w, p, err)
}

// PatchSection handles PATCH /api/profile/me/sections/{section}.
func (h *ProfileHandler) PatchSection(w http.ResponseWriter, r *http.Request) {
	body, valid := rawBody(w, r)
	if !valid {
		return
	}
	section := models.SectionName(chi.URLParam(r, "section"))
	p, err := h.ProfileService.PatchSection(r.Context(), userID(r), section, body)
	h.writeProfile(w, p, err)
}

// Activity handles GET /api/profile/activity?tab=&page=&limit=. The tab
// defaults to the member's own posts.
func (h *ProfileHandler) Activity(w http.ResponseWriter, r *http.Request) {
	tab := models.ActivityTab(r.URL.Query().Get("tab"))
	if tab == "" {
		tab = models.ActivityMine
	}
	page, limit := pageParams(r)
	a, err := h.ProfileService.Activity(r.Context(), userID(r), tab, page, limit)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		envelope
		Items []models.ActivityItem `json:"items"`
		Page  int                   `json:"page"`
		Limit int                   `json:"limit"`
		Total int                   `json:"total"`
	}{ok, a.Items, a.Page, a.Limit, a.Total})
}

// HoroscopeUploadURL handles POST /api/profile/me/horoscope-upload-url.
func (h *ProfileHandler) HoroscopeUploadURL(w http.ResponseWriter, r *http.Request) {
	var req models.HoroscopeUploadRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := h.MediaService.HoroscopeUploadURL(r.Context(), userID(r), req)
	writeTarget(w, h.Log, t, err)
}
