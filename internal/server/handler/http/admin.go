package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

// AdminService defines the moderation operations.
type AdminService interface {
	// SetAccountStatus approves or rejects a registration.
	SetAccountStatus(ctx context.Context, userID int64, status models.AccountStatus) (models.User, error)
	// ReviewSection approves or rejects a restricted section awaiting review.
	// Approval applies the pending payload; remarks are kept either way.
	ReviewSection(ctx context.Context, userID int64, section models.SectionName, approve bool, remarks *string) (models.Profile, error)
}

// AdminHandler serves /api/admin, available to the ADMIN role only.
type AdminHandler struct {
	// AdminService performs the moderation operations.
	AdminService AdminService
	// Log records failed requests.
	Log          *zap.Logger
}

// SetStatus handles POST /api/admin/users/{id}/status with {"status": "..."}.
func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}
	var req struct {
		Status models.AccountStatus `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	u, err := h.AdminService.SetAccountStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		envelope
		User models.User `json:"user"`
	}{ok, u})
}

// ReviewSection handles POST /api/admin/users/{id}/sections/{section}/review
// with {"approve": bool, "admin_remarks": "..."}.
func (h *AdminHandler) ReviewSection(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}
	var req struct {
		Approve bool    `json:"approve"`
		Remarks *string `json:"admin_remarks"`
	}
	if !decode(w, r, &req) {
		return
	}
	section := models.SectionName(chi.URLParam(r, "section"))
	p, err := h.AdminService.ReviewSection(r.Context(), id, section, req.Approve, req.Remarks)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		envelope
		models.Profile
	}{ok, p})
}
