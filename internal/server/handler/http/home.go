package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

// Headline is served by the public landing endpoint.
const Headline = "Connect with your community"

// HomeService defines the home screen aggregates.
type HomeService interface {
	// Summary returns the greeting, counters and badges of the home screen.
	Summary(ctx context.Context, userID int64) (models.HomeSummary, error)
	// QuickActions counts posts per quick action tile.
	QuickActions(ctx context.Context) models.QuickActionCounts
	// Feed returns one page of posts, newest first, as seen by viewer.
	Feed(ctx context.Context, viewer int64, page, limit int) models.FeedPage
	// Highlights returns pinned announcements, upcoming meetups and urgent help requests.
	Highlights(ctx context.Context) models.Highlights
}

// HomeHandler serves the home screen endpoints.
type HomeHandler struct {
	// HomeService builds the home screen data.
	HomeService HomeService
	// Log records failed requests.
	Log         *zap.Logger
}

type summaryResponse struct {
	envelope
	User                     models.HomeUser          `json:"user"`
	QuickActionCounts        models.QuickActionCounts `json:"quickActionCounts"`
	UnreadNotificationsCount int                      `json:"unreadNotificationsCount"`
	UnreadMessagesCount      int                      `json:"unreadMessagesCount"`
}

// Summary handles GET /api/home/summary.
func (h *HomeHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.HomeService.Summary(r.Context(), userID(r))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		envelope:                 ok,
		User:                     s.User,
		QuickActionCounts:        s.QuickActionCounts,
		UnreadNotificationsCount: s.UnreadNotificationsCount,
		UnreadMessagesCount:      s.UnreadMessagesCount,
	})
}

// QuickActions handles GET /api/home/quick-actions. The counters are
// top-level fields of the response.
func (h *HomeHandler) QuickActions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		envelope
		models.QuickActionCounts
	}{ok, h.HomeService.QuickActions(r.Context())})
}

// Feed handles GET /api/home/feed?page=&limit=.
func (h *HomeHandler) Feed(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	f := h.HomeService.Feed(r.Context(), userID(r), page, limit)
	writeJSON(w, http.StatusOK, struct {
		envelope
		Items []models.FeedItem `json:"items"`
		Page  int               `json:"page"`
		Limit int               `json:"limit"`
		Total int               `json:"total"`
	}{ok, f.Items, f.Page, f.Limit, f.Total})
}

// Highlights handles GET /api/home/highlights.
func (h *HomeHandler) Highlights(w http.ResponseWriter, r *http.Request) {
	hl := h.HomeService.Highlights(r.Context())
	writeJSON(w, http.StatusOK, struct {
		envelope
		PinnedAnnouncements []models.HighlightItem `json:"pinnedAnnouncements"`
		UpcomingMeetups     []models.HighlightItem `json:"upcomingMeetups"`
		UrgentHelpRequests  []models.HighlightItem `json:"urgentHelpRequests"`
	}{ok, hl.PinnedAnnouncements, hl.UpcomingMeetups, hl.UrgentHelpRequests})
}

// Landing handles the public GET /api/landing. It carries no ok flag.
func Landing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"headline": Headline})
}
