package api

import (
	"context"
	"net/http"
	"time"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

type quickActionCountsWire struct {
	TotalPosts          *int `json:"totalPosts"`
	OpenJobs            *int `json:"openJobs"`
	MarketplaceItems    *int `json:"marketplaceItems"`
	MatrimonyProfiles   *int `json:"matrimonyProfiles"`
	HelpingHandRequests *int `json:"helpingHandRequests"`
	CommunityUpdates    *int `json:"communityUpdates"`
}

func (w *quickActionCountsWire) toModel() models.QuickActionCounts {
	if w == nil {
		return models.QuickActionCounts{}
	}
	return models.QuickActionCounts{
		TotalPosts:          valueOr(w.TotalPosts, 0),
		OpenJobs:            valueOr(w.OpenJobs, 0),
		MarketplaceItems:    valueOr(w.MarketplaceItems, 0),
		MatrimonyProfiles:   valueOr(w.MatrimonyProfiles, 0),
		HelpingHandRequests: valueOr(w.HelpingHandRequests, 0),
		CommunityUpdates:    valueOr(w.CommunityUpdates, 0),
	}
}

type summaryResponse struct {
	envelope
	User                     *models.HomeUser       `json:"user"`
	QuickActionCounts        *quickActionCountsWire `json:"quickActionCounts"`
	UnreadNotificationsCount *int                   `json:"unreadNotificationsCount"`
	UnreadMessagesCount      *int                   `json:"unreadMessagesCount"`
}

type quickActionsResponse struct {
	envelope
	quickActionCountsWire
}

type feedItemWire struct {
	PostID      *int64             `json:"postId"`
	PostType    models.PostType    `json:"postType"`
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	MediaURL    *string            `json:"mediaUrl"`
	CreatedAt   time.Time          `json:"createdAt"`
	Author      *models.FeedAuthor `json:"author"`
	Counts      *models.FeedCounts `json:"counts"`
}

type feedResponse struct {
	envelope
	Items []feedItemWire `json:"items"`
	Page  *int           `json:"page"`
	Limit *int           `json:"limit"`
	Total *int           `json:"total"`
}

type highlightsResponse struct {
	envelope
	PinnedAnnouncements []models.HighlightItem `json:"pinnedAnnouncements"`
	UpcomingMeetups     []models.HighlightItem `json:"upcomingMeetups"`
	UrgentHelpRequests  []models.HighlightItem `json:"urgentHelpRequests"`
}

// HomeSummary returns the header data and quick action counters.
func (a *API) HomeSummary(ctx context.Context) (models.HomeSummary, error) {
	const path, fallback = "/home/summary", "Failed to load home summary"

	var resp summaryResponse
	if err := a.call(ctx, http.MethodGet, path, nil, nil, &resp, fallback); err != nil {
		return models.HomeSummary{}, err
	}
	if resp.User == nil {
		return models.HomeSummary{}, decodeError(http.MethodGet, path, fallback, "missing user")
	}
	return models.HomeSummary{
		User:                     *resp.User,
		QuickActionCounts:        resp.QuickActionCounts.toModel(),
		UnreadNotificationsCount: valueOr(resp.UnreadNotificationsCount, 0),
		UnreadMessagesCount:      valueOr(resp.UnreadMessagesCount, 0),
	}, nil
}

// QuickActions returns the per-module counters on their own.
func (a *API) QuickActions(ctx context.Context) (models.QuickActionCounts, error) {
	var resp quickActionsResponse
	if err := a.call(ctx, http.MethodGet, "/home/quick-actions", nil, nil, &resp, "Failed to load quick actions"); err != nil {
		return models.QuickActionCounts{}, err
	}
	return resp.quickActionCountsWire.toModel(), nil
}

// Feed returns one page of the community feed.
func (a *API) Feed(ctx context.Context, page, limit int) (models.FeedPage, error) {
	const path, fallback = "/home/feed", "Failed to load feed"

	var resp feedResponse
	if err := a.call(ctx, http.MethodGet, path, pageQuery(page, limit), nil, &resp, fallback); err != nil {
		return models.FeedPage{}, err
	}

	items := make([]models.FeedItem, 0, len(resp.Items))
	for i, w := range resp.Items {
		if w.PostID == nil {
			return models.FeedPage{}, decodeError(http.MethodGet, path, fallback, "item %d: missing postId", i)
		}
		items = append(items, models.FeedItem{
			PostID:      *w.PostID,
			PostType:    w.PostType,
			Title:       w.Title,
			Description: w.Description,
			MediaURL:    w.MediaURL,
			CreatedAt:   w.CreatedAt,
			Author:      valueOr(w.Author, models.FeedAuthor{}),
			Counts:      valueOr(w.Counts, models.FeedCounts{}),
		})
	}

	return models.FeedPage{
		Items: items,
		Page:  valueOr(resp.Page, page),
		Limit: valueOr(resp.Limit, limit),
		Total: valueOr(resp.Total, 0),
	}, nil
}

// Highlights returns pinned announcements, upcoming meetups and urgent help requests.
func (a *API) Highlights(ctx context.Context) (models.Highlights, error) {
	var resp highlightsResponse
	if err := a.call(ctx, http.MethodGet, "/home/highlights", nil, nil, &resp, "Failed to load highlights"); err != nil {
		return models.Highlights{}, err
	}
	return models.Highlights{
		PinnedAnnouncements: nonNil(resp.PinnedAnnouncements),
		UpcomingMeetups:     nonNil(resp.UpcomingMeetups),
		UrgentHelpRequests:  nonNil(resp.UrgentHelpRequests),
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
