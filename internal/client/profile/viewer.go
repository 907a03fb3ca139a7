package profile

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/client/state"
	"github.com/atinyakov/DigitalHouse/internal/models"
)

// ActivityPageSize is the number of rows loaded per activity tab.
const ActivityPageSize = 20

// ProfileSource loads the member profile.
type ProfileSource interface {
	Profile(ctx context.Context) (models.Profile, error)
}

// Viewer holds the read-only profile screen state.
type Viewer struct {
	src     ProfileSource
	log     *zap.Logger
	profile state.Section[models.Profile]
}

// NewViewer returns an idle Viewer.
func NewViewer(src ProfileSource, log *zap.Logger) *Viewer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Viewer{src: src, log: log}
}

// Load fetches the profile. A newer Load supersedes an older one still in flight.
func (v *Viewer) Load(ctx context.Context) {
	t := v.profile.Begin()
	p, err := v.src.Profile(ctx)
	if err != nil {
		v.log.Debug("profile load failed", zap.Error(err))
		v.profile.Fail(t, state.FailureFrom(err, "Failed to load profile"))
		return
	}
	v.profile.Resolve(t, p)
}

// Refetch reloads the profile, e.g. after returning from the editor.
func (v *Viewer) Refetch(ctx context.Context) { v.Load(ctx) }

// View returns the profile state.
func (v *Viewer) View() state.Snapshot[models.Profile] { return v.profile.Snapshot() }

// ActivitySource loads the profile activity tabs.
type ActivitySource interface {
	ProfileActivity(ctx context.Context, tab models.ActivityTab, page, limit int) (models.ActivityPage, error)
}

// Activity holds the selected activity tab and its first page.
type Activity struct {
	src  ActivitySource
	log  *zap.Logger
	page state.Section[models.ActivityPage]

	mu  sync.Mutex
	tab models.ActivityTab
}

// NewActivity returns an Activity showing the member's own posts.
func NewActivity(src ActivitySource, log *zap.Logger) *Activity {
	if log == nil {
		log = zap.NewNop()
	}
	return &Activity{src: src, log: log, tab: models.ActivityMine}
}

// Tab returns the selected tab.
func (a *Activity) Tab() models.ActivityTab {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tab
}

// SetTab selects tab and loads it.
func (a *Activity) SetTab(ctx context.Context, tab models.ActivityTab) {
	a.mu.Lock()
	a.tab = tab
	a.mu.Unlock()
	a.Load(ctx)
}

// Load fetches page 1 of the selected tab. A failure leaves an empty list.
func (a *Activity) Load(ctx context.Context) {
	tab := a.Tab()
	t := a.page.Begin()
	p, err := a.src.ProfileActivity(ctx, tab, 1, ActivityPageSize)
	if err != nil {
		a.log.Debug("activity load failed", zap.String("tab", string(tab)), zap.Error(err))
		a.page.Apply(t, func(models.ActivityPage) models.ActivityPage {
			return models.ActivityPage{Items: []models.ActivityItem{}, Page: 1, Limit: ActivityPageSize}
		})
		a.page.Fail(t, state.FailureFrom(err, "Failed to load activity"))
		return
	}
	a.page.Resolve(t, p)
}

// View returns the activity state.
func (a *Activity) View() state.Snapshot[models.ActivityPage] { return a.page.Snapshot() }
