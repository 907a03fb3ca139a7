// Package home aggregates the four independently loaded sections of the
// home screen: summary, quick actions, feed and highlights.
//
// Each section fails and retries on its own. The feed is paginated with a
// fixed page size; appended pages are deduplicated by post id so the list
// never holds the same post twice, whatever order refreshes and appends
// settle in.
package home

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atinyakov/DigitalHouse/internal/client/state"
	"github.com/atinyakov/DigitalHouse/internal/models"
)

// PageSize is the number of feed items requested per page.
const PageSize = 20

// Source is the slice of the API the home screen reads from.
type Source interface {
	HomeSummary(ctx context.Context) (models.HomeSummary, error)
	QuickActions(ctx context.Context) (models.QuickActionCounts, error)
	Feed(ctx context.Context, page, limit int) (models.FeedPage, error)
	Highlights(ctx context.Context) (models.Highlights, error)
}

// FeedList is the accumulated feed.
type FeedList struct {
	Items []models.FeedItem
	// Page is the last page the server returned.
	Page int
	// Total is the server-reported number of items.
	Total int
}

// View is a consistent copy of every home section.
type View struct {
	Summary         state.Snapshot[models.HomeSummary]
	QuickActions    state.Snapshot[[]models.QuickAction]
	Feed            state.Snapshot[FeedList]
	FeedLoadingMore bool
	Highlights      state.Snapshot[models.Highlights]
}

// Home holds the home screen's state.
type Home struct {
	src Source
	log *zap.Logger

	summary      state.Section[models.HomeSummary]
	quickActions state.Section[[]models.QuickAction]
	feed         state.Section[FeedList]
	highlights   state.Section[models.Highlights]

	// moreMu makes the load-more guard and the in-flight mark one step.
	moreMu      sync.Mutex
	loadingMore bool
}

// New returns an idle Home reading from src.
func New(src Source, log *zap.Logger) *Home {
	if log == nil {
		log = zap.NewNop()
	}
	return &Home{src: src, log: log}
}

// View returns the current state of every section.
func (h *Home) View() View {
	h.moreMu.Lock()
	more := h.loadingMore
	h.moreMu.Unlock()

	return View{
		Summary:         h.summary.Snapshot(),
		QuickActions:    h.quickActions.Snapshot(),
		Feed:            h.feed.Snapshot(),
		FeedLoadingMore: more,
		Highlights:      h.highlights.Snapshot(),
	}
}

// Load fetches the summary, the first feed page and the highlights
// concurrently and waits for all of them to settle. Quick actions come from
// the summary. The first failure is returned; every failure is also kept in
// its section.
func (h *Home) Load(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return h.RetrySummary(ctx) })
	g.Go(func() error { return h.RetryFeed(ctx) })
	g.Go(func() error { return h.RetryHighlights(ctx) })
	return g.Wait()
}

// Refresh clears every section's error and reloads as Load does.
func (h *Home) Refresh(ctx context.Context) error {
	h.summary.ClearFailure()
	h.quickActions.ClearFailure()
	h.feed.ClearFailure()
	h.highlights.ClearFailure()
	return h.Load(ctx)
}

// RetrySummary reloads the summary. On success the quick action grid is
// rebuilt from its counts; if it fails and no summary was ever loaded, the
// counts are fetched on their own.
func (h *Home) RetrySummary(ctx context.Context) error {
	t := h.summary.Begin()
	s, err := h.src.HomeSummary(ctx)
	if err != nil {
		if !h.summary.Fail(t, state.FailureFrom(err, "Failed to load summary")) {
			h.log.Debug("stale summary failure dropped")
			return nil
		}
		if _, ok := h.summary.Data(); !ok {
			_ = h.RetryQuickActions(ctx)
		}
		return err
	}
	if h.summary.Resolve(t, s) {
		h.quickActions.Set(QuickActions(s.QuickActionCounts, s.UnreadMessagesCount))
	} else {
		h.log.Debug("stale summary dropped")
	}
	return nil
}

// RetryQuickActions fetches the module counters standalone.
func (h *Home) RetryQuickActions(ctx context.Context) error {
	t := h.quickActions.Begin()
	counts, err := h.src.QuickActions(ctx)
	if err != nil {
		h.quickActions.Fail(t, state.FailureFrom(err, "Failed to load quick actions"))
		return err
	}
	unread := 0
	if s, ok := h.summary.Data(); ok {
		unread = s.UnreadMessagesCount
	}
	h.quickActions.Resolve(t, QuickActions(counts, unread))
	return nil
}

// RetryFeed reloads feed page 1 and replaces the accumulated list.
func (h *Home) RetryFeed(ctx context.Context) error {
	t := h.feed.Begin()
	page, err := h.src.Feed(ctx, 1, PageSize)
	if err != nil {
		h.feed.Fail(t, state.FailureFrom(err, "Failed to load feed"))
		return err
	}
	if !h.feed.Resolve(t, appendPage(FeedList{}, page)) {
		h.log.Debug("stale feed page dropped", zap.Int("page", page.Page))
	}
	return nil
}

// RetryHighlights reloads the highlights.
func (h *Home) RetryHighlights(ctx context.Context) error {
	t := h.highlights.Begin()
	hl, err := h.src.Highlights(ctx)
	if err != nil {
		h.highlights.Fail(t, state.FailureFrom(err, "Failed to load highlights"))
		return err
	}
	h.highlights.Resolve(t, hl)
	return nil
}

// LoadMore fetches the next feed page and appends it. It issues no request
// and returns false when a feed load is already in flight, when the next
// page lies beyond the last page, or when every item is already loaded.
// Concurrent callers issue at most one request between them.
func (h *Home) LoadMore(ctx context.Context) bool {
	h.moreMu.Lock()
	list, _ := h.feed.Data()
	next, ok := nextPage(len(list.Items), list.Total)
	if h.loadingMore || h.feed.Loading() || !ok {
		h.moreMu.Unlock()
		return false
	}
	h.loadingMore = true
	t := h.feed.Peek()
	h.moreMu.Unlock()

	defer func() {
		h.moreMu.Lock()
		h.loadingMore = false
		h.moreMu.Unlock()
	}()

	page, err := h.src.Feed(ctx, next, PageSize)
	if err != nil {
		h.feed.Fail(t, state.FailureFrom(err, "Failed to load feed"))
		return true
	}
	if !h.feed.Apply(t, func(old FeedList) FeedList { return appendPage(old, page) }) {
		h.log.Debug("feed page dropped after refresh", zap.Int("page", next))
	}
	return true
}

// nextPage returns the page that follows loaded items and whether it may be
// requested.
func nextPage(loaded, total int) (int, bool) {
	next := loaded/PageSize + 1
	totalPages := (total + PageSize - 1) / PageSize
	if next > totalPages || loaded >= total {
		return next, false
	}
	return next, true
}

// appendPage returns list with page's items added, skipping ids already present.
func appendPage(list FeedList, page models.FeedPage) FeedList {
	seen := make(map[int64]struct{}, len(list.Items)+len(page.Items))
	items := make([]models.FeedItem, 0, len(list.Items)+len(page.Items))
	for _, it := range list.Items {
		seen[it.PostID] = struct{}{}
		items = append(items, it)
	}
	for _, it := range page.Items {
		if _, dup := seen[it.PostID]; dup {
			continue
		}
		seen[it.PostID] = struct{}{}
		items = append(items, it)
	}
	return FeedList{Items: items, Page: page.Page, Total: page.Total}
}
