package repository

import (
	"context"
	"sort"
	"time"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

// PostRecord is a stored post.
type PostRecord struct {
	ID          int64
	UserID      int64
	PostType    models.PostType
	Title       string
	Description *string
	MediaURL    *string
	Pinned      bool
	Urgent      bool
	MeetupAt    *time.Time
	JobStatus   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CommentRecord is a stored comment.
type CommentRecord struct {
	ID        int64
	PostID    int64
	UserID    int64
	Body      string
	CreatedAt time.Time
}

// ReportRecord is a post flagged for moderators.
type ReportRecord struct {
	ID        int64
	PostID    int64
	UserID    int64
	Reason    string
	CreatedAt time.Time
}

// Engagement is the like and comment tally of a post for one viewer.
type Engagement struct {
	Likes     int
	Comments  int
	LikedByMe bool
}

// CreatePost stores p with a fresh id.
func (m *Memory) CreatePost(_ context.Context, p PostRecord) (PostRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.id()
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	m.posts[p.ID] = p
	return p, nil
}

// Post returns one post.
func (m *Memory) Post(_ context.Context, id int64) (PostRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.posts[id]
	if !ok {
		return PostRecord{}, ErrNotFound
	}
	return p, nil
}

// UpdatePost applies fn to a stored post and bumps its update time.
func (m *Memory) UpdatePost(_ context.Context, id int64, fn func(*PostRecord) error) (PostRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return PostRecord{}, ErrNotFound
	}
	if err := fn(&p); err != nil {
		return PostRecord{}, err
	}
	p.ID = id
	p.UpdatedAt = time.Now().UTC()
	m.posts[id] = p
	return p, nil
}

// DeletePost removes a post with its likes and comments.
func (m *Memory) DeletePost(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return ErrNotFound
	}
	delete(m.posts, id)
	delete(m.likes, id)
	delete(m.comments, id)
	return nil
}

// Posts returns the posts keep accepts, newest first. A nil keep accepts all.
func (m *Memory) Posts(_ context.Context, keep func(PostRecord) bool) []PostRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]PostRecord, 0, len(m.posts))
	for _, p := range m.posts {
		if keep == nil || keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// PostsLikedBy returns the posts userID likes, newest first.
func (m *Memory) PostsLikedBy(ctx context.Context, userID int64) []PostRecord {
	m.mu.RLock()
	liked := map[int64]bool{}
	for postID, users := range m.likes {
		if _, ok := users[userID]; ok {
			liked[postID] = true
		}
	}
	m.mu.RUnlock()
	return m.Posts(ctx, func(p PostRecord) bool { return liked[p.ID] })
}

// Engagement returns the tally of a post as seen by viewer.
func (m *Memory) Engagement(_ context.Context, postID, viewer int64) Engagement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, liked := m.likes[postID][viewer]
	return Engagement{
		Likes:     len(m.likes[postID]),
		Comments:  len(m.comments[postID]),
		LikedByMe: liked,
	}
}

// ToggleLike flips userID's like on a post and returns the new state and count.
func (m *Memory) ToggleLike(_ context.Context, postID, userID int64) (bool, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[postID]; !ok {
		return false, 0, ErrNotFound
	}
	users := m.likes[postID]
	if users == nil {
		users = map[int64]struct{}{}
		m.likes[postID] = users
	}
	_, liked := users[userID]
	if liked {
		delete(users, userID)
	} else {
		users[userID] = struct{}{}
	}
	return !liked, len(users), nil
}

// AddComment appends c to its post.
func (m *Memory) AddComment(_ context.Context, c CommentRecord) (CommentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[c.PostID]; !ok {
		return CommentRecord{}, ErrNotFound
	}
	c.ID = m.id()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	m.comments[c.PostID] = append(m.comments[c.PostID], c)
	return c, nil
}

// Comments returns a window of a post's comments, oldest first, and the total.
func (m *Memory) Comments(_ context.Context, postID int64, offset, limit int) ([]CommentRecord, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.posts[postID]; !ok {
		return nil, 0, ErrNotFound
	}
	all := m.comments[postID]
	return Window(all, offset, limit), len(all), nil
}

// AddReport stores a report and returns its id.
func (m *Memory) AddReport(_ context.Context, r ReportRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[r.PostID]; !ok {
		return 0, ErrNotFound
	}
	r.ID = m.id()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.reports = append(m.reports, r)
	return r.ID, nil
}

// Reports returns every report filed.
func (m *Memory) Reports(context.Context) []ReportRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ReportRecord(nil), m.reports...)
}

// Window returns a copy of s[offset:offset+limit], clamped to s.
func Window[T any](s []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s) || limit <= 0 {
		return []T{}
	}
	end := offset + limit
	if end > len(s) {
		end = len(s)
	}
	return append([]T(nil), s[offset:end]...)
}
