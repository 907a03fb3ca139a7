// Package postdetail holds the state of one open post: the post itself, its
// first page of comments and the like and comment mutations.
//
// Mutations are not applied ahead of the server. A like toggle waits for the
// response and copies the server's count and flag; a new comment is appended
// and the counters incremented once the server has stored it.
package postdetail

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atinyakov/DigitalHouse/internal/client/state"
	"github.com/atinyakov/DigitalHouse/internal/models"
)

// CommentsPageSize is the number of comments loaded with a post.
const CommentsPageSize = 50

// DefaultReportReason is sent when a report carries no reason of its own.
const DefaultReportReason = "Reported by user"

var (
	// ErrEmptyComment is returned for a comment that is blank after trimming.
	ErrEmptyComment = errors.New("comment is empty")
	// ErrNotLoaded is returned by mutations attempted before the post loaded.
	ErrNotLoaded = errors.New("post not loaded")
)

// Source is the slice of the API a post detail needs.
type Source interface {
	Post(ctx context.Context, id int64) (models.PostDetail, error)
	UpdatePost(ctx context.Context, id int64, req models.UpdatePostRequest) (models.PostDetail, error)
	DeletePost(ctx context.Context, id int64) error
	LikePost(ctx context.Context, id int64) (models.LikeResult, error)
	AddComment(ctx context.Context, id int64, body string) (models.Comment, error)
	Comments(ctx context.Context, id int64, page, limit int) (models.CommentPage, error)
	ReportPost(ctx context.Context, id int64, reason string) (int64, error)
}

// Comments is the loaded comment list and the server's total.
type Comments struct {
	Items []models.Comment
	Total int
}

// View is a consistent copy of a Detail.
type View struct {
	Post       state.Snapshot[models.PostDetail]
	Comments   state.Snapshot[Comments]
	Liking     bool
	Commenting bool
}

// Detail is the state of one post.
type Detail struct {
	id  int64
	src Source
	log *zap.Logger

	post     state.Section[models.PostDetail]
	comments state.Section[Comments]

	mu         sync.Mutex
	liking     bool
	commenting bool
}

// New returns an idle Detail for post id.
func New(src Source, id int64, log *zap.Logger) *Detail {
	if log == nil {
		log = zap.NewNop()
	}
	return &Detail{id: id, src: src, log: log.With(zap.Int64("post_id", id))}
}

// ID returns the post id.
func (d *Detail) ID() int64 { return d.id }

// View returns the current state.
func (d *Detail) View() View {
	d.mu.Lock()
	liking, commenting := d.liking, d.commenting
	d.mu.Unlock()
	return View{
		Post:       d.post.Snapshot(),
		Comments:   d.comments.Snapshot(),
		Liking:     liking,
		Commenting: commenting,
	}
}

// Load fetches the post and, once it is available, its comments.
func (d *Detail) Load(ctx context.Context) error {
	if err := d.loadPost(ctx); err != nil {
		return err
	}
	return d.LoadComments(ctx)
}

// Refresh reloads the post and its comments concurrently and waits for both.
func (d *Detail) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return d.loadPost(ctx) })
	g.Go(func() error { return d.LoadComments(ctx) })
	return g.Wait()
}

func (d *Detail) loadPost(ctx context.Context) error {
	t := d.post.Begin()
	p, err := d.src.Post(ctx, d.id)
	if err != nil {
		d.post.Fail(t, state.FailureFrom(err, "Failed to load post"))
		return err
	}
	d.post.Resolve(t, p)
	return nil
}

// LoadComments replaces the comment list with the first page.
func (d *Detail) LoadComments(ctx context.Context) error {
	t := d.comments.Begin()
	page, err := d.src.Comments(ctx, d.id, 1, CommentsPageSize)
	if err != nil {
		d.comments.Fail(t, state.FailureFrom(err, "Failed to load comments"))
		return err
	}
	d.comments.Resolve(t, Comments{Items: page.Items, Total: page.Total})
	return nil
}

// ToggleLike flips the current user's like. It returns false without a
// request while another toggle is in flight. On success the post's like
// count and flag are taken from the response; on failure they are untouched.
func (d *Detail) ToggleLike(ctx context.Context) (bool, error) {
	if _, ok := d.post.Data(); !ok {
		return false, ErrNotLoaded
	}

	d.mu.Lock()
	if d.liking {
		d.mu.Unlock()
		return false, nil
	}
	d.liking = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.liking = false
		d.mu.Unlock()
	}()

	res, err := d.src.LikePost(ctx, d.id)
	if err != nil {
		d.log.Debug("like failed", zap.Error(err))
		return true, err
	}
	d.post.Update(func(p models.PostDetail) models.PostDetail {
		p.LikeCount = res.LikeCount
		p.LikedByMe = res.Liked
		return p
	})
	return true, nil
}

// AddComment submits body. It returns false without a request while another
// comment is being submitted. On success the stored comment is appended and
// both the list total and the post's comment count grow by one.
func (d *Detail) AddComment(ctx context.Context, body string) (bool, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return false, ErrEmptyComment
	}

	d.mu.Lock()
	if d.commenting {
		d.mu.Unlock()
		return false, nil
	}
	d.commenting = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.commenting = false
		d.mu.Unlock()
	}()

	c, err := d.src.AddComment(ctx, d.id, body)
	if err != nil {
		return true, err
	}

	add := func(cs Comments) Comments {
		items := make([]models.Comment, len(cs.Items), len(cs.Items)+1)
		copy(items, cs.Items)
		return Comments{Items: append(items, c), Total: cs.Total + 1}
	}
	if !d.comments.Update(add) {
		d.comments.Set(add(Comments{}))
	}
	d.post.Update(func(p models.PostDetail) models.PostDetail {
		p.CommentCount++
		return p
	})
	return true, nil
}

// Report flags the post. An empty reason sends DefaultReportReason.
func (d *Detail) Report(ctx context.Context, reason string) (int64, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultReportReason
	}
	return d.src.ReportPost(ctx, d.id, reason)
}

// OwnedBy reports whether the loaded post belongs to userID.
func (d *Detail) OwnedBy(userID int64) bool {
	p, ok := d.post.Data()
	return ok && p.UserID == userID
}

// Update edits the post and replaces the loaded copy with the server's.
func (d *Detail) Update(ctx context.Context, req models.UpdatePostRequest) (models.PostDetail, error) {
	p, err := d.src.UpdatePost(ctx, d.id, req)
	if err != nil {
		return models.PostDetail{}, err
	}
	d.post.Set(p)
	return p, nil
}

// Delete removes the post and clears local state.
func (d *Detail) Delete(ctx context.Context) error {
	if err := d.src.DeletePost(ctx, d.id); err != nil {
		return err
	}
	d.post.Reset()
	d.comments.Reset()
	return nil
}
