package postdetail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/DigitalHouse/internal/client/state"
	"github.com/atinyakov/DigitalHouse/internal/models"
)

type fakeSource struct {
	mu sync.Mutex

	post     models.PostDetail
	comments []models.Comment
	nextID   int64

	likeCalls    int
	commentCalls int
	reports      []string
	deleted      bool

	likeGate    chan struct{}
	likeStarted chan struct{}
	likeErr     error
	commentErr  error
	postErr     error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		post: models.PostDetail{
			ID: 9, UserID: 2, PostType: models.PostMeetup, Title: gofakeit.Sentence(3),
			LikeCount: 4, CommentCount: 1,
			Author: models.PostAuthor{ID: 2, Name: gofakeit.Name()},
		},
		comments: []models.Comment{{ID: 1, PostID: 9, Body: "first"}},
		nextID:   100,
	}
}

func (f *fakeSource) Post(context.Context, int64) (models.PostDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.post, f.postErr
}

func (f *fakeSource) UpdatePost(_ context.Context, _ int64, req models.UpdatePostRequest) (models.PostDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Title != nil {
		f.post.Title = *req.Title
	}
	return f.post, nil
}

func (f *fakeSource) DeletePost(context.Context, int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = true
	return nil
}

func (f *fakeSource) LikePost(context.Context, int64) (models.LikeResult, error) {
	f.mu.Lock()
	f.likeCalls++
	gate, started := f.likeGate, f.likeStarted
	f.mu.Unlock()

	if gate != nil {
		started <- struct{}{}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.likeErr != nil {
		return models.LikeResult{}, f.likeErr
	}
	f.post.LikedByMe = !f.post.LikedByMe
	if f.post.LikedByMe {
		f.post.LikeCount++
	} else {
		f.post.LikeCount--
	}
	return models.LikeResult{Liked: f.post.LikedByMe, LikeCount: f.post.LikeCount}, nil
}

func (f *fakeSource) AddComment(_ context.Context, id int64, body string) (models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commentCalls++
	if f.commentErr != nil {
		return models.Comment{}, f.commentErr
	}
	f.nextID++
	c := models.Comment{ID: f.nextID, PostID: id, Body: body, CreatedAt: time.Now()}
	f.comments = append(f.comments, c)
	return c, nil
}

func (f *fakeSource) Comments(_ context.Context, _ int64, page, limit int) (models.CommentPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := append([]models.Comment(nil), f.comments...)
	return models.CommentPage{Items: items, Page: page, Limit: limit, Total: len(items)}, nil
}

func (f *fakeSource) ReportPost(_ context.Context, _ int64, reason string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, reason)
	return int64(len(f.reports)), nil
}

func loaded(t *testing.T, src *fakeSource) *Detail {
	t.Helper()
	d := New(src, 9, nil)
	require.NoError(t, d.Load(context.Background()))
	return d
}

func TestLoad(t *testing.T) {
	d := loaded(t, newFakeSource())
	v := d.View()
	assert.Equal(t, state.Success, v.Post.Phase)
	assert.Equal(t, int64(9), v.Post.Data.ID)
	assert.Equal(t, state.Success, v.Comments.Phase)
	assert.Equal(t, 1, v.Comments.Data.Total)
	assert.True(t, d.OwnedBy(2))
	assert.False(t, d.OwnedBy(3))
}

func TestLoad_FailureSkipsComments(t *testing.T) {
	src := newFakeSource()
	src.postErr = errors.New("down")
	d := New(src, 9, nil)

	require.Error(t, d.Load(context.Background()))
	v := d.View()
	assert.Equal(t, state.Error, v.Post.Phase)
	assert.Equal(t, "Failed to load post", v.Post.Failure.Message)
	assert.Equal(t, state.Idle, v.Comments.Phase)
}

func TestToggleLike_UsesServerResult(t *testing.T) {
	src := newFakeSource()
	d := loaded(t, src)
	ctx := context.Background()

	sent, err := d.ToggleLike(ctx)
	require.NoError(t, err)
	assert.True(t, sent)
	p := d.View().Post.Data
	assert.True(t, p.LikedByMe)
	assert.Equal(t, 5, p.LikeCount)

	sent, err = d.ToggleLike(ctx)
	require.NoError(t, err)
	assert.True(t, sent)
	p = d.View().Post.Data
	assert.False(t, p.LikedByMe)
	assert.Equal(t, 4, p.LikeCount)
}

func TestToggleLike_InFlightGuard(t *testing.T) {
	src := newFakeSource()
	d := loaded(t, src)
	ctx := context.Background()

	src.mu.Lock()
	src.likeGate = make(chan struct{})
	src.likeStarted = make(chan struct{}, 1)
	src.mu.Unlock()

	done := make(chan bool)
	go func() {
		sent, _ := d.ToggleLike(ctx)
		done <- sent
	}()
	<-src.likeStarted

	assert.True(t, d.View().Liking)
	assert.Equal(t, 4, d.View().Post.Data.LikeCount, "nothing changes before the server answers")

	sent, err := d.ToggleLike(ctx)
	require.NoError(t, err)
	assert.False(t, sent)

	close(src.likeGate)
	assert.True(t, <-done)
	assert.Equal(t, 1, src.likeCalls)
	assert.Equal(t, 5, d.View().Post.Data.LikeCount)
	assert.False(t, d.View().Liking)
}

func TestToggleLike_FailureLeavesPost(t *testing.T) {
	src := newFakeSource()
	d := loaded(t, src)
	src.likeErr = errors.New("nope")

	sent, err := d.ToggleLike(context.Background())
	assert.True(t, sent)
	require.Error(t, err)
	p := d.View().Post.Data
	assert.Equal(t, 4, p.LikeCount)
	assert.False(t, p.LikedByMe)
}

func TestToggleLike_NotLoaded(t *testing.T) {
	src := newFakeSource()
	d := New(src, 9, nil)
	_, err := d.ToggleLike(context.Background())
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Zero(t, src.likeCalls)
}

func TestAddComment(t *testing.T) {
	src := newFakeSource()
	d := loaded(t, src)

	sent, err := d.AddComment(context.Background(), "  Count me in  ")
	require.NoError(t, err)
	assert.True(t, sent)

	v := d.View()
	require.Len(t, v.Comments.Data.Items, 2)
	assert.Equal(t, "Count me in", v.Comments.Data.Items[1].Body)
	assert.Equal(t, 2, v.Comments.Data.Total)
	assert.Equal(t, 2, v.Post.Data.CommentCount)
}

func TestAddComment_RejectsEmptyAndFailure(t *testing.T) {
	src := newFakeSource()
	d := loaded(t, src)
	ctx := context.Background()

	_, err := d.AddComment(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyComment)
	assert.Zero(t, src.commentCalls)

	src.commentErr = errors.New("nope")
	_, err = d.AddComment(ctx, "hi")
	require.Error(t, err)
	v := d.View()
	assert.Len(t, v.Comments.Data.Items, 1)
	assert.Equal(t, 1, v.Post.Data.CommentCount)
}

func TestAddComment_BeforeCommentsLoaded(t *testing.T) {
	src := newFakeSource()
	d := New(src, 9, nil)

	_, err := d.AddComment(context.Background(), "early")
	require.NoError(t, err)
	v := d.View()
	assert.Len(t, v.Comments.Data.Items, 1)
	assert.Equal(t, 1, v.Comments.Data.Total)
	assert.False(t, v.Post.HasData)
}

func TestReport(t *testing.T) {
	src := newFakeSource()
	d := loaded(t, src)
	ctx := context.Background()

	_, err := d.Report(ctx, "")
	require.NoError(t, err)
	_, err = d.Report(ctx, "spam")
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultReportReason, "spam"}, src.reports)
}

func TestUpdateAndDelete(t *testing.T) {
	src := newFakeSource()
	d := loaded(t, src)
	ctx := context.Background()

	title := "Updated title"
	p, err := d.Update(ctx, models.UpdatePostRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, p.Title)
	assert.Equal(t, title, d.View().Post.Data.Title)

	require.NoError(t, d.Delete(ctx))
	assert.True(t, src.deleted)
	assert.False(t, d.View().Post.HasData)
}

func TestRefresh(t *testing.T) {
	src := newFakeSource()
	d := loaded(t, src)

	src.mu.Lock()
	src.post.LikeCount = 40
	src.comments = append(src.comments, models.Comment{ID: 2, Body: "second"})
	src.mu.Unlock()

	require.NoError(t, d.Refresh(context.Background()))
	v := d.View()
	assert.Equal(t, 40, v.Post.Data.LikeCount)
	assert.Len(t, v.Comments.Data.Items, 2)
}
