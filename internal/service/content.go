package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/logger"
	"github.com/atinyakov/DigitalHouse/internal/models"
	"github.com/atinyakov/DigitalHouse/internal/repository"
)

// Paging defaults shared by the list endpoints.
const (
	DefaultLimit  = 10
	MaxLimit      = 50
	MaxPage       = 100_000
	highlightSize = 5
)

// Post messages.
const (
	MsgPostNotFound = "Post not found"
	MsgNotOwner     = "You can only modify your own posts"
)

// PostRepository stores posts and their engagement.
type PostRepository interface {
	CreatePost(ctx context.Context, p repository.PostRecord) (repository.PostRecord, error)
	Post(ctx context.Context, id int64) (repository.PostRecord, error)
	UpdatePost(ctx context.Context, id int64, fn func(*repository.PostRecord) error) (repository.PostRecord, error)
	DeletePost(ctx context.Context, id int64) error
	Posts(ctx context.Context, keep func(repository.PostRecord) bool) []repository.PostRecord
	Engagement(ctx context.Context, postID, viewer int64) repository.Engagement
	ToggleLike(ctx context.Context, postID, userID int64) (bool, int, error)
	AddComment(ctx context.Context, c repository.CommentRecord) (repository.CommentRecord, error)
	Comments(ctx context.Context, postID int64, offset, limit int) ([]repository.CommentRecord, int, error)
	AddReport(ctx context.Context, r repository.ReportRecord) (int64, error)
}

// ContentRepository is what ContentService needs from the store.
type ContentRepository interface {
	PostRepository
	UserByID(ctx context.Context, id int64) (repository.UserRecord, error)
}

// ContentService implements the home screen aggregates, posts, likes,
// comments and reports.
type ContentService struct {
	repo ContentRepository
	log  *zap.Logger
	now  func() time.Time
}

// NewContentService constructs a ContentService. A nil log discards output.
func NewContentService(repo ContentRepository, log *zap.Logger) *ContentService {
	return &ContentService{repo: repo, log: logger.OrNop(log), now: time.Now}
}

// Paging clamps 1-based page and limit query values so that
// (page-1)*limit cannot overflow.
func Paging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func (s *ContentService) author(ctx context.Context, id int64) models.PostAuthor {
	u, err := s.repo.UserByID(ctx, id)
	if err != nil {
		return models.PostAuthor{ID: id, Name: "Member"}
	}
	return models.PostAuthor{
		ID:           u.ID,
		Name:         u.FullName,
		ProfileImage: u.ProfileImage,
		Verified:     u.Status == models.AccountApproved,
	}
}

// Summary returns the header data and counters of the home screen.
func (s *ContentService) Summary(ctx context.Context, userID int64) (models.HomeSummary, error) {
	u, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return models.HomeSummary{}, notFound(err, "User not found")
	}
	return models.HomeSummary{
		User: models.HomeUser{
			Name:         u.FullName,
			ProfileImage: u.ProfileImage,
			Verified:     u.Status == models.AccountApproved,
		},
		QuickActionCounts: s.QuickActions(ctx),
	}, nil
}

func jobOpen(p repository.PostRecord) bool {
	return p.JobStatus == nil || !strings.EqualFold(*p.JobStatus, "CLOSED")
}

// QuickActions counts posts per module.
func (s *ContentService) QuickActions(ctx context.Context) models.QuickActionCounts {
	var c models.QuickActionCounts
	for _, p := range s.repo.Posts(ctx, nil) {
		c.TotalPosts++
		switch p.PostType {
		case models.PostJob:
			if jobOpen(p) {
				c.OpenJobs++
			}
		case models.PostMarketplace:
			c.MarketplaceItems++
		case models.PostMatrimony:
			c.MatrimonyProfiles++
		case models.PostHelpRequest:
			c.HelpingHandRequests++
		case models.PostAnnouncement:
			c.CommunityUpdates++
		}
	}
	return c
}

// Feed returns one page of every post, newest first.
func (s *ContentService) Feed(ctx context.Context, viewer int64, page, limit int) models.FeedPage {
	page, limit = Paging(page, limit)
	all := s.repo.Posts(ctx, nil)
	items := make([]models.FeedItem, 0, limit)
	for _, p := range repository.Window(all, (page-1)*limit, limit) {
		a := s.author(ctx, p.UserID)
		e := s.repo.Engagement(ctx, p.ID, viewer)
		items = append(items, models.FeedItem{
			PostID:      p.ID,
			PostType:    p.PostType,
			Title:       p.Title,
			Description: p.Description,
			MediaURL:    p.MediaURL,
			CreatedAt:   p.CreatedAt,
			Author:      models.FeedAuthor{Name: a.Name, ProfileImage: a.ProfileImage, Verified: a.Verified},
			Counts:      models.FeedCounts{Likes: e.Likes, Comments: e.Comments},
		})
	}
	return models.FeedPage{Items: items, Page: page, Limit: limit, Total: len(all)}
}

func highlight(p repository.PostRecord) models.HighlightItem {
	return models.HighlightItem{
		PostID:      p.ID,
		PostType:    p.PostType,
		Title:       p.Title,
		Description: p.Description,
		MediaURL:    p.MediaURL,
		CreatedAt:   p.CreatedAt,
		Pinned:      p.Pinned,
		Urgent:      p.Urgent,
		MeetupAt:    p.MeetupAt,
	}
}

func highlights(posts []repository.PostRecord) []models.HighlightItem {
	if len(posts) > highlightSize {
		posts = posts[:highlightSize]
	}
	out := make([]models.HighlightItem, len(posts))
	for i, p := range posts {
		out[i] = highlight(p)
	}
	return out
}

// Highlights returns pinned announcements, the soonest upcoming meetups and
// urgent help requests.
func (s *ContentService) Highlights(ctx context.Context) models.Highlights {
	now := s.now()
	pinned := s.repo.Posts(ctx, func(p repository.PostRecord) bool {
		return p.Pinned && p.PostType == models.PostAnnouncement
	})
	meetups := s.repo.Posts(ctx, func(p repository.PostRecord) bool {
		return p.PostType == models.PostMeetup && p.MeetupAt != nil && p.MeetupAt.After(now)
	})
	sort.SliceStable(meetups, func(i, j int) bool { return meetups[i].MeetupAt.Before(*meetups[j].MeetupAt) })
	urgent := s.repo.Posts(ctx, func(p repository.PostRecord) bool {
		return p.Urgent && p.PostType == models.PostHelpRequest
	})
	return models.Highlights{
		PinnedAnnouncements: highlights(pinned),
		UpcomingMeetups:     highlights(meetups),
		UrgentHelpRequests:  highlights(urgent),
	}
}

func (s *ContentService) detail(ctx context.Context, p repository.PostRecord, viewer int64) models.PostDetail {
	e := s.repo.Engagement(ctx, p.ID, viewer)
	return models.PostDetail{
		ID:           p.ID,
		UserID:       p.UserID,
		PostType:     p.PostType,
		Title:        p.Title,
		Description:  p.Description,
		MediaURL:     p.MediaURL,
		Pinned:       p.Pinned,
		Urgent:       p.Urgent,
		MeetupAt:     p.MeetupAt,
		JobStatus:    p.JobStatus,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Author:       s.author(ctx, p.UserID),
		LikeCount:    e.Likes,
		CommentCount: e.Comments,
		LikedByMe:    e.LikedByMe,
	}
}

// Post returns one post as seen by viewer.
func (s *ContentService) Post(ctx context.Context, viewer, id int64) (models.PostDetail, error) {
	p, err := s.repo.Post(ctx, id)
	if err != nil {
		return models.PostDetail{}, notFound(err, MsgPostNotFound)
	}
	return s.detail(ctx, p, viewer), nil
}

// CreatePost publishes a post by userID.
func (s *ContentService) CreatePost(ctx context.Context, userID int64, req models.CreatePostRequest) (models.PostDetail, error) {
	title := strings.TrimSpace(req.Title)
	switch {
	case !req.PostType.Valid():
		return models.PostDetail{}, fail(KindInvalid, "Invalid post type")
	case title == "":
		return models.PostDetail{}, fail(KindInvalid, "Title is required")
	}
	p, err := s.repo.CreatePost(ctx, repository.PostRecord{
		UserID:      userID,
		PostType:    req.PostType,
		Title:       title,
		Description: trimPtr(req.Description),
		MediaURL:    trimPtr(req.MediaURL),
		Pinned:      req.Pinned != nil && *req.Pinned,
		Urgent:      req.Urgent != nil && *req.Urgent,
		MeetupAt:    req.MeetupAt,
		JobStatus:   trimPtr(req.JobStatus),
	})
	if err != nil {
		return models.PostDetail{}, fmt.Errorf("create post: %w", err)
	}
	s.log.Info("post created", zap.Int64("post_id", p.ID), zap.Int64("user_id", userID))
	return s.detail(ctx, p, userID), nil
}

func (s *ContentService) owned(ctx context.Context, userID, id int64) error {
	p, err := s.repo.Post(ctx, id)
	if err != nil {
		return notFound(err, MsgPostNotFound)
	}
	if p.UserID != userID {
		return fail(KindForbidden, MsgNotOwner)
	}
	return nil
}

// UpdatePost edits a post owned by userID. Nil fields are left unchanged.
func (s *ContentService) UpdatePost(ctx context.Context, userID, id int64, req models.UpdatePostRequest) (models.PostDetail, error) {
	if err := s.owned(ctx, userID, id); err != nil {
		return models.PostDetail{}, err
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return models.PostDetail{}, fail(KindInvalid, "Title is required")
	}
	p, err := s.repo.UpdatePost(ctx, id, func(p *repository.PostRecord) error {
		if req.Title != nil {
			p.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			p.Description = trimPtr(req.Description)
		}
		if req.MediaURL != nil {
			p.MediaURL = trimPtr(req.MediaURL)
		}
		if req.Pinned != nil {
			p.Pinned = *req.Pinned
		}
		if req.Urgent != nil {
			p.Urgent = *req.Urgent
		}
		if req.MeetupAt != nil {
			p.MeetupAt = req.MeetupAt
		}
		if req.JobStatus != nil {
			p.JobStatus = trimPtr(req.JobStatus)
		}
		return nil
	})
	if err != nil {
		return models.PostDetail{}, notFound(err, MsgPostNotFound)
	}
	return s.detail(ctx, p, userID), nil
}

// DeletePost removes a post owned by userID.
func (s *ContentService) DeletePost(ctx context.Context, userID, id int64) error {
	if err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.DeletePost(ctx, id); err != nil {
		return notFound(err, MsgPostNotFound)
	}
	s.log.Info("post deleted", zap.Int64("post_id", id), zap.Int64("user_id", userID))
	return nil
}

// ToggleLike flips userID's like on a post.
func (s *ContentService) ToggleLike(ctx context.Context, userID, id int64) (models.LikeResult, error) {
	liked, n, err := s.repo.ToggleLike(ctx, id, userID)
	if err != nil {
		return models.LikeResult{}, notFound(err, MsgPostNotFound)
	}
	return models.LikeResult{Liked: liked, LikeCount: n}, nil
}

func (s *ContentService) comment(ctx context.Context, c repository.CommentRecord) models.Comment {
	return models.Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		UserID:    c.UserID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		Author:    s.author(ctx, c.UserID),
	}
}

// AddComment stores a comment by userID.
func (s *ContentService) AddComment(ctx context.Context, userID, id int64, body string) (models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.Comment{}, fail(KindInvalid, "Comment cannot be empty")
	}
	c, err := s.repo.AddComment(ctx, repository.CommentRecord{PostID: id, UserID: userID, Body: body})
	if err != nil {
		return models.Comment{}, notFound(err, MsgPostNotFound)
	}
	return s.comment(ctx, c), nil
}

// Comments returns one page of a post's comments, oldest first.
func (s *ContentService) Comments(ctx context.Context, id int64, page, limit int) (models.CommentPage, error) {
	page, limit = Paging(page, limit)
	recs, total, err := s.repo.Comments(ctx, id, (page-1)*limit, limit)
	if err != nil {
		return models.CommentPage{}, notFound(err, MsgPostNotFound)
	}
	items := make([]models.Comment, len(recs))
	for i, c := range recs {
		items[i] = s.comment(ctx, c)
	}
	return models.CommentPage{Items: items, Page: page, Limit: limit, Total: total}, nil
}

// Report flags a post for moderators and returns the report id.
func (s *ContentService) Report(ctx context.Context, userID, id int64, reason string) (int64, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return 0, fail(KindInvalid, "Reason is required")
	}
	rid, err := s.repo.AddReport(ctx, repository.ReportRecord{PostID: id, UserID: userID, Reason: reason})
	if err != nil {
		return 0, notFound(err, MsgPostNotFound)
	}
	s.log.Info("post reported", zap.Int64("post_id", id), zap.Int64("report_id", rid))
	return rid, nil
}
