package models

import "time"

// PostType is the kind of a community post.
type PostType string

const (
	PostAnnouncement  PostType = "ANNOUNCEMENT"
	PostJob           PostType = "JOB"
	PostMarketplace   PostType = "MARKETPLACE"
	PostMatrimony     PostType = "MATRIMONY"
	PostAchievement   PostType = "ACHIEVEMENT"
	PostMeetup        PostType = "MEETUP"
	PostHelpRequest   PostType = "HELP_REQUEST"
	PostEntertainment PostType = "ENTERTAINMENT"
)

// PostTypes lists every post type in menu order.
var PostTypes = []PostType{
	PostAnnouncement, PostMeetup, PostAchievement, PostEntertainment,
	PostJob, PostMarketplace, PostMatrimony, PostHelpRequest,
}

var postTypeLabels = map[PostType]string{
	PostAnnouncement:  "Announcement",
	PostJob:           "Job",
	PostMarketplace:   "Marketplace",
	PostMatrimony:     "Matrimony",
	PostAchievement:   "Achievement",
	PostMeetup:        "Meetup",
	PostHelpRequest:   "Help Request",
	PostEntertainment: "Entertainment",
}

// Label returns the display label; unknown types are shown verbatim.
func (t PostType) Label() string {
	if l, ok := postTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Valid reports whether t is a known post type.
func (t PostType) Valid() bool {
	_, ok := postTypeLabels[t]
	return ok
}

// PostAuthor is the author block of a post or comment.
type PostAuthor struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	ProfileImage *string `json:"profile_image"`
	Verified     bool    `json:"verified"`
}

// PostDetail is the full view of a post as seen by the requesting user.
type PostDetail struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	PostType     PostType   `json:"post_type"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	MediaURL     *string    `json:"media_url"`
	Pinned       bool       `json:"pinned"`
	Urgent       bool       `json:"urgent"`
	MeetupAt     *time.Time `json:"meetup_at"`
	JobStatus    *string    `json:"job_status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Author       PostAuthor `json:"author"`
	LikeCount    int        `json:"like_count"`
	CommentCount int        `json:"comment_count"`
	LikedByMe    bool       `json:"liked_by_me"`
}

// Comment is one comment on a post.
type Comment struct {
	ID        int64      `json:"id"`
	PostID    int64      `json:"post_id"`
	UserID    int64      `json:"user_id"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	Author    PostAuthor `json:"author"`
}

// CommentPage is one page of a post's comments.
type CommentPage struct {
	Items []Comment
	Page  int
	Limit int
	Total int
}

// CreatePostRequest is the payload of POST /posts.
type CreatePostRequest struct {
	PostType    PostType   `json:"post_type"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	MediaURL    *string    `json:"media_url,omitempty"`
	Pinned      *bool      `json:"pinned,omitempty"`
	Urgent      *bool      `json:"urgent,omitempty"`
	MeetupAt    *time.Time `json:"meetup_at,omitempty"`
	JobStatus   *string    `json:"job_status,omitempty"`
}

// UpdatePostRequest is the payload of PUT /posts/:id; nil fields are left unchanged.
type UpdatePostRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	MediaURL    *string    `json:"media_url,omitempty"`
	Pinned      *bool      `json:"pinned,omitempty"`
	Urgent      *bool      `json:"urgent,omitempty"`
	MeetupAt    *time.Time `json:"meetup_at,omitempty"`
	JobStatus   *string    `json:"job_status,omitempty"`
}

// LikeResult is the server's view of the like after a toggle.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}
