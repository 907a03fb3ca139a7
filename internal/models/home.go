package models

import "time"

// HomeUser is the signed-in user's header data.
type HomeUser struct {
	Name         string  `json:"name"`
	ProfileImage *string `json:"profileImage"`
	Verified     bool    `json:"verified"`
}

// QuickActionCounts are per-module counters used for badges.
type QuickActionCounts struct {
	TotalPosts          int `json:"totalPosts"`
	OpenJobs            int `json:"openJobs"`
	MarketplaceItems    int `json:"marketplaceItems"`
	MatrimonyProfiles   int `json:"matrimonyProfiles"`
	HelpingHandRequests int `json:"helpingHandRequests"`
	CommunityUpdates    int `json:"communityUpdates"`
}

// HomeSummary backs the header and welcome card.
type HomeSummary struct {
	User                     HomeUser
	QuickActionCounts        QuickActionCounts
	UnreadNotificationsCount int
	UnreadMessagesCount      int
}

// FeedAuthor is the author block of a feed item.
type FeedAuthor struct {
	Name         string  `json:"name"`
	ProfileImage *string `json:"profileImage"`
	Verified     bool    `json:"verified"`
}

// FeedCounts holds engagement counters of a feed item.
type FeedCounts struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

// FeedItem is one entry of the community feed.
type FeedItem struct {
	PostID      int64      `json:"postId"`
	PostType    PostType   `json:"postType"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	MediaURL    *string    `json:"mediaUrl"`
	CreatedAt   time.Time  `json:"createdAt"`
	Author      FeedAuthor `json:"author"`
	Counts      FeedCounts `json:"counts"`
}

// FeedPage is one offset/limit page of the feed.
type FeedPage struct {
	Items []FeedItem
	Page  int
	Limit int
	Total int
}

// HighlightItem is a pinned announcement, meetup or urgent help request.
type HighlightItem struct {
	PostID      int64      `json:"postId"`
	PostType    PostType   `json:"postType"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	MediaURL    *string    `json:"mediaUrl"`
	CreatedAt   time.Time  `json:"createdAt"`
	Pinned      bool       `json:"pinned,omitempty"`
	Urgent      bool       `json:"urgent,omitempty"`
	MeetupAt    *time.Time `json:"meetupAt,omitempty"`
}

// Highlights groups the three highlight lists of the home screen.
type Highlights struct {
	PinnedAnnouncements []HighlightItem
	UpcomingMeetups     []HighlightItem
	UrgentHelpRequests  []HighlightItem
}

// QuickAction is one tile of the quick action grid.
type QuickAction struct {
	ID         string
	Label      string
	BadgeCount int
	Primary    bool
}
