package home

import "github.com/atinyakov/DigitalHouse/internal/models"

// Quick action ids.
const (
	ActionPosts       = "posts"
	ActionJobs        = "jobs"
	ActionMarketplace = "marketplace"
	ActionMatrimony   = "matrimony"
	ActionHelpingHand = "helping-hand"
	ActionCommunity   = "community"
	ActionMessages    = "messages"
	ActionCreate      = "create"
)

// QuickActions builds the quick action grid from module counters and the
// unread message count.
func QuickActions(c models.QuickActionCounts, unreadMessages int) []models.QuickAction {
	return []models.QuickAction{
		{ID: ActionPosts, Label: "Posts", BadgeCount: c.TotalPosts},
		{ID: ActionJobs, Label: "Jobs", BadgeCount: c.OpenJobs},
		{ID: ActionMarketplace, Label: "Marketplace", BadgeCount: c.MarketplaceItems},
		{ID: ActionMatrimony, Label: "Matrimony", BadgeCount: c.MatrimonyProfiles},
		{ID: ActionHelpingHand, Label: "Helping Hand", BadgeCount: c.HelpingHandRequests},
		{ID: ActionCommunity, Label: "Community Updates", BadgeCount: c.CommunityUpdates},
		{ID: ActionMessages, Label: "Messages", BadgeCount: unreadMessages},
		{ID: ActionCreate, Label: "Create Post", Primary: true},
	}
}
