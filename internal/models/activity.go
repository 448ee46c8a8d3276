package models

import (
	"fmt"
	"time"
)

// ActivitySummary is the unit of the unified activity feed: one commitment
// (a gathering, a resource request, an unread message, a shoutout) normalized
// into a common shape and ranked by urgency.
type ActivitySummary struct {
	ID           string         `json:"id"`
	Type         ActivityType   `json:"type"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	UrgencyLevel UrgencyLevel   `json:"urgency_level"`
	DueDate      *time.Time     `json:"due_date,omitempty"`
	EntityID     string         `json:"entity_id"`
	CommunityID  string         `json:"community_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// ActivityType discriminates the per-source variants of the feed.
type ActivityType string

const (
	ActivityEventUpcoming    ActivityType = "event_upcoming"
	ActivityResourcePending  ActivityType = "resource_pending"
	ActivityResourceAccepted ActivityType = "resource_accepted"
	ActivityMessageUnread    ActivityType = "message_unread"
	ActivityShoutoutReceived ActivityType = "shoutout_received"
)

// Valid reports whether the type is one of the known variants.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityEventUpcoming, ActivityResourcePending, ActivityResourceAccepted,
		ActivityMessageUnread, ActivityShoutoutReceived:
		return true
	}
	return false
}

// UrgencyLevel is the per-item severity ranking used for feed ordering.
type UrgencyLevel string

const (
	UrgencyUrgent UrgencyLevel = "urgent"
	UrgencySoon   UrgencyLevel = "soon"
	UrgencyNormal UrgencyLevel = "normal"
)

// Rank maps urgency to a sortable weight; higher sorts first.
func (u UrgencyLevel) Rank() int {
	switch u {
	case UrgencyUrgent:
		return 2
	case UrgencySoon:
		return 1
	default:
		return 0
	}
}

// Section is one of the badge buckets derived from classification.
type Section string

const (
	SectionNeedsAttention Section = "needs_attention"
	SectionInProgress     Section = "in_progress"
	SectionUpcoming       Section = "upcoming"
	SectionRecent         Section = "recent"
)

// ParseSection converts a query-string value into a Section.
func ParseSection(raw string) (Section, error) {
	switch Section(raw) {
	case SectionNeedsAttention, SectionInProgress, SectionUpcoming, SectionRecent:
		return Section(raw), nil
	}
	return "", fmt.Errorf("unknown section: %s", raw)
}

// RawActivity is what a collector returns: one relevant source record with the
// fields the classifier needs. Collectors never assign the final urgency; the
// Urgency field is a hint carried from the source row (e.g. a request the owner
// flagged urgent) that the classifier may promote.
type RawActivity struct {
	EntityID    string
	CommunityID string
	Type        ActivityType
	Title       string
	Description string
	DueDate     *time.Time
	CreatedAt   time.Time
	Status      string
	Urgency     UrgencyLevel
	Metadata    map[string]any
}

// SummaryID builds the feed-stable identifier for a raw record. The type prefix
// keeps ids unique across sources that share entity id spaces.
func (r RawActivity) SummaryID() string {
	return fmt.Sprintf("%s_%s", r.Type, r.EntityID)
}

// ActivityCounts holds one badge count per section plus the orthogonal unread
// message tally. Counts are always global for the user, never per page.
type ActivityCounts struct {
	NeedsAttention int `json:"needs_attention"`
	InProgress     int `json:"in_progress"`
	Upcoming       int `json:"upcoming"`
	Recent         int `json:"recent"`
	UnreadMessages int `json:"unread_messages"`
}
