package models

import (
	"time"
)

// ActivityQuery represents filters and pagination for retrieving the feed.
type ActivityQuery struct {
	// Scope
	UserID      string `json:"user_id"`
	CommunityID string `json:"community_id,omitempty"`

	// Filters
	Section *Section       `json:"section,omitempty"`
	Types   []ActivityType `json:"types,omitempty"`
	Since   *time.Time     `json:"since,omitempty"`

	// Pagination
	Page     int `json:"page"`
	PageSize int `json:"page_size,omitempty"`
}

const (
	// DefaultPageSize is applied when a query does not specify one.
	DefaultPageSize = 20
	// MaxPageSize caps a single page of feed results.
	MaxPageSize = 100
)

// Normalize applies pagination defaults in place. Validation of required
// fields is the engine's job; this only fills in what was left unset.
func (q *ActivityQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
}

// Offset calculates the slice offset for pagination.
func (q *ActivityQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// ActivityResponse represents a paginated slice of the feed with metadata.
type ActivityResponse struct {
	Activities []ActivitySummary `json:"activities"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Count      int               `json:"count"`
	HasMore    bool              `json:"has_more"`
}
