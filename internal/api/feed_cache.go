package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/hearthhq/hearth/internal/models"
)

// FeedCache memoizes feed pages and badge counts for a short TTL. The TTL is
// kept short because urgency classification is time-sensitive; the engine
// itself never assumes a cache exists.
type FeedCache struct {
	mu     sync.RWMutex
	ttl    time.Duration
	feeds  map[string]feedEntry
	counts map[string]countsEntry
}

type feedEntry struct {
	activities []models.ActivitySummary
	storedAt   time.Time
}

type countsEntry struct {
	counts   models.ActivityCounts
	storedAt time.Time
}

// NewFeedCache creates a cache with the given TTL.
func NewFeedCache(ttl time.Duration) *FeedCache {
	return &FeedCache{
		ttl:    ttl,
		feeds:  make(map[string]feedEntry),
		counts: make(map[string]countsEntry),
	}
}

// FeedKey derives the cache key for a feed page.
func FeedKey(query models.ActivityQuery) string {
	section := ""
	if query.Section != nil {
		section = string(*query.Section)
	}
	return fmt.Sprintf("%s|%s|%s|%d|%d",
		query.UserID, query.CommunityID, section, query.Page, query.PageSize)
}

// GetFeed returns a cached feed page if present and fresh.
func (c *FeedCache) GetFeed(key string) ([]models.ActivitySummary, bool) {
	c.mu.RLock()
	entry, exists := c.feeds[key]
	c.mu.RUnlock()

	if !exists || time.Since(entry.storedAt) >= c.ttl {
		return nil, false
	}
	return entry.activities, true
}

// SetFeed stores a feed page.
func (c *FeedCache) SetFeed(key string, activities []models.ActivitySummary) {
	c.mu.Lock()
	c.feeds[key] = feedEntry{activities: activities, storedAt: time.Now()}
	c.mu.Unlock()
}

// GetCounts returns cached badge counts if present and fresh.
func (c *FeedCache) GetCounts(userID string) (models.ActivityCounts, bool) {
	c.mu.RLock()
	entry, exists := c.counts[userID]
	c.mu.RUnlock()

	if !exists || time.Since(entry.storedAt) >= c.ttl {
		return models.ActivityCounts{}, false
	}
	return entry.counts, true
}

// SetCounts stores badge counts for a user.
func (c *FeedCache) SetCounts(userID string, counts models.ActivityCounts) {
	c.mu.Lock()
	c.counts[userID] = countsEntry{counts: counts, storedAt: time.Now()}
	c.mu.Unlock()
}
