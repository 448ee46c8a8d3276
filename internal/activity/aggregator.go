package activity

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hearthhq/hearth/internal/models"
	"log/slog"
)

// Service is the aggregation engine: it fans out to every registered
// collector, merges and classifies the results, and materializes the
// urgency-ranked feed. It holds no mutable state; every call is independent
// given its inputs and the clock.
type Service struct {
	collectors []Collector
	classifier *Classifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates the engine over the given collectors.
func NewService(collectors []Collector, classifier *Classifier, logger *slog.Logger) *Service {
	return &Service{
		collectors: collectors,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

// classified pairs a summary with its section memberships so filtering does
// not have to re-run the classifier.
type classified struct {
	summary models.ActivitySummary
	class   Classification
}

// FetchActivities returns one page of the unified feed for the query.
// Failure policy is fail-fast: if any collector errors, the whole call
// errors, and no partial feed is ever returned.
func (s *Service) FetchActivities(ctx context.Context, query models.ActivityQuery) ([]models.ActivitySummary, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	query.Normalize()

	scope := Scope{
		UserID:      query.UserID,
		CommunityID: query.CommunityID,
		Since:       query.Since,
	}

	raw, err := s.collect(ctx, scope)
	if err != nil {
		return nil, err
	}

	items, err := s.classifyAll(raw, s.now())
	if err != nil {
		return nil, err
	}

	items = filterItems(items, query)
	sortItems(items)

	page := paginate(items, query.Offset(), query.PageSize)

	summaries := make([]models.ActivitySummary, 0, len(page))
	for _, item := range page {
		summaries = append(summaries, item.summary)
	}
	return summaries, nil
}

// collect runs every collector concurrently and joins on a single barrier.
// Cancelling ctx cancels all in-flight collector calls; the first error
// cancels the rest and is returned wrapped with its source name.
func (s *Service) collect(ctx context.Context, scope Scope) ([]models.RawActivity, error) {
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	results := make([][]models.RawActivity, len(s.collectors))

	for i, collector := range s.collectors {
		i, collector := i, collector
		g.Go(func() error {
			records, err := collector.Collect(ctx, scope)
			if err != nil {
				return &CollectorError{Source: collector.Name(), Err: err}
			}
			results[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]models.RawActivity, 0)
	seen := make(map[string]bool)
	for _, records := range results {
		for _, record := range records {
			id := record.SummaryID()
			if seen[id] {
				continue
			}
			seen[id] = true
			merged = append(merged, record)
		}
	}

	s.logger.Debug("collector fan-out complete",
		"sources", len(s.collectors),
		"items", len(merged),
		"duration", time.Since(start),
	)

	return merged, nil
}

func (s *Service) classifyAll(raw []models.RawActivity, now time.Time) ([]classified, error) {
	items := make([]classified, 0, len(raw))
	for _, record := range raw {
		class, err := s.classifier.Classify(record, now)
		if err != nil {
			return nil, err
		}
		items = append(items, classified{
			summary: newSummary(record, class.Urgency),
			class:   class,
		})
	}
	return items, nil
}

func validateQuery(query models.ActivityQuery) error {
	if strings.TrimSpace(query.UserID) == "" {
		return &InvalidQueryError{Field: "user_id", Reason: "is required"}
	}
	for _, t := range query.Types {
		if !t.Valid() {
			return &InvalidQueryError{Field: "types", Reason: "contains unknown activity type " + string(t)}
		}
	}
	return nil
}

func filterItems(items []classified, query models.ActivityQuery) []classified {
	filtered := make([]classified, 0, len(items))

	for _, item := range items {
		if len(query.Types) > 0 && !containsType(query.Types, item.summary.Type) {
			continue
		}
		if query.Section != nil && !item.class.InSection(*query.Section) {
			continue
		}
		if query.Since != nil && !satisfiesSince(item.summary, *query.Since) {
			continue
		}
		filtered = append(filtered, item)
	}

	return filtered
}

func containsType(types []models.ActivityType, t models.ActivityType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// satisfiesSince keeps an item when either its creation or its deadline falls
// on or after the lower bound. Collectors already apply since as a relevance
// bound; this enforces it after the merge as well.
func satisfiesSince(summary models.ActivitySummary, since time.Time) bool {
	if !summary.CreatedAt.Before(since) {
		return true
	}
	return summary.DueDate != nil && !summary.DueDate.Before(since)
}

// sortItems imposes the feed's total order: urgency rank first, then soonest
// deadline (due-dated items ahead of undated ones), then newest creation,
// with entity id as the final deterministic tiebreaker.
func sortItems(items []classified) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].summary, items[j].summary

		if ra, rb := a.UrgencyLevel.Rank(), b.UrgencyLevel.Rank(); ra != rb {
			return ra > rb
		}

		switch {
		case a.DueDate != nil && b.DueDate != nil:
			if !a.DueDate.Equal(*b.DueDate) {
				return a.DueDate.Before(*b.DueDate)
			}
		case a.DueDate != nil:
			return true
		case b.DueDate != nil:
			return false
		}

		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}

		return a.EntityID < b.EntityID
	})
}

func paginate(items []classified, offset, limit int) []classified {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func newSummary(record models.RawActivity, urgency models.UrgencyLevel) models.ActivitySummary {
	return models.ActivitySummary{
		ID:           record.SummaryID(),
		Type:         record.Type,
		Title:        record.Title,
		Description:  record.Description,
		UrgencyLevel: urgency,
		DueDate:      record.DueDate,
		EntityID:     record.EntityID,
		CommunityID:  record.CommunityID,
		CreatedAt:    record.CreatedAt,
		Metadata:     record.Metadata,
	}
}
