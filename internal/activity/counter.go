package activity

import (
	"context"
	"strings"

	"github.com/hearthhq/hearth/internal/models"
)

// CountActivities derives the badge counts from the user's full activity
// universe. It shares the feed's fan-out and classification but skips
// filtering and pagination, so counts are always global rather than "count
// of the current page". Each section predicate is evaluated independently;
// one item may increment several buckets.
func (s *Service) CountActivities(ctx context.Context, userID string) (models.ActivityCounts, error) {
	if strings.TrimSpace(userID) == "" {
		return models.ActivityCounts{}, &InvalidQueryError{Field: "user_id", Reason: "is required"}
	}

	raw, err := s.collect(ctx, Scope{UserID: userID})
	if err != nil {
		return models.ActivityCounts{}, err
	}

	now := s.now()

	var counts models.ActivityCounts
	for _, record := range raw {
		class, err := s.classifier.Classify(record, now)
		if err != nil {
			return models.ActivityCounts{}, err
		}

		for _, section := range class.Sections {
			switch section {
			case models.SectionNeedsAttention:
				counts.NeedsAttention++
			case models.SectionInProgress:
				counts.InProgress++
			case models.SectionUpcoming:
				counts.Upcoming++
			case models.SectionRecent:
				counts.Recent++
			}
		}

		if class.Unread {
			counts.UnreadMessages++
		}
	}

	return counts, nil
}
