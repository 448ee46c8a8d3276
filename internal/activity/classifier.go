package activity

import (
	"time"

	"github.com/hearthhq/hearth/internal/models"
)

// Thresholds holds the temporal tuning knobs for classification. They are
// fixed for the lifetime of a Classifier, never mutated mid-call.
type Thresholds struct {
	// InProgressWindow is how far ahead of now an upcoming gathering counts
	// as in progress rather than merely upcoming.
	InProgressWindow time.Duration
	// RecentWindow is how far back a record's creation may lie for it to
	// count as recent history.
	RecentWindow time.Duration
}

// DefaultThresholds returns the standard classification windows.
func DefaultThresholds() Thresholds {
	return Thresholds{
		InProgressWindow: 24 * time.Hour,
		RecentWindow:     7 * 24 * time.Hour,
	}
}

// Classification is the outcome of classifying one raw record: a single
// urgency level plus every section predicate the record satisfies. Sections
// are evaluated independently; an item may match zero or several.
type Classification struct {
	Urgency  models.UrgencyLevel
	Sections []models.Section
	Unread   bool
}

// InSection reports whether the classification includes the given section.
func (c Classification) InSection(s models.Section) bool {
	for _, sec := range c.Sections {
		if sec == s {
			return true
		}
	}
	return false
}

// Classifier assigns urgency and section membership to raw activities. It is
// pure: the result depends only on the record, the thresholds, and now.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(thresholds Thresholds) *Classifier {
	return &Classifier{thresholds: thresholds}
}

// Classify maps one raw record and a reference time to its classification.
// Calling it twice with the same inputs yields the same result.
func (c *Classifier) Classify(item models.RawActivity, now time.Time) (Classification, error) {
	if !item.Type.Valid() {
		return Classification{}, &ClassificationError{EntityID: item.EntityID, Type: item.Type}
	}

	overdue := item.DueDate != nil && item.DueDate.Before(now)

	var sections []models.Section

	// Overdue non-events need attention; a gathering that already started is
	// not overdue work, it is history.
	needsAttention := item.Urgency == models.UrgencyUrgent ||
		(overdue && item.Type != models.ActivityEventUpcoming)
	if needsAttention {
		sections = append(sections, models.SectionNeedsAttention)
	}

	if c.inProgress(item, now) {
		sections = append(sections, models.SectionInProgress)
	}

	if item.Type == models.ActivityEventUpcoming && item.DueDate != nil &&
		item.DueDate.After(now.Add(c.thresholds.InProgressWindow)) {
		sections = append(sections, models.SectionUpcoming)
	}

	if c.recent(item, now) {
		sections = append(sections, models.SectionRecent)
	}

	return Classification{
		Urgency:  c.urgency(item, now, needsAttention),
		Sections: sections,
		Unread:   item.Type == models.ActivityMessageUnread,
	}, nil
}

func (c *Classifier) inProgress(item models.RawActivity, now time.Time) bool {
	if item.Type == models.ActivityResourceAccepted {
		// Completed exchanges are history, not work in flight.
		return item.Status != "completed"
	}
	if item.Type != models.ActivityEventUpcoming || item.DueDate == nil {
		return false
	}
	due := *item.DueDate
	return !due.Before(now) && !due.After(now.Add(c.thresholds.InProgressWindow))
}

func (c *Classifier) recent(item models.RawActivity, now time.Time) bool {
	if item.CreatedAt.Before(now.Add(-c.thresholds.RecentWindow)) {
		return false
	}
	switch item.Type {
	case models.ActivityEventUpcoming:
		return item.DueDate != nil && item.DueDate.Before(now)
	case models.ActivityResourceAccepted:
		return item.Status == "completed"
	}
	return false
}

func (c *Classifier) urgency(item models.RawActivity, now time.Time, needsAttention bool) models.UrgencyLevel {
	if needsAttention {
		return models.UrgencyUrgent
	}
	if item.Urgency == models.UrgencySoon {
		return models.UrgencySoon
	}
	// A due date inside the in-progress window makes the item time-pressed
	// even when the source did not flag it.
	if item.DueDate != nil && !item.DueDate.Before(now) &&
		!item.DueDate.After(now.Add(c.thresholds.InProgressWindow)) {
		return models.UrgencySoon
	}
	return models.UrgencyNormal
}
