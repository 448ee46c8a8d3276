package activity

import (
	"context"
	"time"

	"github.com/hearthhq/hearth/internal/models"
)

// Collector defines the interface each activity source must implement.
// Collectors are responsible for scoping results to the given user
// (ownership, participancy, or recipiency) and for respecting Since as a
// lower bound on relevance. A collector never assigns the final urgency
// level, and it fails by returning an error rather than partial data.
type Collector interface {
	// Name returns the unique identifier for this source, used in errors
	// and metrics labels.
	Name() string

	// Type returns the activity variant this collector produces.
	Type() models.ActivityType

	// Collect retrieves the relevant raw records for the scope.
	Collect(ctx context.Context, scope Scope) ([]models.RawActivity, error)
}

// Scope bounds a collector call to one user, optionally narrowed to a
// community and a lower time bound.
type Scope struct {
	UserID      string
	CommunityID string
	Since       *time.Time
}
