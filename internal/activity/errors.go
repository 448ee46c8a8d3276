package activity

import (
	"fmt"

	"github.com/hearthhq/hearth/internal/models"
)

// InvalidQueryError indicates a malformed feed query. It is returned before
// any collector is invoked.
type InvalidQueryError struct {
	Field  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid activity query: %s %s", e.Field, e.Reason)
}

// CollectorError wraps a failure from one of the source collectors. A single
// failing source aborts the whole aggregation; a silently incomplete feed is
// worse than a visible error.
type CollectorError struct {
	Source string
	Err    error
}

func (e *CollectorError) Error() string {
	return fmt.Sprintf("collector %s: %v", e.Source, e.Err)
}

func (e *CollectorError) Unwrap() error {
	return e.Err
}

// ClassificationError indicates a raw record could not be classified. This is
// a data-integrity bug and is surfaced rather than dropped, since dropping
// would corrupt the badge counts.
type ClassificationError struct {
	EntityID string
	Type     models.ActivityType
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("cannot classify activity %s: unknown type %q", e.EntityID, e.Type)
}
