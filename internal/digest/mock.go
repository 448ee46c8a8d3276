package digest

import (
	"context"
	"fmt"

	"github.com/hearthhq/hearth/internal/models"
)

// MockSummarizer produces a deterministic digest without calling any API.
// Used when no API key is configured, and in tests.
type MockSummarizer struct{}

// NewMockSummarizer creates a mock summarizer.
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// Summarize implements Summarizer.
func (m *MockSummarizer) Summarize(_ context.Context, activities []models.ActivitySummary) (string, error) {
	if len(activities) == 0 {
		return "You're all caught up. Nothing needs your attention right now.", nil
	}

	urgent := 0
	for _, a := range activities {
		if a.UrgencyLevel == models.UrgencyUrgent {
			urgent++
		}
	}

	if urgent > 0 {
		return fmt.Sprintf("You have %d items on your plate, %d of them urgent. Start with %q.",
			len(activities), urgent, activities[0].Title), nil
	}

	return fmt.Sprintf("You have %d items on your plate. Nearest up: %q.",
		len(activities), activities[0].Title), nil
}
