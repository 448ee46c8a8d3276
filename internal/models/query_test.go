package models

import (
	"testing"
)

func TestActivityQueryNormalizeDefaults(t *testing.T) {
	q := ActivityQuery{UserID: "user-1"}
	q.Normalize()

	if q.Page != 1 {
		t.Errorf("expected default page 1, got %d", q.Page)
	}
	if q.PageSize != DefaultPageSize {
		t.Errorf("expected default page size %d, got %d", DefaultPageSize, q.PageSize)
	}
}

func TestActivityQueryNormalizeCapsPageSize(t *testing.T) {
	q := ActivityQuery{UserID: "user-1", Page: 3, PageSize: 5000}
	q.Normalize()

	if q.PageSize != MaxPageSize {
		t.Errorf("expected page size capped at %d, got %d", MaxPageSize, q.PageSize)
	}
	if q.Page != 3 {
		t.Errorf("expected page preserved, got %d", q.Page)
	}
}

func TestActivityQueryOffset(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		expected int
	}{
		{"first page", 1, 20, 0},
		{"second page", 2, 20, 20},
		{"small pages", 4, 5, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ActivityQuery{UserID: "u", Page: tt.page, PageSize: tt.pageSize}
			if got := q.Offset(); got != tt.expected {
				t.Errorf("Offset() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestParseSection(t *testing.T) {
	for _, valid := range []string{"needs_attention", "in_progress", "upcoming", "recent"} {
		if _, err := ParseSection(valid); err != nil {
			t.Errorf("ParseSection(%q) returned error: %v", valid, err)
		}
	}

	if _, err := ParseSection("someday"); err == nil {
		t.Error("expected error for unknown section")
	}
}

func TestActivityTypeValid(t *testing.T) {
	if !ActivityEventUpcoming.Valid() {
		t.Error("expected event_upcoming to be valid")
	}
	if ActivityType("event_cancelled").Valid() {
		t.Error("expected unknown type to be invalid")
	}
}

func TestUrgencyRankOrdering(t *testing.T) {
	if UrgencyUrgent.Rank() <= UrgencySoon.Rank() {
		t.Error("urgent must rank above soon")
	}
	if UrgencySoon.Rank() <= UrgencyNormal.Rank() {
		t.Error("soon must rank above normal")
	}
}
