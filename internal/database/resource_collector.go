package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hearthhq/hearth/internal/activity"
	"github.com/hearthhq/hearth/internal/models"
)

// ResourceCollector surfaces resource requests the user made or owns:
// pending requests awaiting a response, accepted exchanges in flight, and
// completed ones for recent history.
type ResourceCollector struct {
	db *sql.DB
}

// NewResourceCollector creates a collector over the resource_requests table.
func NewResourceCollector(db *sql.DB) *ResourceCollector {
	return &ResourceCollector{db: db}
}

// Name implements activity.Collector.
func (c *ResourceCollector) Name() string { return "resources" }

// Type implements activity.Collector. The collector emits both pending and
// accepted variants; this is the dominant one.
func (c *ResourceCollector) Type() models.ActivityType { return models.ActivityResourcePending }

// Collect implements activity.Collector.
func (c *ResourceCollector) Collect(ctx context.Context, scope activity.Scope) ([]models.RawActivity, error) {
	query := `
		SELECT id, community_id, title, COALESCE(description, ''),
		       requester_id, owner_id, status, urgency, respond_by, created_at
		FROM resource_requests
		WHERE (requester_id = $1 OR owner_id = $1)
		  AND status IN ('pending', 'accepted', 'completed')
	`
	args := []any{scope.UserID}

	if scope.CommunityID != "" {
		args = append(args, scope.CommunityID)
		query += fmt.Sprintf(" AND community_id = $%d", len(args))
	}
	if scope.Since != nil {
		args = append(args, *scope.Since)
		query += fmt.Sprintf(" AND (created_at >= $%d OR respond_by >= $%d)", len(args), len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query resource requests: %w", err)
	}
	defer rows.Close()

	var records []models.RawActivity
	for rows.Next() {
		var (
			id, communityID, title, description      string
			requesterID, ownerID, status, rawUrgency string
			respondBy                                sql.NullTime
			createdAt                                sql.NullTime
		)
		if err := rows.Scan(&id, &communityID, &title, &description,
			&requesterID, &ownerID, &status, &rawUrgency, &respondBy, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan resource request: %w", err)
		}

		record := models.RawActivity{
			EntityID:    id,
			CommunityID: communityID,
			Type:        resourceType(status),
			Title:       title,
			Description: description,
			CreatedAt:   createdAt.Time,
			Status:      status,
			Urgency:     parseUrgency(rawUrgency),
			Metadata: map[string]any{
				"resource_owner_id": ownerID,
				"requester_id":      requesterID,
				"status":            status,
			},
		}
		if respondBy.Valid {
			due := respondBy.Time
			record.DueDate = &due
		}

		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resource requests: %w", err)
	}

	return records, nil
}

func resourceType(status string) models.ActivityType {
	if status == "pending" {
		return models.ActivityResourcePending
	}
	return models.ActivityResourceAccepted
}

// parseUrgency normalizes the urgency column; anything unrecognized is
// treated as normal rather than failing the whole feed.
func parseUrgency(raw string) models.UrgencyLevel {
	switch models.UrgencyLevel(raw) {
	case models.UrgencyUrgent:
		return models.UrgencyUrgent
	case models.UrgencySoon:
		return models.UrgencySoon
	}
	return models.UrgencyNormal
}
