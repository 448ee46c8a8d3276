package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hearthhq/hearth/internal/activity"
	"github.com/hearthhq/hearth/internal/models"
)

// GatheringCollector surfaces gatherings the user has RSVP'd to. It keeps the
// past week of gatherings in scope so the classifier can still bucket a
// just-ended one as recent history.
type GatheringCollector struct {
	db       *sql.DB
	lookback time.Duration
}

// NewGatheringCollector creates a collector over the gatherings tables.
func NewGatheringCollector(db *sql.DB, lookback time.Duration) *GatheringCollector {
	return &GatheringCollector{db: db, lookback: lookback}
}

// Name implements activity.Collector.
func (c *GatheringCollector) Name() string { return "gatherings" }

// Type implements activity.Collector.
func (c *GatheringCollector) Type() models.ActivityType { return models.ActivityEventUpcoming }

// Collect implements activity.Collector.
func (c *GatheringCollector) Collect(ctx context.Context, scope activity.Scope) ([]models.RawActivity, error) {
	query := `
		SELECT g.id, g.community_id, g.title, COALESCE(g.description, ''),
		       g.starts_at, COALESCE(g.location, ''), g.host_id, g.created_at
		FROM gatherings g
		JOIN gathering_rsvps r ON r.gathering_id = g.id
		WHERE r.user_id = $1 AND r.status = 'going' AND g.starts_at >= $2
	`
	args := []any{scope.UserID, time.Now().Add(-c.lookback)}

	if scope.CommunityID != "" {
		args = append(args, scope.CommunityID)
		query += fmt.Sprintf(" AND g.community_id = $%d", len(args))
	}
	if scope.Since != nil {
		args = append(args, *scope.Since)
		query += fmt.Sprintf(" AND (g.created_at >= $%d OR g.starts_at >= $%d)", len(args), len(args))
	}
	query += " ORDER BY g.starts_at"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query gatherings: %w", err)
	}
	defer rows.Close()

	var records []models.RawActivity
	for rows.Next() {
		var (
			id, communityID, title, description, location, hostID string
			startsAt, createdAt                                   time.Time
		)
		if err := rows.Scan(&id, &communityID, &title, &description, &startsAt, &location, &hostID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan gathering: %w", err)
		}

		due := startsAt
		records = append(records, models.RawActivity{
			EntityID:    id,
			CommunityID: communityID,
			Type:        models.ActivityEventUpcoming,
			Title:       title,
			Description: description,
			DueDate:     &due,
			CreatedAt:   createdAt,
			Urgency:     models.UrgencyNormal,
			Metadata: map[string]any{
				"event_start_time": startsAt,
				"location":         location,
				"host_id":          hostID,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate gatherings: %w", err)
	}

	return records, nil
}
