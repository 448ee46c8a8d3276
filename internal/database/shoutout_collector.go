package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hearthhq/hearth/internal/activity"
	"github.com/hearthhq/hearth/internal/models"
)

// ShoutoutCollector surfaces gratitude posts naming the user as recipient.
type ShoutoutCollector struct {
	db       *sql.DB
	lookback time.Duration
}

// NewShoutoutCollector creates a collector over the shoutouts table.
func NewShoutoutCollector(db *sql.DB, lookback time.Duration) *ShoutoutCollector {
	return &ShoutoutCollector{db: db, lookback: lookback}
}

// Name implements activity.Collector.
func (c *ShoutoutCollector) Name() string { return "shoutouts" }

// Type implements activity.Collector.
func (c *ShoutoutCollector) Type() models.ActivityType { return models.ActivityShoutoutReceived }

// Collect implements activity.Collector.
func (c *ShoutoutCollector) Collect(ctx context.Context, scope activity.Scope) ([]models.RawActivity, error) {
	query := `
		SELECT id, community_id, author_id, COALESCE(message, ''), created_at
		FROM shoutouts
		WHERE recipient_id = $1 AND created_at >= $2
	`
	args := []any{scope.UserID, time.Now().Add(-c.lookback)}

	if scope.CommunityID != "" {
		args = append(args, scope.CommunityID)
		query += fmt.Sprintf(" AND community_id = $%d", len(args))
	}
	if scope.Since != nil {
		args = append(args, *scope.Since)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shoutouts: %w", err)
	}
	defer rows.Close()

	var records []models.RawActivity
	for rows.Next() {
		var (
			id, communityID, authorID, message string
			createdAt                          time.Time
		)
		if err := rows.Scan(&id, &communityID, &authorID, &message, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan shoutout: %w", err)
		}

		records = append(records, models.RawActivity{
			EntityID:    id,
			CommunityID: communityID,
			Type:        models.ActivityShoutoutReceived,
			Title:       "You received a shoutout",
			Description: snippet(message, 140),
			CreatedAt:   createdAt,
			Urgency:     models.UrgencyNormal,
			Metadata: map[string]any{
				"author_id": authorID,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shoutouts: %w", err)
	}

	return records, nil
}
