package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hearthhq/hearth/internal/activity"
	"github.com/hearthhq/hearth/internal/models"
)

// MessageCollector surfaces unread direct messages addressed to the user.
// Direct messages cross community boundaries, so the community filter in the
// scope is intentionally ignored and the emitted records carry no community.
type MessageCollector struct {
	db *sql.DB
}

// NewMessageCollector creates a collector over the messages table.
func NewMessageCollector(db *sql.DB) *MessageCollector {
	return &MessageCollector{db: db}
}

// Name implements activity.Collector.
func (c *MessageCollector) Name() string { return "messages" }

// Type implements activity.Collector.
func (c *MessageCollector) Type() models.ActivityType { return models.ActivityMessageUnread }

// Collect implements activity.Collector.
func (c *MessageCollector) Collect(ctx context.Context, scope activity.Scope) ([]models.RawActivity, error) {
	query := `
		SELECT id, sender_id, COALESCE(body, ''), created_at
		FROM messages
		WHERE recipient_id = $1 AND read_at IS NULL
	`
	args := []any{scope.UserID}

	if scope.Since != nil {
		args = append(args, *scope.Since)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var records []models.RawActivity
	for rows.Next() {
		var (
			id, senderID, body string
			createdAt          time.Time
		)
		if err := rows.Scan(&id, &senderID, &body, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		records = append(records, models.RawActivity{
			EntityID:    id,
			Type:        models.ActivityMessageUnread,
			Title:       "Unread message",
			Description: snippet(body, 140),
			CreatedAt:   createdAt,
			Urgency:     models.UrgencyNormal,
			Metadata: map[string]any{
				"sender_id": senderID,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return records, nil
}

// snippet truncates text for feed descriptions.
func snippet(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
