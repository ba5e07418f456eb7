package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/VijeshVS/LocalHire-sub000/internal/api/domain"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/model"
)

// insertOutboxEvents writes notification events inside the caller's
// transaction so they commit or roll back together with the lifecycle
// transition that produced them.
func insertOutboxEvents(ctx context.Context, tx *sqlx.Tx, now time.Time, events ...domain.Event) error {
	for _, ev := range events {
		var metadata []byte
		if ev.Metadata != nil {
			var err error
			metadata, err = json.Marshal(ev.Metadata)
			if err != nil {
				return fmt.Errorf("failed to marshal event metadata: %w", err)
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO notification_outbox (
				id, recipient_id, recipient_role, event_type,
				title, message, metadata, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			uuid.New().String(), ev.RecipientID, ev.RecipientRole, ev.Type,
			ev.Title, ev.Message, metadata, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert outbox event: %w", err)
		}
	}
	return nil
}

// ListUnpublishedEvents returns committed events the relay has not yet
// pushed to the broker, oldest first.
func (s *Storage) ListUnpublishedEvents(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	query := `
		SELECT id, recipient_id, recipient_role, event_type, title, message,
		       metadata, published_at, created_at
		FROM notification_outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`

	var events []model.OutboxEvent
	if err := s.db.SelectContext(ctx, &events, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list unpublished events: %w", err)
	}
	return events, nil
}

// MarkEventsPublished stamps the given outbox rows as handed to the
// broker.
func (s *Storage) MarkEventsPublished(ctx context.Context, ids []string, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE notification_outbox
		SET published_at = $1
		WHERE id = ANY($2)
	`

	if _, err := s.db.ExecContext(ctx, query, now, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to mark events published: %w", err)
	}
	return nil
}
