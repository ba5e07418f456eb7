package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/VijeshVS/LocalHire-sub000/internal/notifier/domain"
)

// Storage handles all database operations for the notifier
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// GetOutboxEvent loads one outbox event by ID
func (s *Storage) GetOutboxEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	query := `
		SELECT id, recipient_id, recipient_role, event_type, title, message, metadata, created_at
		FROM notification_outbox
		WHERE id = $1
	`

	var ev domain.Event
	err := s.db.QueryRowContext(ctx, query, eventID).Scan(
		&ev.ID,
		&ev.RecipientID,
		&ev.RecipientRole,
		&ev.EventType,
		&ev.Title,
		&ev.Message,
		&ev.Metadata,
		&ev.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get outbox event: %w", err)
	}

	return &ev, nil
}

// InsertNotification writes the user-visible notification row for an
// event. The notification reuses the event's ID, so a redelivered
// event inserts nothing and delivery stays idempotent.
func (s *Storage) InsertNotification(ctx context.Context, ev *domain.Event, now time.Time) (bool, error) {
	query := `
		INSERT INTO notifications (id, user_id, user_role, type, title, message, metadata, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)
		ON CONFLICT (id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		ev.ID,
		ev.RecipientID,
		ev.RecipientRole,
		ev.EventType,
		ev.Title,
		ev.Message,
		ev.Metadata,
		now,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert notification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// ExpireOffers marks pending offers whose deadline has passed as
// expired. Read paths already treat such offers as expired; this sweep
// persists the terminal status.
func (s *Storage) ExpireOffers(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE job_offers
		SET offer_status = 'expired',
		    updated_at = $1
		WHERE offer_status = 'pending'
		  AND expires_at <= $1
	`

	result, err := s.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire offers: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows > 0 {
		s.logger.Info("Expired stale offers",
			slog.Int64("count", rows),
		)
	}

	return rows, nil
}

// ListStaleEventIDs returns unpublished outbox events older than the
// cutoff, oldest first. These are events whose post-commit publish
// never happened, usually because the API service crashed or RabbitMQ
// was down.
func (s *Storage) ListStaleEventIDs(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	query := `
		SELECT id
		FROM notification_outbox
		WHERE published_at IS NULL
		  AND created_at <= $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	var ids []string
	if err := s.db.SelectContext(ctx, &ids, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("failed to list stale events: %w", err)
	}

	return ids, nil
}

// MarkEventsPublished stamps outbox events as published
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
