package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/VijeshVS/LocalHire-sub000/internal/notifier/domain"
)

const (
	deliveredKeyPrefix = "notifier:delivered:"
	attemptsKeyPrefix  = "notifier:attempts:"
)

// processEvent delivers one outbox event: it loads the event row,
// inserts the notification and records the delivery in Redis. The
// notification row keys on the event ID, so delivery is idempotent
// even when the Redis fast path misses.
func (n *Notifier) processEvent(ctx context.Context, msg *domain.EventMessage) error {
	ctx, cancel := context.WithTimeout(ctx, n.deliveryTimeout)
	defer cancel()

	// Fast path: skip events this cluster already delivered.
	delivered, err := n.redisClient.Exists(ctx, deliveredKeyPrefix+msg.EventID).Result()
	if err != nil {
		n.logger.Warn("Redis dedup check failed, falling through to database",
			slog.String("event_id", msg.EventID),
			slog.String("error", err.Error()),
		)
	}
	if delivered > 0 {
		n.logger.Debug("Event already delivered, skipping",
			slog.String("event_id", msg.EventID),
		)
		return nil
	}

	if err := n.countAttempt(ctx, msg.EventID); err != nil {
		return err
	}

	ev, err := n.storage.GetOutboxEvent(ctx, msg.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			return err
		}
		return domain.NewRetryableError(fmt.Errorf("failed to load event: %w", err))
	}

	inserted, err := n.storage.InsertNotification(ctx, ev, time.Now())
	if err != nil {
		return domain.NewRetryableError(fmt.Errorf("failed to deliver event: %w", err))
	}

	if err := n.redisClient.Set(ctx, deliveredKeyPrefix+msg.EventID, n.notifierID, n.dedupTTL).Err(); err != nil {
		// The database insert already happened; a lost marker only
		// costs a redundant conflict-free insert on redelivery.
		n.logger.Warn("Failed to record delivery in Redis",
			slog.String("event_id", msg.EventID),
			slog.String("error", err.Error()),
		)
	}

	if inserted {
		n.logger.Info("Notification delivered",
			slog.String("event_id", msg.EventID),
			slog.String("recipient_id", ev.RecipientID),
			slog.String("event_type", ev.EventType),
		)
	} else {
		n.logger.Debug("Notification already present, nothing to insert",
			slog.String("event_id", msg.EventID),
		)
	}

	return nil
}

// countAttempt tracks per-event delivery attempts in Redis and fails
// permanently once maxDeliveries is reached, keeping a poisoned event
// from cycling through the queue forever.
func (n *Notifier) countAttempt(ctx context.Context, eventID string) error {
	key := attemptsKeyPrefix + eventID
	attempts, err := n.redisClient.Incr(ctx, key).Result()
	if err != nil {
		// Without the counter we still deliver; the idempotent insert
		// bounds the damage.
		n.logger.Warn("Failed to count delivery attempt",
			slog.String("event_id", eventID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if attempts == 1 {
		n.redisClient.Expire(ctx, key, n.dedupTTL)
	}

	if attempts > int64(n.maxDeliveries) {
		return fmt.Errorf("%w: %d attempts for event %s",
			domain.ErrMaxDeliveriesExceeded, attempts, eventID)
	}

	return nil
}
