package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/VijeshVS/LocalHire-sub000/internal/api/model"
)

// OutboxSource lists and stamps committed notification events.
type OutboxSource interface {
	ListUnpublishedEvents(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkEventsPublished(ctx context.Context, ids []string, now time.Time) error
}

// Publisher pushes a message to the broker. Implemented by the shared
// RabbitMQ client.
type Publisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// OutboxRelay pushes committed outbox events to RabbitMQ for the
// notifier service. It is strictly best-effort: the lifecycle
// transition has already committed, so every failure here is logged
// and retried by the next relay pass (or the notifier's cron sweep),
// never surfaced to the caller.
type OutboxRelay struct {
	store     OutboxSource
	publisher Publisher
	logger    *slog.Logger
	batchSize int
	now       func() time.Time
}

func NewOutboxRelay(store OutboxSource, publisher Publisher, logger *slog.Logger) *OutboxRelay {
	return &OutboxRelay{
		store:     store,
		publisher: publisher,
		logger:    logger,
		batchSize: 100,
		now:       time.Now,
	}
}

// eventMessage is the broker payload: the notifier loads the full event
// row by ID, so redeliveries stay cheap and the payload stays stable.
type eventMessage struct {
	EventID string `json:"event_id"`
}

// Relay publishes every unpublished outbox event. Safe to call after
// any transition and from the sweep; double publication is tolerated
// because the notifier deduplicates by event ID.
func (r *OutboxRelay) Relay(ctx context.Context) {
	events, err := r.store.ListUnpublishedEvents(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("Failed to list unpublished events",
			slog.String("error", err.Error()),
		)
		return
	}

	published := make([]string, 0, len(events))
	for _, ev := range events {
		body, err := json.Marshal(eventMessage{EventID: ev.ID})
		if err != nil {
			r.logger.Error("Failed to marshal event message",
				slog.String("event_id", ev.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := r.publisher.PublishWithRetry(ctx, body, "application/json"); err != nil {
			r.logger.Error("Failed to publish outbox event, will retry on next pass",
				slog.String("event_id", ev.ID),
				slog.String("type", ev.EventType),
				slog.String("error", err.Error()),
			)
			continue
		}
		published = append(published, ev.ID)
	}

	if len(published) == 0 {
		return
	}

	if err := r.store.MarkEventsPublished(ctx, published, r.now()); err != nil {
		// Events will be republished; the notifier dedups them.
		r.logger.Warn("Failed to mark events published",
			slog.Int("count", len(published)),
			slog.String("error", err.Error()),
		)
		return
	}

	r.logger.Debug("Outbox events relayed",
		slog.Int("count", len(published)),
	)
}
