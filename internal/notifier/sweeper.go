package notifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// startSweeps schedules the periodic maintenance jobs: expiring stale
// pending offers and republishing outbox events whose initial publish
// was lost.
func (n *Notifier) startSweeps(ctx context.Context) error {
	n.cron = cron.New()

	if n.expirySweepSpec != "" {
		if _, err := n.cron.AddFunc(n.expirySweepSpec, func() {
			n.runExpirySweep(ctx)
		}); err != nil {
			return err
		}
	}

	if n.republishSweepSpec != "" {
		if _, err := n.cron.AddFunc(n.republishSweepSpec, func() {
			n.runRepublishSweep(ctx)
		}); err != nil {
			return err
		}
	}

	n.cron.Start()
	n.logger.Info("Sweeps scheduled",
		slog.String("expiry_spec", n.expirySweepSpec),
		slog.String("republish_spec", n.republishSweepSpec),
	)

	return nil
}

func (n *Notifier) runExpirySweep(ctx context.Context) {
	count, err := n.storage.ExpireOffers(ctx, time.Now())
	if err != nil {
		n.logger.Error("Offer expiry sweep failed",
			slog.String("error", err.Error()),
		)
		return
	}

	n.logger.Debug("Offer expiry sweep finished",
		slog.Int64("expired", count),
	)
}

// runRepublishSweep re-emits queue messages for outbox events still
// unpublished after the grace period. Delivery is idempotent, so
// racing the API service's own relay is harmless.
func (n *Notifier) runRepublishSweep(ctx context.Context) {
	cutoff := time.Now().Add(-n.republishAfter)
	ids, err := n.storage.ListStaleEventIDs(ctx, cutoff, 100)
	if err != nil {
		n.logger.Error("Republish sweep failed",
			slog.String("error", err.Error()),
		)
		return
	}
	if len(ids) == 0 {
		return
	}

	published := make([]string, 0, len(ids))
	for _, id := range ids {
		body, err := json.Marshal(map[string]string{"event_id": id})
		if err != nil {
			continue
		}
		if err := n.rabbitClient.PublishWithRetry(ctx, body, "application/json"); err != nil {
			n.logger.Error("Failed to republish event",
				slog.String("event_id", id),
				slog.String("error", err.Error()),
			)
			break
		}
		published = append(published, id)
	}

	if err := n.storage.MarkEventsPublished(ctx, published, time.Now()); err != nil {
		n.logger.Error("Failed to mark republished events",
			slog.String("error", err.Error()),
		)
		return
	}

	n.logger.Info("Republished stale events",
		slog.Int("count", len(published)),
	)
}
