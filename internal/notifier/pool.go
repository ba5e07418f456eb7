package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/VijeshVS/LocalHire-sub000/internal/notifier/domain"
)

// spawnDeliveryPool spawns N delivery goroutines based on concurrency
// configuration
func (n *Notifier) spawnDeliveryPool(ctx context.Context) {
	n.logger.Info("Spawning delivery pool",
		slog.Int("concurrency", n.concurrency),
		slog.String("notifier_id", n.notifierID),
	)

	for i := 0; i < n.concurrency; i++ {
		n.wg.Add(1)
		go n.deliveryLoop(ctx, i)
	}
}

// deliveryLoop is the main processing loop for each delivery goroutine
func (n *Notifier) deliveryLoop(ctx context.Context, num int) {
	defer n.wg.Done()

	name := fmt.Sprintf("%s-%d", n.notifierID, num)
	n.logger.Info("Delivery goroutine started",
		slog.String("worker_name", name),
	)

	for {
		select {
		case <-n.stopChan:
			n.logger.Info("Delivery goroutine stopping - stopChan closed",
				slog.String("worker_name", name),
			)
			return

		case <-ctx.Done():
			n.logger.Info("Delivery goroutine stopping - context canceled",
				slog.String("worker_name", name),
			)
			return

		case msg, ok := <-n.eventsChan:
			if !ok {
				return
			}

			err := n.processEvent(ctx, msg)

			channel := n.rabbitClient.GetChannel()
			if channel == nil {
				n.logger.Error("Failed to get RabbitMQ channel for ACK/NACK",
					slog.String("worker_name", name),
					slog.String("event_id", msg.EventID),
				)
				continue
			}

			if err != nil {
				requeue := n.shouldRequeue(err)
				n.logger.Error("Event delivery failed",
					slog.String("worker_name", name),
					slog.String("event_id", msg.EventID),
					slog.String("error", err.Error()),
					slog.Bool("requeue", requeue),
				)

				if nackErr := channel.Nack(msg.DeliveryTag, false, requeue); nackErr != nil {
					n.logger.Error("Failed to NACK message",
						slog.String("worker_name", name),
						slog.String("event_id", msg.EventID),
						slog.String("error", nackErr.Error()),
					)
				}
			} else {
				if ackErr := channel.Ack(msg.DeliveryTag, false); ackErr != nil {
					n.logger.Error("Failed to ACK message",
						slog.String("worker_name", name),
						slog.String("event_id", msg.EventID),
						slog.String("error", ackErr.Error()),
					)
				}
			}
		}
	}
}

// shouldRequeue determines if a failed delivery should be requeued
// based on the error type
func (n *Notifier) shouldRequeue(err error) bool {
	// The event row was never committed, redelivery cannot fix that.
	if errors.Is(err, domain.ErrEventNotFound) {
		return false
	}

	if errors.Is(err, domain.ErrMaxDeliveriesExceeded) {
		return false
	}

	var retryableErr *domain.RetryableError
	if errors.As(err, &retryableErr) {
		return true
	}

	return false
}
