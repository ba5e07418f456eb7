// Package notifier consumes outbox event messages from RabbitMQ and
// turns them into user-visible notification rows. It also runs the
// periodic sweeps that expire stale offers and republish outbox events
// whose initial publish was lost.
package notifier

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/VijeshVS/LocalHire-sub000/internal/notifier/domain"
	"github.com/VijeshVS/LocalHire-sub000/internal/notifier/storage"
	"github.com/VijeshVS/LocalHire-sub000/shared/postgresql"
	"github.com/VijeshVS/LocalHire-sub000/shared/rabbitmq"
)

// Config holds notifier configuration
type Config struct {
	Logger          *slog.Logger
	DBClient        *postgresql.Client
	RabbitClient    *rabbitmq.Client
	RedisClient     *redis.Client
	Concurrency     int
	MaxDeliveries   int
	DeliveryTimeout time.Duration
	DedupTTL        time.Duration
	PrefetchCount   int

	// Cron expressions for the periodic sweeps. Empty disables the
	// corresponding sweep.
	ExpirySweepSpec    string
	RepublishSweepSpec string
	RepublishAfter     time.Duration
}

// Notifier is the event delivery service
type Notifier struct {
	logger          *slog.Logger
	storage         *storage.Storage
	rabbitClient    *rabbitmq.Client
	redisClient     *redis.Client
	concurrency     int
	maxDeliveries   int
	deliveryTimeout time.Duration
	dedupTTL        time.Duration
	prefetchCount   int

	expirySweepSpec    string
	republishSweepSpec string
	republishAfter     time.Duration

	notifierID string
	eventsChan chan *domain.EventMessage
	cron       *cron.Cron
	wg         sync.WaitGroup
	stopChan   chan struct{}
}

// New creates a new Notifier instance
func New(cfg *Config) *Notifier {
	return &Notifier{
		logger:             cfg.Logger,
		storage:            storage.NewStorage(cfg.DBClient.GetDB(), cfg.Logger),
		rabbitClient:       cfg.RabbitClient,
		redisClient:        cfg.RedisClient,
		concurrency:        cfg.Concurrency,
		maxDeliveries:      cfg.MaxDeliveries,
		deliveryTimeout:    cfg.DeliveryTimeout,
		dedupTTL:           cfg.DedupTTL,
		prefetchCount:      cfg.PrefetchCount,
		expirySweepSpec:    cfg.ExpirySweepSpec,
		republishSweepSpec: cfg.RepublishSweepSpec,
		republishAfter:     cfg.RepublishAfter,
		notifierID:         "notifier-" + uuid.New().String()[:8],
		eventsChan:         make(chan *domain.EventMessage),
		stopChan:           make(chan struct{}),
	}
}

// Start begins consuming events and running sweeps. It blocks until
// the context is canceled.
func (n *Notifier) Start(ctx context.Context) error {
	n.logger.Info("Starting notifier",
		slog.String("notifier_id", n.notifierID),
		slog.Int("concurrency", n.concurrency),
		slog.Duration("delivery_timeout", n.deliveryTimeout),
	)

	deliveries, err := n.setupConsumer()
	if err != nil {
		return err
	}

	n.spawnDeliveryPool(ctx)

	if err := n.startSweeps(ctx); err != nil {
		return err
	}

	n.startDispatcher(ctx, deliveries)

	n.logger.Info("Notifier context canceled, stopping...")
	return nil
}

// Stop gracefully stops the notifier
func (n *Notifier) Stop() {
	n.logger.Info("Stopping notifier...")
	close(n.stopChan)
	if n.cron != nil {
		<-n.cron.Stop().Done()
	}
	n.wg.Wait()
	n.logger.Info("Notifier stopped")
}
