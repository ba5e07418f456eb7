// Package service holds the lifecycle managers: transport-agnostic
// business logic between the gin handlers and the sqlx storage. Stores
// are consumed through narrow interfaces so the state machines can be
// exercised against in-memory fakes.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/VijeshVS/LocalHire-sub000/internal/api/domain"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/model"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/storage"
)

// OfferStore is the persistence surface the offer lifecycle needs.
type OfferStore interface {
	GetOffer(ctx context.Context, id string) (*model.JobOffer, error)
	ListPendingOffers(ctx context.Context, workerID string) ([]model.JobOffer, error)
	ListAcceptedWindows(ctx context.Context, workerID string) ([]domain.AcceptedWindow, error)
	GetOfferStats(ctx context.Context, workerID string, now time.Time) (*storage.OfferStats, error)
	AcceptOffer(ctx context.Context, offerID, workerID string, now time.Time) (*storage.AcceptOfferResult, error)
	RejectOffer(ctx context.Context, offerID, workerID, reason string, now time.Time) (*model.JobOffer, error)
}

// OfferService drives the offer state machine:
// pending → accepted | rejected, and read-time expiry.
type OfferService struct {
	store  OfferStore
	relay  *OutboxRelay
	logger *slog.Logger
	now    func() time.Time
}

func NewOfferService(store OfferStore, relay *OutboxRelay, logger *slog.Logger) *OfferService {
	return &OfferService{
		store:  store,
		relay:  relay,
		logger: logger,
		now:    time.Now,
	}
}

// OfferView is a pending offer annotated with its freshly computed
// conflict report.
type OfferView struct {
	Offer    model.JobOffer
	Conflict domain.ConflictReport
}

// List returns the worker's live pending offers, each annotated with
// conflicts against the worker's other pending offers and accepted
// jobs. Offers past expires_at are dropped from the listing; expiry is
// authoritative the moment now passes it, stored status notwithstanding.
func (s *OfferService) List(ctx context.Context, workerID string) ([]OfferView, error) {
	now := s.now()

	pending, err := s.store.ListPendingOffers(ctx, workerID)
	if err != nil {
		return nil, err
	}

	live := pending[:0:0]
	for _, o := range pending {
		if now.After(o.ExpiresAt) {
			continue
		}
		live = append(live, o)
	}

	accepted, err := s.store.ListAcceptedWindows(ctx, workerID)
	if err != nil {
		return nil, err
	}

	windows := make([]domain.OfferWindow, len(live))
	for i := range live {
		windows[i] = offerWindow(&live[i])
	}

	views := make([]OfferView, len(live))
	for i := range live {
		views[i] = OfferView{
			Offer:    live[i],
			Conflict: domain.ComputeConflicts(windows[i], windows, accepted),
		}
	}
	return views, nil
}

// Get returns a single offer after an ownership check, with expiry
// applied read-time: a pending offer past expires_at is reported as
// expired without a write.
func (s *OfferService) Get(ctx context.Context, offerID, workerID string) (*model.JobOffer, error) {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.WorkerID != workerID {
		return nil, domain.ErrNotFound
	}

	if offer.OfferStatus == string(domain.OfferPending) && s.now().After(offer.ExpiresAt) {
		offer.OfferStatus = string(domain.OfferExpired)
	}
	return offer, nil
}

// Accept applies the atomic acceptance: the offer becomes accepted,
// every overlapping pending offer of the worker is cascade-rejected,
// and work on the underlying application starts. Committed notification
// events are then relayed best-effort; relay failure never undoes the
// transition.
func (s *OfferService) Accept(ctx context.Context, offerID, workerID string) (*storage.AcceptOfferResult, error) {
	result, err := s.store.AcceptOffer(ctx, offerID, workerID, s.now())
	if err != nil {
		return nil, err
	}

	s.relay.Relay(ctx)
	return result, nil
}

// Reject declines a pending offer. No cascade, no rating impact.
func (s *OfferService) Reject(ctx context.Context, offerID, workerID, reason string) (*model.JobOffer, error) {
	offer, err := s.store.RejectOffer(ctx, offerID, workerID, reason, s.now())
	if err != nil {
		return nil, err
	}

	s.relay.Relay(ctx)
	return offer, nil
}

// Stats returns the worker's offer counts by status, with read-time
// expiry folded in.
func (s *OfferService) Stats(ctx context.Context, workerID string) (*storage.OfferStats, error) {
	return s.store.GetOfferStats(ctx, workerID, s.now())
}

// CheckAvailability reports whether the given window is free of the
// worker's accepted jobs. Pending offers do not block availability;
// only scheduled accepted work does.
func (s *OfferService) CheckAvailability(ctx context.Context, workerID, date, startTime, endTime string) (bool, error) {
	accepted, err := s.store.ListAcceptedWindows(ctx, workerID)
	if err != nil {
		return false, err
	}

	window := domain.Schedule{Date: date, StartTime: startTime, EndTime: endTime}
	for _, job := range accepted {
		if window.OverlapsSameDay(job.Schedule) {
			return false, nil
		}
	}
	return true, nil
}

func offerWindow(o *model.JobOffer) domain.OfferWindow {
	return domain.OfferWindow{
		OfferID:      o.ID,
		JobPostingID: o.JobPostingID,
		JobTitle:     o.JobTitle,
		Schedule: domain.Schedule{
			Date:      o.ScheduledDate.String,
			StartTime: o.ScheduledStartTime.String,
			EndTime:   o.ScheduledEndTime.String,
		},
	}
}
