package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VijeshVS/LocalHire-sub000/internal/api/domain"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/model"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/storage"
)

var testNow = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

func pendingOffer(id, postingID, title, date, start, end string, expiresAt time.Time) model.JobOffer {
	return model.JobOffer{
		ID:                 id,
		JobPostingID:       postingID,
		ApplicationID:      "app-" + id,
		WorkerID:           "w1",
		OfferStatus:        string(domain.OfferPending),
		JobTitle:           title,
		ScheduledDate:      sql.NullString{String: date, Valid: date != ""},
		ScheduledStartTime: sql.NullString{String: start, Valid: start != ""},
		ScheduledEndTime:   sql.NullString{String: end, Valid: end != ""},
		OfferedAt:          testNow.Add(-time.Hour),
		ExpiresAt:          expiresAt,
	}
}

// fakeOfferStore mimics the transactional guarantees of the SQL store:
// accepting is guarded on the pending status under a mutex, so exactly
// one concurrent accept can win.
type fakeOfferStore struct {
	mu       sync.Mutex
	offers   map[string]*model.JobOffer
	accepted []domain.AcceptedWindow
}

func newFakeOfferStore(offers ...model.JobOffer) *fakeOfferStore {
	f := &fakeOfferStore{offers: map[string]*model.JobOffer{}}
	for i := range offers {
		o := offers[i]
		f.offers[o.ID] = &o
	}
	return f
}

func (f *fakeOfferStore) GetOffer(_ context.Context, id string) (*model.JobOffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOfferStore) ListPendingOffers(_ context.Context, workerID string) ([]model.JobOffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.JobOffer
	for _, o := range f.offers {
		if o.WorkerID == workerID && o.OfferStatus == string(domain.OfferPending) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOfferStore) ListAcceptedWindows(_ context.Context, _ string) ([]domain.AcceptedWindow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.AcceptedWindow(nil), f.accepted...), nil
}

func (f *fakeOfferStore) GetOfferStats(_ context.Context, workerID string, now time.Time) (*storage.OfferStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &storage.OfferStats{}
	for _, o := range f.offers {
		if o.WorkerID != workerID {
			continue
		}
		stats.Total++
		switch {
		case o.OfferStatus == string(domain.OfferPending) && now.After(o.ExpiresAt):
			stats.Expired++
		case o.OfferStatus == string(domain.OfferPending):
			stats.Pending++
		case o.OfferStatus == string(domain.OfferAccepted):
			stats.Accepted++
		case o.OfferStatus == string(domain.OfferRejected):
			stats.Rejected++
		case o.OfferStatus == string(domain.OfferExpired):
			stats.Expired++
		}
	}
	return stats, nil
}

func (f *fakeOfferStore) AcceptOffer(_ context.Context, offerID, workerID string, now time.Time) (*storage.AcceptOfferResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	target, ok := f.offers[offerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if target.WorkerID != workerID {
		return nil, domain.ErrForbidden
	}
	if target.OfferStatus != string(domain.OfferPending) {
		return nil, domain.ErrAlreadyDecided
	}
	if now.After(target.ExpiresAt) {
		return nil, domain.ErrOfferExpired
	}

	var pendingWindows []domain.OfferWindow
	for _, other := range f.offers {
		if other.ID == offerID || other.WorkerID != workerID {
			continue
		}
		if other.OfferStatus != string(domain.OfferPending) {
			continue
		}
		pendingWindows = append(pendingWindows, offerWindow(other))
	}

	report := domain.ComputeConflicts(offerWindow(target), pendingWindows, f.accepted)
	if report.HasExistingJobConflict {
		return nil, domain.ErrConflict
	}

	target.OfferStatus = string(domain.OfferAccepted)
	target.UpdatedAt = now

	var displaced []model.JobOffer
	for _, id := range report.ConflictingOfferIDs {
		other := f.offers[id]
		other.OfferStatus = string(domain.OfferRejected)
		other.RejectReason = sql.NullString{String: "displaced by overlapping acceptance", Valid: true}
		displaced = append(displaced, *other)
	}

	cp := *target
	return &storage.AcceptOfferResult{Offer: &cp, Displaced: displaced}, nil
}

func (f *fakeOfferStore) RejectOffer(_ context.Context, offerID, workerID, reason string, now time.Time) (*model.JobOffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	target, ok := f.offers[offerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if target.WorkerID != workerID {
		return nil, domain.ErrForbidden
	}
	if target.OfferStatus != string(domain.OfferPending) {
		return nil, domain.ErrAlreadyDecided
	}

	target.OfferStatus = string(domain.OfferRejected)
	target.RejectReason = sql.NullString{String: reason, Valid: reason != ""}
	target.UpdatedAt = now
	cp := *target
	return &cp, nil
}

func newOfferService(store OfferStore) *OfferService {
	svc := NewOfferService(store, noopRelay(), discardLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestOfferServiceListAnnotatesConflicts(t *testing.T) {
	store := newFakeOfferStore(
		pendingOffer("o1", "p1", "Garden Cleanup", "2026-09-01", "09:00", "12:00", testNow.Add(24*time.Hour)),
		pendingOffer("o2", "p2", "Fence Painting", "2026-09-01", "10:00", "14:00", testNow.Add(24*time.Hour)),
		pendingOffer("o3", "p3", "Tuesday Job", "2026-09-02", "09:00", "12:00", testNow.Add(24*time.Hour)),
	)
	svc := newOfferService(store)

	views, err := svc.List(context.Background(), "w1")
	require.NoError(t, err)
	require.Len(t, views, 3)

	byID := map[string]OfferView{}
	for _, v := range views {
		byID[v.Offer.ID] = v
	}

	assert.True(t, byID["o1"].Conflict.HasConflict)
	assert.Equal(t, []string{"o2"}, byID["o1"].Conflict.ConflictingOfferIDs)
	assert.True(t, byID["o2"].Conflict.HasConflict)
	assert.False(t, byID["o3"].Conflict.HasConflict)
}

func TestOfferServiceListDropsExpired(t *testing.T) {
	store := newFakeOfferStore(
		pendingOffer("fresh", "p1", "Fresh", "2026-09-03", "09:00", "12:00", testNow.Add(time.Hour)),
		pendingOffer("stale", "p2", "Stale", "2026-09-03", "10:00", "14:00", testNow.Add(-time.Minute)),
	)
	svc := newOfferService(store)

	views, err := svc.List(context.Background(), "w1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "fresh", views[0].Offer.ID)

	// The expired offer no longer contributes conflicts either.
	assert.False(t, views[0].Conflict.HasConflict)
}

func TestOfferServiceGetReadTimeExpiry(t *testing.T) {
	store := newFakeOfferStore(
		pendingOffer("o1", "p1", "Stale", "2026-09-03", "09:00", "12:00", testNow.Add(-time.Hour)),
	)
	svc := newOfferService(store)

	offer, err := svc.Get(context.Background(), "o1", "w1")
	require.NoError(t, err)
	assert.Equal(t, string(domain.OfferExpired), offer.OfferStatus)

	// The stored row is untouched; expiry was read-time only.
	stored, _ := store.GetOffer(context.Background(), "o1")
	assert.Equal(t, string(domain.OfferPending), stored.OfferStatus)
}

func TestOfferServiceGetHidesForeignOffers(t *testing.T) {
	store := newFakeOfferStore(
		pendingOffer("o1", "p1", "Job", "2026-09-03", "09:00", "12:00", testNow.Add(time.Hour)),
	)
	svc := newOfferService(store)

	_, err := svc.Get(context.Background(), "o1", "someone-else")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOfferServiceAcceptCascadesDisplacement(t *testing.T) {
	store := newFakeOfferStore(
		pendingOffer("o1", "p1", "Garden Cleanup", "2026-09-01", "09:00", "12:00", testNow.Add(24*time.Hour)),
		pendingOffer("o2", "p2", "Fence Painting", "2026-09-01", "10:00", "14:00", testNow.Add(24*time.Hour)),
		pendingOffer("o3", "p3", "Evening Shift", "2026-09-01", "17:00", "19:00", testNow.Add(24*time.Hour)),
	)
	svc := newOfferService(store)

	result, err := svc.Accept(context.Background(), "o1", "w1")
	require.NoError(t, err)
	assert.Equal(t, string(domain.OfferAccepted), result.Offer.OfferStatus)
	require.Len(t, result.Displaced, 1)
	assert.Equal(t, "o2", result.Displaced[0].ID)

	// Back-to-back offer survives.
	evening, _ := store.GetOffer(context.Background(), "o3")
	assert.Equal(t, string(domain.OfferPending), evening.OfferStatus)
}

func TestOfferServiceAcceptRefusedOverAcceptedJob(t *testing.T) {
	store := newFakeOfferStore(
		pendingOffer("o1", "p1", "Garden Cleanup", "2026-09-01", "10:00", "13:00", testNow.Add(24*time.Hour)),
	)
	store.accepted = []domain.AcceptedWindow{
		{
			ApplicationID: "app-9",
			JobPostingID:  "p9",
			JobTitle:      "Committed Work",
			Schedule:      domain.Schedule{Date: "2026-09-01", StartTime: "09:00", EndTime: "12:00"},
		},
	}
	svc := newOfferService(store)

	_, err := svc.Accept(context.Background(), "o1", "w1")
	assert.ErrorIs(t, err, domain.ErrConflict)

	// The refusal left the offer untouched.
	stored, _ := store.GetOffer(context.Background(), "o1")
	assert.Equal(t, string(domain.OfferPending), stored.OfferStatus)
}

func TestOfferServiceAcceptReofferOfHeldJob(t *testing.T) {
	// A re-offer of the posting the worker already holds is never a
	// conflict with itself, even with identical times.
	store := newFakeOfferStore(
		pendingOffer("o1", "p9", "Committed Work", "2026-09-01", "09:00", "12:00", testNow.Add(24*time.Hour)),
	)
	store.accepted = []domain.AcceptedWindow{
		{
			ApplicationID: "app-9",
			JobPostingID:  "p9",
			JobTitle:      "Committed Work",
			Schedule:      domain.Schedule{Date: "2026-09-01", StartTime: "09:00", EndTime: "12:00"},
		},
	}
	svc := newOfferService(store)

	result, err := svc.Accept(context.Background(), "o1", "w1")
	require.NoError(t, err)
	assert.Equal(t, string(domain.OfferAccepted), result.Offer.OfferStatus)
}

func TestOfferServiceAcceptExpired(t *testing.T) {
	store := newFakeOfferStore(
		pendingOffer("o1", "p1", "Stale", "2026-09-03", "09:00", "12:00", testNow.Add(-time.Minute)),
	)
	svc := newOfferService(store)

	_, err := svc.Accept(context.Background(), "o1", "w1")
	assert.ErrorIs(t, err, domain.ErrOfferExpired)
}

func TestOfferServiceConcurrentAccept(t *testing.T) {
	store := newFakeOfferStore(
		pendingOffer("o1", "p1", "Contested", "2026-09-01", "09:00", "12:00", testNow.Add(24*time.Hour)),
	)
	svc := newOfferService(store)

	const attempts = 16
	var wg sync.WaitGroup
	var succeeded, alreadyDecided int32
	var mu sync.Mutex

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Accept(context.Background(), "o1", "w1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case err == domain.ErrAlreadyDecided:
				alreadyDecided++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded)
	assert.Equal(t, int32(attempts-1), alreadyDecided)
}

func TestOfferServiceConcurrentAcceptOverlappingOffers(t *testing.T) {
	// Two workers' goroutines race to accept two overlapping offers.
	// Exactly one acceptance wins and displaces the other offer; the
	// loser sees its target already decided, never an opaque failure.
	store := newFakeOfferStore(
		pendingOffer("o1", "p1", "Morning Shift", "2026-09-01", "09:00", "12:00", testNow.Add(24*time.Hour)),
		pendingOffer("o2", "p2", "Late Morning", "2026-09-01", "11:00", "14:00", testNow.Add(24*time.Hour)),
	)
	svc := newOfferService(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{"o1", "o2"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = svc.Accept(context.Background(), id, "w1")
		}(i, id)
	}
	wg.Wait()

	var succeeded, alreadyDecided int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrAlreadyDecided):
			alreadyDecided++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, alreadyDecided)

	o1, _ := store.GetOffer(context.Background(), "o1")
	o2, _ := store.GetOffer(context.Background(), "o2")
	statuses := []string{o1.OfferStatus, o2.OfferStatus}
	assert.Contains(t, statuses, string(domain.OfferAccepted))
	assert.Contains(t, statuses, string(domain.OfferRejected))
}

func TestOfferServiceReject(t *testing.T) {
	store := newFakeOfferStore(
		pendingOffer("o1", "p1", "Job", "2026-09-01", "09:00", "12:00", testNow.Add(24*time.Hour)),
	)
	svc := newOfferService(store)

	offer, err := svc.Reject(context.Background(), "o1", "w1", "schedule conflict")
	require.NoError(t, err)
	assert.Equal(t, string(domain.OfferRejected), offer.OfferStatus)
	assert.Equal(t, "schedule conflict", offer.RejectReason.String)

	_, err = svc.Reject(context.Background(), "o1", "w1", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyDecided)
}

func TestOfferServiceCheckAvailability(t *testing.T) {
	store := newFakeOfferStore()
	store.accepted = []domain.AcceptedWindow{
		{
			ApplicationID: "app-1",
			JobPostingID:  "p9",
			JobTitle:      "Committed Work",
			Schedule:      domain.Schedule{Date: "2026-09-01", StartTime: "09:00", EndTime: "12:00"},
		},
	}
	svc := newOfferService(store)

	free, err := svc.CheckAvailability(context.Background(), "w1", "2026-09-01", "10:00", "11:00")
	require.NoError(t, err)
	assert.False(t, free)

	free, err = svc.CheckAvailability(context.Background(), "w1", "2026-09-01", "12:00", "14:00")
	require.NoError(t, err)
	assert.True(t, free)

	free, err = svc.CheckAvailability(context.Background(), "w1", "2026-09-02", "10:00", "11:00")
	require.NoError(t, err)
	assert.True(t, free)
}
