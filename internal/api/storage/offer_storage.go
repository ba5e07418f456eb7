package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/VijeshVS/LocalHire-sub000/internal/api/domain"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/model"
)

const offerColumns = `
	id, job_posting_id, application_id, worker_id, employer_id, offer_status,
	job_title, scheduled_date, scheduled_start_time, scheduled_end_time,
	reject_reason, offered_at, expires_at, updated_at
`

// GetOffer returns an offer or domain.ErrNotFound.
func (s *Storage) GetOffer(ctx context.Context, id string) (*model.JobOffer, error) {
	var offer model.JobOffer
	query := `SELECT ` + offerColumns + ` FROM job_offers WHERE id = $1`

	err := s.db.GetContext(ctx, &offer, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	return &offer, nil
}

// ListPendingOffers returns the worker's pending offers newest first.
// Expiry is computed by the caller at read time; rows are returned as
// stored.
func (s *Storage) ListPendingOffers(ctx context.Context, workerID string) ([]model.JobOffer, error) {
	query := `SELECT ` + offerColumns + `
		FROM job_offers
		WHERE worker_id = $1 AND offer_status = $2
		ORDER BY offered_at DESC`

	var offers []model.JobOffer
	if err := s.db.SelectContext(ctx, &offers, query, workerID, domain.OfferPending); err != nil {
		return nil, fmt.Errorf("failed to list pending offers: %w", err)
	}
	return offers, nil
}

type acceptedWindowRow struct {
	ApplicationID string         `db:"application_id"`
	JobPostingID  string         `db:"job_posting_id"`
	JobTitle      string         `db:"job_title"`
	Date          sql.NullString `db:"scheduled_date"`
	StartTime     sql.NullString `db:"scheduled_start_time"`
	EndTime       sql.NullString `db:"scheduled_end_time"`
}

// ListAcceptedWindows returns the worker's accepted, not-yet-completed
// jobs as conflict windows, using the schedule denormalized onto the
// offer at offer time.
func (s *Storage) ListAcceptedWindows(ctx context.Context, workerID string) ([]domain.AcceptedWindow, error) {
	return listAcceptedWindows(ctx, s.db, workerID)
}

func listAcceptedWindows(ctx context.Context, q sqlx.QueryerContext, workerID string) ([]domain.AcceptedWindow, error) {
	query := `
		SELECT o.application_id, o.job_posting_id, o.job_title,
		       o.scheduled_date, o.scheduled_start_time, o.scheduled_end_time
		FROM job_offers o
		JOIN job_applications a ON a.id = o.application_id
		WHERE o.worker_id = $1
		  AND o.offer_status = $2
		  AND a.work_status <> $3
	`

	var rows []acceptedWindowRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, workerID, domain.OfferAccepted, domain.WorkCompleted); err != nil {
		return nil, fmt.Errorf("failed to list accepted windows: %w", err)
	}

	windows := make([]domain.AcceptedWindow, len(rows))
	for i, r := range rows {
		windows[i] = domain.AcceptedWindow{
			ApplicationID: r.ApplicationID,
			JobPostingID:  r.JobPostingID,
			JobTitle:      r.JobTitle,
			Schedule: domain.Schedule{
				Date:      r.Date.String,
				StartTime: r.StartTime.String,
				EndTime:   r.EndTime.String,
			},
		}
	}
	return windows, nil
}

// OfferStats is the per-status offer count for a worker. Pending offers
// whose expires_at has passed are counted as expired even before the
// sweep persists the transition.
type OfferStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Expired  int `json:"expired"`
}

// GetOfferStats computes offer counts by status for a worker.
func (s *Storage) GetOfferStats(ctx context.Context, workerID string, now time.Time) (*OfferStats, error) {
	query := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE offer_status = $2 AND expires_at > $5)  AS pending,
		       COUNT(*) FILTER (WHERE offer_status = $3)                      AS accepted,
		       COUNT(*) FILTER (WHERE offer_status = $4)                      AS rejected,
		       COUNT(*) FILTER (WHERE offer_status = $6
		                        OR (offer_status = $2 AND expires_at <= $5))  AS expired
		FROM job_offers
		WHERE worker_id = $1
	`

	var stats OfferStats
	err := s.db.QueryRowContext(ctx, query,
		workerID, domain.OfferPending, domain.OfferAccepted, domain.OfferRejected,
		now, domain.OfferExpired,
	).Scan(&stats.Total, &stats.Pending, &stats.Accepted, &stats.Rejected, &stats.Expired)
	if err != nil {
		return nil, fmt.Errorf("failed to get offer stats: %w", err)
	}

	return &stats, nil
}

// AcceptOfferResult reports what the acceptance transaction did.
type AcceptOfferResult struct {
	Offer     *model.JobOffer
	Displaced []model.JobOffer
}

// AcceptOffer applies the compound acceptance effect as one
// transaction: mark the target accepted, cascade-reject every other
// pending offer of the worker that overlaps it, move the underlying
// application's work to in_progress, and commit outbox events for the
// employer and each displaced offer's employer. An offer overlapping
// one of the worker's accepted, unfinished jobs is refused with
// domain.ErrConflict; only a re-offer of that same posting is exempt.
//
// The worker's offer rows are locked FOR UPDATE first, in id order, so
// two concurrent accepts of overlapping offers serialize: exactly one
// ends accepted, the loser observes a non-pending row and gets
// domain.ErrAlreadyDecided.
func (s *Storage) AcceptOffer(ctx context.Context, offerID, workerID string, now time.Time) (*AcceptOfferResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	target, pending, err := lockWorkerOffers(ctx, tx, offerID, workerID)
	if err != nil {
		return nil, err
	}

	if target.OfferStatus != string(domain.OfferPending) {
		return nil, domain.ErrAlreadyDecided
	}
	if now.After(target.ExpiresAt) {
		return nil, domain.ErrOfferExpired
	}

	accepted, err := listAcceptedWindows(ctx, tx, workerID)
	if err != nil {
		return nil, err
	}

	report := domain.ComputeConflicts(offerWindow(target), offerWindows(pending), accepted)
	if report.HasExistingJobConflict {
		return nil, domain.ErrConflict
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE job_offers
		SET offer_status = $1, updated_at = $2
		WHERE id = $3 AND offer_status = $4
	`, domain.OfferAccepted, now, offerID, domain.OfferPending)
	if err != nil {
		return nil, fmt.Errorf("failed to accept offer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrAlreadyDecided
	}

	var displaced []model.JobOffer
	for _, other := range pending {
		if !containsID(report.ConflictingOfferIDs, other.ID) {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE job_offers
			SET offer_status = $1, reject_reason = $2, updated_at = $3
			WHERE id = $4 AND offer_status = $5
		`, domain.OfferRejected, "displaced by overlapping acceptance", now, other.ID, domain.OfferPending)
		if err != nil {
			return nil, fmt.Errorf("failed to displace offer %s: %w", other.ID, err)
		}
		displaced = append(displaced, other)
	}

	// Work starts the moment the worker accepts.
	_, err = tx.ExecContext(ctx, `
		UPDATE job_applications
		SET work_status = $1, updated_at = $2
		WHERE id = $3 AND work_status = $4
	`, domain.WorkInProgress, now, target.ApplicationID, domain.WorkPending)
	if err != nil {
		return nil, fmt.Errorf("failed to start work on application: %w", err)
	}

	events := acceptanceEvents(target, displaced)
	if err := insertOutboxEvents(ctx, tx, now, events...); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit acceptance: %w", err)
	}

	s.logger.Info("Offer accepted",
		slog.String("offer_id", offerID),
		slog.String("worker_id", workerID),
		slog.Int("displaced", len(displaced)),
	)

	target.OfferStatus = string(domain.OfferAccepted)
	return &AcceptOfferResult{Offer: target, Displaced: displaced}, nil
}

// RejectOffer marks a pending offer rejected. No cascade, no rating
// impact; the optional reason is stored with the row.
func (s *Storage) RejectOffer(ctx context.Context, offerID, workerID, reason string, now time.Time) (*model.JobOffer, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	target, _, err := lockWorkerOffers(ctx, tx, offerID, workerID)
	if err != nil {
		return nil, err
	}

	if target.OfferStatus != string(domain.OfferPending) {
		return nil, domain.ErrAlreadyDecided
	}
	if now.After(target.ExpiresAt) {
		return nil, domain.ErrOfferExpired
	}

	rejectReason := sql.NullString{String: reason, Valid: reason != ""}
	res, err := tx.ExecContext(ctx, `
		UPDATE job_offers
		SET offer_status = $1, reject_reason = $2, updated_at = $3
		WHERE id = $4 AND offer_status = $5
	`, domain.OfferRejected, rejectReason, now, offerID, domain.OfferPending)
	if err != nil {
		return nil, fmt.Errorf("failed to reject offer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrAlreadyDecided
	}

	events := []domain.Event{rejectionEvent(target)}
	if err := insertOutboxEvents(ctx, tx, now, events...); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rejection: %w", err)
	}

	target.OfferStatus = string(domain.OfferRejected)
	target.RejectReason = rejectReason
	return target, nil
}

// CreateOfferForAcceptedApplication transitions an application to
// accepted and spawns its offer, as one transaction. When the guarded
// status update affects zero rows because the application is already
// accepted, the existing offer is returned instead: re-accepting is an
// idempotent no-op.
func (s *Storage) CreateOfferForAcceptedApplication(ctx context.Context, offer *model.JobOffer, from domain.ApplicationStatus, now time.Time, events ...domain.Event) (*model.JobOffer, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE job_applications
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`, domain.ApplicationAccepted, now, offer.ApplicationID, from)
	if err != nil {
		return nil, fmt.Errorf("failed to accept application: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		// Lost the race or re-accept of an already-accepted
		// application. Return the existing offer if one exists.
		existing, lookupErr := s.getOfferByApplication(ctx, offer.ApplicationID)
		if lookupErr == nil {
			return existing, nil
		}
		return nil, domain.ErrInvalidState
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO job_offers (`+offerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		offer.ID, offer.JobPostingID, offer.ApplicationID, offer.WorkerID,
		offer.EmployerID, offer.OfferStatus, offer.JobTitle,
		offer.ScheduledDate, offer.ScheduledStartTime, offer.ScheduledEndTime,
		offer.RejectReason, offer.OfferedAt, offer.ExpiresAt, offer.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	if err := insertOutboxEvents(ctx, tx, now, events...); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit offer creation: %w", err)
	}

	s.logger.Info("Job offer created",
		slog.String("offer_id", offer.ID),
		slog.String("application_id", offer.ApplicationID),
		slog.String("worker_id", offer.WorkerID),
	)

	return offer, nil
}

func (s *Storage) getOfferByApplication(ctx context.Context, applicationID string) (*model.JobOffer, error) {
	var offer model.JobOffer
	query := `SELECT ` + offerColumns + ` FROM job_offers WHERE application_id = $1`

	err := s.db.GetContext(ctx, &offer, query, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get offer by application: %w", err)
	}
	return &offer, nil
}

// lockWorkerOffers locks the target row plus every pending offer of
// the worker in one statement, ordered by id so that concurrent
// transactions acquire the row locks in the same order regardless of
// which offer each one targets. The result is split into target and
// the rest. Ownership is checked here: a worker mismatch surfaces as
// ErrForbidden.
func lockWorkerOffers(ctx context.Context, tx *sqlx.Tx, offerID, workerID string) (*model.JobOffer, []model.JobOffer, error) {
	var rows []model.JobOffer
	err := tx.SelectContext(ctx, &rows, `
		SELECT `+offerColumns+`
		FROM job_offers
		WHERE worker_id = $1 AND (id = $2 OR offer_status = $3)
		ORDER BY id
		FOR UPDATE
	`, workerID, offerID, domain.OfferPending)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock worker offers: %w", err)
	}

	var target *model.JobOffer
	pending := make([]model.JobOffer, 0, len(rows))
	for i := range rows {
		if rows[i].ID == offerID {
			target = &rows[i]
			continue
		}
		pending = append(pending, rows[i])
	}
	if target != nil {
		return target, pending, nil
	}

	// The target was not among the worker's rows: either it does not
	// exist or it belongs to someone else. An unlocked read tells the
	// two apart.
	var ownerID string
	err = tx.GetContext(ctx, &ownerID,
		`SELECT worker_id FROM job_offers WHERE id = $1`, offerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to look up offer owner: %w", err)
	}
	return nil, nil, domain.ErrForbidden
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

func offerWindows(offers []model.JobOffer) []domain.OfferWindow {
	windows := make([]domain.OfferWindow, len(offers))
	for i := range offers {
		windows[i] = offerWindow(&offers[i])
	}
	return windows
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func acceptanceEvents(target *model.JobOffer, displaced []model.JobOffer) []domain.Event {
	events := []domain.Event{
		{
			RecipientID:   target.EmployerID,
			RecipientRole: domain.RoleEmployer,
			Type:          domain.EventOfferAccepted,
			Title:         "Worker Accepted Your Job Offer!",
			Message:       fmt.Sprintf("A worker has accepted your offer for %q", target.JobTitle),
			Metadata: map[string]string{
				"offer_id":  target.ID,
				"job_id":    target.JobPostingID,
				"worker_id": target.WorkerID,
			},
		},
	}
	for _, d := range displaced {
		events = append(events, domain.Event{
			RecipientID:   d.EmployerID,
			RecipientRole: domain.RoleEmployer,
			Type:          domain.EventOfferDisplaced,
			Title:         "Your Job Offer Was Declined",
			Message:       fmt.Sprintf("The worker accepted a conflicting job; your offer for %q was declined", d.JobTitle),
			Metadata: map[string]string{
				"offer_id":  d.ID,
				"job_id":    d.JobPostingID,
				"worker_id": d.WorkerID,
			},
		})
	}
	return events
}

func rejectionEvent(target *model.JobOffer) domain.Event {
	return domain.Event{
		RecipientID:   target.EmployerID,
		RecipientRole: domain.RoleEmployer,
		Type:          domain.EventOfferRejected,
		Title:         "Worker Declined Your Job Offer",
		Message:       fmt.Sprintf("Your offer for %q was declined", target.JobTitle),
		Metadata: map[string]string{
			"offer_id":  target.ID,
			"job_id":    target.JobPostingID,
			"worker_id": target.WorkerID,
		},
	}
}
