// Package storage implements the PostgreSQL persistence layer for the
// API service on top of sqlx. Mutations that must be atomic (offer
// acceptance, application acceptance, completion confirmation) run as
// single transactions with status-guarded updates: zero affected rows
// means another request won the race.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/VijeshVS/LocalHire-sub000/internal/api/domain"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/model"
	"github.com/VijeshVS/LocalHire-sub000/shared/postgresql"
)

const pqUniqueViolation = "23505"

type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewStorage(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		db:     pg.GetDB(),
		logger: logger,
	}
}

const jobPostingColumns = `
	id, employer_id, title, wage, duration, address, latitude, longitude,
	scheduled_date, scheduled_start_time, scheduled_end_time,
	expected_completion_at, duration_hours, is_active, created_at, updated_at
`

// GetJobPosting returns a posting or domain.ErrNotFound. Callers that
// tolerate deleted postings translate ErrNotFound into a job_deleted
// flag instead of failing.
func (s *Storage) GetJobPosting(ctx context.Context, id string) (*model.JobPosting, error) {
	var posting model.JobPosting
	query := `SELECT ` + jobPostingColumns + ` FROM job_postings WHERE id = $1`

	err := s.db.GetContext(ctx, &posting, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}

	return &posting, nil
}

const applicationColumns = `
	id, job_posting_id, worker_id, status, work_status,
	employer_confirmation_pending, applied_at, completed_at, completion_notes,
	employer_rating, employer_review, worker_rating, worker_review, updated_at
`

// CreateApplication inserts a new application. A second application for
// the same (posting, worker) pair returns domain.ErrAlreadyApplied.
func (s *Storage) CreateApplication(ctx context.Context, app *model.Application) error {
	query := `
		INSERT INTO job_applications (
			id, job_posting_id, worker_id, status, work_status,
			employer_confirmation_pending, applied_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		app.ID,
		app.JobPostingID,
		app.WorkerID,
		app.Status,
		app.WorkStatus,
		app.EmployerConfirmationPending,
		app.AppliedAt,
		app.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return domain.ErrAlreadyApplied
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// GetApplication returns an application or domain.ErrNotFound.
func (s *Storage) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	var app model.Application
	query := `SELECT ` + applicationColumns + ` FROM job_applications WHERE id = $1`

	err := s.db.GetContext(ctx, &app, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &app, nil
}

// ApplicationWithJob joins an application with its posting. JobDeleted
// is true when the posting row no longer exists.
type ApplicationWithJob struct {
	Application model.Application
	Job         *model.JobPosting
	JobDeleted  bool
}

type applicationJobRow struct {
	model.Application
	JobID                sql.NullString  `db:"jp_id"`
	JobEmployerID        sql.NullString  `db:"jp_employer_id"`
	JobTitle             sql.NullString  `db:"jp_title"`
	JobWage              sql.NullFloat64 `db:"jp_wage"`
	JobDuration          sql.NullString  `db:"jp_duration"`
	JobAddress           sql.NullString  `db:"jp_address"`
	ScheduledDate        sql.NullString  `db:"jp_scheduled_date"`
	ScheduledStartTime   sql.NullString  `db:"jp_scheduled_start_time"`
	ScheduledEndTime     sql.NullString  `db:"jp_scheduled_end_time"`
	ExpectedCompletionAt sql.NullTime    `db:"jp_expected_completion_at"`
	DurationHours        sql.NullFloat64 `db:"jp_duration_hours"`
	IsActive             sql.NullBool    `db:"jp_is_active"`
}

func (r applicationJobRow) toApplicationWithJob() ApplicationWithJob {
	out := ApplicationWithJob{Application: r.Application}
	if !r.JobID.Valid {
		out.JobDeleted = true
		return out
	}
	out.Job = &model.JobPosting{
		ID:                   r.JobID.String,
		EmployerID:           r.JobEmployerID.String,
		Title:                r.JobTitle.String,
		Wage:                 r.JobWage.Float64,
		Duration:             r.JobDuration,
		Address:              r.JobAddress.String,
		ScheduledDate:        r.ScheduledDate,
		ScheduledStartTime:   r.ScheduledStartTime,
		ScheduledEndTime:     r.ScheduledEndTime,
		ExpectedCompletionAt: r.ExpectedCompletionAt,
		DurationHours:        r.DurationHours,
		IsActive:             r.IsActive.Bool,
	}
	return out
}

const applicationJobJoin = `
	SELECT a.id, a.job_posting_id, a.worker_id, a.status, a.work_status,
	       a.employer_confirmation_pending, a.applied_at, a.completed_at,
	       a.completion_notes, a.employer_rating, a.employer_review,
	       a.worker_rating, a.worker_review, a.updated_at,
	       jp.id AS jp_id, jp.employer_id AS jp_employer_id,
	       jp.title AS jp_title, jp.wage AS jp_wage,
	       jp.duration AS jp_duration, jp.address AS jp_address,
	       jp.scheduled_date AS jp_scheduled_date,
	       jp.scheduled_start_time AS jp_scheduled_start_time,
	       jp.scheduled_end_time AS jp_scheduled_end_time,
	       jp.expected_completion_at AS jp_expected_completion_at,
	       jp.duration_hours AS jp_duration_hours,
	       jp.is_active AS jp_is_active
	FROM job_applications a
	LEFT JOIN job_postings jp ON jp.id = a.job_posting_id
`

// ListWorkerApplications returns the worker's applications newest
// first, each flagged when its posting has been deleted.
func (s *Storage) ListWorkerApplications(ctx context.Context, workerID string) ([]ApplicationWithJob, error) {
	query := applicationJobJoin + ` WHERE a.worker_id = $1 ORDER BY a.applied_at DESC`

	var rows []applicationJobRow
	if err := s.db.SelectContext(ctx, &rows, query, workerID); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	out := make([]ApplicationWithJob, len(rows))
	for i, r := range rows {
		out[i] = r.toApplicationWithJob()
	}
	return out, nil
}

// GetApplicationWithJob returns one application joined with its
// posting, or domain.ErrNotFound.
func (s *Storage) GetApplicationWithJob(ctx context.Context, id string) (*ApplicationWithJob, error) {
	query := applicationJobJoin + ` WHERE a.id = $1`

	var row applicationJobRow
	err := s.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	out := row.toApplicationWithJob()
	return &out, nil
}

// ListApplicantsForPosting returns all applications for one posting,
// newest first.
func (s *Storage) ListApplicantsForPosting(ctx context.Context, jobPostingID string) ([]model.Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM job_applications WHERE job_posting_id = $1 ORDER BY applied_at DESC`

	var apps []model.Application
	if err := s.db.SelectContext(ctx, &apps, query, jobPostingID); err != nil {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}
	return apps, nil
}

// DeleteApplication removes an application while it is still in the
// applied state. Zero affected rows means the state moved on under the
// caller and the withdrawal is refused.
func (s *Storage) DeleteApplication(ctx context.Context, id, workerID string) error {
	query := `
		DELETE FROM job_applications
		WHERE id = $1 AND worker_id = $2 AND status = $3
	`

	res, err := s.db.ExecContext(ctx, query, id, workerID, domain.ApplicationApplied)
	if err != nil {
		return fmt.Errorf("failed to withdraw application: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrInvalidState
	}

	return nil
}

// UpdateApplicationStatus applies an employer decision with a guard on
// the from-status and commits outbox events in the same transaction.
// Zero affected rows reports domain.ErrInvalidState: the application
// moved under the caller.
func (s *Storage) UpdateApplicationStatus(ctx context.Context, id string, from, to domain.ApplicationStatus, now time.Time, events ...domain.Event) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE job_applications
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	res, err := tx.ExecContext(ctx, query, to, now, id, from)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrInvalidState
	}

	if err := insertOutboxEvents(ctx, tx, now, events...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status update: %w", err)
	}

	s.logger.Info("Application status updated",
		slog.String("application_id", id),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)

	return nil
}

// CompletionUpdate carries the worker-side completion payload.
type CompletionUpdate struct {
	Notes  sql.NullString
	Rating sql.NullInt64
	Review sql.NullString
}

// MarkApplicationCompleted flips work_status from in_progress to
// completed and raises the employer confirmation flag. Guarded so a
// completion attempt from any other work state affects zero rows and
// reports domain.ErrInvalidState.
func (s *Storage) MarkApplicationCompleted(ctx context.Context, id string, upd CompletionUpdate, now time.Time, events ...domain.Event) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE job_applications
		SET work_status = $1,
		    completed_at = $2,
		    completion_notes = $3,
		    employer_rating = $4,
		    employer_review = $5,
		    employer_confirmation_pending = TRUE,
		    updated_at = $2
		WHERE id = $6 AND status = $7 AND work_status = $8
	`

	res, err := tx.ExecContext(ctx, query,
		domain.WorkCompleted, now, upd.Notes, upd.Rating, upd.Review,
		id, domain.ApplicationAccepted, domain.WorkInProgress,
	)
	if err != nil {
		return fmt.Errorf("failed to mark application completed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrInvalidState
	}

	if err := insertOutboxEvents(ctx, tx, now, events...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit completion: %w", err)
	}

	return nil
}

// ConfirmCompletion stores the employer's rating and clears the
// confirmation flag. Guarded on the flag so a concurrent double
// confirmation affects zero rows and reports domain.ErrAlreadyConfirmed.
func (s *Storage) ConfirmCompletion(ctx context.Context, id string, rating sql.NullInt64, review sql.NullString, now time.Time, events ...domain.Event) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE job_applications
		SET worker_rating = $1,
		    worker_review = $2,
		    employer_confirmation_pending = FALSE,
		    updated_at = $3
		WHERE id = $4 AND work_status = $5 AND employer_confirmation_pending = TRUE
	`

	res, err := tx.ExecContext(ctx, query, rating, review, now, id, domain.WorkCompleted)
	if err != nil {
		return fmt.Errorf("failed to confirm completion: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrAlreadyConfirmed
	}

	if err := insertOutboxEvents(ctx, tx, now, events...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit confirmation: %w", err)
	}

	return nil
}

// ListPendingConfirmations returns the employer's completed-but-
// unconfirmed applications, oldest completion first so the longest-
// waiting workers surface first.
func (s *Storage) ListPendingConfirmations(ctx context.Context, employerID string) ([]model.PendingConfirmation, error) {
	query := `
		SELECT a.id AS application_id,
		       jp.id AS job_posting_id,
		       jp.title AS job_title,
		       a.worker_id,
		       w.name AS worker_name,
		       w.rating AS worker_rating,
		       a.completed_at,
		       a.completion_notes
		FROM job_applications a
		JOIN job_postings jp ON jp.id = a.job_posting_id
		JOIN workers w ON w.id = a.worker_id
		WHERE jp.employer_id = $1
		  AND a.work_status = $2
		  AND a.employer_confirmation_pending = TRUE
		ORDER BY a.completed_at ASC
	`

	var rows []model.PendingConfirmation
	if err := s.db.SelectContext(ctx, &rows, query, employerID, domain.WorkCompleted); err != nil {
		return nil, fmt.Errorf("failed to list pending confirmations: %w", err)
	}
	return rows, nil
}
