package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/VijeshVS/LocalHire-sub000/internal/api/domain"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/model"
	"github.com/VijeshVS/LocalHire-sub000/internal/api/storage"
)

// ApplicationStore is the persistence surface the application lifecycle
// needs.
type ApplicationStore interface {
	GetJobPosting(ctx context.Context, id string) (*model.JobPosting, error)
	CreateApplication(ctx context.Context, app *model.Application) error
	GetApplication(ctx context.Context, id string) (*model.Application, error)
	GetApplicationWithJob(ctx context.Context, id string) (*storage.ApplicationWithJob, error)
	ListWorkerApplications(ctx context.Context, workerID string) ([]storage.ApplicationWithJob, error)
	ListApplicantsForPosting(ctx context.Context, jobPostingID string) ([]model.Application, error)
	DeleteApplication(ctx context.Context, id, workerID string) error
	UpdateApplicationStatus(ctx context.Context, id string, from, to domain.ApplicationStatus, now time.Time, events ...domain.Event) error
	MarkApplicationCompleted(ctx context.Context, id string, upd storage.CompletionUpdate, now time.Time, events ...domain.Event) error
	ConfirmCompletion(ctx context.Context, id string, rating sql.NullInt64, review sql.NullString, now time.Time, events ...domain.Event) error
	ListPendingConfirmations(ctx context.Context, employerID string) ([]model.PendingConfirmation, error)
	CreateOfferForAcceptedApplication(ctx context.Context, offer *model.JobOffer, from domain.ApplicationStatus, now time.Time, events ...domain.Event) (*model.JobOffer, error)
}

// ApplicationService drives the outer application state machine and the
// nested work-status machine, including the two-sided completion
// handshake.
type ApplicationService struct {
	store    ApplicationStore
	ratings  *RatingService
	relay    *OutboxRelay
	offerTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewApplicationService(store ApplicationStore, ratings *RatingService, relay *OutboxRelay, offerTTL time.Duration, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{
		store:    store,
		ratings:  ratings,
		relay:    relay,
		offerTTL: offerTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Apply creates an application in the applied state. One application
// per (posting, worker) pair; a duplicate reports ErrAlreadyApplied.
func (s *ApplicationService) Apply(ctx context.Context, workerID, jobPostingID string) (*model.Application, error) {
	posting, err := s.store.GetJobPosting(ctx, jobPostingID)
	if err != nil {
		return nil, err
	}
	if !posting.IsActive {
		return nil, fmt.Errorf("%w: job posting is no longer active", domain.ErrInvalidState)
	}

	now := s.now()
	app := &model.Application{
		ID:           uuid.New().String(),
		JobPostingID: jobPostingID,
		WorkerID:     workerID,
		Status:       string(domain.ApplicationApplied),
		WorkStatus:   string(domain.WorkPending),
		AppliedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateApplication(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info("Application created",
		slog.String("application_id", app.ID),
		slog.String("job_posting_id", jobPostingID),
		slog.String("worker_id", workerID),
	)
	return app, nil
}

// Decide applies an employer decision: shortlist, accept or reject.
// Accepting spawns exactly one job offer with the posting's schedule
// denormalized onto it; re-accepting an already-accepted application is
// an idempotent no-op that returns the existing offer, tolerating
// client retries.
func (s *ApplicationService) Decide(ctx context.Context, applicationID, employerID string, decision domain.ApplicationStatus) (*model.Application, *model.JobOffer, error) {
	withJob, err := s.store.GetApplicationWithJob(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	if withJob.JobDeleted {
		return nil, nil, domain.ErrJobDeleted
	}
	if withJob.Job.EmployerID != employerID {
		return nil, nil, domain.ErrForbidden
	}

	app := withJob.Application
	current, err := domain.ParseApplicationStatus(app.Status)
	if err != nil {
		return nil, nil, err
	}

	// Idempotent re-accept.
	if decision == domain.ApplicationAccepted && current == domain.ApplicationAccepted {
		return &app, nil, nil
	}

	if !current.CanTransition(decision) {
		return nil, nil, fmt.Errorf("%w: cannot move application from %s to %s",
			domain.ErrInvalidState, current, decision)
	}

	now := s.now()

	if decision == domain.ApplicationAccepted {
		offer := s.buildOffer(&app, withJob.Job, now)
		event := domain.Event{
			RecipientID:   app.WorkerID,
			RecipientRole: domain.RoleWorker,
			Type:          domain.EventOfferReceived,
			Title:         "You Received a Job Offer!",
			Message:       fmt.Sprintf("Your application for %q was accepted. Accept the offer to schedule the work.", withJob.Job.Title),
			Metadata: map[string]string{
				"offer_id":       offer.ID,
				"application_id": app.ID,
				"job_id":         app.JobPostingID,
			},
		}

		created, err := s.store.CreateOfferForAcceptedApplication(ctx, offer, current, now, event)
		if err != nil {
			return nil, nil, err
		}

		s.relay.Relay(ctx)
		app.Status = string(domain.ApplicationAccepted)
		return &app, created, nil
	}

	event := decisionEvent(&app, withJob.Job, decision)
	if err := s.store.UpdateApplicationStatus(ctx, applicationID, current, decision, now, event); err != nil {
		return nil, nil, err
	}

	s.relay.Relay(ctx)
	app.Status = string(decision)
	return &app, nil, nil
}

// CompletionRequest is the worker-side completion payload. Rating and
// review apply to the employer.
type CompletionRequest struct {
	Notes  string
	Rating *int
	Review string
}

// MarkCompleted advances work to completed once the scheduled end has
// passed, raising the employer confirmation flag. Before the scheduled
// end it fails with an EarlyCompletionError carrying the exact
// remaining wait.
func (s *ApplicationService) MarkCompleted(ctx context.Context, applicationID, workerID string, req CompletionRequest) (*model.Application, error) {
	withJob, err := s.store.GetApplicationWithJob(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	app := withJob.Application
	if app.WorkerID != workerID {
		return nil, domain.ErrNotFound
	}
	if app.Status != string(domain.ApplicationAccepted) {
		return nil, fmt.Errorf("%w: can only complete accepted jobs", domain.ErrInvalidState)
	}
	if app.WorkStatus == string(domain.WorkCompleted) {
		return nil, fmt.Errorf("%w: job already marked as completed", domain.ErrInvalidState)
	}

	now := s.now()

	// A deleted posting carries no schedule; the completion gate only
	// applies while the posting is present.
	if !withJob.JobDeleted {
		if end, ok := jobEndTime(withJob.Job); ok && now.Before(end) {
			return nil, &domain.EarlyCompletionError{
				ScheduledEnd: end,
				Remaining:    end.Sub(now),
			}
		}
	}

	upd := storage.CompletionUpdate{
		Notes:  nullString(req.Notes),
		Rating: nullRating(req.Rating),
		Review: nullString(req.Review),
	}

	var events []domain.Event
	if !withJob.JobDeleted {
		events = append(events, domain.Event{
			RecipientID:   withJob.Job.EmployerID,
			RecipientRole: domain.RoleEmployer,
			Type:          domain.EventCompletionSubmitted,
			Title:         "Worker Marked a Job Completed",
			Message:       fmt.Sprintf("The work on %q is done and awaits your confirmation.", withJob.Job.Title),
			Metadata: map[string]string{
				"application_id": app.ID,
				"job_id":         app.JobPostingID,
			},
		})
	}

	if err := s.store.MarkApplicationCompleted(ctx, applicationID, upd, now, events...); err != nil {
		return nil, err
	}

	// Worker's rating of the employer feeds the employer's average.
	if req.Rating != nil && !withJob.JobDeleted {
		if _, err := s.ratings.Recompute(ctx, SubjectEmployer, withJob.Job.EmployerID); err != nil {
			s.logger.Warn("Failed to recompute employer rating",
				slog.String("employer_id", withJob.Job.EmployerID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.relay.Relay(ctx)
	return s.store.GetApplication(ctx, applicationID)
}

// ConfirmCompletion is the employer's side of the handshake: it stores
// the employer's rating of the worker, clears the pending flag and
// recomputes the worker's average. A second confirmation observes the
// cleared flag and reports a benign ErrAlreadyConfirmed; the rating is
// never applied twice.
func (s *ApplicationService) ConfirmCompletion(ctx context.Context, applicationID, employerID string, rating *int, review string) (*model.Application, error) {
	withJob, err := s.store.GetApplicationWithJob(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if withJob.JobDeleted {
		return nil, domain.ErrJobDeleted
	}
	if withJob.Job.EmployerID != employerID {
		return nil, domain.ErrForbidden
	}

	app := withJob.Application
	if app.WorkStatus != string(domain.WorkCompleted) {
		return nil, fmt.Errorf("%w: worker must mark the job completed first", domain.ErrInvalidState)
	}

	event := domain.Event{
		RecipientID:   app.WorkerID,
		RecipientRole: domain.RoleWorker,
		Type:          domain.EventCompletionConfirmed,
		Title:         "Job Completion Confirmed",
		Message:       fmt.Sprintf("The employer confirmed your completed work on %q.", withJob.Job.Title),
		Metadata: map[string]string{
			"application_id": app.ID,
			"job_id":         app.JobPostingID,
		},
	}

	err = s.store.ConfirmCompletion(ctx, applicationID, nullRating(rating), nullString(review), s.now(), event)
	if err != nil {
		return nil, err
	}

	if rating != nil {
		if _, err := s.ratings.Recompute(ctx, SubjectWorker, app.WorkerID); err != nil {
			s.logger.Warn("Failed to recompute worker rating",
				slog.String("worker_id", app.WorkerID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.relay.Relay(ctx)
	return s.store.GetApplication(ctx, applicationID)
}

// Withdraw deletes a worker's application while it is still in the
// applied state. Once the employer has shortlisted or accepted it the
// withdrawal is refused.
func (s *ApplicationService) Withdraw(ctx context.Context, applicationID, workerID string) error {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.WorkerID != workerID {
		return domain.ErrNotFound
	}
	if app.Status != string(domain.ApplicationApplied) {
		return fmt.Errorf("%w: cannot withdraw once the employer has acted on the application",
			domain.ErrInvalidState)
	}

	return s.store.DeleteApplication(ctx, applicationID, workerID)
}

// ListMine returns the worker's applications, tolerating deleted
// postings by flagging them instead of failing.
func (s *ApplicationService) ListMine(ctx context.Context, workerID string) ([]storage.ApplicationWithJob, error) {
	return s.store.ListWorkerApplications(ctx, workerID)
}

// Get returns one application for its worker, with the posting joined.
func (s *ApplicationService) Get(ctx context.Context, applicationID, workerID string) (*storage.ApplicationWithJob, error) {
	withJob, err := s.store.GetApplicationWithJob(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if withJob.Application.WorkerID != workerID {
		return nil, domain.ErrNotFound
	}
	return withJob, nil
}

// PendingConfirmationView is one completed-but-unconfirmed application
// in the employer's queue, with the waiting time precomputed.
type PendingConfirmationView struct {
	model.PendingConfirmation
	DaysPending int
}

// PendingConfirmations lists the employer's outstanding confirmations,
// oldest completion first, each annotated with whole days pending.
func (s *ApplicationService) PendingConfirmations(ctx context.Context, employerID string) ([]PendingConfirmationView, error) {
	rows, err := s.store.ListPendingConfirmations(ctx, employerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]PendingConfirmationView, len(rows))
	for i, row := range rows {
		views[i] = PendingConfirmationView{
			PendingConfirmation: row,
			DaysPending:         int(now.Sub(row.CompletedAt).Hours() / 24),
		}
	}
	return views, nil
}

// ListApplicants returns the applications for one of the employer's
// postings.
func (s *ApplicationService) ListApplicants(ctx context.Context, jobPostingID, employerID string) ([]model.Application, error) {
	posting, err := s.store.GetJobPosting(ctx, jobPostingID)
	if err != nil {
		return nil, err
	}
	if posting.EmployerID != employerID {
		return nil, domain.ErrForbidden
	}

	return s.store.ListApplicantsForPosting(ctx, jobPostingID)
}

func (s *ApplicationService) buildOffer(app *model.Application, posting *model.JobPosting, now time.Time) *model.JobOffer {
	return &model.JobOffer{
		ID:                 uuid.New().String(),
		JobPostingID:       posting.ID,
		ApplicationID:      app.ID,
		WorkerID:           app.WorkerID,
		EmployerID:         posting.EmployerID,
		OfferStatus:        string(domain.OfferPending),
		JobTitle:           posting.Title,
		ScheduledDate:      posting.ScheduledDate,
		ScheduledStartTime: posting.ScheduledStartTime,
		ScheduledEndTime:   posting.ScheduledEndTime,
		OfferedAt:          now,
		ExpiresAt:          now.Add(s.offerTTL),
		UpdatedAt:          now,
	}
}

// jobEndTime resolves when a job is allowed to be marked complete,
// trying expected_completion_at, then date+end time, then
// date+start time+duration hours.
func jobEndTime(posting *model.JobPosting) (time.Time, bool) {
	if posting.ExpectedCompletionAt.Valid {
		return posting.ExpectedCompletionAt.Time, true
	}
	if posting.ScheduledDate.Valid && posting.ScheduledEndTime.Valid {
		if t, err := parseDateTime(posting.ScheduledDate.String, posting.ScheduledEndTime.String); err == nil {
			return t, true
		}
	}
	if posting.ScheduledDate.Valid && posting.ScheduledStartTime.Valid && posting.DurationHours.Valid {
		if t, err := parseDateTime(posting.ScheduledDate.String, posting.ScheduledStartTime.String); err == nil {
			return t.Add(time.Duration(posting.DurationHours.Float64 * float64(time.Hour))), true
		}
	}
	return time.Time{}, false
}

func parseDateTime(date, clock string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, date+" "+clock, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable schedule %q %q", date, clock)
}

func decisionEvent(app *model.Application, posting *model.JobPosting, decision domain.ApplicationStatus) domain.Event {
	switch decision {
	case domain.ApplicationShortlisted:
		return domain.Event{
			RecipientID:   app.WorkerID,
			RecipientRole: domain.RoleWorker,
			Type:          domain.EventApplicationShortlisted,
			Title:         "You Were Shortlisted!",
			Message:       fmt.Sprintf("Your application for %q made the shortlist.", posting.Title),
			Metadata:      map[string]string{"application_id": app.ID, "job_id": app.JobPostingID},
		}
	default:
		return domain.Event{
			RecipientID:   app.WorkerID,
			RecipientRole: domain.RoleWorker,
			Type:          domain.EventApplicationRejected,
			Title:         "Application Update",
			Message:       fmt.Sprintf("Your application for %q was not selected.", posting.Title),
			Metadata:      map[string]string{"application_id": app.ID, "job_id": app.JobPostingID},
		}
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullRating(r *int) sql.NullInt64 {
	if r == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*r), Valid: true}
}
