package model

import (
	"database/sql"
	"time"
)

// JobPosting is a unit of work an employer offers. Schedule fields are
// optional: unscheduled postings exist and never conflict with anything.
type JobPosting struct {
	ID                   string          `db:"id"`
	EmployerID           string          `db:"employer_id"`
	Title                string          `db:"title"`
	Wage                 float64         `db:"wage"`
	Duration             sql.NullString  `db:"duration"`
	Address              string          `db:"address"`
	Latitude             sql.NullFloat64 `db:"latitude"`
	Longitude            sql.NullFloat64 `db:"longitude"`
	ScheduledDate        sql.NullString  `db:"scheduled_date"`
	ScheduledStartTime   sql.NullString  `db:"scheduled_start_time"`
	ScheduledEndTime     sql.NullString  `db:"scheduled_end_time"`
	ExpectedCompletionAt sql.NullTime    `db:"expected_completion_at"`
	DurationHours        sql.NullFloat64 `db:"duration_hours"`
	IsActive             bool            `db:"is_active"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
}

// Application is a worker's claim on a job posting. Exactly one row per
// (job_posting_id, worker_id) pair, enforced by a unique constraint.
//
// Rating columns are named after the subject: employer_rating is the
// worker's rating of the employer, worker_rating is the employer's
// rating of the worker.
type Application struct {
	ID                          string         `db:"id"`
	JobPostingID                string         `db:"job_posting_id"`
	WorkerID                    string         `db:"worker_id"`
	Status                      string         `db:"status"`
	WorkStatus                  string         `db:"work_status"`
	EmployerConfirmationPending bool           `db:"employer_confirmation_pending"`
	AppliedAt                   time.Time      `db:"applied_at"`
	CompletedAt                 sql.NullTime   `db:"completed_at"`
	CompletionNotes             sql.NullString `db:"completion_notes"`
	EmployerRating              sql.NullInt64  `db:"employer_rating"`
	EmployerReview              sql.NullString `db:"employer_review"`
	WorkerRating                sql.NullInt64  `db:"worker_rating"`
	WorkerReview                sql.NullString `db:"worker_review"`
	UpdatedAt                   time.Time      `db:"updated_at"`
}

// JobOffer is created the instant an application is accepted. Schedule
// fields and the job title are denormalized from the posting at offer
// time so conflict computation survives posting edits and deletes.
type JobOffer struct {
	ID                 string         `db:"id"`
	JobPostingID       string         `db:"job_posting_id"`
	ApplicationID      string         `db:"application_id"`
	WorkerID           string         `db:"worker_id"`
	EmployerID         string         `db:"employer_id"`
	OfferStatus        string         `db:"offer_status"`
	JobTitle           string         `db:"job_title"`
	ScheduledDate      sql.NullString `db:"scheduled_date"`
	ScheduledStartTime sql.NullString `db:"scheduled_start_time"`
	ScheduledEndTime   sql.NullString `db:"scheduled_end_time"`
	RejectReason       sql.NullString `db:"reject_reason"`
	OfferedAt          time.Time      `db:"offered_at"`
	ExpiresAt          time.Time      `db:"expires_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

// OutboxEvent is a committed-but-possibly-undelivered notification.
// Lifecycle transitions insert these in the same transaction as the
// status write; the relay publishes them to RabbitMQ afterwards.
type OutboxEvent struct {
	ID            string       `db:"id"`
	RecipientID   string       `db:"recipient_id"`
	RecipientRole string       `db:"recipient_role"`
	EventType     string       `db:"event_type"`
	Title         string       `db:"title"`
	Message       string       `db:"message"`
	Metadata      []byte       `db:"metadata"`
	PublishedAt   sql.NullTime `db:"published_at"`
	CreatedAt     time.Time    `db:"created_at"`
}

// Notification is a delivered, user-visible notification row written by
// the notifier service.
type Notification struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	UserRole  string    `db:"user_role"`
	Type      string    `db:"type"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	Metadata  []byte    `db:"metadata"`
	IsRead    bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
}

// PendingConfirmation is the employer-facing row for the completed-but-
// unconfirmed listing, joined with the worker profile.
type PendingConfirmation struct {
	ApplicationID   string         `db:"application_id"`
	JobPostingID    string         `db:"job_posting_id"`
	JobTitle        string         `db:"job_title"`
	WorkerID        string         `db:"worker_id"`
	WorkerName      string         `db:"worker_name"`
	WorkerRating    float64        `db:"worker_rating"`
	CompletedAt     time.Time      `db:"completed_at"`
	CompletionNotes sql.NullString `db:"completion_notes"`
}
