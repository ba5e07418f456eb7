package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when an entity does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the actor lacks the role or the
	// ownership required for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState is returned when a transition is not legal from
	// the entity's current state.
	ErrInvalidState = errors.New("invalid state for this operation")

	// ErrAlreadyDecided is returned when an offer is no longer pending,
	// including when a concurrent request won the race for it.
	ErrAlreadyDecided = errors.New("offer already decided")

	// ErrOfferExpired is returned when acting on an offer whose
	// expires_at has passed.
	ErrOfferExpired = errors.New("offer expired")

	// ErrConflict is returned when accepting an offer that overlaps one
	// of the worker's already-accepted, not-yet-completed jobs. Only a
	// re-offer of that same job posting is exempt.
	ErrConflict = errors.New("offer conflicts with an accepted job")

	// ErrAlreadyApplied is returned on a second application for the
	// same (job posting, worker) pair.
	ErrAlreadyApplied = errors.New("already applied for this job")

	// ErrAlreadyConfirmed is returned when completion was already
	// confirmed; callers treat it as a benign outcome.
	ErrAlreadyConfirmed = errors.New("completion already confirmed")

	// ErrJobDeleted is returned when the referenced job posting has
	// been removed by its employer.
	ErrJobDeleted = errors.New("job posting deleted")
)

// EarlyCompletionError is returned by MarkCompleted when the job's
// scheduled end has not passed yet. It carries the exact remaining wait
// so clients can surface it instead of a bare refusal.
type EarlyCompletionError struct {
	ScheduledEnd time.Time
	Remaining    time.Duration
}

func (e *EarlyCompletionError) Error() string {
	return fmt.Sprintf("job scheduled to end at %s, wait %s",
		e.ScheduledEnd.Format(time.RFC3339), FormatWait(e.Remaining))
}

// FormatWait renders a duration as "2h 5m" or "12 minutes", matching
// what clients display.
func FormatWait(d time.Duration) string {
	minutes := int(d.Minutes())
	if d > time.Duration(minutes)*time.Minute {
		minutes++ // round up partial minutes
	}
	hours := minutes / 60
	minutes = minutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%d minutes", minutes)
}
