// Package domain holds the pure business rules of the marketplace core:
// the application / work / offer state machines, the schedule overlap
// utility and the conflict detector. It has no dependency on gin, sqlx
// or any transport concern.
//
// Application status graph (employer-driven):
//
//	applied ──► shortlisted ──► accepted
//	    │            │
//	    └────────────┴──► rejected
//
// Work status graph (worker/employer-driven, valid once status=accepted):
//
//	pending ──► in_progress ──► completed
//
// The terminal "confirmed" state is the employer_confirmation_pending
// flag flipping to false, not a distinct work status.
//
// Offer status graph (worker-driven):
//
//	pending ──► accepted | rejected | expired
package domain

import "fmt"

// ApplicationStatus mirrors the status column on job_applications.
type ApplicationStatus string

const (
	ApplicationApplied     ApplicationStatus = "applied"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationAccepted    ApplicationStatus = "accepted"
	ApplicationRejected    ApplicationStatus = "rejected"
)

// applicationTransitions lists every allowed (from → to) pair.
// rejected and accepted are terminal for employer decisions; re-accepting
// an accepted application is handled as an idempotent no-op by the
// service layer, not as a transition.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationApplied:     {ApplicationShortlisted, ApplicationAccepted, ApplicationRejected},
	ApplicationShortlisted: {ApplicationAccepted, ApplicationRejected},
}

// ParseApplicationStatus converts a raw string to an ApplicationStatus,
// returning an error for unknown values.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	switch st {
	case ApplicationApplied, ApplicationShortlisted, ApplicationAccepted, ApplicationRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// CanTransition reports whether the employer may move an application
// from → to.
func (from ApplicationStatus) CanTransition(to ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no employer decision can follow this status.
func (s ApplicationStatus) Terminal() bool {
	return len(applicationTransitions[s]) == 0
}

// WorkStatus mirrors the work_status column on job_applications.
type WorkStatus string

const (
	WorkPending    WorkStatus = "pending"
	WorkInProgress WorkStatus = "in_progress"
	WorkCompleted  WorkStatus = "completed"
)

var workTransitions = map[WorkStatus][]WorkStatus{
	WorkPending:    {WorkInProgress},
	WorkInProgress: {WorkCompleted},
}

// ParseWorkStatus converts a raw string to a WorkStatus.
func ParseWorkStatus(s string) (WorkStatus, error) {
	st := WorkStatus(s)
	switch st {
	case WorkPending, WorkInProgress, WorkCompleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown work status %q", s)
}

// CanTransition reports whether work may advance from → to.
func (from WorkStatus) CanTransition(to WorkStatus) bool {
	for _, allowed := range workTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// OfferStatus mirrors the offer_status column on job_offers.
type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
	OfferExpired  OfferStatus = "expired"
)

var offerTransitions = map[OfferStatus][]OfferStatus{
	OfferPending: {OfferAccepted, OfferRejected, OfferExpired},
}

// ParseOfferStatus converts a raw string to an OfferStatus.
func ParseOfferStatus(s string) (OfferStatus, error) {
	st := OfferStatus(s)
	switch st {
	case OfferPending, OfferAccepted, OfferRejected, OfferExpired:
		return st, nil
	}
	return "", fmt.Errorf("unknown offer status %q", s)
}

// CanTransition reports whether an offer may move from → to. accepted,
// rejected and expired are terminal.
func (from OfferStatus) CanTransition(to OfferStatus) bool {
	for _, allowed := range offerTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
