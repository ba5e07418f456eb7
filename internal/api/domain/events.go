package domain

// Recipient roles for notification events. Identity middleware supplies
// the same values on incoming requests.
const (
	RoleWorker   = "WORKER"
	RoleEmployer = "EMPLOYER"
)

// Notification event types emitted by the lifecycle transitions. The
// transition commits the event into the outbox; a separate notifier
// consumes and delivers it, so delivery failures never roll back the
// transition.
const (
	EventOfferReceived          = "offer_received"
	EventOfferAccepted          = "offer_accepted"
	EventOfferRejected          = "offer_rejected"
	EventOfferDisplaced         = "offer_displaced"
	EventApplicationShortlisted = "application_shortlisted"
	EventApplicationRejected    = "application_rejected"
	EventCompletionSubmitted    = "completion_submitted"
	EventCompletionConfirmed    = "completion_confirmed"
)

// Event is the payload written to the notification outbox.
type Event struct {
	RecipientID   string            `json:"recipient_id"`
	RecipientRole string            `json:"recipient_role"`
	Type          string            `json:"type"`
	Title         string            `json:"title"`
	Message       string            `json:"message"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}
