package domain

import "time"

// Event is an outbox event row loaded for delivery
type Event struct {
	ID            string
	RecipientID   string
	RecipientRole string
	EventType     string
	Title         string
	Message       string
	Metadata      []byte
	CreatedAt     time.Time
}

// EventMessage is the queue message referencing an outbox event
type EventMessage struct {
	EventID     string `json:"event_id"`
	DeliveryTag uint64 `json:"-"`
}
