package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountCreated   EventType = "account_created"
	EventAccountWithdrawn EventType = "account_withdrawn"
	EventResetCodeIssued  EventType = "reset_code_issued"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Subject   string    `json:"subject"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, subject string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ResetCodeIssuedPayload carries a freshly issued recovery code to the notifier.
// The code itself is never serialized.
type ResetCodeIssuedPayload struct {
	Target    string    `json:"target"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountPayload describes a user account lifecycle change.
type AccountPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
