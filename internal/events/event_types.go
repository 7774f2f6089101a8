package events

import (
	"time"

	"github.com/popx/account-portal/internal/domain"
)

// EventType enumerates session transition identifiers.
type EventType string

const (
	EventSessionRestored EventType = "session_restored"
	EventUserLoggedIn    EventType = "user_logged_in"
	EventUserRegistered  EventType = "user_registered"
	EventUserLoggedOut   EventType = "user_logged_out"
	EventUserUpdated     EventType = "user_updated"
	EventAuthFailed      EventType = "auth_failed"
	EventErrorCleared    EventType = "error_cleared"
)

// AllEventTypes lists every type a session can publish.
var AllEventTypes = []EventType{
	EventSessionRestored,
	EventUserLoggedIn,
	EventUserRegistered,
	EventUserLoggedOut,
	EventUserUpdated,
	EventAuthFailed,
	EventErrorCleared,
}

// Event represents a session transition emitted by a session store.
type Event struct {
	ID        string               `json:"id"`
	Type      EventType            `json:"type"`
	ClientID  string               `json:"client_id"`
	UserID    string               `json:"user_id,omitempty"`
	Status    domain.SessionStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   any                  `json:"payload,omitempty"`
}

// AuthFailedPayload carries the failure behind an auth_failed event.
type AuthFailedPayload struct {
	Operation string `json:"operation"`
	Message   string `json:"message"`
	Cause     string `json:"cause,omitempty"`
}

// UserUpdatedPayload lists the fields a partial update touched.
type UserUpdatedPayload struct {
	Fields []string `json:"fields"`
}
