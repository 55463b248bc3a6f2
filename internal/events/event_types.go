package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered   EventType = "account_registered"
	EventAccountBootstrapped EventType = "account_bootstrapped"
	EventLoginSucceeded      EventType = "login_succeeded"
	EventLoginFailed         EventType = "login_failed"
	EventTokenRejected       EventType = "token_rejected"
	EventTokenRenewed        EventType = "token_renewed"
	EventElevationDenied     EventType = "elevation_denied"
	EventPayloadRejected     EventType = "payload_rejected"
	EventPrivilegesChanged   EventType = "privileges_changed"
)

// AllEventTypes lists every type, in declaration order.
var AllEventTypes = []EventType{
	EventAccountRegistered,
	EventAccountBootstrapped,
	EventLoginSucceeded,
	EventLoginFailed,
	EventTokenRejected,
	EventTokenRenewed,
	EventElevationDenied,
	EventPayloadRejected,
	EventPrivilegesChanged,
}

// Event is an audit record. Reason is for local diagnostics only and
// must never be copied into a client response.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Identity  string    `json:"identity,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// New stamps an event with an ID and the given time.
func New(eventType EventType, identity, reason string, at time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Identity:  identity,
		Reason:    reason,
		Timestamp: at,
	}
}

// ElevationPayload describes a renewal request.
type ElevationPayload struct {
	Requested []string `json:"requested"`
}

// PrivilegesChangedPayload describes an administrative privilege update.
type PrivilegesChangedPayload struct {
	ChangedBy  string   `json:"changed_by"`
	Privileges []string `json:"privileges"`
}
