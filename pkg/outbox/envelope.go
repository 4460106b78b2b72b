package outbox

import (
	"encoding/json"
	"time"
)

// SessionRef identifies the browser session that produced the event.
type SessionRef struct {
	SessionID string `json:"sessionId"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Session    *SessionRef     `json:"session,omitempty"`
	Data       json.RawMessage `json:"data"`
}
