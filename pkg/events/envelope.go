package events

import (
	"encoding/json"
	"time"
)

// Envelope is the stable payload structure carried on the domain events topic.
// The event action travels in the message attributes; Data holds the
// action-specific payload.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// AttributeAction is the message attribute naming the domain action.
const AttributeAction = "event_action"
