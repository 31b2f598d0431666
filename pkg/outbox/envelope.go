package outbox

import (
	"encoding/json"
	"time"
)

// OwnerRef identifies the customer or guest session that produced the event.
type OwnerRef struct {
	CustomerID *string `json:"customerId,omitempty"`
	SessionID  *string `json:"sessionId,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Owner      *OwnerRef       `json:"owner,omitempty"`
	Data       json.RawMessage `json:"data"`
}
