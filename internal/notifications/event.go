// Package notifications provides real-time event delivery over Redis
// pub/sub and websockets.
package notifications

import "encoding/json"

// Event types pushed to connected clients.
const (
	EventMessageReceived      = "message.received"
	EventMessageReplied       = "message.replied"
	EventListingStatusChanged = "listing.status_changed"
	EventReportResolved       = "report.resolved"
)

// Event is the envelope every pushed notification uses.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Encode renders the event as its wire payload.
func (e Event) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
