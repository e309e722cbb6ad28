// Package cloud provides the messaging collaborator: the MQTT link to the
// monitoring endpoint, with explicit connect/disconnect budgets, named-event
// publishing, inbound subscriptions, and a uniform one-message-per-second
// meter on all outbound traffic.
package cloud

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Event names. These are the outbound event channels the monitoring side
// keys on; the wire topic is "<prefix>/<event>".
const (
	EventReport          = "Monitoring_Event"
	EventState           = "State"
	EventStateTransition = "State Transition"
	EventAlerts          = "Alerts"
	EventStatus          = "Status"
	EventMode            = "Mode"
	EventCleanup         = "Daily Cleanup"
	EventHookResponse    = "Hook Response"
)

// Handler receives an inbound message payload.
type Handler func(payload string)

// Client is the cloud messaging collaborator.
type Client interface {
	// Connect brings the link up, returning once connected or after the
	// timeout. It must return on timeout rather than hang.
	Connect(timeout time.Duration) error

	// Disconnect tears the link down, waiting up to timeout for the
	// broker handshake.
	Disconnect(timeout time.Duration) error

	// IsConnected reports whether the link is currently up.
	IsConnected() bool

	// Publish sends data on the named event channel. All publishes share
	// the outbound meter: a call may sleep until the 1 msg/s budget is
	// available.
	Publish(event, data string) error

	// Subscribe registers a handler for an inbound topic. The handler runs
	// on the client's receive goroutine and must only hand the payload off,
	// never mutate controller state.
	Subscribe(topic string, h Handler) error

	// Close releases the client.
	Close() error
}

// Report is the once-per-cycle status record. Field names are the deployed
// webhook contract; all values are integers.
type Report struct {
	AlertValue int `json:"alertValue"`
	PumpAmps   int `json:"pumpAmps"`
	PumpMins   int `json:"pumpMins"`
	Battery    int `json:"battery"`
	Temp       int `json:"temp"`
	Resets     int `json:"resets"`
}

// FormatReport creates the JSON payload for a report.
func FormatReport(r Report) ([]byte, error) {
	return json.Marshal(r)
}

// ResponseCode parses an acknowledgment payload. The monitoring side's
// response template reduces the acknowledgment to a single numeric status
// code; ok is false when the payload is not a number.
func ResponseCode(payload string) (code int, ok bool) {
	s := strings.TrimSpace(payload)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, false
	}
	return n, true
}
