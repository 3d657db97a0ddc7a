// Package mqtt publishes decoded date/time updates and decoder lifecycle
// events, with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/msf-clock/internal/msf"
)

// TopicTime is the MQTT topic for decoded date/time updates.
const TopicTime = "clock/msf/time"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "clock/msf/system"

// Publisher publishes decoder output to MQTT.
type Publisher interface {
	// PublishTime sends a freshly decoded date/time to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishTime(at time.Time, dt msf.DateTime) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a lifecycle event: STARTUP, SHUTDOWN, HEARTBEAT,
// SYNC, or SYNC_LOST.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // e.g., "SIGTERM" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// TimePayload is the envelope for decoded time messages.
type TimePayload struct {
	MSF TimeInner `json:"msf"`
}

// TimeInner contains the decoded broadcast fields.
type TimeInner struct {
	ReceivedAt string `json:"received_at"` // local wall clock at decode
	DateTime   string `json:"datetime"`    // DD-MM-YY HH:MM DOW
	Year       int    `json:"year"`        // two-digit broadcast year
	Month      int    `json:"month"`
	Day        int    `json:"day"`
	DayOfWeek  string `json:"day_of_week"`
	Hour       int    `json:"hour"`
	Minute     int    `json:"minute"`
	DST        bool   `json:"dst"`
}

// FormatTimePayload creates the JSON payload for a decoded time.
func FormatTimePayload(at time.Time, dt msf.DateTime) ([]byte, error) {
	payload := TimePayload{
		MSF: TimeInner{
			ReceivedAt: at.UTC().Format(time.RFC3339),
			DateTime:   dt.String(),
			Year:       int(dt.Year),
			Month:      int(dt.Month),
			Day:        int(dt.Day),
			DayOfWeek:  dt.Weekday(),
			Hour:       int(dt.Hour),
			Minute:     int(dt.Minute),
			DST:        dt.DST != 0,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the envelope for simple system events that don't
// carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full
// status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
