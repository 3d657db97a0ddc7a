package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Sync          string     `json:"sync"`
	Synced        bool       `json:"synced"`
	Time          *TimeJSON  `json:"time,omitempty"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"counts"`
	Config        ConfigJSON `json:"config"`
}

// TimeJSON is the JSON representation of the last decoded date/time.
type TimeJSON struct {
	DateTime  string `json:"datetime"` // DD-MM-YY HH:MM DOW
	DST       bool   `json:"dst"`
	DecodedAt string `json:"decoded_at"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of decoder statistics.
type CountsJSON struct {
	Edges          uint64 `json:"edges"`
	DroppedEdges   uint64 `json:"dropped_edges"`
	SyncAcquired   uint64 `json:"sync_acquired"`
	SyncLost       uint64 `json:"sync_lost"`
	FramesDecoded  uint64 `json:"frames_decoded"`
	FramesRejected uint64 `json:"frames_rejected"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip        string `json:"chip"`
	DataPin     int    `json:"data_pin"`
	EnablePin   int    `json:"enable_pin"`
	LEDPin      int    `json:"led_pin"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Trace       string `json:"trace"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Sync:          snap.State.String(),
		Synced:        snap.Synced(),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Edges:          snap.Counts.Edges,
			DroppedEdges:   snap.DroppedEdges,
			SyncAcquired:   snap.Counts.SyncAcquired,
			SyncLost:       snap.Counts.SyncLost,
			FramesDecoded:  snap.Counts.FramesDecoded,
			FramesRejected: snap.Counts.FramesRejected,
		},
		Config: ConfigJSON{
			Chip:        snap.Config.Chip,
			DataPin:     snap.Config.DataPin,
			EnablePin:   snap.Config.EnablePin,
			LEDPin:      snap.Config.LEDPin,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Trace:       snap.Config.Trace,
		},
	}
	if snap.TimeValid {
		inner.Time = &TimeJSON{
			DateTime:  snap.Time.String(),
			DST:       snap.Time.DST != 0,
			DecodedAt: snap.DecodedAt.UTC().Format(time.RFC3339),
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
