// Package status provides a thread-safe status tracker for the msf-clock
// daemon. It is read by HTTP handlers and embedded in MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/msf-clock/internal/msf"
)

// Config contains daemon configuration for display.
type Config struct {
	Chip        string
	DataPin     int
	EnablePin   int
	LEDPin      int
	Broker      string
	HTTPAddr    string
	HeartbeatMs int64
	Trace       string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	State         msf.SyncState
	Time          msf.DateTime
	TimeValid     bool
	DecodedAt     time.Time // local wall clock of the last decode
	Counts        msf.Counts
	DroppedEdges  uint64
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Synced reports whether the decoder was fully synchronized.
func (s Snapshot) Synced() bool {
	return s.State == msf.Synced
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the decoder state, counters, and dropped-edge count.
// Called from the run loop after each batch of edges.
func (t *Tracker) Update(state msf.SyncState, counts msf.Counts, dropped uint64) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Counts = counts
	t.snap.DroppedEdges = dropped
	t.mu.Unlock()
}

// SetTime records a freshly decoded date/time.
func (t *Tracker) SetTime(dt msf.DateTime, at time.Time) {
	t.mu.Lock()
	t.snap.Time = dt
	t.snap.TimeValid = true
	t.snap.DecodedAt = at
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
