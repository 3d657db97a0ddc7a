// Package msf decodes the UK MSF 60 kHz time signal from the carrier
// on/off transitions reported by a radio receiver module. The receiver
// does the demodulation; this package only sees two-level edges with
// millisecond timestamps and reconstructs the per-minute date/time frame
// from the pulse-width-modulated bitstream.
//
// The decoder follows the NPL MSF time and date code specification:
// each second (cell) carries two bits, A and B, encoded as one of four
// carrier-off/carrier-on pulse shapes. A minute boundary is marked by a
// 500 ms off / 500 ms on preamble; the 59 A and B bits that follow are
// validated against fixed-bit and odd-parity rules before the calendar
// fields are extracted.
//
// Like the rest of this repo's pure logic, the package has no hardware
// or transport dependencies; time is injected as millisecond timestamps
// on each edge.
package msf

import "fmt"

// Level is the two-level carrier state reported by the receiver, already
// normalized for receiver polarity by the edge source.
type Level int

const (
	CarrierOff Level = iota
	CarrierOn
)

func (l Level) String() string {
	if l == CarrierOn {
		return "ON"
	}
	return "OFF"
}

// SyncState describes how far the decoder has progressed toward a
// trusted cell boundary.
type SyncState int

const (
	// Seeking means no reliable cell boundary is known.
	Seeking SyncState = iota
	// HalfSync means a 500 ms carrier-off interval has just ended; a
	// 500 ms carrier-on interval will complete the minute preamble.
	HalfSync
	// Synced means cell boundaries are trusted and bits are being written.
	Synced
)

func (s SyncState) String() string {
	switch s {
	case HalfSync:
		return "HALF_SYNC"
	case Synced:
		return "SYNCED"
	}
	return "SEEKING"
}

// EventKind identifies a decoder lifecycle event. Kinds are bit flags so
// a listener can subscribe to a subset.
type EventKind uint32

const (
	EventSync        EventKind = 0x0001
	EventSyncLost    EventKind = 0x0002
	EventTimeUpdated EventKind = 0x0004
)

// EventAll subscribes a listener to every event kind.
const EventAll = EventSync | EventSyncLost | EventTimeUpdated

func (k EventKind) String() string {
	switch k {
	case EventSync:
		return "SYNC"
	case EventSyncLost:
		return "SYNC_LOST"
	case EventTimeUpdated:
		return "TIME_UPDATED"
	}
	return fmt.Sprintf("EVENT(0x%04x)", uint32(k))
}

// Listener receives decoder events. It is invoked synchronously from
// OnEdge, on the caller's goroutine.
type Listener func(EventKind)

var dayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DateTime is one decoded broadcast frame's calendar fields.
type DateTime struct {
	Year      uint8 // 0-99
	Month     uint8 // 1-12
	Day       uint8 // 1-31
	DayOfWeek uint8 // 0-6, Sunday = 0
	Hour      uint8 // 0-23
	Minute    uint8 // 0-59
	DST       uint8 // 1 when daylight saving time is in effect
}

// Weekday returns the three-letter day name, or "???" if DayOfWeek is
// out of range (possible on a frame whose parity happened to pass).
func (dt DateTime) Weekday() string {
	if int(dt.DayOfWeek) < len(dayNames) {
		return dayNames[dt.DayOfWeek]
	}
	return "???"
}

// String formats the date/time as DD-MM-YY HH:MM DOW.
func (dt DateTime) String() string {
	return fmt.Sprintf("%02d-%02d-%02d %02d:%02d %s",
		dt.Day, dt.Month, dt.Year, dt.Hour, dt.Minute, dt.Weekday())
}

// Counts holds running decoder statistics since construction.
type Counts struct {
	Edges          uint64 // carrier transitions processed
	SyncAcquired   uint64 // transitions from unsynced to synced
	SyncLost       uint64 // transitions from synced to unsynced
	FramesDecoded  uint64 // frames that validated and published a time
	FramesRejected uint64 // frames discarded by validation
}
