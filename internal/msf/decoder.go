package msf

import (
	"sync"

	"github.com/sweeney/msf-clock/internal/trace"
)

// Decoder is the carrier-edge state machine. Feed it every carrier
// transition via OnEdge; after a clean minute preamble and 59 valid
// cells it publishes a validated DateTime.
//
// OnEdge, SetListener, and State must all be called from a single
// goroutine. Latest, Consume, Synced, and Counts may be called from any
// goroutine; the published date/time is handed out as a whole-struct
// copy under a lock, so a reader can never observe a torn update.
//
// Edges must arrive in chronological order with a monotonically
// non-decreasing millisecond timestamp: the state machine works entirely
// on interval arithmetic between consecutive edges, and out-of-order or
// duplicate delivery corrupts decoding silently. That ordering is the
// edge source's responsibility.
type Decoder struct {
	log *trace.Logger

	// Interval tracking between consecutive edges.
	lastOnStart  int64
	lastOffStart int64
	lastOnWidth  PulseWidth
	lastOffWidth PulseWidth

	// Cell tracking. cursor is the bit index currently being written,
	// 1..59 while synced; 60 means a full frame has just completed and
	// the next preamble should trigger a decode.
	bits      BitFrame
	cellStart int64
	cursor    int
	halfSync  bool
	resync    bool

	listener Listener
	mask     EventKind

	// Guards the fields below plus synced, which are the only state
	// visible to other goroutines.
	mu       sync.Mutex
	synced   bool
	last     DateTime
	hasValid bool
	updated  bool
	counts   Counts
}

// New creates a decoder in the seeking state. logger may be nil.
//
// resync starts true: the very first edge has no predecessor to measure
// against, so it always runs the recovery path and leaves the decoder in
// a known-clean seeking state.
func New(logger *trace.Logger) *Decoder {
	return &Decoder{
		log:    logger,
		cursor: 1,
		resync: true,
	}
}

// SetListener registers or replaces the single event listener and its
// kind mask. A nil listener or zero mask disables delivery. The listener
// runs synchronously inside OnEdge; it must not block for long and must
// not call OnEdge reentrantly.
func (d *Decoder) SetListener(fn Listener, mask EventKind) {
	d.listener = fn
	d.mask = mask
}

// Synced reports whether the decoder currently trusts its cell
// boundaries and is accumulating bits.
func (d *Decoder) Synced() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.synced
}

// State returns the current synchronization phase.
func (d *Decoder) State() SyncState {
	if d.isSynced() {
		return Synced
	}
	if d.halfSync {
		return HalfSync
	}
	return Seeking
}

// Latest returns a copy of the most recently decoded date/time and
// whether any valid decode has ever been produced.
func (d *Decoder) Latest() (DateTime, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.hasValid
}

// Consume returns the most recent decode if it has not been consumed
// yet, clearing the updated flag. This is the single-reader handshake a
// polling consumer uses to print or publish each new minute exactly once.
func (d *Decoder) Consume() (DateTime, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.updated {
		return DateTime{}, false
	}
	d.updated = false
	return d.last, true
}

// Counts returns a snapshot of the running statistics.
func (d *Decoder) Counts() Counts {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts
}

// OnEdge processes one carrier transition observed at the given
// monotonic millisecond timestamp. It classifies the interval the edge
// terminates, advances the synchronization protocol, writes frame bits,
// and on frame completion validates and publishes. Any anomaly falls
// through to the resync path at the bottom, so the machine is back in a
// recoverable state before OnEdge returns.
func (d *Decoder) OnEdge(level Level, now int64) {
	d.mu.Lock()
	d.counts.Edges++
	d.mu.Unlock()

	switch level {
	case CarrierOff:
		d.carrierOff(now)
	case CarrierOn:
		d.carrierOn(now)
	default:
		d.log.Printf(trace.EdgeError, "unknown carrier level %d", level)
		d.resync = true
	}

	if d.resync {
		d.log.Printf(trace.Sync, "SYNC lost")
		// Emitted on every resync trigger, synced or not, matching the
		// receiver's observed behavior.
		d.notify(EventSyncLost)
		d.cursor = 1
		d.halfSync = false
		d.setSynced(false)
		d.resync = false
	}
}

// carrierOff handles the end of a carrier-on span.
func (d *Decoder) carrierOff(now int64) {
	d.lastOffStart = now
	d.lastOnWidth = Classify(now - d.lastOnStart)
	d.log.Printf(trace.Carrier, "OFF %d", now-d.lastOnStart)

	// While unsynced, every carrier-off edge is potentially the start of
	// a new cell.
	if !d.isSynced() {
		d.cellStart = now
	}

	switch d.lastOnWidth {
	case Width500:
		if d.halfSync {
			// 500 ms on after 500 ms off: minute preamble complete, this
			// edge is the start of cell 1.
			d.log.Printf(trace.Sync, "SYNC")
			d.notify(EventSync)
			d.setSynced(true)
			d.cellStart = now
			if d.cursor == 60 {
				// The frame that just ended is complete; decode it.
				d.resync = !d.decodeFrame()
			}
			d.cursor = 1
		} else {
			d.log.Printf(trace.Sync, "missing half sync")
			d.resync = true
		}

	case Width900: // 100 ms off, 900 ms on: A=0 B=0
		if !d.isSynced() {
			break
		}
		d.bits.A.Set(d.cursor, false)
		d.bits.B.Set(d.cursor, false)
		d.cursor++
		d.cellStart = now

	case Width800: // 200 ms off, 800 ms on: A=1 B=0
		if !d.isSynced() {
			break
		}
		d.bits.A.Set(d.cursor, true)
		d.bits.B.Set(d.cursor, false)
		d.cursor++
		d.cellStart = now

	case Width700: // 300 ms off, 700 ms on: B=1, A resolved at the on edge
		if !d.isSynced() {
			break
		}
		d.bits.B.Set(d.cursor, true)
		d.cursor++
		d.cellStart = now

	case Width100:
		// The mid-cell marker of the off-on-off-on A=0 B=1 shape. Only
		// valid when this edge lands 200 ms into the cell.
		if !d.isSynced() {
			break
		}
		if Classify(now-d.cellStart) == Width200 {
			d.bits.A.Set(d.cursor, false)
			d.bits.B.Set(d.cursor, true)
			d.cursor++
		} else {
			d.resync = true
		}

	default:
		d.log.Printf(trace.EdgeError, "bad carrier-on width %d", now-d.lastOnStart)
		d.resync = true
	}
}

// carrierOn handles the end of a carrier-off span. Which bits the edge
// encodes depends on its offset from the cell start; some shapes also
// need the width of the off span that just ended, because the receiver
// only reports two-level transitions and a bit pair must be inferred
// from the sequence of two consecutive intervals.
func (d *Decoder) carrierOn(now int64) {
	d.lastOnStart = now
	d.lastOffWidth = Classify(now - d.lastOffStart)
	d.log.Printf(trace.Carrier, "ON %d", now-d.lastOffStart)

	switch Classify(now - d.cellStart) {
	case Width500:
		if d.lastOffWidth == Width500 {
			// Carrier back on 500 ms into the cell after a 500 ms off
			// span: first half of the minute preamble. If the carrier
			// now stays on for 500 ms this is a valid sync.
			d.halfSync = true
		} else {
			d.log.Printf(trace.Sync, "unexpected half sync")
			d.resync = true
		}

	case Width100: // A=0; B resolved by the following off edge
		if !d.isSynced() {
			break
		}
		d.bits.A.Set(d.cursor, false)

	case Width200: // A=1 B=0
		if !d.isSynced() {
			break
		}
		d.bits.A.Set(d.cursor, true)
		d.bits.B.Set(d.cursor, false)

	case Width300: // B=0; A depends on the off span that just ended
		if !d.isSynced() {
			break
		}
		d.bits.B.Set(d.cursor, false)
		switch d.lastOffWidth {
		case Width100:
			d.bits.A.Set(d.cursor, false)
		case Width300:
			d.bits.A.Set(d.cursor, true)
		default:
			d.resync = true
		}

	default:
		d.log.Printf(trace.EdgeError, "bad carrier-on offset %d", now-d.cellStart)
		d.resync = true
	}
}

// decodeFrame validates the completed frame and, if it passes, extracts
// and publishes the date/time atomically. Reports whether the frame was
// valid.
func (d *Decoder) decodeFrame() bool {
	if err := d.bits.Validate(); err != nil {
		d.log.Printf(trace.BCDError, "%v", err)
		d.mu.Lock()
		d.counts.FramesRejected++
		d.mu.Unlock()
		return false
	}

	d.log.Dump(d.bits.A.Get, d.bits.B.Get)
	dt := d.bits.Extract()

	d.mu.Lock()
	d.last = dt
	d.hasValid = true
	d.updated = true
	d.counts.FramesDecoded++
	d.mu.Unlock()

	d.notify(EventTimeUpdated)
	return true
}

func (d *Decoder) notify(kind EventKind) {
	if d.listener != nil && d.mask&kind != 0 {
		d.listener(kind)
	}
}

func (d *Decoder) isSynced() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.synced
}

func (d *Decoder) setSynced(v bool) {
	d.mu.Lock()
	if v && !d.synced {
		d.counts.SyncAcquired++
	}
	if !v && d.synced {
		d.counts.SyncLost++
	}
	d.synced = v
	d.mu.Unlock()
}
