// Package gpio captures carrier edges from the MSF receiver module.
// The real implementation uses Linux GPIO character device events.
// The fake implementation allows testing without hardware.
package gpio

// Edge is one carrier transition, timestamped by the kernel.
type Edge struct {
	// CarrierOn is the logical carrier state after the transition. The
	// receiver board's polarity is already inverted here: raw pin high
	// means carrier off.
	CarrierOn bool

	// Time is the event timestamp in milliseconds from a monotonic clock.
	Time int64
}

// Source delivers carrier edges in chronological order.
type Source interface {
	// Edges returns the channel edges are delivered on. The channel is
	// closed when the source shuts down.
	Edges() <-chan Edge

	// Dropped reports how many edges were discarded because the channel
	// was full. Non-zero means the consumer stalled and the decoder has
	// lost timing context; it will resync on its own.
	Dropped() uint64

	// Close releases GPIO resources.
	Close() error
}

// Pin defaults (BCM numbering).
const (
	DefaultChip      = "gpiochip0"
	DefaultPinData   = 17 // receiver carrier output
	DefaultPinEnable = 27 // receiver power enable, active low
	DefaultPinLED    = 22 // carrier activity LED
)

// edgeBuffer is the capacity of the edge channel. Edges arrive at most a
// few times per second; the buffer only has to ride out consumer stalls.
const edgeBuffer = 64
