package mqtt

import (
	"time"

	"github.com/sweeney/msf-clock/internal/msf"
)

// PublishedTime records one PublishTime call.
type PublishedTime struct {
	At       time.Time
	DateTime msf.DateTime
}

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	// Times contains all decoded times that were published.
	Times []PublishedTime

	// TimePayloads contains the JSON payloads for time updates.
	TimePayloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by PublishTime.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishTime records the decoded time.
func (f *FakePublisher) PublishTime(at time.Time, dt msf.DateTime) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.Times = append(f.Times, PublishedTime{At: at, DateTime: dt})

	payload, err := FormatTimePayload(at, dt)
	if err != nil {
		return err
	}
	f.TimePayloads = append(f.TimePayloads, payload)

	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded messages.
func (f *FakePublisher) Reset() {
	f.Times = nil
	f.TimePayloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
