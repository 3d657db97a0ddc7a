package main

import (
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/msf-clock/internal/gpio"
	"github.com/sweeney/msf-clock/internal/mqtt"
	"github.com/sweeney/msf-clock/internal/msf"
	"github.com/sweeney/msf-clock/internal/msf/msftest"
	"github.com/sweeney/msf-clock/internal/status"
)

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use (only called from runLoop's goroutine).
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

var scenarioTime = msf.DateTime{Year: 24, Month: 5, Day: 28, DayOfWeek: 2, Hour: 14, Minute: 37}

// runRunLoop drives runLoop with preloaded edges, nTicks ticks, and a
// final signal. Edges drain before each tick is accepted, so the tick
// handling always observes a fully fed decoder.
func runRunLoop(t *testing.T, src *gpio.FakeSource, pub *mqtt.FakePublisher, tracker *status.Tracker, heartbeat time.Duration, clock func() time.Time, nTicks int, signal os.Signal) error {
	t.Helper()
	decoder := msf.New(nil)
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(src.Edges(), src.Dropped, decoder, pub, pub, tracker, heartbeat, clock, tick, sig)
	}()

	for i := 0; i < nTicks; i++ {
		tick <- time.Time{}
	}
	sig <- signal

	return <-errCh
}

func countSystem(pub *mqtt.FakePublisher, name string) int {
	n := 0
	for _, se := range pub.SystemEvents {
		if se.Event == name {
			n++
		}
	}
	return n
}

func TestRunLoopDecodesAndPublishes(t *testing.T) {
	src := gpio.NewFakeSource(msftest.MinuteEdges(msftest.BuildFrame(scenarioTime), 0)...)
	pub := mqtt.NewFakePublisher()
	tracker := status.NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), status.Config{})
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Second)

	err := runRunLoop(t, src, pub, tracker, 0, clock, 1, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(pub.Times) != 1 {
		t.Fatalf("expected 1 published time, got %d", len(pub.Times))
	}
	if pub.Times[0].DateTime != scenarioTime {
		t.Errorf("published %+v, want %+v", pub.Times[0].DateTime, scenarioTime)
	}

	// First edge triggers a recovery, each preamble re-announces sync.
	if got := countSystem(pub, "SYNC_LOST"); got != 1 {
		t.Errorf("expected 1 SYNC_LOST event, got %d", got)
	}
	if got := countSystem(pub, "SYNC"); got != 2 {
		t.Errorf("expected 2 SYNC events, got %d", got)
	}
	last := pub.SystemEvents[len(pub.SystemEvents)-1]
	if last.Event != "SHUTDOWN" {
		t.Errorf("last system event = %q, want SHUTDOWN", last.Event)
	}

	snap := tracker.Snapshot()
	if !snap.TimeValid || snap.Time != scenarioTime {
		t.Errorf("tracker time = %+v valid=%v", snap.Time, snap.TimeValid)
	}
	if !snap.Synced() {
		t.Errorf("tracker state = %v, want SYNCED", snap.State)
	}
	if snap.Counts.FramesDecoded != 1 {
		t.Errorf("frames decoded = %d, want 1", snap.Counts.FramesDecoded)
	}
}

func TestRunLoopShutdownSIGINT(t *testing.T) {
	src := gpio.NewFakeSource()
	pub := mqtt.NewFakePublisher()
	tracker := status.NewTracker(time.Now(), status.Config{})
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Second)

	err := runRunLoop(t, src, pub, tracker, 0, clock, 0, syscall.SIGINT)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(pub.SystemEvents))
	}
	se := pub.SystemEvents[0]
	if se.Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN, got %q", se.Event)
	}
	if se.Reason != "SIGINT" {
		t.Errorf("expected reason SIGINT, got %q", se.Reason)
	}
	if !se.Retained {
		t.Error("expected Retained=true for SHUTDOWN")
	}
	if len(se.RawPayload) == 0 {
		t.Error("expected SHUTDOWN to carry a status payload")
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	// Clock steps 10 minutes per call; the 15-minute interval elapses on
	// the second tick.
	src := gpio.NewFakeSource()
	pub := mqtt.NewFakePublisher()
	tracker := status.NewTracker(time.Now(), status.Config{})
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 10*time.Minute)

	err := runRunLoop(t, src, pub, tracker, 15*time.Minute, clock, 2, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if got := countSystem(pub, "HEARTBEAT"); got != 1 {
		t.Fatalf("expected 1 HEARTBEAT event, got %d", got)
	}
	for _, se := range pub.SystemEvents {
		if se.Event == "HEARTBEAT" && len(se.RawPayload) == 0 {
			t.Error("expected HEARTBEAT to carry a status payload")
		}
	}
}

func TestRunLoopPublishError(t *testing.T) {
	// A decode occurs but PublishTime fails; the loop continues and
	// SHUTDOWN is still published.
	src := gpio.NewFakeSource(msftest.MinuteEdges(msftest.BuildFrame(scenarioTime), 0)...)
	pub := mqtt.NewFakePublisher()
	pub.PublishError = errors.New("broker unavailable")
	tracker := status.NewTracker(time.Now(), status.Config{})
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Second)

	err := runRunLoop(t, src, pub, tracker, 0, clock, 1, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(pub.Times) != 0 {
		t.Errorf("expected 0 recorded times (publish failed), got %d", len(pub.Times))
	}
	if got := countSystem(pub, "SHUTDOWN"); got != 1 {
		t.Errorf("expected 1 SHUTDOWN event, got %d", got)
	}
}

func TestRunLoopEdgeChannelClosed(t *testing.T) {
	src := gpio.NewFakeSource()
	pub := mqtt.NewFakePublisher()
	decoder := msf.New(nil)
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(src.Edges(), src.Dropped, decoder, pub, pub, nil, 0, time.Now, tick, sig)
	}()

	src.Close()
	if err := <-errCh; err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}
}

func TestEdgeLevel(t *testing.T) {
	if edgeLevel(gpio.Edge{CarrierOn: true}) != msf.CarrierOn {
		t.Error("on edge should map to CarrierOn")
	}
	if edgeLevel(gpio.Edge{CarrierOn: false}) != msf.CarrierOff {
		t.Error("off edge should map to CarrierOff")
	}
}
