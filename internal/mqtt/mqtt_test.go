package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/msf-clock/internal/msf"
)

var testTime = msf.DateTime{Year: 24, Month: 5, Day: 28, DayOfWeek: 2, Hour: 14, Minute: 37, DST: 0}

func TestFormatTimePayload(t *testing.T) {
	at := time.Date(2024, 5, 28, 14, 37, 12, 0, time.UTC)
	data, err := FormatTimePayload(at, testTime)
	if err != nil {
		t.Fatalf("FormatTimePayload: %v", err)
	}

	var got TimePayload
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.MSF.DateTime != "28-05-24 14:37 Tue" {
		t.Errorf("datetime = %q", got.MSF.DateTime)
	}
	if got.MSF.Year != 24 || got.MSF.Month != 5 || got.MSF.Day != 28 {
		t.Errorf("date fields = %d-%d-%d", got.MSF.Day, got.MSF.Month, got.MSF.Year)
	}
	if got.MSF.Hour != 14 || got.MSF.Minute != 37 {
		t.Errorf("time fields = %d:%d", got.MSF.Hour, got.MSF.Minute)
	}
	if got.MSF.DayOfWeek != "Tue" {
		t.Errorf("day_of_week = %q", got.MSF.DayOfWeek)
	}
	if got.MSF.DST {
		t.Error("dst should be false")
	}
	if got.MSF.ReceivedAt != "2024-05-28T14:37:12Z" {
		t.Errorf("received_at = %q", got.MSF.ReceivedAt)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	ev := SystemEvent{
		Timestamp: time.Date(2024, 5, 28, 14, 0, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}
	data, err := FormatSystemPayload(ev)
	if err != nil {
		t.Fatalf("FormatSystemPayload: %v", err)
	}

	var got SystemPayload
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.System.Event != "SHUTDOWN" || got.System.Reason != "SIGTERM" {
		t.Errorf("got %+v", got.System)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{}}`)
	data, err := FormatSystemPayload(SystemEvent{RawPayload: raw})
	if err != nil {
		t.Fatalf("FormatSystemPayload: %v", err)
	}
	if string(data) != string(raw) {
		t.Errorf("raw payload not passed through: %s", data)
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()
	at := time.Now()

	if err := f.PublishTime(at, testTime); err != nil {
		t.Fatalf("PublishTime: %v", err)
	}
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err != nil {
		t.Fatalf("PublishSystem: %v", err)
	}

	if len(f.Times) != 1 || f.Times[0].DateTime != testTime {
		t.Errorf("Times = %+v", f.Times)
	}
	if len(f.SystemEvents) != 1 || f.SystemEvents[0].Event != "STARTUP" {
		t.Errorf("SystemEvents = %+v", f.SystemEvents)
	}

	wantErr := errors.New("boom")
	f.PublishError = wantErr
	if err := f.PublishTime(at, testTime); !errors.Is(err, wantErr) {
		t.Errorf("PublishTime error = %v, want %v", err, wantErr)
	}
}

func TestOfflineQueueFIFO(t *testing.T) {
	q := newOfflineQueue(4)
	for i := byte(0); i < 3; i++ {
		q.push(queuedMsg{topic: TopicTime, payload: []byte{i}})
	}
	if q.len() != 3 {
		t.Fatalf("len = %d, want 3", q.len())
	}

	msgs := q.drain()
	if len(msgs) != 3 {
		t.Fatalf("drained %d, want 3", len(msgs))
	}
	for i, m := range msgs {
		if m.payload[0] != byte(i) {
			t.Errorf("msg %d payload = %d, want %d", i, m.payload[0], i)
		}
	}
	if q.len() != 0 {
		t.Errorf("len after drain = %d, want 0", q.len())
	}
	if q.drain() != nil {
		t.Error("second drain should return nil")
	}
}

func TestOfflineQueueOverflowDropsOldest(t *testing.T) {
	q := newOfflineQueue(3)
	for i := byte(0); i < 5; i++ {
		q.push(queuedMsg{payload: []byte{i}})
	}
	msgs := q.drain()
	if len(msgs) != 3 {
		t.Fatalf("drained %d, want 3", len(msgs))
	}
	// Oldest two (0, 1) were overwritten.
	for i, want := range []byte{2, 3, 4} {
		if msgs[i].payload[0] != want {
			t.Errorf("msg %d payload = %d, want %d", i, msgs[i].payload[0], want)
		}
	}
}

func TestOfflineQueueWrapAround(t *testing.T) {
	q := newOfflineQueue(3)
	q.push(queuedMsg{payload: []byte{0}})
	q.push(queuedMsg{payload: []byte{1}})
	q.drain()

	for i := byte(2); i < 5; i++ {
		q.push(queuedMsg{payload: []byte{i}})
	}
	msgs := q.drain()
	if len(msgs) != 3 {
		t.Fatalf("drained %d, want 3", len(msgs))
	}
	for i, want := range []byte{2, 3, 4} {
		if msgs[i].payload[0] != want {
			t.Errorf("msg %d payload = %d, want %d", i, msgs[i].payload[0], want)
		}
	}
}
