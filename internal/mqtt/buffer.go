package mqtt

import "log"

// queuedMsg stores a serialized message held while the broker is
// unreachable. Decoded minutes arrive at most once a minute, so losing
// them to a broker outage would be a real gap in the downstream clock
// history.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// offlineQueue is a fixed-capacity FIFO of messages awaiting replay
// after reconnection. Oldest messages are overwritten on overflow.
// Not safe for concurrent use — caller must synchronize.
type offlineQueue struct {
	msgs     []queuedMsg
	capacity int
	next     int // next write position
	count    int
	overflow bool // a message was dropped since the last drain
}

func newOfflineQueue(capacity int) *offlineQueue {
	return &offlineQueue{
		msgs:     make([]queuedMsg, capacity),
		capacity: capacity,
	}
}

func (q *offlineQueue) push(msg queuedMsg) {
	if q.count == q.capacity {
		if !q.overflow {
			log.Printf("mqtt: offline queue full (%d messages), dropping oldest", q.capacity)
			q.overflow = true
		}
		// next already points at the oldest entry; overwrite it.
		q.msgs[q.next] = msg
		q.next = (q.next + 1) % q.capacity
		return
	}
	q.msgs[q.next] = msg
	q.next = (q.next + 1) % q.capacity
	q.count++
}

// drain returns all queued messages oldest-first and resets the queue.
func (q *offlineQueue) drain() []queuedMsg {
	if q.count == 0 {
		return nil
	}

	out := make([]queuedMsg, q.count)
	start := (q.next - q.count + q.capacity) % q.capacity
	for i := 0; i < q.count; i++ {
		out[i] = q.msgs[(start+i)%q.capacity]
	}

	q.count = 0
	q.next = 0
	q.overflow = false
	return out
}

func (q *offlineQueue) len() int {
	return q.count
}
