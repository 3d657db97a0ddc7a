package gpio

// FakeSource delivers scripted edges for tests.
type FakeSource struct {
	ch chan Edge

	// DroppedCount is returned by Dropped.
	DroppedCount uint64

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeSource creates a FakeSource preloaded with the given edges.
// The channel stays open for Emit until Close is called.
func NewFakeSource(edges ...Edge) *FakeSource {
	f := &FakeSource{ch: make(chan Edge, len(edges)+edgeBuffer)}
	for _, e := range edges {
		f.ch <- e
	}
	return f
}

// Emit queues another edge.
func (f *FakeSource) Emit(e Edge) {
	f.ch <- e
}

// Edges returns the scripted edge channel.
func (f *FakeSource) Edges() <-chan Edge {
	return f.ch
}

// Dropped returns the scripted drop count.
func (f *FakeSource) Dropped() uint64 {
	return f.DroppedCount
}

// Close marks the source as closed and closes the edge channel.
func (f *FakeSource) Close() error {
	if !f.Closed {
		f.Closed = true
		close(f.ch)
	}
	return nil
}
