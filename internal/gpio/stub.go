//go:build !linux

package gpio

import "errors"

// RealSource is not available on non-Linux platforms.
type RealSource struct{}

// NewRealSource returns an error on non-Linux platforms.
func NewRealSource(chipName string, dataPin, enablePin, ledPin int) (*RealSource, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Edges is not implemented on non-Linux platforms.
func (s *RealSource) Edges() <-chan Edge {
	return nil
}

// Dropped is not implemented on non-Linux platforms.
func (s *RealSource) Dropped() uint64 {
	return 0
}

// EnableReceiver is not implemented on non-Linux platforms.
func (s *RealSource) EnableReceiver(on bool) error {
	return errors.New("gpio: not supported")
}

// CarrierOn is not implemented on non-Linux platforms.
func (s *RealSource) CarrierOn() (bool, error) {
	return false, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (s *RealSource) Close() error {
	return nil
}
