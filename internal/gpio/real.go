//go:build linux

package gpio

import (
	"fmt"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"
)

// RealSource captures receiver edges from actual hardware using Linux
// GPIO character device events.
type RealSource struct {
	chip    *gpiocdev.Chip
	data    *gpiocdev.Line
	enable  *gpiocdev.Line // nil if no enable pin configured
	led     *gpiocdev.Line // nil if no LED configured
	ch      chan Edge
	dropped atomic.Uint64
}

// NewRealSource opens the GPIO chip and requests the receiver data line
// with both-edge event reporting on the monotonic clock. enablePin and
// ledPin may be negative to skip those lines. The receiver output stays
// disabled until EnableReceiver(true) is called.
func NewRealSource(chipName string, dataPin, enablePin, ledPin int) (*RealSource, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	s := &RealSource{
		chip: chip,
		ch:   make(chan Edge, edgeBuffer),
	}

	// The decoder's interval arithmetic needs a monotonic timestamp
	// source; request kernel monotonic event clocks explicitly.
	s.data, err = chip.RequestLine(dataPin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithMonotonicEventClock,
		gpiocdev.WithEventHandler(s.handleEvent))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request data pin %d: %w", dataPin, err)
	}

	if enablePin >= 0 {
		// Active low; start high (receiver disabled).
		s.enable, err = chip.RequestLine(enablePin, gpiocdev.AsOutput(1))
		if err != nil {
			s.data.Close()
			chip.Close()
			return nil, fmt.Errorf("request enable pin %d: %w", enablePin, err)
		}
	}

	if ledPin >= 0 {
		s.led, err = chip.RequestLine(ledPin, gpiocdev.AsOutput(0))
		if err != nil {
			if s.enable != nil {
				s.enable.Close()
			}
			s.data.Close()
			chip.Close()
			return nil, fmt.Errorf("request led pin %d: %w", ledPin, err)
		}
	}

	return s, nil
}

// handleEvent runs on the gpiocdev event goroutine. It must never block:
// if the consumer is behind, the edge is dropped and counted.
func (s *RealSource) handleEvent(evt gpiocdev.LineEvent) {
	// Raw rising edge = carrier off on this receiver board.
	carrierOn := evt.Type == gpiocdev.LineEventFallingEdge

	if s.led != nil {
		v := 0
		if carrierOn {
			v = 1
		}
		s.led.SetValue(v)
	}

	e := Edge{CarrierOn: carrierOn, Time: evt.Timestamp.Milliseconds()}
	select {
	case s.ch <- e:
	default:
		s.dropped.Add(1)
	}
}

// Edges returns the edge delivery channel.
func (s *RealSource) Edges() <-chan Edge {
	return s.ch
}

// Dropped reports how many edges were discarded.
func (s *RealSource) Dropped() uint64 {
	return s.dropped.Load()
}

// EnableReceiver drives the receiver power-enable line, which is active
// low on this hardware. A no-op if no enable pin was configured.
func (s *RealSource) EnableReceiver(on bool) error {
	if s.enable == nil {
		return nil
	}
	v := 1
	if on {
		v = 0
	}
	if err := s.enable.SetValue(v); err != nil {
		return fmt.Errorf("set enable pin: %w", err)
	}
	return nil
}

// CarrierOn reads the current logical carrier level. Useful for a
// one-shot probe of the receiver wiring.
func (s *RealSource) CarrierOn() (bool, error) {
	raw, err := s.data.Value()
	if err != nil {
		return false, fmt.Errorf("read data pin: %w", err)
	}
	return raw == 0, nil
}

// Close disables the receiver, releases all lines, and closes the edge
// channel. Input lines are reconfigured to match boot defaults before
// closing, as with the rest of our Pi deployments.
func (s *RealSource) Close() error {
	var errs []error

	if s.enable != nil {
		if err := s.enable.SetValue(1); err != nil {
			errs = append(errs, fmt.Errorf("disable receiver: %w", err))
		}
		if err := s.enable.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close enable pin: %w", err))
		}
	}
	if s.led != nil {
		if err := s.led.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear led: %w", err))
		}
		if err := s.led.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close led pin: %w", err))
		}
	}
	if s.data != nil {
		if err := s.data.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure data pin: %w", err))
		}
		if err := s.data.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close data pin: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	close(s.ch)

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
