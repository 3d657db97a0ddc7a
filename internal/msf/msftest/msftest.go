// Package msftest builds broadcast frames and carrier-edge waveforms for
// tests in other packages.
package msftest

import (
	"github.com/sweeney/msf-clock/internal/gpio"
	"github.com/sweeney/msf-clock/internal/msf"
)

func setBCD(s *msf.BitSeq, msbit, lsbit int, v uint8) {
	bcd := (v/10)<<4 | v%10
	for k := 0; lsbit-k >= msbit; k++ {
		s.Set(lsbit-k, bcd>>k&1 == 1)
	}
}

// parityBit returns the external parity bit that makes the group
// [from, to] plus the bit itself have odd parity.
func parityBit(s *msf.BitSeq, from, to int) bool {
	n := 0
	for i := from; i <= to; i++ {
		if s.Get(i) {
			n++
		}
	}
	return n%2 == 0
}

// BuildFrame constructs a frame encoding dt with the fixed bits and the
// four parity bits set correctly. B bits other than 54-58 stay zero
// (DUT1 = 0), and bits 54-58 pair with fixed A bits that are set, so the
// frames never contain an A=0 B=1 cell.
func BuildFrame(dt msf.DateTime) *msf.BitFrame {
	var f msf.BitFrame
	setBCD(&f.A, 17, 24, dt.Year)
	setBCD(&f.A, 25, 29, dt.Month)
	setBCD(&f.A, 30, 35, dt.Day)
	setBCD(&f.A, 36, 38, dt.DayOfWeek)
	setBCD(&f.A, 39, 44, dt.Hour)
	setBCD(&f.A, 45, 51, dt.Minute)
	for bit := 53; bit <= 58; bit++ {
		f.A.Set(bit, true)
	}
	f.B.Set(58, dt.DST != 0)
	f.B.Set(54, parityBit(&f.A, 17, 24))
	f.B.Set(55, parityBit(&f.A, 25, 35))
	f.B.Set(56, parityBit(&f.A, 36, 38))
	f.B.Set(57, parityBit(&f.A, 39, 51))
	return &f
}

// MinuteEdges renders one broadcast minute as carrier edges: the minute
// preamble, the 59 bit cells, and the following preamble that triggers
// the decode. All four cell shapes are emitted as broadcast, including
// the four-edge A=0 B=1 shape.
func MinuteEdges(f *msf.BitFrame, t0 int64) []gpio.Edge {
	edges := []gpio.Edge{
		{CarrierOn: false, Time: t0},
		{CarrierOn: true, Time: t0 + 500},
	}
	t := t0 + 1000
	for bit := 1; bit <= 59; bit++ {
		a, b := f.A.Get(bit), f.B.Get(bit)
		edges = append(edges, gpio.Edge{CarrierOn: false, Time: t})
		switch {
		case !a && !b:
			edges = append(edges, gpio.Edge{CarrierOn: true, Time: t + 100})
		case a && !b:
			edges = append(edges, gpio.Edge{CarrierOn: true, Time: t + 200})
		case a && b:
			edges = append(edges, gpio.Edge{CarrierOn: true, Time: t + 300})
		default:
			edges = append(edges,
				gpio.Edge{CarrierOn: true, Time: t + 100},
				gpio.Edge{CarrierOn: false, Time: t + 200},
				gpio.Edge{CarrierOn: true, Time: t + 300})
		}
		t += 1000
	}
	return append(edges,
		gpio.Edge{CarrierOn: false, Time: t},
		gpio.Edge{CarrierOn: true, Time: t + 500},
		gpio.Edge{CarrierOn: false, Time: t + 1000})
}
