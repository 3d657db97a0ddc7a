package msf

import "strconv"

// PulseWidth is one of the nominal carrier interval widths that occur in
// a valid MSF signal, in milliseconds.
type PulseWidth int

const (
	WidthInvalid PulseWidth = 0
	Width100     PulseWidth = 100
	Width200     PulseWidth = 200
	Width300     PulseWidth = 300
	Width500     PulseWidth = 500
	Width700     PulseWidth = 700
	Width800     PulseWidth = 800
	Width900     PulseWidth = 900
)

// PulseMargin is the classification tolerance in milliseconds. A measured
// interval matches a nominal width only when strictly inside the margin;
// an interval exactly PulseMargin away from a nominal is invalid.
const PulseMargin = 30

var nominalWidths = [...]PulseWidth{
	Width100, Width200, Width300, Width500, Width700, Width800, Width900,
}

// Classify maps a measured interval to its nominal pulse width, or
// WidthInvalid if it is not within PulseMargin of any nominal.
func Classify(intervalMS int64) PulseWidth {
	for _, n := range nominalWidths {
		d := intervalMS - int64(n)
		if d < 0 {
			d = -d
		}
		if d < PulseMargin {
			return n
		}
	}
	return WidthInvalid
}

func (w PulseWidth) String() string {
	if w == WidthInvalid {
		return "INVALID"
	}
	return strconv.Itoa(int(w)) + "ms"
}
