package msf

import "fmt"

// BitSeq is one of the two 59-bit per-minute sequences. Bits are indexed
// 1..59 to match the NPL specification's numbering; index 0 is unused.
// Bits are overwritten in place as a minute progresses, so a full
// sequence is only meaningful once all 59 bits of the current cycle have
// been written.
type BitSeq [60]bool

// Set writes bit n. Out-of-range indexes are ignored rather than
// panicking: a desynced cursor must never take the decoder down.
func (s *BitSeq) Set(n int, v bool) {
	if n >= 1 && n <= 59 {
		s[n] = v
	}
}

// Get reads bit n; out-of-range indexes read as zero.
func (s *BitSeq) Get(n int) bool {
	return n >= 1 && n <= 59 && s[n]
}

// bcdWeights are the bit weights of the broadcast's two-nibble BCD
// encoding, applied from the least significant bit upward.
var bcdWeights = [8]uint8{1, 2, 4, 8, 10, 20, 40, 80}

// ExtractBCD decodes the bit range [msbit, lsbit] as a BCD value,
// weighting from lsbit toward msbit. Fields are at most 8 bits wide.
func (s *BitSeq) ExtractBCD(msbit, lsbit int) uint8 {
	var v uint8
	for bit, digit := lsbit, 0; bit >= msbit && digit < len(bcdWeights); bit, digit = bit-1, digit+1 {
		if s.Get(bit) {
			v += bcdWeights[digit]
		}
	}
	return v
}

// countSet returns the number of set bits in [from, to].
func (s *BitSeq) countSet(from, to int) int {
	n := 0
	for bit := from; bit <= to; bit++ {
		if s.Get(bit) {
			n++
		}
	}
	return n
}

// BitFrame accumulates the two bit sequences of one broadcast minute.
type BitFrame struct {
	A BitSeq
	B BitSeq
}

// oddParity reports whether the A bits in [from, to] plus the external
// parity bit have an odd number of set bits.
func (f *BitFrame) oddParity(from, to int, parity bool) bool {
	n := f.A.countSet(from, to)
	if parity {
		n++
	}
	return n&1 == 1
}

// Validate checks the fixed-value bits and the four odd-parity groups
// defined by the NPL specification, in order, stopping at the first
// failure. The returned error identifies the failing rule.
func (f *BitFrame) Validate() error {
	if f.A.Get(52) {
		return fmt.Errorf("A52 is not zero")
	}
	for bit := 53; bit <= 58; bit++ {
		if !f.A.Get(bit) {
			return fmt.Errorf("A%d is not set", bit)
		}
	}
	if f.A.Get(59) {
		return fmt.Errorf("A59 is not zero")
	}
	if !f.oddParity(17, 24, f.B.Get(54)) {
		return fmt.Errorf("A17-A24 fail parity check with B54")
	}
	if !f.oddParity(25, 35, f.B.Get(55)) {
		return fmt.Errorf("A25-A35 fail parity check with B55")
	}
	if !f.oddParity(36, 38, f.B.Get(56)) {
		return fmt.Errorf("A36-A38 fail parity check with B56")
	}
	if !f.oddParity(39, 51, f.B.Get(57)) {
		return fmt.Errorf("A39-A51 fail parity check with B57")
	}
	return nil
}

// Extract decodes the calendar fields of a frame that has already passed
// Validate.
func (f *BitFrame) Extract() DateTime {
	return DateTime{
		Year:      f.A.ExtractBCD(17, 24),
		Month:     f.A.ExtractBCD(25, 29),
		Day:       f.A.ExtractBCD(30, 35),
		DayOfWeek: f.A.ExtractBCD(36, 38),
		Hour:      f.A.ExtractBCD(39, 44),
		Minute:    f.A.ExtractBCD(45, 51),
		DST:       f.B.ExtractBCD(58, 58),
	}
}
