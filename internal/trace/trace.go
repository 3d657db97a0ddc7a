// Package trace provides category-filtered diagnostic logging for the
// decoder. Messages are purely observational and never affect decoding.
// A nil *Logger is valid and discards everything.
package trace

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// Category identifies a class of diagnostic message. Categories are
// individually maskable.
type Category uint32

const (
	Info Category = 1 << iota
	Sync
	BitDump
	Carrier
	EdgeError
	BCDError
)

// Default enables the categories useful during normal operation:
// sync transitions and timing/parity failures.
const Default = Sync | EdgeError | BCDError

// All enables every category, including the per-edge carrier log and the
// full bit dump. Very chatty — one line per carrier transition.
const All = Info | Sync | BitDump | Carrier | EdgeError | BCDError

var names = map[string]Category{
	"info":    Info,
	"sync":    Sync,
	"bits":    BitDump,
	"carrier": Carrier,
	"edge":    EdgeError,
	"bcd":     BCDError,
}

// ParseMask converts a comma-separated category list ("sync,edge,bcd")
// into a mask. "all" and "none" are accepted. An empty string yields Default.
func ParseMask(s string) (Category, error) {
	switch s {
	case "":
		return Default, nil
	case "all":
		return All, nil
	case "none":
		return 0, nil
	}
	var mask Category
	for _, name := range strings.Split(s, ",") {
		c, ok := names[strings.TrimSpace(name)]
		if !ok {
			return 0, fmt.Errorf("unknown trace category %q", name)
		}
		mask |= c
	}
	return mask, nil
}

func prefix(c Category) string {
	switch c {
	case Info:
		return "info: "
	case Sync:
		return "sync: "
	case Carrier:
		return "carrier: "
	case EdgeError:
		return "edge: "
	case BCDError:
		return "bcd: "
	}
	return ""
}

// Logger writes diagnostic messages for enabled categories to a sink.
type Logger struct {
	mask Category
	out  *log.Logger
}

// New creates a Logger writing to w. If w is nil the standard logger's
// output is used.
func New(mask Category, w io.Writer) *Logger {
	out := log.Default()
	if w != nil {
		out = log.New(w, "", log.LstdFlags)
	}
	return &Logger{mask: mask, out: out}
}

// Enabled reports whether messages in category c would be emitted.
func (l *Logger) Enabled(c Category) bool {
	return l != nil && l.mask&c != 0
}

// Printf emits a formatted message if category c is enabled.
func (l *Logger) Printf(c Category, format string, args ...any) {
	if !l.Enabled(c) {
		return
	}
	l.out.Printf(prefix(c)+format, args...)
}

// Dump renders both 59-bit sequences with a bit-number header, reading
// bits 1..59 through the supplied getters. Only emitted when the BitDump
// category is enabled.
func (l *Logger) Dump(a, b func(int) bool) {
	if !l.Enabled(BitDump) {
		return
	}
	var tens, units, row strings.Builder
	for i := 1; i <= 59; i++ {
		tens.WriteByte('0' + byte(i/10))
		units.WriteByte('0' + byte(i%10))
	}
	l.out.Printf("  %s", tens.String())
	l.out.Printf("  %s", units.String())
	l.out.Printf("  %s", strings.Repeat("-", 59))
	for i := 1; i <= 59; i++ {
		row.WriteByte(bitChar(a(i)))
	}
	l.out.Printf("A %s", row.String())
	row.Reset()
	for i := 1; i <= 59; i++ {
		row.WriteByte(bitChar(b(i)))
	}
	l.out.Printf("B %s", row.String())
}

func bitChar(set bool) byte {
	if set {
		return '1'
	}
	return '0'
}
