package trace

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseMask(t *testing.T) {
	cases := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"", Default, false},
		{"all", All, false},
		{"none", 0, false},
		{"sync", Sync, false},
		{"info", Info, false},
		{"sync,edge,bcd", Sync | EdgeError | BCDError, false},
		{"carrier, bits", Carrier | BitDump, false},
		{"nonsense", 0, true},
		{"sync,nope", 0, true},
	}
	for _, c := range cases {
		got, err := ParseMask(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseMask(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMask(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseMask(%q) = 0x%x, want 0x%x", c.in, got, c.want)
		}
	}
}

func TestLoggerFiltersByCategory(t *testing.T) {
	var buf bytes.Buffer
	l := New(Sync, &buf)

	l.Printf(Sync, "SYNC")
	l.Printf(Carrier, "OFF %d", 500)

	out := buf.String()
	if !strings.Contains(out, "sync: SYNC") {
		t.Errorf("enabled category missing from output: %q", out)
	}
	if strings.Contains(out, "carrier") {
		t.Errorf("masked category leaked into output: %q", out)
	}
	if !l.Enabled(Sync) {
		t.Error("Sync should be enabled")
	}
	if l.Enabled(BitDump) {
		t.Error("BitDump should be masked")
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	if l.Enabled(Sync) {
		t.Error("nil logger should report nothing enabled")
	}
	l.Printf(Sync, "discarded")
	l.Dump(func(int) bool { return false }, func(int) bool { return false })
}

func TestDumpRendersRows(t *testing.T) {
	var buf bytes.Buffer
	l := New(BitDump, &buf)

	l.Dump(func(n int) bool { return n == 1 }, func(n int) bool { return n == 59 })

	out := buf.String()
	if !strings.Contains(out, "A 1"+strings.Repeat("0", 58)) {
		t.Errorf("A row not rendered: %q", out)
	}
	if !strings.Contains(out, "B "+strings.Repeat("0", 58)+"1") {
		t.Errorf("B row not rendered: %q", out)
	}
}

func TestDumpDisabledEmitsNothing(t *testing.T) {
	var buf bytes.Buffer
	l := New(Sync, &buf)
	l.Dump(func(int) bool { return true }, func(int) bool { return true })
	if buf.Len() != 0 {
		t.Errorf("masked dump produced output: %q", buf.String())
	}
}
