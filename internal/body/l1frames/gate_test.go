package l1frames

import (
	"bytes"
	"strings"
	"testing"
)

func newTestFrame(t *testing.T, ts int64) *Frame {
	t.Helper()
	f, err := NewFrame(make([]uint8, 4), make([]uint16, 4), 2, 2, ts)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	return f
}

func TestGate_Admit(t *testing.T) {
	var g Gate

	if got := g.Admit(nil, 1); got != AdmitNoFrame {
		t.Fatalf("nil frame: got %q, want %q", got, AdmitNoFrame)
	}

	f1 := newTestFrame(t, 100)
	if got := g.Admit(f1, 1); got != AdmitOpen {
		t.Fatalf("first frame: got %q, want %q", got, AdmitOpen)
	}
	if ts, ok := g.LastTimestamp(); !ok || ts != 100 {
		t.Fatalf("LastTimestamp() = %d, %v", ts, ok)
	}

	// Same generation again is stale, whatever the label.
	if got := g.Admit(f1, 1); got != AdmitStale {
		t.Errorf("repeat frame: got %q, want %q", got, AdmitStale)
	}
	if got := g.Admit(f1, NoBody); got != AdmitStale {
		t.Errorf("repeat frame without subject: got %q, want %q", got, AdmitStale)
	}

	f2 := newTestFrame(t, 133)
	if got := g.Admit(f2, 2); got != AdmitOpen {
		t.Errorf("new frame: got %q, want %q", got, AdmitOpen)
	}
}

func TestGate_NoSubjectKeepsBaseline(t *testing.T) {
	var g Gate
	g.Admit(newTestFrame(t, 100), 0)

	f := newTestFrame(t, 200)
	if got := g.Admit(f, NoBody); got != AdmitNoSubject {
		t.Fatalf("got %q, want %q", got, AdmitNoSubject)
	}
	if ts, _ := g.LastTimestamp(); ts != 100 {
		t.Fatalf("baseline moved to %d after a failed admission", ts)
	}

	// The subject reappears on the same frame: it must still be measured.
	if got := g.Admit(f, 0); got != AdmitOpen {
		t.Errorf("retry on same frame: got %q, want %q", got, AdmitOpen)
	}
}

func TestGate_FirstFrameAtZeroTimestamp(t *testing.T) {
	var g Gate
	if got := g.Admit(newTestFrame(t, 0), 0); got != AdmitOpen {
		t.Fatalf("got %q, want %q", got, AdmitOpen)
	}
	g.Reset()
	if _, ok := g.LastTimestamp(); ok {
		t.Fatal("Reset should clear the baseline")
	}
	if got := g.Admit(newTestFrame(t, 0), 0); got != AdmitOpen {
		t.Fatalf("after reset: got %q, want %q", got, AdmitOpen)
	}
}

func TestGate_DebugLogging(t *testing.T) {
	var buf bytes.Buffer
	SetDebugLogger(&buf)
	defer SetDebugLogger(nil)

	var g Gate
	g.Admit(newTestFrame(t, 5), NoBody)

	if !strings.Contains(buf.String(), "no subject label") {
		t.Errorf("expected debug output, got %q", buf.String())
	}
}
