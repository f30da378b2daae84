package clock

import (
	"testing"
	"time"
)

func TestSystemClock(t *testing.T) {
	c := New()
	before := time.Now()
	now := c.Now()
	if now.Before(before) {
		t.Fatalf("now %v before %v", now, before)
	}
	if c.Since(before) < 0 {
		t.Fatal("negative elapsed time")
	}
}

func TestManualClock(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewManual(start)
	if !m.Now().Equal(start) {
		t.Fatalf("now = %v, want %v", m.Now(), start)
	}
	m.Advance(90 * time.Second)
	if got := m.Since(start); got != 90*time.Second {
		t.Fatalf("since = %v, want 90s", got)
	}
}
