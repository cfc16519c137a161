package fps

import (
	"math"
	"testing"
	"time"
)

type fakeTime struct{ t time.Time }

func (f *fakeTime) now() time.Time { return f.t }

func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestFPSBeforeTicks(t *testing.T) {
	ft := &fakeTime{t: time.Unix(0, 0)}
	c := NewClockWith(ft.now)
	if got := c.FPS(); got != 0 {
		t.Fatalf("FPS() = %v, want 0", got)
	}
}

func TestFPSSingleTickUsesElapsed(t *testing.T) {
	ft := &fakeTime{t: time.Unix(0, 0)}
	c := NewClockWith(ft.now)
	c.Tick()
	if got := c.FPS(); got != 0 {
		t.Fatalf("FPS() with no elapsed time = %v, want 0", got)
	}
	ft.advance(40 * time.Millisecond)
	if got := c.FPS(); math.Abs(got-25) > 1e-9 {
		t.Fatalf("FPS() after one tick and 40ms = %v, want 25", got)
	}
}

func TestFPSFromInterval(t *testing.T) {
	ft := &fakeTime{t: time.Unix(0, 0)}
	c := NewClockWith(ft.now)

	c.Tick()
	ft.advance(80 * time.Millisecond)
	c.Tick()
	if got := c.FPS(); math.Abs(got-12.5) > 1e-9 {
		t.Fatalf("FPS() = %v, want 12.5", got)
	}

	ft.advance(500 * time.Millisecond)
	c.Tick()
	if got := c.FPS(); math.Abs(got-2) > 1e-9 {
		t.Fatalf("FPS() = %v, want 2", got)
	}
	if c.Ticks() != 3 {
		t.Fatalf("Ticks() = %d, want 3", c.Ticks())
	}
}

func TestFPSZeroInterval(t *testing.T) {
	ft := &fakeTime{t: time.Unix(0, 0)}
	c := NewClockWith(ft.now)
	c.Tick()
	c.Tick()
	if got := c.FPS(); got != 0 {
		t.Fatalf("FPS() = %v, want 0 for a zero interval", got)
	}
}
