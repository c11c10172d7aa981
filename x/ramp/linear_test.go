package ramp

import (
	"testing"
	"time"
)

func collect(cur, to, top uint64, durationMs uint32, steps uint16) []uint64 {
	var got []uint64
	tick := func(time.Duration) bool { return true }
	StartLinear(cur, to, top, durationMs, steps, tick, func(v uint64) { got = append(got, v) })
	return got
}

func TestSnapWhenNoSteps(t *testing.T) {
	got := collect(0, 500, 1000, 0, 0)
	if len(got) != 1 || got[0] != 500 {
		t.Fatalf("got %v, want [500]", got)
	}
}

func TestEndsExactlyOnTarget(t *testing.T) {
	got := collect(100, 1000, 1000, 100, 7)
	if len(got) == 0 || got[len(got)-1] != 1000 {
		t.Fatalf("last = %v, want 1000", got)
	}
}

func TestMonotonicUp(t *testing.T) {
	got := collect(0, 900, 1000, 90, 9)
	prev := uint64(0)
	for _, v := range got {
		if v < prev {
			t.Fatalf("not monotonic: %v", got)
		}
		prev = v
	}
}

func TestClampToTop(t *testing.T) {
	got := collect(0, 5000, 1000, 10, 2)
	for _, v := range got {
		if v > 1000 {
			t.Fatalf("value above top: %v", got)
		}
	}
	if got[len(got)-1] != 1000 {
		t.Fatalf("last = %v, want 1000", got)
	}
}

func TestCancelStopsEarly(t *testing.T) {
	calls := 0
	tick := func(time.Duration) bool {
		calls++
		return calls < 3
	}
	var got []uint64
	StartLinear(0, 1000, 1000, 100, 10, tick, func(v uint64) { got = append(got, v) })
	if len(got) == 0 || got[len(got)-1] == 1000 {
		t.Fatalf("ramp should have been cancelled before the target: %v", got)
	}
}
