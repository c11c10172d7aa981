package softpwm

import (
	"testing"
	"time"
)

// The engine must rearm from the expected firing time, never from the
// observed one: with late firings injected, the requested deadlines
// still form the exact k*on/off progression and the error never
// accumulates.
func TestDriftCorrectedRescheduling(t *testing.T) {
	clk := newFakeClock()
	rec := newRecorder(clk)
	ch := New(rec, WithClock(clk))
	ch.Configure(dutyNs, periodNs)

	if err := ch.Enable(); err != nil {
		t.Fatalf("enable: %v", err)
	}
	rec.waitCount(t, 2)

	// Fire every boundary late by 1..2ms.
	clk.advance(4 * time.Millisecond) // boundary at 3ms, 1ms late
	rec.waitCount(t, 3)
	clk.advance(8 * time.Millisecond) // boundary at 10ms, 2ms late
	rec.waitCount(t, 4)
	clk.advance(3 * time.Millisecond) // boundary at 13ms, 2ms late
	rec.waitCount(t, 5)

	ch.Disable()

	base := time.Unix(0, 0)
	wantMs := []int64{0, 3, 10, 13, 20}
	got := clk.armedDeadlines(0)
	if len(got) != len(wantMs) {
		t.Fatalf("got %d deadlines %v, want %d", len(got), got, len(wantMs))
	}
	for i, w := range wantMs {
		if d := got[i].Sub(base); d != time.Duration(w)*time.Millisecond {
			t.Fatalf("deadline %d = %v, want %dms (drift accumulated)", i, d, w)
		}
	}
}

// A firing delayed past several boundaries catches up in a burst: the
// rearm deadline may already be in the past, which fires immediately,
// and the boundary sequence stays on the original grid.
func TestLateFiringCatchesUp(t *testing.T) {
	clk := newFakeClock()
	rec := newRecorder(clk)
	ch := New(rec, WithClock(clk))
	ch.Configure(dutyNs, periodNs)

	if err := ch.Enable(); err != nil {
		t.Fatalf("enable: %v", err)
	}
	rec.waitCount(t, 2)

	// Jump straight past the 3ms and 10ms boundaries.
	clk.advance(13 * time.Millisecond)
	rec.waitCount(t, 5) // low@3 (late), high@10 (late), low@13 all delivered

	ch.Disable()

	base := time.Unix(0, 0)
	wantMs := []int64{0, 3, 10, 13, 20}
	got := clk.armedDeadlines(0)
	if len(got) != len(wantMs) {
		t.Fatalf("got %d deadlines %v, want %d", len(got), got, len(wantMs))
	}
	for i, w := range wantMs {
		if d := got[i].Sub(base); d != time.Duration(w)*time.Millisecond {
			t.Fatalf("deadline %d = %v, want %dms", i, d, w)
		}
	}

	// Levels alternate through the burst.
	trs := rec.transitions()
	want := []bool{false, true, false, true, false}
	for i, w := range want {
		if trs[i].level != w {
			t.Fatalf("transition %d = %v, want %v (%v)", i, trs[i].level, w, trs)
		}
	}
}

func TestFirstFiringImmediate(t *testing.T) {
	clk := newFakeClock()
	rec := newRecorder(clk)
	ch := New(rec, WithClock(clk))
	ch.Configure(dutyNs, periodNs)

	if err := ch.Enable(); err != nil {
		t.Fatalf("enable: %v", err)
	}
	// No advance: the first phase must begin regardless.
	tr := rec.waitSet(t, true)
	if !tr.at.Equal(time.Unix(0, 0)) {
		t.Fatalf("first firing at %v, want t=0", tr.at)
	}
	ch.Disable()
}

func TestCancelIsSynchronous(t *testing.T) {
	clk := newFakeClock()
	fired := make(chan struct{}, 1)
	e := newEngine(clk, func() (time.Duration, bool) {
		select {
		case fired <- struct{}{}:
		default:
		}
		return time.Millisecond, true
	})
	e.start()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("engine never fired")
	}

	e.cancel()
	select {
	case <-e.done:
	default:
		t.Fatal("cancel returned before the engine goroutine exited")
	}
}

func TestEngineStandsDownWhenCallbackDeclines(t *testing.T) {
	clk := newFakeClock()
	e := newEngine(clk, func() (time.Duration, bool) { return 0, false })
	e.start()

	select {
	case <-e.done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine kept running after the callback declined rearm")
	}
}
