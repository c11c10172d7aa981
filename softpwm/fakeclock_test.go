package softpwm

import (
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually-advanced Clock. Timers fire from advance()
// when their deadline is reached; rearming a timer at a deadline
// already in the past fires it immediately, which lets the engine catch
// up after an injected latency without another advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
	hires  bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(0, 0), hires: true}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Until(t time.Time) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return t.Sub(f.now)
}

func (f *fakeClock) HighRes() bool { return f.hires }

func (f *fakeClock) NewTimer(d time.Duration) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{clk: f, ch: make(chan time.Time, 1)}
	t.arm(f.now.Add(d))
	f.timers = append(f.timers, t)
	return t
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	for _, t := range f.timers {
		if t.active && !t.deadline.After(f.now) {
			t.fireLocked()
		}
	}
	f.mu.Unlock()
}

// armedDeadlines returns every absolute deadline ever requested on the
// i-th timer, in order. Drift tests assert these form an exact
// arithmetic progression regardless of firing latency.
func (f *fakeClock) armedDeadlines(i int) []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i >= len(f.timers) {
		return nil
	}
	return append([]time.Time(nil), f.timers[i].armed...)
}

type fakeTimer struct {
	clk      *fakeClock
	ch       chan time.Time
	deadline time.Time
	active   bool
	armed    []time.Time
}

// arm records the requested deadline and schedules or fires. Caller
// holds clk.mu.
func (t *fakeTimer) arm(deadline time.Time) {
	t.deadline = deadline
	t.armed = append(t.armed, deadline)
	if deadline.After(t.clk.now) {
		t.active = true
		return
	}
	t.fireLocked()
}

func (t *fakeTimer) fireLocked() {
	t.active = false
	select {
	case t.ch <- t.clk.now:
	default:
	}
}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

func (t *fakeTimer) Reset(d time.Duration) {
	t.clk.mu.Lock()
	t.arm(t.clk.now.Add(d))
	t.clk.mu.Unlock()
}

func (t *fakeTimer) Stop() {
	t.clk.mu.Lock()
	t.active = false
	t.clk.mu.Unlock()
}

// recorder is an Output that logs transitions and wakes waiting tests.
type transition struct {
	level bool
	at    time.Time
}

type recorder struct {
	mu    sync.Mutex
	clk   Clock
	log   []transition
	wakes chan transition
}

func newRecorder(clk Clock) *recorder {
	return &recorder{clk: clk, wakes: make(chan transition, 256)}
}

func (r *recorder) Set(level bool) {
	tr := transition{level: level, at: r.clk.Now()}
	r.mu.Lock()
	r.log = append(r.log, tr)
	r.mu.Unlock()
	select {
	case r.wakes <- tr:
	default:
	}
}

func (r *recorder) transitions() []transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]transition(nil), r.log...)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.log)
}

func (r *recorder) last() (transition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.log) == 0 {
		return transition{}, false
	}
	return r.log[len(r.log)-1], true
}

// waitSet blocks until the recorder sees a write of the wanted level.
func (r *recorder) waitSet(t *testing.T, want bool) transition {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case tr := <-r.wakes:
			if tr.level == want {
				return tr
			}
		case <-deadline:
			t.Fatalf("timeout waiting for level %v; log=%v", want, r.transitions())
		}
	}
}

// waitCount blocks until at least n transitions have been recorded.
func (r *recorder) waitCount(t *testing.T, n int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for r.count() < n {
		select {
		case <-r.wakes:
		case <-deadline:
			t.Fatalf("timeout waiting for %d transitions; log=%v", n, r.transitions())
		}
	}
}
