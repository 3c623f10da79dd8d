package logtree

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// FAKE CLOCK

// fakeClock fires callbacks synchronously, from Advance, in deadline order.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	c       *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now: time.Date(2024, 7, 8, 9, 10, 11, 0, time.UTC),
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{c: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward by d, running every callback that comes due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()

		next.f()
	}
}

// MANUAL SCHEDULER

type manualScheduler struct {
	mu      sync.Mutex
	pending []func()
}

func (s *manualScheduler) schedule(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, f)
}

func (s *manualScheduler) tick() int {
	s.mu.Lock()
	fs := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, f := range fs {
		f()
	}
	return len(fs)
}

// RECORDING LOGGER

type recording struct {
	log     *Logger[Levels]
	console *MemoryConsole
	sched   *manualScheduler
	clock   *fakeClock
}

// recordingLogger renders to memory without timestamps or call sites.
// The returned "want" function runs pending reflows, then compares every line rendered since the last call.
func recordingLogger(t *testing.T, opts ...Option) (*recording, func(...string)) {
	rec := &recording{
		console: new(MemoryConsole),
		sched:   new(manualScheduler),
		clock:   newFakeClock(),
	}

	format := NewOutput().
		Colors(false).
		Layout("badge", "label", "message", "detail").
		TextFormat()

	r := NewRenderer(rec.console, format, rec.sched.schedule)

	opts = append([]Option{
		Using.Time(false),
		Using.Clock(rec.clock),
		Using.Output(r),
	}, opts...)

	log, err := New(LevelAPI, opts...)
	if err != nil {
		t.Fatal(err)
	}
	rec.log = log

	want := func(lines ...string) {
		t.Helper()
		rec.sched.tick()
		got := rec.console.Lines()
		if strings.Join(got, "\n") != strings.Join(lines, "\n") {
			t.Errorf("\n\texpected:\n%s\n\tgot:\n%s", strings.Join(lines, "\n"), strings.Join(got, "\n"))
		}
		rec.console.Reset()
	}

	return rec, want
}

// messages lists the rendered text of each entry, for tree assertions.
func messages(es []*Entry) []string {
	var ms []string
	for _, e := range es {
		ms = append(ms, joinArgs(PlainText(e)))
	}
	return ms
}
