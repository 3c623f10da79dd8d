package testlog

import (
	"strings"
	"sync"
	"testing"

	"github.com/AndrewHarrisSPU/logtree"
)

// Recorder renders entries, as plain text without timestamps, into memory.
// Reflows of late entries are held until [Recorder.Tick].
type Recorder struct {
	*logtree.Renderer
	Console *logtree.MemoryConsole

	mu      sync.Mutex
	pending []func()
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	rec := &Recorder{
		Console: new(logtree.MemoryConsole),
	}

	format := logtree.NewOutput().
		Colors(false).
		Layout("badge", "label", "message", "detail", "meta").
		TextFormat()

	rec.Renderer = logtree.NewRenderer(rec.Console, format, rec.schedule)
	return rec
}

func (rec *Recorder) schedule(f func()) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.pending = append(rec.pending, f)
}

// Tick runs every deferred reflow.
func (rec *Recorder) Tick() {
	rec.mu.Lock()
	fs := rec.pending
	rec.pending = nil
	rec.mu.Unlock()

	for _, f := range fs {
		f()
	}
}

// Lines runs deferred reflows and returns the rendered lines.
func (rec *Recorder) Lines() []string {
	rec.Tick()
	return rec.Console.Lines()
}

// String returns the rendered lines joined by newlines.
func (rec *Recorder) String() string {
	return strings.Join(rec.Lines(), "\n")
}

// Substrings returns a [logtree.Sink] and a "want" function.
//
// Entries printed to the sink are rendered to memory.
// Calling "want" tests whether the rendered text contains the given string.
// If it does not, t.Errorf is called.
// Calling want clears the rendered text.
func Substrings(t testing.TB) (sink *Recorder, want func(string)) {
	sink = NewRecorder()

	want = func(wantString string) {
		t.Helper()
		got := sink.String()
		if !strings.Contains(got, wantString) {
			t.Errorf("\n\texpected %s\n\tin %s", wantString, got)
		}
		sink.Console.Reset()
	}

	return sink, want
}

// Exact is like [Substrings], but "want" compares every rendered line.
func Exact(t testing.TB) (sink *Recorder, want func(...string)) {
	sink = NewRecorder()

	want = func(lines ...string) {
		t.Helper()
		got := sink.Lines()
		if strings.Join(got, "\n") != strings.Join(lines, "\n") {
			t.Errorf("\n\texpected:\n%s\n\tgot:\n%s", strings.Join(lines, "\n"), strings.Join(got, "\n"))
		}
		sink.Console.Reset()
	}

	return sink, want
}
