package logtree

import (
	"sync"
	"time"
)

// Console is a grouping line sink.
type Console interface {
	Log(args ...any)
	Group(args ...any)
	GroupEnd()
}

// Format turns an entry into console arguments.
type Format func(*Entry) []any

// Scheduler runs f at some later point, on any goroutine.
// It must not call f before returning.
type Scheduler func(f func())

// AfterTick is the default [Scheduler]: f runs on its own goroutine, from a zero-delay timer.
func AfterTick(f func()) {
	time.AfterFunc(0, f)
}

// Sink receives every entry a logger appends.
// A nil entry asks the sink to close whatever it has open.
type Sink interface {
	Print(e *Entry)
}

// SinkFunc adapts a function to [Sink].
type SinkFunc func(e *Entry)

func (f SinkFunc) Print(e *Entry) {
	f(e)
}

// RENDERER

// Renderer maps the entry tree onto a console's linear group cursor.
//
// Non-idle scopes open groups; idle scopes print as a single line.
// Before each entry, groups that are not its ancestors are closed, innermost first.
// A plain entry arriving under a scope whose group was already closed is late:
// its parent chain is reopened and the parent's unprinted children are printed,
// once per parent no matter how many late entries arrive before the reflow runs.
type Renderer struct {
	mu     sync.Mutex
	out    Console
	format Format

	open []*Entry

	schedule Scheduler
	armed    bool
	marked   map[uint64]bool
	pending  []*Entry
}

// NewRenderer returns a Renderer writing to out.
// A nil format uses [PlainText]; a nil schedule uses [AfterTick].
func NewRenderer(out Console, format Format, schedule Scheduler) *Renderer {
	if format == nil {
		format = PlainText
	}
	if schedule == nil {
		schedule = AfterTick
	}

	return &Renderer{
		out:      out,
		format:   format,
		schedule: schedule,
		marked:   make(map[uint64]bool),
	}
}

// Print renders one entry. A nil entry closes every open group.
func (r *Renderer) Print(e *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e == nil {
		r.closeAll()
		return
	}

	r.print(e, false)
}

func (r *Renderer) print(e *Entry, skipPrinted bool) {
	if skipPrinted && e.printed.Load() {
		return
	}

	parent := e.Parent()
	r.realign(parent)

	if e.IsScope() {
		if e.State() == StateIdle {
			e.printed.Store(true)
			r.out.Log(r.format(e)...)
			return
		}
		r.open = append(r.open, e)
		r.out.Group(r.format(e)...)
		return
	}

	if !skipPrinted && parent != nil && parent.printed.Load() && !parent.IsRoot() {
		r.postpone(parent)
		return
	}

	e.printed.Store(true)
	r.out.Log(r.format(e)...)
}

// realign closes open groups down to parent.
func (r *Renderer) realign(parent *Entry) {
	i := len(r.open) - 1
	for ; i >= 0; i-- {
		if r.open[i] == parent {
			break
		}
		r.open[i].printed.Store(true)
		r.out.GroupEnd()
	}
	clear(r.open[i+1:])
	r.open = r.open[:i+1]
}

func (r *Renderer) closeAll() {
	r.realign(nil)
}

func (r *Renderer) postpone(parent *Entry) {
	if r.marked[parent.ID] {
		return
	}
	r.marked[parent.ID] = true
	r.pending = append(r.pending, parent)

	if !r.armed {
		r.armed = true
		r.schedule(r.Flush)
	}
}

// Flush runs queued reflows in arrival order.
func (r *Renderer) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.armed = false
	for len(r.pending) > 0 {
		parent := r.pending[0]
		r.pending[0] = nil
		r.pending = r.pending[1:]
		delete(r.marked, parent.ID)

		r.reflow(parent)
	}
}

// reflow reopens the chain from below the root down to parent, then prints parent's unprinted children.
func (r *Renderer) reflow(parent *Entry) {
	r.closeAll()

	var chain []*Entry
	for p := parent; p != nil && !p.IsRoot(); p = p.Parent() {
		chain = append(chain, p)
	}

	for i := len(chain) - 1; i >= 0; i-- {
		r.open = append(r.open, chain[i])
		r.out.Group(r.format(chain[i])...)
	}

	for _, e := range parent.Children() {
		r.print(e, true)
	}

	r.closeAll()
}
