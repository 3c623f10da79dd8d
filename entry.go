package logtree

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// process-wide entry sequence
var seq atomic.Uint64

// Kind tags an [Entry] as a leaf or as a scope.
type Kind uint8

const (
	KindPlain Kind = iota
	KindScope
)

func (k Kind) String() string {
	if k == KindScope {
		return "scope"
	}
	return "plain"
}

// State is the lifecycle of a scope entry.
//
// Named scopes carry StateNone: they mark a synchronous region and are rendered as open groups.
// Task-backed scopes move through the remaining states.
type State uint8

const (
	StateNone State = iota
	StateIdle
	StateInteractive
	StateCompleted
	StateCancelled
	StateFailed
	StatePending
	StateResolved
	StateRejected
	StateError
)

var stateNames = [...]string{
	StateNone:        "",
	StateIdle:        "idle",
	StateInteractive: "interactive",
	StateCompleted:   "completed",
	StateCancelled:   "cancelled",
	StateFailed:      "failed",
	StatePending:     "pending",
	StateResolved:    "resolved",
	StateRejected:    "rejected",
	StateError:       "error",
}

func (s State) String() string {
	if int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Meta is call-site information attached to an [Entry].
// Column is zero when the provider cannot report it.
type Meta struct {
	File     string
	Line     int
	Column   int
	Function string
}

func (m *Meta) String() string {
	if m == nil {
		return ""
	}
	return m.File + ":" + strconv.Itoa(m.Line) + ":" + strconv.Itoa(m.Column) + " (" + m.Function + ")"
}

// ENTRY

// Entry is one node of the log tree: a plain record, or a scope holding children.
//
// Exported fields are fixed once the entry is attached.
// Parent, children and scope state are guarded and read through methods.
type Entry struct {
	ID      uint64
	Time    time.Time
	Kind    Kind
	Level   Level
	Badge   string
	Label   string
	Message string
	Detail  any
	Meta    *Meta

	// Info is scope-specific detail: timer or promise bookkeeping, or the detail given to a named scope.
	Info any

	mu       sync.Mutex
	state    State
	parent   *Entry
	children []*Entry

	// render engine only
	printed atomic.Bool
}

// NewEntry returns a plain entry with a fresh ID.
func NewEntry(level Level, badge, label, message string, detail any) *Entry {
	return &Entry{
		ID:      seq.Add(1),
		Kind:    KindPlain,
		Level:   level,
		Badge:   badge,
		Label:   label,
		Message: message,
		Detail:  detail,
	}
}

// NewScopeEntry returns a scope entry with a fresh ID.
func NewScopeEntry(level Level, badge, label, message string, info any, state State) *Entry {
	return &Entry{
		ID:      seq.Add(1),
		Kind:    KindScope,
		Level:   level,
		Badge:   badge,
		Label:   label,
		Message: message,
		Info:    info,
		state:   state,
	}
}

// IsEntry reports whether v is already a log entry, and returns it if so.
func IsEntry(v any) (*Entry, bool) {
	e, ok := v.(*Entry)
	return e, ok && e != nil
}

// IsScope reports whether the entry is a scope.
func (e *Entry) IsScope() bool {
	return e.Kind == KindScope
}

// IsRoot reports whether the entry anchors a logger's tree.
func (e *Entry) IsRoot() bool {
	return e.Label == rootLabel && e.Parent() == nil
}

// Parent returns the owning scope, or nil for a root or unattached entry.
func (e *Entry) Parent() *Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.parent
}

// Children returns a copy of the entry's children, in insertion order.
func (e *Entry) Children() []*Entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	cs := make([]*Entry, len(e.children))
	copy(cs, e.children)
	return cs
}

// Len returns the number of children.
func (e *Entry) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.children)
}

// State returns the scope's lifecycle state.
func (e *Entry) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SetState sets the scope's lifecycle state.
func (e *Entry) SetState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Printed reports whether a render engine has flushed the entry.
func (e *Entry) Printed() bool {
	return e.printed.Load()
}

// attached reports whether the entry already has a parent.
func (e *Entry) attached() bool {
	return e.Parent() != nil
}

// appendChild attaches child, evicting the oldest children beyond limit.
// A limit <= 0 keeps everything.
func (e *Entry) appendChild(child *Entry, limit int) {
	child.mu.Lock()
	child.parent = e
	child.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.children = append(e.children, child)
	if limit > 0 && len(e.children) > limit {
		n := len(e.children) - limit
		clear(e.children[:n])
		e.children = e.children[n:]
	}
}

func (e *Entry) clear() []*Entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	cs := e.children
	e.children = nil
	return cs
}

func (e *Entry) last() *Entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.children) == 0 {
		return nil
	}
	return e.children[len(e.children)-1]
}

// INPUT

// Input is what a [Core] accepts: either a [Message] or a pre-built [*Entry].
type Input interface {
	input()
}

// Message is a fresh log message, with optional detail.
type Message struct {
	Text   string
	Detail any
}

func (Message) input() {}
func (*Entry) input()  {}

func plainEntry(in Input) *Entry {
	switch in := in.(type) {
	case *Entry:
		if in != nil {
			return in
		}
	case Message:
		return NewEntry(LevelLog, "", "", in.Text, in.Detail)
	}
	return NewEntry(LevelLog, "", "", "", nil)
}

func scopeEntry(in Input) *Entry {
	switch in := in.(type) {
	case *Entry:
		if in != nil {
			return in
		}
	case Message:
		return NewScopeEntry(LevelInfo, "", "", in.Text, in.Detail, StateNone)
	}
	return NewScopeEntry(LevelInfo, "", "", "", nil, StateNone)
}
