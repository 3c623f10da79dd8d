package logtree

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const rootLabel = "#root"

// RootInfo is the Info of a logger's root entry.
type RootInfo struct {
	Session ulid.ULID
	Created time.Time
}

// FACTORY

// FactoryAPI is what a [Factory] receives: the core its API should append through.
type FactoryAPI struct {
	Core *Core
}

// Factory builds a user-facing API of type A around a core.
// It is called once for the logger and once for every scope.
type Factory[A any] func(FactoryAPI) A

// Methods is a dynamic API shape: named entry constructors.
// Keys may not collide (case-insensitively) with the reserved names
// add, clear, scope, setup, print, entries and last.
type Methods map[string]func(args ...any) *Entry

var reserved = []string{"add", "clear", "scope", "setup", "print", "entries", "last"}

func checkAPI(api any) error {
	m, ok := api.(Methods)
	if !ok {
		return nil
	}
	for name := range m {
		for _, r := range reserved {
			if strings.EqualFold(name, r) {
				return &ConfigError{Name: name}
			}
		}
	}
	return nil
}

// SCOPE

// Scope is a handle on one scope entry: its reserved operations, plus the user API built for it.
type Scope[A any] struct {
	eng     *engine
	factory Factory[A]
	core    *Core
	api     A
}

func newScope[A any](eng *engine, factory Factory[A], core *Core) (*Scope[A], error) {
	api := factory(FactoryAPI{Core: core})
	if err := checkAPI(api); err != nil {
		return nil, err
	}

	return &Scope[A]{
		eng:     eng,
		factory: factory,
		core:    core,
		api:     api,
	}, nil
}

// API returns the user API bound to the scope.
func (s *Scope[A]) API() A {
	return s.api
}

// Entry returns the scope's entry.
func (s *Scope[A]) Entry() *Entry {
	return s.core.entry
}

// Core returns the core appending under the scope.
func (s *Scope[A]) Core() *Core {
	return s.core
}

// Add appends a [LevelLog] entry carrying args.
func (s *Scope[A]) Add(args ...any) *Entry {
	return s.core.AddArgs(LevelLog, args...)
}

// Scope opens a named child scope. See [Scope.ScopeWith].
func (s *Scope[A]) Scope(msg string, exec func(*Scope[A])) *Scope[A] {
	return s.ScopeWith(Message{Text: msg}, exec)
}

// ScopeWith appends a scope entry and returns a handle on it.
//
// A [Message] builds an info-level scope entry with the message's detail as Info;
// a pre-built [*Entry] is used as the scope entry.
//
// If exec is non-nil, it runs synchronously with the new scope entered,
// so that logging through the root logger lands inside it.
// The prior context is restored when exec returns or panics.
// Scope bodies and task activations of one logger run one at a time, so exec
// must not wait on a timer or promise continuation of the same logger.
//
// ScopeWith panics with a [*ConfigError] if the factory yields [Methods] with a reserved name.
func (s *Scope[A]) ScopeWith(in Input, exec func(*Scope[A])) *Scope[A] {
	e := s.core.add(scopeEntry(in))

	child, err := newScope(s.eng, s.factory, newCore(s.eng, e))
	if err != nil {
		panic(err)
	}

	if exec != nil {
		child.run(exec)
	}
	return child
}

func (s *Scope[A]) run(exec func(*Scope[A])) {
	s.eng.act.acquire()
	defer s.eng.act.release()

	st := s.eng.stack
	snap := st.Enter(newContext(s.core), s.core)
	defer st.Leave(snap)

	exec(s)
}

// LOGGER

// Logger is a root [Scope] plus operations on the whole tree.
//
// The logger's core follows whatever scope is entered, so logging through the
// logger inside a scope body or task callback lands in that scope.
type Logger[A any] struct {
	eng  *engine
	root *Scope[A]
}

// API returns the user API bound to the logger.
func (l *Logger[A]) API() A {
	return l.root.api
}

// Entry returns the root entry.
func (l *Logger[A]) Entry() *Entry {
	return l.eng.root
}

// Core returns the logger's core.
func (l *Logger[A]) Core() *Core {
	return l.root.core
}

// Add appends a [LevelLog] entry carrying args. See [Scope.Add].
func (l *Logger[A]) Add(args ...any) *Entry {
	return l.root.Add(args...)
}

// Scope opens a named scope under the entered scope, or the root. See [Scope.ScopeWith].
func (l *Logger[A]) Scope(msg string, exec func(*Scope[A])) *Scope[A] {
	return l.root.Scope(msg, exec)
}

// ScopeWith is like [Logger.Scope], with a [Message] or pre-built scope entry. See [Scope.ScopeWith].
func (l *Logger[A]) ScopeWith(in Input, exec func(*Scope[A])) *Scope[A] {
	return l.root.ScopeWith(in, exec)
}

// New builds a logger around a fresh root entry.
//
// Defaults: time stamps on, call sites off, not silent, 1000 root entries retained, no sinks.
func New[A any](factory Factory[A], opts ...Option) (*Logger[A], error) {
	o := makeOptions(opts...)

	root := NewScopeEntry(LevelInfo, "🚧", rootLabel, "root", RootInfo{
		Session: ulid.Make(),
		Created: o.clock.Now(),
	}, StateNone)

	eng := &engine{
		opts:  o,
		root:  root,
		stack: new(ContextStack),
	}

	core := newCore(eng, root)
	core.link = &link{parent: root, core: core}

	eng.rootLink = core.link
	eng.tasks = &Tasks{eng: eng}

	s, err := newScope(eng, factory, core)
	if err != nil {
		return nil, err
	}

	return &Logger[A]{eng: eng, root: s}, nil
}

// Setup patches the logger's options. Unnamed options keep their values.
func (l *Logger[A]) Setup(opts ...Option) {
	l.eng.setup(opts...)
}

// Print re-emits the whole tree to every sink, depth first, then closes all open groups.
// Silent loggers print too.
func (l *Logger[A]) Print() {
	opts := l.eng.options()

	var walk func(*Entry)
	walk = func(p *Entry) {
		p.printed.Store(false)
		for _, e := range p.Children() {
			e.printed.Store(false)
			opts.broadcast(e)
			if e.IsScope() {
				walk(e)
			}
		}
	}
	walk(l.eng.root)

	opts.broadcast(nil)
}

// Clear drops every entry retained at the root.
func (l *Logger[A]) Clear() {
	l.eng.root.clear()
}

// Entries returns the entries retained at the root.
func (l *Logger[A]) Entries() []*Entry {
	return l.eng.root.Children()
}

// Last returns the most recent root entry, or nil.
func (l *Logger[A]) Last() *Entry {
	return l.eng.root.last()
}

// Root returns the root entry.
func (l *Logger[A]) Root() *Entry {
	return l.eng.root
}

// Stack returns the logger's context stack.
func (l *Logger[A]) Stack() *ContextStack {
	return l.eng.stack
}

// Tasks returns the logger's task adapter.
func (l *Logger[A]) Tasks() *Tasks {
	return l.eng.tasks
}
