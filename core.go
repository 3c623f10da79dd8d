package logtree

import "sync"

// engine is the state shared by a logger and every scope built from it.
type engine struct {
	mu   sync.RWMutex
	opts options

	root     *Entry
	stack    *ContextStack
	rootLink *link
	tasks    *Tasks

	// held while a scope body or task activation runs
	act activation
}

func (eng *engine) options() options {
	eng.mu.RLock()
	defer eng.mu.RUnlock()
	return eng.opts
}

func (eng *engine) setup(opts ...Option) {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	eng.opts.apply(opts...)
}

// CORE

// Core appends entries at one attach point and forwards them to the configured sinks.
//
// A logger's root core follows the logger's link, so it appends under whatever scope is entered.
// A scope's core always appends under its own entry.
type Core struct {
	eng   *engine
	entry *Entry
	link  *link
}

func newCore(eng *engine, e *Entry) *Core {
	return &Core{
		eng:   eng,
		entry: e,
	}
}

// Entry returns the scope entry new records are appended to.
func (c *Core) Entry() *Entry {
	if c.link == nil {
		return c.entry
	}

	c.eng.stack.mu.Lock()
	defer c.eng.stack.mu.Unlock()
	return c.link.parent
}

// Add appends one entry.
//
// A [Message] builds a plain entry at [LevelLog]; a pre-built [*Entry] is used as-is.
// An entry that is already attached somewhere is forwarded to the sinks again but not re-attached.
func (c *Core) Add(in Input) *Entry {
	return c.add(plainEntry(in))
}

// AddArgs appends an entry at level whose detail is args.
// A single [*Entry] argument is re-injected rather than wrapped.
func (c *Core) AddArgs(level Level, args ...any) *Entry {
	if len(args) == 1 {
		if e, ok := IsEntry(args[0]); ok {
			return c.add(e)
		}
	}
	return c.add(NewEntry(level, levelBadge(level), "", "", args))
}

func (c *Core) add(e *Entry) *Entry {
	opts := c.eng.options()

	if e.attached() {
		opts.emit(e)
		return e
	}

	if opts.meta && e.Meta == nil && opts.callsite != nil {
		e.Meta = opts.callsite(1)
	}

	if opts.time && e.Time.IsZero() {
		e.Time = opts.clock.Now()
	}

	parent := c.Entry()
	if parent == e {
		return e
	}

	limit := 0
	if parent == c.eng.root {
		limit = opts.storeLast
	}
	parent.appendChild(e, limit)

	opts.emit(e)
	return e
}
