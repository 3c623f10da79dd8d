package logtree

import "sync"

// link is a logger's shared attach point.
// The root core appends wherever the link points; entering a scope retargets it.
// Fields are guarded by the owning ContextStack's mutex.
type link struct {
	parent *Entry
	core   *Core
}

// CONTEXT

// Context is the mutable cursor of a running scope:
// the entry new records attach to, the core bound to it, and the logger link it retargets.
type Context struct {
	stack  *ContextStack
	target *Entry
	core   *Core
	link   *link
}

func newContext(core *Core) *Context {
	return &Context{
		stack:  core.eng.stack,
		target: core.entry,
		core:   core,
		link:   core.eng.rootLink,
	}
}

// CONTEXT STACK

// ContextStack is a logger's single ambient context slot.
//
// [ContextStack.Enter] installs a context and returns a [Snapshot] of absolute prior values;
// [ContextStack.Leave] restores them.
// Nesting is correct as long as each Enter is paired with exactly one Leave, innermost first.
type ContextStack struct {
	mu     sync.Mutex
	active *Context
}

// Snapshot holds the values replaced by one [ContextStack.Enter].
type Snapshot struct {
	stack *ContextStack
	used  bool

	active *Context
	ctx    *Context
	target *Entry
	core   *Core

	linkParent *Entry
	linkCore   *Core
}

// Get returns the active context, or nil.
func (st *ContextStack) Get() *Context {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.active
}

// Enter makes ctx the active context, retargeted at scope.
// Enter(nil, nil) installs "no context".
func (st *ContextStack) Enter(ctx *Context, scope *Core) *Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()

	snap := &Snapshot{
		stack:  st,
		active: st.active,
		ctx:    ctx,
	}

	st.active = ctx
	if ctx == nil {
		return snap
	}

	snap.target, snap.core = ctx.target, ctx.core
	if scope != nil {
		ctx.target, ctx.core = scope.entry, scope
	}

	if ctx.link != nil {
		snap.linkParent, snap.linkCore = ctx.link.parent, ctx.link.core
		ctx.link.parent, ctx.link.core = ctx.target, ctx.core
	}

	return snap
}

// Leave restores the values captured by snap.
// A snapshot may be restored once, and only on the stack that issued it.
func (st *ContextStack) Leave(snap *Snapshot) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	switch {
	case snap == nil || snap.stack != st:
		return ErrForeignSnapshot
	case snap.used:
		return ErrSnapshotReused
	}
	snap.used = true

	if ctx := snap.ctx; ctx != nil {
		ctx.target, ctx.core = snap.target, snap.core
		if ctx.link != nil {
			ctx.link.parent, ctx.link.core = snap.linkParent, snap.linkCore
		}
	}
	st.active = snap.active

	return nil
}

// Entry returns the scope entry the context currently targets.
func (ctx *Context) Entry() *Entry {
	ctx.stack.mu.Lock()
	defer ctx.stack.mu.Unlock()
	return ctx.target
}

// Core returns the core bound to the context's current target.
func (ctx *Context) Core() *Core {
	ctx.stack.mu.Lock()
	defer ctx.stack.mu.Unlock()
	return ctx.core
}
