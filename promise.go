package logtree

import (
	"context"
	"sync"
	"time"
)

// PromiseInfo is the Info of a promise scope.
type PromiseInfo struct {
	Start  time.Time
	End    time.Time
	Result any
	Reason error
	Err    error
}

// ContinuationInfo is the Info of a continuation scope.
type ContinuationInfo struct {
	Result any
	Err    error
}

const (
	thenFulfilled  = "[[Promise.then.onFulfilled]]"
	thenRejected   = "[[Promise.then.onRejected]]"
	catchRejected  = "[[Promise.catch.onRejected]]"
	promiseCreated = "Promise created"
)

// PROMISE

// Promise is a value settled once, by resolution or rejection.
//
// A promise created while a context is active opens a scope under it,
// and each continuation runs in its own child scope of that one.
// Promises returned by Then and Catch share the original promise's scope.
type Promise[T any] struct {
	tasks *Tasks
	scope *promiseScope

	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

type promiseScope struct {
	core *Core
	link *link
	info *PromiseInfo
}

func newPromise[T any](tasks *Tasks, scope *promiseScope) *Promise[T] {
	return &Promise[T]{
		tasks: tasks,
		scope: scope,
		done:  make(chan struct{}),
	}
}

// NewPromise runs executor synchronously and returns the promise it settles.
//
// A panic in executor rejects the promise with a [*PanicError].
// Only the first call to resolve or reject has an effect.
func NewPromise[T any](tasks *Tasks, executor func(resolve func(T), reject func(error))) *Promise[T] {
	p := newPromise[T](tasks, nil)

	tasks.eng.act.acquire()
	defer tasks.eng.act.release()

	e := NewScopeEntry(LevelVerbose, "🙏", "", promiseCreated, nil, StatePending)
	ctx, core := tasks.instrument(e)
	if ctx == nil {
		if pe := protect(func() { executor(p.resolve, p.reject) }); pe != nil {
			p.reject(pe)
		}
		return p
	}

	now := tasks.eng.options().clock.Now()
	info := &PromiseInfo{Start: now}
	e.Info = info
	p.scope = &promiseScope{core: core, link: ctx.link, info: info}

	end := func(state State, set func()) {
		e.SetState(state)
		set()
		info.End = tasks.eng.options().clock.Now()
	}

	resolve := func(v T) {
		p.settle(v, nil, func() { end(StateResolved, func() { info.Result = v }) })
	}
	reject := func(err error) {
		var zero T
		p.settle(zero, err, func() { end(StateRejected, func() { info.Reason = err }) })
	}

	st := tasks.eng.stack
	snap := st.Enter(ctx, core)
	defer st.Leave(snap)

	if pe := protect(func() { executor(resolve, reject) }); pe != nil {
		var zero T
		p.settle(zero, pe, func() { end(StateError, func() { info.Err = pe }) })
	}

	return p
}

// settle records the outcome once; before runs ahead of waking waiters.
func (p *Promise[T]) settle(v T, err error, before func()) (ok bool) {
	p.once.Do(func() {
		if before != nil {
			before()
		}
		p.value, p.err = v, err
		close(p.done)
		ok = true
	})
	return
}

func (p *Promise[T]) resolve(v T) {
	p.settle(v, nil, nil)
}

func (p *Promise[T]) reject(err error) {
	var zero T
	p.settle(zero, err, nil)
}

// Done is closed once the promise settles.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Await blocks until the promise settles or ctx is done.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Scope returns the promise's scope entry, or nil for a promise created outside any context.
func (p *Promise[T]) Scope() *Entry {
	if p.scope == nil {
		return nil
	}
	return p.scope.core.entry
}

// Then returns a promise settled by onFulfilled or onRejected, whichever applies.
// A nil handler passes the settlement through unchanged.
//
// The handlers wait on their own goroutine, which lives until p settles.
// A promise that never settles holds that goroutine forever.
func (p *Promise[T]) Then(onFulfilled func(T) (T, error), onRejected func(error) (T, error)) *Promise[T] {
	next := newPromise[T](p.tasks, p.scope)

	go func() {
		<-p.done

		if p.err == nil {
			if onFulfilled == nil {
				next.resolve(p.value)
				return
			}
			v, err := p.continueWith(thenFulfilled, func() (T, error) { return onFulfilled(p.value) })
			next.settle(v, err, nil)
			return
		}

		if onRejected == nil {
			next.reject(p.err)
			return
		}
		v, err := p.continueWith(thenRejected, func() (T, error) { return onRejected(p.err) })
		next.settle(v, err, nil)
	}()

	return next
}

// Catch returns a promise that recovers from a rejection through onRejected.
// Like [Promise.Then], it waits on a goroutine that lives until p settles.
func (p *Promise[T]) Catch(onRejected func(error) (T, error)) *Promise[T] {
	next := newPromise[T](p.tasks, p.scope)

	go func() {
		<-p.done

		if p.err == nil || onRejected == nil {
			next.settle(p.value, p.err, nil)
			return
		}
		v, err := p.continueWith(catchRejected, func() (T, error) { return onRejected(p.err) })
		next.settle(v, err, nil)
	}()

	return next
}

// continueWith runs fn as one activation, inside a named child scope of the promise scope.
func (p *Promise[T]) continueWith(name string, fn func() (T, error)) (v T, err error) {
	call := func() {
		if pe := protect(func() { v, err = fn() }); pe != nil {
			err = pe
		}
	}

	if p.scope == nil {
		call()
		return
	}

	t := p.tasks
	t.eng.act.acquire()
	defer t.eng.act.release()

	info := new(ContinuationInfo)
	e := p.scope.core.add(NewScopeEntry(LevelInfo, "", "", name, info, StateNone))
	core := newCore(t.eng, e)

	st := t.eng.stack
	snap := st.Enter(&Context{
		stack:  st,
		target: e,
		core:   core,
		link:   p.scope.link,
	}, core)
	defer st.Leave(snap)

	call()

	if err != nil {
		info.Err = err
		e.SetState(StateError)
	} else {
		info.Result = v
		e.SetState(StateResolved)
	}
	return
}
