package logtree

import (
	"time"
)

// TimerInfo is the Info of a timer scope.
type TimerInfo struct {
	PID   int
	Kind  TaskKind
	Start time.Time
	Delay time.Duration
	End   time.Time
}

type task struct {
	id    TaskID
	fn    func(step int)
	delay time.Duration
	timer Stopper

	// nil when scheduled outside any context
	ctx  *Context
	core *Core
	info *TimerInfo

	// start of the current step
	start time.Time
	step  int

	running   bool
	cancelled bool
}

// SetTimeout runs fn once, after d.
func (t *Tasks) SetTimeout(fn func(), d time.Duration) TaskID {
	return t.schedule(TaskTimeout, func(int) { fn() }, d)
}

// SetInterval runs fn every d, passing the zero-based step, until cleared or until a step panics.
func (t *Tasks) SetInterval(fn func(step int), d time.Duration) TaskID {
	return t.schedule(TaskInterval, fn, d)
}

// SetImmediate runs fn once, as soon as possible.
func (t *Tasks) SetImmediate(fn func()) TaskID {
	return t.schedule(TaskImmediate, func(int) { fn() }, 0)
}

func (t *Tasks) schedule(kind TaskKind, fn func(int), d time.Duration) TaskID {
	opts := t.eng.options()
	now := opts.clock.Now()

	t.mu.Lock()
	id := t.nextID(kind)
	t.mu.Unlock()

	tk := &task{
		id:    id,
		fn:    fn,
		delay: d,
		start: now,
	}

	tk.info = &TimerInfo{
		PID:   id.PID,
		Kind:  kind,
		Start: now,
		Delay: d,
	}

	scope := NewScopeEntry(LevelVerbose, "⏲", "", `Timer "`+kind.String()+`" started`, tk.info, StateIdle)
	t.eng.act.acquire()
	tk.ctx, tk.core = t.instrument(scope)
	t.eng.act.release()

	t.mu.Lock()
	if t.live == nil {
		t.live = make(map[TaskID]*task)
	}
	t.live[id] = tk
	tk.timer = opts.clock.AfterFunc(d, func() { t.fire(tk) })
	t.mu.Unlock()

	return id
}

// Clear cancels a task.
//
// A task that has not yet run is stopped and, if instrumented, reports one cancelled completion.
// A task clearing itself from its own callback reports cancellation when that activation ends.
// Clearing an unknown or finished task does nothing. Clear reports whether id was tracked.
func (t *Tasks) Clear(id TaskID) bool {
	t.mu.Lock()
	tk, ok := t.live[id]
	if !ok {
		t.mu.Unlock()
		return false
	}

	if tk.timer != nil {
		tk.timer.Stop()
	}
	tk.cancelled = true

	if tk.running {
		t.mu.Unlock()
		return true
	}

	delete(t.live, id)
	start := tk.start
	t.mu.Unlock()

	if tk.core != nil {
		t.complete(tk, nil, true, start, t.eng.options().clock.Now(), false)
	}
	return true
}

func (t *Tasks) fire(tk *task) {
	t.eng.act.acquire()
	defer t.eng.act.release()

	t.mu.Lock()
	if t.live[tk.id] != tk || tk.cancelled {
		t.mu.Unlock()
		return
	}
	tk.running = true
	step := tk.step
	tk.step++
	t.mu.Unlock()

	st := t.eng.stack
	var snap *Snapshot
	if tk.core != nil {
		snap = st.Enter(tk.ctx, tk.core)
		tk.core.entry.SetState(StateInteractive)
	}

	pe := protect(func() { tk.fn(step) })

	opts := t.eng.options()
	now := opts.clock.Now()

	// decide the outcome in one section; running stays set until it is reported
	t.mu.Lock()
	cancelled := tk.cancelled
	start := tk.start
	tk.start = now
	again := tk.id.Kind == TaskInterval && !cancelled && pe == nil
	if again {
		tk.timer = opts.clock.AfterFunc(tk.delay, func() { t.fire(tk) })
	} else {
		delete(t.live, tk.id)
	}
	t.mu.Unlock()

	var err error
	if pe != nil {
		err = pe
	}
	if tk.core != nil {
		t.complete(tk, err, cancelled, start, now, again)
	}

	// a Clear that arrived while the step was reported stops the interval here
	t.mu.Lock()
	tk.running = false
	late := again && tk.cancelled
	if late {
		delete(t.live, tk.id)
	}
	t.mu.Unlock()

	if late && tk.core != nil {
		t.complete(tk, nil, true, now, opts.clock.Now(), false)
	}

	if tk.core != nil {
		st.Leave(snap)
	}

	if pe != nil {
		opts.panicked(pe)
	}
}

// complete sets the timer scope's state and appends the completion entry under it.
// An interval that continues goes back to idle.
func (t *Tasks) complete(tk *task, err error, cancelled bool, start, now time.Time, again bool) {
	out := outcomes[outcomeOf(err, cancelled)]

	if again {
		tk.core.entry.SetState(StateIdle)
	} else {
		tk.core.entry.SetState(out.state)
		tk.info.End = now
	}

	kind := tk.id.Kind.String()
	tk.core.add(NewEntry(out.level, out.badge, out.label, `Timer "`+kind+`" `+out.verb, &TaskOutcome{
		Err:       err,
		Cancelled: cancelled,
		Duration:  now.Sub(start),
	}))
}
