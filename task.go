package logtree

import (
	"sync"
	"time"
)

// TaskKind names the scheduling primitive behind a task.
type TaskKind uint8

const (
	TaskTimeout TaskKind = iota
	TaskInterval
	TaskImmediate
)

var taskKindNames = [...]string{
	TaskTimeout:   "timeout",
	TaskInterval:  "interval",
	TaskImmediate: "immediate",
}

func (k TaskKind) String() string {
	if int(k) >= len(taskKindNames) {
		return "unknown"
	}
	return taskKindNames[k]
}

// TaskID identifies a scheduled task.
// PIDs are assigned per kind, so only the pair is unique.
type TaskID struct {
	Kind TaskKind
	PID  int
}

// OUTCOME

// Outcome classifies one task activation.
type Outcome uint8

const (
	OutcomeSuccess Outcome = iota
	OutcomeCancelled
	OutcomeFailed
)

type outcomeDetail struct {
	level Level
	badge string
	label string
	verb  string
	state State
}

var outcomes = [...]outcomeDetail{
	OutcomeSuccess:   {LevelInfo, "✅", "success", "completed successfully", StateCompleted},
	OutcomeCancelled: {LevelWarn, "⚠️", "cancelled", "cancelled", StateCancelled},
	OutcomeFailed:    {LevelError, "❌", "failed", "failed", StateFailed},
}

// outcomeOf ranks cancellation above failure.
func outcomeOf(err error, cancelled bool) Outcome {
	switch {
	case cancelled:
		return OutcomeCancelled
	case err != nil:
		return OutcomeFailed
	default:
		return OutcomeSuccess
	}
}

func (o Outcome) String() string {
	return outcomes[o].label
}

// TaskOutcome is the Detail of a task completion entry.
type TaskOutcome struct {
	Err       error
	Cancelled bool
	Duration  time.Duration
}

// TASKS

// Tasks schedules callbacks that run inside the scope that was active when they were scheduled.
//
// Activations are serialized with each other and with synchronous scope bodies:
// at most one of them runs at a time, which keeps the logger's single context slot consistent.
// A callback must not wait on another activation of the same logger.
type Tasks struct {
	eng *engine

	mu   sync.Mutex
	pids [len(taskKindNames)]int
	live map[TaskID]*task
}

// Pending returns the number of tracked tasks: scheduled, or running and not yet finished.
func (t *Tasks) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

func (t *Tasks) nextID(kind TaskKind) TaskID {
	t.pids[kind]++
	return TaskID{kind, t.pids[kind]}
}

// instrument opens a child scope of the active context, or returns nils when no context is active.
func (t *Tasks) instrument(e *Entry) (*Context, *Core) {
	active := t.eng.stack.Get()
	if active == nil {
		return nil, nil
	}

	active.Core().add(e)
	core := newCore(t.eng, e)

	return &Context{
		stack:  t.eng.stack,
		target: e,
		core:   core,
		link:   active.link,
	}, core
}

// protect calls fn, converting a panic into a *PanicError.
func protect(fn func()) (pe *PanicError) {
	defer func() {
		if r := recover(); r != nil {
			pe = newPanicError(r)
		}
	}()

	fn()
	return nil
}
