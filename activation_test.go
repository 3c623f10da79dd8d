package logtree

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoroutineID(t *testing.T) {
	id := goroutineID()
	assert.NotZero(t, id)
	assert.Equal(t, id, goroutineID())

	other := make(chan uint64)
	go func() { other <- goroutineID() }()
	assert.NotEqual(t, id, <-other)
}

func TestActivationReentrant(t *testing.T) {
	var a activation

	a.acquire()
	a.acquire()
	a.release()

	entered := make(chan struct{})
	go func() {
		a.acquire()
		close(entered)
		a.release()
	}()

	select {
	case <-entered:
		t.Fatal("acquired while held by another goroutine")
	case <-time.After(20 * time.Millisecond):
	}

	a.release()
	<-entered
}

func TestLoggerForwarding(t *testing.T) {
	rec, want := recordingLogger(t)
	log := rec.log

	assert.Same(t, log.Root(), log.Entry())

	log.Add("plain", 1)
	s := log.ScopeWith(Message{Text: "with"}, func(*testScope) {
		// the logger's entry stays the root while its core follows the scope
		assert.Same(t, log.Root(), log.Entry())
		log.Add("inside")
	})
	want(
		"plain 1",
		"with",
		"  | inside",
	)

	// a logger is a handle on the root
	h, ok := FromContext(NewContext(context.Background(), log))
	require.True(t, ok)
	assert.Same(t, log.Root(), h.Entry())
	assert.Same(t, log.Root(), s.Entry().Parent())
}

func TestTimerWaitsForScopeBody(t *testing.T) {
	rec, _ := recordingLogger(t)
	log := rec.log
	tasks := log.Tasks()

	s := log.Scope("s", func(*testScope) {
		tasks.SetTimeout(func() {
			log.API().Log("x")
		}, time.Second)
	})
	timer := s.Entry().Children()[0]

	fired := make(chan struct{})
	outer := log.Scope("outer", func(*testScope) {
		go func() {
			defer close(fired)
			rec.clock.Advance(time.Second)
		}()

		// the timer cannot run while this body holds the context slot
		assert.Never(t, func() bool { return timer.Len() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
		log.API().Log("mine")
	})
	<-fired

	assert.Equal(t, []string{"mine"}, messages(outer.Entry().Children()))

	done := timer.Children()
	require.Len(t, done, 2)
	assert.Equal(t, "x", joinArgs(PlainText(done[0])))
	assert.Equal(t, StateCompleted, timer.State())

	assert.Nil(t, log.Stack().Get())
	after := log.API().Log("after")
	assert.Same(t, log.Root(), after.Parent())
}

func TestTimerFiresInsideScopeBody(t *testing.T) {
	rec, _ := recordingLogger(t)
	log := rec.log
	tasks := log.Tasks()

	s := log.Scope("s", func(*testScope) {
		tasks.SetTimeout(func() {
			log.API().Log("x")
		}, time.Second)
	})

	// the clock fires on the goroutine already holding the slot
	outer := log.Scope("outer", func(*testScope) {
		rec.clock.Advance(time.Second)
		log.API().Log("mine")
	})

	timer := s.Entry().Children()[0]
	assert.Equal(t, StateCompleted, timer.State())
	assert.Len(t, timer.Children(), 2)
	assert.Equal(t, []string{"mine"}, messages(outer.Entry().Children()))
	assert.Nil(t, log.Stack().Get())
}

func TestIntervalClearedWhileReporting(t *testing.T) {
	var tasks *Tasks
	var id TaskID
	var once sync.Once

	// clears the interval from another goroutine while its first step is being reported
	hook := SinkFunc(func(e *Entry) {
		if e == nil || e.Label != "success" {
			return
		}
		once.Do(func() {
			cleared := make(chan bool)
			go func() { cleared <- tasks.Clear(id) }()
			assert.True(t, <-cleared)
		})
	})

	rec, _ := recordingLogger(t, Using.Output(hook))
	log := rec.log
	tasks = log.Tasks()

	s := log.Scope("s", func(*testScope) {
		id = tasks.SetInterval(func(int) {}, time.Second)
	})

	rec.clock.Advance(time.Second)
	rec.clock.Advance(time.Hour)

	timer := s.Entry().Children()[0]
	assert.Equal(t, StateCancelled, timer.State())

	done := timer.Children()
	require.Len(t, done, 2)
	assert.Equal(t, "success", done[0].Label)
	assert.Equal(t, "cancelled", done[1].Label)

	assert.Zero(t, tasks.Pending())
	assert.False(t, tasks.Clear(id))
}

func TestIntervalClearRace(t *testing.T) {
	log, err := New(LevelAPI)
	require.NoError(t, err)
	tasks := log.Tasks()

	steps := make(chan int, 64)
	var id TaskID
	s := log.Scope("s", func(*testScope) {
		id = tasks.SetInterval(func(step int) {
			select {
			case steps <- step:
			default:
			}
		}, time.Millisecond)
	})

	for step := range steps {
		if step >= 3 {
			break
		}
	}
	assert.True(t, tasks.Clear(id))

	timer := s.Entry().Children()[0]
	require.Eventually(t, func() bool {
		return tasks.Pending() == 0 && timer.State() == StateCancelled
	}, time.Second, time.Millisecond)

	// exactly one cancellation, reported last
	done := timer.Children()
	require.NotEmpty(t, done)
	for _, e := range done[:len(done)-1] {
		assert.Equal(t, "success", e.Label)
	}
	assert.Equal(t, "cancelled", done[len(done)-1].Label)

	time.Sleep(10 * time.Millisecond)
	assert.Len(t, timer.Children(), len(done))
}
