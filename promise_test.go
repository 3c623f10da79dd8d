package logtree

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func await[T any](t *testing.T, p *Promise[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	v, err := p.Await(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	return v, err
}

func TestPromiseResolved(t *testing.T) {
	rec, _ := recordingLogger(t)
	log := rec.log

	var p *Promise[int]
	s := log.Scope("s", func(*testScope) {
		p = NewPromise(log.Tasks(), func(resolve func(int), reject func(error)) {
			log.API().Log("executing")
			resolve(1)
			resolve(2)
			reject(errors.New("ignored"))
		})
	})

	v, err := await(t, p)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	scope := p.Scope()
	require.NotNil(t, scope)
	assert.Same(t, s.Entry(), scope.Parent())
	assert.Equal(t, "🙏", scope.Badge)
	assert.Equal(t, LevelVerbose, scope.Level)
	assert.Equal(t, "Promise created", scope.Message)
	assert.Equal(t, StateResolved, scope.State())
	assert.Equal(t, []string{"executing"}, messages(scope.Children()))

	info := scope.Info.(*PromiseInfo)
	assert.Equal(t, 1, info.Result)
	assert.NoError(t, info.Reason)
	assert.Equal(t, rec.clock.Now(), info.End)
}

func TestPromiseRejected(t *testing.T) {
	rec, _ := recordingLogger(t)
	log := rec.log

	boom := errors.New("boom")
	var p *Promise[string]
	log.Scope("s", func(*testScope) {
		p = NewPromise(log.Tasks(), func(resolve func(string), reject func(error)) {
			reject(boom)
		})
	})

	_, err := await(t, p)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, StateRejected, p.Scope().State())
	assert.Equal(t, boom, p.Scope().Info.(*PromiseInfo).Reason)
}

func TestPromiseExecutorPanic(t *testing.T) {
	rec, _ := recordingLogger(t)
	log := rec.log

	var p *Promise[int]
	log.Scope("s", func(*testScope) {
		p = NewPromise(log.Tasks(), func(resolve func(int), reject func(error)) {
			panic("executor")
		})
		assert.NotNil(t, log.Stack().Get())
	})
	assert.Nil(t, log.Stack().Get())

	_, err := await(t, p)
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "executor", pe.Value)

	assert.Equal(t, StateError, p.Scope().State())
	assert.Equal(t, err, p.Scope().Info.(*PromiseInfo).Err)
}

func TestPromiseAsyncResolve(t *testing.T) {
	rec, _ := recordingLogger(t)
	log := rec.log

	release := make(chan struct{})
	var p *Promise[int]
	log.Scope("s", func(*testScope) {
		p = NewPromise(log.Tasks(), func(resolve func(int), reject func(error)) {
			go func() {
				<-release
				resolve(7)
			}()
		})
	})

	assert.Equal(t, StatePending, p.Scope().State())
	select {
	case <-p.Done():
		t.Fatal("settled early")
	default:
	}

	close(release)
	v, err := await(t, p)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, StateResolved, p.Scope().State())
}

func TestPromiseThen(t *testing.T) {
	rec, _ := recordingLogger(t)
	log := rec.log

	var p *Promise[int]
	log.Scope("s", func(*testScope) {
		p = NewPromise(log.Tasks(), func(resolve func(int), reject func(error)) {
			resolve(1)
		})
	})

	q := p.Then(func(v int) (int, error) {
		log.API().Log("in then")
		return v + 1, nil
	}, nil)

	v, err := await(t, q)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	// the continuation scope opens under the promise scope
	scope := p.Scope()
	assert.Same(t, scope, q.Scope())

	cs := scope.Children()
	require.Len(t, cs, 1)
	then := cs[0]
	assert.Equal(t, "[[Promise.then.onFulfilled]]", then.Message)
	assert.Equal(t, StateResolved, then.State())
	assert.Equal(t, 2, then.Info.(*ContinuationInfo).Result)
	assert.Equal(t, []string{"in then"}, messages(then.Children()))

	assert.Nil(t, log.Stack().Get())
}

func TestPromiseChain(t *testing.T) {
	rec, _ := recordingLogger(t)
	log := rec.log

	var p *Promise[int]
	log.Scope("s", func(*testScope) {
		p = NewPromise(log.Tasks(), func(resolve func(int), reject func(error)) {
			resolve(10)
		})
	})

	tooLarge := errors.New("too large")
	v, err := await(t, p.
		Then(func(v int) (int, error) { return 0, tooLarge }, nil).
		Then(func(v int) (int, error) {
			t.Error("skipped on rejection")
			return v, nil
		}, nil).
		Catch(func(err error) (int, error) {
			assert.ErrorIs(t, err, tooLarge)
			return -1, nil
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, -1, v)

	cs := p.Scope().Children()
	require.Len(t, cs, 2)

	assert.Equal(t, "[[Promise.then.onFulfilled]]", cs[0].Message)
	assert.Equal(t, StateError, cs[0].State())
	assert.Equal(t, tooLarge, cs[0].Info.(*ContinuationInfo).Err)

	assert.Equal(t, "[[Promise.catch.onRejected]]", cs[1].Message)
	assert.Equal(t, StateResolved, cs[1].State())
}

func TestPromiseThenRejected(t *testing.T) {
	rec, _ := recordingLogger(t)
	log := rec.log

	var p *Promise[int]
	log.Scope("s", func(*testScope) {
		p = NewPromise(log.Tasks(), func(resolve func(int), reject func(error)) {
			reject(errors.New("no"))
		})
	})

	v, err := await(t, p.Then(nil, func(err error) (int, error) {
		panic("handler")
	}))
	assert.Zero(t, v)

	var pe *PanicError
	require.ErrorAs(t, err, &pe)

	cs := p.Scope().Children()
	require.Len(t, cs, 1)
	assert.Equal(t, "[[Promise.then.onRejected]]", cs[0].Message)
	assert.Equal(t, StateError, cs[0].State())
}

func TestPromiseWithoutContext(t *testing.T) {
	rec, want := recordingLogger(t)
	log := rec.log

	p := NewPromise(log.Tasks(), func(resolve func(int), reject func(error)) {
		resolve(3)
	})
	assert.Nil(t, p.Scope())

	v, err := await(t, p.Then(func(v int) (int, error) { return v * 2, nil }, nil))
	require.NoError(t, err)
	assert.Equal(t, 6, v)

	bad := NewPromise(log.Tasks(), func(resolve func(int), reject func(error)) {
		panic("plain")
	})
	_, err = await(t, bad)
	assert.Error(t, err)

	assert.Empty(t, log.Entries())
	want()
}

func TestPromiseAwaitCancelled(t *testing.T) {
	rec, _ := recordingLogger(t)

	p := NewPromise(rec.log.Tasks(), func(resolve func(int), reject func(error)) {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
