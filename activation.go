package logtree

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// activation serializes everything that writes a logger's context slot:
// synchronous scope bodies, task callbacks, promise executors and continuations.
//
// It is reentrant for the goroutine holding it, so scopes nest and a fake clock
// may fire timers from inside a scope body. Other goroutines wait for the
// outermost holder to release it.
type activation struct {
	mu    sync.Mutex
	cond  *sync.Cond
	owner uint64
	depth int
}

func (a *activation) acquire() {
	id := goroutineID()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cond == nil {
		a.cond = sync.NewCond(&a.mu)
	}
	if a.depth > 0 && a.owner == id {
		a.depth++
		return
	}
	for a.depth > 0 {
		a.cond.Wait()
	}
	a.owner, a.depth = id, 1
}

func (a *activation) release() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.depth--
	if a.depth == 0 {
		a.owner = 0
		a.cond.Broadcast()
	}
}

// goroutineID parses the current goroutine's id from its stack header, "goroutine 123 [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	s := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	id, _ := strconv.ParseUint(s, 10, 64)
	return id
}
