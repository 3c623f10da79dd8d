package logtree

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	// ErrSnapshotReused reports a second [ContextStack.Leave] of the same [Snapshot].
	ErrSnapshotReused = errors.New("logtree: snapshot already restored")

	// ErrForeignSnapshot reports a [Snapshot] taken on another [ContextStack].
	ErrForeignSnapshot = errors.New("logtree: snapshot belongs to another stack")
)

// ConfigError reports a user API that shadows a reserved method name.
type ConfigError struct {
	Name string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("logtree: API method %q collides with a reserved name", e.Name)
}

// PanicError wraps a value recovered from a task callback or promise executor.
type PanicError struct {
	Value any
	Stack []byte
}

func newPanicError(v any) *PanicError {
	return &PanicError{
		Value: v,
		Stack: debug.Stack(),
	}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("logtree: panic: %v", e.Value)
}

// Unwrap returns the recovered value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
