package logtree

import "context"

type handleKey struct{}

// Handle is anything that can name a scope: a [*Scope], a [*Logger], or an active [*Context].
type Handle interface {
	Entry() *Entry
	Core() *Core
}

// NewContext returns a copy of ctx carrying h.
// Code on other goroutines can log under h's scope without touching the ambient context slot.
func NewContext(ctx context.Context, h Handle) context.Context {
	return context.WithValue(ctx, handleKey{}, h)
}

// FromContext returns the handle carried by ctx, if any.
func FromContext(ctx context.Context) (Handle, bool) {
	if ctx == nil {
		return nil, false
	}
	h, ok := ctx.Value(handleKey{}).(Handle)
	return h, ok && h != nil
}

// CoreFrom returns the core carried by ctx, or fallback if there is none.
func CoreFrom(ctx context.Context, fallback *Core) *Core {
	if h, ok := FromContext(ctx); ok {
		if c := h.Core(); c != nil {
			return c
		}
	}
	return fallback
}
