package logtree

import (
	"context"
	"runtime"

	"golang.org/x/exp/slog"
)

// Handler is a [slog.Handler] appending records to a log tree.
//
// A record lands under the scope carried by its context (see [NewContext]),
// or else wherever the handler's core appends.
// Record attributes become the entry's detail, as [slog.Attr] values.
// Timestamps come from the logger's clock, not the record.
type Handler struct {
	core  *Core
	ref   slog.Leveler
	attrs []slog.Attr
	group string
}

// NewHandler returns a Handler appending through core.
// Records below ref are dropped; a nil ref admits everything.
func NewHandler(core *Core, ref slog.Leveler) *Handler {
	return &Handler{
		core: core,
		ref:  ref,
	}
}

// Slog returns a [slog.Logger] appending to the logger's tree.
func (l *Logger[A]) Slog(ref slog.Leveler) *slog.Logger {
	return slog.New(NewHandler(l.root.core, ref))
}

// See [slog.Handler.Enabled].
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	if h.ref == nil {
		return true
	}
	return level >= h.ref.Level()
}

// See [slog.Handler.WithAttrs].
func (h *Handler) WithAttrs(as []slog.Attr) slog.Handler {
	scoped := make([]slog.Attr, 0, len(h.attrs)+len(as))
	scoped = append(scoped, h.attrs...)
	for _, a := range as {
		a.Key = h.group + a.Key
		scoped = append(scoped, a)
	}

	return &Handler{
		core:  h.core,
		ref:   h.ref,
		attrs: scoped,
		group: h.group,
	}
}

// See [slog.Handler.WithGroup].
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	return &Handler{
		core:  h.core,
		ref:   h.ref,
		attrs: h.attrs,
		group: h.group + name + ".",
	}
}

// Handle appends one entry for r.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	level := fromSlog(r.Level)

	detail := make([]any, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		detail = append(detail, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		a.Key = h.group + a.Key
		detail = append(detail, a)
		return true
	})

	e := NewEntry(level, levelBadge(level), "", r.Message, nil)
	if len(detail) > 0 {
		e.Detail = detail
	}

	core := CoreFrom(ctx, h.core)
	if r.PC != 0 && core.eng.options().meta {
		e.Meta = metaFromPC(r.PC)
	}

	core.Add(e)
	return nil
}

func metaFromPC(pc uintptr) *Meta {
	f, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if f.File == "" {
		return nil
	}
	return &Meta{
		File:     f.File,
		Line:     f.Line,
		Function: f.Function,
	}
}
