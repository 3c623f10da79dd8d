package logtree

import (
	"os"
	"sync/atomic"

	"golang.org/x/exp/slog"
)

// USING

// Using is an aggregation of [Logger] configuration options.
// Each may be passed to [New] or [Logger.Setup]. For example:
//
//	New(LevelAPI, Using.Meta(true), Using.Stdout)
//
// creates a new Logger recording call sites and rendering to standard output.
//
// Elements of Using are either option[T] or optionFunc[T].
// An option[T] is a function that sets a field in an (unexported) configuration struct.
// An optionFunc[T] is a function, taking one argument of type T, and returning an option[T].
var Using struct {
	// entry decoration
	Meta optionFunc[bool]
	Time optionFunc[bool]

	// drop entries before they reach sinks
	Silent optionFunc[bool]

	// cap on the number of entries retained at the root
	StoreLast optionFunc[int]

	// sinks
	Output sinksFunc
	Stdout option[Sink]
	Stderr option[Sink]

	// collaborators
	CallSite optionFunc[CallSite]
	Clock    optionFunc[Clock]
	OnPanic  optionFunc[func(*PanicError)]
}

func init() {
	Using.Meta = usingMeta
	Using.Time = usingTime
	Using.Silent = usingSilent
	Using.StoreLast = usingStoreLast
	Using.Output = usingOutput
	Using.Stdout = usingFile(os.Stdout)
	Using.Stderr = usingFile(os.Stderr)
	Using.CallSite = usingCallSite
	Using.Clock = usingClock
	Using.OnPanic = usingOnPanic
}

func usingMeta(toggle bool) option[bool] {
	return func(o *options) {
		o.meta = toggle
	}
}

func usingTime(toggle bool) option[bool] {
	return func(o *options) {
		o.time = toggle
	}
}

func usingSilent(toggle bool) option[bool] {
	return func(o *options) {
		o.silent = toggle
	}
}

func usingStoreLast(n int) option[int] {
	return func(o *options) {
		o.storeLast = n
	}
}

func usingOutput(sinks ...Sink) option[Sink] {
	return func(o *options) {
		o.output = append([]Sink(nil), sinks...)
	}
}

func usingFile(f *os.File) option[Sink] {
	return func(o *options) {
		r := NewOutput().Writer(f).Renderer()
		o.output = append(append([]Sink(nil), o.output...), r)
	}
}

func usingCallSite(fn CallSite) option[CallSite] {
	return func(o *options) {
		o.callsite = fn
	}
}

func usingClock(c Clock) option[Clock] {
	return func(o *options) {
		if c == nil {
			c = SystemClock
		}
		o.clock = c
	}
}

func usingOnPanic(fn func(*PanicError)) option[func(*PanicError)] {
	return func(o *options) {
		o.onPanic = fn
	}
}

// OPTION

type (
	// Options may be passed around in other packages,
	// but must be created with package-level Using variables
	Option interface {
		apply(*options)
	}

	option[T any]     func(*options)
	optionFunc[T any] func(T) option[T]
	sinksFunc         func(...Sink) option[Sink]
)

func (opt option[T]) apply(o *options) {
	opt(o)
}

// OPTIONS

type options struct {
	meta      bool
	time      bool
	silent    bool
	storeLast int
	output    []Sink

	callsite CallSite
	clock    Clock
	onPanic  func(*PanicError)
}

func makeOptions(opts ...Option) (o options) {
	o = options{
		time:      true,
		storeLast: 1000,
		callsite:  RuntimeCallSite,
		clock:     SystemClock,
	}
	o.apply(opts...)
	return
}

func (o *options) apply(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(o)
		}
	}
}

// emit forwards e to every sink, last registered first.
func (o options) emit(e *Entry) {
	if o.silent {
		return
	}
	o.broadcast(e)
}

func (o options) broadcast(e *Entry) {
	for i := len(o.output) - 1; i >= 0; i-- {
		o.output[i].Print(e)
	}
}

func (o options) panicked(pe *PanicError) {
	if o.onPanic != nil {
		o.onPanic(pe)
		return
	}
	Fallback().Error("task panicked", "panic", pe.Value)
}

// FALLBACK

var fallback atomic.Pointer[slog.Logger]

func init() {
	fallback.Store(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// Fallback returns the logger used for failures the log tree itself cannot record,
// such as panics in timer callbacks or unreadable configuration files.
func Fallback() *slog.Logger {
	return fallback.Load()
}

// SetFallback replaces the logger returned by [Fallback].
// A nil logger restores the default, which writes text to standard error.
func SetFallback(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	fallback.Store(l)
}
