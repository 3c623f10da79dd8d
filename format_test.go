package logtree

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stringer struct{}

func (stringer) String() string { return "stringer" }

func TestStringify(t *testing.T) {
	for _, tc := range []struct {
		v    any
		want string
	}{
		{nil, "null"},
		{"s", "s"},
		{errors.New("err"), "err"},
		{stringer{}, "stringer"},
		{42, "42"},
		{1.5, "1.5"},
		{false, "false"},
		{[]int{1, 2}, "[1,2]"},
		{struct{ A int }{3}, `{"A":3}`},
	} {
		assert.Equal(t, tc.want, stringify(tc.v))
	}

	// values JSON cannot encode fall back to fmt
	assert.NotEmpty(t, stringify(make(chan int)))
}

func TestTaskOutcomeString(t *testing.T) {
	assert.Equal(t, "duration=1s", (&TaskOutcome{Duration: time.Second}).String())
	assert.Equal(t, "duration=0s cancelled", (&TaskOutcome{Cancelled: true}).String())
	assert.Equal(t, "duration=2ms error=x", (&TaskOutcome{Duration: 2 * time.Millisecond, Err: errors.New("x")}).String())
}

func TestPlainTextFields(t *testing.T) {
	e := NewEntry(LevelInfo, "❕", "lbl", "msg", []any{"a", 1})
	e.Time = time.Date(2024, 7, 8, 9, 10, 11, 12_000_000, time.UTC)
	e.Meta = &Meta{File: "/src/pkg/file.go", Line: 3, Column: 4, Function: "pkg.F"}

	assert.Equal(t,
		"[09:10:11.012] ❕ (lbl) msg a 1 /src/pkg/file.go:3:4 (pkg.F)",
		joinArgs(PlainText(e)),
	)

	short := NewOutput().
		Colors(false).
		Time("", TimeShort).
		Meta("", MetaShort).
		Layout("meta", "message", "bogus", "time").
		TextFormat()
	assert.Equal(t, "file.go:3 msg [09:10:11]", joinArgs(short(e)))

	pkg := NewOutput().Colors(false).Meta("", MetaPkg).Layout("meta").TextFormat()
	assert.Equal(t, "pkg", joinArgs(pkg(e)))

	rfc := NewOutput().Colors(false).Time("", TimeRFC3339Nano).Layout("time").TextFormat()
	assert.Equal(t, "[2024-07-08T09:10:11.012Z]", joinArgs(rfc(e)))
}

func TestPlainTextDetail(t *testing.T) {
	single := NewEntry(LevelLog, "", "", "", map[string]bool{"ok": true})
	assert.Equal(t, []any{`{"ok":true}`}, PlainText(single))

	empty := NewEntry(LevelLog, "", "", "", nil)
	assert.Empty(t, PlainText(empty))
}

func TestANSI(t *testing.T) {
	scope := NewScopeEntry(LevelError, "", "bad", "scope", nil, StateNone)

	assert.Equal(t,
		[]any{"\x1b[31;1m(bad)\x1b[0m", "\x1b[1mscope\x1b[0m"},
		ANSI(scope),
	)

	custom := NewOutput().
		Scope("underline").
		LevelColors("", "", "", "red").
		TextFormat()
	assert.Equal(t,
		[]any{"\x1b[31m(bad)\x1b[0m", "\x1b[4mscope\x1b[0m"},
		custom(scope),
	)
}

func TestNewPen(t *testing.T) {
	assert.Equal(t, pen(""), newPen(""))
	assert.Equal(t, pen("\x1b[2m"), newPen("dim"))
	assert.Equal(t, pen("\x1b[32;41;1m"), newPen("bright green bg red"))
	assert.Equal(t, "x", pen("").wrap("x"))
	assert.Equal(t, "", newPen("red").wrap(""))
}
