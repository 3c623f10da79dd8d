package logtree

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// COLORS / STYLES

type pen string

func (p pen) wrap(s string) string {
	if len(p) == 0 || len(s) == 0 {
		return s
	}
	return string(p) + s + "\x1b[0m"
}

func newPen(s string) pen {
	var bg, fg byte
	var setBg bool
	var isDim, isBright bool
	var isItalic, isUnderline, isBlink bool

	tokens := strings.Fields(s)
	for _, token := range tokens {
		setColor := func(c byte) {
			if c == 0 {
				return
			}
			if setBg {
				bg = c
			} else {
				fg = c
			}
		}

		switch token {
		case "bg":
			setBg = true
		case "fg":
			setBg = false
		case "black":
			setColor('0')
		case "red":
			setColor('1')
		case "green":
			setColor('2')
		case "yellow":
			setColor('3')
		case "blue":
			setColor('4')
		case "magenta":
			setColor('5')
		case "cyan":
			setColor('6')
		case "white":
			setColor('7')
		case "bold", "bright":
			isBright, isDim = true, false
		case "dim", "dark":
			isBright, isDim = false, true
		case "italic":
			isItalic = true
		case "underline":
			isUnderline = true
		case "blink":
			isBlink = true
		}
	}

	var st []byte
	push := func(sub ...byte) {
		if len(st) == 0 {
			st = append(st, "\x1b["...)
		}
		st = append(st, sub...)
		st = append(st, ';')
	}

	// colors
	if fg != 0 {
		push('3', fg)
	}
	if bg != 0 {
		push('4', bg)
	}

	// effects
	if isBright {
		push('1')
	}
	if isDim {
		push('2')
	}
	if isItalic {
		push('3')
	}
	if isUnderline {
		push('4')
	}
	if isBlink {
		push('5')
	}

	// close
	if len(st) > 0 {
		st[len(st)-1] = 'm'
	}

	return pen(st)
}

func (f *textFormatter) levelPen(level Level) pen {
	if level < 0 || int(level) >= len(f.levelPens) {
		return ""
	}
	return f.levelPens[level]
}

// CUSTOM ENCODINGS

var (
	// with time format "15:04:05.000"
	TimeMillis func(time.Time) string = encTimeMillis

	// with time format "15:04:05"
	TimeShort func(time.Time) string = encTimeShort

	// with time format RFC3339Nano
	TimeRFC3339Nano func(time.Time) string = encTimeRFC3339Nano

	// file:line:column (function)
	MetaFull func(*Meta) string = encMetaFull

	// just file:line
	MetaShort func(*Meta) string = encMetaShort

	// just the package
	MetaPkg func(*Meta) string = encMetaPkg
)

func encTimeMillis(t time.Time) string {
	return t.Format("15:04:05.000")
}

func encTimeShort(t time.Time) string {
	return t.Format("15:04:05")
}

func encTimeRFC3339Nano(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func encMetaFull(m *Meta) string {
	return m.String()
}

func encMetaShort(m *Meta) string {
	return filepath.Base(m.File) + ":" + strconv.Itoa(m.Line)
}

func encMetaPkg(m *Meta) string {
	return filepath.Base(filepath.Dir(m.File))
}
