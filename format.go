package logtree

import (
	"encoding/json"
	"fmt"
	"time"
)

// PlainText formats entries without color:
//
//	[15:04:05.000] badge (label) message detail... file:line:col (function)
//
// Absent parts are skipped.
var PlainText Format = NewOutput().Colors(false).TextFormat()

// ANSI formats entries like [PlainText], colored with ANSI escape codes.
var ANSI Format = NewOutput().Colors(true).TextFormat()

type textField uint8

const (
	fieldTime textField = iota
	fieldBadge
	fieldLabel
	fieldMessage
	fieldDetail
	fieldMeta
)

var defaultLayout = []textField{fieldTime, fieldBadge, fieldLabel, fieldMessage, fieldDetail, fieldMeta}

type textFormatter struct {
	layout []textField

	time func(time.Time) string
	meta func(*Meta) string

	timePen   pen
	metaPen   pen
	scopePen  pen
	levelPens [len(levelNames)]pen
}

func (f *textFormatter) format(e *Entry) []any {
	var args []any

	for _, field := range f.layout {
		switch field {
		case fieldTime:
			if !e.Time.IsZero() && f.time != nil {
				args = append(args, f.timePen.wrap("["+f.time(e.Time)+"]"))
			}

		case fieldBadge:
			if e.Badge != "" {
				args = append(args, e.Badge)
			}

		case fieldLabel:
			if e.Label != "" {
				args = append(args, f.levelPen(e.Level).wrap("("+e.Label+")"))
			}

		case fieldMessage:
			switch {
			case e.Message == "":
			case e.IsScope():
				args = append(args, f.scopePen.wrap(e.Message))
			default:
				args = append(args, e.Message)
			}

		case fieldDetail:
			switch d := e.Detail.(type) {
			case nil:
			case []any:
				for _, v := range d {
					args = append(args, stringify(v))
				}
			default:
				args = append(args, stringify(d))
			}

		case fieldMeta:
			if e.Meta != nil && f.meta != nil {
				args = append(args, f.metaPen.wrap(f.meta(e.Meta)))
			}
		}
	}

	return args
}

// stringify renders one detail value: strings, numbers and booleans as-is,
// errors and Stringers by their text, anything else as JSON.
func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(v)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}

// String summarizes a task outcome: duration, then cancellation or error if any.
func (o *TaskOutcome) String() string {
	s := "duration=" + o.Duration.String()
	if o.Cancelled {
		s += " cancelled"
	}
	if o.Err != nil {
		s += " error=" + o.Err.Error()
	}
	return s
}
