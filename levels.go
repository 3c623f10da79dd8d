package logtree

import (
	"strings"

	"golang.org/x/exp/slog"
)

// Level is the severity of an [Entry].
// Lower values are more severe.
type Level int8

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelVerbose
	LevelDebug
	LevelLog
	LevelSuccess
)

var levelNames = [...]string{
	LevelError:   "error",
	LevelWarn:    "warn",
	LevelInfo:    "info",
	LevelVerbose: "verbose",
	LevelDebug:   "debug",
	LevelLog:     "log",
	LevelSuccess: "success",
}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// ParseLevel returns the Level named by s, ignoring case.
func ParseLevel(s string) (Level, bool) {
	for i, name := range levelNames {
		if strings.EqualFold(name, s) {
			return Level(i), true
		}
	}
	return LevelLog, false
}

// badges used by the [Levels] API; log and debug have none
var levelBadges = [...]string{
	LevelError:   "🛑",
	LevelWarn:    "⚠️",
	LevelInfo:    "❕",
	LevelVerbose: "🔎",
	LevelDebug:   "",
	LevelLog:     "",
	LevelSuccess: "✅",
}

func levelBadge(l Level) string {
	if l < 0 || int(l) >= len(levelBadges) {
		return ""
	}
	return levelBadges[l]
}

// fromSlog maps a slog level onto the nearest Level.
func fromSlog(level slog.Level) Level {
	switch {
	case level >= slog.LevelError:
		return LevelError
	case level >= slog.LevelWarn:
		return LevelWarn
	case level >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// LEVELS API

// Levels is the default user-facing API built by [LevelAPI].
// Each method adds one entry, at its level, to the scope the API was built for.
type Levels struct {
	core *Core
}

// LevelAPI is a [Factory] producing [Levels].
func LevelAPI(f FactoryAPI) Levels {
	return Levels{f.Core}
}

func (l Levels) Error(args ...any) *Entry   { return l.core.AddArgs(LevelError, args...) }
func (l Levels) Warn(args ...any) *Entry    { return l.core.AddArgs(LevelWarn, args...) }
func (l Levels) Info(args ...any) *Entry    { return l.core.AddArgs(LevelInfo, args...) }
func (l Levels) Verbose(args ...any) *Entry { return l.core.AddArgs(LevelVerbose, args...) }
func (l Levels) Debug(args ...any) *Entry   { return l.core.AddArgs(LevelDebug, args...) }
func (l Levels) Log(args ...any) *Entry     { return l.core.AddArgs(LevelLog, args...) }
func (l Levels) Success(args ...any) *Entry { return l.core.AddArgs(LevelSuccess, args...) }
