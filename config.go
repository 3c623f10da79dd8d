package logtree

import (
	"io"
	"os"
	"time"
)

// OUTPUT CONFIG

// OutputConfig is a chained builder for text renderers.
//
// # Typical usage
//
// 1. The [NewOutput] function opens a new OutputConfig instance.
//
// 2. Next, zero or more methods are chained to set configuration fields.
//
// Methods and defaults:
//   - [OutputConfig.Writer]: os.Stdout
//   - [OutputConfig.Colors]: true
//   - [OutputConfig.ForceTTY]: false
//   - [OutputConfig.Layout]: "time", "badge", "label", "message", "detail", "meta"
//   - [OutputConfig.Time]: "dim", TimeMillis
//   - [OutputConfig.Meta]: "dim", MetaFull
//   - [OutputConfig.Scope]: "bold"
//   - [OutputConfig.LevelColors]: "dim", "bright cyan", "bright yellow", "bright red"
//   - [OutputConfig.Scheduler]: AfterTick
//   - [OutputConfig.Format]: nil
//
// 3. A method returning a [Format] or a [Renderer] closes the chained invocation:
//   - [OutputConfig.TextFormat] returns the configured text [Format]
//   - [OutputConfig.Renderer] returns a [Renderer] writing to the configured writer
//
// Colors are used only when enabled and the writer is a terminal, or ForceTTY is set.
type OutputConfig struct {
	w        io.Writer
	schedule Scheduler
	format   Format

	useColors bool
	forceTTY  bool

	fmtr textFormatter
}

// NewOutput opens an OutputConfig with default values.
func NewOutput() *OutputConfig {
	cfg := &OutputConfig{
		w:         os.Stdout,
		schedule:  AfterTick,
		useColors: true,
		fmtr: textFormatter{
			layout:   defaultLayout,
			time:     encTimeMillis,
			meta:     encMetaFull,
			timePen:  newPen("dim"),
			metaPen:  newPen("dim"),
			scopePen: newPen("bold"),
		},
	}
	cfg.LevelColors("dim", "bright cyan", "bright yellow", "bright red")
	return cfg
}

// Writer configures the destination of rendered lines.
func (cfg *OutputConfig) Writer(w io.Writer) *OutputConfig {
	cfg.w = w
	return cfg
}

// Colors toggles ANSI color encoding.
func (cfg *OutputConfig) Colors(toggle bool) *OutputConfig {
	cfg.useColors = toggle
	return cfg
}

// ForceTTY treats the writer as a terminal.
func (cfg *OutputConfig) ForceTTY() *OutputConfig {
	cfg.forceTTY = true
	return cfg
}

// Time sets a color and an encoding for entry timestamps.
// If enc is nil, the configuration uses [TimeMillis].
func (cfg *OutputConfig) Time(color string, enc func(time.Time) string) *OutputConfig {
	if enc == nil {
		enc = encTimeMillis
	}
	cfg.fmtr.timePen = newPen(color)
	cfg.fmtr.time = enc
	return cfg
}

// Meta sets a color and an encoding for call-site annotations.
// If enc is nil, the configuration uses [MetaFull].
func (cfg *OutputConfig) Meta(color string, enc func(*Meta) string) *OutputConfig {
	if enc == nil {
		enc = encMetaFull
	}
	cfg.fmtr.metaPen = newPen(color)
	cfg.fmtr.meta = enc
	return cfg
}

// Layout configures the fields of a rendered line, in order.
//
// Layout recognizes the following strings (and ignores others):
//   - "time"
//   - "badge"
//   - "label"
//   - "message"
//   - "detail"
//   - "meta"
func (cfg *OutputConfig) Layout(fields ...string) *OutputConfig {
	layout := make([]textField, 0, len(fields))

	var f textField
	for _, s := range fields {
		switch s {
		case "time":
			f = fieldTime
		case "badge":
			f = fieldBadge
		case "label":
			f = fieldLabel
		case "message":
			f = fieldMessage
		case "detail":
			f = fieldDetail
		case "meta":
			f = fieldMeta
		default:
			continue
		}
		layout = append(layout, f)
	}

	cfg.fmtr.layout = layout
	return cfg
}

// Scope sets a color for scope messages.
func (cfg *OutputConfig) Scope(color string) *OutputConfig {
	cfg.fmtr.scopePen = newPen(color)
	return cfg
}

// LevelColors configures four colors used for labels:
// debug (verbose, debug and log), info (info and success), warn, and error.
func (cfg *OutputConfig) LevelColors(debug string, info string, warn string, error string) *OutputConfig {
	d, i, w, e := newPen(debug), newPen(info), newPen(warn), newPen(error)

	cfg.fmtr.levelPens[LevelError] = e
	cfg.fmtr.levelPens[LevelWarn] = w
	cfg.fmtr.levelPens[LevelInfo] = i
	cfg.fmtr.levelPens[LevelVerbose] = d
	cfg.fmtr.levelPens[LevelDebug] = d
	cfg.fmtr.levelPens[LevelLog] = d
	cfg.fmtr.levelPens[LevelSuccess] = i
	return cfg
}

// Scheduler configures how a renderer defers reflows of late entries.
func (cfg *OutputConfig) Scheduler(s Scheduler) *OutputConfig {
	cfg.schedule = s
	return cfg
}

// Format overrides the text format entirely.
func (cfg *OutputConfig) Format(f Format) *OutputConfig {
	cfg.format = f
	return cfg
}

// TextFormat returns the configured text format, colored if colors are enabled.
func (cfg *OutputConfig) TextFormat() Format {
	fmtr := cfg.fmtr

	if !cfg.useColors {
		fmtr.timePen = ""
		fmtr.metaPen = ""
		fmtr.scopePen = ""
		fmtr.levelPens = [len(levelNames)]pen{}
	}

	return fmtr.format
}

// Renderer returns a [Renderer] writing to the configured writer.
func (cfg *OutputConfig) Renderer() *Renderer {
	format := cfg.format
	if format == nil {
		c := *cfg
		c.useColors = cfg.useColors && (cfg.forceTTY || writerIsTerminal(cfg.w))
		format = c.TextFormat()
	}

	return NewRenderer(NewTextConsole(cfg.w), format, cfg.schedule)
}
