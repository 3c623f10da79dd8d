package logtree

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const (
	firstIndent = "  | "
	nextIndent  = "   "
)

func indent(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat(nextIndent, depth-1) + firstIndent
}

// joinArgs renders console arguments space-separated.
func joinArgs(args []any) string {
	return strings.TrimSuffix(fmt.Sprintln(args...), "\n")
}

// TEXT CONSOLE

// TextConsole is a [Console] writing indented lines to an io.Writer.
// It is safe for concurrent use.
type TextConsole struct {
	mu    sync.Mutex
	w     io.Writer
	depth int
}

// NewTextConsole returns a TextConsole writing to w.
func NewTextConsole(w io.Writer) *TextConsole {
	return &TextConsole{w: w}
}

func (c *TextConsole) Log(args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.w, indent(c.depth)+joinArgs(args)+"\n")
}

func (c *TextConsole) Group(args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.w, indent(c.depth)+joinArgs(args)+"\n")
	c.depth++
}

func (c *TextConsole) GroupEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.depth > 0 {
		c.depth--
	}
}

// MEMORY CONSOLE

// MemoryConsole is a [Console] collecting indented lines in memory.
type MemoryConsole struct {
	mu    sync.Mutex
	lines []string
	depth int
}

func (c *MemoryConsole) Log(args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, indent(c.depth)+joinArgs(args))
}

func (c *MemoryConsole) Group(args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, indent(c.depth)+joinArgs(args))
	c.depth++
}

func (c *MemoryConsole) GroupEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.depth > 0 {
		c.depth--
	}
}

// Lines returns a copy of the captured lines.
func (c *MemoryConsole) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

// Depth returns the number of open groups.
func (c *MemoryConsole) Depth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.depth
}

// Reset drops the captured lines. Open groups stay open.
func (c *MemoryConsole) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// TERMINAL

func writerIsTerminal(w io.Writer) bool {
	file, isFile := w.(*os.File)
	if !isFile {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
