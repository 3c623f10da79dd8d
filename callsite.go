package logtree

import (
	"path/filepath"
	"runtime"
	"strings"
)

// CallSite returns call-site information for the caller skip frames above it,
// or nil when nothing can be determined.
type CallSite func(skip int) *Meta

// directory holding this package's sources, for frame skipping
var pkgDir string

func init() {
	_, file, _, ok := runtime.Caller(0)
	if ok {
		pkgDir = filepath.Dir(file)
	}
}

func internalFrame(file string) bool {
	if pkgDir == "" || strings.HasSuffix(file, "_test.go") {
		return false
	}
	return filepath.Dir(file) == pkgDir
}

// RuntimeCallSite is the default [CallSite].
// It walks the goroutine's stack and reports the first frame outside this package.
// The runtime does not report columns, so Column is always zero.
func RuntimeCallSite(skip int) *Meta {
	var pcs [32]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	if n == 0 {
		return &Meta{Function: "<anonymous>"}
	}

	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if f.File != "" && !internalFrame(f.File) {
			fn := f.Function
			if fn == "" {
				fn = "<anonymous>"
			} else if i := strings.LastIndexByte(fn, '/'); i >= 0 {
				fn = fn[i+1:]
			}
			return &Meta{
				File:     f.File,
				Line:     f.Line,
				Function: fn,
			}
		}
		if !more {
			break
		}
	}

	return &Meta{Function: "<anonymous>"}
}
