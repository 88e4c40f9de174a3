package env

import (
	"log/slog"
	"sync"
)

// Warning classifies the advisory conditions an environment can report
// while mutating its store. Warnings are emitted through the context
// logger and individual classes can be suppressed per context.
type Warning int

const (
	// WarnReservedVariable reports an attempt to assign one of the
	// reserved construction variable names. The assignment is dropped.
	WarnReservedVariable Warning = iota

	// WarnFutureReservedVariable reports an assignment to a name that
	// is scheduled to become reserved. The assignment still succeeds.
	WarnFutureReservedVariable

	// WarnMisleadingKeywords reports override variables named almost
	// like the reserved TARGETS and SOURCES.
	WarnMisleadingKeywords
)

// String returns a string representation of the warning class.
func (w Warning) String() string {
	switch w {
	case WarnReservedVariable:
		return "reserved-variable"
	case WarnFutureReservedVariable:
		return "future-reserved-variable"
	case WarnMisleadingKeywords:
		return "misleading-keywords"
	default:
		return "unknown"
	}
}

// warnState tracks which warning classes a context has suppressed.
// All classes are enabled until disabled explicitly.
type warnState struct {
	disabled map[Warning]bool
	mutex    sync.RWMutex
}

func (s *warnState) enable(w Warning, on bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.disabled == nil {
		s.disabled = make(map[Warning]bool)
	}

	s.disabled[w] = !on
}

func (s *warnState) enabled(w Warning) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return !s.disabled[w]
}

// EnableWarning restores emission of the given warning class.
func (c *Context) EnableWarning(w Warning) { c.warnings.enable(w, true) }

// DisableWarning suppresses emission of the given warning class.
func (c *Context) DisableWarning(w Warning) { c.warnings.enable(w, false) }

// WarningEnabled reports whether the given warning class is emitted.
func (c *Context) WarningEnabled(w Warning) bool { return c.warnings.enabled(w) }

// warn emits a warning through the context logger unless its class
// has been suppressed.
func (c *Context) warn(w Warning, msg string, attrs ...slog.Attr) {
	if !c.warnings.enabled(w) {
		return
	}

	c.log.Warn(msg, append([]slog.Attr{slog.String("class", w.String())}, attrs...)...)
}
