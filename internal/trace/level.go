package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff   Level = iota // no tracing
	LevelError              // only failed tiers
	LevelRun                // run boundaries
	LevelFile               // per-file spans
	LevelTier               // every strategy attempt
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelRun:
		return "run"
	case LevelFile:
		return "file"
	case LevelTier:
		return "tier"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off", "":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "run":
		return LevelRun, nil
	case "file":
		return LevelFile, nil
	case "tier":
		return LevelTier, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|run|file|tier)", s)
	}
}

// ShouldEmit reports whether spans of scope are recorded at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelRun:
		return scope <= ScopeRun
	case LevelFile:
		return scope <= ScopeFile
	case LevelTier:
		return true
	default:
		return false
	}
}

// ShouldEmitEvent extends ShouldEmit with the error level, which lets failure
// points through regardless of scope.
func (l Level) ShouldEmitEvent(ev *Event) bool {
	if ev == nil || l == LevelOff {
		return false
	}
	if ev.Kind == KindFailure {
		return true
	}
	return l.ShouldEmit(ev.Scope)
}
