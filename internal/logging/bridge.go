package logging

import (
	"strings"
)

// bridgeKeywords gates which forwarded host lines enter the pipeline, to keep
// unrelated console noise out. Case-insensitive substring match.
var bridgeKeywords = []string{
	"campaign",
	"automation",
	"database",
	"supabase",
	"api",
	"blog",
	"content",
	"discovery",
	"backlink",
	"failed",
	"timeout",
}

// Bridge forwards the host process's own diagnostic output into the pipeline.
// It replaces console monkey-patching: the host wires it in (or omits it).
type Bridge struct {
	logger  *Logger
	enabled bool
}

// NewBridge creates a bridge. A disabled bridge drops everything.
func NewBridge(logger *Logger, enabled bool) *Bridge {
	return &Bridge{logger: logger, enabled: enabled}
}

// ForwardLine re-emits a host error/warn line when it matches the keyword
// heuristic. Returns whether the line was admitted.
func (b *Bridge) ForwardLine(level, message string) bool {
	if !b.enabled {
		return false
	}
	if level != LevelError && level != LevelWarn {
		return false
	}
	if !matchesKeywords(message) {
		return false
	}

	b.logger.Log(level, "bridge", "console_"+level, message, nil)
	return true
}

// CaptureError records an uncaught host error, tagged component=global.
// Not subject to the keyword gate: uncaught errors are always signal.
func (b *Bridge) CaptureError(err error, stack string) {
	if err == nil {
		return
	}
	data := Fields{}
	if stack != "" {
		data["stack_trace"] = stack
	}
	b.logger.Error("global", "uncaught_error", err.Error(), data)
}

// CapturePanic records a recovered panic value, tagged component=global
func (b *Bridge) CapturePanic(value interface{}, stack string) {
	data := Fields{"panic": value}
	if stack != "" {
		data["stack_trace"] = stack
	}
	b.logger.Error("global", "unhandled_panic", "unhandled panic", data)
}

func matchesKeywords(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range bridgeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
