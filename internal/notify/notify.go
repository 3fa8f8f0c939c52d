package notify

import (
	"time"

	"go.uber.org/zap"
)

// Priorities
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Notification is a transient operator-facing message.
// A zero Duration means the notification persists until acknowledged.
type Notification struct {
	Message     string
	Description string
	Priority    string
	Duration    time.Duration
	// OnAcknowledge is set for sticky notifications that require an
	// explicit operator acknowledgment.
	OnAcknowledge func()
}

// Sticky reports whether the notification requires acknowledgment
func (n *Notification) Sticky() bool {
	return n.Duration == 0
}

// Sink accepts operator-facing notifications. The hosting application
// supplies the real UI surface; ConsoleSink is the default.
type Sink interface {
	Notify(n *Notification)
}

// ConsoleSink writes notifications to the process log, styled by priority
type ConsoleSink struct {
	logger *zap.Logger
}

// NewConsoleSink creates a console sink
func NewConsoleSink(logger *zap.Logger) *ConsoleSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleSink{logger: logger}
}

// Notify writes the notification at a level matching its priority
func (s *ConsoleSink) Notify(n *Notification) {
	fields := []zap.Field{
		zap.String("priority", n.Priority),
		zap.String("description", n.Description),
		zap.Bool("sticky", n.Sticky()),
	}

	switch n.Priority {
	case PriorityCritical:
		s.logger.Error(n.Message, fields...)
	case PriorityHigh:
		s.logger.Warn(n.Message, fields...)
	default:
		s.logger.Info(n.Message, fields...)
	}
}
