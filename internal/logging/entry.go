package logging

import (
	"time"
)

// Severity levels, ordered
const (
	LevelDebug    = "debug"
	LevelInfo     = "info"
	LevelWarn     = "warn"
	LevelError    = "error"
	LevelCritical = "critical"
)

// LevelValue returns numeric value for level comparison
func LevelValue(level string) int {
	switch level {
	case LevelDebug:
		return 0
	case LevelInfo:
		return 1
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	case LevelCritical:
		return 4
	default:
		return 1
	}
}

// Fields is a schema-less payload attached to entries and metrics
type Fields map[string]interface{}

// ContextSnapshot captures the host environment at log time
type ContextSnapshot struct {
	URL          string `json:"url,omitempty"`
	UserAgent    string `json:"user_agent,omitempty"`
	CampaignID   string `json:"campaign_id,omitempty"`
	AutomationID string `json:"automation_id,omitempty"`
	BuildStep    string `json:"build_step,omitempty"`
}

// LogEntry represents one observed event
type LogEntry struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Level      string          `json:"level"`
	Component  string          `json:"component"`
	Operation  string          `json:"operation"`
	Message    string          `json:"message"`
	Data       Fields          `json:"data,omitempty"`
	SessionID  string          `json:"session_id"`
	StackTrace string          `json:"stack_trace,omitempty"`
	UserID     string          `json:"user_id,omitempty"`
	Context    ContextSnapshot `json:"context"`
}

// OperationMetric is a timing/outcome record for one operation invocation
type OperationMetric struct {
	ID         string        `json:"id"`
	Component  string        `json:"component"`
	Operation  string        `json:"operation"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Success    bool          `json:"success"`
	ErrorCount int           `json:"error_count"`
	RetryCount int           `json:"retry_count"`
	Metadata   Fields        `json:"metadata,omitempty"`
}

// InFlight reports whether the metric has not been ended yet
func (m *OperationMetric) InFlight() bool {
	return m.EndTime.IsZero()
}

// clone copies the metric, including its metadata map
func (m *OperationMetric) clone() *OperationMetric {
	c := *m
	if m.Metadata != nil {
		c.Metadata = make(Fields, len(m.Metadata))
		for k, v := range m.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// LogFilter selects a subset of buffered entries. Level matches exactly;
// MinLevel admits that severity and above.
type LogFilter struct {
	Level     string
	MinLevel  string
	Component string
	Operation string
	Since     time.Time
}

// Matches reports whether an entry passes the filter
func (f *LogFilter) Matches(e *LogEntry) bool {
	if f == nil {
		return true
	}
	if f.Level != "" && e.Level != f.Level {
		return false
	}
	if f.MinLevel != "" && LevelValue(e.Level) < LevelValue(f.MinLevel) {
		return false
	}
	if f.Component != "" && e.Component != f.Component {
		return false
	}
	if f.Operation != "" && e.Operation != f.Operation {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	return true
}

// SystemHealth summarizes the trailing-hour state of the pipeline
type SystemHealth struct {
	TotalLogs        int           `json:"total_logs"`
	ErrorCount       int           `json:"error_count"`
	WarnCount        int           `json:"warn_count"`
	CriticalCount    int           `json:"critical_count"`
	RecentErrors     []*LogEntry   `json:"recent_errors"`
	AvgOperationTime time.Duration `json:"avg_operation_time"`
	FailureRate      float64       `json:"failure_rate"`
}
