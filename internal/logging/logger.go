package logging

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the durable sink for log batches
type Store interface {
	InsertLogBatch(ctx context.Context, entries []*LogEntry) error
}

// LoggerConfig configures the logger
type LoggerConfig struct {
	// BufferSize caps the in-memory ring buffer; oldest entries are evicted first.
	BufferSize int `json:"buffer_size"`
	// FlushBatch is how many of the most recent entries each flush persists.
	FlushBatch int `json:"flush_batch"`
	// DevMode gates persistence; production hosts may disable it to avoid overhead.
	DevMode bool `json:"dev_mode"`
	// URL and UserAgent describe the hosting process and are stamped on every entry.
	URL       string `json:"url"`
	UserAgent string `json:"user_agent"`
	UserID    string `json:"user_id"`
}

// ApplyDefaults fills in default values
func (c *LoggerConfig) ApplyDefaults() {
	if c.BufferSize == 0 {
		c.BufferSize = 1000
	}
	if c.FlushBatch == 0 {
		c.FlushBatch = 100
	}
}

type subscriber struct {
	id int
	fn func(*LogEntry)
}

// Logger is the single ingestion point for structured diagnostics.
// It must be invisible to failure: no public method panics or returns an error
// to the caller; internal faults go to the ops logger directly, never back
// through the pipeline.
type Logger struct {
	config    *LoggerConfig
	store     Store
	ops       *zap.Logger
	sessionID string

	entries     []*LogEntry
	metrics     []*OperationMetric
	metricsByID map[string]*OperationMetric
	subscribers []subscriber
	nextSubID   int

	now func() time.Time
	mu  sync.RWMutex
}

// NewLogger creates a logger
func NewLogger(config *LoggerConfig, store Store, ops *zap.Logger) *Logger {
	if config == nil {
		config = &LoggerConfig{}
	}
	config.ApplyDefaults()
	if ops == nil {
		ops = zap.NewNop()
	}

	return &Logger{
		config:      config,
		store:       store,
		ops:         ops,
		sessionID:   uuid.New().String(),
		entries:     make([]*LogEntry, 0, config.BufferSize),
		metricsByID: make(map[string]*OperationMetric),
		now:         time.Now,
	}
}

// SessionID returns the process-lifetime session id
func (l *Logger) SessionID() string {
	return l.sessionID
}

// SetClock overrides the time source. Tests use this to pin timestamps.
func (l *Logger) SetClock(clock func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = clock
}

// Log appends an entry and notifies subscribers. It never fails.
func (l *Logger) Log(level, component, operation, message string, data Fields) {
	defer func() {
		if r := recover(); r != nil {
			l.ops.Error("log ingestion fault", zap.Any("panic", r))
		}
	}()

	entry := &LogEntry{
		ID:        uuid.New().String(),
		Timestamp: l.now(),
		Level:     level,
		Component: component,
		Operation: operation,
		Message:   message,
		Data:      data,
		SessionID: l.sessionID,
		UserID:    l.config.UserID,
		Context:   l.snapshotContext(data),
	}
	if stack, ok := data["stack_trace"].(string); ok {
		entry.StackTrace = stack
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.config.BufferSize {
		l.entries = l.entries[len(l.entries)-l.config.BufferSize:]
	}
	subs := make([]subscriber, len(l.subscribers))
	copy(subs, l.subscribers)
	l.mu.Unlock()

	for _, s := range subs {
		l.notify(s, entry)
	}
}

// notify runs one subscriber, isolating panics so the caller is never affected
func (l *Logger) notify(s subscriber, entry *LogEntry) {
	defer func() {
		if r := recover(); r != nil {
			l.ops.Error("subscriber fault",
				zap.Int("subscriber", s.id), zap.Any("panic", r))
		}
	}()
	s.fn(entry)
}

func (l *Logger) snapshotContext(data Fields) ContextSnapshot {
	snap := ContextSnapshot{
		URL:       l.config.URL,
		UserAgent: l.config.UserAgent,
	}
	if v, ok := data["campaign_id"].(string); ok {
		snap.CampaignID = v
	}
	if v, ok := data["automation_id"].(string); ok {
		snap.AutomationID = v
	}
	if v, ok := data["build_step"].(string); ok {
		snap.BuildStep = v
	}
	return snap
}

// Debug logs at debug level
func (l *Logger) Debug(component, operation, message string, data Fields) {
	l.Log(LevelDebug, component, operation, message, data)
}

// Info logs at info level
func (l *Logger) Info(component, operation, message string, data Fields) {
	l.Log(LevelInfo, component, operation, message, data)
}

// Warn logs at warn level
func (l *Logger) Warn(component, operation, message string, data Fields) {
	l.Log(LevelWarn, component, operation, message, data)
}

// Error logs at error level
func (l *Logger) Error(component, operation, message string, data Fields) {
	l.Log(LevelError, component, operation, message, data)
}

// Critical logs at critical level
func (l *Logger) Critical(component, operation, message string, data Fields) {
	l.Log(LevelCritical, component, operation, message, data)
}

// StartOperation creates an in-flight metric and returns its id.
// The caller is responsible for eventually calling EndOperation; an
// unterminated metric is a leak but never a crash.
func (l *Logger) StartOperation(component, operation string, metadata Fields) string {
	id := uuid.New().String()

	meta := Fields{"metric_id": id}
	for k, v := range metadata {
		meta[k] = v
	}

	metric := &OperationMetric{
		ID:        id,
		Component: component,
		Operation: operation,
		StartTime: l.now(),
		Metadata:  meta,
	}

	l.mu.Lock()
	l.metrics = append(l.metrics, metric)
	l.metricsByID[id] = metric
	l.mu.Unlock()

	return id
}

// EndOperation completes a metric. Unknown ids log a warning and no-op.
func (l *Logger) EndOperation(metricID string, success bool, metadata Fields) {
	l.mu.Lock()
	metric, ok := l.metricsByID[metricID]
	var component, operation string
	var duration time.Duration
	if ok {
		metric.EndTime = l.now()
		metric.Duration = metric.EndTime.Sub(metric.StartTime)
		metric.Success = success
		for k, v := range metadata {
			metric.Metadata[k] = v
		}
		component, operation, duration = metric.Component, metric.Operation, metric.Duration
	}
	l.mu.Unlock()

	if !ok {
		l.Warn("logger", "end_operation", "unknown metric id", Fields{"metric_id": metricID})
		return
	}

	level := LevelInfo
	if !success {
		level = LevelWarn
	}
	l.Log(level, component, operation,
		fmt.Sprintf("operation completed in %s", duration),
		Fields{
			"metric_id": metricID,
			"success":   success,
			"duration":  duration.String(),
		})
}

// IncrementErrorCount bumps a metric's error counter
func (l *Logger) IncrementErrorCount(metricID string) {
	l.incrementCounter(metricID, "error_count", func(m *OperationMetric) {
		m.ErrorCount++
	})
}

// IncrementRetryCount bumps a metric's retry counter
func (l *Logger) IncrementRetryCount(metricID string) {
	l.incrementCounter(metricID, "retry_count", func(m *OperationMetric) {
		m.RetryCount++
	})
}

func (l *Logger) incrementCounter(metricID, counter string, bump func(*OperationMetric)) {
	l.mu.Lock()
	metric, ok := l.metricsByID[metricID]
	var component, operation string
	if ok {
		bump(metric)
		component, operation = metric.Component, metric.Operation
	}
	l.mu.Unlock()

	if !ok {
		l.Warn("logger", "increment_"+counter, "unknown metric id", Fields{"metric_id": metricID})
		return
	}
	l.Debug(component, operation, counter+" incremented", Fields{"metric_id": metricID})
}

// Subscribe registers a callback invoked once per new entry, in registration
// order. The returned function removes the subscription.
func (l *Logger) Subscribe(fn func(*LogEntry)) func() {
	l.mu.Lock()
	id := l.nextSubID
	l.nextSubID++
	l.subscribers = append(l.subscribers, subscriber{id: id, fn: fn})
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, s := range l.subscribers {
			if s.id == id {
				l.subscribers = append(l.subscribers[:i], l.subscribers[i+1:]...)
				return
			}
		}
	}
}

// GetLogs returns matching entries, newest first
func (l *Logger) GetLogs(filter *LogFilter) []*LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*LogEntry, 0, len(l.entries))
	for i := len(l.entries) - 1; i >= 0; i-- {
		if filter.Matches(l.entries[i]) {
			result = append(result, l.entries[i])
		}
	}
	return result
}

// GetMetrics returns copies of all metrics, most recently started first.
// Copies keep callers off the structs the counter and end methods mutate
// under lock.
func (l *Logger) GetMetrics() []*OperationMetric {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*OperationMetric, len(l.metrics))
	for i, m := range l.metrics {
		result[len(l.metrics)-1-i] = m.clone()
	}
	return result
}

// GetSystemHealth summarizes the trailing one-hour window
func (l *Logger) GetSystemHealth() *SystemHealth {
	cutoff := l.now().Add(-time.Hour)

	l.mu.RLock()
	defer l.mu.RUnlock()

	health := &SystemHealth{}
	var recent []*LogEntry
	for _, e := range l.entries {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		health.TotalLogs++
		switch e.Level {
		case LevelError:
			health.ErrorCount++
		case LevelWarn:
			health.WarnCount++
		case LevelCritical:
			health.CriticalCount++
		}
		if e.Level == LevelError || e.Level == LevelCritical {
			recent = append(recent, e)
		}
	}

	sort.Slice(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if len(recent) > 10 {
		recent = recent[:10]
	}
	health.RecentErrors = recent

	var totalDur time.Duration
	var completed, failed int
	for _, m := range l.metrics {
		if m.StartTime.Before(cutoff) || m.InFlight() {
			continue
		}
		completed++
		totalDur += m.Duration
		if !m.Success {
			failed++
		}
	}
	if completed > 0 {
		health.AvgOperationTime = totalDur / time.Duration(completed)
		health.FailureRate = float64(failed) / float64(completed)
	}

	return health
}

// ClearLogs resets the in-memory buffer
func (l *Logger) ClearLogs() {
	l.mu.Lock()
	count := len(l.entries)
	l.entries = l.entries[:0]
	l.mu.Unlock()

	l.Info("logger", "clear_logs", "log buffer cleared", Fields{"cleared": count})
}

// ClearMetrics resets recorded metrics
func (l *Logger) ClearMetrics() {
	l.mu.Lock()
	count := len(l.metrics)
	l.metrics = l.metrics[:0]
	l.metricsByID = make(map[string]*OperationMetric)
	l.mu.Unlock()

	l.Info("logger", "clear_metrics", "operation metrics cleared", Fields{"cleared": count})
}

// Flush persists the most recent batch of entries to the store.
// Persistence is dev-mode only; failures are reported on the ops logger and
// never touch in-memory state.
func (l *Logger) Flush(ctx context.Context) {
	if !l.config.DevMode || l.store == nil {
		return
	}

	l.mu.RLock()
	n := len(l.entries)
	if n == 0 {
		l.mu.RUnlock()
		return
	}
	start := 0
	if n > l.config.FlushBatch {
		start = n - l.config.FlushBatch
	}
	batch := make([]*LogEntry, n-start)
	copy(batch, l.entries[start:])
	l.mu.RUnlock()

	if err := l.store.InsertLogBatch(ctx, batch); err != nil {
		// Direct ops write; routing this through Log would loop on the
		// next flush failure.
		l.ops.Warn("log persistence failed", zap.Int("batch", len(batch)), zap.Error(err))
	}
}

// Shutdown performs one final flush attempt
func (l *Logger) Shutdown(ctx context.Context) {
	l.Flush(ctx)
}
