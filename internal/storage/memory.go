package storage

import (
	"context"
	"sync"

	"github.com/FairForge/sentinel/internal/alerting"
	"github.com/FairForge/sentinel/internal/logging"
)

// Memory is an in-process store for tests and storage-less deployments
type Memory struct {
	logs   []*logging.LogEntry
	alerts []*alerting.Trigger
	mu     sync.Mutex
}

// NewMemory creates a memory store
func NewMemory() *Memory {
	return &Memory{}
}

// InsertLogBatch appends a batch of entries
func (m *Memory) InsertLogBatch(ctx context.Context, entries []*logging.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, entries...)
	return nil
}

// InsertAlert appends one trigger record
func (m *Memory) InsertAlert(ctx context.Context, trigger *alerting.Trigger, priority string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, trigger)
	return nil
}

// Logs returns all persisted entries
func (m *Memory) Logs() []*logging.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*logging.LogEntry, len(m.logs))
	copy(result, m.logs)
	return result
}

// Alerts returns all persisted triggers
func (m *Memory) Alerts() []*alerting.Trigger {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*alerting.Trigger, len(m.alerts))
	copy(result, m.alerts)
	return result
}
