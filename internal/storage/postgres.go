package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/FairForge/sentinel/internal/alerting"
	"github.com/FairForge/sentinel/internal/logging"
)

// Postgres persists log batches and alert records over database/sql
type Postgres struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgres creates a postgres store from a DSN
func NewPostgres(dsn string, logger *zap.Logger) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open postgres: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{db: db, logger: logger}, nil
}

// NewPostgresFromDB wraps an existing connection pool
func NewPostgresFromDB(db *sql.DB, logger *zap.Logger) *Postgres {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{db: db, logger: logger}
}

// EnsureSchema creates the backing tables if they do not exist
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS automation_logs (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			level TEXT NOT NULL,
			component TEXT NOT NULL,
			operation TEXT NOT NULL,
			message TEXT NOT NULL,
			data JSONB,
			stack_trace TEXT,
			context JSONB,
			user_id TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS automation_alerts (
			id TEXT PRIMARY KEY,
			rule_id TEXT NOT NULL,
			rule_name TEXT NOT NULL,
			triggered_at TEXT NOT NULL,
			condition JSONB NOT NULL,
			actual_value DOUBLE PRECISION NOT NULL,
			threshold DOUBLE PRECISION NOT NULL,
			message TEXT NOT NULL,
			priority TEXT NOT NULL,
			resolved BOOLEAN NOT NULL DEFAULT FALSE
		)`,
	}

	for _, q := range queries {
		if _, err := p.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("storage: ensure schema: %w", err)
		}
	}
	return nil
}

// InsertLogBatch copies a batch of entries in one transaction
func (p *Postgres) InsertLogBatch(ctx context.Context, entries []*logging.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin log batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("automation_logs",
		"id", "session_id", "timestamp", "level", "component", "operation",
		"message", "data", "stack_trace", "context", "user_id"))
	if err != nil {
		return fmt.Errorf("storage: prepare log batch: %w", err)
	}

	for _, e := range entries {
		data, err := json.Marshal(e.Data)
		if err != nil {
			data = []byte("null")
		}
		contextJSON, err := json.Marshal(e.Context)
		if err != nil {
			contextJSON = []byte("null")
		}

		if _, err := stmt.ExecContext(ctx,
			e.ID, e.SessionID, e.Timestamp.Format(time.RFC3339), e.Level,
			e.Component, e.Operation, e.Message, string(data),
			e.StackTrace, string(contextJSON), e.UserID); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("storage: insert log entry: %w", err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("storage: flush log batch: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("storage: close log batch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit log batch: %w", err)
	}

	p.logger.Debug("log batch persisted", zap.Int("entries", len(entries)))
	return nil
}

// InsertAlert persists one trigger record
func (p *Postgres) InsertAlert(ctx context.Context, trigger *alerting.Trigger, priority string) error {
	condition, err := json.Marshal(trigger.Condition)
	if err != nil {
		return fmt.Errorf("storage: marshal condition: %w", err)
	}

	query := `
		INSERT INTO automation_alerts
			(id, rule_id, rule_name, triggered_at, condition, actual_value, threshold, message, priority, resolved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = p.db.ExecContext(ctx, query,
		trigger.ID, trigger.RuleID, trigger.RuleName,
		trigger.TriggeredAt.Format(time.RFC3339), string(condition),
		trigger.ActualValue, trigger.Threshold, trigger.Message,
		priority, trigger.Resolved)
	if err != nil {
		return fmt.Errorf("storage: insert alert: %w", err)
	}
	return nil
}

// Close releases the connection pool
func (p *Postgres) Close() error {
	return p.db.Close()
}
