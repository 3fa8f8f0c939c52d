package logging

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"
)

// Export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ExportLogs serializes the full in-memory log set
func (l *Logger) ExportLogs(format string) (string, error) {
	l.mu.RLock()
	entries := make([]*LogEntry, len(l.entries))
	copy(entries, l.entries)
	l.mu.RUnlock()

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return "", fmt.Errorf("logging: export json: %w", err)
		}
		return string(data), nil
	case FormatCSV:
		return exportCSV(entries)
	default:
		return "", fmt.Errorf("logging: unknown export format: %s", format)
	}
}

func exportCSV(entries []*LogEntry) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "timestamp", "level", "component", "operation", "message", "data", "session_id", "user_id"}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("logging: export csv: %w", err)
	}

	for _, e := range entries {
		data := ""
		if e.Data != nil {
			raw, err := json.Marshal(e.Data)
			if err == nil {
				data = string(raw)
			}
		}
		record := []string{
			e.ID,
			e.Timestamp.Format(time.RFC3339),
			e.Level,
			e.Component,
			e.Operation,
			e.Message,
			data,
			e.SessionID,
			e.UserID,
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("logging: export csv: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("logging: export csv: %w", err)
	}
	return buf.String(), nil
}
