package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/FairForge/sentinel/internal/logging"
)

// ingestRequest is one externally submitted log event
type ingestRequest struct {
	Level     string         `json:"level"`
	Component string         `json:"component"`
	Operation string         `json:"operation"`
	Message   string         `json:"message"`
	Data      logging.Fields `json:"data,omitempty"`
}

func (s *Server) handleIngestLog(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Component == "" || req.Message == "" {
		s.respondError(w, http.StatusBadRequest, "component and message are required")
		return
	}
	if req.Level == "" {
		req.Level = logging.LevelInfo
	}

	s.pipeline.Log(req.Level, req.Component, req.Operation, req.Message, req.Data)
	s.respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// handleForwardConsole accepts forwarded host console lines. Lines that fail
// the bridge's severity/keyword gate are dropped, not errors.
func (s *Server) handleForwardConsole(w http.ResponseWriter, r *http.Request) {
	if s.bridge == nil {
		s.respondError(w, http.StatusServiceUnavailable, "console bridge is disabled")
		return
	}

	var req struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	admitted := s.bridge.ForwardLine(req.Level, req.Message)
	s.respondJSON(w, http.StatusAccepted, map[string]bool{"admitted": admitted})
}

func (s *Server) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	filter := &logging.LogFilter{
		Level:     r.URL.Query().Get("level"),
		MinLevel:  r.URL.Query().Get("min_level"),
		Component: r.URL.Query().Get("component"),
		Operation: r.URL.Query().Get("operation"),
	}
	if since := r.URL.Query().Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		filter.Since = t
	}

	logs := s.pipeline.GetLogs(filter)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(logs),
		"logs":  logs,
	})
}

func (s *Server) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	s.pipeline.ClearLogs()
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleExportLogs(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = logging.FormatJSON
	}

	out, err := s.pipeline.ExportLogs(format)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch format {
	case logging.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=logs.csv")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write([]byte(out))
}

func (s *Server) handleGetOperationMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.pipeline.GetMetrics()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(m),
		"metrics": m,
	})
}
