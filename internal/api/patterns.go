package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/FairForge/sentinel/internal/category"
)

func (s *Server) handleGetPatterns(w http.ResponseWriter, r *http.Request) {
	filter := &category.PatternFilter{
		Category: r.URL.Query().Get("category"),
		Priority: r.URL.Query().Get("priority"),
	}
	if v := r.URL.Query().Get("resolved"); v != "" {
		resolved, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "resolved must be a boolean")
			return
		}
		filter.Resolved = &resolved
	}

	patterns := s.patterns.Patterns(filter)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(patterns),
		"patterns": patterns,
	})
}

func (s *Server) handleResolvePattern(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Notes string `json:"notes"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	s.patterns.ResolvePattern(id, body.Notes)
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}

func (s *Server) handleGetInsights(w http.ResponseWriter, r *http.Request) {
	insights := s.patterns.GenerateInsights()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(insights),
		"insights": insights,
	})
}

func (s *Server) handleGetHealthScore(w http.ResponseWriter, r *http.Request) {
	score := s.patterns.AutomationHealthScore()
	if s.metrics != nil {
		s.metrics.SetHealthScore(score.Score)
	}
	s.respondJSON(w, http.StatusOK, score)
}
