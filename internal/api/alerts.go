package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/FairForge/sentinel/internal/alerting"
)

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules := s.alerts.ListRules()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(rules),
		"rules": rules,
	})
}

func (s *Server) handleAddRule(w http.ResponseWriter, r *http.Request) {
	var rule alerting.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.alerts.AddRule(&rule)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	rule := s.alerts.GetRule(chi.URLParam(r, "id"))
	if rule == nil {
		s.respondError(w, http.StatusNotFound, "rule not found")
		return
	}
	s.respondJSON(w, http.StatusOK, rule)
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	var update alerting.RuleUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !s.alerts.UpdateRule(chi.URLParam(r, "id"), &update) {
		s.respondError(w, http.StatusNotFound, "rule not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleRemoveRule(w http.ResponseWriter, r *http.Request) {
	if !s.alerts.RemoveRule(chi.URLParam(r, "id")) {
		s.respondError(w, http.StatusNotFound, "rule not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleListTriggers(w http.ResponseWriter, r *http.Request) {
	filter := &alerting.TriggerFilter{
		RuleID: r.URL.Query().Get("rule_id"),
	}
	if v := r.URL.Query().Get("resolved"); v != "" {
		resolved, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "resolved must be a boolean")
			return
		}
		filter.Resolved = &resolved
	}
	if since := r.URL.Query().Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		filter.Since = t
	}

	triggers := s.alerts.Triggers(filter)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(triggers),
		"triggers": triggers,
	})
}

func (s *Server) handleAckTrigger(w http.ResponseWriter, r *http.Request) {
	s.alerts.AcknowledgeAlert(chi.URLParam(r, "id"))
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}

func (s *Server) handleAlertStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.alerts.GetStatistics())
}
