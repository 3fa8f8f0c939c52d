package alerting

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/FairForge/sentinel/internal/logging"
)

// AddRule installs a new rule and returns its id
func (e *Engine) AddRule(rule *Rule) (string, error) {
	if err := rule.Validate(); err != nil {
		return "", err
	}

	e.mu.Lock()
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	} else if _, exists := e.rules[rule.ID]; exists {
		e.mu.Unlock()
		return "", fmt.Errorf("alerting: rule %s already exists", rule.ID)
	}
	rule.CreatedAt = e.now()
	rule.TriggerCount = 0
	e.rules[rule.ID] = rule
	e.mu.Unlock()

	if e.logger != nil {
		e.logger.Info("monitoring_alerts", "rule_added", "new alert rule added",
			logging.Fields{"rule_id": rule.ID, "rule_name": rule.Name})
	}
	return rule.ID, nil
}

// RuleUpdate carries partial rule changes
type RuleUpdate struct {
	Name           *string        `json:"name,omitempty"`
	Description    *string        `json:"description,omitempty"`
	Enabled        *bool          `json:"enabled,omitempty"`
	Condition      *Condition     `json:"condition,omitempty"`
	Actions        []Action       `json:"actions,omitempty"`
	CooldownPeriod *time.Duration `json:"cooldown_period,omitempty"`
}

// UpdateRule applies a partial update. Returns false if the rule is unknown.
func (e *Engine) UpdateRule(id string, update *RuleUpdate) bool {
	e.mu.Lock()
	rule, ok := e.rules[id]
	if ok {
		if update.Name != nil {
			rule.Name = *update.Name
		}
		if update.Description != nil {
			rule.Description = *update.Description
		}
		if update.Enabled != nil {
			rule.Enabled = *update.Enabled
		}
		if update.Condition != nil {
			rule.Condition = *update.Condition
		}
		if update.Actions != nil {
			rule.Actions = update.Actions
		}
		if update.CooldownPeriod != nil {
			rule.CooldownPeriod = *update.CooldownPeriod
		}
	}
	e.mu.Unlock()

	if ok && e.logger != nil {
		e.logger.Info("monitoring_alerts", "rule_updated", "alert rule updated",
			logging.Fields{"rule_id": id})
	}
	return ok
}

// RemoveRule deletes a rule. Already-recorded triggers are unaffected.
func (e *Engine) RemoveRule(id string) bool {
	e.mu.Lock()
	_, ok := e.rules[id]
	delete(e.rules, id)
	e.mu.Unlock()

	if ok && e.logger != nil {
		e.logger.Info("monitoring_alerts", "rule_removed", "alert rule removed",
			logging.Fields{"rule_id": id})
	}
	return ok
}

// GetRule returns a copy of the rule by id, or nil. Copies keep callers
// (JSON encoders included) off the struct the engine mutates under lock.
func (e *Engine) GetRule(id string) *Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rule, ok := e.rules[id]
	if !ok {
		return nil
	}
	clone := *rule
	return &clone
}

// ListRules returns copies of all rules, stable by creation time then id
func (e *Engine) ListRules() []*Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rules := make([]*Rule, 0, len(e.rules))
	for _, r := range e.rules {
		clone := *r
		rules = append(rules, &clone)
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].ID < rules[j].ID
		}
		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})
	return rules
}

// RuleCount is a name/count pair for statistics
type RuleCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Statistics aggregates rule and trigger counts
type Statistics struct {
	TotalRules         int            `json:"total_rules"`
	EnabledRules       int            `json:"enabled_rules"`
	TotalTriggers      int            `json:"total_triggers"`
	UnresolvedTriggers int            `json:"unresolved_triggers"`
	TriggersByPriority map[string]int `json:"triggers_by_priority"`
	MostTriggeredRules []RuleCount    `json:"most_triggered_rules"`
}

// GetStatistics computes aggregate alert statistics
func (e *Engine) GetStatistics() *Statistics {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := &Statistics{
		TotalRules:         len(e.rules),
		TotalTriggers:      len(e.triggers),
		TriggersByPriority: make(map[string]int),
	}

	var triggered []RuleCount
	for _, r := range e.rules {
		if r.Enabled {
			stats.EnabledRules++
		}
		if r.TriggerCount > 0 {
			triggered = append(triggered, RuleCount{Name: r.Name, Count: r.TriggerCount})
		}
	}

	for _, t := range e.triggers {
		if !t.Resolved {
			stats.UnresolvedTriggers++
		}
		stats.TriggersByPriority[t.Priority()]++
	}

	sort.Slice(triggered, func(i, j int) bool {
		if triggered[i].Count == triggered[j].Count {
			return triggered[i].Name < triggered[j].Name
		}
		return triggered[i].Count > triggered[j].Count
	})
	if len(triggered) > 5 {
		triggered = triggered[:5]
	}
	stats.MostTriggeredRules = triggered

	return stats
}
