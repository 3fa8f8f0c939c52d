package alerting

import (
	"errors"
	"fmt"
	"time"
)

// Condition types
const (
	ConditionErrorCount       = "error_count"
	ConditionErrorRate        = "error_rate"
	ConditionPatternFrequency = "pattern_frequency"
	ConditionHealthScore      = "health_score"
	ConditionComponentFailure = "component_failure"
)

// Comparison operators
const (
	OperatorGT  = "gt"
	OperatorLT  = "lt"
	OperatorEQ  = "eq"
	OperatorGTE = "gte"
	OperatorLTE = "lte"
)

// Action types
const (
	ActionToast    = "toast"
	ActionConsole  = "console"
	ActionEmail    = "email"
	ActionWebhook  = "webhook"
	ActionStorage  = "storage"
	ActionFunction = "function"
)

// Priorities
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// ConditionFilters narrow which entries or patterns a condition counts
type ConditionFilters struct {
	Component string `json:"component,omitempty"`
	Level     string `json:"level,omitempty"`
	Category  string `json:"category,omitempty"`
}

// Condition is a declarative monitoring condition
type Condition struct {
	Type       string            `json:"type"`
	Metric     string            `json:"metric"`
	Operator   string            `json:"operator"`
	Threshold  float64           `json:"threshold"`
	TimeWindow time.Duration     `json:"time_window"`
	Filters    *ConditionFilters `json:"filters,omitempty"`
}

// Validate checks the condition
func (c *Condition) Validate() error {
	switch c.Type {
	case ConditionErrorCount, ConditionErrorRate, ConditionPatternFrequency,
		ConditionHealthScore, ConditionComponentFailure:
	default:
		return fmt.Errorf("alerting: invalid condition type: %s", c.Type)
	}
	switch c.Operator {
	case OperatorGT, OperatorLT, OperatorEQ, OperatorGTE, OperatorLTE:
	default:
		return fmt.Errorf("alerting: invalid operator: %s", c.Operator)
	}
	if c.TimeWindow <= 0 {
		return errors.New("alerting: time window is required")
	}
	return nil
}

// Compare applies the condition's operator to an observed value
func (c *Condition) Compare(value float64) bool {
	switch c.Operator {
	case OperatorGT:
		return value > c.Threshold
	case OperatorLT:
		return value < c.Threshold
	case OperatorEQ:
		return value == c.Threshold
	case OperatorGTE:
		return value >= c.Threshold
	case OperatorLTE:
		return value <= c.Threshold
	default:
		return false
	}
}

// Action is one notification step executed when a rule fires
type Action struct {
	Type     string                 `json:"type"`
	Target   string                 `json:"target,omitempty"`
	Message  string                 `json:"message"`
	Priority string                 `json:"priority"`
	Config   map[string]interface{} `json:"config,omitempty"`
}

// Rule is a declarative alert rule
type Rule struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Enabled        bool          `json:"enabled"`
	Condition      Condition     `json:"condition"`
	Actions        []Action      `json:"actions"`
	CooldownPeriod time.Duration `json:"cooldown_period"`
	LastTriggered  time.Time     `json:"last_triggered,omitempty"`
	TriggerCount   int           `json:"trigger_count"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Validate checks the rule
func (r *Rule) Validate() error {
	if r.Name == "" {
		return errors.New("alerting: name is required")
	}
	if len(r.Actions) == 0 {
		return errors.New("alerting: at least one action is required")
	}
	return r.Condition.Validate()
}

// InCooldown reports whether the rule fired within its cooldown window
func (r *Rule) InCooldown(now time.Time) bool {
	if r.LastTriggered.IsZero() {
		return false
	}
	return now.Sub(r.LastTriggered) < r.CooldownPeriod
}

// Trigger is a firing record of a rule. It is created exactly once per
// firing and never mutated except by acknowledgment.
type Trigger struct {
	ID          string                 `json:"id"`
	RuleID      string                 `json:"rule_id"`
	RuleName    string                 `json:"rule_name"`
	TriggeredAt time.Time              `json:"triggered_at"`
	Condition   Condition              `json:"condition"`
	ActualValue float64                `json:"actual_value"`
	Threshold   float64                `json:"threshold"`
	Message     string                 `json:"message"`
	Actions     []Action               `json:"actions"`
	Resolved    bool                   `json:"resolved"`
	ResolvedAt  time.Time              `json:"resolved_at,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Priority returns the trigger's effective priority (its first action's)
func (t *Trigger) Priority() string {
	if len(t.Actions) > 0 && t.Actions[0].Priority != "" {
		return t.Actions[0].Priority
	}
	return PriorityMedium
}

// defaultRules is the fixed rule set installed at startup
func defaultRules(now time.Time) []*Rule {
	return []*Rule{
		{
			ID:          "critical_errors",
			Name:        "Critical Errors",
			Description: "Alert when critical errors occur",
			Enabled:     true,
			Condition: Condition{
				Type:       ConditionErrorCount,
				Metric:     "critical_errors",
				Operator:   OperatorGTE,
				Threshold:  1,
				TimeWindow: 5 * time.Minute,
				Filters:    &ConditionFilters{Level: "critical"},
			},
			Actions: []Action{
				{Type: ActionToast, Message: "Critical error detected! Automation may be blocked.", Priority: PriorityCritical},
				{Type: ActionConsole, Message: "CRITICAL ERROR ALERT: Immediate attention required", Priority: PriorityCritical},
			},
			CooldownPeriod: 5 * time.Minute,
			CreatedAt:      now,
		},
		{
			ID:          "high_error_rate",
			Name:        "High Error Rate",
			Description: "Alert when error rate exceeds threshold",
			Enabled:     true,
			Condition: Condition{
				Type:       ConditionErrorRate,
				Metric:     "errors_per_minute",
				Operator:   OperatorGT,
				Threshold:  10,
				TimeWindow: 10 * time.Minute,
			},
			Actions: []Action{
				{Type: ActionToast, Message: "High error rate detected. Check automation system.", Priority: PriorityHigh},
				{Type: ActionConsole, Message: "HIGH ERROR RATE: System may be experiencing issues", Priority: PriorityHigh},
			},
			CooldownPeriod: 15 * time.Minute,
			CreatedAt:      now,
		},
		{
			ID:          "database_failures",
			Name:        "Database Connection Failures",
			Description: "Alert when database connectivity issues occur",
			Enabled:     true,
			Condition: Condition{
				Type:       ConditionErrorCount,
				Metric:     "database_errors",
				Operator:   OperatorGTE,
				Threshold:  3,
				TimeWindow: 5 * time.Minute,
				Filters:    &ConditionFilters{Category: "database_connection"},
			},
			Actions: []Action{
				{Type: ActionToast, Message: "Database connection issues detected. Automation may be affected.", Priority: PriorityHigh},
				{Type: ActionConsole, Message: "DATABASE ALERT: Connection issues affecting automation", Priority: PriorityHigh},
			},
			CooldownPeriod: 10 * time.Minute,
			CreatedAt:      now,
		},
		{
			ID:          "api_integration_failures",
			Name:        "API Integration Failures",
			Description: "Alert when external API integrations fail repeatedly",
			Enabled:     true,
			Condition: Condition{
				Type:       ConditionErrorCount,
				Metric:     "api_errors",
				Operator:   OperatorGTE,
				Threshold:  5,
				TimeWindow: 15 * time.Minute,
				Filters:    &ConditionFilters{Category: "api_integration"},
			},
			Actions: []Action{
				{Type: ActionToast, Message: "API integration failures detected. Check API keys and limits.", Priority: PriorityMedium},
				{Type: ActionConsole, Message: "API ALERT: Integration issues detected", Priority: PriorityMedium},
			},
			CooldownPeriod: 20 * time.Minute,
			CreatedAt:      now,
		},
		{
			ID:          "campaign_failures",
			Name:        "Campaign Operation Failures",
			Description: "Alert when campaign operations fail repeatedly",
			Enabled:     true,
			Condition: Condition{
				Type:       ConditionErrorCount,
				Metric:     "campaign_errors",
				Operator:   OperatorGTE,
				Threshold:  3,
				TimeWindow: 10 * time.Minute,
				Filters:    &ConditionFilters{Category: "campaign_management"},
			},
			Actions: []Action{
				{Type: ActionToast, Message: "Campaign operation failures detected. Check campaign configuration.", Priority: PriorityMedium},
			},
			CooldownPeriod: 15 * time.Minute,
			CreatedAt:      now,
		},
		{
			ID:          "low_health_score",
			Name:        "Low Automation Health Score",
			Description: "Alert when overall automation health drops below threshold",
			Enabled:     true,
			Condition: Condition{
				Type:       ConditionHealthScore,
				Metric:     "automation_health",
				Operator:   OperatorLT,
				Threshold:  50,
				TimeWindow: 5 * time.Minute,
			},
			Actions: []Action{
				{Type: ActionToast, Message: "Automation health score is low. System needs attention.", Priority: PriorityMedium},
				{Type: ActionConsole, Message: "HEALTH ALERT: Automation system health is degraded", Priority: PriorityMedium},
			},
			CooldownPeriod: 30 * time.Minute,
			CreatedAt:      now,
		},
		{
			ID:          "component_offline",
			Name:        "Component Offline",
			Description: "Alert when critical automation components go offline",
			Enabled:     true,
			Condition: Condition{
				Type:       ConditionComponentFailure,
				Metric:     "component_health",
				Operator:   OperatorEQ,
				Threshold:  0,
				TimeWindow: 2 * time.Minute,
				Filters:    &ConditionFilters{Component: "automation"},
			},
			Actions: []Action{
				{Type: ActionToast, Message: "Critical automation component is offline!", Priority: PriorityCritical},
				{Type: ActionConsole, Message: "COMPONENT OFFLINE: Critical automation component failed", Priority: PriorityCritical},
			},
			CooldownPeriod: 5 * time.Minute,
			CreatedAt:      now,
		},
	}
}
