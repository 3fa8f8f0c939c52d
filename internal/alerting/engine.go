package alerting

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FairForge/sentinel/internal/category"
	"github.com/FairForge/sentinel/internal/logging"
	"github.com/FairForge/sentinel/internal/notify"
)

// componentRecencyWindow is how far back component_failure conditions look
// for signs of life.
const componentRecencyWindow = 5 * time.Minute

// Store is the durable sink for trigger records
type Store interface {
	InsertAlert(ctx context.Context, trigger *Trigger, priority string) error
}

// EngineConfig configures the alert engine
type EngineConfig struct {
	// InstallDefaults controls whether the fixed default rule set is
	// installed at construction.
	InstallDefaults bool `json:"install_defaults"`
}

// Engine evaluates declarative rules against live pipeline metrics and
// fires multi-channel notifications with cooldown-based rate limiting.
type Engine struct {
	config   *EngineConfig
	logger   *logging.Logger
	patterns *category.System
	sink     notify.Sink
	webhooks *notify.WebhookSender
	emails   *notify.EmailSender
	store    Store
	ops      *zap.Logger

	rules    map[string]*Rule
	triggers []*Trigger
	onFire   func(ruleName string)

	now func() time.Time
	mu  sync.RWMutex
}

// SetFireHook registers a callback invoked once per rule firing, after its
// actions have run. Used to bridge firings into external counters.
func (e *Engine) SetFireHook(fn func(ruleName string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onFire = fn
}

// NewEngine creates an alert engine
func NewEngine(config *EngineConfig, logger *logging.Logger, patterns *category.System,
	sink notify.Sink, webhooks *notify.WebhookSender, emails *notify.EmailSender,
	store Store, ops *zap.Logger) *Engine {
	if config == nil {
		config = &EngineConfig{InstallDefaults: true}
	}
	if ops == nil {
		ops = zap.NewNop()
	}
	if sink == nil {
		sink = notify.NewConsoleSink(ops)
	}

	e := &Engine{
		config:   config,
		logger:   logger,
		patterns: patterns,
		sink:     sink,
		webhooks: webhooks,
		emails:   emails,
		store:    store,
		ops:      ops,
		rules:    make(map[string]*Rule),
		now:      time.Now,
	}

	if config.InstallDefaults {
		for _, r := range defaultRules(e.now()) {
			e.rules[r.ID] = r
		}
		if logger != nil {
			logger.Info("monitoring_alerts", "initialize", "monitoring alert rules initialized",
				logging.Fields{"rule_count": len(e.rules)})
		}
	}

	return e
}

// EvaluateAll evaluates every enabled rule outside its cooldown window.
// Firing is instantaneous: a triggered rule executes its actions and goes
// straight back to idle.
func (e *Engine) EvaluateAll(ctx context.Context) {
	now := e.now()

	// Snapshot rules by value so a concurrent update cannot tear a
	// condition mid-evaluation. Writers replace Condition/Actions
	// wholesale, so the copied headers stay internally consistent.
	e.mu.RLock()
	rules := make([]Rule, 0, len(e.rules))
	for _, r := range e.rules {
		rules = append(rules, *r)
	}
	e.mu.RUnlock()

	var checked, fired int
	for i := range rules {
		rule := &rules[i]
		if !rule.Enabled || rule.InCooldown(now) {
			continue
		}
		checked++

		value := e.evaluateCondition(&rule.Condition)
		if rule.Condition.Compare(value) {
			e.fire(ctx, rule, value)
			fired++
		}
	}

	if checked > 0 && e.logger != nil {
		e.logger.Debug("monitoring_alerts", "check_complete", "alert conditions checked",
			logging.Fields{"rules_checked": checked, "alerts_triggered": fired})
	}
}

// evaluateCondition reduces a condition to a single observed value
func (e *Engine) evaluateCondition(cond *Condition) float64 {
	cutoff := e.now().Add(-cond.TimeWindow)

	switch cond.Type {
	case ConditionErrorCount:
		return float64(e.errorCount(cond, cutoff))
	case ConditionErrorRate:
		return float64(e.errorCount(cond, cutoff)) / cond.TimeWindow.Minutes()
	case ConditionPatternFrequency:
		return e.patternFrequency(cond, cutoff)
	case ConditionHealthScore:
		return float64(e.patterns.AutomationHealthScore().Score)
	case ConditionComponentFailure:
		return e.componentHealth(cond)
	default:
		return 0
	}
}

func (e *Engine) errorCount(cond *Condition, cutoff time.Time) int {
	filter := &logging.LogFilter{Since: cutoff}
	if cond.Filters != nil {
		filter.Level = cond.Filters.Level
		filter.Component = cond.Filters.Component
	}
	logs := e.logger.GetLogs(filter)

	if cond.Filters == nil || cond.Filters.Category == "" {
		return len(logs)
	}

	count := 0
	for _, entry := range logs {
		cat := category.Categorize(entry.Message, entry.StackTrace, entry.Component, entry.Operation)
		if cat == cond.Filters.Category {
			count++
		}
	}
	return count
}

func (e *Engine) patternFrequency(cond *Condition, cutoff time.Time) float64 {
	unresolved := false
	filter := &category.PatternFilter{Resolved: &unresolved}
	if cond.Filters != nil {
		filter.Category = cond.Filters.Category
	}

	var sum float64
	for _, p := range e.patterns.Patterns(filter) {
		if !p.LastOccurrence.Before(cutoff) {
			sum += float64(p.Frequency)
		}
	}
	return sum
}

// componentHealth returns 1 if the component logged anything recently,
// else 0. Paired with "eq 0" it detects components going silent.
func (e *Engine) componentHealth(cond *Condition) float64 {
	filter := &logging.LogFilter{Since: e.now().Add(-componentRecencyWindow)}
	if cond.Filters != nil {
		filter.Component = cond.Filters.Component
	}
	if len(e.logger.GetLogs(filter)) > 0 {
		return 1
	}
	return 0
}

// fire records a trigger, updates the canonical rule state by id, and
// executes the snapshot's actions in order
func (e *Engine) fire(ctx context.Context, rule *Rule, value float64) {
	now := e.now()
	trigger := &Trigger{
		ID:          uuid.New().String(),
		RuleID:      rule.ID,
		RuleName:    rule.Name,
		TriggeredAt: now,
		Condition:   rule.Condition,
		ActualValue: value,
		Threshold:   rule.Condition.Threshold,
		Message:     formatAlertMessage(rule, value),
		Actions:     rule.Actions,
	}

	e.mu.Lock()
	e.triggers = append(e.triggers, trigger)
	if canonical, ok := e.rules[rule.ID]; ok {
		canonical.LastTriggered = now
		canonical.TriggerCount++
	}
	e.mu.Unlock()

	for i := range rule.Actions {
		e.executeAction(ctx, &rule.Actions[i], trigger)
	}

	if e.logger != nil {
		e.logger.Warn("monitoring_alerts", "alert_triggered", trigger.Message,
			logging.Fields{
				"rule_id":      rule.ID,
				"rule_name":    rule.Name,
				"actual_value": value,
				"threshold":    rule.Condition.Threshold,
				"trigger_id":   trigger.ID,
			})
	}

	// Alerts are themselves interesting signal; feed them back as a pattern.
	if e.patterns != nil {
		e.patterns.Track("Alert triggered: "+rule.Name, "", "monitoring_alerts", "alert_triggered")
	}

	e.mu.RLock()
	hook := e.onFire
	e.mu.RUnlock()
	if hook != nil {
		hook(rule.Name)
	}
}

func formatAlertMessage(rule *Rule, value float64) string {
	return fmt.Sprintf("%s: %s is %v (threshold: %s %v)",
		rule.Name, rule.Condition.Metric, value, rule.Condition.Operator, rule.Condition.Threshold)
}

// AcknowledgeAlert marks a trigger resolved. Idempotent.
func (e *Engine) AcknowledgeAlert(triggerID string) {
	e.mu.Lock()
	var acked *Trigger
	for _, t := range e.triggers {
		if t.ID == triggerID && !t.Resolved {
			t.Resolved = true
			t.ResolvedAt = e.now()
			acked = t
			break
		}
	}
	e.mu.Unlock()

	if acked != nil && e.logger != nil {
		e.logger.Info("monitoring_alerts", "alert_acknowledged", "alert acknowledged by operator",
			logging.Fields{"trigger_id": triggerID, "rule_name": acked.RuleName})
	}
}

// TriggerFilter selects a subset of recorded triggers
type TriggerFilter struct {
	RuleID   string
	Resolved *bool
	Since    time.Time
}

// Triggers returns copies of recorded triggers matching the filter, newest
// first. Copies keep callers off the structs AcknowledgeAlert mutates.
func (e *Engine) Triggers(filter *TriggerFilter) []*Trigger {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]*Trigger, 0, len(e.triggers))
	for _, t := range e.triggers {
		if filter != nil {
			if filter.RuleID != "" && t.RuleID != filter.RuleID {
				continue
			}
			if filter.Resolved != nil && t.Resolved != *filter.Resolved {
				continue
			}
			if !filter.Since.IsZero() && t.TriggeredAt.Before(filter.Since) {
				continue
			}
		}
		clone := *t
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TriggeredAt.After(result[j].TriggeredAt)
	})
	return result
}
