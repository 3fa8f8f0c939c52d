package alerting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FairForge/sentinel/internal/category"
	"github.com/FairForge/sentinel/internal/logging"
	"github.com/FairForge/sentinel/internal/notify"
)

type captureSink struct {
	notifications []*notify.Notification
}

func (c *captureSink) Notify(n *notify.Notification) {
	c.notifications = append(c.notifications, n)
}

type captureStore struct {
	alerts []*Trigger
	err    error
}

func (c *captureStore) InsertAlert(_ context.Context, trigger *Trigger, _ string) error {
	if c.err != nil {
		return c.err
	}
	c.alerts = append(c.alerts, trigger)
	return nil
}

type testPipeline struct {
	engine   *Engine
	logger   *logging.Logger
	patterns *category.System
	sink     *captureSink
	store    *captureStore
	now      time.Time
}

func (p *testPipeline) advance(d time.Duration) {
	p.now = p.now.Add(d)
}

func newTestPipeline(t *testing.T, installDefaults bool) *testPipeline {
	t.Helper()

	p := &testPipeline{
		sink:  &captureSink{},
		store: &captureStore{},
		now:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return p.now }

	p.logger = logging.NewLogger(nil, nil, nil)
	p.patterns = category.NewSystem(nil, nil)
	p.engine = NewEngine(&EngineConfig{InstallDefaults: installDefaults},
		p.logger, p.patterns, p.sink, nil, nil, p.store, nil)

	p.engine.now = clock
	p.logger.SetClock(clock)
	p.patterns.SetClock(clock)
	return p
}

func countRule(threshold float64, window, cooldown time.Duration, actions ...Action) *Rule {
	if len(actions) == 0 {
		actions = []Action{{Type: ActionConsole, Message: "errors over threshold", Priority: PriorityMedium}}
	}
	return &Rule{
		Name:    "Error Burst",
		Enabled: true,
		Condition: Condition{
			Type:       ConditionErrorCount,
			Metric:     "errors",
			Operator:   OperatorGTE,
			Threshold:  threshold,
			TimeWindow: window,
			Filters:    &ConditionFilters{Level: logging.LevelError},
		},
		Actions:        actions,
		CooldownPeriod: cooldown,
	}
}

func TestEngine_DefaultRules(t *testing.T) {
	p := newTestPipeline(t, true)

	rules := p.engine.ListRules()
	require.Len(t, rules, 7)

	ids := make(map[string]bool, len(rules))
	for _, r := range rules {
		assert.True(t, r.Enabled, r.ID)
		assert.NoError(t, r.Validate(), r.ID)
		ids[r.ID] = true
	}
	for _, id := range []string{"critical_errors", "high_error_rate", "database_failures",
		"api_integration_failures", "campaign_failures", "low_health_score", "component_offline"} {
		assert.True(t, ids[id], id)
	}
}

func TestEngine_EvaluateAll(t *testing.T) {
	t.Run("fires when an error count condition is met", func(t *testing.T) {
		p := newTestPipeline(t, false)
		_, err := p.engine.AddRule(countRule(2, 5*time.Minute, 10*time.Minute))
		require.NoError(t, err)

		p.logger.Error("api", "fetch", "boom", nil)
		p.logger.Error("api", "fetch", "boom again", nil)
		p.engine.EvaluateAll(context.Background())

		triggers := p.engine.Triggers(nil)
		require.Len(t, triggers, 1)
		assert.Equal(t, 2.0, triggers[0].ActualValue)
		assert.Equal(t, "Error Burst: errors is 2 (threshold: gte 2)", triggers[0].Message)
	})

	t.Run("below threshold does not fire", func(t *testing.T) {
		p := newTestPipeline(t, false)
		_, err := p.engine.AddRule(countRule(2, 5*time.Minute, 10*time.Minute))
		require.NoError(t, err)

		p.logger.Error("api", "fetch", "boom", nil)
		p.engine.EvaluateAll(context.Background())

		assert.Empty(t, p.engine.Triggers(nil))
	})

	t.Run("disabled rules are skipped", func(t *testing.T) {
		p := newTestPipeline(t, false)
		rule := countRule(1, 5*time.Minute, 10*time.Minute)
		rule.Enabled = false
		_, err := p.engine.AddRule(rule)
		require.NoError(t, err)

		p.logger.Error("api", "fetch", "boom", nil)
		p.engine.EvaluateAll(context.Background())

		assert.Empty(t, p.engine.Triggers(nil))
	})

	t.Run("entries outside the window are not counted", func(t *testing.T) {
		p := newTestPipeline(t, false)
		_, err := p.engine.AddRule(countRule(1, 5*time.Minute, time.Minute))
		require.NoError(t, err)

		p.logger.Error("api", "fetch", "stale", nil)
		p.advance(6 * time.Minute)
		p.engine.EvaluateAll(context.Background())

		assert.Empty(t, p.engine.Triggers(nil))
	})

	t.Run("category filter re-categorizes entries", func(t *testing.T) {
		p := newTestPipeline(t, false)
		rule := countRule(1, 5*time.Minute, 10*time.Minute)
		rule.Condition.Filters = &ConditionFilters{Category: category.CategoryDatabaseConnection}
		_, err := p.engine.AddRule(rule)
		require.NoError(t, err)

		p.logger.Error("worker", "sync", "stripe declined", nil)
		p.engine.EvaluateAll(context.Background())
		assert.Empty(t, p.engine.Triggers(nil))

		p.logger.Error("worker", "sync", "database connection lost", nil)
		p.engine.EvaluateAll(context.Background())
		assert.Len(t, p.engine.Triggers(nil), 1)
	})

	t.Run("fire hook observes each firing", func(t *testing.T) {
		p := newTestPipeline(t, false)
		_, err := p.engine.AddRule(countRule(1, 5*time.Minute, 10*time.Minute))
		require.NoError(t, err)

		var fired []string
		p.engine.SetFireHook(func(name string) { fired = append(fired, name) })

		p.logger.Error("api", "fetch", "boom", nil)
		p.engine.EvaluateAll(context.Background())

		assert.Equal(t, []string{"Error Burst"}, fired)
	})

	t.Run("fired alerts are tracked as patterns", func(t *testing.T) {
		p := newTestPipeline(t, false)
		_, err := p.engine.AddRule(countRule(1, 5*time.Minute, 10*time.Minute))
		require.NoError(t, err)

		p.logger.Error("api", "fetch", "boom", nil)
		p.engine.EvaluateAll(context.Background())

		patterns := p.patterns.Patterns(nil)
		require.Len(t, patterns, 1)
		assert.Contains(t, patterns[0].Signature, "monitoring_alerts")
	})
}

func TestEngine_Cooldown(t *testing.T) {
	t.Run("suppresses refiring inside the window", func(t *testing.T) {
		p := newTestPipeline(t, false)
		_, err := p.engine.AddRule(countRule(1, 15*time.Minute, 10*time.Minute))
		require.NoError(t, err)

		p.logger.Error("api", "fetch", "boom", nil)

		p.engine.EvaluateAll(context.Background())
		require.Len(t, p.engine.Triggers(nil), 1)

		p.advance(5 * time.Minute)
		p.logger.Error("api", "fetch", "boom", nil)
		p.engine.EvaluateAll(context.Background())
		assert.Len(t, p.engine.Triggers(nil), 1)

		p.advance(6 * time.Minute)
		p.engine.EvaluateAll(context.Background())
		triggers := p.engine.Triggers(nil)
		require.Len(t, triggers, 2)

		rule := p.engine.ListRules()[0]
		assert.Equal(t, 2, rule.TriggerCount)
	})

	t.Run("critical burst produces one toast until cooldown expires", func(t *testing.T) {
		p := newTestPipeline(t, true)

		for i := 0; i < 10; i++ {
			p.logger.Critical("automation", "run", "meltdown", nil)
		}
		p.engine.EvaluateAll(context.Background())
		p.advance(time.Minute)
		p.engine.EvaluateAll(context.Background())

		critical := p.engine.Triggers(&TriggerFilter{RuleID: "critical_errors"})
		assert.Len(t, critical, 1)

		p.advance(5 * time.Minute)
		p.logger.Critical("automation", "run", "still melting", nil)
		p.engine.EvaluateAll(context.Background())

		critical = p.engine.Triggers(&TriggerFilter{RuleID: "critical_errors"})
		assert.Len(t, critical, 2)
	})
}

func TestEngine_Conditions(t *testing.T) {
	t.Run("health score condition fires on degraded score", func(t *testing.T) {
		p := newTestPipeline(t, false)
		_, err := p.engine.AddRule(&Rule{
			Name:    "Low Health",
			Enabled: true,
			Condition: Condition{
				Type:       ConditionHealthScore,
				Metric:     "automation_health",
				Operator:   OperatorLT,
				Threshold:  95,
				TimeWindow: 5 * time.Minute,
			},
			Actions:        []Action{{Type: ActionConsole, Message: "health low", Priority: PriorityMedium}},
			CooldownPeriod: 30 * time.Minute,
		})
		require.NoError(t, err)

		p.engine.EvaluateAll(context.Background())
		assert.Empty(t, p.engine.Triggers(nil))

		// Two urgent blocking patterns drop the database category to 40.
		for i := 0; i < 6; i++ {
			p.patterns.Track("database down", "", "worker", "sync")
			p.patterns.Track("connection pool exhausted", "", "worker", "sync")
		}
		p.engine.EvaluateAll(context.Background())
		require.Len(t, p.engine.Triggers(nil), 1)
	})

	t.Run("pattern frequency condition sums unresolved recent patterns", func(t *testing.T) {
		p := newTestPipeline(t, false)
		_, err := p.engine.AddRule(&Rule{
			Name:    "Noisy Pattern",
			Enabled: true,
			Condition: Condition{
				Type:       ConditionPatternFrequency,
				Metric:     "pattern_frequency",
				Operator:   OperatorGT,
				Threshold:  5,
				TimeWindow: time.Hour,
			},
			Actions:        []Action{{Type: ActionConsole, Message: "noisy", Priority: PriorityMedium}},
			CooldownPeriod: 30 * time.Minute,
		})
		require.NoError(t, err)

		for i := 0; i < 6; i++ {
			p.patterns.Track("timeout", "", "api", "fetch")
		}
		p.engine.EvaluateAll(context.Background())

		triggers := p.engine.Triggers(nil)
		require.Len(t, triggers, 1)
		assert.Equal(t, 6.0, triggers[0].ActualValue)
	})

	t.Run("component failure detects silence", func(t *testing.T) {
		p := newTestPipeline(t, false)
		_, err := p.engine.AddRule(&Rule{
			Name:    "Automation Offline",
			Enabled: true,
			Condition: Condition{
				Type:       ConditionComponentFailure,
				Metric:     "component_health",
				Operator:   OperatorEQ,
				Threshold:  0,
				TimeWindow: 2 * time.Minute,
				Filters:    &ConditionFilters{Component: "automation"},
			},
			Actions:        []Action{{Type: ActionConsole, Message: "offline", Priority: PriorityCritical}},
			CooldownPeriod: 5 * time.Minute,
		})
		require.NoError(t, err)

		p.engine.EvaluateAll(context.Background())
		require.Len(t, p.engine.Triggers(nil), 1)

		p.advance(10 * time.Minute)
		p.logger.Info("automation", "heartbeat", "alive", nil)
		p.engine.EvaluateAll(context.Background())
		assert.Len(t, p.engine.Triggers(nil), 1)
	})

	t.Run("error rate divides by window minutes", func(t *testing.T) {
		p := newTestPipeline(t, false)
		_, err := p.engine.AddRule(&Rule{
			Name:    "Error Rate",
			Enabled: true,
			Condition: Condition{
				Type:       ConditionErrorRate,
				Metric:     "errors_per_minute",
				Operator:   OperatorGT,
				Threshold:  1,
				TimeWindow: 10 * time.Minute,
				Filters:    &ConditionFilters{Level: logging.LevelError},
			},
			Actions:        []Action{{Type: ActionConsole, Message: "rate high", Priority: PriorityHigh}},
			CooldownPeriod: 15 * time.Minute,
		})
		require.NoError(t, err)

		for i := 0; i < 11; i++ {
			p.logger.Error("api", "fetch", "boom", nil)
		}
		p.engine.EvaluateAll(context.Background())

		triggers := p.engine.Triggers(nil)
		require.Len(t, triggers, 1)
		assert.Equal(t, 1.1, triggers[0].ActualValue)
	})
}

func TestEngine_Actions(t *testing.T) {
	t.Run("critical toast is sticky and acknowledges its trigger", func(t *testing.T) {
		p := newTestPipeline(t, false)
		_, err := p.engine.AddRule(countRule(1, 5*time.Minute, 10*time.Minute,
			Action{Type: ActionToast, Message: "critical toast", Priority: PriorityCritical}))
		require.NoError(t, err)

		p.logger.Error("api", "fetch", "boom", nil)
		p.engine.EvaluateAll(context.Background())

		require.Len(t, p.sink.notifications, 1)
		n := p.sink.notifications[0]
		assert.True(t, n.Sticky())
		require.NotNil(t, n.OnAcknowledge)

		n.OnAcknowledge()
		resolved := true
		assert.Len(t, p.engine.Triggers(&TriggerFilter{Resolved: &resolved}), 1)
	})

	t.Run("non-critical toast auto-dismisses", func(t *testing.T) {
		p := newTestPipeline(t, false)
		_, err := p.engine.AddRule(countRule(1, 5*time.Minute, 10*time.Minute,
			Action{Type: ActionToast, Message: "plain toast", Priority: PriorityMedium}))
		require.NoError(t, err)

		p.logger.Error("api", "fetch", "boom", nil)
		p.engine.EvaluateAll(context.Background())

		require.Len(t, p.sink.notifications, 1)
		assert.False(t, p.sink.notifications[0].Sticky())
	})

	t.Run("storage action persists the trigger", func(t *testing.T) {
		p := newTestPipeline(t, false)
		_, err := p.engine.AddRule(countRule(1, 5*time.Minute, 10*time.Minute,
			Action{Type: ActionStorage, Message: "persist me", Priority: PriorityMedium}))
		require.NoError(t, err)

		p.logger.Error("api", "fetch", "boom", nil)
		p.engine.EvaluateAll(context.Background())

		require.Len(t, p.store.alerts, 1)
		assert.Equal(t, "Error Burst", p.store.alerts[0].RuleName)
	})

	t.Run("storage failure is reported into the pipeline", func(t *testing.T) {
		p := newTestPipeline(t, false)
		p.store.err = errors.New("db down")
		_, err := p.engine.AddRule(countRule(1, 5*time.Minute, 10*time.Minute,
			Action{Type: ActionStorage, Message: "persist me", Priority: PriorityMedium}))
		require.NoError(t, err)

		p.logger.Error("api", "fetch", "boom", nil)
		p.engine.EvaluateAll(context.Background())

		failures := p.logger.GetLogs(&logging.LogFilter{Operation: "storage_failed"})
		assert.Len(t, failures, 1)
	})

	t.Run("action failures do not block later actions", func(t *testing.T) {
		p := newTestPipeline(t, false)
		p.store.err = errors.New("db down")
		_, err := p.engine.AddRule(countRule(1, 5*time.Minute, 10*time.Minute,
			Action{Type: ActionStorage, Message: "persist me", Priority: PriorityMedium},
			Action{Type: ActionToast, Message: "still toasts", Priority: PriorityMedium}))
		require.NoError(t, err)

		p.logger.Error("api", "fetch", "boom", nil)
		p.engine.EvaluateAll(context.Background())

		assert.Len(t, p.sink.notifications, 1)
	})
}

func TestEngine_AcknowledgeAlert(t *testing.T) {
	p := newTestPipeline(t, false)
	_, err := p.engine.AddRule(countRule(1, 5*time.Minute, 10*time.Minute))
	require.NoError(t, err)

	p.logger.Error("api", "fetch", "boom", nil)
	p.engine.EvaluateAll(context.Background())
	trigger := p.engine.Triggers(nil)[0]

	t.Run("marks the trigger resolved", func(t *testing.T) {
		p.engine.AcknowledgeAlert(trigger.ID)
		assert.True(t, p.engine.Triggers(nil)[0].Resolved)
	})

	t.Run("repeat acknowledgment is a no-op", func(t *testing.T) {
		resolvedAt := p.engine.Triggers(nil)[0].ResolvedAt

		p.advance(time.Minute)
		p.engine.AcknowledgeAlert(trigger.ID)

		assert.Equal(t, resolvedAt, p.engine.Triggers(nil)[0].ResolvedAt)
	})

	t.Run("unknown trigger id is a no-op", func(t *testing.T) {
		p.engine.AcknowledgeAlert("missing")
	})
}

func TestEngine_ConcurrentEvaluateAndUpdate(t *testing.T) {
	p := newTestPipeline(t, false)
	id, err := p.engine.AddRule(countRule(1, 15*time.Minute, 0))
	require.NoError(t, err)

	p.logger.Error("api", "fetch", "boom", nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			p.engine.EvaluateAll(context.Background())
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			window := 15 * time.Minute
			if i%2 == 0 {
				window = 30 * time.Minute
			}
			p.engine.UpdateRule(id, &RuleUpdate{
				Condition: &Condition{
					Type:       ConditionErrorCount,
					Metric:     "errors",
					Operator:   OperatorGTE,
					Threshold:  1,
					TimeWindow: window,
					Filters:    &ConditionFilters{Level: logging.LevelError},
				},
			})
		}
	}()
	wg.Wait()

	rule := p.engine.GetRule(id)
	require.NotNil(t, rule)
	assert.Equal(t, 100, rule.TriggerCount)
	assert.Len(t, p.engine.Triggers(&TriggerFilter{RuleID: id}), 100)
}

func TestEngine_SnapshotAccessors(t *testing.T) {
	p := newTestPipeline(t, false)
	id, err := p.engine.AddRule(countRule(1, 5*time.Minute, 10*time.Minute))
	require.NoError(t, err)

	p.logger.Error("api", "fetch", "boom", nil)
	p.engine.EvaluateAll(context.Background())

	t.Run("returned rules are copies", func(t *testing.T) {
		p.engine.GetRule(id).Name = "hijacked"
		p.engine.ListRules()[0].Enabled = false

		rule := p.engine.GetRule(id)
		assert.Equal(t, "Error Burst", rule.Name)
		assert.True(t, rule.Enabled)
	})

	t.Run("returned triggers are copies", func(t *testing.T) {
		p.engine.Triggers(nil)[0].Resolved = true
		assert.False(t, p.engine.Triggers(nil)[0].Resolved)
	})
}
