package alerting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_AddRule(t *testing.T) {
	t.Run("assigns an id and stores the rule", func(t *testing.T) {
		p := newTestPipeline(t, false)

		id, err := p.engine.AddRule(countRule(1, 5*time.Minute, 10*time.Minute))
		require.NoError(t, err)
		require.NotEmpty(t, id)

		rule := p.engine.GetRule(id)
		require.NotNil(t, rule)
		assert.Equal(t, "Error Burst", rule.Name)
		assert.Zero(t, rule.TriggerCount)
	})

	t.Run("rejects invalid rules", func(t *testing.T) {
		p := newTestPipeline(t, false)

		tests := []struct {
			name   string
			mutate func(*Rule)
		}{
			{"missing name", func(r *Rule) { r.Name = "" }},
			{"no actions", func(r *Rule) { r.Actions = nil }},
			{"bad condition type", func(r *Rule) { r.Condition.Type = "bogus" }},
			{"bad operator", func(r *Rule) { r.Condition.Operator = "between" }},
			{"zero window", func(r *Rule) { r.Condition.TimeWindow = 0 }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rule := countRule(1, 5*time.Minute, 10*time.Minute)
				tt.mutate(rule)
				_, err := p.engine.AddRule(rule)
				assert.Error(t, err)
			})
		}
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		p := newTestPipeline(t, false)

		rule := countRule(1, 5*time.Minute, 10*time.Minute)
		rule.ID = "fixed-id"
		_, err := p.engine.AddRule(rule)
		require.NoError(t, err)

		dup := countRule(1, 5*time.Minute, 10*time.Minute)
		dup.ID = "fixed-id"
		_, err = p.engine.AddRule(dup)
		assert.ErrorContains(t, err, "already exists")
	})
}

func TestEngine_UpdateRule(t *testing.T) {
	p := newTestPipeline(t, false)
	id, err := p.engine.AddRule(countRule(2, 5*time.Minute, 10*time.Minute))
	require.NoError(t, err)

	t.Run("applies partial updates", func(t *testing.T) {
		name := "Renamed"
		enabled := false
		cooldown := 20 * time.Minute
		ok := p.engine.UpdateRule(id, &RuleUpdate{
			Name:           &name,
			Enabled:        &enabled,
			CooldownPeriod: &cooldown,
		})
		require.True(t, ok)

		rule := p.engine.GetRule(id)
		assert.Equal(t, "Renamed", rule.Name)
		assert.False(t, rule.Enabled)
		assert.Equal(t, 20*time.Minute, rule.CooldownPeriod)
		// Untouched fields survive.
		assert.Equal(t, 2.0, rule.Condition.Threshold)
	})

	t.Run("unknown rule returns false", func(t *testing.T) {
		name := "x"
		assert.False(t, p.engine.UpdateRule("missing", &RuleUpdate{Name: &name}))
	})
}

func TestEngine_RemoveRule(t *testing.T) {
	p := newTestPipeline(t, false)
	id, err := p.engine.AddRule(countRule(1, 5*time.Minute, 10*time.Minute))
	require.NoError(t, err)

	p.logger.Error("api", "fetch", "boom", nil)
	p.engine.EvaluateAll(context.Background())
	require.Len(t, p.engine.Triggers(nil), 1)

	t.Run("removes the rule but keeps its triggers", func(t *testing.T) {
		assert.True(t, p.engine.RemoveRule(id))
		assert.Nil(t, p.engine.GetRule(id))
		assert.Len(t, p.engine.Triggers(nil), 1)
	})

	t.Run("unknown rule returns false", func(t *testing.T) {
		assert.False(t, p.engine.RemoveRule(id))
	})
}

func TestEngine_ListRules(t *testing.T) {
	p := newTestPipeline(t, false)

	first := countRule(1, 5*time.Minute, 10*time.Minute)
	first.Name = "First"
	_, err := p.engine.AddRule(first)
	require.NoError(t, err)

	p.advance(time.Minute)
	second := countRule(1, 5*time.Minute, 10*time.Minute)
	second.Name = "Second"
	_, err = p.engine.AddRule(second)
	require.NoError(t, err)

	rules := p.engine.ListRules()
	require.Len(t, rules, 2)
	assert.Equal(t, "First", rules[0].Name)
	assert.Equal(t, "Second", rules[1].Name)
}

func TestEngine_GetStatistics(t *testing.T) {
	p := newTestPipeline(t, false)

	busy := countRule(1, 15*time.Minute, time.Minute)
	busy.Name = "Busy"
	_, err := p.engine.AddRule(busy)
	require.NoError(t, err)

	idle := countRule(100, 5*time.Minute, time.Minute)
	idle.Name = "Idle"
	idle.Enabled = false
	_, err = p.engine.AddRule(idle)
	require.NoError(t, err)

	p.logger.Error("api", "fetch", "boom", nil)
	p.engine.EvaluateAll(context.Background())
	p.advance(2 * time.Minute)
	p.engine.EvaluateAll(context.Background())

	trigger := p.engine.Triggers(nil)[0]
	p.engine.AcknowledgeAlert(trigger.ID)

	stats := p.engine.GetStatistics()
	assert.Equal(t, 2, stats.TotalRules)
	assert.Equal(t, 1, stats.EnabledRules)
	assert.Equal(t, 2, stats.TotalTriggers)
	assert.Equal(t, 1, stats.UnresolvedTriggers)
	assert.Equal(t, 2, stats.TriggersByPriority[PriorityMedium])
	require.Len(t, stats.MostTriggeredRules, 1)
	assert.Equal(t, RuleCount{Name: "Busy", Count: 2}, stats.MostTriggeredRules[0])
}

func TestCondition_Compare(t *testing.T) {
	tests := []struct {
		operator  string
		threshold float64
		value     float64
		want      bool
	}{
		{OperatorGT, 5, 6, true},
		{OperatorGT, 5, 5, false},
		{OperatorLT, 5, 4, true},
		{OperatorLT, 5, 5, false},
		{OperatorEQ, 0, 0, true},
		{OperatorEQ, 0, 1, false},
		{OperatorGTE, 5, 5, true},
		{OperatorGTE, 5, 4, false},
		{OperatorLTE, 5, 5, true},
		{OperatorLTE, 5, 6, false},
		{"bogus", 5, 6, false},
	}

	for _, tt := range tests {
		c := &Condition{Operator: tt.operator, Threshold: tt.threshold}
		assert.Equal(t, tt.want, c.Compare(tt.value), "%s %v vs %v", tt.operator, tt.value, tt.threshold)
	}
}

func TestRule_InCooldown(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rule := &Rule{CooldownPeriod: 10 * time.Minute}

	assert.False(t, rule.InCooldown(now), "never-fired rule is not in cooldown")

	rule.LastTriggered = now
	assert.True(t, rule.InCooldown(now.Add(9*time.Minute)))
	assert.False(t, rule.InCooldown(now.Add(10*time.Minute)))
}

func TestTrigger_Priority(t *testing.T) {
	assert.Equal(t, PriorityMedium, (&Trigger{}).Priority())
	assert.Equal(t, PriorityCritical, (&Trigger{
		Actions: []Action{{Type: ActionToast, Priority: PriorityCritical}},
	}).Priority())
}
