package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findInsight(insights []*Insight, insightType string) *Insight {
	for _, i := range insights {
		if i.Type == insightType {
			return i
		}
	}
	return nil
}

func TestSystem_GenerateInsights(t *testing.T) {
	t.Run("no patterns yields no insights", func(t *testing.T) {
		s, _ := newTestSystem(t)
		assert.Empty(t, s.GenerateInsights())
	})

	t.Run("heavy unresolved category becomes a bottleneck", func(t *testing.T) {
		s, _ := newTestSystem(t)

		for i := 0; i < 21; i++ {
			s.Track("database down", "", "worker", "sync")
		}

		insights := s.GenerateInsights()
		bottleneck := findInsight(insights, InsightBottleneck)
		require.NotNil(t, bottleneck)
		assert.Equal(t, CategoryDatabaseConnection, bottleneck.Component)
		assert.Equal(t, "medium", bottleneck.Impact)
		assert.NotEmpty(t, bottleneck.DataPoints)
		assert.Contains(t, bottleneck.Recommendation, "Impact: blocking")
	})

	t.Run("quiet stable category becomes an opportunity", func(t *testing.T) {
		s, _ := newTestSystem(t)

		s.Track("render glitch", "", "ui", "render")

		insights := s.GenerateInsights()
		opportunity := findInsight(insights, InsightOpportunity)
		require.NotNil(t, opportunity)
		assert.Contains(t, opportunity.Description, CategoryUIInteraction)
	})

	t.Run("increasing trend becomes a warning", func(t *testing.T) {
		s, _ := newTestSystem(t)

		for i := 0; i < 3; i++ {
			s.Track("stripe declined", "", "billing", "charge")
		}

		insights := s.GenerateInsights()
		warning := findInsight(insights, InsightWarning)
		require.NotNil(t, warning)
		assert.Equal(t, CategoryPaymentProcessing, warning.Component)
	})

	t.Run("stores the latest set for retrieval", func(t *testing.T) {
		s, _ := newTestSystem(t)
		s.Track("render glitch", "", "ui", "render")

		generated := s.GenerateInsights()
		stored := s.Insights()

		require.Len(t, stored, len(generated))
		assert.Equal(t, generated[0].ID, stored[0].ID)
	})
}
