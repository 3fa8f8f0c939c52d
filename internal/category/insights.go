package category

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FairForge/sentinel/internal/logging"
)

// Insight types
const (
	InsightBottleneck  = "bottleneck"
	InsightImprovement = "improvement"
	InsightWarning     = "warning"
	InsightOpportunity = "opportunity"
)

// Insight is an advisory record derived from pattern analysis
type Insight struct {
	ID             string                   `json:"id"`
	Type           string                   `json:"type"`
	Title          string                   `json:"title"`
	Description    string                   `json:"description"`
	Component      string                   `json:"component"`
	Impact         string                   `json:"impact"`
	Effort         string                   `json:"effort"`
	Recommendation string                   `json:"recommendation"`
	DataPoints     []map[string]interface{} `json:"data_points"`
	CreatedAt      time.Time                `json:"created_at"`
}

// GenerateInsights recomputes the advisory insight set from current patterns
func (s *System) GenerateInsights() []*Insight {
	now := s.now()

	s.mu.RLock()
	byCategory := make(map[string][]*Pattern)
	for _, p := range s.patterns {
		clone := *p
		byCategory[p.Category] = append(byCategory[p.Category], &clone)
	}
	s.mu.RUnlock()

	var insights []*Insight

	// Bottlenecks: categories drowning in unresolved errors
	for cat, patterns := range byCategory {
		var totalFrequency, urgent int
		for _, p := range patterns {
			if p.Resolved {
				continue
			}
			totalFrequency += p.Frequency
			if p.Priority == PriorityUrgent {
				urgent++
			}
		}

		if totalFrequency > 20 || urgent > 2 {
			impact := "medium"
			if urgent > 2 {
				impact = "high"
			}
			points := make([]map[string]interface{}, 0, len(patterns))
			for _, p := range patterns {
				points = append(points, map[string]interface{}{
					"pattern":    p.Signature,
					"frequency":  p.Frequency,
					"trend":      p.Trend,
					"components": p.AffectedComponents,
				})
			}
			insights = append(insights, &Insight{
				ID:    uuid.New().String(),
				Type:  InsightBottleneck,
				Title: fmt.Sprintf("High Error Rate in %s", cat),
				Description: fmt.Sprintf(
					"The %s component has %d errors with %d urgent patterns. This may be blocking automation progress.",
					cat, totalFrequency, urgent),
				Component:      cat,
				Impact:         impact,
				Effort:         "significant",
				Recommendation: s.recommendationFor(cat),
				DataPoints:     points,
				CreatedAt:      now,
			})
		}
	}

	// Opportunities: categories where every pattern is stable and quiet
	var stable []string
	for cat, patterns := range byCategory {
		allStable := true
		for _, p := range patterns {
			if p.Trend != TrendStable || p.Frequency >= 5 {
				allStable = false
				break
			}
		}
		if allStable {
			stable = append(stable, cat)
		}
	}
	sort.Strings(stable)

	if len(stable) > 0 {
		points := make([]map[string]interface{}, 0, len(stable))
		for _, c := range stable {
			points = append(points, map[string]interface{}{"component": c, "status": "stable"})
		}
		insights = append(insights, &Insight{
			ID:    uuid.New().String(),
			Type:  InsightOpportunity,
			Title: "Stable Components Ready for Enhancement",
			Description: fmt.Sprintf(
				"Components %s have stable error rates and could be enhanced with new features.",
				strings.Join(stable, ", ")),
			Component:      "multiple",
			Impact:         "medium",
			Effort:         "moderate",
			Recommendation: "Consider adding new automation features to these stable components",
			DataPoints:     points,
			CreatedAt:      now,
		})
	}

	// Warnings: categories with increasing trends
	for cat, patterns := range byCategory {
		var increasing []*Pattern
		for _, p := range patterns {
			if p.Trend == TrendIncreasing {
				increasing = append(increasing, p)
			}
		}
		if len(increasing) == 0 {
			continue
		}

		points := make([]map[string]interface{}, 0, len(increasing))
		for _, p := range increasing {
			points = append(points, map[string]interface{}{
				"pattern":         p.Signature,
				"frequency":       p.Frequency,
				"trend":           p.Trend,
				"last_occurrence": p.LastOccurrence,
			})
		}
		insights = append(insights, &Insight{
			ID:    uuid.New().String(),
			Type:  InsightWarning,
			Title: fmt.Sprintf("Increasing Errors in %s", cat),
			Description: fmt.Sprintf(
				"Error rates are increasing in %s. %d error patterns show upward trends.",
				cat, len(increasing)),
			Component: cat,
			Impact:    "high",
			Effort:    "moderate",
			Recommendation: fmt.Sprintf(
				"Investigate and fix increasing error patterns in %s before they become critical", cat),
			DataPoints: points,
			CreatedAt:  now,
		})
	}

	s.mu.Lock()
	s.insights = insights
	s.mu.Unlock()

	if s.logger != nil {
		var bottlenecks, warnings, opportunities int
		for _, i := range insights {
			switch i.Type {
			case InsightBottleneck:
				bottlenecks++
			case InsightWarning:
				warnings++
			case InsightOpportunity:
				opportunities++
			}
		}
		s.logger.Info("error_categorization", "generate_insights", "development insights generated",
			logging.Fields{
				"total":         len(insights),
				"bottlenecks":   bottlenecks,
				"warnings":      warnings,
				"opportunities": opportunities,
			})
	}

	return insights
}

func (s *System) recommendationFor(categoryID string) string {
	cat := s.byID[categoryID]
	if cat == nil {
		return "Review and fix errors in this component"
	}

	top := cat.Solutions
	if len(top) > 3 {
		top = top[:3]
	}
	return fmt.Sprintf("Focus on: %s. Impact: %s", strings.Join(top, ", "), cat.AutomationImpact)
}

// Insights returns the last generated insight set, newest first
func (s *System) Insights() []*Insight {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Insight, len(s.insights))
	copy(result, s.insights)
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}
