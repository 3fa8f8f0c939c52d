package category

import (
	"fmt"
	"math"
	"sort"
)

// HealthScore is a derived 0-100 aggregate of system well-being
type HealthScore struct {
	Score           int            `json:"score"`
	Breakdown       map[string]int `json:"breakdown"`
	Recommendations []string       `json:"recommendations"`
}

// Per-priority penalties by automation impact. Blocking categories hurt
// the most; none/minor impact never penalizes.
var impactPenalties = map[string][2]int{
	ImpactBlocking: {30, 15},
	ImpactSevere:   {20, 10},
	ImpactModerate: {10, 5},
}

// AutomationHealthScore computes the weighted health score across all
// categories from unresolved pattern counts.
func (s *System) AutomationHealthScore() *HealthScore {
	unresolved := false
	active := s.Patterns(&PatternFilter{Resolved: &unresolved})

	breakdown := make(map[string]int, len(s.categories))
	type lowCategory struct {
		name   string
		score  int
		urgent int
		high   int
	}
	var low []lowCategory

	total := 0
	for _, cat := range s.categories {
		var urgent, high int
		for _, p := range active {
			if p.Category != cat.ID {
				continue
			}
			switch p.Priority {
			case PriorityUrgent:
				urgent++
			case PriorityHigh:
				high++
			}
		}

		score := 100
		if penalties, ok := impactPenalties[cat.AutomationImpact]; ok {
			score -= urgent*penalties[0] + high*penalties[1]
		}
		if score < 0 {
			score = 0
		}

		breakdown[cat.Name] = score
		total += score

		if score < 70 {
			low = append(low, lowCategory{name: cat.Name, score: score, urgent: urgent, high: high})
		}
	}

	sort.Slice(low, func(i, j int) bool { return low[i].score < low[j].score })
	if len(low) > 5 {
		low = low[:5]
	}
	recommendations := make([]string, 0, len(low))
	for _, lc := range low {
		recommendations = append(recommendations,
			fmt.Sprintf("Fix %s issues (%d urgent, %d high priority)", lc.name, lc.urgent, lc.high))
	}

	overall := int(math.Round(float64(total) / float64(len(s.categories))))

	return &HealthScore{
		Score:           overall,
		Breakdown:       breakdown,
		Recommendations: recommendations,
	}
}
