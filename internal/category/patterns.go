package category

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FairForge/sentinel/internal/logging"
)

// Trends
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// quietWindow is how long a pattern must stay silent before the sweep
// marks it resolved.
const quietWindow = 30 * time.Minute

// Pattern aggregates repeated occurrences of the same error
type Pattern struct {
	ID                 string    `json:"id"`
	Signature          string    `json:"signature"`
	Category           string    `json:"category"`
	Frequency          int       `json:"frequency"`
	FirstOccurrence    time.Time `json:"first_occurrence"`
	LastOccurrence     time.Time `json:"last_occurrence"`
	AffectedComponents []string  `json:"affected_components"`
	Trend              string    `json:"trend"`
	Priority           string    `json:"priority"`
	Resolved           bool      `json:"resolved"`
	ResolutionNotes    string    `json:"resolution_notes,omitempty"`
	Workarounds        []string  `json:"workarounds"`
}

// PatternFilter selects a subset of tracked patterns
type PatternFilter struct {
	Category string
	Priority string
	Resolved *bool
}

// Coder lets errors carry a short machine code used in signatures
type Coder interface {
	Code() string
}

// System categorizes errors, tracks deduplicated patterns, and derives
// insights and a health score. Construct one per application.
type System struct {
	categories []*Category
	byID       map[string]*Category
	patterns   map[string]*Pattern
	insights   []*Insight
	logger     *logging.Logger
	ops        *zap.Logger

	now func() time.Time
	mu  sync.RWMutex
}

// NewSystem creates a categorization system
func NewSystem(logger *logging.Logger, ops *zap.Logger) *System {
	if ops == nil {
		ops = zap.NewNop()
	}

	s := &System{
		categories: defaultCategories(),
		byID:       make(map[string]*Category),
		patterns:   make(map[string]*Pattern),
		logger:     logger,
		ops:        ops,
		now:        time.Now,
	}
	for _, c := range s.categories {
		s.byID[c.ID] = c
	}

	if logger != nil {
		logger.Info("error_categorization", "initialize", "error categories initialized",
			logging.Fields{"count": len(s.categories)})
	}
	return s
}

// SetClock overrides the time source. Tests use this to pin timestamps.
func (s *System) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = clock
}

// Categories returns the fixed taxonomy in priority order
func (s *System) Categories() []*Category {
	return s.categories
}

// Category returns a taxonomy entry, or nil if unknown
func (s *System) Category(id string) *Category {
	return s.byID[id]
}

// TrackError tracks an error occurrence, using its Code() when available
func (s *System) TrackError(err error, component, operation string) {
	if err == nil {
		return
	}
	code := ""
	if c, ok := err.(Coder); ok {
		code = c.Code()
	}
	s.Track(err.Error(), code, component, operation)
}

// Track records one occurrence of an error message against its pattern,
// creating the pattern on first sight. Never fails.
func (s *System) Track(message, code, component, operation string) {
	cat := Categorize(message, "", component, operation)
	sig := Signature(message, code, component, operation)

	s.mu.Lock()
	pattern, ok := s.patterns[sig]
	if ok {
		pattern.Frequency++
		pattern.LastOccurrence = s.now()
		pattern.AffectedComponents = appendUnique(pattern.AffectedComponents, component)

		hours := s.now().Sub(pattern.FirstOccurrence).Hours()
		if hours < 1 {
			hours = 1
		}
		perHour := float64(pattern.Frequency) / hours
		switch {
		case perHour > 5:
			pattern.Trend = TrendIncreasing
			pattern.Priority = PriorityUrgent
		case perHour > 2:
			pattern.Trend = TrendIncreasing
			pattern.Priority = PriorityHigh
		default:
			pattern.Trend = TrendStable
		}
	} else {
		pattern = &Pattern{
			ID:                 uuid.New().String(),
			Signature:          sig,
			Category:           cat,
			Frequency:          1,
			FirstOccurrence:    s.now(),
			LastOccurrence:     s.now(),
			AffectedComponents: []string{component},
			Trend:              TrendStable,
			Priority:           PriorityLow,
			Workarounds:        s.suggestedWorkarounds(cat),
		}
		s.patterns[sig] = pattern
	}
	freq, trend, priority := pattern.Frequency, pattern.Trend, pattern.Priority
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("error_categorization", "track_pattern", "error pattern tracked",
			logging.Fields{
				"signature": sig,
				"category":  cat,
				"frequency": freq,
				"trend":     trend,
				"priority":  priority,
			})
	}
}

func (s *System) suggestedWorkarounds(categoryID string) []string {
	cat := s.byID[categoryID]
	if cat == nil {
		return nil
	}

	workarounds := make([]string, 0, 5)
	if len(cat.Solutions) > 2 {
		workarounds = append(workarounds, cat.Solutions[:2]...)
	} else {
		workarounds = append(workarounds, cat.Solutions...)
	}
	return append(workarounds,
		"Check system logs for more details",
		"Retry the operation",
		"Contact support if issue persists",
	)
}

// Patterns returns tracked patterns matching the filter, highest frequency first
func (s *System) Patterns(filter *PatternFilter) []*Pattern {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Pattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		if filter != nil {
			if filter.Category != "" && p.Category != filter.Category {
				continue
			}
			if filter.Priority != "" && p.Priority != filter.Priority {
				continue
			}
			if filter.Resolved != nil && p.Resolved != *filter.Resolved {
				continue
			}
		}
		clone := *p
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Frequency > result[j].Frequency
	})
	return result
}

// ResolvePattern marks a pattern resolved by operator action. Unknown ids
// are a silent no-op.
func (s *System) ResolvePattern(patternID, notes string) {
	s.mu.Lock()
	var resolved *Pattern
	for _, p := range s.patterns {
		if p.ID == patternID {
			p.Resolved = true
			p.ResolutionNotes = notes
			p.Priority = PriorityLow
			resolved = p
			break
		}
	}
	s.mu.Unlock()

	if resolved != nil && s.logger != nil {
		s.logger.Info("error_categorization", "mark_resolved", "pattern marked as resolved",
			logging.Fields{"pattern_id": patternID, "notes": notes})
	}
}

// Sweep auto-resolves quiet patterns and regenerates insights. Run it
// periodically; it is idempotent on already-resolved patterns.
func (s *System) Sweep() {
	now := s.now()

	s.mu.Lock()
	var active int
	for sig, p := range s.patterns {
		if !p.Resolved && now.Sub(p.LastOccurrence) > quietWindow {
			p.Resolved = true
			p.Trend = TrendDecreasing
			p.Priority = PriorityLow

			if s.logger != nil {
				s.logger.Info("error_categorization", "pattern_resolved",
					"error pattern marked as resolved",
					logging.Fields{
						"signature": sig,
						"frequency": p.Frequency,
						"duration":  now.Sub(p.FirstOccurrence).String(),
					})
			}
		}
		if !p.Resolved {
			active++
		}
	}
	total := len(s.patterns)
	s.mu.Unlock()

	s.GenerateInsights()

	if s.logger != nil {
		s.logger.Debug("error_categorization", "analyze_patterns", "pattern analysis completed",
			logging.Fields{"total_patterns": total, "active_patterns": active})
	}
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
