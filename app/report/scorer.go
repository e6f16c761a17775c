package report

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	DefaultTopN = 10
	// DefaultImpact applies to sections missing from the impact mapping.
	DefaultImpact = 3
	// RecencyHorizonDays is the age at which the recency score reaches its floor.
	RecencyHorizonDays = 14
	minRecencyScore    = 0.5
	thumbsUp           = "👍"
)

type Weights struct {
	Urgency float64 `json:"urgency" yaml:"urgency"`
	Impact  float64 `json:"impact" yaml:"impact"`
	Recency float64 `json:"recency" yaml:"recency"`
	Votes   float64 `json:"votes" yaml:"votes"`
}

func DefaultWeights() Weights {
	return Weights{Urgency: 0.4, Impact: 0.3, Recency: 0.2, Votes: 0.1}
}

// DefaultImpactMapping returns the built-in section impact table. Keys are
// matched case-sensitively against Record.Section.
func DefaultImpactMapping() map[string]int {
	return map[string]int{
		"Sprint velocity":     5,
		"Hiring pipeline":     4,
		"Marketing campaigns": 3,
		"Design progress":     3,
		"Tech Debt":           4,
		"Product Launches":    5,
		"Customer Feedback":   4,
		"Support Issues":      4,
		"Internal Operations": 3,
		"Sales Performance":   5,
	}
}

// ScoringOptions configures Prioritize. Zero values select the defaults;
// a non-nil empty ImpactMapping gives every section DefaultImpact.
type ScoringOptions struct {
	TopN          int
	Weights       *Weights
	ImpactMapping map[string]int
}

// Prioritize scores every record and returns the TopN highest, sorted by
// descending score with ties kept in input order.
func Prioritize(records []Record, opts ScoringOptions) []PrioritizedRecord {
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	weights := DefaultWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}
	mapping := opts.ImpactMapping
	if mapping == nil {
		mapping = DefaultImpactMapping()
	}

	dates := make([]*time.Time, len(records))
	var mostRecent time.Time
	for i, record := range records {
		if parsed, ok := parseReportDate(record.ReportDate); ok {
			dates[i] = &parsed
			if parsed.After(mostRecent) {
				mostRecent = parsed
			}
		}
	}

	scored := make([]PrioritizedRecord, 0, len(records))
	for i, record := range records {
		urgency := 2.0
		if record.ChangedSinceLastWeek == "Yes" {
			urgency = 5
		}

		impact := float64(DefaultImpact)
		if value, ok := mapping[record.Section]; ok && value != 0 {
			impact = float64(value)
		}

		votes := 0.0
		if strings.TrimSpace(record.Feedback) == thumbsUp {
			votes = 1
		}

		daysSince := RecencyHorizonDays
		if dates[i] != nil {
			daysSince = int(math.Floor(mostRecent.Sub(*dates[i]).Hours() / 24))
		}
		recency := math.Max(minRecencyScore, 1-float64(daysSince)/RecencyHorizonDays)

		score := weights.Urgency*urgency +
			weights.Impact*impact +
			weights.Recency*recency*5 +
			weights.Votes*votes*5

		scored = append(scored, PrioritizedRecord{
			Record:        cloneRecord(record),
			Urgency:       urgency,
			Impact:        impact,
			Votes:         votes,
			DaysSince:     daysSince,
			RecencyScore:  recency,
			PriorityScore: score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].PriorityScore > scored[j].PriorityScore
	})

	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

func parseReportDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	parsed, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func cloneRecord(record Record) Record {
	if record.Extra == nil {
		return record
	}
	extra := make(map[string]string, len(record.Extra))
	for k, v := range record.Extra {
		extra[k] = v
	}
	record.Extra = extra
	return record
}
