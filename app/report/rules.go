package report

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// rule pairs a predicate with the outcome chosen when it is the first to match.
type rule[In, Out any] struct {
	Name    string
	Matches func(In) bool
	Outcome Out
}

// firstMatch evaluates rules in order and returns the outcome of the first match.
func firstMatch[In, Out any](rules []rule[In, Out], in In) (Out, bool) {
	for _, r := range rules {
		if r.Matches(in) {
			return r.Outcome, true
		}
	}
	var zero Out
	return zero, false
}

// lower folds s with full Unicode lowercasing. A Caser is not safe for
// concurrent use, so one is created per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func containsAny(value string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(value, keyword) {
			return true
		}
	}
	return false
}

// dedupe drops blank entries and repeats, keeping first occurrences in order.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if strings.TrimSpace(value) == "" || seen[value] {
			continue
		}
		seen[value] = true
		result = append(result, value)
	}
	return result
}
