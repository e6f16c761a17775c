package report

import (
	"fmt"
	"strings"
)

type bucket int

const (
	bucketTasksDone bucket = iota
	bucketBlockers
	bucketWins
	bucketRisks
)

type signalInput struct {
	change   string
	feedback string
}

var (
	blockerFeedbackKeywords = []string{"needs clarity", "why is this", "not relevant", "who owns this"}
	riskFeedbackKeywords    = []string{"duplicate info", "remove this", "update next week"}
	winFeedbackKeywords     = []string{"looks good"}
)

// signalRules classify a record into at most one bucket. The "barely" test in
// the risks rule can never fire because the blockers rule claims it first;
// it is kept so the table mirrors the documented classification.
var signalRules = []rule[signalInput, bucket]{
	{
		Name: "tasks_done",
		Matches: func(in signalInput) bool {
			return in.change == "yes" || in.change == "reworded"
		},
		Outcome: bucketTasksDone,
	},
	{
		Name: "blockers",
		Matches: func(in signalInput) bool {
			return in.change == "barely" || containsAny(in.feedback, blockerFeedbackKeywords...)
		},
		Outcome: bucketBlockers,
	},
	{
		Name: "wins",
		Matches: func(in signalInput) bool {
			return containsAny(in.feedback, winFeedbackKeywords...)
		},
		Outcome: bucketWins,
	},
	{
		Name: "risks",
		Matches: func(in signalInput) bool {
			return in.change == "no" || in.change == "barely" || containsAny(in.feedback, riskFeedbackKeywords...)
		},
		Outcome: bucketRisks,
	},
}

// Categorize sorts records into the four signal buckets. Records matching no
// rule are left out.
func Categorize(records []Record) Signals {
	var lists [4][]string

	for _, record := range records {
		in := signalInput{
			change:   lower(strings.TrimSpace(record.ChangedSinceLastWeek)),
			feedback: lower(strings.TrimSpace(record.Feedback)),
		}

		b, ok := firstMatch(signalRules, in)
		if !ok {
			continue
		}
		lists[b] = append(lists[b], signalSummary(record, in))
	}

	return Signals{
		TasksDone: dedupe(lists[bucketTasksDone]),
		Blockers:  dedupe(lists[bucketBlockers]),
		Wins:      dedupe(lists[bucketWins]),
		Risks:     dedupe(lists[bucketRisks]),
	}
}

func signalSummary(record Record, in signalInput) string {
	section := strings.TrimSpace(record.Section)
	if section == "" {
		section = "Unknown"
	}
	return fmt.Sprintf("Section: %s | Change: %s | Feedback: %s", section, in.change, in.feedback)
}
