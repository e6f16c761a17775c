package report

import "fmt"

type summaryInput struct {
	section       string
	feedback      string
	sectionLower  string
	feedbackLower string
}

// summaryRules are evaluated in order; the first match renders the sentence.
// An empty feedback is handled before these rules.
var summaryRules = []rule[summaryInput, func(summaryInput) string]{
	{
		Name: "duplicate",
		Matches: func(in summaryInput) bool {
			return containsAny(in.feedbackLower, "duplicate")
		},
		Outcome: func(in summaryInput) string {
			return fmt.Sprintf("'%s' flagged for duplicate content. Needs review.", in.section)
		},
	},
	{
		Name: "blocker",
		Matches: func(in summaryInput) bool {
			return containsAny(in.feedbackLower, "blocker", "blocked") ||
				containsAny(in.sectionLower, "blocker", "blocked")
		},
		Outcome: func(in summaryInput) string {
			return fmt.Sprintf("Blocker identified in '%s': %s.", in.section, in.feedback)
		},
	},
	{
		Name: "risk",
		Matches: func(in summaryInput) bool {
			return containsAny(in.feedbackLower, "risk") || containsAny(in.sectionLower, "risk")
		},
		Outcome: func(in summaryInput) string {
			return fmt.Sprintf("Risk noted in '%s': %s.", in.section, in.feedback)
		},
	},
	{
		Name: "win",
		Matches: func(in summaryInput) bool {
			return containsAny(in.feedbackLower, "win", "success", "achievement") ||
				containsAny(in.sectionLower, "win", "success", "achievement")
		},
		Outcome: func(in summaryInput) string {
			return fmt.Sprintf("Big win in '%s': %s.", in.section, in.feedback)
		},
	},
	{
		Name: "task",
		Matches: func(in summaryInput) bool {
			return containsAny(in.sectionLower, "task", "milestone", "progress")
		},
		Outcome: func(in summaryInput) string {
			return fmt.Sprintf("Task update: '%s' - %s.", in.section, in.feedback)
		},
	},
	{
		Name:    "generic",
		Matches: func(summaryInput) bool { return true },
		Outcome: func(in summaryInput) string {
			return fmt.Sprintf("'%s' updated: %s.", in.section, in.feedback)
		},
	},
}

// Summarize renders one sentence for each changed record, in input order.
func Summarize(records []Record) []string {
	summaries := make([]string, 0, len(records))

	for _, record := range records {
		if !isChanged(record) {
			continue
		}
		summaries = append(summaries, summarizeRecord(record))
	}

	return summaries
}

func summarizeRecord(record Record) string {
	if record.Feedback == "" {
		return fmt.Sprintf("Update in '%s': content was %s.", record.Section, lower(record.ChangedSinceLastWeek))
	}

	in := summaryInput{
		section:       record.Section,
		feedback:      record.Feedback,
		sectionLower:  lower(record.Section),
		feedbackLower: lower(record.Feedback),
	}

	render, _ := firstMatch(summaryRules, in)
	return render(in)
}
