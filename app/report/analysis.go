package report

import (
	"fmt"
	"strings"
)

const quickAnalysisLimit = 3

// Analysis is a quick four-way scan of a tracker. Unlike Categorize, a record
// may appear in several lists and matching is case-sensitive.
type Analysis struct {
	Tasks      []string `json:"tasks"`
	Blockers   []string `json:"blockers"`
	Wins       []string `json:"wins"`
	Risks      []string `json:"risks"`
	Total      int      `json:"total"`
	Reviewed   int      `json:"reviewed"`
	StatusLine string   `json:"status_line"`
}

// Analyze parses text strictly and lists the first three tasks, blockers,
// wins and risks as "Section: Feedback" lines.
func Analyze(text string) Analysis {
	records := ParseRecordsStrict(text)

	var tasks, blockers, wins, risks []string
	unread := 0
	for _, record := range records {
		line := fmt.Sprintf("%s: %s", record.Section, record.Feedback)

		if strings.Contains(record.Section, "task") || strings.Contains(record.Feedback, "task") {
			tasks = append(tasks, line)
		}
		if strings.Contains(record.Section, "blocker") || strings.Contains(record.Feedback, "block") {
			blockers = append(blockers, line)
		}
		if strings.Contains(record.Section, "win") || strings.Contains(record.Feedback, "success") {
			wins = append(wins, line)
		}
		if strings.Contains(record.Section, "risk") || strings.Contains(record.Feedback, "risk") {
			risks = append(risks, line)
		}
		if record.LeadershipViewed == "No" {
			unread++
		}
	}

	analysis := Analysis{
		Tasks:    nonNil(headOf(tasks, quickAnalysisLimit)),
		Blockers: nonNil(headOf(blockers, quickAnalysisLimit)),
		Wins:     nonNil(headOf(wins, quickAnalysisLimit)),
		Risks:    nonNil(headOf(risks, quickAnalysisLimit)),
		Total:    len(records),
		Reviewed: len(records) - unread,
	}
	analysis.StatusLine = fmt.Sprintf("Report Status: %d/%d reports reviewed by leadership.", analysis.Reviewed, analysis.Total)

	return analysis
}

// Text renders the analysis as the plain-text report printed by the CLI.
func (a Analysis) Text() string {
	var b strings.Builder
	b.WriteString("Report Analysis Summary:\n")
	b.WriteString("----------------------\n")

	sections := []struct {
		title string
		lines []string
	}{
		{"Top Tasks:", a.Tasks},
		{"Key Blockers:", a.Blockers},
		{"Significant Wins:", a.Wins},
		{"Critical Risks:", a.Risks},
	}
	for _, section := range sections {
		b.WriteString("\n" + section.title + "\n")
		for _, line := range section.lines {
			b.WriteString("- " + line + "\n")
		}
	}

	b.WriteString("\n" + a.StatusLine + "\n")
	return b.String()
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
