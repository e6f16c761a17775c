package report

import (
	"strings"
	"testing"
)

func TestSummarize_Rules(t *testing.T) {
	tests := []struct {
		name     string
		record   Record
		expected string
	}{
		{
			name:     "empty feedback",
			record:   Record{Section: "Tech Debt", ChangedSinceLastWeek: "Reworded"},
			expected: "Update in 'Tech Debt': content was reworded.",
		},
		{
			name:     "duplicate beats risk",
			record:   Record{Section: "Tech Debt", Feedback: "Duplicate of the risk log", ChangedSinceLastWeek: "Yes"},
			expected: "'Tech Debt' flagged for duplicate content. Needs review.",
		},
		{
			name:     "blocker in feedback",
			record:   Record{Section: "Design progress", Feedback: "Blocked by vendor", ChangedSinceLastWeek: "Yes"},
			expected: "Blocker identified in 'Design progress': Blocked by vendor.",
		},
		{
			name:     "blocker in section",
			record:   Record{Section: "Blockers", Feedback: "waiting on legal", ChangedSinceLastWeek: "Yes"},
			expected: "Blocker identified in 'Blockers': waiting on legal.",
		},
		{
			name:     "risk in section",
			record:   Record{Section: "Risk register", Feedback: "ok", ChangedSinceLastWeek: "Barely"},
			expected: "Risk noted in 'Risk register': ok.",
		},
		{
			name:     "win in feedback",
			record:   Record{Section: "Sales Performance", Feedback: "big success", ChangedSinceLastWeek: "Yes"},
			expected: "Big win in 'Sales Performance': big success.",
		},
		{
			name:     "task section",
			record:   Record{Section: "Milestone review", Feedback: "on time", ChangedSinceLastWeek: "Yes"},
			expected: "Task update: 'Milestone review' - on time.",
		},
		{
			name:     "generic",
			record:   Record{Section: "Hiring pipeline", Feedback: "steady", ChangedSinceLastWeek: "Yes"},
			expected: "'Hiring pipeline' updated: steady.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summaries := Summarize([]Record{tt.record})
			if len(summaries) != 1 {
				t.Fatalf("Expected 1 summary, got %d", len(summaries))
			}
			if summaries[0] != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, summaries[0])
			}
		})
	}
}

func TestSummarize_SkipsUnchangedAndKeepsOrder(t *testing.T) {
	records := []Record{
		{Section: "A", Feedback: "first", ChangedSinceLastWeek: "Yes"},
		{Section: "B", Feedback: "skipped", ChangedSinceLastWeek: "No"},
		{Section: "C", Feedback: "second", ChangedSinceLastWeek: "Barely"},
	}

	summaries := Summarize(records)

	if len(summaries) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(summaries))
	}
	if !strings.Contains(summaries[0], "first") || !strings.Contains(summaries[1], "second") {
		t.Errorf("Expected input order to be kept, got %v", summaries)
	}
}

func TestSummarize_BlockerFeedbackPrefix(t *testing.T) {
	feedbacks := []string{"blocker on auth", "New BLOCKER found", "vendor blocker, escalate"}

	for _, feedback := range feedbacks {
		summaries := Summarize([]Record{{Section: "Design progress", Feedback: feedback, ChangedSinceLastWeek: "Yes"}})
		if !strings.HasPrefix(summaries[0], "Blocker identified in") {
			t.Errorf("Expected blocker sentence for %q, got %q", feedback, summaries[0])
		}
	}
}

func TestSummarize_Empty(t *testing.T) {
	if summaries := Summarize(nil); len(summaries) != 0 {
		t.Errorf("Expected no summaries, got %v", summaries)
	}
}
