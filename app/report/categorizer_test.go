package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCategorize_Buckets(t *testing.T) {
	records := []Record{
		{Section: "Tech Debt", ChangedSinceLastWeek: " Yes ", Feedback: "Needs clarity"},
		{Section: "Design progress", ChangedSinceLastWeek: "Reworded", Feedback: ""},
		{Section: "Hiring pipeline", ChangedSinceLastWeek: "Barely", Feedback: "looks good"},
		{Section: "Support Issues", ChangedSinceLastWeek: "", Feedback: "Who owns this?"},
		{Section: "", ChangedSinceLastWeek: "", Feedback: "Looks good to me"},
		{Section: "Sales Performance", ChangedSinceLastWeek: "No", Feedback: "fine"},
		{Section: "Internal Operations", ChangedSinceLastWeek: "", Feedback: "please remove this"},
		{Section: "Marketing campaigns", ChangedSinceLastWeek: "", Feedback: "nothing to add"},
	}

	signals := Categorize(records)

	expected := Signals{
		TasksDone: []string{
			"Section: Tech Debt | Change: yes | Feedback: needs clarity",
			"Section: Design progress | Change: reworded | Feedback: ",
		},
		Blockers: []string{
			"Section: Hiring pipeline | Change: barely | Feedback: looks good",
			"Section: Support Issues | Change:  | Feedback: who owns this?",
		},
		Wins: []string{
			"Section: Unknown | Change:  | Feedback: looks good to me",
		},
		Risks: []string{
			"Section: Sales Performance | Change: no | Feedback: fine",
			"Section: Internal Operations | Change:  | Feedback: please remove this",
		},
	}
	if diff := cmp.Diff(expected, signals); diff != "" {
		t.Errorf("Signals mismatch (-want +got):\n%s", diff)
	}
}

func TestCategorize_BarelyResolvesToBlockers(t *testing.T) {
	signals := Categorize([]Record{{Section: "Tech Debt", ChangedSinceLastWeek: "Barely", Feedback: "duplicate info"}})

	if len(signals.Blockers) != 1 {
		t.Errorf("Expected 'barely' in blockers, got %+v", signals)
	}
	if len(signals.Risks) != 0 {
		t.Errorf("Expected the risks rule never to see 'barely', got %v", signals.Risks)
	}

	// The risks rule still lists "barely" on its own.
	riskRule := signalRules[len(signalRules)-1]
	if riskRule.Name != "risks" || !riskRule.Matches(signalInput{change: "barely"}) {
		t.Errorf("Expected risks rule to match 'barely' when evaluated directly")
	}
}

func TestCategorize_ChangedYesWinsOverKeywords(t *testing.T) {
	feedbacks := []string{"needs clarity", "looks good", "duplicate info", "remove this"}

	for _, feedback := range feedbacks {
		signals := Categorize([]Record{{Section: "Tech Debt", ChangedSinceLastWeek: "Yes", Feedback: feedback}})
		if len(signals.TasksDone) != 1 || len(signals.Blockers)+len(signals.Wins)+len(signals.Risks) != 0 {
			t.Errorf("Expected %q to land only in tasks done, got %+v", feedback, signals)
		}
	}
}

func TestCategorize_DedupeAndIdempotent(t *testing.T) {
	records := []Record{
		{Section: "Tech Debt", ChangedSinceLastWeek: "No", Feedback: "fine"},
		{Section: " Tech Debt ", ChangedSinceLastWeek: "no", Feedback: "FINE"},
		{Section: "Tech Debt", ChangedSinceLastWeek: "Yes", Feedback: "fine"},
	}

	first := Categorize(records)
	second := Categorize(records)

	if len(first.Risks) != 1 {
		t.Errorf("Expected duplicate summaries to collapse, got %v", first.Risks)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Expected identical results (-first +second):\n%s", diff)
	}
}

func TestCategorize_EmptyBucketsAreNonNil(t *testing.T) {
	signals := Categorize(nil)

	if signals.TasksDone == nil || signals.Blockers == nil || signals.Wins == nil || signals.Risks == nil {
		t.Errorf("Expected empty non-nil buckets, got %+v", signals)
	}
}
