package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGenerateSlide(t *testing.T) {
	tests := []struct {
		name     string
		items    []Item
		expected []string
	}{
		{
			name:     "empty",
			items:    nil,
			expected: []string{},
		},
		{
			name: "fixed category order",
			items: []Item{
				{Type: ItemWin, Content: "w1"},
				{Type: ItemTask, Content: "t1"},
				{Type: ItemRisk, Content: "r1"},
				{Type: ItemBlocker, Content: "b1"},
				{Type: ItemBlocker, Content: "b2"},
			},
			expected: []string{
				"Biggest Blocker: b1",
				"Top Risk: r1",
				"Task Completed: t1",
				"Major Win: w1",
			},
		},
		{
			name: "capped at five",
			items: []Item{
				{Type: ItemTask, Content: "t1"},
				{Type: ItemTask, Content: "t2"},
				{Type: ItemTask, Content: "t3"},
				{Type: ItemWin, Content: "w1"},
				{Type: ItemWin, Content: "w2"},
				{Type: ItemRisk, Content: "r1"},
				{Type: ItemBlocker, Content: "b1"},
			},
			expected: []string{
				"Biggest Blocker: b1",
				"Top Risk: r1",
				"Task Completed: t1",
				"Task Completed: t2",
				"Major Win: w1",
			},
		},
		{
			name: "no blockers or risks",
			items: []Item{
				{Type: ItemWin, Content: "w1"},
				{Type: ItemTask, Content: "t1"},
			},
			expected: []string{
				"Task Completed: t1",
				"Major Win: w1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bullets := GenerateSlide(tt.items)
			if diff := cmp.Diff(tt.expected, bullets); diff != "" {
				t.Errorf("Bullets mismatch (-want +got):\n%s", diff)
			}
			if len(bullets) > maxSlideBullets {
				t.Errorf("Expected at most %d bullets, got %d", maxSlideBullets, len(bullets))
			}
		})
	}
}
