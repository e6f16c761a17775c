package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/report-digest/app/report"
	"github.com/lysyi3m/report-digest/app/store"
)

func sampleDigest() store.Digest {
	return store.Digest{
		Name:      "weekly",
		SourceURL: "https://example.com/weekly.csv",
		UpdatedAt: time.Date(2024, 4, 5, 9, 30, 0, 0, time.UTC),
		Result: report.Result{
			StatusLine: "3/7 reports reviewed by leadership (43%).",
			Items: []report.Item{
				{Type: report.ItemRisk, Content: "Risk register: late & over budget", Critical: true, Date: "2024-04-01"},
				{Type: report.ItemTask, Content: "Tech Debt: <done>", Priority: 3.9},
			},
		},
	}
}

func TestGenerateRSS(t *testing.T) {
	generator := NewGenerator("https://digest.example.com/", "1.2.3")

	rss, err := generator.Run(sampleDigest())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(rss, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("RSS should contain XML declaration")
	}
	if !strings.Contains(rss, `href="https://digest.example.com/feeds/weekly"`) {
		t.Error("RSS should contain self link without a double slash")
	}
	if !strings.Contains(rss, "<generator>Report-Digest/1.2.3</generator>") {
		t.Error("RSS should contain generator with version")
	}
	if !strings.Contains(rss, "late &amp; over budget") {
		t.Error("RSS should escape item content")
	}
	if !strings.Contains(rss, "&lt;done&gt;") {
		t.Error("RSS should escape markup in item content")
	}
}

func TestGenerateRSS_ParsesBack(t *testing.T) {
	generator := NewGenerator("https://digest.example.com", "dev")

	rss, err := generator.Run(sampleDigest())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	parsed, err := gofeed.NewParser().ParseString(rss)
	if err != nil {
		t.Fatalf("Expected generated RSS to parse, got: %v", err)
	}

	if parsed.Title != "Report digest: weekly" {
		t.Errorf("Expected default title, got '%s'", parsed.Title)
	}
	if parsed.Description != "3/7 reports reviewed by leadership (43%)." {
		t.Errorf("Expected status line as description, got '%s'", parsed.Description)
	}
	if len(parsed.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(parsed.Items))
	}

	risk := parsed.Items[0]
	if risk.Title != "Critical Risk: Risk register: late & over budget" {
		t.Errorf("Unexpected risk title: %s", risk.Title)
	}
	if len(risk.Categories) != 1 || risk.Categories[0] != "Risk" {
		t.Errorf("Expected Risk category, got %v", risk.Categories)
	}
	if risk.PublishedParsed == nil || !risk.PublishedParsed.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected item date 2024-04-01, got %v", risk.PublishedParsed)
	}
	if risk.GUID != "weekly-1712309400-0" {
		t.Errorf("Unexpected GUID: %s", risk.GUID)
	}

	task := parsed.Items[1]
	if !strings.HasPrefix(task.Title, "Task (priority 3.90): Tech Debt:") {
		t.Errorf("Unexpected task title: %s", task.Title)
	}
	if task.PublishedParsed == nil || !task.PublishedParsed.Equal(sampleDigest().UpdatedAt) {
		t.Errorf("Expected undated item to use the digest time, got %v", task.PublishedParsed)
	}
}

func TestGenerateRSS_CustomTitleAndEmptyDigest(t *testing.T) {
	generator := NewGenerator("", "dev")

	rss, err := generator.Run(store.Digest{Name: "empty", Title: "Ops tracker"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(rss, "<title>Ops tracker</title>") {
		t.Error("RSS should use the configured title")
	}
	if strings.Contains(rss, "<item>") {
		t.Error("RSS should contain no items for an empty digest")
	}

	if _, err := generator.Run(store.Digest{}); err == nil {
		t.Error("Expected error for a digest without a name")
	}
}
