package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lysyi3m/report-digest/app/source"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://example.com/weekly.csv"
title: "Weekly tracker"
format: "csv"

settings:
  enabled: true
  refresh_interval: 1800
  timeout: 15
  auto_summarize: true
  priority_scoring: true
  adjust_tone: false

scoring:
  top_n: 5
  weights:
    urgency: 0.5
    impact: 0.5
    recency: 0
    votes: 0
  impact:
    "Sprint Velocity": 5
`
	writeConfig(t, tempDir, "weekly.yml", content)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 config, got %d", configCache.GetConfigCount())
	}

	config, err := configCache.GetConfig("weekly")
	if err != nil {
		t.Fatal(err)
	}

	if config.Name != "weekly" {
		t.Errorf("Expected name 'weekly', got '%s'", config.Name)
	}
	if config.URL != "https://example.com/weekly.csv" {
		t.Errorf("Expected URL 'https://example.com/weekly.csv', got '%s'", config.URL)
	}
	if config.SourceFormat() != source.FormatCSV {
		t.Errorf("Expected format csv, got %s", config.SourceFormat())
	}
	if config.RefreshInterval() != 1800*time.Second {
		t.Errorf("Expected refresh interval 1800s, got %v", config.RefreshInterval())
	}
	if config.Timeout() != 15*time.Second {
		t.Errorf("Expected timeout 15s, got %v", config.Timeout())
	}
	if !config.Settings.AutoSummarize || !config.Settings.PriorityScoring || config.Settings.AdjustTone {
		t.Errorf("Unexpected processing settings: %+v", config.Settings)
	}

	opts := config.ScoringOptions()
	if opts.TopN != 5 {
		t.Errorf("Expected top n 5, got %d", opts.TopN)
	}
	if opts.Weights == nil || opts.Weights.Urgency != 0.5 || opts.Weights.Votes != 0 {
		t.Errorf("Unexpected weights: %+v", opts.Weights)
	}
	if opts.ImpactMapping["Sprint Velocity"] != 5 {
		t.Errorf("Expected impact override for 'Sprint Velocity', got %v", opts.ImpactMapping)
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://example.com/notes.txt"

settings:
  enabled: true
`
	writeConfig(t, tempDir, "notes.yml", content)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	config, err := configCache.GetConfig("notes")
	if err != nil {
		t.Fatal(err)
	}

	if config.RefreshInterval() != 3600*time.Second {
		t.Errorf("Expected default refresh interval 3600s, got %v", config.RefreshInterval())
	}
	if config.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", config.Settings.Timeout)
	}
	if config.SourceFormat() != source.FormatAuto {
		t.Errorf("Expected default format auto, got %s", config.SourceFormat())
	}

	opts := config.ScoringOptions()
	if opts.TopN != 0 || opts.Weights != nil || opts.ImpactMapping != nil {
		t.Errorf("Expected zero scoring options to select scorer defaults, got %+v", opts)
	}
}

func TestConfigCacheInvalidConfigs(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing url", "settings:\n  enabled: true\n"},
		{"unknown format", "url: \"https://example.com\"\nformat: \"xlsx\"\n"},
		{"negative timeout", "url: \"https://example.com\"\nsettings:\n  timeout: -1\n"},
		{"negative top n", "url: \"https://example.com\"\nscoring:\n  top_n: -3\n"},
		{"negative weight", "url: \"https://example.com\"\nscoring:\n  weights:\n    urgency: -1\n"},
		{"negative impact", "url: \"https://example.com\"\nscoring:\n  impact:\n    \"Tech Debt\": -2\n"},
		{"broken yaml", "url: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			writeConfig(t, tempDir, "invalid.yml", tt.content)

			configCache := NewConfigCache(tempDir)
			if err := configCache.Run(); err == nil {
				t.Error("Expected error for invalid config")
			}
			if configCache.GetConfigCount() != 0 {
				t.Errorf("Expected invalid config not to be cached")
			}
		})
	}
}

func TestConfigCacheEmptyAndMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(t.TempDir())
	if err := configCache.Run(); err != nil {
		t.Errorf("Expected no error for empty directory, got %v", err)
	}

	missing := NewConfigCache(filepath.Join(t.TempDir(), "does-not-exist"))
	if err := missing.Run(); err != nil {
		t.Errorf("Expected no error for missing directory, got %v", err)
	}
	if missing.GetConfigCount() != 0 {
		t.Errorf("Expected 0 configs, got %d", missing.GetConfigCount())
	}
}

func TestConfigCacheEnabledNamesAndRemove(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "beta.yml", "url: \"https://example.com/b\"\nsettings:\n  enabled: true\n")
	writeConfig(t, tempDir, "alpha.yml", "url: \"https://example.com/a\"\nsettings:\n  enabled: false\n")
	writeConfig(t, tempDir, "ignored.txt", "url: \"https://example.com/c\"\n")

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	names := configCache.GetConfigNames()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("Expected sorted names [alpha beta], got %v", names)
	}

	enabled := configCache.GetEnabledConfigs()
	if len(enabled) != 1 || enabled["beta"] == nil {
		t.Errorf("Expected only beta to be enabled, got %v", enabled)
	}

	if !configCache.Remove("beta") {
		t.Error("Expected Remove to report an existing source")
	}
	if configCache.Remove("beta") {
		t.Error("Expected second Remove to report a missing source")
	}
	if _, err := configCache.GetConfig("beta"); err == nil {
		t.Error("Expected removed source to be gone")
	}
}

func TestConfigRequest(t *testing.T) {
	config := &Config{Settings: ConfigSettings{AutoSummarize: true, AdjustTone: true}}

	req := config.Request(&source.Document{Text: "a,b", IsCSV: true})

	if req.Input != "a,b" || !req.IsCSV || !req.AutoSummarize || req.PriorityScoring || !req.AdjustTone {
		t.Errorf("Unexpected request: %+v", req)
	}
}
