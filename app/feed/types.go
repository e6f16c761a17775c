package feed

import (
	"time"

	"github.com/lysyi3m/report-digest/app/report"
	"github.com/lysyi3m/report-digest/app/source"
)

// Config describes one report source, loaded from <name>.yml.
type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Title    string         `yaml:"title"`
	Format   string         `yaml:"format"` // csv, text or auto
	Settings ConfigSettings `yaml:"settings"`
	Scoring  ConfigScoring  `yaml:"scoring"`
}

type ConfigSettings struct {
	Enabled         bool `yaml:"enabled"`
	RefreshInterval int  `yaml:"refresh_interval"` // seconds
	Timeout         int  `yaml:"timeout"`          // seconds
	AutoSummarize   bool `yaml:"auto_summarize"`
	PriorityScoring bool `yaml:"priority_scoring"`
	AdjustTone      bool `yaml:"adjust_tone"`
}

type ConfigScoring struct {
	TopN    int             `yaml:"top_n"`
	Weights *report.Weights `yaml:"weights"`
	Impact  map[string]int  `yaml:"impact"`
}

func (c *Config) SourceFormat() source.Format {
	format, err := source.ParseFormat(c.Format)
	if err != nil {
		return source.FormatAuto
	}
	return format
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Settings.RefreshInterval) * time.Second
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Settings.Timeout) * time.Second
}

// ScoringOptions returns the scorer options for this source. An impact table
// in the file replaces the built-in one entirely.
func (c *Config) ScoringOptions() report.ScoringOptions {
	return report.ScoringOptions{
		TopN:          c.Scoring.TopN,
		Weights:       c.Scoring.Weights,
		ImpactMapping: c.Scoring.Impact,
	}
}

func (c *Config) Request(doc *source.Document) report.Request {
	return report.Request{
		Input:           doc.Text,
		IsCSV:           doc.IsCSV,
		AutoSummarize:   c.Settings.AutoSummarize,
		PriorityScoring: c.Settings.PriorityScoring,
		AdjustTone:      c.Settings.AdjustTone,
	}
}
