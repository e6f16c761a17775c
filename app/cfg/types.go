package cfg

import "time"

const (
	FormatJSON     = "json"
	FormatSlide    = "slide"
	FormatAnalysis = "analysis"
)

type Cfg struct {
	// Server configuration
	SourcesDir        string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string
	MaxUploadSize     int64

	// Processing configuration
	ProcessingDelay time.Duration
	ParseMode       string
	ToneLatency     time.Duration

	// One-shot mode
	Input           string
	CSV             bool
	AutoSummarize   bool
	PriorityScoring bool
	AdjustTone      bool
	Format          string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// OneShot reports whether a single input should be processed and printed
// instead of starting the server.
func (c *Cfg) OneShot() bool {
	return c.Input != ""
}
