package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Server configuration
	SourcesDir        string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing report source configuration files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://digest.example.com)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for source processing"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	MaxUploadSize     int64  `long:"max-upload-size" env:"MAX_UPLOAD_SIZE" default:"10485760" description:"Maximum size in bytes of an uploaded report"`

	// Processing configuration
	ProcessingDelay int    `long:"processing-delay" env:"PROCESSING_DELAY" default:"0" description:"Artificial delay in milliseconds before each report is processed"`
	ParseMode       string `long:"parse-mode" env:"PARSE_MODE" default:"strict" choice:"strict" choice:"lenient" description:"How CSV rows with a wrong number of values are handled"`
	ToneLatency     int    `long:"tone-latency" env:"TONE_LATENCY" default:"0" description:"Simulated latency in milliseconds of the tone rewriting service"`

	// One-shot mode
	Input           string `long:"input" short:"i" description:"Process a single report file ('-' for stdin) and exit"`
	CSV             bool   `long:"csv" description:"Treat the input as a CSV tracker"`
	AutoSummarize   bool   `long:"auto-summarize" description:"Summarize CSV records instead of listing them"`
	PriorityScoring bool   `long:"priority-scoring" description:"Score and categorize CSV records"`
	AdjustTone      bool   `long:"adjust-tone" description:"Rewrite digest items for leadership"`
	Format          string `long:"format" short:"f" default:"json" choice:"json" choice:"slide" choice:"analysis" description:"Output format of one-shot mode"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Report Digest/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load parses the command line and environment. It returns nil, nil when
// help was requested.
func Load() (*Cfg, error) {
	cfg, err := load(os.Args[1:])
	if err != nil || cfg == nil {
		return nil, err
	}

	globalCfg = cfg
	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be positive, got %d", raw.WorkerCount)
	}
	if raw.SchedulerInterval < 1 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %d", raw.SchedulerInterval)
	}
	if raw.ProcessingDelay < 0 || raw.ToneLatency < 0 {
		return nil, fmt.Errorf("processing delay and tone latency cannot be negative")
	}

	cfg := &Cfg{
		SourcesDir:        raw.SourcesDir,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		MaxUploadSize:     raw.MaxUploadSize,
		ProcessingDelay:   time.Duration(raw.ProcessingDelay) * time.Millisecond,
		ParseMode:         raw.ParseMode,
		ToneLatency:       time.Duration(raw.ToneLatency) * time.Millisecond,
		Input:             raw.Input,
		CSV:               raw.CSV,
		AutoSummarize:     raw.AutoSummarize,
		PriorityScoring:   raw.PriorityScoring,
		AdjustTone:        raw.AdjustTone,
		Format:            raw.Format,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

func applyTimezone(timezone string) error {
	if timezone == "" {
		return nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	time.Local = loc
	return nil
}
