package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/report-digest/app/api"
	"github.com/lysyi3m/report-digest/app/cfg"
	"github.com/lysyi3m/report-digest/app/feed"
	"github.com/lysyi3m/report-digest/app/metrics"
	"github.com/lysyi3m/report-digest/app/report"
	"github.com/lysyi3m/report-digest/app/source"
	"github.com/lysyi3m/report-digest/app/store"
	"github.com/lysyi3m/report-digest/app/tasks"
	"github.com/lysyi3m/report-digest/app/tone"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg.Debug)

	if appCfg.OneShot() {
		if err := runOnce(context.Background(), appCfg, os.Stdin, os.Stdout); err != nil {
			slog.Error("Failed to process report", "input", appCfg.Input, "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runServer(appCfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func processorOptions(appCfg *cfg.Cfg) []report.Option {
	parseMode := report.ParseStrict
	if appCfg.ParseMode == report.ParseLenient.String() {
		parseMode = report.ParseLenient
	}

	return []report.Option{
		report.WithDelay(appCfg.ProcessingDelay),
		report.WithParseMode(parseMode),
		report.WithRewriter(tone.NewKeywordRewriter(appCfg.ToneLatency)),
	}
}

// runOnce processes a single report file, or stdin for "-", and prints it in
// the configured format.
func runOnce(ctx context.Context, appCfg *cfg.Cfg, stdin io.Reader, stdout io.Writer) error {
	var (
		data []byte
		err  error
	)
	if appCfg.Input == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(appCfg.Input)
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	if appCfg.Format == cfg.FormatAnalysis {
		_, err := io.WriteString(stdout, report.Analyze(string(data)).Text())
		return err
	}

	format := source.FormatAuto
	if appCfg.CSV {
		format = source.FormatCSV
	}
	doc, err := source.Convert(data, "", "", format)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	result := report.NewProcessor(processorOptions(appCfg)...).Process(ctx, report.Request{
		Input:           doc.Text,
		IsCSV:           doc.IsCSV,
		AutoSummarize:   appCfg.AutoSummarize,
		PriorityScoring: appCfg.PriorityScoring,
		AdjustTone:      appCfg.AdjustTone,
	})
	slide := report.GenerateSlide(result.Items)

	if appCfg.Format == cfg.FormatSlide {
		var b strings.Builder
		for _, bullet := range slide {
			b.WriteString("- " + bullet + "\n")
		}
		_, err := io.WriteString(stdout, b.String())
		return err
	}

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(api.DigestResponse{Result: result, Slide: slide})
}

func runServer(appCfg *cfg.Cfg) error {
	slog.Info("Starting Report Digest server", "version", appCfg.Version)

	metrics.Register()

	slog.Info("Loading source configurations", "dir", appCfg.SourcesDir)
	configCache := feed.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load source configurations: %w", err)
	}
	slog.Info("Loaded source configurations", "count", configCache.GetConfigCount())

	digestRepo := store.NewMemoryRepository()
	fetcher := source.NewFetcher(&http.Client{}, appCfg.UserAgent)
	processorOpts := processorOptions(appCfg)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount)
	scheduler := tasks.NewScheduler(configCache, digestRepo, fetcher, tasks.Options{
		WorkerCount:      appCfg.WorkerCount,
		Interval:         time.Duration(appCfg.SchedulerInterval) * time.Second,
		ProcessorOptions: processorOpts,
	})
	scheduler.Start()
	defer scheduler.Stop()

	watcher := feed.NewWatcher(configCache, scheduler.HandleConfigChange)

	baseURL := appCfg.BaseUrl
	if baseURL == "" {
		baseURL = "http://localhost:" + appCfg.Port
	}
	handler := api.NewHandler(configCache, digestRepo, scheduler, feed.NewGenerator(baseURL, appCfg.Version), api.HandlerOptions{
		ProcessorOptions: processorOpts,
		MaxUploadSize:    appCfg.MaxUploadSize,
		Version:          appCfg.Version,
	})

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if _, err := os.Stat(appCfg.SourcesDir); err == nil {
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	} else {
		slog.Warn("Sources directory not available, hot reload disabled", "dir", appCfg.SourcesDir, "error", err)
	}

	g.Go(func() error {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown error: %w", err)
		}
		slog.Info("HTTP server stopped")
		return nil
	})

	err := g.Wait()
	slog.Info("Report Digest server shutdown complete")
	return err
}
