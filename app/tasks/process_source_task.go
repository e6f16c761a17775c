package tasks

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/report-digest/app/feed"
	"github.com/lysyi3m/report-digest/app/metrics"
	"github.com/lysyi3m/report-digest/app/report"
	"github.com/lysyi3m/report-digest/app/store"
)

// SourceErrorContent is the digest line stored when a source cannot be fetched.
const SourceErrorContent = "Error loading report source. Please check the source and try again."

type ProcessSourceTask struct {
	Task
	SourceConfig  *feed.Config
	fetcher       SourceFetcher
	digestRepo    store.DigestRepository
	processorOpts []report.Option
}

func NewProcessSourceTask(sourceName string, sourceConfig *feed.Config, fetcher SourceFetcher, digestRepo store.DigestRepository, processorOpts []report.Option) *ProcessSourceTask {
	return &ProcessSourceTask{
		Task:          NewTask(TaskTypeProcessSource, sourceName),
		SourceConfig:  sourceConfig,
		fetcher:       fetcher,
		digestRepo:    digestRepo,
		processorOpts: processorOpts,
	}
}

func (t *ProcessSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	start := time.Now()
	doc, err := t.fetcher.Fetch(ctx, t.SourceConfig.URL, t.SourceConfig.SourceFormat(), t.SourceConfig.Timeout())
	metrics.SourceFetchTotal.WithLabelValues(metrics.ResultLabel(err)).Inc()

	now := time.Now().UTC()
	nextFetch := now.Add(t.SourceConfig.RefreshInterval())

	if err != nil {
		if saveErr := t.digestRepo.SaveDigest(t.errorDigest(err, now, nextFetch)); saveErr != nil {
			slog.Error("Failed to store error digest", "source", t.SourceName, "error", saveErr)
		}
		return fmt.Errorf("failed to fetch source: %w", err)
	}

	opts := append([]report.Option{}, t.processorOpts...)
	opts = append(opts, report.WithScoring(t.SourceConfig.ScoringOptions()))
	processor := report.NewProcessor(opts...)

	result := processor.Process(ctx, t.SourceConfig.Request(doc))
	metrics.ObserveDigest(metrics.OriginSource, doc.IsCSV, start)

	digest := store.Digest{
		Name:          t.SourceName,
		SourceURL:     t.SourceConfig.URL,
		Title:         cmp.Or(t.SourceConfig.Title, doc.Title),
		Result:        result,
		Slide:         report.GenerateSlide(result.Items),
		LastFetchedAt: &now,
		NextFetchAt:   &nextFetch,
	}

	if err := t.digestRepo.SaveDigest(digest); err != nil {
		return fmt.Errorf("failed to store digest: %w", err)
	}

	slog.Info("Task completed",
		"type", "ProcessSource",
		"source", t.SourceName,
		"duration", t.Duration(),
		"csv", doc.IsCSV,
		"items", len(result.Items))

	return nil
}

func (t *ProcessSourceTask) errorDigest(err error, now, nextFetch time.Time) store.Digest {
	items := []report.Item{{Type: report.ItemRisk, Content: SourceErrorContent, Critical: true}}

	return store.Digest{
		Name:      t.SourceName,
		SourceURL: t.SourceConfig.URL,
		Title:     t.SourceConfig.Title,
		Result: report.Result{
			Items:      items,
			StatusLine: err.Error(),
		},
		Slide:         report.GenerateSlide(items),
		LastFetchedAt: &now,
		NextFetchAt:   &nextFetch,
		LastError:     err.Error(),
	}
}
