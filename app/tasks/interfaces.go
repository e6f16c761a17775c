package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/report-digest/app/feed"
	"github.com/lysyi3m/report-digest/app/source"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to manage background source refreshes.
// Example usage:
//
//	scheduler := NewScheduler(configCache, digestRepo, fetcher, Options{WorkerCount: 2})
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewProcessSourceTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	RefreshSource(name string) error
	HandleConfigChange(name string, config *feed.Config)
}

// SourceFetcher downloads a report source and reduces it to processor input.
type SourceFetcher interface {
	Fetch(ctx context.Context, url string, format source.Format, timeout time.Duration) (*source.Document, error)
}
