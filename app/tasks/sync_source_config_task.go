package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/report-digest/app/feed"
	"github.com/lysyi3m/report-digest/app/store"
)

// SyncSourceConfigTask registers a source in the digest repository and marks
// it due when it is new or its URL changed.
type SyncSourceConfigTask struct {
	Task
	SourceConfig *feed.Config
	digestRepo   store.DigestRepository
}

func NewSyncSourceConfigTask(sourceName string, sourceConfig *feed.Config, digestRepo store.DigestRepository) *SyncSourceConfigTask {
	return &SyncSourceConfigTask{
		Task:         NewTask(TaskTypeSyncSourceConfig, sourceName),
		SourceConfig: sourceConfig,
		digestRepo:   digestRepo,
	}
}

func (t *SyncSourceConfigTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	digest, err := t.digestRepo.GetDigest(t.SourceName)
	if err != nil {
		return fmt.Errorf("failed to load digest: %w", err)
	}

	urlChanged := digest != nil && digest.SourceURL != t.SourceConfig.URL
	if digest == nil || urlChanged {
		if err := t.digestRepo.UpdateNextFetch(t.SourceName, t.SourceConfig.URL, time.Now().UTC()); err != nil {
			slog.Error("Task failed", "type", "SyncSourceConfig", "source", t.SourceName, "error", err)
			return fmt.Errorf("failed to sync source config: %w", err)
		}
	}

	slog.Info("Task completed",
		"type", "SyncSourceConfig",
		"source", t.SourceName,
		"url_changed", urlChanged,
		"duration", t.Duration())

	return nil
}
