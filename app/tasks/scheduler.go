package tasks

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/report-digest/app/feed"
	"github.com/lysyi3m/report-digest/app/metrics"
	"github.com/lysyi3m/report-digest/app/report"
	"github.com/lysyi3m/report-digest/app/store"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

var ErrRefreshInProgress = errors.New("refresh already in progress")

const (
	defaultQueueSize   = 300
	defaultTaskTimeout = 5 * time.Minute
)

type Options struct {
	WorkerCount      int
	Interval         time.Duration
	QueueSize        int
	TaskTimeout      time.Duration
	ProcessorOptions []report.Option
}

type Scheduler struct {
	configCache   *feed.ConfigCache
	digestRepo    store.DigestRepository
	fetcher       SourceFetcher
	processorOpts []report.Option
	interval      time.Duration
	workerCount   int
	taskTimeout   time.Duration
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	taskQueue     chan TaskInterface

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewScheduler(configCache *feed.ConfigCache, digestRepo store.DigestRepository, fetcher SourceFetcher, opts Options) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		configCache:   configCache,
		digestRepo:    digestRepo,
		fetcher:       fetcher,
		processorOpts: opts.ProcessorOptions,
		interval:      cmp.Or(opts.Interval, 30*time.Second),
		workerCount:   cmp.Or(opts.WorkerCount, 1),
		taskTimeout:   cmp.Or(opts.TaskTimeout, defaultTaskTimeout),
		ctx:           ctx,
		cancel:        cancel,
		taskQueue:     make(chan TaskInterface, cmp.Or(opts.QueueSize, defaultQueueSize)),
		inFlight:      make(map[string]bool),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

// Stop cancels running tasks and waits for workers to exit. Queued tasks
// are dropped.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// RefreshSource enqueues an immediate refresh of a configured source,
// ignoring its next fetch time.
func (s *Scheduler) RefreshSource(name string) error {
	config, err := s.configCache.GetConfig(name)
	if err != nil {
		return err
	}
	if !config.Settings.Enabled {
		return fmt.Errorf("source '%s' is disabled", name)
	}
	return s.enqueueProcess(config)
}

// HandleConfigChange reacts to a source file being written or removed.
// config is nil for removed sources.
func (s *Scheduler) HandleConfigChange(name string, config *feed.Config) {
	metrics.SourcesConfigured.Set(float64(s.configCache.GetConfigCount()))

	if config == nil {
		if err := s.digestRepo.DeleteDigest(name); err != nil {
			slog.Warn("Failed to delete digest of removed source", "source", name, "error", err)
		}
		return
	}

	if err := s.EnqueueTask(NewSyncSourceConfigTask(name, config, s.digestRepo)); err != nil {
		slog.Warn("Failed to enqueue SyncSourceConfigTask", "source", name, "error", err)
	}
	if !config.Settings.Enabled {
		return
	}
	if err := s.enqueueProcess(config); err != nil && !errors.Is(err, ErrRefreshInProgress) {
		slog.Warn("Failed to enqueue ProcessSourceTask", "source", name, "error", err)
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	configs := s.configCache.GetConfigs()
	metrics.SourcesConfigured.Set(float64(len(configs)))
	if len(configs) == 0 {
		slog.Debug("No source configurations found")
		return
	}

	slog.Debug("Processing source configurations", "count", len(configs))

	for _, config := range configs {
		syncTask := NewSyncSourceConfigTask(config.Name, config, s.digestRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncSourceConfigTask", "source", config.Name, "error", err)
			continue
		}

		if !config.Settings.Enabled {
			slog.Debug("Source disabled, skipping ProcessSourceTask", "source", config.Name)
			continue
		}

		if err := s.enqueueProcess(config); err != nil {
			slog.Warn("Failed to enqueue ProcessSourceTask", "source", config.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	configs := s.configCache.GetEnabledConfigs()
	if len(configs) == 0 {
		slog.Debug("No enabled source configurations found")
		return
	}

	now := time.Now().UTC()
	for _, config := range configs {
		digest, err := s.digestRepo.GetDigest(config.Name)
		if err != nil {
			slog.Warn("Failed to get digest, skipping", "source", config.Name, "error", err)
			continue
		}

		if digest != nil && digest.NextFetchAt != nil && digest.NextFetchAt.After(now) {
			slog.Debug("Source not due for refresh yet", "source", config.Name, "next_fetch_at", digest.NextFetchAt)
			continue
		}

		if err := s.enqueueProcess(config); err != nil && !errors.Is(err, ErrRefreshInProgress) {
			slog.Warn("Failed to enqueue ProcessSourceTask", "source", config.Name, "error", err)
		}
	}
}

// enqueueProcess queues a ProcessSourceTask unless one for the same source is
// already queued, running or waiting for a retry.
func (s *Scheduler) enqueueProcess(config *feed.Config) error {
	s.mu.Lock()
	if s.inFlight[config.Name] {
		s.mu.Unlock()
		return ErrRefreshInProgress
	}
	s.inFlight[config.Name] = true
	s.mu.Unlock()

	task := NewProcessSourceTask(config.Name, config, s.fetcher, s.digestRepo, s.processorOpts)
	if err := s.EnqueueTask(task); err != nil {
		s.release(task)
		return err
	}
	return nil
}

func (s *Scheduler) release(task TaskInterface) {
	base := task.Base()
	if base.Type != TaskTypeProcessSource {
		return
	}
	s.mu.Lock()
	delete(s.inFlight, base.SourceName)
	s.mu.Unlock()
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	metrics.WorkerInFlight.Inc()
	defer metrics.WorkerInFlight.Dec()

	base := task.Base()
	base.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, s.taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	metrics.TasksTotal.WithLabelValues(string(base.Type), metrics.ResultLabel(err)).Inc()

	if err == nil {
		s.release(task)
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "task", base, "error", err)

	if !base.CanRetry() {
		slog.Error("Task failed after maximum retries", "task", base, "max_retries", base.MaxRetries, "last_error", err)
		s.release(task)
		return
	}

	retryDelay := base.RetryDelay()
	slog.Warn("Task retry scheduled", "task", base, "max_retries", base.MaxRetries, "delay", retryDelay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(retryDelay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "task", base)
			s.release(task)
		case <-timer.C:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "task", base, "error", retryErr)
				s.release(task)
			}
		}
	}()
}
