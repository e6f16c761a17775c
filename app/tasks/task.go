package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeProcessSource    TaskType = "process_source"
	TaskTypeSyncSourceConfig TaskType = "sync_source_config"
)

const (
	DefaultMaxRetries = 3
	maxRetryDelay     = 30 * time.Second
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	Base() *Task
}

// Task carries the identity and retry bookkeeping shared by every task kind.
type Task struct {
	ID         string
	Type       TaskType
	SourceName string
	Attempts   int
	MaxRetries int
	startedAt  time.Time
}

func NewTask(taskType TaskType, sourceName string) Task {
	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		SourceName: sourceName,
		MaxRetries: DefaultMaxRetries,
	}
}

func (t *Task) Base() *Task {
	return t
}

// Start marks the beginning of an attempt.
func (t *Task) Start() {
	t.Attempts++
	t.startedAt = time.Now()
}

func (t *Task) Duration() time.Duration {
	if t.startedAt.IsZero() {
		return 0
	}
	return time.Since(t.startedAt)
}

func (t *Task) Retries() int {
	return max(t.Attempts-1, 0)
}

func (t *Task) CanRetry() bool {
	return t.Retries() < t.MaxRetries
}

// RetryDelay is the wait before the next attempt.
func (t *Task) RetryDelay() time.Duration {
	return retryDelayFor(t.Attempts)
}

func (t *Task) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", t.ID),
		slog.String("type", string(t.Type)),
		slog.String("source", t.SourceName),
		slog.Int("attempt", t.Attempts),
	)
}

// retryDelayFor doubles from one second per retry, capped at maxRetryDelay.
func retryDelayFor(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	if retry > 6 {
		return maxRetryDelay
	}
	return min(time.Duration(1<<uint(retry-1))*time.Second, maxRetryDelay)
}
