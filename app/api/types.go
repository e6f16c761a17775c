package api

import (
	"github.com/lysyi3m/report-digest/app/feed"
	"github.com/lysyi3m/report-digest/app/report"
	"github.com/lysyi3m/report-digest/app/store"
	"github.com/lysyi3m/report-digest/app/tasks"
)

type GeneratorInterface interface {
	Run(digest store.Digest) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Handler struct {
	configCache   *feed.ConfigCache
	digestRepo    store.DigestRepository
	scheduler     tasks.TaskSchedulerInterface
	generator     GeneratorInterface
	processorOpts []report.Option
	maxUploadSize int64
	version       string
}

// DigestResponse is a processed report together with its slide bullets.
type DigestResponse struct {
	report.Result
	Slide []string `json:"slide"`
}

type SlideRequest struct {
	Items []report.Item `json:"items"`
}

type SlideResponse struct {
	Bullets []string `json:"bullets"`
}
