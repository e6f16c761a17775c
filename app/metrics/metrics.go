package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OriginAPI    = "api"
	OriginSource = "source"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	once sync.Once

	// DigestsProcessedTotal counts processor runs by origin and input kind.
	DigestsProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "report_digest",
		Subsystem: "processor",
		Name:      "digests_processed_total",
		Help:      "Total number of reports turned into digests, labeled by origin (api, source) and input (csv, text).",
	}, []string{"origin", "input"})

	ProcessingDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "report_digest",
		Subsystem: "processor",
		Name:      "processing_duration_seconds",
		Help:      "Time spent building a digest, including any configured delay and tone rewriting.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"origin"})

	// SourceFetchTotal counts remote source fetches by result.
	SourceFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "report_digest",
		Subsystem: "sources",
		Name:      "fetch_total",
		Help:      "Total number of report source fetches, labeled by result.",
	}, []string{"result"})

	SourcesConfigured = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "report_digest",
		Subsystem: "sources",
		Name:      "configured",
		Help:      "Number of report sources currently loaded from the sources directory.",
	})

	// WorkerInFlight is the number of tasks currently executing on scheduler workers.
	WorkerInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "report_digest",
		Subsystem: "scheduler",
		Name:      "worker_in_flight",
		Help:      "Current number of tasks being executed by scheduler workers.",
	})

	TasksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "report_digest",
		Subsystem: "scheduler",
		Name:      "tasks_total",
		Help:      "Total number of executed tasks, labeled by type and result.",
	}, []string{"type", "result"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "report_digest",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests, labeled by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "report_digest",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, labeled by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Register registers all collectors with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			DigestsProcessedTotal,
			ProcessingDurationSeconds,
			SourceFetchTotal,
			SourcesConfigured,
			WorkerInFlight,
			TasksTotal,
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
		)
	})
}

func InputLabel(isCSV bool) string {
	if isCSV {
		return "csv"
	}
	return "text"
}

func ResultLabel(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// ObserveDigest records one processor run that started at start.
func ObserveDigest(origin string, isCSV bool, start time.Time) {
	DigestsProcessedTotal.WithLabelValues(origin, InputLabel(isCSV)).Inc()
	ProcessingDurationSeconds.WithLabelValues(origin).Observe(time.Since(start).Seconds())
}
