package api

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/report-digest/app/feed"
	"github.com/lysyi3m/report-digest/app/metrics"
	"github.com/lysyi3m/report-digest/app/report"
	"github.com/lysyi3m/report-digest/app/source"
	"github.com/lysyi3m/report-digest/app/store"
	"github.com/lysyi3m/report-digest/app/tasks"
)

const defaultMaxUploadSize = 10 * 1024 * 1024

type HandlerOptions struct {
	ProcessorOptions []report.Option
	MaxUploadSize    int64
	Version          string
}

func NewHandler(configCache *feed.ConfigCache, digestRepo store.DigestRepository,
	scheduler tasks.TaskSchedulerInterface, generator GeneratorInterface, opts HandlerOptions) *Handler {
	return &Handler{
		configCache:   configCache,
		digestRepo:    digestRepo,
		scheduler:     scheduler,
		generator:     generator,
		processorOpts: opts.ProcessorOptions,
		maxUploadSize: cmp.Or(opts.MaxUploadSize, defaultMaxUploadSize),
		version:       cmp.Or(opts.Version, "dev"),
	}
}

// PostDigest processes a report sent as JSON or as a multipart "file" upload.
func (h *Handler) PostDigest(c *gin.Context) {
	var (
		req report.Request
		err error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req, err = h.uploadRequest(c)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report request", "details": err.Error()})
		return
	}

	start := time.Now()
	result := report.NewProcessor(h.processorOpts...).Process(c.Request.Context(), req)
	metrics.ObserveDigest(metrics.OriginAPI, req.IsCSV, start)

	c.JSON(http.StatusOK, DigestResponse{
		Result: result,
		Slide:  report.GenerateSlide(result.Items),
	})
}

func (h *Handler) uploadRequest(c *gin.Context) (report.Request, error) {
	var req report.Request

	header, err := c.FormFile("file")
	if err != nil {
		return req, fmt.Errorf("missing file field: %w", err)
	}
	if header.Size > h.maxUploadSize {
		return req, fmt.Errorf("file exceeds %d bytes", h.maxUploadSize)
	}

	file, err := header.Open()
	if err != nil {
		return req, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize))
	if err != nil {
		return req, fmt.Errorf("failed to read upload: %w", err)
	}

	format, err := source.ParseFormat(c.PostForm("format"))
	if err != nil {
		return req, err
	}
	if formBool(c, "is_csv") {
		format = source.FormatCSV
	}

	doc, err := source.Convert(data, header.Header.Get("Content-Type"), "", format)
	if err != nil {
		return req, fmt.Errorf("failed to read report: %w", err)
	}

	return report.Request{
		Input:           doc.Text,
		IsCSV:           doc.IsCSV,
		AutoSummarize:   formBool(c, "auto_summarize"),
		PriorityScoring: formBool(c, "priority_scoring"),
		AdjustTone:      formBool(c, "adjust_tone"),
	}, nil
}

func formBool(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(c.PostForm(key))
	return err == nil && value
}

func (h *Handler) PostSlide(c *gin.Context) {
	var req SlideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slide request", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, SlideResponse{Bullets: report.GenerateSlide(req.Items)})
}

// PostAnalyze runs the quick analysis over a raw CSV body. ?format=text
// returns the plain-text summary.
func (h *Handler) PostAnalyze(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Report body too large"})
		return
	}

	analysis := report.Analyze(string(body))

	if c.Query("format") == "text" {
		c.String(http.StatusOK, analysis.Text())
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (h *Handler) GetDigest(c *gin.Context) {
	digest, ok := h.loadDigest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, digest)
}

func (h *Handler) GetFeed(c *gin.Context) {
	digest, ok := h.loadDigest(c)
	if !ok {
		return
	}

	rss, err := h.generator.Run(*digest)
	if err != nil {
		slog.Error("RSS generation error", "source", digest.Name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(digest.Result.Items)))
	c.Header("X-Feed-Name", digest.Name)
	c.Header("X-Last-Updated", digest.UpdatedAt.Format(time.RFC3339))

	c.String(http.StatusOK, rss)
}

// loadDigest writes a 404 or 500 response and returns false when the named
// source has no digest to show.
func (h *Handler) loadDigest(c *gin.Context) (*store.Digest, bool) {
	name := c.Param("name")

	if _, err := h.configCache.GetConfig(name); err != nil {
		slog.Debug("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return nil, false
	}

	digest, err := h.digestRepo.GetDigest(name)
	if err != nil {
		slog.Error("Repository error", "operation", "get_digest", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Repository error"})
		return nil, false
	}

	if digest == nil || digest.LastFetchedAt == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Digest not generated yet"})
		return nil, false
	}

	return digest, true
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	if digestCount, err := h.digestRepo.GetDigestCount(); err == nil {
		health["digests"] = digestCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListSources(c *gin.Context) {
	names := h.configCache.GetConfigNames()

	sources := make([]map[string]interface{}, 0, len(names))

	for _, name := range names {
		sourceConfig, err := h.configCache.GetConfig(name)
		if err != nil {
			continue
		}

		sourceInfo := map[string]interface{}{
			"name":             sourceConfig.Name,
			"url":              sourceConfig.URL,
			"title":            sourceConfig.Title,
			"format":           sourceConfig.SourceFormat(),
			"enabled":          sourceConfig.Settings.Enabled,
			"refresh_interval": sourceConfig.RefreshInterval().String(),
		}

		if digest, err := h.digestRepo.GetDigest(name); err == nil && digest != nil {
			sourceInfo["last_fetched_at"] = digest.LastFetchedAt
			sourceInfo["next_fetch_at"] = digest.NextFetchAt
			sourceInfo["item_count"] = len(digest.Result.Items)
			if digest.LastError != "" {
				sourceInfo["last_error"] = digest.LastError
			}
		}

		sources = append(sources, sourceInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *Handler) APIGetSourceDetails(c *gin.Context) {
	name := c.Param("name")

	sourceConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Debug("Source configuration not found", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	details := map[string]interface{}{
		"name":             name,
		"url":              sourceConfig.URL,
		"title":            sourceConfig.Title,
		"format":           sourceConfig.SourceFormat(),
		"enabled":          sourceConfig.Settings.Enabled,
		"refresh_interval": sourceConfig.RefreshInterval().String(),
		"timeout":          sourceConfig.Timeout().String(),
		"auto_summarize":   sourceConfig.Settings.AutoSummarize,
		"priority_scoring": sourceConfig.Settings.PriorityScoring,
		"adjust_tone":      sourceConfig.Settings.AdjustTone,
	}

	digest, err := h.digestRepo.GetDigest(name)
	if err != nil {
		slog.Error("Repository error", "operation", "get_digest", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Repository error"})
		return
	}

	if digest != nil {
		details["digest"] = map[string]interface{}{
			"last_fetched_at": digest.LastFetchedAt,
			"next_fetch_at":   digest.NextFetchAt,
			"updated_at":      digest.UpdatedAt,
			"last_error":      digest.LastError,
			"status_line":     digest.Result.StatusLine,
			"items":           len(digest.Result.Items),
		}
	}

	c.JSON(http.StatusOK, details)
}

func (h *Handler) APIRefreshSource(c *gin.Context) {
	name := c.Param("name")

	if _, err := h.configCache.GetConfig(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
		return
	}

	err := h.scheduler.RefreshSource(name)
	switch {
	case errors.Is(err, tasks.ErrRefreshInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "Refresh already in progress"})
		return
	case err != nil:
		slog.Error("Error enqueueing refresh", "source", name, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Failed to enqueue refresh",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Refresh enqueued",
		"source":  name,
	})
}
