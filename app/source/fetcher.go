package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/lysyi3m/report-digest/app/report"
)

const (
	DefaultTimeout = 30 * time.Second
	maxBodySize    = 10 << 20
)

type Fetcher struct {
	httpClient *http.Client
	userAgent  string
}

func NewFetcher(httpClient *http.Client, userAgent string) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// Fetch downloads url and converts the body into a Document according to
// format. A zero timeout uses DefaultTimeout.
func (f *Fetcher) Fetch(ctx context.Context, url string, format Format, timeout time.Duration) (*Document, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	data, contentType, err := f.download(ctx, url, timeout)
	if err != nil {
		return nil, err
	}

	doc, err := Convert(data, contentType, url, format)
	if err != nil {
		return nil, err
	}

	slog.Debug("Source fetched",
		"url", url,
		"content_type", contentType,
		"csv", doc.IsCSV,
		"length", len(doc.Text))

	return doc, nil
}

func (f *Fetcher) download(ctx context.Context, url string, timeout time.Duration) ([]byte, string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) > maxBodySize {
		return nil, "", fmt.Errorf("response body exceeds %d bytes", maxBodySize)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// Convert turns a raw body into a Document. It is used for fetched sources
// and for uploaded files alike.
func Convert(data []byte, contentType, pageURL string, format Format) (*Document, error) {
	k := detectKind(contentType, data)
	doc := &Document{ContentType: contentType}

	switch k {
	case kindHTML:
		if format != FormatText {
			if text, title, ok := tableToCSV(data); ok {
				doc.Text, doc.Title, doc.IsCSV = text, title, true
				return doc, nil
			}
			if format == FormatCSV {
				return nil, fmt.Errorf("no table found in HTML source")
			}
		}
		text, title, err := readableText(data, pageURL)
		if err != nil {
			return nil, err
		}
		doc.Text, doc.Title = text, title

	case kindFeed:
		if format == FormatCSV {
			return nil, fmt.Errorf("feed sources cannot be read as CSV")
		}
		text, title, err := feedToLines(data)
		if err != nil {
			return nil, err
		}
		doc.Text, doc.Title = text, title

	default:
		doc.Text = string(data)
		switch format {
		case FormatCSV:
			doc.IsCSV = true
		case FormatText:
			doc.IsCSV = false
		default:
			doc.IsCSV = k == kindCSV || looksLikeCSV(doc.Text)
		}
	}

	return doc, nil
}

func detectKind(contentType string, data []byte) kind {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = sniff(data)
	}

	switch {
	case strings.Contains(mediaType, "csv"):
		return kindCSV
	case strings.Contains(mediaType, "html"):
		return kindHTML
	case strings.Contains(mediaType, "rss"), strings.Contains(mediaType, "atom"), strings.Contains(mediaType, "xml"):
		return kindFeed
	default:
		return kindText
	}
}

func sniff(data []byte) string {
	head := bytes.ToLower(bytes.TrimSpace(data[:min(len(data), 512)]))
	if bytes.HasPrefix(head, []byte("<?xml")) || bytes.HasPrefix(head, []byte("<rss")) || bytes.HasPrefix(head, []byte("<feed")) {
		return "application/xml"
	}
	return http.DetectContentType(data)
}

// looksLikeCSV reports whether the first line is a header naming the Section column.
func looksLikeCSV(text string) bool {
	header, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	for _, column := range strings.Split(header, ",") {
		if strings.TrimSpace(column) == report.ColumnSection {
			return true
		}
	}
	return false
}
