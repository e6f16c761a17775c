package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/lysyi3m/report-digest/app/report"
	"github.com/lysyi3m/report-digest/app/store"
)

// Generator renders a stored digest as an RSS 2.0 document, one item per
// digest line.
type Generator struct {
	baseURL string
	version string
}

// NewGenerator takes the public base URL used for self links, e.g.
// "https://digest.example.com".
func NewGenerator(baseURL, version string) *Generator {
	return &Generator{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		version: version,
	}
}

func (g *Generator) Run(digest store.Digest) (string, error) {
	if digest.Name == "" {
		return "", fmt.Errorf("digest name is required")
	}

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	title := cmp.Or(digest.Title, fmt.Sprintf("Report digest: %s", digest.Name))
	g.writeElement(&buf, "title", title, 4)
	g.writeElement(&buf, "link", digest.SourceURL, 4)
	description := cmp.Or(digest.Result.StatusLine, fmt.Sprintf("Leadership digest of %s", digest.SourceURL))
	g.writeElement(&buf, "description", description, 4)

	selfLink := fmt.Sprintf("%s/feeds/%s", g.baseURL, digest.Name)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	lastBuildDate := cmp.Or(digest.UpdatedAt, time.Now().In(time.Local))
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Report-Digest/%s", g.version), 4)

	for i, item := range digest.Result.Items {
		g.writeItem(&buf, digest, i, item, lastBuildDate)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, digest store.Digest, index int, item report.Item, fallbackDate time.Time) {
	buf.WriteString("    <item>\n")

	guid := fmt.Sprintf("%s-%d-%d", digest.Name, digest.UpdatedAt.Unix(), index)
	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(guid))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", itemTitle(item), 6)
	g.writeElement(buf, "description", cmp.Or(item.Content, "No description available"), 6)
	g.writeElement(buf, "category", string(item.Type), 6)
	g.writeElement(buf, "pubDate", itemDate(item, fallbackDate).Format(time.RFC1123Z), 6)

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func itemTitle(item report.Item) string {
	prefix := string(item.Type)
	if item.Critical {
		prefix = "Critical " + prefix
	}
	if item.Priority != 0 {
		prefix = fmt.Sprintf("%s (priority %.2f)", prefix, item.Priority)
	}
	return prefix + ": " + item.Content
}

func itemDate(item report.Item, fallback time.Time) time.Time {
	if item.Date == "" {
		return fallback
	}
	parsed, err := dateparse.ParseIn(item.Date, time.UTC)
	if err != nil {
		return fallback
	}
	return parsed
}
