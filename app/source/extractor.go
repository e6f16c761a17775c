package source

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

// tableToCSV converts the first HTML table with a header and at least one
// data row into comma-separated text. Commas inside cells become spaces
// since the report parser does not support quoting.
func tableToCSV(data []byte) (string, string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", "", false
	}

	var lines []string
	doc.Find("table").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, cleanCell(cell.Text()))
		})
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, ","))
		}
	})

	if len(lines) < 2 {
		return "", "", false
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	return strings.Join(lines, "\n"), title, true
}

func cleanCell(text string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(text, ",", " ")), " ")
}

// readableText extracts the main article text of an HTML page, one
// paragraph per line.
func readableText(data []byte, pageURL string) (string, string, error) {
	if len(data) == 0 {
		return "", "", fmt.Errorf("HTML data is empty")
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(bytes.NewReader(data), parsedURL)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract content: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(article.TextContent, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", "", fmt.Errorf("no content extracted from HTML data")
	}

	return strings.Join(lines, "\n"), article.Title, nil
}

// feedToLines renders every feed entry as a single line of plain text.
func feedToLines(data []byte) (string, string, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse feed: %w", err)
	}

	lines := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		body := stripHTML(item.Description)
		if body == "" {
			body = stripHTML(item.Content)
		}

		title := strings.TrimSpace(item.Title)
		switch {
		case title != "" && body != "":
			lines = append(lines, title+": "+body)
		case title != "":
			lines = append(lines, title)
		case body != "":
			lines = append(lines, body)
		}
	}

	return strings.Join(lines, "\n"), feed.Title, nil
}

func stripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
