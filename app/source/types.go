package source

import "fmt"

// Format tells the fetcher how to interpret a source body.
type Format string

const (
	FormatAuto Format = "auto"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

func ParseFormat(value string) (Format, error) {
	switch Format(value) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatCSV, FormatText:
		return Format(value), nil
	default:
		return "", fmt.Errorf("unknown source format: %s", value)
	}
}

// Document is a fetched source reduced to the text the report processor reads.
type Document struct {
	Title       string
	Text        string
	IsCSV       bool
	ContentType string
}

type kind int

const (
	kindText kind = iota
	kindCSV
	kindHTML
	kindFeed
)

func (k kind) String() string {
	switch k {
	case kindCSV:
		return "csv"
	case kindHTML:
		return "html"
	case kindFeed:
		return "feed"
	default:
		return "text"
	}
}
