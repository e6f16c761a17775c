package report

import (
	"strings"
)

// ParseMode selects how rows with the wrong number of values are handled.
type ParseMode int

const (
	// ParseStrict drops rows whose value count differs from the header's.
	ParseStrict ParseMode = iota
	// ParseLenient keeps every row; missing trailing fields stay empty and
	// values beyond the header are ignored.
	ParseLenient
)

func (m ParseMode) String() string {
	if m == ParseLenient {
		return "lenient"
	}
	return "strict"
}

// ParseRecords parses CSV text leniently. Quoted fields are not supported:
// every comma separates a value.
func ParseRecords(text string) []Record {
	return ParseRecordsMode(text, ParseLenient)
}

// ParseRecordsStrict parses CSV text and drops malformed rows.
func ParseRecordsStrict(text string) []Record {
	return ParseRecordsMode(text, ParseStrict)
}

func ParseRecordsMode(text string, mode ParseMode) []Record {
	records := make([]Record, 0)

	lines := splitLines(text)
	if len(lines) < 2 {
		return records
	}

	headers := strings.Split(lines[0], ",")
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		values := strings.Split(line, ",")
		if mode == ParseStrict && len(values) != len(headers) {
			continue
		}

		records = append(records, buildRecord(headers, values))
	}

	return records
}

func splitLines(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func buildRecord(headers, values []string) Record {
	var record Record
	for i, header := range headers {
		if i >= len(values) {
			break
		}
		value := values[i]

		switch header {
		case ColumnReportDate:
			record.ReportDate = value
		case ColumnSection:
			record.Section = value
		case ColumnSubmittedBy:
			record.SubmittedBy = value
		case ColumnLeadershipViewed:
			record.LeadershipViewed = value
		case ColumnFeedback:
			record.Feedback = value
		case ColumnChangedSinceLastWeek:
			record.ChangedSinceLastWeek = value
		default:
			if record.Extra == nil {
				record.Extra = make(map[string]string)
			}
			record.Extra[header] = value
		}
	}
	return record
}
