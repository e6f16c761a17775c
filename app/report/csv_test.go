package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleHeader = "Report_Date,Section,Submitted_By,Leadership_Viewed,Feedback,Changed_Since_Last_Week"

func TestParseRecords_CanonicalColumns(t *testing.T) {
	text := sampleHeader + "\n" +
		"2024-04-01,Sprint velocity,Alice,No,needs clarity,Yes\n" +
		"2024-04-02,Tech Debt,Bob,Yes,looks good,No\n"

	records := ParseRecords(text)

	expected := []Record{
		{ReportDate: "2024-04-01", Section: "Sprint velocity", SubmittedBy: "Alice", LeadershipViewed: "No", Feedback: "needs clarity", ChangedSinceLastWeek: "Yes"},
		{ReportDate: "2024-04-02", Section: "Tech Debt", SubmittedBy: "Bob", LeadershipViewed: "Yes", Feedback: "looks good", ChangedSinceLastWeek: "No"},
	}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Errorf("Records mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRecords_ColumnOrderAndExtras(t *testing.T) {
	text := "Section, Owner ,Feedback\r\nHiring pipeline,Dana,on track\r\n"

	records := ParseRecords(text)

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	record := records[0]
	if record.Section != "Hiring pipeline" {
		t.Errorf("Expected section 'Hiring pipeline', got '%s'", record.Section)
	}
	if record.Feedback != "on track" {
		t.Errorf("Expected feedback 'on track', got '%s'", record.Feedback)
	}
	if record.Extra["Owner"] != "Dana" {
		t.Errorf("Expected extra column Owner=Dana, got %v", record.Extra)
	}
	if record.ReportDate != "" || record.LeadershipViewed != "" {
		t.Errorf("Expected missing canonical columns to be empty, got %+v", record)
	}
}

func TestParseRecords_EmptyInput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "  \n\n "},
		{"header only", sampleHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, mode := range []ParseMode{ParseStrict, ParseLenient} {
				records := ParseRecordsMode(tt.text, mode)
				if records == nil {
					t.Errorf("Expected non-nil slice in %s mode", mode)
				}
				if len(records) != 0 {
					t.Errorf("Expected 0 records in %s mode, got %d", mode, len(records))
				}
			}
		})
	}
}

func TestParseRecords_ModesDisagreeOnMalformedRows(t *testing.T) {
	text := sampleHeader + "\n" +
		"2024-04-01,Tech Debt,Bob,No\n" +
		"2024-04-02,Design progress,Cara,Yes,fine,No,extra\n" +
		"\n" +
		"2024-04-03,Support Issues,Eve,No,ok,Yes\n"

	strict := ParseRecordsStrict(text)
	if len(strict) != 1 {
		t.Fatalf("Expected strict parser to keep 1 record, got %d", len(strict))
	}
	if strict[0].Section != "Support Issues" {
		t.Errorf("Expected strict record 'Support Issues', got '%s'", strict[0].Section)
	}

	lenient := ParseRecords(text)
	if len(lenient) != 3 {
		t.Fatalf("Expected lenient parser to keep 3 records, got %d", len(lenient))
	}
	if lenient[0].Feedback != "" || lenient[0].ChangedSinceLastWeek != "" {
		t.Errorf("Expected missing trailing fields to be empty, got %+v", lenient[0])
	}
	if lenient[1].ChangedSinceLastWeek != "No" {
		t.Errorf("Expected overflow values to be ignored, got change '%s'", lenient[1].ChangedSinceLastWeek)
	}
	if lenient[1].Extra != nil {
		t.Errorf("Expected no extra columns for overflow values, got %v", lenient[1].Extra)
	}
}

func TestParseRecords_QuotedCommaIsNotSupported(t *testing.T) {
	text := sampleHeader + "\n" + `2024-04-01,Tech Debt,Bob,No,"fine, thanks",Yes` + "\n"

	if records := ParseRecordsStrict(text); len(records) != 0 {
		t.Errorf("Expected quoted comma to break the column count, got %d records", len(records))
	}
}

func TestParseMode_String(t *testing.T) {
	if ParseStrict.String() != "strict" {
		t.Errorf("Expected 'strict', got '%s'", ParseStrict.String())
	}
	if ParseLenient.String() != "lenient" {
		t.Errorf("Expected 'lenient', got '%s'", ParseLenient.String())
	}
}
