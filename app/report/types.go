package report

// CSV column names recognized as canonical record fields.
const (
	ColumnReportDate           = "Report_Date"
	ColumnSection              = "Section"
	ColumnSubmittedBy          = "Submitted_By"
	ColumnLeadershipViewed     = "Leadership_Viewed"
	ColumnFeedback             = "Feedback"
	ColumnChangedSinceLastWeek = "Changed_Since_Last_Week"
)

// Record is one parsed row of a status report tracker.
type Record struct {
	ReportDate           string            `json:"report_date"`
	Section              string            `json:"section"`
	SubmittedBy          string            `json:"submitted_by"`
	LeadershipViewed     string            `json:"leadership_viewed"` // "Yes" or "No"
	Feedback             string            `json:"feedback"`
	ChangedSinceLastWeek string            `json:"changed_since_last_week"` // "Yes", "No", "Barely", "Reworded"
	Extra                map[string]string `json:"extra,omitempty"`
}

// PrioritizedRecord is a Record with the features and score computed by Prioritize.
type PrioritizedRecord struct {
	Record
	Urgency       float64 `json:"urgency"`
	Impact        float64 `json:"impact"`
	Votes         float64 `json:"votes"`
	DaysSince     int     `json:"days_since"`
	RecencyScore  float64 `json:"recency_score"`
	PriorityScore float64 `json:"priority_score"`
}

// ItemType is the digest category of an Item.
type ItemType string

const (
	ItemTask    ItemType = "Task"
	ItemBlocker ItemType = "Blocker"
	ItemWin     ItemType = "Win"
	ItemRisk    ItemType = "Risk"
)

// Item is a single line of the leadership digest.
type Item struct {
	Type     ItemType `json:"type"`
	Content  string   `json:"content"`
	Critical bool     `json:"critical,omitempty"`
	Date     string   `json:"date,omitempty"`
	Priority float64  `json:"priority,omitempty"` // 0 when no score is attached
}

// Stats counts leadership review and change status across parsed records.
type Stats struct {
	Total          int `json:"total"`
	Read           int `json:"read"`
	Unread         int `json:"unread"`
	Changed        int `json:"changed"`
	ReadPercentage int `json:"read_percentage"`
}

// Signals buckets records into four deduplicated summary-line lists.
type Signals struct {
	TasksDone []string `json:"tasks_done"`
	Blockers  []string `json:"blockers"`
	Wins      []string `json:"wins"`
	Risks     []string `json:"risks"`
}

// Result is the processed report returned by Processor.Process.
type Result struct {
	Items              []Item              `json:"items"`
	StatusLine         string              `json:"status_line"`
	AutoSummarized     bool                `json:"auto_summarized,omitempty"`
	Stats              *Stats              `json:"stats,omitempty"`
	PrioritizedReports []PrioritizedRecord `json:"prioritized_reports,omitempty"`
	CategorizedSignals *Signals            `json:"categorized_signals,omitempty"`
}

// Request carries the input text and feature flags for one Process call.
type Request struct {
	Input           string `json:"input"`
	IsCSV           bool   `json:"is_csv"`
	AutoSummarize   bool   `json:"auto_summarize"`
	PriorityScoring bool   `json:"priority_scoring"`
	AdjustTone      bool   `json:"adjust_tone"`
}
