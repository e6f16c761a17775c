package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/lysyi3m/report-digest/app/tone"
)

const (
	MaxItems = 5

	fallbackStatusLine = "37/60 reports reviewed by leadership this week."
	csvErrorContent    = "Error processing CSV data. Please check the format and try again."
)

// exampleItems are returned for raw text in which no line could be classified.
var exampleItems = []Item{
	{Type: ItemRisk, Content: "Security audit identified 3 critical vulnerabilities requiring immediate patching", Critical: true},
	{Type: ItemRisk, Content: "Q2 revenue projections 15% below target due to delayed product launch", Critical: true},
	{Type: ItemBlocker, Content: "API integration with payment processor blocked by missing documentation"},
	{Type: ItemWin, Content: "Customer retention increased 12% following new onboarding implementation"},
	{Type: ItemTask, Content: "Sprint velocity improved 8% this quarter through process optimization"},
}

var typeOrder = map[ItemType]int{
	ItemRisk:    0,
	ItemWin:     1,
	ItemBlocker: 2,
	ItemTask:    3,
}

type Rewriter = tone.Rewriter

type Processor struct {
	delay     time.Duration
	parseMode ParseMode
	scoring   ScoringOptions
	rewriter  Rewriter
}

type Option func(*Processor)

// WithDelay pauses every Process call for d before any work is done.
func WithDelay(d time.Duration) Option {
	return func(p *Processor) {
		p.delay = d
	}
}

func WithParseMode(mode ParseMode) Option {
	return func(p *Processor) {
		p.parseMode = mode
	}
}

func WithScoring(opts ScoringOptions) Option {
	return func(p *Processor) {
		p.scoring = opts
	}
}

// WithRewriter enables Request.AdjustTone. Without a rewriter the flag is ignored.
func WithRewriter(r Rewriter) Option {
	return func(p *Processor) {
		p.rewriter = r
	}
}

func NewProcessor(opts ...Option) *Processor {
	p := &Processor{parseMode: ParseStrict}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process builds the leadership digest for req. It never fails: CSV
// processing errors become a single critical Risk item.
func (p *Processor) Process(ctx context.Context, req Request) Result {
	p.wait(ctx)

	var result Result
	if req.IsCSV {
		result = p.processCSV(req)
	} else {
		result = Result{Items: classifyLines(req.Input)}
	}

	sortItems(result.Items)
	result.Items = headOf(result.Items, MaxItems)

	if result.Stats != nil {
		result.StatusLine = fmt.Sprintf("%d/%d reports reviewed by leadership (%d%%).",
			result.Stats.Read, result.Stats.Total, result.Stats.ReadPercentage)
	} else {
		result.StatusLine = fallbackStatusLine
	}

	if req.AdjustTone && p.rewriter != nil {
		p.adjustTone(ctx, result.Items)
	}

	return result
}

func (p *Processor) wait(ctx context.Context) {
	if p.delay <= 0 {
		return
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (p *Processor) processCSV(req Request) Result {
	return csvResult(req, func() Result {
		return p.buildCSV(req)
	})
}

// csvResult runs build through recoverCSV. AutoSummarized follows the request
// even when build panicked.
func csvResult(req Request, build func() Result) Result {
	result := recoverCSV(build)
	result.AutoSummarized = req.AutoSummarize
	return result
}

// recoverCSV runs build and turns a panic into the CSV error item.
func recoverCSV(build func() Result) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Failed to process CSV report", "error", r)
			result = Result{
				Items: []Item{{Type: ItemRisk, Content: csvErrorContent, Critical: true}},
			}
		}
	}()
	return build()
}

func (p *Processor) buildCSV(req Request) Result {
	var result Result

	records := ParseRecordsMode(req.Input, p.parseMode)
	stats := ComputeStats(records)
	result.Stats = &stats

	if req.AutoSummarize {
		result.Items = summaryItems(Summarize(records))
	} else {
		result.Items = recordItems(records)
	}

	if req.PriorityScoring {
		result.PrioritizedReports = Prioritize(records, p.scoring)
		signals := Categorize(records)
		result.CategorizedSignals = &signals
		attachPriorities(result.Items, result.PrioritizedReports)
	}

	slog.Debug("Processed CSV report",
		"records", len(records),
		"items", len(result.Items),
		"auto_summarize", req.AutoSummarize,
		"priority_scoring", req.PriorityScoring)

	return result
}

func (p *Processor) adjustTone(ctx context.Context, items []Item) {
	contents := make([]string, len(items))
	for i, item := range items {
		contents[i] = item.Content
	}

	rewritten, err := tone.RewriteEach(ctx, p.rewriter, contents)
	if err != nil {
		slog.Warn("Failed to adjust item tone, keeping original text", "error", err)
	}
	for i := range items {
		items[i].Content = rewritten[i]
	}
}

func summaryItems(summaries []string) []Item {
	items := make([]Item, 0, len(summaries))
	for _, summary := range summaries {
		s := lower(summary)
		switch {
		case strings.Contains(s, "blocker"):
			items = append(items, Item{Type: ItemBlocker, Content: summary})
		case strings.Contains(s, "risk"):
			items = append(items, Item{Type: ItemRisk, Content: summary, Critical: true})
		case containsAny(s, "win", "success"):
			items = append(items, Item{Type: ItemWin, Content: summary})
		default:
			items = append(items, Item{Type: ItemTask, Content: summary})
		}
	}
	return items
}

// recordItems templates unread changed records, then backfills with read
// changed records as tasks until MaxItems is reached.
func recordItems(records []Record) []Item {
	items := make([]Item, 0, MaxItems)

	for _, record := range records {
		if record.LeadershipViewed != "No" || !isChanged(record) {
			continue
		}
		section := lower(record.Section)
		feedback := lower(record.Feedback)
		item := Item{
			Type:    ItemTask,
			Content: fmt.Sprintf("%s: %s", record.Section, record.Feedback),
			Date:    record.ReportDate,
		}

		switch {
		case strings.Contains(section, "risk") || strings.Contains(feedback, "risk"):
			item.Type = ItemRisk
			item.Critical = true
		case strings.Contains(section, "blocker") || strings.Contains(feedback, "block"):
			item.Type = ItemBlocker
		case containsAny(section, "win", "achievement") || strings.Contains(feedback, "success"):
			item.Type = ItemWin
		}
		items = append(items, item)
	}

	for _, record := range records {
		if len(items) >= MaxItems {
			break
		}
		if record.LeadershipViewed != "Yes" || !isChanged(record) {
			continue
		}
		items = append(items, Item{
			Type:    ItemTask,
			Content: fmt.Sprintf("%s: %s", record.Section, record.Feedback),
			Date:    record.ReportDate,
		})
	}

	return items
}

// attachPriorities sets Item.Priority for items whose "Section: Feedback"
// content matches a scored record. Later records win on duplicate keys.
func attachPriorities(items []Item, scored []PrioritizedRecord) {
	priorities := make(map[string]float64, len(scored))
	for _, record := range scored {
		priorities[record.Section+":"+record.Feedback] = record.PriorityScore
	}

	for i := range items {
		section, feedback, ok := strings.Cut(items[i].Content, ":")
		if !ok {
			continue
		}
		key := strings.TrimSpace(section) + ":" + strings.TrimSpace(feedback)
		if priority := priorities[key]; priority != 0 {
			items[i].Priority = priority
		}
	}
}

// classifyLines maps each non-blank line to an item by keyword. Lines with no
// keyword are dropped.
func classifyLines(text string) []Item {
	var items []Item
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		l := lower(line)

		switch {
		case containsAny(l, "task", "complete"):
			items = append(items, Item{Type: ItemTask, Content: line})
		case containsAny(l, "block", "delay"):
			items = append(items, Item{Type: ItemBlocker, Content: line})
		case containsAny(l, "win", "success"):
			items = append(items, Item{Type: ItemWin, Content: line})
		case containsAny(l, "risk", "issue"):
			items = append(items, Item{Type: ItemRisk, Content: line, Critical: true})
		}
	}

	if len(items) == 0 {
		return append([]Item(nil), exampleItems...)
	}
	return items
}

// sortItems puts critical items first, then orders by type. Items carrying a
// priority are then reordered among their own positions by descending priority.
func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Critical != items[j].Critical {
			return items[i].Critical
		}
		return typeOrder[items[i].Type] < typeOrder[items[j].Type]
	})

	var slots []int
	var prioritized []Item
	for i, item := range items {
		if item.Priority != 0 {
			slots = append(slots, i)
			prioritized = append(prioritized, item)
		}
	}
	sort.SliceStable(prioritized, func(i, j int) bool {
		return prioritized[i].Priority > prioritized[j].Priority
	})
	for n, slot := range slots {
		items[slot] = prioritized[n]
	}
}
