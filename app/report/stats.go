package report

import "math"

// ComputeStats counts review and change status over records. An empty input
// reports a 0% read percentage.
func ComputeStats(records []Record) Stats {
	stats := Stats{Total: len(records)}

	for _, record := range records {
		if record.LeadershipViewed == "No" {
			stats.Unread++
		}
		if isChanged(record) {
			stats.Changed++
		}
	}
	stats.Read = stats.Total - stats.Unread

	if stats.Total > 0 {
		stats.ReadPercentage = int(math.Round(float64(100*stats.Read) / float64(stats.Total)))
	}

	return stats
}

// isChanged treats every value other than an exact "No" as a change,
// including "Barely", "Reworded" and blanks.
func isChanged(record Record) bool {
	return record.ChangedSinceLastWeek != "No"
}
