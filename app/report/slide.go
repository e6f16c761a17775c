package report

const maxSlideBullets = 5

// GenerateSlide condenses digest items into at most five bullets: the first
// blocker, the first risk, up to two tasks and up to two wins, in that order.
func GenerateSlide(items []Item) []string {
	var tasks, blockers, wins, risks []string
	for _, item := range items {
		switch item.Type {
		case ItemTask:
			tasks = append(tasks, item.Content)
		case ItemBlocker:
			blockers = append(blockers, item.Content)
		case ItemWin:
			wins = append(wins, item.Content)
		case ItemRisk:
			risks = append(risks, item.Content)
		}
	}

	bullets := make([]string, 0, maxSlideBullets)
	if len(blockers) > 0 {
		bullets = append(bullets, "Biggest Blocker: "+blockers[0])
	}
	if len(risks) > 0 {
		bullets = append(bullets, "Top Risk: "+risks[0])
	}
	for _, task := range headOf(tasks, 2) {
		bullets = append(bullets, "Task Completed: "+task)
	}
	for _, win := range headOf(wins, 2) {
		bullets = append(bullets, "Major Win: "+win)
	}

	return headOf(bullets, maxSlideBullets)
}

func headOf[T any](values []T, n int) []T {
	if len(values) > n {
		return values[:n]
	}
	return values
}
