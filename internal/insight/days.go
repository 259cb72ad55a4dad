package insight

import (
	"sort"
	"time"
)

func sortDays(days []time.Time) {
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
}

// unionDays merges day lists into one sorted list without duplicates.
func unionDays(lists ...[]time.Time) []time.Time {
	seen := make(map[time.Time]bool)
	var out []time.Time
	for _, l := range lists {
		for _, d := range l {
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	sortDays(out)
	return out
}
