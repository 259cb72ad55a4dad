package aggregate

import (
	"time"

	"github.com/chris/mentor/internal/model"
)

// Streak is a pair of consecutive-day run lengths for one predicate.
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

const day = 24 * time.Hour

// longestRun walks forward through sorted distinct days tracking the max
// consecutive run.
func longestRun(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}
	longest, current := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == day {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

// currentRun walks backward from the last satisfied day. The run is only
// live if that day is asOf or the day before: today may not be logged yet.
func currentRun(days []time.Time, asOf time.Time) int {
	if len(days) == 0 {
		return 0
	}
	last := days[len(days)-1]
	if gap := model.Day(asOf).Sub(last); gap < 0 || gap > day {
		return 0
	}
	run := 1
	for i := len(days) - 2; i >= 0; i-- {
		if days[i+1].Sub(days[i]) != day {
			break
		}
		run++
	}
	return run
}

// ComputeStreak derives both runs from the days a predicate held.
// days must be sorted ascending, distinct and truncated to UTC midnight.
func ComputeStreak(days []time.Time, asOf time.Time) Streak {
	return Streak{Current: currentRun(days, asOf), Longest: longestRun(days)}
}
