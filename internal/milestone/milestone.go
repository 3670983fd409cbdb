package milestone

import (
	"errors"
	"math"
	"time"
)

// Milestone is a fixed day-count threshold in a recovery streak.
type Milestone struct {
	Days  int    `json:"days"`
	Label string `json:"label"`
}

// DefaultSet is the milestone ladder shown across the app, ascending.
var DefaultSet = []Milestone{
	{Days: 1, Label: "24 Hours"},
	{Days: 7, Label: "1 Week"},
	{Days: 30, Label: "30 Days"},
	{Days: 60, Label: "60 Days"},
	{Days: 90, Label: "90 Days"},
	{Days: 180, Label: "6 Months"},
	{Days: 365, Label: "1 Year"},
	{Days: 730, Label: "2 Years"},
	{Days: 1095, Label: "3 Years"},
}

var ErrFutureCleanDate = errors.New("clean date cannot be in the future")

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysClean returns the whole days elapsed between the clean date and today.
// Both sides are normalized to local midnight so the time of day never causes
// an off-by-one. A future clean date reports 0, never a negative count.
func DaysClean(cleanDate, today time.Time) int {
	diff := startOfDay(today).Sub(startOfDay(cleanDate))
	// Round instead of floor: a DST transition makes one day 23 or 25 hours.
	days := int(math.Round(diff.Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// Next returns the smallest threshold strictly greater than days. Once the
// largest threshold is reached the set is maxed out and that threshold is
// returned.
func Next(days int, set []Milestone) Milestone {
	if len(set) == 0 {
		return Milestone{}
	}
	for _, m := range set {
		if m.Days > days {
			return m
		}
	}
	return set[len(set)-1]
}

// Previous returns the largest threshold at or below days, if one exists.
func Previous(days int, set []Milestone) (Milestone, bool) {
	for i := len(set) - 1; i >= 0; i-- {
		if set[i].Days <= days {
			return set[i], true
		}
	}
	return Milestone{}, false
}

// Progress returns the percentage toward the next milestone, in [0, 100].
// Before the first threshold the previous threshold is treated as day 0; at
// or beyond the largest threshold the result is 100.
func Progress(days int, set []Milestone) float64 {
	if len(set) == 0 {
		return 0
	}
	if days >= set[len(set)-1].Days {
		return 100
	}
	prev := 0
	if p, ok := Previous(days, set); ok {
		prev = p.Days
	}
	next := Next(days, set)
	pct := float64(days-prev) / float64(next.Days-prev) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Achieved returns every threshold at or below days, ascending.
func Achieved(days int, set []Milestone) []Milestone {
	achieved := []Milestone{}
	for _, m := range set {
		if m.Days <= days {
			achieved = append(achieved, m)
		}
	}
	return achieved
}

// ValidateCleanDate rejects clean dates after today. Comparison is at day
// granularity, so saving today's date at any time of day is accepted.
func ValidateCleanDate(date, today time.Time) error {
	if startOfDay(date).After(startOfDay(today)) {
		return ErrFutureCleanDate
	}
	return nil
}
