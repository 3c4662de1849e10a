// Package cycle resolves quest recurrence boundaries. NextReset is pure and
// deterministic; callers catch up missed cycles by looping until the result
// is in the future.
package cycle

import (
	"time"

	"github.com/lifequest/engine/internal/domain"
)

// NextReset returns the next reset instant strictly after from for the given
// recurrence frequency.
//
//	hourly     -> start of the next hour
//	daily      -> next midnight
//	semiweekly -> next Monday or Thursday midnight (3/4-day alternation)
//	weekly     -> start of the next calendar week (Monday)
//	monthly    -> first of the next calendar month
func NextReset(f domain.Frequency, from time.Time) time.Time {
	switch f {
	case domain.FrequencyHourly:
		return startOfHour(from).Add(time.Hour)
	case domain.FrequencySemiWeekly:
		return nextWeekdayBoundary(from, time.Monday, time.Thursday)
	case domain.FrequencyWeekly:
		return nextWeekdayBoundary(from, time.Monday)
	case domain.FrequencyMonthly:
		y, m, _ := from.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, from.Location()).AddDate(0, 1, 0)
	default:
		// daily is also the fallback for an unknown frequency
		return startOfDay(from).AddDate(0, 0, 1)
	}
}

func startOfHour(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// nextWeekdayBoundary returns the first midnight strictly after t that falls
// on one of the given weekdays.
func nextWeekdayBoundary(t time.Time, days ...time.Weekday) time.Time {
	next := startOfDay(t).AddDate(0, 0, 1)
	for {
		for _, d := range days {
			if next.Weekday() == d {
				return next
			}
		}
		next = next.AddDate(0, 0, 1)
	}
}

// SameCalendarDay reports whether two instants fall on the same calendar day
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween returns the number of calendar-day boundaries between a and b
func DaysBetween(a, b time.Time) int {
	return int(startOfDay(b).Sub(startOfDay(a)).Hours() / 24)
}

// PeriodsUntil returns how many whole cadence periods remain between now and
// the deadline, never fewer than one.
func PeriodsUntil(c domain.Cadence, now, deadline time.Time) int {
	if !deadline.After(now) {
		return 1
	}
	var period time.Duration
	switch c {
	case domain.CadenceWeekly:
		period = 7 * 24 * time.Hour
	case domain.CadenceMonthly:
		period = 30 * 24 * time.Hour
	default:
		period = 24 * time.Hour
	}
	n := int(deadline.Sub(now) / period)
	if n < 1 {
		return 1
	}
	return n
}
