// Package schedule implements the recurring bill period guard and next-run arithmetic.
package schedule

import (
	"time"

	"github.com/SscSPs/finance_tracker/internal/core/domain"
)

// weekAnchor is a Monday; weekly and biweekly periods are counted in blocks from it.
var weekAnchor = time.Date(1970, time.January, 5, 0, 0, 0, 0, time.UTC)

// SamePeriod reports whether last and now fall in the same period for freq.
// Both instants are compared as UTC calendar dates. Custom falls back to daily.
func SamePeriod(freq domain.Frequency, last, now time.Time) bool {
	last, now = last.UTC(), now.UTC()
	switch freq {
	case domain.Weekly:
		return block(last, 7) == block(now, 7)
	case domain.Biweekly:
		return block(last, 14) == block(now, 14)
	case domain.Monthly:
		return last.Year() == now.Year() && last.Month() == now.Month()
	case domain.Yearly:
		return last.Year() == now.Year()
	default:
		ly, lm, ld := last.Date()
		ny, nm, nd := now.Date()
		return ly == ny && lm == nm && ld == nd
	}
}

// block returns the index of the size-day block containing t, counted from weekAnchor.
func block(t time.Time, size int64) int64 {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int64(day.Sub(weekAnchor).Hours() / 24)
	if days < 0 {
		return (days - size + 1) / size
	}
	return days / size
}

// Next advances from by one period of freq. Month and year steps clamp to the
// last day of the target month, so Jan 31 is followed by Feb 28/29.
func Next(freq domain.Frequency, from time.Time) time.Time {
	switch freq {
	case domain.Weekly:
		return from.AddDate(0, 0, 7)
	case domain.Biweekly:
		return from.AddDate(0, 0, 14)
	case domain.Monthly:
		return addMonths(from, 1)
	case domain.Yearly:
		return addMonths(from, 12)
	default:
		return from.AddDate(0, 0, 1)
	}
}

func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Advance moves nextRun forward by whole periods until it is after now.
// A bill paid late therefore does not fire again for periods already missed.
func Advance(freq domain.Frequency, nextRun, now time.Time) time.Time {
	next := Next(freq, nextRun)
	for !next.After(now) {
		next = Next(freq, next)
	}
	return next
}
