package event

import (
	"errors"
	"time"
)

var ErrNoRecurrence = errors.New("event does not recur")

// NextOccurrence computes the start time of the occurrence after start.
// Daily and weekly are plain day arithmetic; monthly keeps the day of month,
// clamped to the last valid day of the target month (Jan 31 -> Feb 28/29).
// Deterministic: the same inputs always produce the same output.
func NextOccurrence(r Recurrence, start time.Time) (time.Time, error) {
	switch r {
	case RecurrenceDaily:
		return start.AddDate(0, 0, 1), nil
	case RecurrenceWeekly:
		return start.AddDate(0, 0, 7), nil
	case RecurrenceMonthly:
		return addMonthClamped(start), nil
	default:
		return time.Time{}, ErrNoRecurrence
	}
}

// addMonthClamped adds one calendar month without time.AddDate's overflow
// normalization (which would turn Jan 31 into Mar 2/3).
func addMonthClamped(t time.Time) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+1, 1, 0, 0, 0, 0, t.Location())
	if last := lastDayOfMonth(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDayOfMonth(y int, m time.Month) int {
	// day 0 of the next month
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
