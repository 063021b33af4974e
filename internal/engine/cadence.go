package engine

import (
	"time"

	"divvy/internal/models"
)

// DateOnly truncates a timestamp to midnight UTC. Period boundaries are
// whole days; all engine date comparisons go through this.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// endOfMonth returns the last calendar day of the given month.
// time.Date normalizes day zero of the following month.
func endOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
}

// NextBoundary returns the next non-overlapping (start, end) pair for an
// income source. anchor is the source's original start date; lastEnd is
// the end date of the last generated period, or nil if none exists yet.
// The new period starts the day after lastEnd, or on the anchor itself
// for the first period.
func NextBoundary(cadence models.Cadence, anchor time.Time, lastEnd *time.Time) (time.Time, time.Time, error) {
	var start time.Time
	if lastEnd == nil {
		start = DateOnly(anchor)
	} else {
		start = DateOnly(*lastEnd).AddDate(0, 0, 1)
	}

	var end time.Time
	switch cadence {
	case models.CadenceWeekly:
		end = start.AddDate(0, 0, 6)
	case models.CadenceBiweekly:
		end = start.AddDate(0, 0, 13)
	case models.CadenceSemimonthly:
		// Months split at day 15: day 1-15, then day 16 through the
		// month's last day (28-31, leap aware).
		if start.Day() <= 15 {
			end = time.Date(start.Year(), start.Month(), 15, 0, 0, 0, 0, time.UTC)
		} else {
			end = endOfMonth(start.Year(), start.Month())
		}
	case models.CadenceMonthly:
		end = endOfMonth(start.Year(), start.Month())
	case models.CadenceQuarterly:
		// Quarter aligned to the start month, not to calendar quarters.
		end = endOfMonth(start.Year(), start.Month()+2)
	case models.CadenceAnnual:
		// AddDate normalizes Feb 29 + 1y to Mar 1; stepping back one day
		// lands on Feb 28 in non-leap target years.
		end = start.AddDate(1, 0, 0).AddDate(0, 0, -1)
	default:
		return time.Time{}, time.Time{}, &InvalidCadenceError{Cadence: cadence}
	}

	return start, end, nil
}
