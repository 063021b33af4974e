package engine

import (
	"errors"
	"testing"
	"time"

	"divvy/internal/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestNextBoundary(t *testing.T) {
	feb15 := date(2024, time.February, 15)
	jan7 := date(2024, time.January, 7)
	jan31 := date(2024, time.January, 31)

	tests := []struct {
		name      string
		cadence   models.Cadence
		anchor    time.Time
		lastEnd   *time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "weekly_first_period",
			cadence:   models.CadenceWeekly,
			anchor:    date(2024, time.January, 1),
			wantStart: date(2024, time.January, 1),
			wantEnd:   date(2024, time.January, 7),
		},
		{
			name:      "weekly_follows_previous_end",
			cadence:   models.CadenceWeekly,
			anchor:    date(2024, time.January, 1),
			lastEnd:   &jan7,
			wantStart: date(2024, time.January, 8),
			wantEnd:   date(2024, time.January, 14),
		},
		{
			name:      "biweekly_first_period",
			cadence:   models.CadenceBiweekly,
			anchor:    date(2024, time.January, 1),
			wantStart: date(2024, time.January, 1),
			wantEnd:   date(2024, time.January, 14),
		},
		{
			name:      "semimonthly_first_half",
			cadence:   models.CadenceSemimonthly,
			anchor:    date(2024, time.February, 1),
			wantStart: date(2024, time.February, 1),
			wantEnd:   date(2024, time.February, 15),
		},
		{
			name:      "semimonthly_second_half_leap_february",
			cadence:   models.CadenceSemimonthly,
			anchor:    date(2024, time.February, 1),
			lastEnd:   &feb15,
			wantStart: date(2024, time.February, 16),
			wantEnd:   date(2024, time.February, 29),
		},
		{
			name:      "semimonthly_second_half_plain_february",
			cadence:   models.CadenceSemimonthly,
			anchor:    date(2023, time.February, 16),
			wantStart: date(2023, time.February, 16),
			wantEnd:   date(2023, time.February, 28),
		},
		{
			name:      "semimonthly_mid_first_half_anchor",
			cadence:   models.CadenceSemimonthly,
			anchor:    date(2024, time.March, 3),
			wantStart: date(2024, time.March, 3),
			wantEnd:   date(2024, time.March, 15),
		},
		{
			name:      "monthly_runs_to_month_end",
			cadence:   models.CadenceMonthly,
			anchor:    date(2024, time.February, 10),
			wantStart: date(2024, time.February, 10),
			wantEnd:   date(2024, time.February, 29),
		},
		{
			name:      "monthly_next_period_covers_whole_month",
			cadence:   models.CadenceMonthly,
			anchor:    date(2024, time.January, 1),
			lastEnd:   &jan31,
			wantStart: date(2024, time.February, 1),
			wantEnd:   date(2024, time.February, 29),
		},
		{
			name:      "quarterly_crosses_year_boundary",
			cadence:   models.CadenceQuarterly,
			anchor:    date(2024, time.November, 5),
			wantStart: date(2024, time.November, 5),
			wantEnd:   date(2025, time.January, 31),
		},
		{
			name:      "quarterly_aligned_to_start_month",
			cadence:   models.CadenceQuarterly,
			anchor:    date(2024, time.February, 1),
			wantStart: date(2024, time.February, 1),
			wantEnd:   date(2024, time.April, 30),
		},
		{
			name:      "annual_full_year",
			cadence:   models.CadenceAnnual,
			anchor:    date(2024, time.January, 1),
			wantStart: date(2024, time.January, 1),
			wantEnd:   date(2024, time.December, 31),
		},
		{
			name:      "annual_leap_day_anchor_clamps",
			cadence:   models.CadenceAnnual,
			anchor:    date(2024, time.February, 29),
			wantStart: date(2024, time.February, 29),
			wantEnd:   date(2025, time.February, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := NextBoundary(tt.cadence, tt.anchor, tt.lastEnd)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !start.Equal(tt.wantStart) {
				t.Errorf("start: expected %s, got %s", tt.wantStart.Format(time.DateOnly), start.Format(time.DateOnly))
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("end: expected %s, got %s", tt.wantEnd.Format(time.DateOnly), end.Format(time.DateOnly))
			}
		})
	}
}

func TestNextBoundaryInvalidCadence(t *testing.T) {
	_, _, err := NextBoundary(models.Cadence("fortnightly"), date(2024, time.January, 1), nil)
	if err == nil {
		t.Fatal("expected error for unknown cadence")
	}
	var invalid *InvalidCadenceError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidCadenceError, got %T: %v", err, err)
	}
	if invalid.Cadence != "fortnightly" {
		t.Errorf("expected cadence 'fortnightly' in error, got %q", invalid.Cadence)
	}
}

func TestNextBoundaryContiguousSequence(t *testing.T) {
	// Chaining boundaries must leave no gap and no overlap between
	// consecutive periods, for every cadence.
	cadences := []models.Cadence{
		models.CadenceWeekly, models.CadenceBiweekly, models.CadenceSemimonthly,
		models.CadenceMonthly, models.CadenceQuarterly, models.CadenceAnnual,
	}
	anchor := date(2023, time.December, 28)

	for _, cadence := range cadences {
		t.Run(string(cadence), func(t *testing.T) {
			var lastEnd *time.Time
			for i := 0; i < 8; i++ {
				start, end, err := NextBoundary(cadence, anchor, lastEnd)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if lastEnd == nil {
					if !start.Equal(anchor) {
						t.Fatalf("first period must start on anchor, got %s", start.Format(time.DateOnly))
					}
				} else if !start.Equal(lastEnd.AddDate(0, 0, 1)) {
					t.Fatalf("period %d starts %s, expected day after %s", i, start.Format(time.DateOnly), lastEnd.Format(time.DateOnly))
				}
				if end.Before(start) {
					t.Fatalf("period %d ends %s before it starts %s", i, end.Format(time.DateOnly), start.Format(time.DateOnly))
				}
				endCopy := end
				lastEnd = &endCopy
			}
		})
	}
}
