package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.January, day, hour, minute, 0, 0, time.UTC)
}

func TestWorkingHoursBetween(t *testing.T) {
	cal := DefaultCalendar(time.UTC)

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  float64
	}{
		{"same day inside window", at(15, 10, 0), at(15, 14, 0), 4},
		{"friday after close to monday morning", at(19, 17, 30), at(22, 10, 0), 9},
		{"clipped to opening and closing", at(15, 6, 0), at(15, 23, 0), 8},
		{"full working week", at(15, 0, 0), at(21, 23, 59), 48},
		{"whole sunday", at(21, 0, 0), at(21, 23, 59), 0},
		{"sunday working hours", at(21, 9, 0), at(21, 17, 0), 0},
		{"before opening only", at(15, 7, 0), at(15, 8, 30), 0},
		{"partial minutes", at(16, 16, 30), at(17, 9, 15), 0.75},
		{"end before start", at(15, 14, 0), at(15, 10, 0), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, cal.WorkingHoursBetween(tc.start, tc.end), 1e-9)
		})
	}
}

func TestWorkingHoursBetween_ZeroForEqualInstants(t *testing.T) {
	cal := DefaultCalendar(time.UTC)
	for _, ts := range []time.Time{at(15, 10, 0), at(21, 12, 0), at(19, 17, 0)} {
		assert.Zero(t, cal.WorkingHoursBetween(ts, ts))
	}
}

func TestWorkingHoursBetween_UsesCalendarLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	cal := DefaultCalendar(loc)

	// 03:30 UTC is 09:00 IST on a Monday.
	start := time.Date(2024, time.January, 15, 3, 30, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	assert.InDelta(t, 2.0, cal.WorkingHoursBetween(start, end), 1e-9)
}

func TestNewCalendar_CustomWorkdays(t *testing.T) {
	cal := NewCalendar(time.UTC, 8, 12, []time.Weekday{time.Sunday})

	assert.InDelta(t, 4.0, cal.WorkingHoursBetween(at(21, 0, 0), at(21, 23, 0)), 1e-9)
	assert.Zero(t, cal.WorkingHoursBetween(at(15, 0, 0), at(15, 23, 0)))
}
