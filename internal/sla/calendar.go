// Package sla computes elapsed working hours and service-level breaches.
package sla

import (
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// Calendar is a weekly business calendar with one opening window per workday.
type Calendar struct {
	Location  *time.Location
	OpenHour  int
	CloseHour int
	Workdays  mapset.Set[time.Weekday]
}

// DefaultCalendar is Monday to Saturday, 09:00 to 17:00 in loc.
func DefaultCalendar(loc *time.Location) Calendar {
	return NewCalendar(loc, 9, 17, []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
	})
}

// NewCalendar builds a calendar from explicit settings.
func NewCalendar(loc *time.Location, openHour, closeHour int, workdays []time.Weekday) Calendar {
	if loc == nil {
		loc = time.Local
	}
	return Calendar{
		Location:  loc,
		OpenHour:  openHour,
		CloseHour: closeHour,
		Workdays:  mapset.NewSet(workdays...),
	}
}

// WorkingHoursBetween sums the overlap of [start, end] with each workday
// window. It returns 0 when end is not after start.
func (c Calendar) WorkingHoursBetween(start, end time.Time) float64 {
	if !end.After(start) || c.CloseHour <= c.OpenHour {
		return 0
	}
	loc := c.location()
	start = start.In(loc)
	end = end.In(loc)

	var total time.Duration
	day := startOfDay(start, loc)
	for !day.After(end) {
		if c.isWorkday(day.Weekday()) {
			open := time.Date(day.Year(), day.Month(), day.Day(), c.OpenHour, 0, 0, 0, loc)
			closing := time.Date(day.Year(), day.Month(), day.Day(), c.CloseHour, 0, 0, 0, loc)
			from := latest(open, start)
			to := earliest(closing, end)
			if to.After(from) {
				total += to.Sub(from)
			}
		}
		day = time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, loc)
	}
	return total.Hours()
}

func (c Calendar) isWorkday(d time.Weekday) bool {
	return c.Workdays != nil && c.Workdays.Contains(d)
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
