package service

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an HH:MM string.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", raw, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// After reports whether t's wall clock is strictly earlier than the time of day.
func (d TimeOfDay) After(t time.Time) bool {
	secs := t.Hour()*3600 + t.Minute()*60 + t.Second()
	return secs < d.Hour*3600+d.Minute*60
}

// String renders HH:MM.
func (d TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}

// StartOfDay returns local midnight of t in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// IsEarlyDeparture reports whether a sign-out at t, read in loc, falls on a
// weekday strictly before cutoff.
func IsEarlyDeparture(t time.Time, loc *time.Location, cutoff TimeOfDay) bool {
	lt := t.In(loc)
	switch lt.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return cutoff.After(lt)
}
