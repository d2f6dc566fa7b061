package util

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

const DayLayout = "2006-01-02"

// ParseTimeFlexible accepts RFC3339, a plain day (YYYY-MM-DD, local midnight),
// epoch milliseconds or any layout dateparse recognises.
func ParseTimeFlexible(timeStr string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, timeStr)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.ParseInLocation(DayLayout, timeStr, time.Local)
	if err == nil {
		return t.UTC(), nil
	}

	ms, err := strconv.ParseInt(timeStr, 10, 64)
	if err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}

	t, err = dateparse.ParseIn(timeStr, time.Local)
	if err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("invalid time format: %s", timeStr)
}

// FromEpochSeconds converts a possibly fractional epoch-seconds value. Nil stays nil.
func FromEpochSeconds(sec *float64) *time.Time {
	if sec == nil || math.IsNaN(*sec) || math.IsInf(*sec, 0) {
		return nil
	}
	whole, frac := math.Modf(*sec)
	t := time.Unix(int64(whole), int64(frac*float64(time.Second)))
	return &t
}

// FromEpochInt converts an epoch-seconds column value. Zero is treated as missing.
func FromEpochInt(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0)
	return &t
}

// Day is the calendar day of t in loc.
func Day(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DayLayout)
}

// ParseDay reads a YYYY-MM-DD report date. The result is noon UTC so that
// formatting it in any report timezone yields the same calendar day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t.Add(12 * time.Hour), nil
}
