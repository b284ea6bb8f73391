package model

import (
	"fmt"
	"time"
)

// DateTimeLayout is the only accepted textual date-time format, e.g. "2023-01-01T00:00".
const DateTimeLayout = "2006-01-02T15:04"

// StepDuration is the simulation grid resolution.
const StepDuration = 15 * time.Minute

// DateTimeRange is the unparsed user input for a simulation window.
type DateTimeRange struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// TimeRange is a parsed, quarter-hour aligned window (UTC).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Steps returns the number of simulation steps in [Start, End).
func (r TimeRange) Steps() int {
	if !r.Start.Before(r.End) {
		return 0
	}
	d := r.End.Sub(r.Start)
	n := int(d / StepDuration)
	if d%StepDuration != 0 {
		n++
	}
	return n
}

// ParseTimeRange parses both bounds, checks their order and snaps each one
// forward to the next quarter hour.
func ParseTimeRange(r DateTimeRange) (TimeRange, error) {
	start, err := time.ParseInLocation(DateTimeLayout, r.Start, time.UTC)
	if err != nil {
		return TimeRange{}, fmt.Errorf("start %q: %w", r.Start, ErrParse)
	}
	end, err := time.ParseInLocation(DateTimeLayout, r.End, time.UTC)
	if err != nil {
		return TimeRange{}, fmt.Errorf("end %q: %w", r.End, ErrParse)
	}
	if start.After(end) {
		return TimeRange{}, fmt.Errorf("start %s is after end %s: %w", r.Start, r.End, ErrInvalidArgument)
	}
	return TimeRange{
		Start: SnapToQuarterHour(start),
		End:   SnapToQuarterHour(end),
	}, nil
}

// SnapToQuarterHour advances t to the next quarter-hour boundary when its
// minute is not already a multiple of 15. Seconds are left untouched; the
// input layout has minute precision.
func SnapToQuarterHour(t time.Time) time.Time {
	if rem := t.Minute() % 15; rem != 0 {
		return t.Add(time.Duration(15-rem) * time.Minute)
	}
	return t
}

// SameHour reports whether a and b fall in the same calendar hour (UTC).
func SameHour(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() &&
		a.Month() == b.Month() &&
		a.Day() == b.Day() &&
		a.Hour() == b.Hour()
}
