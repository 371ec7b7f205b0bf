package parse

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// InputLayout is the value format of a local date-time input control.
const InputLayout = "2006-01-02T15:04"

// ErrInvalidTimeFormat is returned when a string is not a well-formed date-time.
var ErrInvalidTimeFormat = errors.New("invalid time format")

var (
	// zonedLayouts carry their own offset.
	zonedLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04Z07:00"}
	// localLayouts are wall clock values read in the caller's location.
	localLayouts = []string{InputLayout, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04"}
)

// Span is a positive duration split into whole hours and remaining minutes.
type Span struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// String renders the span the way the booking views show it, e.g. "1 hr 30 mins".
func (s Span) String() string {
	if s.Hours > 0 {
		return fmt.Sprintf("%d hr %d mins", s.Hours, s.Minutes)
	}
	return fmt.Sprintf("%d mins", s.Minutes)
}

// ToLocalInputValue renders t as the wall clock of loc, truncated to the minute.
func ToLocalInputValue(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(InputLayout)
}

// ParseInputValue is the inverse of ToLocalInputValue. Values with an explicit offset
// (RFC3339 and friends) keep that offset; bare wall clock values are read in loc.
func ParseInputValue(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimeFormat)
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
}

// Duration returns the span from start to end. ok is false when end <= start,
// which callers treat as "nothing to display".
func Duration(start, end time.Time) (span Span, ok bool) {
	if !end.After(start) {
		return Span{}, false
	}
	d := end.Sub(start)
	return Span{
		Hours:   int(d / time.Hour),
		Minutes: int((d % time.Hour) / time.Minute),
	}, true
}

// InputDuration is Duration over two input values. Blank or malformed values yield ok == false.
func InputDuration(start, end string, loc *time.Location) (Span, bool) {
	if start == "" || end == "" {
		return Span{}, false
	}
	s, err := ParseInputValue(start, loc)
	if err != nil {
		return Span{}, false
	}
	e, err := ParseInputValue(end, loc)
	if err != nil {
		return Span{}, false
	}
	return Duration(s, e)
}

// IsOngoing reports whether start <= now <= end.
func IsOngoing(start, end, now time.Time) bool {
	return !now.Before(start) && !now.After(end)
}
