// Package timeofday normalizes the time and date representations the upstream
// API emits into comparable values.
//
// Every function interprets values on the wall clock of the location it is
// given. Unparseable input is reported through the ok result and never as an
// error, because most records carry optional time fields.
package timeofday

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the exclusive upper bound of a normalized time of day.
const MinutesPerDay = 24 * 60

// Missing is the ordering key used for a record without a usable start time.
// It sorts after every real time of day.
const Missing = 99999

// DateLayout is the DateKey format.
const DateLayout = "2006-01-02"

var (
	clockPattern   = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)
	dateKeyPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
)

// Layouts that carry their own zone; parsed values are converted to loc.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	time.RFC1123Z,
	time.RFC1123,
}

// Layouts without a zone; parsed as wall-clock time in loc.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var weekdayShort = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// ParseMinutes converts a time value into minutes since local midnight.
// PRE: loc may be nil (time.Local is used)
// POST: Returns (m, true) with 0 <= m < MinutesPerDay, or (0, false) if v is empty or unparseable
func ParseMinutes(v string, loc *time.Location) (int, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if clockPattern.MatchString(v) {
		hh, err := strconv.Atoi(v[0:2])
		if err != nil {
			return 0, false
		}
		mm, err := strconv.Atoi(v[3:5])
		if err != nil {
			return 0, false
		}
		m := hh*60 + mm
		if mm > 59 || m >= MinutesPerDay {
			return 0, false
		}
		return m, true
	}
	t, ok := ParseDateTime(v, loc)
	if !ok {
		return 0, false
	}
	return MinutesOf(t), true
}

// IsClock reports whether v is a valid HH:MM or HH:MM:SS time of day.
func IsClock(v string) bool {
	if !clockPattern.MatchString(v) {
		return false
	}
	_, ok := ParseMinutes(v, time.UTC)
	return ok
}

// ParseDateTime parses a datetime string and returns it on loc's wall clock.
// A bare YYYY-MM-DD is read as UTC midnight, matching how browsers parse it.
// PRE: loc may be nil (time.Local is used)
// POST: Returns (t, true) with t.Location() == loc, or (zero, false)
func ParseDateTime(v string, loc *time.Location) (time.Time, bool) {
	loc = orLocal(loc)
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.In(loc), true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(DateLayout, v); err == nil {
		return t.In(loc), true
	}
	return time.Time{}, false
}

// MinutesOf returns the minutes since midnight of t on its own wall clock.
func MinutesOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// Key returns the ordering key of a time value: its minutes, or Missing.
func Key(v string, loc *time.Location) int {
	if m, ok := ParseMinutes(v, loc); ok {
		return m
	}
	return Missing
}

// DateKey formats the calendar date of t using t's own year, month and day.
// PRE: none
// POST: Returns a zero-padded YYYY-MM-DD string
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateKey builds local midnight for a YYYY-MM-DD string.
// Impossible dates such as 2024-02-31 are rejected rather than normalized.
// PRE: loc may be nil (time.Local is used)
// POST: Returns (t, true) where DateKey(t) == s, or (zero, false)
func ParseDateKey(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) != len(DateLayout) {
		return time.Time{}, false
	}
	return parseDatePrefix(s, loc)
}

// NormalizeDateKey extracts the YYYY-MM-DD prefix of a date or datetime string.
// PRE: none
// POST: Returns the date key and true, or "" and false if v has no valid date prefix
func NormalizeDateKey(v string) (string, bool) {
	t, ok := parseDatePrefix(strings.TrimSpace(v), time.UTC)
	if !ok {
		return "", false
	}
	return DateKey(t), true
}

// WeekdayOf returns the weekday (Sunday = 0) of a date key.
// PRE: loc may be nil (time.Local is used)
// POST: Returns (0..6, true), or (0, false) if v has no valid date prefix
func WeekdayOf(v string, loc *time.Location) (int, bool) {
	t, ok := parseDatePrefix(strings.TrimSpace(v), loc)
	if !ok {
		return 0, false
	}
	return int(t.Weekday()), true
}

// WeekdayShort returns the three-letter name of a weekday number, or "".
func WeekdayShort(n int) string {
	if n < 0 || n > 6 {
		return ""
	}
	return weekdayShort[n]
}

// FormatClock renders a time value as a 12-hour label such as "4:00 PM".
// PRE: loc may be nil (time.Local is used)
// POST: Returns "" if v is empty or unparseable
func FormatClock(v string, loc *time.Location) string {
	m, ok := ParseMinutes(v, loc)
	if !ok {
		return ""
	}
	return time.Date(2000, time.January, 1, m/60, m%60, 0, 0, time.UTC).Format("3:04 PM")
}

// FormatRange renders "start – end", a single side when the other is
// unparseable, or "" when neither is.
func FormatRange(start, end string, loc *time.Location) string {
	s := FormatClock(start, loc)
	e := FormatClock(end, loc)
	switch {
	case s == "" && e == "":
		return ""
	case e == "":
		return s
	case s == "":
		return e
	}
	return s + " – " + e
}

func parseDatePrefix(s string, loc *time.Location) (time.Time, bool) {
	parts := dateKeyPattern.FindStringSubmatch(s)
	if parts == nil {
		return time.Time{}, false
	}
	y, _ := strconv.Atoi(parts[1])
	m, _ := strconv.Atoi(parts[2])
	d, _ := strconv.Atoi(parts[3])
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, orLocal(loc))
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
