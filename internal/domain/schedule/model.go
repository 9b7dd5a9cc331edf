package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/timeofday"
)

// Weekday is a day of the week with Sunday = 0.
// NoWeekday marks a value that did not decode to an integer in 0..6.
type Weekday int

// Weekday constants
const (
	NoWeekday Weekday = -1
	Sunday    Weekday = 0
	Monday    Weekday = 1
	Tuesday   Weekday = 2
	Wednesday Weekday = 3
	Thursday  Weekday = 4
	Friday    Weekday = 5
	Saturday  Weekday = 6
)

// Valid reports whether w is in 0..6.
func (w Weekday) Valid() bool {
	return w >= Sunday && w <= Saturday
}

// Short returns the three-letter name, or "" when invalid.
func (w Weekday) Short() string {
	return timeofday.WeekdayShort(int(w))
}

// UnmarshalJSON accepts an integer or a numeric string. Anything else,
// including null, "", fractions and out-of-range numbers, decodes to NoWeekday.
// PRE: data is a single JSON value
// POST: w is 0..6 or NoWeekday; never returns an error for scalar input
func (w *Weekday) UnmarshalJSON(data []byte) error {
	*w = NoWeekday
	data = bytes.TrimSpace(data)
	var raw string
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	case data[0] == '{' || data[0] == '[':
		return nil
	default:
		raw = string(data)
	}
	*w = ParseWeekday(raw)
	return nil
}

// MarshalJSON emits the weekday number, or null when invalid.
func (w Weekday) MarshalJSON() ([]byte, error) {
	if !w.Valid() {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(w))), nil
}

// ParseWeekday converts a textual weekday number into a Weekday.
// PRE: none
// POST: Returns 0..6, or NoWeekday if s is not an integer in range
func ParseWeekday(s string) Weekday {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoWeekday
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.Trunc(f) != f {
		return NoWeekday
	}
	w := Weekday(int(f))
	if !w.Valid() {
		return NoWeekday
	}
	return w
}

// Domain errors
var (
	ErrInvalidWeekday   = errors.New("weekday must be a number from 0 (Sunday) to 6 (Saturday)")
	ErrEmptyStartTime   = errors.New("start time cannot be empty")
	ErrEmptyEndTime     = errors.New("end time cannot be empty")
	ErrInvalidStartTime = errors.New("start time must be HH:MM")
	ErrInvalidEndTime   = errors.New("end time must be HH:MM")
	ErrEndNotAfterStart = errors.New("end time must be after start time")
	ErrLocationTooLong  = errors.New("location cannot exceed 200 characters")
	ErrEmptyRosterID    = errors.New("roster ID cannot be empty")
	ErrEmptyScheduleID  = errors.New("schedule ID cannot be empty")
)

// MaxLocationLength caps the free-text location field.
const MaxLocationLength = 200

// WeeklySchedule is a recurring weekly time slot owned by a roster.
type WeeklySchedule struct {
	ID       ident.ID `json:"id"`
	RosterID ident.ID `json:"roster_id"`
	Weekday  Weekday  `json:"weekday"`
	StartsAt string   `json:"starts_at"` // HH:MM or HH:MM:SS, sometimes a datetime
	EndsAt   string   `json:"ends_at"`
	Location string   `json:"location,omitempty"`
}

// UnmarshalJSON decodes a schedule; a missing weekday field is NoWeekday, not Sunday.
func (s *WeeklySchedule) UnmarshalJSON(data []byte) error {
	type plain WeeklySchedule
	p := plain{Weekday: NoWeekday}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = WeeklySchedule(p)
	return nil
}

// Validate checks a schedule before it is sent upstream.
// PRE: WeeklySchedule struct is populated
// POST: Returns nil if valid, the first violated rule otherwise
func (s *WeeklySchedule) Validate() error {
	if !s.Weekday.Valid() {
		return ErrInvalidWeekday
	}
	start := strings.TrimSpace(s.StartsAt)
	end := strings.TrimSpace(s.EndsAt)
	if start == "" {
		return ErrEmptyStartTime
	}
	if end == "" {
		return ErrEmptyEndTime
	}
	if !timeofday.IsClock(start) {
		return ErrInvalidStartTime
	}
	if !timeofday.IsClock(end) {
		return ErrInvalidEndTime
	}
	sm, _ := timeofday.ParseMinutes(start, time.UTC)
	em, _ := timeofday.ParseMinutes(end, time.UTC)
	if em <= sm {
		return ErrEndNotAfterStart
	}
	if len(s.Location) > MaxLocationLength {
		return ErrLocationTooLong
	}
	return nil
}

// DurationHours returns the slot duration in hours.
// PRE: StartsAt and EndsAt are parseable time values
// POST: Returns duration as float64 hours, or error if times can't be parsed
func (s *WeeklySchedule) DurationHours(loc *time.Location) (float64, error) {
	start, ok := timeofday.ParseMinutes(s.StartsAt, loc)
	if !ok {
		return 0, fmt.Errorf("invalid start time %q", s.StartsAt)
	}
	end, ok := timeofday.ParseMinutes(s.EndsAt, loc)
	if !ok {
		return 0, fmt.Errorf("invalid end time %q", s.EndsAt)
	}
	dur := end - start
	if dur <= 0 {
		dur += timeofday.MinutesPerDay // overnight
	}
	return float64(dur) / 60, nil
}

// Label renders "Mon 4:00 PM – 5:00 PM".
func (s *WeeklySchedule) Label(loc *time.Location) string {
	parts := []string{}
	if d := s.Weekday.Short(); d != "" {
		parts = append(parts, d)
	}
	if r := timeofday.FormatRange(s.StartsAt, s.EndsAt, loc); r != "" {
		parts = append(parts, r)
	}
	return strings.Join(parts, " ")
}
