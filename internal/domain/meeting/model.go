package meeting

import (
	"errors"
	"strings"
	"time"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/roster"
	"rinkdesk/internal/domain/timeofday"
)

// Max length constants.
const (
	MaxLocationLength = 200
	MaxNotesLength    = 4000
)

// Domain errors
var (
	ErrEmptyMeetingID   = errors.New("meeting ID cannot be empty")
	ErrEmptyDate        = errors.New("date is required")
	ErrInvalidDate      = errors.New("date must be YYYY-MM-DD")
	ErrEmptyStartTime   = errors.New("start time is required")
	ErrEmptyEndTime     = errors.New("end time is required")
	ErrInvalidTime      = errors.New("times must be HH:MM")
	ErrEndNotAfterStart = errors.New("end time must be after start time")
	ErrLocationTooLong  = errors.New("location cannot exceed 200 characters")
	ErrNotesTooLong     = errors.New("notes cannot exceed 4000 characters")
)

// Meeting is a one-off, non-recurring class session of a roster.
type Meeting struct {
	ID       ident.ID       `json:"id"`
	TaughtOn string         `json:"taught_on"`
	StartsAt string         `json:"starts_at"`
	EndsAt   string         `json:"ends_at"`
	Location string         `json:"location,omitempty"`
	Notes    string         `json:"notes,omitempty"`
	Roster   *roster.Roster `json:"roster,omitempty"`
	RosterID ident.ID       `json:"roster_id,omitempty"`

	// RosterIDCamel carries the camelCase spelling some endpoints emit.
	RosterIDCamel ident.ID `json:"rosterId,omitempty"`
}

// EffectiveRosterID returns roster.id, else roster_id, else rosterId.
// INVARIANT: Meeting fields are not mutated
func (m *Meeting) EffectiveRosterID() ident.ID {
	var embedded ident.ID
	if m.Roster != nil {
		embedded = m.Roster.ID
	}
	return ident.First(embedded, m.RosterID, m.RosterIDCamel)
}

// RosterName returns the embedded roster's name, or "".
func (m *Meeting) RosterName() string {
	if m.Roster == nil {
		return ""
	}
	return m.Roster.Name
}

// Validate checks a meeting before it is sent upstream.
// PRE: Meeting struct is populated
// POST: Returns nil if date, start and end are present and well-formed
func (m *Meeting) Validate() error {
	date := strings.TrimSpace(m.TaughtOn)
	if date == "" {
		return ErrEmptyDate
	}
	if _, ok := timeofday.ParseDateKey(date, time.UTC); !ok {
		return ErrInvalidDate
	}
	start := strings.TrimSpace(m.StartsAt)
	end := strings.TrimSpace(m.EndsAt)
	if start == "" {
		return ErrEmptyStartTime
	}
	if end == "" {
		return ErrEmptyEndTime
	}
	if !timeofday.IsClock(start) || !timeofday.IsClock(end) {
		return ErrInvalidTime
	}
	sm, _ := timeofday.ParseMinutes(start, time.UTC)
	em, _ := timeofday.ParseMinutes(end, time.UTC)
	if em <= sm {
		return ErrEndNotAfterStart
	}
	if len(m.Location) > MaxLocationLength {
		return ErrLocationTooLong
	}
	if len(m.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// StartTime resolves the meeting start on loc's wall clock.
// POST: ok is false when the date or start time cannot be parsed
func (m *Meeting) StartTime(loc *time.Location) (time.Time, bool) {
	return combine(m.TaughtOn, m.StartsAt, loc)
}

// EndTime resolves the meeting end on loc's wall clock.
func (m *Meeting) EndTime(loc *time.Location) (time.Time, bool) {
	return combine(m.TaughtOn, m.EndsAt, loc)
}

func combine(date, clock string, loc *time.Location) (time.Time, bool) {
	day, ok := timeofday.ParseDateKey(date, loc)
	if !ok {
		return time.Time{}, false
	}
	minutes, ok := timeofday.ParseMinutes(clock, loc)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, day.Location()), true
}
