package projections

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/meeting"
	"rinkdesk/internal/domain/roster"
	"rinkdesk/internal/domain/schedule"
	"rinkdesk/internal/domain/timeofday"
)

// Window bounds for upcoming sessions, in days.
const (
	DefaultUpcomingDays = 28
	MaxUpcomingDays     = 366
)

const msgMeetingsListFailed = "Failed to load one-off meetings"

// ErrMissingRoster is returned when no roster id is given.
var ErrMissingRoster = errors.New("roster id is required")

// rruleWeekdays maps schedule weekdays (Sunday = 0) to rrule weekdays.
var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// SessionKind distinguishes recurring from one-off sessions.
type SessionKind string

// Session kinds
const (
	SessionWeekly SessionKind = "weekly"
	SessionOneOff SessionKind = "one-off"
)

// Session is one dated class session of a roster.
type Session struct {
	Kind       SessionKind `json:"type"`
	Date       string      `json:"date"`
	Start      time.Time   `json:"starts_at"`
	End        *time.Time  `json:"ends_at,omitempty"`
	TimeLabel  string      `json:"time_label"`
	Location   string      `json:"location,omitempty"`
	Notes      string      `json:"notes,omitempty"`
	ScheduleID ident.ID    `json:"schedule_id,omitempty"`
	MeetingID  ident.ID    `json:"meeting_id,omitempty"`
}

// GetUpcomingSessionsQuery carries query parameters.
type GetUpcomingSessionsQuery struct {
	RosterID ident.ID
	From     string // YYYY-MM-DD; "" means today
	Days     int    // <= 0 means DefaultUpcomingDays
}

// GetUpcomingSessionsDeps holds dependencies for GetUpcomingSessions.
type GetUpcomingSessionsDeps struct {
	Rosters   RosterGetter
	Schedules ScheduleFetcher
	Meetings  MeetingLister
	Location  *time.Location
	Now       func() time.Time
}

// GetUpcomingSessionsResult carries the query result.
type GetUpcomingSessionsResult struct {
	Roster        roster.Roster `json:"roster"`
	From          string        `json:"from"`
	Until         string        `json:"until"`
	Sessions      []Session     `json:"sessions"`
	MeetingsError string        `json:"meetings_error,omitempty"`
}

// QueryGetUpcomingSessions lists a roster's sessions in the window starting at From.
// Weekly slots are expanded into dated sessions and merged with the roster's
// one-off meetings. A failed meeting listing is reported in MeetingsError and
// the weekly sessions are still returned.
// PRE: query.RosterID is non-empty
// POST: Sessions are ordered by start, weekly before one-off at equal starts
func QueryGetUpcomingSessions(ctx context.Context, query GetUpcomingSessionsQuery, deps GetUpcomingSessionsDeps) (GetUpcomingSessionsResult, error) {
	if query.RosterID.IsZero() {
		return GetUpcomingSessionsResult{}, ErrMissingRoster
	}
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	day, err := resolveDate(query.From, deps.Now, loc)
	if err != nil {
		return GetUpcomingSessionsResult{}, err
	}
	days := query.Days
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	days = min(days, MaxUpcomingDays)
	from, _ := timeofday.ParseDateKey(day, loc)
	until := from.AddDate(0, 0, days)

	r, err := deps.Rosters.GetRoster(ctx, query.RosterID)
	if err != nil {
		return GetUpcomingSessionsResult{}, fmt.Errorf("get roster %s: %w", query.RosterID, err)
	}
	schedules, err := deps.Schedules.ListRosterSchedules(ctx, query.RosterID)
	if err != nil {
		return GetUpcomingSessionsResult{}, fmt.Errorf("list schedules for roster %s: %w", query.RosterID, err)
	}

	res := GetUpcomingSessionsResult{
		Roster: *r,
		From:   day,
		Until:  timeofday.DateKey(until.AddDate(0, 0, -1)),
	}
	sessions := ExpandSchedules(schedules, from, until, loc)

	meetings, err := deps.Meetings.ListRosterMeetings(ctx, query.RosterID)
	if err != nil {
		slog.Warn("roster_meetings_fetch_failed", "roster_id", query.RosterID, "error", err)
		res.MeetingsError = sectionMessage(err, msgMeetingsListFailed)
	}
	sessions = append(sessions, meetingSessions(meetings, from, until, loc)...)

	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].Start.Equal(sessions[j].Start) {
			return sessions[i].Start.Before(sessions[j].Start)
		}
		return sessions[i].Kind == SessionWeekly && sessions[j].Kind != SessionWeekly
	})
	res.Sessions = sessions
	return res, nil
}

// ExpandSchedules turns weekly slots into dated sessions in [from, until).
// Slots with an invalid weekday or no parseable start are skipped. A slot
// without a parseable end yields sessions without an End.
// PRE: loc is non-nil
// POST: Returns a non-nil slice grouped by slot, each group in date order
func ExpandSchedules(schedules []schedule.WeeklySchedule, from, until time.Time, loc *time.Location) []Session {
	out := []Session{}
	for _, s := range schedules {
		if !s.Weekday.Valid() {
			continue
		}
		startMin, ok := timeofday.ParseMinutes(s.StartsAt, loc)
		if !ok {
			continue
		}
		endMin, hasEnd := timeofday.ParseMinutes(s.EndsAt, loc)

		dtstart := time.Date(from.Year(), from.Month(), from.Day(), startMin/60, startMin%60, 0, 0, loc)
		rule, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Byweekday: []rrule.Weekday{rruleWeekdays[s.Weekday]},
			Dtstart:   dtstart,
		})
		if err != nil {
			slog.Warn("schedule_expand_failed", "schedule_id", s.ID, "error", err)
			continue
		}
		for _, start := range rule.Between(from, until, true) {
			if !start.Before(until) {
				continue
			}
			sess := Session{
				Kind:       SessionWeekly,
				Date:       timeofday.DateKey(start),
				Start:      start,
				TimeLabel:  timeofday.FormatRange(s.StartsAt, s.EndsAt, loc),
				Location:   s.Location,
				ScheduleID: s.ID,
			}
			if hasEnd && endMin > startMin {
				end := time.Date(start.Year(), start.Month(), start.Day(), endMin/60, endMin%60, 0, 0, loc)
				sess.End = &end
			}
			out = append(out, sess)
		}
	}
	return out
}

func meetingSessions(meetings []meeting.Meeting, from, until time.Time, loc *time.Location) []Session {
	var out []Session
	for i := range meetings {
		m := &meetings[i]
		start, ok := m.StartTime(loc)
		if !ok || start.Before(from) || !start.Before(until) {
			continue
		}
		sess := Session{
			Kind:      SessionOneOff,
			Date:      timeofday.DateKey(start),
			Start:     start,
			TimeLabel: timeofday.FormatRange(m.StartsAt, m.EndsAt, loc),
			Location:  m.Location,
			Notes:     m.Notes,
			MeetingID: m.ID,
		}
		if end, ok := m.EndTime(loc); ok && end.After(start) {
			sess.End = &end
		}
		out = append(out, sess)
	}
	return out
}
