package web

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"rinkdesk/internal/application/projections"
	"rinkdesk/internal/domain/calendar"
	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/roster"
	"rinkdesk/internal/domain/timeofday"
)

const (
	icsProductID = "-//rinkdesk//calendar export//EN"
	icsUIDDomain = "@rinkdesk"
)

// eventUID builds a stable UID from the source record, or a random one when
// the record has no id.
func eventUID(kind string, id ident.ID, date string) string {
	if id.IsZero() {
		return uuid.NewString() + icsUIDDomain
	}
	uid := kind + "-" + id.String()
	if date != "" {
		uid += "-" + date
	}
	return uid + icsUIDDomain
}

func newCalendar(name string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetName(name)
	return cal
}

// atClock places minutes since midnight on day's wall clock.
func atClock(day time.Time, minutes int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, day.Location())
}

// agendaCalendar exports the classes of one day. Classes without a start
// time become all-day events.
func agendaCalendar(date string, agenda calendar.Agenda, loc *time.Location, stamp time.Time) *ical.Calendar {
	cal := newCalendar("Classes " + date)
	day, ok := timeofday.ParseDateKey(date, loc)
	if !ok {
		return cal
	}
	for _, c := range agenda.Classes {
		var sourceID ident.ID
		kind := string(c.Kind)
		switch {
		case c.Schedule != nil:
			kind, sourceID = "schedule", c.Schedule.ID
		case c.Meeting != nil:
			kind, sourceID = "meeting", c.Meeting.ID
		}
		ev := cal.AddEvent(eventUID(kind, sourceID, date))
		ev.SetDtStampTime(stamp)
		ev.SetSummary(classSummary(c.RosterName()))
		if c.Location != "" {
			ev.SetLocation(c.Location)
		}
		if desc := classDescription(c); desc != "" {
			ev.SetDescription(desc)
		}
		start, hasStart := timeofday.ParseMinutes(c.StartsAt, loc)
		if !hasStart {
			ev.SetAllDayStartAt(day)
			continue
		}
		ev.SetStartAt(atClock(day, start))
		if end, ok := timeofday.ParseMinutes(c.EndsAt, loc); ok && end > start {
			ev.SetEndAt(atClock(day, end))
		}
	}
	return cal
}

// sessionsCalendar exports a roster's upcoming sessions.
func sessionsCalendar(r roster.Roster, sessions []projections.Session, stamp time.Time) *ical.Calendar {
	cal := newCalendar(classSummary(r.Name))
	for _, s := range sessions {
		var uid string
		switch s.Kind {
		case projections.SessionWeekly:
			uid = eventUID("schedule", s.ScheduleID, s.Date)
		default:
			uid = eventUID("meeting", s.MeetingID, "")
		}
		ev := cal.AddEvent(uid)
		ev.SetDtStampTime(stamp)
		ev.SetSummary(classSummary(r.Name))
		ev.SetStartAt(s.Start)
		if s.End != nil {
			ev.SetEndAt(*s.End)
		}
		if s.Location != "" {
			ev.SetLocation(s.Location)
		}
		if s.Notes != "" {
			ev.SetDescription(s.Notes)
		}
	}
	return cal
}

func classSummary(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Class"
	}
	return name
}

// classDescription lists the class notes followed by its lesson plan titles.
func classDescription(c calendar.Class) string {
	var lines []string
	if c.Notes != "" {
		lines = append(lines, c.Notes)
	}
	for _, occ := range c.LessonPlans {
		if occ.LessonPlan != nil && occ.LessonPlan.Title != "" {
			lines = append(lines, "Lesson plan: "+occ.LessonPlan.Title)
		}
	}
	return strings.Join(lines, "\n")
}

// writeICS sends cal as a downloadable text/calendar attachment.
func writeICS(w http.ResponseWriter, filename string, cal *ical.Calendar) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`.ics"`)
	w.WriteHeader(http.StatusOK)
	if err := cal.SerializeTo(w); err != nil {
		slog.Error("ics_write_failed", "filename", filename, "error", err)
	}
}
