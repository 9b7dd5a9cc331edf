package projections

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"rinkdesk/internal/domain/calendar"
	"rinkdesk/internal/domain/lessonplan"
	"rinkdesk/internal/domain/meeting"
	"rinkdesk/internal/domain/roster"
	"rinkdesk/internal/domain/timeofday"
)

// ErrInvalidDate is returned for a date that is not a real YYYY-MM-DD day.
var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// Section fallbacks shown when the API gives no message.
const (
	msgLessonPlansFailed = "Failed to load lesson plans for date"
	msgRostersFailed     = "Failed to load rosters for date"
	msgMeetingsFailed    = "Failed to load one-off meetings"
)

// GetCalendarDayQuery carries query parameters.
type GetCalendarDayQuery struct {
	Date           string // YYYY-MM-DD; "" means today
	ShowAllClasses bool
	ShowAllPlans   bool
}

// GetCalendarDayDeps holds dependencies for GetCalendarDay.
type GetCalendarDayDeps struct {
	Source   CalendarSource
	Fetch    FetchOptions
	Compare  calendar.CompareFunc
	Location *time.Location
	Now      func() time.Time
}

// SectionErrors holds the per-section failure messages; "" means loaded.
type SectionErrors struct {
	LessonPlans string `json:"lesson_plans,omitempty"`
	Rosters     string `json:"rosters,omitempty"`
	Meetings    string `json:"meetings,omitempty"`
}

// Any reports whether a section failed.
func (s SectionErrors) Any() bool {
	return s.LessonPlans != "" || s.Rosters != "" || s.Meetings != ""
}

// GetCalendarDayResult carries the query result.
type GetCalendarDayResult struct {
	Date          string                  `json:"date"`
	Weekday       string                  `json:"weekday"`
	Agenda        calendar.Agenda         `json:"-"`
	Classes       []calendar.Class        `json:"classes"`
	HiddenClasses int                     `json:"hidden_classes"`
	OtherPlans    []lessonplan.Occurrence `json:"other_lesson_plans"`
	HiddenPlans   int                     `json:"hidden_lesson_plans"`
	TotalClasses  int                     `json:"total_classes"`
	TotalPlans    int                     `json:"total_lesson_plans"`
	Errors        SectionErrors           `json:"errors"`
}

// QueryGetCalendarDay loads one day's lesson plans, rosters and one-off
// meetings concurrently and assembles the agenda.
// Each section fails on its own: its message is set and the agenda is built
// from whatever did load.
// PRE: deps.Source is non-nil
// POST: Returns ErrInvalidDate only for a malformed date; upstream failures are reported in Errors
func QueryGetCalendarDay(ctx context.Context, query GetCalendarDayQuery, deps GetCalendarDayDeps) (GetCalendarDayResult, error) {
	date, err := resolveDate(query.Date, deps.Now, deps.Location)
	if err != nil {
		return GetCalendarDayResult{}, err
	}

	var (
		occs     []lessonplan.Occurrence
		rosters  []roster.Roster
		meetings []meeting.Meeting
		errs     SectionErrors
	)

	var g errgroup.Group
	g.SetLimit(deps.Fetch.limit())
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(ctx, deps.Fetch.timeout())
		defer cancel()
		list, err := deps.Source.ListLessonPlansByDate(fctx, date)
		if err != nil {
			slog.Warn("calendar_section_failed", "section", "lesson_plans", "date", date, "error", err)
			errs.LessonPlans = sectionMessage(err, msgLessonPlansFailed)
			return nil
		}
		occs = list
		return nil
	})
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(ctx, deps.Fetch.timeout())
		defer cancel()
		list, err := deps.Source.ListRostersByDate(fctx, date)
		if err != nil {
			slog.Warn("calendar_section_failed", "section", "rosters", "date", date, "error", err)
			errs.Rosters = sectionMessage(err, msgRostersFailed)
			return nil
		}
		rosters = list
		return nil
	})
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(ctx, deps.Fetch.timeout())
		defer cancel()
		list, err := deps.Source.ListRosterMeetingsByDate(fctx, date)
		if err != nil {
			slog.Warn("calendar_section_failed", "section", "meetings", "date", date, "error", err)
			errs.Meetings = sectionMessage(err, msgMeetingsFailed)
			return nil
		}
		meetings = list
		return nil
	})
	_ = g.Wait()

	agenda := calendar.BuildAgenda(date, rosters, meetings, occs, deps.Location, deps.Compare)
	classes, hiddenClasses := agenda.VisibleClasses(query.ShowAllClasses)
	plans, hiddenPlans := agenda.VisibleOtherPlans(query.ShowAllPlans)

	weekday := ""
	if w, ok := timeofday.WeekdayOf(date, deps.Location); ok {
		weekday = timeofday.WeekdayShort(w)
	}

	return GetCalendarDayResult{
		Date:          date,
		Weekday:       weekday,
		Agenda:        agenda,
		Classes:       classes,
		HiddenClasses: hiddenClasses,
		OtherPlans:    plans,
		HiddenPlans:   hiddenPlans,
		TotalClasses:  agenda.TotalClasses,
		TotalPlans:    agenda.TotalLessonPlans,
		Errors:        errs,
	}, nil
}

// resolveDate validates a YYYY-MM-DD key, defaulting to today in loc.
func resolveDate(date string, now func() time.Time, loc *time.Location) (string, error) {
	if date == "" {
		if now == nil {
			now = time.Now
		}
		if loc == nil {
			loc = time.Local
		}
		return timeofday.DateKey(now().In(loc)), nil
	}
	t, ok := timeofday.ParseDateKey(date, loc)
	if !ok {
		return "", ErrInvalidDate
	}
	return timeofday.DateKey(t), nil
}
