package web

import (
	"net/http"

	"rinkdesk/internal/application/projections"
	"rinkdesk/internal/domain/calendar"
)

// classView adds rendered notes to a calendar class.
type classView struct {
	calendar.Class
	NotesHTML string `json:"notes_html,omitempty"`
}

// calendarDayResponse is the JSON shape of GET /api/calendar.
type calendarDayResponse struct {
	projections.GetCalendarDayResult
	Classes []classView `json:"classes"`
}

func (s *server) calendarDay(r *http.Request) (projections.GetCalendarDayResult, error) {
	return projections.QueryGetCalendarDay(r.Context(), projections.GetCalendarDayQuery{
		Date:           r.URL.Query().Get("date"),
		ShowAllClasses: queryBool(r, "show_all_classes"),
		ShowAllPlans:   queryBool(r, "show_all_plans"),
	}, projections.GetCalendarDayDeps{
		Source:   s.api,
		Fetch:    s.opts.Fetch,
		Compare:  s.opts.Compare,
		Location: s.opts.Location,
		Now:      s.now,
	})
}

// handleCalendarDay serves one day's classes and lesson plans.
// Query: date (YYYY-MM-DD), show_all_classes, show_all_plans.
func (s *server) handleCalendarDay(w http.ResponseWriter, r *http.Request) {
	res, err := s.calendarDay(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	classes := make([]classView, len(res.Classes))
	for i, c := range res.Classes {
		classes[i] = classView{Class: c, NotesHTML: renderMarkdown(c.Notes)}
	}
	writeJSON(w, http.StatusOK, calendarDayResponse{GetCalendarDayResult: res, Classes: classes})
}

// handleCalendarDayICS exports every class of a day as an iCalendar feed.
func (s *server) handleCalendarDayICS(w http.ResponseWriter, r *http.Request) {
	res, err := s.calendarDay(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeICS(w, "rinkdesk-"+res.Date, agendaCalendar(res.Date, res.Agenda, s.opts.Location, s.now()))
}

// handleCalendarMonth serves a six-week month grid.
// Query: month (YYYY-MM).
func (s *server) handleCalendarMonth(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetCalendarMonth(projections.GetCalendarMonthQuery{
		Month: r.URL.Query().Get("month"),
	}, projections.GetCalendarMonthDeps{
		Location: s.opts.Location,
		Now:      s.now,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleWeeklyOverview serves every roster's weekly slots grouped by weekday.
func (s *server) handleWeeklyOverview(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetWeeklyOverview(r.Context(), projections.GetWeeklyOverviewDeps{
		Rosters:   s.api,
		Schedules: s.api,
		Fetch:     s.opts.Fetch,
		Compare:   s.opts.Compare,
		Location:  s.opts.Location,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
