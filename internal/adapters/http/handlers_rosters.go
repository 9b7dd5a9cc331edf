package web

import (
	"net/http"

	"rinkdesk/internal/application/orchestrators"
	"rinkdesk/internal/application/projections"
	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/meeting"
	"rinkdesk/internal/domain/schedule"
)

// sessionView adds rendered notes to an upcoming session.
type sessionView struct {
	projections.Session
	NotesHTML string `json:"notes_html,omitempty"`
}

// upcomingResponse is the JSON shape of GET /api/rosters/{id}/upcoming.
type upcomingResponse struct {
	projections.GetUpcomingSessionsResult
	Sessions []sessionView `json:"sessions"`
}

func (s *server) upcoming(r *http.Request) (projections.GetUpcomingSessionsResult, error) {
	days := queryInt(r, "days")
	if days <= 0 {
		days = s.opts.UpcomingDays
	}
	return projections.QueryGetUpcomingSessions(r.Context(), projections.GetUpcomingSessionsQuery{
		RosterID: ident.ID(r.PathValue("id")),
		From:     r.URL.Query().Get("from"),
		Days:     days,
	}, projections.GetUpcomingSessionsDeps{
		Rosters:   s.api,
		Schedules: s.api,
		Meetings:  s.api,
		Location:  s.opts.Location,
		Now:       s.now,
	})
}

// handleUpcoming serves a roster's dated sessions.
// Query: from (YYYY-MM-DD), days.
func (s *server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	res, err := s.upcoming(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sessions := make([]sessionView, len(res.Sessions))
	for i, sess := range res.Sessions {
		sessions[i] = sessionView{Session: sess, NotesHTML: renderMarkdown(sess.Notes)}
	}
	writeJSON(w, http.StatusOK, upcomingResponse{GetUpcomingSessionsResult: res, Sessions: sessions})
}

// handleRosterICS exports a roster's upcoming sessions as an iCalendar feed.
func (s *server) handleRosterICS(w http.ResponseWriter, r *http.Request) {
	res, err := s.upcoming(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeICS(w, "rinkdesk-roster-"+res.Roster.ID.String(), sessionsCalendar(res.Roster, res.Sessions, s.now()))
}

// scheduleRequest is the body of POST /api/rosters/{id}/schedules.
// The weekday starts as schedule.NoWeekday so an absent field fails validation.
type scheduleRequest struct {
	Weekday  schedule.Weekday `json:"weekday"`
	StartsAt string           `json:"starts_at"`
	EndsAt   string           `json:"ends_at"`
	Location string           `json:"location"`
}

// handleAddSchedule creates a weekly slot for a roster.
func (s *server) handleAddSchedule(w http.ResponseWriter, r *http.Request) {
	req := scheduleRequest{Weekday: schedule.NoWeekday}
	err := decodeBody(w, r, &req, func(get func(string) string) {
		req = scheduleRequest{
			Weekday:  schedule.ParseWeekday(get("weekday")),
			StartsAt: get("starts_at"),
			EndsAt:   get("ends_at"),
			Location: get("location"),
		}
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	rosterID := ident.ID(r.PathValue("id"))
	err = orchestrators.ExecuteAddRosterSchedule(r.Context(), orchestrators.AddRosterScheduleInput{
		RosterID: rosterID,
		Schedule: schedule.WeeklySchedule{
			RosterID: rosterID,
			Weekday:  req.Weekday,
			StartsAt: req.StartsAt,
			EndsAt:   req.EndsAt,
			Location: req.Location,
		},
	}, orchestrators.AddRosterScheduleDeps{Schedules: s.api})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// handleRemoveSchedule deletes one of a roster's weekly slots.
func (s *server) handleRemoveSchedule(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteRemoveRosterSchedule(r.Context(), orchestrators.RemoveRosterScheduleInput{
		RosterID:   ident.ID(r.PathValue("id")),
		ScheduleID: ident.ID(r.PathValue("sid")),
	}, orchestrators.RemoveRosterScheduleDeps{Schedules: s.api})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// meetingRequest is the body of POST /api/rosters/{id}/meetings.
type meetingRequest struct {
	TaughtOn string `json:"taught_on"`
	StartsAt string `json:"starts_at"`
	EndsAt   string `json:"ends_at"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// handleAddMeeting creates a one-off meeting for a roster.
func (s *server) handleAddMeeting(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
	err := decodeBody(w, r, &req, func(get func(string) string) {
		req = meetingRequest{
			TaughtOn: get("taught_on"),
			StartsAt: get("starts_at"),
			EndsAt:   get("ends_at"),
			Location: get("location"),
			Notes:    get("notes"),
		}
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	rosterID := ident.ID(r.PathValue("id"))
	err = orchestrators.ExecuteAddRosterMeeting(r.Context(), orchestrators.AddRosterMeetingInput{
		RosterID: rosterID,
		Meeting: meeting.Meeting{
			RosterID: rosterID,
			TaughtOn: req.TaughtOn,
			StartsAt: req.StartsAt,
			EndsAt:   req.EndsAt,
			Location: req.Location,
			Notes:    req.Notes,
		},
	}, orchestrators.AddRosterMeetingDeps{Meetings: s.api})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// handleRemoveMeeting deletes one of a roster's one-off meetings.
func (s *server) handleRemoveMeeting(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteRemoveRosterMeeting(r.Context(), orchestrators.RemoveRosterMeetingInput{
		RosterID:  ident.ID(r.PathValue("id")),
		MeetingID: ident.ID(r.PathValue("mid")),
	}, orchestrators.RemoveRosterMeetingDeps{Meetings: s.api})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRosterLessons serves the lesson plans scheduled for a roster, from
// both its weekly slots and its one-off meetings.
func (s *server) handleRosterLessons(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetRosterLessons(r.Context(), ident.ID(r.PathValue("id")), projections.GetRosterLessonsDeps{
		Lessons:  s.api,
		Location: s.opts.Location,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// memberHandler adds or removes a roster member of the given kind.
// The member id is the {mid} path value.
func (s *server) memberHandler(kind orchestrators.MemberKind, remove bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input := orchestrators.RosterMemberInput{
			RosterID: ident.ID(r.PathValue("id")),
			MemberID: ident.ID(r.PathValue("mid")),
			Kind:     kind,
		}
		deps := orchestrators.RosterMemberDeps{Members: s.api}
		if remove {
			if err := orchestrators.ExecuteRemoveRosterMember(r.Context(), input, deps); err != nil {
				writeError(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := orchestrators.ExecuteAddRosterMember(r.Context(), input, deps); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
	}
}
