package restapi

import (
	"context"
	"net/http"
	"net/url"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/lessonplan"
	"rinkdesk/internal/domain/meeting"
	"rinkdesk/internal/domain/roster"
	"rinkdesk/internal/domain/schedule"
)

// ListRosters returns the rosters visible to the caller (GET /rosters).
func (c *Client) ListRosters(ctx context.Context) ([]roster.Roster, error) {
	return getList[roster.Roster](ctx, c, "list_rosters", "/rosters", nil)
}

// ListAllRosters returns every roster (GET /rosters/all).
func (c *Client) ListAllRosters(ctx context.Context) ([]roster.Roster, error) {
	return getList[roster.Roster](ctx, c, "list_all_rosters", "/rosters/all", nil)
}

// ListRosterDirectory returns rosters with teachers, students and schedules
// embedded (GET /rosters.json).
func (c *Client) ListRosterDirectory(ctx context.Context) ([]roster.Roster, error) {
	return getList[roster.Roster](ctx, c, "list_roster_directory", "/rosters.json", nil)
}

// GetRoster returns one roster (GET /rosters/{id}).
func (c *Client) GetRoster(ctx context.Context, id ident.ID) (*roster.Roster, error) {
	seg, err := pathID(id)
	if err != nil {
		return nil, err
	}
	return getOne[roster.Roster](ctx, c, "get_roster", "/rosters/"+seg)
}

// ListRosterSchedules returns a roster's weekly slots (GET /rosters/{id}/roster_schedules).
func (c *Client) ListRosterSchedules(ctx context.Context, rosterID ident.ID) ([]schedule.WeeklySchedule, error) {
	seg, err := pathID(rosterID)
	if err != nil {
		return nil, err
	}
	return getList[schedule.WeeklySchedule](ctx, c, "list_roster_schedules", "/rosters/"+seg+"/roster_schedules", nil, "roster_schedules")
}

// CreateRosterSchedule adds a weekly slot (POST /rosters/{id}/roster_schedules).
func (c *Client) CreateRosterSchedule(ctx context.Context, rosterID ident.ID, s schedule.WeeklySchedule) error {
	seg, err := pathID(rosterID)
	if err != nil {
		return err
	}
	body := map[string]any{
		"roster_schedule": map[string]any{
			"weekday":   int(s.Weekday),
			"starts_at": s.StartsAt,
			"ends_at":   s.EndsAt,
			"location":  s.Location,
		},
	}
	return c.send(ctx, "create_roster_schedule", http.MethodPost, "/rosters/"+seg+"/roster_schedules", body)
}

// DeleteRosterSchedule removes a weekly slot (DELETE /rosters/{id}/roster_schedules/{sid}).
func (c *Client) DeleteRosterSchedule(ctx context.Context, rosterID, scheduleID ident.ID) error {
	seg, err := pathID(rosterID)
	if err != nil {
		return err
	}
	sid, err := pathID(scheduleID)
	if err != nil {
		return err
	}
	return c.send(ctx, "delete_roster_schedule", http.MethodDelete, "/rosters/"+seg+"/roster_schedules/"+sid, nil)
}

// ListRosterMeetings returns a roster's one-off meetings (GET /rosters/{id}/roster_meetings).
func (c *Client) ListRosterMeetings(ctx context.Context, rosterID ident.ID) ([]meeting.Meeting, error) {
	seg, err := pathID(rosterID)
	if err != nil {
		return nil, err
	}
	return getList[meeting.Meeting](ctx, c, "list_roster_meetings", "/rosters/"+seg+"/roster_meetings", nil, "roster_meetings")
}

// CreateRosterMeeting adds a one-off meeting (POST /rosters/{id}/roster_meetings).
func (c *Client) CreateRosterMeeting(ctx context.Context, rosterID ident.ID, m meeting.Meeting) error {
	seg, err := pathID(rosterID)
	if err != nil {
		return err
	}
	body := map[string]any{
		"roster_meeting": map[string]any{
			"taught_on": m.TaughtOn,
			"starts_at": m.StartsAt,
			"ends_at":   m.EndsAt,
			"location":  m.Location,
			"notes":     nullable(m.Notes),
		},
	}
	return c.send(ctx, "create_roster_meeting", http.MethodPost, "/rosters/"+seg+"/roster_meetings", body)
}

// DeleteRosterMeeting removes a one-off meeting (DELETE /rosters/{id}/roster_meetings/{mid}).
func (c *Client) DeleteRosterMeeting(ctx context.Context, rosterID, meetingID ident.ID) error {
	seg, err := pathID(rosterID)
	if err != nil {
		return err
	}
	mid, err := pathID(meetingID)
	if err != nil {
		return err
	}
	return c.send(ctx, "delete_roster_meeting", http.MethodDelete, "/rosters/"+seg+"/roster_meetings/"+mid, nil)
}

// ListLessonPlansMatchingSchedule returns the occurrences the API links to a
// roster's schedule (GET /rosters/{id}/lesson_plans_matching_schedule?scope=all).
func (c *Client) ListLessonPlansMatchingSchedule(ctx context.Context, rosterID ident.ID) ([]lessonplan.Occurrence, error) {
	seg, err := pathID(rosterID)
	if err != nil {
		return nil, err
	}
	q := url.Values{"scope": {"all"}}
	return getList[lessonplan.Occurrence](ctx, c, "list_lesson_plans_matching_schedule",
		"/rosters/"+seg+"/lesson_plans_matching_schedule", q, "lesson_plan_occurrences", "occurrences", "matches")
}

// ListScheduledLessons returns the roster's meetings with the lesson plan
// occurrences attached to each (GET /rosters/{id}/scheduled_lessons).
func (c *Client) ListScheduledLessons(ctx context.Context, rosterID ident.ID) ([]lessonplan.MeetingMatch, error) {
	seg, err := pathID(rosterID)
	if err != nil {
		return nil, err
	}
	return getList[lessonplan.MeetingMatch](ctx, c, "list_scheduled_lessons", "/rosters/"+seg+"/scheduled_lessons", nil, "matches")
}

// AddRosterStudent enrolls a student (POST /rosters/{id}/add_student/{sid}).
func (c *Client) AddRosterStudent(ctx context.Context, rosterID, studentID ident.ID) error {
	return c.rosterMember(ctx, "add_roster_student", http.MethodPost, rosterID, "/add_student/", studentID)
}

// RemoveRosterStudent unenrolls a student (DELETE /rosters/{id}/remove_student/{sid}).
func (c *Client) RemoveRosterStudent(ctx context.Context, rosterID, studentID ident.ID) error {
	return c.rosterMember(ctx, "remove_roster_student", http.MethodDelete, rosterID, "/remove_student/", studentID)
}

// AddRosterTeacher assigns a teacher (POST /rosters/{id}/add_teacher/{tid}).
func (c *Client) AddRosterTeacher(ctx context.Context, rosterID, teacherID ident.ID) error {
	return c.rosterMember(ctx, "add_roster_teacher", http.MethodPost, rosterID, "/add_teacher/", teacherID)
}

// RemoveRosterTeacher unassigns a teacher (DELETE /rosters/{id}/remove_teacher/{tid}).
func (c *Client) RemoveRosterTeacher(ctx context.Context, rosterID, teacherID ident.ID) error {
	return c.rosterMember(ctx, "remove_roster_teacher", http.MethodDelete, rosterID, "/remove_teacher/", teacherID)
}

func (c *Client) rosterMember(ctx context.Context, op, method string, rosterID ident.ID, action string, memberID ident.ID) error {
	seg, err := pathID(rosterID)
	if err != nil {
		return err
	}
	mid, err := pathID(memberID)
	if err != nil {
		return err
	}
	return c.send(ctx, op, method, "/rosters/"+seg+action+mid, nil)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
