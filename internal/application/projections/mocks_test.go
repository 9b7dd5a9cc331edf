package projections

import (
	"context"
	"errors"
	"sync"

	"rinkdesk/internal/domain/account"
	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/lessonplan"
	"rinkdesk/internal/domain/meeting"
	"rinkdesk/internal/domain/roster"
	"rinkdesk/internal/domain/schedule"
	"rinkdesk/internal/domain/skill"
	"rinkdesk/internal/domain/student"
)

var errUpstream = errors.New("upstream unavailable")

// messageErr carries a display message like a decoded API error body.
type messageErr struct{ msg string }

func (e messageErr) Error() string       { return "api: " + e.msg }
func (e messageErr) UserMessage() string { return e.msg }

// mockAPI is an in-memory stand-in for the REST client.
type mockAPI struct {
	mu sync.Mutex

	rosters       []roster.Roster
	rostersErr    error
	allRosters    []roster.Roster
	allRostersErr error
	schedules     map[ident.ID][]schedule.WeeklySchedule
	scheduleErrs  map[ident.ID]error
	scheduleCalls []ident.ID

	plansByDate    []lessonplan.Occurrence
	plansByDateErr error
	rostersByDate  []roster.Roster
	rostersDateErr error
	meetingsByDate []meeting.Meeting
	meetingsErr    error

	students    []student.Student
	directory   []roster.Roster
	plans       []lessonplan.LessonPlan
	plansErr    error
	matching    map[ident.ID][]lessonplan.Occurrence
	plan        *lessonplan.LessonPlan
	planErr     error
	users       []account.User
	roster      *roster.Roster
	rosterErr   error
	meetings    []meeting.Meeting
	meetingsLst error

	myStudents    []student.Student
	myStudentsErr error
	detail        *student.Student
	detailErr     error
	skills        []skill.Skill
	skillsErr     error
	matchingErr   error
	scheduled     []lessonplan.MeetingMatch
	scheduledErr  error
}

// ListRosters returns the seeded rosters.
// PRE: none
// POST: Returns rostersErr when set
func (m *mockAPI) ListRosters(_ context.Context) ([]roster.Roster, error) {
	return m.rosters, m.rostersErr
}

// ListAllRosters returns the seeded fallback rosters.
// PRE: none
// POST: Returns allRostersErr when set
func (m *mockAPI) ListAllRosters(_ context.Context) ([]roster.Roster, error) {
	return m.allRosters, m.allRostersErr
}

// ListRosterSchedules returns the seeded schedules and records the call.
// PRE: rosterID is non-empty
// POST: Returns the roster's seeded error when set
func (m *mockAPI) ListRosterSchedules(_ context.Context, rosterID ident.ID) ([]schedule.WeeklySchedule, error) {
	m.mu.Lock()
	m.scheduleCalls = append(m.scheduleCalls, rosterID)
	m.mu.Unlock()
	if err := m.scheduleErrs[rosterID]; err != nil {
		return nil, err
	}
	return m.schedules[rosterID], nil
}

// ListLessonPlansByDate returns the seeded occurrences for any date.
// PRE: date is YYYY-MM-DD
// POST: Returns plansByDateErr when set
func (m *mockAPI) ListLessonPlansByDate(_ context.Context, _ string) ([]lessonplan.Occurrence, error) {
	return m.plansByDate, m.plansByDateErr
}

// ListRostersByDate returns the seeded rosters for any date.
// PRE: date is YYYY-MM-DD
// POST: Returns rostersDateErr when set
func (m *mockAPI) ListRostersByDate(_ context.Context, _ string) ([]roster.Roster, error) {
	return m.rostersByDate, m.rostersDateErr
}

// ListRosterMeetingsByDate returns the seeded meetings for any date.
// PRE: date is YYYY-MM-DD
// POST: Returns meetingsErr when set
func (m *mockAPI) ListRosterMeetingsByDate(_ context.Context, _ string) ([]meeting.Meeting, error) {
	return m.meetingsByDate, m.meetingsErr
}

// ListStudents returns the seeded students.
// PRE: none
// POST: Never fails
func (m *mockAPI) ListStudents(_ context.Context) ([]student.Student, error) {
	return m.students, nil
}

// ListRosterDirectory returns the seeded directory rosters.
// PRE: none
// POST: Never fails
func (m *mockAPI) ListRosterDirectory(_ context.Context) ([]roster.Roster, error) {
	return m.directory, nil
}

// ListLessonPlans returns the seeded plans.
// PRE: none
// POST: Returns plansErr when set
func (m *mockAPI) ListLessonPlans(_ context.Context) ([]lessonplan.LessonPlan, error) {
	return m.plans, m.plansErr
}

// ListLessonPlansMatchingSchedule returns the seeded matches for a roster.
// PRE: rosterID is non-empty
// POST: Returns nil for an unknown roster, and matchingErr when set
func (m *mockAPI) ListLessonPlansMatchingSchedule(_ context.Context, rosterID ident.ID) ([]lessonplan.Occurrence, error) {
	return m.matching[rosterID], m.matchingErr
}

// GetLessonPlan returns the seeded plan.
// PRE: id is non-empty
// POST: Returns planErr when set
func (m *mockAPI) GetLessonPlan(_ context.Context, _ ident.ID) (*lessonplan.LessonPlan, error) {
	if m.planErr != nil {
		return nil, m.planErr
	}
	return m.plan, nil
}

// ListAdminUsers returns the seeded accounts.
// PRE: none
// POST: Never fails
func (m *mockAPI) ListAdminUsers(_ context.Context) ([]account.User, error) {
	return m.users, nil
}

// GetRoster returns the seeded roster.
// PRE: id is non-empty
// POST: Returns rosterErr when set
func (m *mockAPI) GetRoster(_ context.Context, _ ident.ID) (*roster.Roster, error) {
	if m.rosterErr != nil {
		return nil, m.rosterErr
	}
	return m.roster, nil
}

// ListRosterMeetings returns the seeded meetings.
// PRE: rosterID is non-empty
// POST: Returns meetingsLst when set
func (m *mockAPI) ListRosterMeetings(_ context.Context, _ ident.ID) ([]meeting.Meeting, error) {
	return m.meetings, m.meetingsLst
}

// ListStudentsFromRosters returns the seeded roster students.
// PRE: none
// POST: Returns myStudentsErr when set
func (m *mockAPI) ListStudentsFromRosters(_ context.Context) ([]student.Student, error) {
	return m.myStudents, m.myStudentsErr
}

// GetStudent returns the seeded student.
// PRE: id is non-empty
// POST: Returns detailErr when set
func (m *mockAPI) GetStudent(_ context.Context, _ ident.ID) (*student.Student, error) {
	if m.detailErr != nil {
		return nil, m.detailErr
	}
	return m.detail, nil
}

// ListSkills returns the seeded catalogue.
// PRE: none
// POST: Returns skillsErr when set
func (m *mockAPI) ListSkills(_ context.Context) ([]skill.Skill, error) {
	return m.skills, m.skillsErr
}

// ListScheduledLessons returns the seeded meeting matches.
// PRE: rosterID is non-empty
// POST: Returns scheduledErr when set
func (m *mockAPI) ListScheduledLessons(_ context.Context, _ ident.ID) ([]lessonplan.MeetingMatch, error) {
	return m.scheduled, m.scheduledErr
}
