package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/lessonplan"
	"rinkdesk/internal/domain/meeting"
	"rinkdesk/internal/domain/roster"
	"rinkdesk/internal/domain/schedule"
	"rinkdesk/internal/domain/skill"
	"rinkdesk/internal/domain/student"
)

var errUpstream = errors.New("upstream rejected")

// mockWriter records every mutation it is asked to forward.
type mockWriter struct {
	err   error
	calls []string

	schedule   schedule.WeeklySchedule
	meeting    meeting.Meeting
	occurrence lessonplan.Occurrence
	skillIDs   []ident.ID
	role       skill.Role
}

// CreateRosterSchedule records the slot.
// PRE: rosterID is non-empty
// POST: Returns the seeded error
func (m *mockWriter) CreateRosterSchedule(_ context.Context, rosterID ident.ID, s schedule.WeeklySchedule) error {
	m.calls = append(m.calls, "create schedule "+rosterID.String())
	m.schedule = s
	return m.err
}

// DeleteRosterSchedule records the delete.
// PRE: ids are non-empty
// POST: Returns the seeded error
func (m *mockWriter) DeleteRosterSchedule(_ context.Context, rosterID, scheduleID ident.ID) error {
	m.calls = append(m.calls, "delete schedule "+rosterID.String()+"/"+scheduleID.String())
	return m.err
}

// CreateRosterMeeting records the meeting.
// PRE: rosterID is non-empty
// POST: Returns the seeded error
func (m *mockWriter) CreateRosterMeeting(_ context.Context, rosterID ident.ID, mt meeting.Meeting) error {
	m.calls = append(m.calls, "create meeting "+rosterID.String())
	m.meeting = mt
	return m.err
}

// DeleteRosterMeeting records the delete.
// PRE: ids are non-empty
// POST: Returns the seeded error
func (m *mockWriter) DeleteRosterMeeting(_ context.Context, rosterID, meetingID ident.ID) error {
	m.calls = append(m.calls, "delete meeting "+rosterID.String()+"/"+meetingID.String())
	return m.err
}

// CreateLessonPlanOccurrence records the occurrence.
// PRE: planID is non-empty
// POST: Returns the seeded error
func (m *mockWriter) CreateLessonPlanOccurrence(_ context.Context, planID ident.ID, o lessonplan.Occurrence) error {
	m.calls = append(m.calls, "create occurrence "+planID.String())
	m.occurrence = o
	return m.err
}

// DeleteLessonPlanOccurrence records the delete.
// PRE: ids are non-empty
// POST: Returns the seeded error
func (m *mockWriter) DeleteLessonPlanOccurrence(_ context.Context, planID, occurrenceID ident.ID) error {
	m.calls = append(m.calls, "delete occurrence "+planID.String()+"/"+occurrenceID.String())
	return m.err
}

// AddRosterStudent records the enrolment.
// PRE: ids are non-empty
// POST: Returns the seeded error
func (m *mockWriter) AddRosterStudent(_ context.Context, rosterID, studentID ident.ID) error {
	m.calls = append(m.calls, "add student "+rosterID.String()+"/"+studentID.String())
	return m.err
}

// RemoveRosterStudent records the removal.
// PRE: ids are non-empty
// POST: Returns the seeded error
func (m *mockWriter) RemoveRosterStudent(_ context.Context, rosterID, studentID ident.ID) error {
	m.calls = append(m.calls, "remove student "+rosterID.String()+"/"+studentID.String())
	return m.err
}

// AddRosterTeacher records the assignment.
// PRE: ids are non-empty
// POST: Returns the seeded error
func (m *mockWriter) AddRosterTeacher(_ context.Context, rosterID, teacherID ident.ID) error {
	m.calls = append(m.calls, "add teacher "+rosterID.String()+"/"+teacherID.String())
	return m.err
}

// RemoveRosterTeacher records the removal.
// PRE: ids are non-empty
// POST: Returns the seeded error
func (m *mockWriter) RemoveRosterTeacher(_ context.Context, rosterID, teacherID ident.ID) error {
	m.calls = append(m.calls, "remove teacher "+rosterID.String()+"/"+teacherID.String())
	return m.err
}

// AddLessonPlanSkills records the ids and role.
// PRE: skillIDs is non-empty
// POST: Returns the seeded error
func (m *mockWriter) AddLessonPlanSkills(_ context.Context, planID ident.ID, skillIDs []ident.ID, role skill.Role) error {
	m.calls = append(m.calls, "add skills "+planID.String())
	m.skillIDs, m.role = skillIDs, role
	return m.err
}

// RemoveLessonPlanSkill records the removal and role.
// PRE: ids are non-empty
// POST: Returns the seeded error
func (m *mockWriter) RemoveLessonPlanSkill(_ context.Context, planID, skillID ident.ID, role skill.Role) error {
	m.calls = append(m.calls, "remove skill "+planID.String()+"/"+skillID.String())
	m.role = role
	return m.err
}

// TestExecuteAddRosterSchedule verifies validation gates the upstream call.
func TestExecuteAddRosterSchedule(t *testing.T) {
	valid := schedule.WeeklySchedule{Weekday: schedule.Wednesday, StartsAt: "16:00", EndsAt: "17:00", Location: "Rink B"}
	tests := []struct {
		name      string
		input     AddRosterScheduleInput
		wantErr   error
		wantCalls int
	}{
		{"valid", AddRosterScheduleInput{RosterID: "4", Schedule: valid}, nil, 1},
		{"missing roster", AddRosterScheduleInput{Schedule: valid}, schedule.ErrEmptyRosterID, 0},
		{"bad weekday", AddRosterScheduleInput{RosterID: "4", Schedule: schedule.WeeklySchedule{Weekday: 7, StartsAt: "16:00", EndsAt: "17:00"}}, schedule.ErrInvalidWeekday, 0},
		{"end before start", AddRosterScheduleInput{RosterID: "4", Schedule: schedule.WeeklySchedule{Weekday: 1, StartsAt: "17:00", EndsAt: "16:00"}}, schedule.ErrEndNotAfterStart, 0},
		{"missing end", AddRosterScheduleInput{RosterID: "4", Schedule: schedule.WeeklySchedule{Weekday: 1, StartsAt: "17:00"}}, schedule.ErrEmptyEndTime, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &mockWriter{}
			err := ExecuteAddRosterSchedule(context.Background(), tt.input, AddRosterScheduleDeps{Schedules: w})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if len(w.calls) != tt.wantCalls {
				t.Errorf("calls = %v, want %d", w.calls, tt.wantCalls)
			}
		})
	}
}

// TestExecuteAddRosterSchedule_WrapsUpstreamError verifies the operation name prefixes upstream failures.
func TestExecuteAddRosterSchedule_WrapsUpstreamError(t *testing.T) {
	w := &mockWriter{err: errUpstream}
	err := ExecuteAddRosterSchedule(context.Background(), AddRosterScheduleInput{
		RosterID: "4",
		Schedule: schedule.WeeklySchedule{Weekday: schedule.Friday, StartsAt: "06:00", EndsAt: "07:30"},
	}, AddRosterScheduleDeps{Schedules: w})
	if !errors.Is(err, errUpstream) || err.Error() != "add roster schedule: upstream rejected" {
		t.Errorf("err = %v", err)
	}
	if w.schedule.StartsAt != "06:00" {
		t.Errorf("forwarded schedule = %+v", w.schedule)
	}
}

// TestExecuteRemoveRosterSchedule verifies both ids are required.
func TestExecuteRemoveRosterSchedule(t *testing.T) {
	tests := []struct {
		name    string
		input   RemoveRosterScheduleInput
		wantErr error
	}{
		{"valid", RemoveRosterScheduleInput{RosterID: "4", ScheduleID: "9"}, nil},
		{"missing roster", RemoveRosterScheduleInput{ScheduleID: "9"}, schedule.ErrEmptyRosterID},
		{"missing schedule", RemoveRosterScheduleInput{RosterID: "4"}, schedule.ErrEmptyScheduleID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &mockWriter{}
			err := ExecuteRemoveRosterSchedule(context.Background(), tt.input, RemoveRosterScheduleDeps{Schedules: w})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && (len(w.calls) != 1 || w.calls[0] != "delete schedule 4/9") {
				t.Errorf("calls = %v", w.calls)
			}
		})
	}
}

// TestExecuteAddRosterMeeting verifies meeting validation and forwarding.
func TestExecuteAddRosterMeeting(t *testing.T) {
	valid := meeting.Meeting{TaughtOn: "2024-05-04", StartsAt: "10:00", EndsAt: "11:30", Notes: "Bring skates"}
	tests := []struct {
		name    string
		input   AddRosterMeetingInput
		wantErr error
	}{
		{"valid", AddRosterMeetingInput{RosterID: "2", Meeting: valid}, nil},
		{"missing roster", AddRosterMeetingInput{Meeting: valid}, schedule.ErrEmptyRosterID},
		{"missing date", AddRosterMeetingInput{RosterID: "2", Meeting: meeting.Meeting{StartsAt: "10:00", EndsAt: "11:00"}}, meeting.ErrEmptyDate},
		{"impossible date", AddRosterMeetingInput{RosterID: "2", Meeting: meeting.Meeting{TaughtOn: "2024-02-31", StartsAt: "10:00", EndsAt: "11:00"}}, meeting.ErrInvalidDate},
		{"missing start", AddRosterMeetingInput{RosterID: "2", Meeting: meeting.Meeting{TaughtOn: "2024-05-04", EndsAt: "11:00"}}, meeting.ErrEmptyStartTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &mockWriter{}
			err := ExecuteAddRosterMeeting(context.Background(), tt.input, AddRosterMeetingDeps{Meetings: w})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if sent := len(w.calls) == 1; sent != (tt.wantErr == nil) {
				t.Errorf("calls = %v", w.calls)
			}
		})
	}
}

// TestExecuteRemoveRosterMeeting verifies the id checks and error wrapping.
func TestExecuteRemoveRosterMeeting(t *testing.T) {
	w := &mockWriter{}
	if err := ExecuteRemoveRosterMeeting(context.Background(), RemoveRosterMeetingInput{RosterID: "2"}, RemoveRosterMeetingDeps{Meetings: w}); !errors.Is(err, meeting.ErrEmptyMeetingID) {
		t.Errorf("missing meeting: err = %v", err)
	}
	w.err = errUpstream
	err := ExecuteRemoveRosterMeeting(context.Background(), RemoveRosterMeetingInput{RosterID: "2", MeetingID: "8"}, RemoveRosterMeetingDeps{Meetings: w})
	if !errors.Is(err, errUpstream) || w.calls[0] != "delete meeting 2/8" {
		t.Errorf("err = %v, calls = %v", err, w.calls)
	}
}

// TestExecuteAddLessonPlanOccurrence verifies optional times and roster are allowed.
func TestExecuteAddLessonPlanOccurrence(t *testing.T) {
	tests := []struct {
		name    string
		input   AddLessonPlanOccurrenceInput
		wantErr error
	}{
		{"date only", AddLessonPlanOccurrenceInput{LessonPlanID: "7", Occurrence: lessonplan.Occurrence{TaughtOn: "2024-05-06"}}, nil},
		{"with roster and times", AddLessonPlanOccurrenceInput{LessonPlanID: "7", Occurrence: lessonplan.Occurrence{TaughtOn: "2024-05-06", StartsAt: "17:00", EndsAt: "18:00", RosterID: "1"}}, nil},
		{"missing plan", AddLessonPlanOccurrenceInput{Occurrence: lessonplan.Occurrence{TaughtOn: "2024-05-06"}}, lessonplan.ErrEmptyLessonPlanID},
		{"end without start", AddLessonPlanOccurrenceInput{LessonPlanID: "7", Occurrence: lessonplan.Occurrence{TaughtOn: "2024-05-06", EndsAt: "18:00"}}, lessonplan.ErrEndWithoutStart},
		{"bad start", AddLessonPlanOccurrenceInput{LessonPlanID: "7", Occurrence: lessonplan.Occurrence{TaughtOn: "2024-05-06", StartsAt: "5pm"}}, lessonplan.ErrInvalidStartTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &mockWriter{}
			err := ExecuteAddLessonPlanOccurrence(context.Background(), tt.input, AddLessonPlanOccurrenceDeps{Occurrences: w})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && w.occurrence.TaughtOn != tt.input.Occurrence.TaughtOn {
				t.Errorf("forwarded = %+v", w.occurrence)
			}
		})
	}
}

// TestExecuteRemoveLessonPlanOccurrence verifies both ids are required.
func TestExecuteRemoveLessonPlanOccurrence(t *testing.T) {
	w := &mockWriter{}
	deps := RemoveLessonPlanOccurrenceDeps{Occurrences: w}
	if err := ExecuteRemoveLessonPlanOccurrence(context.Background(), RemoveLessonPlanOccurrenceInput{OccurrenceID: "3"}, deps); !errors.Is(err, lessonplan.ErrEmptyLessonPlanID) {
		t.Errorf("missing plan: err = %v", err)
	}
	if err := ExecuteRemoveLessonPlanOccurrence(context.Background(), RemoveLessonPlanOccurrenceInput{LessonPlanID: "7"}, deps); !errors.Is(err, lessonplan.ErrEmptyOccurrenceID) {
		t.Errorf("missing occurrence: err = %v", err)
	}
	if err := ExecuteRemoveLessonPlanOccurrence(context.Background(), RemoveLessonPlanOccurrenceInput{LessonPlanID: "7", OccurrenceID: "3"}, deps); err != nil {
		t.Errorf("valid: err = %v", err)
	}
	if len(w.calls) != 1 || w.calls[0] != "delete occurrence 7/3" {
		t.Errorf("calls = %v", w.calls)
	}
}

// TestExecuteRosterMember verifies each kind reaches its own upstream call.
func TestExecuteRosterMember(t *testing.T) {
	tests := []struct {
		name     string
		remove   bool
		input    RosterMemberInput
		wantErr  error
		wantCall string
	}{
		{"add student", false, RosterMemberInput{RosterID: "4", MemberID: "9"}, nil, "add student 4/9"},
		{"remove student", true, RosterMemberInput{RosterID: "4", MemberID: "9"}, nil, "remove student 4/9"},
		{"add teacher", false, RosterMemberInput{RosterID: "4", MemberID: "2", Kind: MemberTeacher}, nil, "add teacher 4/2"},
		{"remove teacher", true, RosterMemberInput{RosterID: "4", MemberID: "2", Kind: MemberTeacher}, nil, "remove teacher 4/2"},
		{"missing roster", false, RosterMemberInput{MemberID: "9"}, schedule.ErrEmptyRosterID, ""},
		{"missing student", true, RosterMemberInput{RosterID: "4"}, student.ErrEmptyStudentID, ""},
		{"missing teacher", false, RosterMemberInput{RosterID: "4", Kind: MemberTeacher}, roster.ErrEmptyTeacherID, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &mockWriter{}
			deps := RosterMemberDeps{Members: w}
			var err error
			if tt.remove {
				err = ExecuteRemoveRosterMember(context.Background(), tt.input, deps)
			} else {
				err = ExecuteAddRosterMember(context.Background(), tt.input, deps)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			var got string
			if len(w.calls) > 0 {
				got = w.calls[0]
			}
			if got != tt.wantCall {
				t.Errorf("call = %q, want %q", got, tt.wantCall)
			}
		})
	}
}

// TestExecuteAddRosterMember_WrapsUpstreamError verifies the kind appears in the wrapped error.
func TestExecuteAddRosterMember_WrapsUpstreamError(t *testing.T) {
	w := &mockWriter{err: errUpstream}
	err := ExecuteAddRosterMember(context.Background(), RosterMemberInput{RosterID: "4", MemberID: "2", Kind: MemberTeacher}, RosterMemberDeps{Members: w})
	if !errors.Is(err, errUpstream) || err.Error() != "add roster teacher: upstream rejected" {
		t.Errorf("err = %v", err)
	}
}

// TestExecuteAddLessonPlanSkills verifies role parsing and id cleanup.
func TestExecuteAddLessonPlanSkills(t *testing.T) {
	tests := []struct {
		name     string
		input    AddLessonPlanSkillsInput
		wantErr  error
		wantIDs  string
		wantRole skill.Role
	}{
		{"default role", AddLessonPlanSkillsInput{LessonPlanID: "8", SkillIDs: []ident.ID{"3", "", "3", "5"}}, nil, "[3 5]", skill.RoleMain},
		{"warmup", AddLessonPlanSkillsInput{LessonPlanID: "8", SkillIDs: []ident.ID{"1"}, Role: "warmup"}, nil, "[1]", skill.RoleWarmup},
		{"missing plan", AddLessonPlanSkillsInput{SkillIDs: []ident.ID{"1"}}, lessonplan.ErrEmptyLessonPlanID, "[]", ""},
		{"only blanks", AddLessonPlanSkillsInput{LessonPlanID: "8", SkillIDs: []ident.ID{"", ""}}, skill.ErrNoSkills, "[]", ""},
		{"bad role", AddLessonPlanSkillsInput{LessonPlanID: "8", SkillIDs: []ident.ID{"1"}, Role: "stretch"}, skill.ErrInvalidRole, "[]", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &mockWriter{}
			err := ExecuteAddLessonPlanSkills(context.Background(), tt.input, LessonPlanSkillsDeps{Skills: w})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if got := fmt.Sprint(w.skillIDs); tt.wantErr == nil && got != tt.wantIDs {
				t.Errorf("ids = %s, want %s", got, tt.wantIDs)
			}
			if w.role != tt.wantRole {
				t.Errorf("role = %q, want %q", w.role, tt.wantRole)
			}
			if tt.wantErr != nil && len(w.calls) != 0 {
				t.Errorf("calls = %v after validation failure", w.calls)
			}
		})
	}
}

// TestExecuteRemoveLessonPlanSkill verifies the ids and role are checked.
func TestExecuteRemoveLessonPlanSkill(t *testing.T) {
	w := &mockWriter{}
	deps := LessonPlanSkillsDeps{Skills: w}
	if err := ExecuteRemoveLessonPlanSkill(context.Background(), RemoveLessonPlanSkillInput{LessonPlanID: "8"}, deps); !errors.Is(err, skill.ErrEmptySkillID) {
		t.Errorf("missing skill: err = %v", err)
	}
	if err := ExecuteRemoveLessonPlanSkill(context.Background(), RemoveLessonPlanSkillInput{LessonPlanID: "8", SkillID: "3", Role: "cooldown"}, deps); err != nil {
		t.Fatal(err)
	}
	if len(w.calls) != 1 || w.calls[0] != "remove skill 8/3" || w.role != skill.RoleCooldown {
		t.Errorf("calls = %v, role = %q", w.calls, w.role)
	}
	w.err = errUpstream
	err := ExecuteRemoveLessonPlanSkill(context.Background(), RemoveLessonPlanSkillInput{LessonPlanID: "8", SkillID: "3"}, deps)
	if !errors.Is(err, errUpstream) || err.Error() != "remove lesson plan skill: upstream rejected" {
		t.Errorf("err = %v", err)
	}
}
