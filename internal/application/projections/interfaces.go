package projections

import (
	"context"
	"errors"

	"rinkdesk/internal/domain/account"
	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/lessonplan"
	"rinkdesk/internal/domain/meeting"
	"rinkdesk/internal/domain/roster"
	"rinkdesk/internal/domain/schedule"
	"rinkdesk/internal/domain/skill"
	"rinkdesk/internal/domain/student"
)

// RosterLister lists rosters, with a broader fallback listing.
type RosterLister interface {
	ListRosters(ctx context.Context) ([]roster.Roster, error)
	ListAllRosters(ctx context.Context) ([]roster.Roster, error)
}

// ScheduleFetcher loads one roster's weekly slots.
type ScheduleFetcher interface {
	ListRosterSchedules(ctx context.Context, rosterID ident.ID) ([]schedule.WeeklySchedule, error)
}

// CalendarSource loads the three date-scoped sections of a calendar day.
type CalendarSource interface {
	ListLessonPlansByDate(ctx context.Context, date string) ([]lessonplan.Occurrence, error)
	ListRostersByDate(ctx context.Context, date string) ([]roster.Roster, error)
	ListRosterMeetingsByDate(ctx context.Context, date string) ([]meeting.Meeting, error)
}

// StudentLister interface for student directory queries.
type StudentLister interface {
	ListStudents(ctx context.Context) ([]student.Student, error)
}

// MyStudentsLister loads the students on the caller's rosters.
type MyStudentsLister interface {
	ListStudentsFromRosters(ctx context.Context) ([]student.Student, error)
}

// StudentGetter interface for student detail queries.
type StudentGetter interface {
	GetStudent(ctx context.Context, id ident.ID) (*student.Student, error)
}

// SkillLister interface for the skill catalogue.
type SkillLister interface {
	ListSkills(ctx context.Context) ([]skill.Skill, error)
}

// ScheduledLessonSource loads both views of the lessons planned for a roster.
type ScheduledLessonSource interface {
	ListLessonPlansMatchingSchedule(ctx context.Context, rosterID ident.ID) ([]lessonplan.Occurrence, error)
	ListScheduledLessons(ctx context.Context, rosterID ident.ID) ([]lessonplan.MeetingMatch, error)
}

// RosterDirectoryLister interface for roster directory queries.
type RosterDirectoryLister interface {
	ListRosterDirectory(ctx context.Context) ([]roster.Roster, error)
}

// LessonPlanLister interface for lesson plan directory queries.
type LessonPlanLister interface {
	ListLessonPlans(ctx context.Context) ([]lessonplan.LessonPlan, error)
	ListLessonPlansMatchingSchedule(ctx context.Context, rosterID ident.ID) ([]lessonplan.Occurrence, error)
}

// LessonPlanGetter interface for lesson plan detail queries.
type LessonPlanGetter interface {
	GetLessonPlan(ctx context.Context, id ident.ID) (*lessonplan.LessonPlan, error)
}

// UserLister interface for account directory queries.
type UserLister interface {
	ListAdminUsers(ctx context.Context) ([]account.User, error)
}

// RosterGetter interface for single roster lookups.
type RosterGetter interface {
	GetRoster(ctx context.Context, id ident.ID) (*roster.Roster, error)
}

// MeetingLister interface for a roster's one-off meetings.
type MeetingLister interface {
	ListRosterMeetings(ctx context.Context, rosterID ident.ID) ([]meeting.Meeting, error)
}

// userMessager is implemented by errors that carry a message fit for display.
type userMessager interface {
	UserMessage() string
}

// sectionMessage returns the display message for a failed section.
func sectionMessage(err error, fallback string) string {
	var um userMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return fallback
}
