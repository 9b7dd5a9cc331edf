package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/roster"
	"rinkdesk/internal/domain/schedule"
	"rinkdesk/internal/domain/student"
)

// MembershipWriter defines the upstream calls that change who is on a roster.
type MembershipWriter interface {
	AddRosterStudent(ctx context.Context, rosterID, studentID ident.ID) error
	RemoveRosterStudent(ctx context.Context, rosterID, studentID ident.ID) error
	AddRosterTeacher(ctx context.Context, rosterID, teacherID ident.ID) error
	RemoveRosterTeacher(ctx context.Context, rosterID, teacherID ident.ID) error
}

// MemberKind selects students or teachers.
type MemberKind int

// Member kinds
const (
	MemberStudent MemberKind = iota
	MemberTeacher
)

func (k MemberKind) String() string {
	if k == MemberTeacher {
		return "teacher"
	}
	return "student"
}

// RosterMemberInput carries input for the membership orchestrators.
type RosterMemberInput struct {
	RosterID ident.ID
	MemberID ident.ID
	Kind     MemberKind
}

// RosterMemberDeps holds dependencies for the membership orchestrators.
type RosterMemberDeps struct {
	Members MembershipWriter
}

func (in RosterMemberInput) validate() error {
	if in.RosterID.IsZero() {
		return schedule.ErrEmptyRosterID
	}
	if in.MemberID.IsZero() {
		if in.Kind == MemberTeacher {
			return roster.ErrEmptyTeacherID
		}
		return student.ErrEmptyStudentID
	}
	return nil
}

// ExecuteAddRosterMember enrolls a student or assigns a teacher.
// PRE: RosterID and MemberID are non-empty
// POST: The add is forwarded upstream, or a validation error is returned and nothing is sent
func ExecuteAddRosterMember(ctx context.Context, input RosterMemberInput, deps RosterMemberDeps) error {
	if err := input.validate(); err != nil {
		return err
	}
	var err error
	if input.Kind == MemberTeacher {
		err = deps.Members.AddRosterTeacher(ctx, input.RosterID, input.MemberID)
	} else {
		err = deps.Members.AddRosterStudent(ctx, input.RosterID, input.MemberID)
	}
	if err != nil {
		return fmt.Errorf("add roster %s: %w", input.Kind, err)
	}
	slog.Info("roster_event", "event", "roster_"+input.Kind.String()+"_added", "roster_id", input.RosterID, "member_id", input.MemberID)
	return nil
}

// ExecuteRemoveRosterMember unenrolls a student or unassigns a teacher.
// PRE: RosterID and MemberID are non-empty
// POST: The removal is forwarded upstream
func ExecuteRemoveRosterMember(ctx context.Context, input RosterMemberInput, deps RosterMemberDeps) error {
	if err := input.validate(); err != nil {
		return err
	}
	var err error
	if input.Kind == MemberTeacher {
		err = deps.Members.RemoveRosterTeacher(ctx, input.RosterID, input.MemberID)
	} else {
		err = deps.Members.RemoveRosterStudent(ctx, input.RosterID, input.MemberID)
	}
	if err != nil {
		return fmt.Errorf("remove roster %s: %w", input.Kind, err)
	}
	slog.Info("roster_event", "event", "roster_"+input.Kind.String()+"_removed", "roster_id", input.RosterID, "member_id", input.MemberID)
	return nil
}
