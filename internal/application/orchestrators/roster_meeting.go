package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/meeting"
	"rinkdesk/internal/domain/schedule"
)

// MeetingWriter defines the upstream calls for one-off meeting mutations.
type MeetingWriter interface {
	CreateRosterMeeting(ctx context.Context, rosterID ident.ID, m meeting.Meeting) error
	DeleteRosterMeeting(ctx context.Context, rosterID, meetingID ident.ID) error
}

// AddRosterMeetingInput carries input for the add-meeting orchestrator.
type AddRosterMeetingInput struct {
	RosterID ident.ID
	Meeting  meeting.Meeting
}

// AddRosterMeetingDeps holds dependencies for AddRosterMeeting.
type AddRosterMeetingDeps struct {
	Meetings MeetingWriter
}

// ExecuteAddRosterMeeting validates a one-off meeting and creates it for the roster.
// PRE: RosterID is non-empty
// POST: The meeting is forwarded upstream, or a validation error is returned and nothing is sent
func ExecuteAddRosterMeeting(ctx context.Context, input AddRosterMeetingInput, deps AddRosterMeetingDeps) error {
	if input.RosterID.IsZero() {
		return schedule.ErrEmptyRosterID
	}
	if err := input.Meeting.Validate(); err != nil {
		return err
	}
	if err := deps.Meetings.CreateRosterMeeting(ctx, input.RosterID, input.Meeting); err != nil {
		return fmt.Errorf("add roster meeting: %w", err)
	}
	slog.Info("schedule_event", "event", "roster_meeting_added", "roster_id", input.RosterID, "taught_on", input.Meeting.TaughtOn)
	return nil
}

// RemoveRosterMeetingInput carries input for the remove-meeting orchestrator.
type RemoveRosterMeetingInput struct {
	RosterID  ident.ID
	MeetingID ident.ID
}

// RemoveRosterMeetingDeps holds dependencies for RemoveRosterMeeting.
type RemoveRosterMeetingDeps struct {
	Meetings MeetingWriter
}

// ExecuteRemoveRosterMeeting deletes one of a roster's one-off meetings.
// PRE: RosterID and MeetingID are non-empty
// POST: The delete is forwarded upstream
func ExecuteRemoveRosterMeeting(ctx context.Context, input RemoveRosterMeetingInput, deps RemoveRosterMeetingDeps) error {
	if input.RosterID.IsZero() {
		return schedule.ErrEmptyRosterID
	}
	if input.MeetingID.IsZero() {
		return meeting.ErrEmptyMeetingID
	}
	if err := deps.Meetings.DeleteRosterMeeting(ctx, input.RosterID, input.MeetingID); err != nil {
		return fmt.Errorf("remove roster meeting: %w", err)
	}
	slog.Info("schedule_event", "event", "roster_meeting_removed", "roster_id", input.RosterID, "meeting_id", input.MeetingID)
	return nil
}
