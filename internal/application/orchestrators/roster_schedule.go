package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/schedule"
)

// ScheduleWriter defines the upstream calls for weekly slot mutations.
type ScheduleWriter interface {
	CreateRosterSchedule(ctx context.Context, rosterID ident.ID, s schedule.WeeklySchedule) error
	DeleteRosterSchedule(ctx context.Context, rosterID, scheduleID ident.ID) error
}

// AddRosterScheduleInput carries input for the add-schedule orchestrator.
type AddRosterScheduleInput struct {
	RosterID ident.ID
	Schedule schedule.WeeklySchedule
}

// AddRosterScheduleDeps holds dependencies for AddRosterSchedule.
type AddRosterScheduleDeps struct {
	Schedules ScheduleWriter
}

// ExecuteAddRosterSchedule validates a weekly slot and creates it for the roster.
// PRE: RosterID is non-empty
// POST: The slot is forwarded upstream, or a validation error is returned and nothing is sent
func ExecuteAddRosterSchedule(ctx context.Context, input AddRosterScheduleInput, deps AddRosterScheduleDeps) error {
	if input.RosterID.IsZero() {
		return schedule.ErrEmptyRosterID
	}
	if err := input.Schedule.Validate(); err != nil {
		return err
	}
	if err := deps.Schedules.CreateRosterSchedule(ctx, input.RosterID, input.Schedule); err != nil {
		return fmt.Errorf("add roster schedule: %w", err)
	}
	slog.Info("schedule_event", "event", "roster_schedule_added",
		"roster_id", input.RosterID,
		"weekday", int(input.Schedule.Weekday),
		"starts_at", input.Schedule.StartsAt,
	)
	return nil
}

// RemoveRosterScheduleInput carries input for the remove-schedule orchestrator.
type RemoveRosterScheduleInput struct {
	RosterID   ident.ID
	ScheduleID ident.ID
}

// RemoveRosterScheduleDeps holds dependencies for RemoveRosterSchedule.
type RemoveRosterScheduleDeps struct {
	Schedules ScheduleWriter
}

// ExecuteRemoveRosterSchedule deletes one of a roster's weekly slots.
// PRE: RosterID and ScheduleID are non-empty
// POST: The delete is forwarded upstream
func ExecuteRemoveRosterSchedule(ctx context.Context, input RemoveRosterScheduleInput, deps RemoveRosterScheduleDeps) error {
	if input.RosterID.IsZero() {
		return schedule.ErrEmptyRosterID
	}
	if input.ScheduleID.IsZero() {
		return schedule.ErrEmptyScheduleID
	}
	if err := deps.Schedules.DeleteRosterSchedule(ctx, input.RosterID, input.ScheduleID); err != nil {
		return fmt.Errorf("remove roster schedule: %w", err)
	}
	slog.Info("schedule_event", "event", "roster_schedule_removed", "roster_id", input.RosterID, "schedule_id", input.ScheduleID)
	return nil
}
