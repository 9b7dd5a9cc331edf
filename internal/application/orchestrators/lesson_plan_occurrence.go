package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/lessonplan"
)

// OccurrenceWriter defines the upstream calls for lesson plan occurrence mutations.
type OccurrenceWriter interface {
	CreateLessonPlanOccurrence(ctx context.Context, planID ident.ID, o lessonplan.Occurrence) error
	DeleteLessonPlanOccurrence(ctx context.Context, planID, occurrenceID ident.ID) error
}

// AddLessonPlanOccurrenceInput carries input for the add-occurrence orchestrator.
// Occurrence.RosterID is optional.
type AddLessonPlanOccurrenceInput struct {
	LessonPlanID ident.ID
	Occurrence   lessonplan.Occurrence
}

// AddLessonPlanOccurrenceDeps holds dependencies for AddLessonPlanOccurrence.
type AddLessonPlanOccurrenceDeps struct {
	Occurrences OccurrenceWriter
}

// ExecuteAddLessonPlanOccurrence validates and schedules a lesson plan on a date.
// PRE: LessonPlanID is non-empty
// POST: The occurrence is forwarded upstream, or a validation error is returned and nothing is sent
func ExecuteAddLessonPlanOccurrence(ctx context.Context, input AddLessonPlanOccurrenceInput, deps AddLessonPlanOccurrenceDeps) error {
	if input.LessonPlanID.IsZero() {
		return lessonplan.ErrEmptyLessonPlanID
	}
	if err := input.Occurrence.Validate(); err != nil {
		return err
	}
	if err := deps.Occurrences.CreateLessonPlanOccurrence(ctx, input.LessonPlanID, input.Occurrence); err != nil {
		return fmt.Errorf("add lesson plan occurrence: %w", err)
	}
	slog.Info("lesson_plan_event", "event", "occurrence_added",
		"lesson_plan_id", input.LessonPlanID,
		"taught_on", input.Occurrence.TaughtOn,
		"roster_id", input.Occurrence.RosterID,
	)
	return nil
}

// RemoveLessonPlanOccurrenceInput carries input for the remove-occurrence orchestrator.
type RemoveLessonPlanOccurrenceInput struct {
	LessonPlanID ident.ID
	OccurrenceID ident.ID
}

// RemoveLessonPlanOccurrenceDeps holds dependencies for RemoveLessonPlanOccurrence.
type RemoveLessonPlanOccurrenceDeps struct {
	Occurrences OccurrenceWriter
}

// ExecuteRemoveLessonPlanOccurrence deletes a dated occurrence of a lesson plan.
// PRE: LessonPlanID and OccurrenceID are non-empty
// POST: The delete is forwarded upstream
func ExecuteRemoveLessonPlanOccurrence(ctx context.Context, input RemoveLessonPlanOccurrenceInput, deps RemoveLessonPlanOccurrenceDeps) error {
	if input.LessonPlanID.IsZero() {
		return lessonplan.ErrEmptyLessonPlanID
	}
	if input.OccurrenceID.IsZero() {
		return lessonplan.ErrEmptyOccurrenceID
	}
	if err := deps.Occurrences.DeleteLessonPlanOccurrence(ctx, input.LessonPlanID, input.OccurrenceID); err != nil {
		return fmt.Errorf("remove lesson plan occurrence: %w", err)
	}
	slog.Info("lesson_plan_event", "event", "occurrence_removed", "lesson_plan_id", input.LessonPlanID, "occurrence_id", input.OccurrenceID)
	return nil
}
