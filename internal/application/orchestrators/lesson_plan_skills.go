package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/lessonplan"
	"rinkdesk/internal/domain/skill"
)

// SkillWriter defines the upstream calls that attach skills to a plan.
type SkillWriter interface {
	AddLessonPlanSkills(ctx context.Context, planID ident.ID, skillIDs []ident.ID, role skill.Role) error
	RemoveLessonPlanSkill(ctx context.Context, planID, skillID ident.ID, role skill.Role) error
}

// AddLessonPlanSkillsInput carries input for the add-skills orchestrator.
// Role is a raw role name; blank means main.
type AddLessonPlanSkillsInput struct {
	LessonPlanID ident.ID
	SkillIDs     []ident.ID
	Role         string
}

// LessonPlanSkillsDeps holds dependencies for the skill orchestrators.
type LessonPlanSkillsDeps struct {
	Skills SkillWriter
}

// ExecuteAddLessonPlanSkills attaches the given skills to a plan under one role.
// PRE: LessonPlanID is non-empty and SkillIDs holds at least one non-blank id
// POST: Blank and repeated ids are dropped before the call is forwarded
func ExecuteAddLessonPlanSkills(ctx context.Context, input AddLessonPlanSkillsInput, deps LessonPlanSkillsDeps) error {
	if input.LessonPlanID.IsZero() {
		return lessonplan.ErrEmptyLessonPlanID
	}
	role, err := skill.ParseRole(input.Role)
	if err != nil {
		return err
	}
	ids := skill.UniqueIDs(input.SkillIDs)
	if len(ids) == 0 {
		return skill.ErrNoSkills
	}
	if err := deps.Skills.AddLessonPlanSkills(ctx, input.LessonPlanID, ids, role); err != nil {
		return fmt.Errorf("add lesson plan skills: %w", err)
	}
	slog.Info("lesson_plan_event", "event", "skills_added", "lesson_plan_id", input.LessonPlanID, "role", role, "count", len(ids))
	return nil
}

// RemoveLessonPlanSkillInput carries input for the remove-skill orchestrator.
type RemoveLessonPlanSkillInput struct {
	LessonPlanID ident.ID
	SkillID      ident.ID
	Role         string
}

// ExecuteRemoveLessonPlanSkill detaches one skill from a plan's role.
// PRE: LessonPlanID and SkillID are non-empty
// POST: The removal is forwarded upstream
func ExecuteRemoveLessonPlanSkill(ctx context.Context, input RemoveLessonPlanSkillInput, deps LessonPlanSkillsDeps) error {
	if input.LessonPlanID.IsZero() {
		return lessonplan.ErrEmptyLessonPlanID
	}
	if input.SkillID.IsZero() {
		return skill.ErrEmptySkillID
	}
	role, err := skill.ParseRole(input.Role)
	if err != nil {
		return err
	}
	if err := deps.Skills.RemoveLessonPlanSkill(ctx, input.LessonPlanID, input.SkillID, role); err != nil {
		return fmt.Errorf("remove lesson plan skill: %w", err)
	}
	slog.Info("lesson_plan_event", "event", "skill_removed", "lesson_plan_id", input.LessonPlanID, "skill_id", input.SkillID, "role", role)
	return nil
}
