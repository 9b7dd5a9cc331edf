package projections

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"rinkdesk/internal/domain/calendar"
	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/lessonplan"
	"rinkdesk/internal/domain/skill"
	"rinkdesk/internal/domain/timeofday"
)

const msgOverviewFailed = "Failed to load class schedules"

// GetLessonPlanDeps holds dependencies for GetLessonPlan.
type GetLessonPlanDeps struct {
	Plans      LessonPlanGetter
	Rosters    RosterLister
	Schedules  ScheduleFetcher
	Fetch      FetchOptions
	Compare    calendar.CompareFunc
	Tolerances calendar.Tolerances
	Location   *time.Location
}

// OccurrenceView is one dated occurrence with the rosters it appears to belong to.
type OccurrenceView struct {
	Occurrence lessonplan.Occurrence `json:"occurrence"`
	DateLabel  string                `json:"date_label"`
	TimeLabel  string                `json:"time_label"`
	Matches    []ident.ID            `json:"matched_roster_ids"`
	Summary    calendar.Summary      `json:"matched_summary"`
}

// PlanSkills lists a plan's skills by lesson role.
type PlanSkills struct {
	Warmup   []skill.Skill `json:"warmup"`
	Main     []skill.Skill `json:"main"`
	Cooldown []skill.Skill `json:"cooldown"`
}

// GetLessonPlanResult carries the query result.
type GetLessonPlanResult struct {
	Plan          lessonplan.LessonPlan `json:"lesson_plan"`
	Skills        PlanSkills            `json:"skills"`
	Occurrences   []OccurrenceView      `json:"occurrences"`
	OverviewError string                `json:"overview_error,omitempty"`
}

// QueryGetLessonPlan loads a lesson plan and matches each occurrence against
// every roster's weekly slots.
// The plan and the weekly overview load concurrently. A failed overview
// leaves every match list empty and sets OverviewError; a failed plan fails
// the query.
// PRE: id is non-empty; deps.Plans, deps.Rosters and deps.Schedules are non-nil
// POST: Occurrences are ordered by date then start time
func QueryGetLessonPlan(ctx context.Context, id ident.ID, deps GetLessonPlanDeps) (GetLessonPlanResult, error) {
	if id.IsZero() {
		return GetLessonPlanResult{}, lessonplan.ErrEmptyLessonPlanID
	}

	var (
		plan        *lessonplan.LessonPlan
		ov          calendar.Overview
		overviewErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := deps.Plans.GetLessonPlan(gctx, id)
		if err != nil {
			return fmt.Errorf("get lesson plan %s: %w", id, err)
		}
		plan = p
		return nil
	})
	g.Go(func() error {
		rosters, err := LoadRosters(gctx, deps.Rosters)
		if err != nil {
			overviewErr = err
			return nil
		}
		ov, _ = BuildWeeklyOverview(gctx, rosters, deps.Schedules, deps.Fetch, deps.Compare)
		return nil
	})
	if err := g.Wait(); err != nil {
		return GetLessonPlanResult{}, err
	}

	res := GetLessonPlanResult{Plan: *plan}
	if overviewErr != nil {
		slog.Warn("lesson_plan_overview_failed", "lesson_plan_id", id, "error", overviewErr)
		res.OverviewError = sectionMessage(overviewErr, msgOverviewFailed)
	}

	occs := append([]lessonplan.Occurrence(nil), plan.Occurrences...)
	lessonplan.SortOccurrences(occs, deps.Location)
	res.Occurrences = make([]OccurrenceView, 0, len(occs))
	for _, occ := range occs {
		matched := calendar.Match(occ, ov, deps.Tolerances, deps.Location)
		ids := make([]ident.ID, 0, len(matched))
		for _, r := range matched {
			ids = append(ids, r.ID)
		}
		res.Occurrences = append(res.Occurrences, OccurrenceView{
			Occurrence: occ,
			DateLabel:  DateLabel(occ.TaughtOn, deps.Location),
			TimeLabel:  timeofday.FormatRange(occ.StartsAt, occ.EndsAt, deps.Location),
			Matches:    ids,
			Summary:    calendar.Summarize(matched),
		})
	}
	res.Skills = PlanSkills{
		Warmup:   nonNilSkills(plan.SkillsFor(skill.RoleWarmup)),
		Main:     nonNilSkills(plan.SkillsFor(skill.RoleMain)),
		Cooldown: nonNilSkills(plan.SkillsFor(skill.RoleCooldown)),
	}
	res.Plan.Occurrences = nil
	res.Plan.MainSkills, res.Plan.Skills, res.Plan.WarmupSkills, res.Plan.CooldownSkills = nil, nil, nil, nil
	return res, nil
}

func nonNilSkills(s []skill.Skill) []skill.Skill {
	if s == nil {
		return []skill.Skill{}
	}
	return s
}
