package projections

import (
	"context"
	"fmt"
	"time"

	"rinkdesk/internal/application/listutil"
	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/lessonplan"
	"rinkdesk/internal/domain/timeofday"
)

// Lesson plan directory sort columns.
var LessonPlanSortColumns = []string{"created", "scheduled", "title"}

// LessonPlanFilterKeys are the recognised lesson plan directory filters.
var LessonPlanFilterKeys = []string{"roster_id"}

// LessonPlanRow is one lesson plan directory row.
type LessonPlanRow struct {
	ID              ident.ID `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
	CreatedLabel    string   `json:"created_label"`
	NextScheduledAt string   `json:"next_scheduled_at,omitempty"`
	NextLabel       string   `json:"next_label"`
}

// GetLessonPlanDirectoryDeps holds dependencies for GetLessonPlanDirectory.
type GetLessonPlanDirectoryDeps struct {
	LessonPlans LessonPlanLister
	Location    *time.Location
}

// QueryGetLessonPlanDirectory lists lesson plans filtered by title or description.
// A roster_id filter restricts the list to plans the API matches to that
// roster's schedule, one row per plan. Sorts: created (default desc),
// scheduled (next_scheduled_at) and title; missing dates sort last.
// PRE: params come from listutil.ParseListParams with LessonPlanSortColumns and LessonPlanFilterKeys
// POST: Returns one page
func QueryGetLessonPlanDirectory(ctx context.Context, params listutil.ListParams, deps GetLessonPlanDirectoryDeps) (DirectoryPage[LessonPlanRow], error) {
	var plans []lessonplan.LessonPlan
	if rosterID := ident.ID(params.Filter("roster_id")); !rosterID.IsZero() {
		occs, err := deps.LessonPlans.ListLessonPlansMatchingSchedule(ctx, rosterID)
		if err != nil {
			return DirectoryPage[LessonPlanRow]{}, fmt.Errorf("list lesson plans for roster %s: %w", rosterID, err)
		}
		plans = lessonplan.DedupeByPlan(occs)
	} else {
		all, err := deps.LessonPlans.ListLessonPlans(ctx)
		if err != nil {
			return DirectoryPage[LessonPlanRow]{}, fmt.Errorf("list lesson plans: %w", err)
		}
		plans = all
	}

	params = params.SortOr("created", listutil.Desc)
	byTitle := listutil.StringKey(func(p lessonplan.LessonPlan) string { return p.Title })
	var keys []listutil.SortKey[lessonplan.LessonPlan]
	switch params.Sort {
	case "scheduled":
		keys = []listutil.SortKey[lessonplan.LessonPlan]{
			listutil.TimeKey(func(p lessonplan.LessonPlan) string { return p.NextScheduledAt }, deps.Location),
		}
	case "title":
		keys = []listutil.SortKey[lessonplan.LessonPlan]{byTitle}
	default:
		keys = []listutil.SortKey[lessonplan.LessonPlan]{
			listutil.TimeKey(func(p lessonplan.LessonPlan) string { return p.CreatedAt }, deps.Location),
		}
	}

	res := listutil.Process(plans, query(params,
		func(p lessonplan.LessonPlan) string { return listutil.Join(p.Title, p.Description) },
		keys,
		func(p lessonplan.LessonPlan) string { return p.ID.String() },
	))
	return newDirectoryPage(res, params, func(p lessonplan.LessonPlan) LessonPlanRow {
		next := "Not scheduled"
		if _, ok := timeofday.ParseDateTime(p.NextScheduledAt, deps.Location); ok {
			next = DateLabel(p.NextScheduledAt, deps.Location)
		}
		return LessonPlanRow{
			ID:              p.ID,
			Title:           p.Title,
			Description:     p.Description,
			CreatedAt:       p.CreatedAt,
			CreatedLabel:    DateLabel(p.CreatedAt, deps.Location),
			NextScheduledAt: p.NextScheduledAt,
			NextLabel:       next,
		}
	}), nil
}
