package projections

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rinkdesk/internal/application/listutil"
	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/roster"
)

// Roster directory sort columns.
var RosterSortColumns = []string{"name", "students", "scheduled"}

// RosterRow is one roster directory row.
type RosterRow struct {
	ID           ident.ID `json:"id"`
	Name         string   `json:"name"`
	IndexLetter  string   `json:"index_letter"`
	Teachers     []string `json:"teachers"`
	StudentCount int      `json:"student_count"`
	Scheduled    bool     `json:"scheduled"`
	Meets        string   `json:"meets"`
}

// GetRosterDirectoryDeps holds dependencies for GetRosterDirectory.
type GetRosterDirectoryDeps struct {
	Rosters  RosterDirectoryLister
	Location *time.Location
}

// QueryGetRosterDirectory lists rosters filtered by name or teacher.
// Sorts: name (default asc), students (count, then name) and scheduled
// (has weekly slots, then name).
// PRE: params come from listutil.ParseListParams with RosterSortColumns
// POST: Returns one page; each row carries its meets label and index letter
func QueryGetRosterDirectory(ctx context.Context, params listutil.ListParams, deps GetRosterDirectoryDeps) (DirectoryPage[RosterRow], error) {
	rosters, err := deps.Rosters.ListRosterDirectory(ctx)
	if err != nil {
		return DirectoryPage[RosterRow]{}, fmt.Errorf("list rosters: %w", err)
	}

	params = params.SortOr("name", listutil.Asc)
	byName := listutil.StringKey(func(r roster.Roster) string { return r.Name })
	var keys []listutil.SortKey[roster.Roster]
	switch params.Sort {
	case "students":
		keys = []listutil.SortKey[roster.Roster]{
			listutil.IntKey(func(r roster.Roster) (int, bool) { return r.StudentCount(), true }),
			byName,
		}
	case "scheduled":
		keys = []listutil.SortKey[roster.Roster]{
			listutil.BoolKey(func(r roster.Roster) bool { return len(r.Schedules) > 0 }),
			byName,
		}
	default:
		keys = []listutil.SortKey[roster.Roster]{byName}
	}

	res := listutil.Process(rosters, query(params,
		func(r roster.Roster) string { return listutil.Join(r.Name, strings.Join(teacherNames(r), " ")) },
		keys,
		func(r roster.Roster) string { return r.ID.String() },
	))
	return newDirectoryPage(res, params, func(r roster.Roster) RosterRow {
		return RosterRow{
			ID:           r.ID,
			Name:         r.Name,
			IndexLetter:  r.IndexLetter(),
			Teachers:     teacherNames(r),
			StudentCount: r.StudentCount(),
			Scheduled:    len(r.Schedules) > 0,
			Meets:        roster.MeetsLabel(r.Schedules, deps.Location),
		}
	}), nil
}

func teacherNames(r roster.Roster) []string {
	names := []string{}
	for _, t := range r.AllTeachers() {
		if n := t.FullName(); n != "" {
			names = append(names, n)
		}
	}
	return names
}
