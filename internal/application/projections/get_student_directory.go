package projections

import (
	"context"
	"fmt"
	"time"

	"rinkdesk/internal/application/listutil"
	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/student"
)

// Student directory sort columns.
var StudentSortColumns = []string{"name", "created"}

// StudentRow is one student directory row.
type StudentRow struct {
	ID           ident.ID `json:"id"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	FullName     string   `json:"full_name"`
	Email        string   `json:"email"`
	Initials     string   `json:"initials"`
	CreatedAt    string   `json:"created_at,omitempty"`
	CreatedLabel string   `json:"created_label"`
}

// GetStudentDirectoryDeps holds dependencies for GetStudentDirectory.
type GetStudentDirectoryDeps struct {
	Students StudentLister
	Location *time.Location
}

// QueryGetStudentDirectory lists students filtered by name or email.
// Sorts: name (last, then first; default asc) and created (missing last).
// PRE: params come from listutil.ParseListParams with StudentSortColumns
// POST: Returns one page; an upstream failure is returned as an error
func QueryGetStudentDirectory(ctx context.Context, params listutil.ListParams, deps GetStudentDirectoryDeps) (DirectoryPage[StudentRow], error) {
	students, err := deps.Students.ListStudents(ctx)
	if err != nil {
		return DirectoryPage[StudentRow]{}, fmt.Errorf("list students: %w", err)
	}

	params = params.SortOr("name", listutil.Asc)
	var keys []listutil.SortKey[student.Student]
	switch params.Sort {
	case "created":
		keys = []listutil.SortKey[student.Student]{
			listutil.TimeKey(func(s student.Student) string { return s.CreatedAt }, deps.Location),
		}
	default:
		keys = []listutil.SortKey[student.Student]{
			listutil.StringKey(func(s student.Student) string { return s.LastName }),
			listutil.StringKey(func(s student.Student) string { return s.FirstName }),
		}
	}

	res := listutil.Process(students, query(params,
		func(s student.Student) string { return listutil.Join(s.FirstName, s.LastName, s.Email) },
		keys,
		func(s student.Student) string { return s.ID.String() },
	))
	return newDirectoryPage(res, params, func(s student.Student) StudentRow {
		return StudentRow{
			ID:           s.ID,
			FirstName:    s.FirstName,
			LastName:     s.LastName,
			FullName:     s.FullName(),
			Email:        s.Email,
			Initials:     Initials(s.FirstName, s.LastName),
			CreatedAt:    s.CreatedAt,
			CreatedLabel: DateLabel(s.CreatedAt, deps.Location),
		}
	}), nil
}
