package projections

import (
	"context"
	"fmt"
	"time"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/student"
)

// GetStudentDeps holds dependencies for GetStudent.
type GetStudentDeps struct {
	Students StudentGetter
	Location *time.Location
}

// GetStudentResult carries the student detail view.
type GetStudentResult struct {
	Student       student.Student     `json:"student"`
	FullName      string              `json:"full_name"`
	Initials      string              `json:"initials"`
	BirthdayLabel string              `json:"birthday_label"`
	CreatedLabel  string              `json:"created_label"`
	Rosters       []student.RosterRef `json:"rosters"`
}

// QueryGetStudent loads one student with the rosters they belong to.
// PRE: id is non-empty
// POST: Rosters is non-nil; a missing or unreadable birthday shows Placeholder
func QueryGetStudent(ctx context.Context, id ident.ID, deps GetStudentDeps) (GetStudentResult, error) {
	if id.IsZero() {
		return GetStudentResult{}, student.ErrEmptyStudentID
	}
	s, err := deps.Students.GetStudent(ctx, id)
	if err != nil {
		return GetStudentResult{}, fmt.Errorf("get student %s: %w", id, err)
	}
	res := GetStudentResult{
		Student:       *s,
		FullName:      s.FullName(),
		Initials:      Initials(s.FirstName, s.LastName),
		BirthdayLabel: DateLabel(s.BirthValue(), deps.Location),
		CreatedLabel:  DateLabel(s.CreatedAt, deps.Location),
		Rosters:       s.Rosters,
	}
	if res.Rosters == nil {
		res.Rosters = []student.RosterRef{}
	}
	if res.BirthdayLabel == Placeholder {
		if md, ok := student.ParseMonthDay(s.BirthValue()); ok {
			res.BirthdayLabel = md.Label()
		}
	}
	res.Student.Rosters = nil
	return res, nil
}
