package projections

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/student"
)

// Display limits for the my-students card.
const (
	MyStudentsInitialLimit = 5
	MaxUpcomingBirthdays   = 3
	MaxRecentBirthdays     = 2
)

// GetMyStudentsQuery carries query parameters.
// A non-blank Search implies ShowAll.
type GetMyStudentsQuery struct {
	Search  string
	ShowAll bool
}

// GetMyStudentsDeps holds dependencies for GetMyStudents.
type GetMyStudentsDeps struct {
	Students MyStudentsLister
	Location *time.Location
	Now      func() time.Time
}

// MyStudentRow is one student in the card's list.
type MyStudentRow struct {
	ID            ident.ID `json:"id"`
	FullName      string   `json:"full_name"`
	Email         string   `json:"email,omitempty"`
	Initials      string   `json:"initials"`
	BirthdayLabel string   `json:"birthday_label,omitempty"`
}

// BirthdayRow is one student whose birthday is near today.
// Days counts until the birthday for upcoming rows and since it for recent rows.
type BirthdayRow struct {
	ID       ident.ID `json:"id"`
	FullName string   `json:"full_name"`
	Initials string   `json:"initials"`
	Label    string   `json:"label"`
	Days     int      `json:"days"`
	When     string   `json:"when"`
}

// GetMyStudentsResult carries the query result.
type GetMyStudentsResult struct {
	Students   []MyStudentRow `json:"students"`
	Total      int            `json:"total"`
	Hidden     int            `json:"hidden"`
	ShowAll    bool           `json:"show_all"`
	Upcoming   []BirthdayRow  `json:"upcoming_birthdays"`
	Recent     []BirthdayRow  `json:"recent_birthdays"`
	BadgeCount int            `json:"birthday_badge_count"`
}

// QueryGetMyStudents lists the caller's students and the birthdays near today.
// Students are deduplicated by id. Search matches "first last email"
// case-insensitively and filters the list only; birthdays always consider
// every student. A birthday within UpcomingBirthdayDays is upcoming and one
// within RecentBirthdayDays that is not upcoming is recent.
// PRE: deps.Students is non-nil
// POST: len(Upcoming) <= MaxUpcomingBirthdays and len(Recent) <= MaxRecentBirthdays
func QueryGetMyStudents(ctx context.Context, query GetMyStudentsQuery, deps GetMyStudentsDeps) (GetMyStudentsResult, error) {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	all, err := deps.Students.ListStudentsFromRosters(ctx)
	if err != nil {
		return GetMyStudentsResult{}, fmt.Errorf("list students from rosters: %w", err)
	}
	students := student.Dedupe(all)

	search := strings.ToLower(strings.TrimSpace(query.Search))
	showAll := query.ShowAll || search != ""
	var matched []student.Student
	for _, s := range students {
		hay := strings.ToLower(s.FirstName + " " + s.LastName + " " + s.Email)
		if search == "" || strings.Contains(hay, search) {
			matched = append(matched, s)
		}
	}
	visible := matched
	if !showAll && len(visible) > MyStudentsInitialLimit {
		visible = visible[:MyStudentsInitialLimit]
	}

	res := GetMyStudentsResult{
		Students: make([]MyStudentRow, 0, len(visible)),
		Total:    len(matched),
		Hidden:   len(matched) - len(visible),
		ShowAll:  showAll,
	}
	for _, s := range visible {
		row := MyStudentRow{ID: s.ID, FullName: s.FullName(), Email: s.Email, Initials: Initials(s.FirstName, s.LastName)}
		if md, ok := student.ParseMonthDay(s.BirthValue()); ok {
			row.BirthdayLabel = md.Label()
		}
		res.Students = append(res.Students, row)
	}

	res.Upcoming, res.Recent = nearBirthdays(students, now(), loc)
	res.BadgeCount = len(res.Upcoming) + len(res.Recent)
	return res, nil
}

// nearBirthdays splits students into upcoming and recent birthdays, nearest
// first, each cut to its display limit. Students without a readable birthday
// are skipped.
func nearBirthdays(students []student.Student, today time.Time, loc *time.Location) (upcoming, recent []BirthdayRow) {
	upcoming, recent = []BirthdayRow{}, []BirthdayRow{}
	for _, s := range students {
		md, ok := student.ParseMonthDay(s.BirthValue())
		if !ok {
			continue
		}
		until, since := md.Distance(today, loc)
		row := BirthdayRow{ID: s.ID, FullName: s.FullName(), Initials: Initials(s.FirstName, s.LastName), Label: md.Label()}
		switch {
		case until <= student.UpcomingBirthdayDays:
			row.Days = until
			row.When = untilLabel(until)
			upcoming = append(upcoming, row)
		case since <= student.RecentBirthdayDays:
			row.Days = since
			row.When = fmt.Sprintf("%dd ago", since)
			recent = append(recent, row)
		}
	}
	byDays := func(a, b BirthdayRow) int { return cmp.Compare(a.Days, b.Days) }
	slices.SortStableFunc(upcoming, byDays)
	slices.SortStableFunc(recent, byDays)
	return upcoming[:min(len(upcoming), MaxUpcomingBirthdays)], recent[:min(len(recent), MaxRecentBirthdays)]
}

func untilLabel(days int) string {
	switch days {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	}
	return fmt.Sprintf("In %dd", days)
}
