package roster

import (
	"errors"
	"sort"
	"strings"
	"time"
	"unicode"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/schedule"
	"rinkdesk/internal/domain/student"
	"rinkdesk/internal/domain/timeofday"
)

// ErrEmptyTeacherID is returned when a teacher id is required but blank.
var ErrEmptyTeacherID = errors.New("teacher ID cannot be empty")

// NoSchedule is the label shown for a roster without weekly slots.
const NoSchedule = "—"

// maxLabelGroups caps how many time groups MeetsLabel spells out.
const maxLabelGroups = 2

// Teacher is a staff member assigned to a roster.
type Teacher struct {
	ID        ident.ID `json:"id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email,omitempty"`
}

// FullName returns "First Last".
func (t Teacher) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(t.FirstName) + " " + strings.TrimSpace(t.LastName))
}

// Roster is a named group of students with teachers and weekly schedules.
type Roster struct {
	ID            ident.ID                  `json:"id"`
	Name          string                    `json:"name"`
	Teacher       *Teacher                  `json:"teacher,omitempty"`
	Teachers      []Teacher                 `json:"teachers,omitempty"`
	Students      []student.Student         `json:"students,omitempty"`
	StudentsCount *int                      `json:"students_count,omitempty"`
	Schedules     []schedule.WeeklySchedule `json:"roster_schedules,omitempty"`
	CreatedAt     string                    `json:"created_at,omitempty"`
}

// StudentCount returns len(Students) when the list was embedded, else StudentsCount, else 0.
// INVARIANT: Roster fields are not mutated
func (r *Roster) StudentCount() int {
	if r.Students != nil {
		return len(r.Students)
	}
	if r.StudentsCount != nil {
		return *r.StudentsCount
	}
	return 0
}

// PrimaryTeacher returns the explicit teacher, else the first listed one.
// POST: Returns nil when the roster has no teachers
func (r *Roster) PrimaryTeacher() *Teacher {
	if r.Teacher != nil {
		return r.Teacher
	}
	if len(r.Teachers) > 0 {
		return &r.Teachers[0]
	}
	return nil
}

// AllTeachers returns the explicit teacher (if any) followed by the listed ones.
func (r *Roster) AllTeachers() []Teacher {
	out := make([]Teacher, 0, len(r.Teachers)+1)
	if r.Teacher != nil {
		out = append(out, *r.Teacher)
	}
	return append(out, r.Teachers...)
}

// IndexLetter returns the uppercase initial used to group rosters, or "#".
func (r *Roster) IndexLetter() string {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return "#"
	}
	ch := unicode.ToUpper([]rune(name)[0])
	if ch < 'A' || ch > 'Z' {
		return "#"
	}
	return string(ch)
}

// MeetsLabel summarizes weekly schedules as e.g. "Mon/Wed 4:00 PM – 5:00 PM".
// Schedules sharing a start/end pair are grouped; days within a group are
// ordered numerically. At most two groups are listed, joined by " • ", with
// " • …" appended when more exist.
// PRE: loc may be nil (time.Local is used)
// POST: Returns NoSchedule when there are no schedules
func MeetsLabel(schedules []schedule.WeeklySchedule, loc *time.Location) string {
	if len(schedules) == 0 {
		return NoSchedule
	}

	type group struct {
		days       []schedule.Weekday
		start, end string
	}
	var order []string
	groups := make(map[string]*group)
	for _, s := range schedules {
		key := s.StartsAt + "|" + s.EndsAt
		g, ok := groups[key]
		if !ok {
			g = &group{start: s.StartsAt, end: s.EndsAt}
			groups[key] = g
			order = append(order, key)
		}
		g.days = append(g.days, s.Weekday)
	}

	parts := make([]string, 0, len(order))
	for _, key := range order {
		g := groups[key]
		sort.SliceStable(g.days, func(i, j int) bool { return g.days[i] < g.days[j] })
		var names []string
		for _, d := range g.days {
			if n := d.Short(); n != "" {
				names = append(names, n)
			}
		}
		var fields []string
		if len(names) > 0 {
			fields = append(fields, strings.Join(names, "/"))
		}
		if r := timeofday.FormatRange(g.start, g.end, loc); r != "" {
			fields = append(fields, r)
		}
		if len(fields) > 0 {
			parts = append(parts, strings.Join(fields, " "))
		}
	}

	if len(parts) == 0 {
		return ""
	}
	label := strings.Join(parts[:min(len(parts), maxLabelGroups)], " • ")
	if len(parts) > maxLabelGroups {
		label += " • …"
	}
	return label
}
