package student

import (
	"errors"
	"strings"

	"rinkdesk/internal/domain/ident"
)

// ErrEmptyStudentID is returned when a student id is required but blank.
var ErrEmptyStudentID = errors.New("student ID cannot be empty")

// Student holds the directory fields of an enrolled skater.
type Student struct {
	ID        ident.ID `json:"id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	CreatedAt string   `json:"created_at"`
	Notes     string   `json:"notes,omitempty"`

	// Birth dates arrive under whichever key the endpoint uses.
	Birthday    string `json:"birthday,omitempty"`
	Birthdate   string `json:"birthdate,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	DOB         string `json:"dob,omitempty"`

	// Rosters is embedded by the student detail endpoint only.
	Rosters []RosterRef `json:"rosters,omitempty"`
}

// RosterRef is the roster summary nested in a student record.
type RosterRef struct {
	ID   ident.ID `json:"id"`
	Name string   `json:"name"`
}

// FullName returns "First Last" with surrounding blanks removed.
// INVARIANT: Student fields are not mutated
func (s Student) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
}

// BirthValue returns the first non-blank of birthday, birthdate, date_of_birth and dob.
func (s Student) BirthValue() string {
	for _, v := range []string{s.Birthday, s.Birthdate, s.DateOfBirth, s.DOB} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Dedupe keeps the last record seen for each id, in first-seen order.
// Students without an id are dropped.
func Dedupe(students []Student) []Student {
	index := make(map[ident.ID]int, len(students))
	out := make([]Student, 0, len(students))
	for _, s := range students {
		if s.ID.IsZero() {
			continue
		}
		if i, ok := index[s.ID]; ok {
			out[i] = s
			continue
		}
		index[s.ID] = len(out)
		out = append(out, s)
	}
	return out
}
