// Package skill models the skating skills a lesson plan covers.
package skill

import (
	"cmp"
	"errors"
	"slices"
	"strings"

	"rinkdesk/internal/domain/ident"
)

// Role names the part of a lesson a skill is attached to.
type Role string

// Lesson roles
const (
	RoleMain     Role = "main"
	RoleWarmup   Role = "warmup"
	RoleCooldown Role = "cooldown"
)

// Domain errors
var (
	ErrEmptySkillID = errors.New("skill ID cannot be empty")
	ErrNoSkills     = errors.New("at least one skill is required")
	ErrInvalidRole  = errors.New("role must be main, warmup or cooldown")
)

// Skill is one entry of the skill catalogue.
type Skill struct {
	ID       ident.ID `json:"id"`
	Name     string   `json:"name"`
	Level    *int     `json:"level,omitempty"`
	Category string   `json:"category,omitempty"`
}

// ParseRole reads a role name case-insensitively. Blank selects RoleMain.
func ParseRole(v string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(v))); r {
	case "":
		return RoleMain, nil
	case RoleMain, RoleWarmup, RoleCooldown:
		return r, nil
	}
	return "", ErrInvalidRole
}

// UniqueIDs drops blank and repeated ids, keeping first-seen order.
func UniqueIDs(ids []ident.ID) []ident.ID {
	out := make([]ident.ID, 0, len(ids))
	for _, id := range ids {
		if !id.IsZero() && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// LevelGroup holds the skills sharing one level. Level is nil for unleveled skills.
type LevelGroup struct {
	Level  *int    `json:"level"`
	Skills []Skill `json:"skills"`
}

// GroupByLevel buckets skills by ascending level, unleveled last, with each
// bucket ordered by name.
// INVARIANT: the input slice is not reordered
func GroupByLevel(skills []Skill) []LevelGroup {
	sorted := slices.Clone(skills)
	slices.SortStableFunc(sorted, func(a, b Skill) int {
		if c := compareLevel(a.Level, b.Level); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	var out []LevelGroup
	for _, s := range sorted {
		if n := len(out); n > 0 && compareLevel(out[n-1].Level, s.Level) == 0 {
			out[n-1].Skills = append(out[n-1].Skills, s)
			continue
		}
		out = append(out, LevelGroup{Level: s.Level, Skills: []Skill{s}})
	}
	return out
}

func compareLevel(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}
