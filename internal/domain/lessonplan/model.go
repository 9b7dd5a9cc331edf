package lessonplan

import (
	"errors"
	"sort"
	"strings"
	"time"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/roster"
	"rinkdesk/internal/domain/skill"
	"rinkdesk/internal/domain/timeofday"
)

// Max length constants.
const (
	MaxLocationLength = 200
)

// Domain errors
var (
	ErrEmptyLessonPlanID = errors.New("lesson plan ID cannot be empty")
	ErrEmptyOccurrenceID = errors.New("occurrence ID cannot be empty")
	ErrEmptyDate         = errors.New("taught on date is required")
	ErrInvalidDate       = errors.New("taught on must be YYYY-MM-DD")
	ErrInvalidStartTime  = errors.New("start time must be HH:MM")
	ErrInvalidEndTime    = errors.New("end time must be HH:MM")
	ErrEndWithoutStart   = errors.New("end time requires a start time")
	ErrEndNotAfterStart  = errors.New("end time must be after start time")
	ErrLocationTooLong   = errors.New("location cannot exceed 200 characters")
)

// LessonPlan is a reusable plan for one class session.
type LessonPlan struct {
	ID              ident.ID     `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	CreatedAt       string       `json:"created_at,omitempty"`
	NextScheduledAt string       `json:"next_scheduled_at,omitempty"`
	Occurrences     []Occurrence `json:"lesson_plan_occurrences,omitempty"`

	// Skills is the older spelling of MainSkills.
	MainSkills     []skill.Skill `json:"main_skills,omitempty"`
	Skills         []skill.Skill `json:"skills,omitempty"`
	WarmupSkills   []skill.Skill `json:"warmup_skills,omitempty"`
	CooldownSkills []skill.Skill `json:"cooldown_skills,omitempty"`
}

// SkillsFor returns the skills attached under role. Main falls back to skills
// when main_skills is absent.
func (lp *LessonPlan) SkillsFor(role skill.Role) []skill.Skill {
	switch role {
	case skill.RoleWarmup:
		return lp.WarmupSkills
	case skill.RoleCooldown:
		return lp.CooldownSkills
	}
	if lp.MainSkills != nil {
		return lp.MainSkills
	}
	return lp.Skills
}

// Occurrence is one dated instance of a lesson plan being taught.
// Time and roster fields are optional.
type Occurrence struct {
	ID           ident.ID       `json:"id"`
	LessonPlanID ident.ID       `json:"lesson_plan_id,omitempty"`
	TaughtOn     string         `json:"taught_on"`
	StartsAt     string         `json:"starts_at,omitempty"`
	EndsAt       string         `json:"ends_at,omitempty"`
	Location     string         `json:"location,omitempty"`
	RosterID     ident.ID       `json:"roster_id,omitempty"`
	Roster       *roster.Roster `json:"roster,omitempty"`
	LessonPlan   *LessonPlan    `json:"lesson_plan,omitempty"`

	// RosterIDCamel carries the camelCase spelling some endpoints emit.
	RosterIDCamel ident.ID `json:"rosterId,omitempty"`
}

// EffectiveRosterID returns roster.id, else roster_id, else rosterId.
// INVARIANT: Occurrence fields are not mutated
func (o *Occurrence) EffectiveRosterID() ident.ID {
	var embedded ident.ID
	if o.Roster != nil {
		embedded = o.Roster.ID
	}
	return ident.First(embedded, o.RosterID, o.RosterIDCamel)
}

// PlanID returns the embedded plan id, else lesson_plan_id.
func (o *Occurrence) PlanID() ident.ID {
	var embedded ident.ID
	if o.LessonPlan != nil {
		embedded = o.LessonPlan.ID
	}
	return ident.First(embedded, o.LessonPlanID)
}

// Title returns the embedded plan title, or "Lesson plan".
func (o *Occurrence) Title() string {
	if o.LessonPlan != nil && strings.TrimSpace(o.LessonPlan.Title) != "" {
		return o.LessonPlan.Title
	}
	return "Lesson plan"
}

// HasTime reports whether either start or end is set.
func (o *Occurrence) HasTime() bool {
	return strings.TrimSpace(o.StartsAt) != "" || strings.TrimSpace(o.EndsAt) != ""
}

// Validate checks an occurrence before it is sent upstream.
// PRE: Occurrence struct is populated
// POST: Returns nil if the date is valid and any supplied times are well-formed
func (o *Occurrence) Validate() error {
	date := strings.TrimSpace(o.TaughtOn)
	if date == "" {
		return ErrEmptyDate
	}
	if _, ok := timeofday.ParseDateKey(date, time.UTC); !ok {
		return ErrInvalidDate
	}
	start := strings.TrimSpace(o.StartsAt)
	end := strings.TrimSpace(o.EndsAt)
	if start != "" && !timeofday.IsClock(start) {
		return ErrInvalidStartTime
	}
	if end != "" && !timeofday.IsClock(end) {
		return ErrInvalidEndTime
	}
	if end != "" && start == "" {
		return ErrEndWithoutStart
	}
	if start != "" && end != "" {
		sm, _ := timeofday.ParseMinutes(start, time.UTC)
		em, _ := timeofday.ParseMinutes(end, time.UTC)
		if em <= sm {
			return ErrEndNotAfterStart
		}
	}
	if len(o.Location) > MaxLocationLength {
		return ErrLocationTooLong
	}
	return nil
}

// SortOccurrences orders occurrences by date, then start time (missing last).
// POST: occs is sorted in place; equal keys keep their input order
func SortOccurrences(occs []Occurrence, loc *time.Location) {
	sort.SliceStable(occs, func(i, j int) bool {
		di, dj := dateKeyOrMax(occs[i].TaughtOn), dateKeyOrMax(occs[j].TaughtOn)
		if di != dj {
			return di < dj
		}
		return timeofday.Key(occs[i].StartsAt, loc) < timeofday.Key(occs[j].StartsAt, loc)
	})
}

// DedupeByPlan collapses occurrences into their lesson plans, first-seen order.
// Occurrences without an embedded plan or plan id are dropped.
func DedupeByPlan(occs []Occurrence) []LessonPlan {
	seen := make(map[ident.ID]bool, len(occs))
	var out []LessonPlan
	for _, o := range occs {
		id := o.PlanID()
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		var lp LessonPlan
		if o.LessonPlan != nil {
			lp = *o.LessonPlan
		}
		lp.ID = id
		out = append(out, lp)
	}
	return out
}

func dateKeyOrMax(v string) string {
	if k, ok := timeofday.NormalizeDateKey(v); ok {
		return k
	}
	return "9999-99-99"
}
