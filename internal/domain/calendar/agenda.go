package calendar

import (
	"sort"
	"time"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/lessonplan"
	"rinkdesk/internal/domain/meeting"
	"rinkdesk/internal/domain/roster"
	"rinkdesk/internal/domain/schedule"
	"rinkdesk/internal/domain/timeofday"
)

// Display limits for a calendar day.
const (
	ClassLimit      = 6
	OtherPlansLimit = 5
)

// ClassKind distinguishes recurring from one-off class instances.
type ClassKind string

// Class kinds
const (
	KindWeekly ClassKind = "weekly"
	KindOneOff ClassKind = "one-off"
)

// Class is one class instance taking place on a given date.
type Class struct {
	Kind        ClassKind                `json:"type"`
	Roster      *roster.Roster           `json:"roster,omitempty"`
	RosterID    ident.ID                 `json:"roster_id,omitempty"`
	StartsAt    string                   `json:"starts_at,omitempty"`
	EndsAt      string                   `json:"ends_at,omitempty"`
	Location    string                   `json:"location,omitempty"`
	Notes       string                   `json:"notes,omitempty"`
	Schedule    *schedule.WeeklySchedule `json:"schedule,omitempty"`
	Meeting     *meeting.Meeting         `json:"meeting,omitempty"`
	LessonPlans []lessonplan.Occurrence  `json:"lesson_plans"`
}

// RosterName returns the class roster's name, or "".
func (c *Class) RosterName() string {
	if c.Roster == nil {
		return ""
	}
	return c.Roster.Name
}

// Agenda is the assembled schedule of a single date.
type Agenda struct {
	Date             string                  `json:"date"`
	Classes          []Class                 `json:"classes"`
	OtherLessonPlans []lessonplan.Occurrence `json:"other_lesson_plans"`
	TotalClasses     int                     `json:"total_classes"`
	TotalLessonPlans int                     `json:"total_lesson_plans"`
}

// BuildAgenda assembles the classes of a date and assigns lesson-plan occurrences to them.
//
// Weekly instances come from each roster's schedules on the date's weekday;
// one-off instances come from meetings. Classes are ordered by start time
// (missing last), weekly before one-off, then roster name. Each occurrence is
// given to the first class it fits: roster ids must agree when both are known,
// and the occurrence's time must overlap the class. An occurrence without an
// end is treated as a one-minute block. Occurrences with no start, or that fit
// no class, are returned as OtherLessonPlans. Occurrences without an id are
// counted but never placed.
// PRE: cmp may be nil; loc may be nil (time.Local is used)
// POST: Every occurrence with an id appears exactly once, in a class or in OtherLessonPlans
func BuildAgenda(date string, rosters []roster.Roster, meetings []meeting.Meeting, occs []lessonplan.Occurrence, loc *time.Location, cmp CompareFunc) Agenda {
	if cmp == nil {
		cmp = foldCompare
	}

	var classes []Class
	if dow, ok := timeofday.WeekdayOf(date, loc); ok {
		for i := range rosters {
			r := &rosters[i]
			for j := range r.Schedules {
				s := &r.Schedules[j]
				if int(s.Weekday) != dow {
					continue
				}
				classes = append(classes, Class{
					Kind:     KindWeekly,
					Roster:   r,
					RosterID: r.ID,
					StartsAt: s.StartsAt,
					EndsAt:   s.EndsAt,
					Location: s.Location,
					Schedule: s,
				})
			}
		}
	}
	for i := range meetings {
		m := &meetings[i]
		classes = append(classes, Class{
			Kind:     KindOneOff,
			Roster:   m.Roster,
			RosterID: m.EffectiveRosterID(),
			StartsAt: m.StartsAt,
			EndsAt:   m.EndsAt,
			Location: m.Location,
			Notes:    m.Notes,
			Meeting:  m,
		})
	}

	sort.SliceStable(classes, func(i, j int) bool {
		ti := timeofday.Key(classes[i].StartsAt, loc)
		tj := timeofday.Key(classes[j].StartsAt, loc)
		if ti != tj {
			return ti < tj
		}
		if classes[i].Kind != classes[j].Kind {
			return classes[i].Kind == KindWeekly
		}
		return cmp(classes[i].RosterName(), classes[j].RosterName()) < 0
	})

	used := make(map[ident.ID]bool, len(occs))
	for ci := range classes {
		cls := &classes[ci]
		cls.LessonPlans = []lessonplan.Occurrence{}
		clsStart, hasClsStart := timeofday.ParseMinutes(cls.StartsAt, loc)
		clsEnd, hasClsEnd := timeofday.ParseMinutes(cls.EndsAt, loc)
		for _, occ := range occs {
			if occ.ID.IsZero() || used[occ.ID] {
				continue
			}
			occRoster := occ.EffectiveRosterID()
			if !cls.RosterID.IsZero() && !occRoster.IsZero() && cls.RosterID != occRoster {
				continue
			}
			occStart, ok := timeofday.ParseMinutes(occ.StartsAt, loc)
			if !ok || !hasClsStart {
				continue
			}
			occEnd, hasOccEnd := timeofday.ParseMinutes(occ.EndsAt, loc)
			if !overlaps(occStart, occEnd, hasOccEnd, clsStart, clsEnd, hasClsEnd) {
				continue
			}
			used[occ.ID] = true
			cls.LessonPlans = append(cls.LessonPlans, occ)
		}
	}

	other := []lessonplan.Occurrence{}
	for _, occ := range occs {
		if !occ.ID.IsZero() && !used[occ.ID] {
			other = append(other, occ)
		}
	}
	if classes == nil {
		classes = []Class{}
	}

	return Agenda{
		Date:             date,
		Classes:          classes,
		OtherLessonPlans: other,
		TotalClasses:     len(classes),
		TotalLessonPlans: len(occs),
	}
}

// VisibleClasses returns the classes to show and how many are hidden.
func (a Agenda) VisibleClasses(showAll bool) ([]Class, int) {
	if showAll || len(a.Classes) <= ClassLimit {
		return a.Classes, 0
	}
	return a.Classes[:ClassLimit], len(a.Classes) - ClassLimit
}

// VisibleOtherPlans returns the unassigned occurrences to show and how many are hidden.
func (a Agenda) VisibleOtherPlans(showAll bool) ([]lessonplan.Occurrence, int) {
	if showAll || len(a.OtherLessonPlans) <= OtherPlansLimit {
		return a.OtherLessonPlans, 0
	}
	return a.OtherLessonPlans[:OtherPlansLimit], len(a.OtherLessonPlans) - OtherPlansLimit
}

// overlaps reports aStart < bEnd && aEnd > bStart, with a missing end
// treated as start+1.
func overlaps(aStart, aEnd int, hasAEnd bool, bStart, bEnd int, hasBEnd bool) bool {
	if !hasAEnd {
		aEnd = aStart + 1
	}
	if !hasBEnd {
		bEnd = bStart + 1
	}
	return aStart < bEnd && aEnd > bStart
}
