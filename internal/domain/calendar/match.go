package calendar

import (
	"time"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/lessonplan"
	"rinkdesk/internal/domain/roster"
	"rinkdesk/internal/domain/schedule"
	"rinkdesk/internal/domain/timeofday"
)

// Default matching tolerances, in minutes.
const (
	DefaultNearExactMinutes     = 3
	DefaultOverlapBufferMinutes = 2
	DefaultStartOnlyMinutes     = 5
)

// SummaryNames is how many matched roster names a summary spells out.
const SummaryNames = 2

// Tolerances controls how loosely an occurrence may line up with a weekly slot.
type Tolerances struct {
	NearExactMinutes     int `yaml:"near_exact_minutes" json:"near_exact_minutes"`
	OverlapBufferMinutes int `yaml:"overlap_buffer_minutes" json:"overlap_buffer_minutes"`
	StartOnlyMinutes     int `yaml:"start_only_minutes" json:"start_only_minutes"`
}

// DefaultTolerances returns the 3/2/5 minute tolerances.
func DefaultTolerances() Tolerances {
	return Tolerances{
		NearExactMinutes:     DefaultNearExactMinutes,
		OverlapBufferMinutes: DefaultOverlapBufferMinutes,
		StartOnlyMinutes:     DefaultStartOnlyMinutes,
	}
}

// Match returns the rosters whose weekly slots an occurrence plausibly belongs to.
//
// The occurrence's weekday selects the candidate slots. With start and end
// known on both sides, a slot matches when both ends are within
// NearExactMinutes, or when the intervals overlap after widening each by
// OverlapBufferMinutes. With only the two starts known, they must be within
// StartOnlyMinutes. Every matching roster is returned once, in slot order;
// slots whose roster has no id are ignored.
// PRE: loc may be nil (time.Local is used)
// POST: Returns nil when nothing matches
func Match(occ lessonplan.Occurrence, ov Overview, tol Tolerances, loc *time.Location) []roster.Roster {
	weekday, ok := timeofday.WeekdayOf(occ.TaughtOn, loc)
	if !ok {
		return nil
	}
	candidates := ov[schedule.Weekday(weekday)]
	if len(candidates) == 0 || !occ.HasTime() {
		return nil
	}

	occStart, hasOccStart := timeofday.ParseMinutes(occ.StartsAt, loc)
	occEnd, hasOccEnd := timeofday.ParseMinutes(occ.EndsAt, loc)

	var out []roster.Roster
	seen := make(map[ident.ID]bool)
	for _, c := range candidates {
		if c.Roster.ID.IsZero() || seen[c.Roster.ID] {
			continue
		}
		schStart, hasSchStart := timeofday.ParseMinutes(c.Schedule.StartsAt, loc)
		schEnd, hasSchEnd := timeofday.ParseMinutes(c.Schedule.EndsAt, loc)

		matched := false
		switch {
		case hasOccStart && hasOccEnd && hasSchStart && hasSchEnd:
			nearExact := abs(occStart-schStart) <= tol.NearExactMinutes &&
				abs(occEnd-schEnd) <= tol.NearExactMinutes
			b := tol.OverlapBufferMinutes
			overlap := occStart-b < schEnd+b && occEnd+b > schStart-b
			matched = nearExact || overlap
		case hasOccStart && hasSchStart:
			matched = abs(occStart-schStart) <= tol.StartOnlyMinutes
		}
		if matched {
			seen[c.Roster.ID] = true
			out = append(out, c.Roster)
		}
	}
	return out
}

// Summary is the compact display of a match list: the first names and a remainder count.
type Summary struct {
	Names []string `json:"names"`
	More  int      `json:"more"`
}

// Summarize keeps the first SummaryNames roster names and counts the rest.
func Summarize(rosters []roster.Roster) Summary {
	s := Summary{Names: []string{}}
	for i, r := range rosters {
		if i >= SummaryNames {
			s.More = len(rosters) - SummaryNames
			break
		}
		s.Names = append(s.Names, r.Name)
	}
	return s
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
