package calendar

import (
	"sort"
	"strings"

	"rinkdesk/internal/domain/roster"
	"rinkdesk/internal/domain/schedule"
)

// OverviewDayLimit is how many slots a weekly overview day shows before "+N more".
const OverviewDayLimit = 6

// CompareFunc orders two display strings, returning <0, 0 or >0.
type CompareFunc func(a, b string) int

// Slot pairs a weekly schedule with the roster that owns it.
type Slot struct {
	Roster   roster.Roster           `json:"roster"`
	Schedule schedule.WeeklySchedule `json:"schedule"`
}

// Overview maps a weekday to its slots, ordered by start time then roster name.
// Days without slots are absent.
type Overview map[schedule.Weekday][]Slot

// NewOverview groups slots by weekday and orders each day.
// Slots with an invalid weekday are discarded. Within a day slots are ordered
// by the raw starts_at string, then by roster name using cmp.
// PRE: cmp may be nil (case-folded byte order is used)
// POST: Returns a fresh Overview; the input slice is not modified
func NewOverview(slots []Slot, cmp CompareFunc) Overview {
	if cmp == nil {
		cmp = foldCompare
	}
	ov := make(Overview)
	for _, s := range slots {
		if !s.Schedule.Weekday.Valid() {
			continue
		}
		ov[s.Schedule.Weekday] = append(ov[s.Schedule.Weekday], s)
	}
	for day := range ov {
		list := ov[day]
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i].Schedule.StartsAt, list[j].Schedule.StartsAt
			if a != b {
				return a < b
			}
			return cmp(list[i].Roster.Name, list[j].Roster.Name) < 0
		})
	}
	return ov
}

// Day returns at most limit slots for a weekday and how many were left out.
// PRE: limit <= 0 means no limit
func (o Overview) Day(w schedule.Weekday, limit int) ([]Slot, int) {
	list := o[w]
	if limit <= 0 || len(list) <= limit {
		return list, 0
	}
	return list[:limit], len(list) - limit
}

// Count returns the number of slots across all days.
func (o Overview) Count() int {
	n := 0
	for _, list := range o {
		n += len(list)
	}
	return n
}

func foldCompare(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
