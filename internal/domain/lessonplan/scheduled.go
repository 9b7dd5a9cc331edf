package lessonplan

import (
	"sort"
	"time"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/timeofday"
)

// MeetingSlot is the session a group of scheduled lessons is attached to.
type MeetingSlot struct {
	TaughtOn string `json:"taught_on"`
	StartsAt string `json:"starts_at,omitempty"`
	EndsAt   string `json:"ends_at,omitempty"`
	Location string `json:"location,omitempty"`
}

// MeetingMatch pairs a roster meeting with the occurrences taught in it.
type MeetingMatch struct {
	Meeting     MeetingSlot  `json:"meeting"`
	Occurrences []Occurrence `json:"occurrences"`
}

// Flatten returns the match's occurrences with blank date, time and location
// fields taken from the meeting.
// INVARIANT: m.Occurrences is not mutated
func (m MeetingMatch) Flatten() []Occurrence {
	out := make([]Occurrence, 0, len(m.Occurrences))
	for _, o := range m.Occurrences {
		if o.TaughtOn == "" {
			o.TaughtOn = m.Meeting.TaughtOn
		}
		if o.StartsAt == "" {
			o.StartsAt = m.Meeting.StartsAt
		}
		if o.EndsAt == "" {
			o.EndsAt = m.Meeting.EndsAt
		}
		if o.Location == "" {
			o.Location = m.Meeting.Location
		}
		out = append(out, o)
	}
	return out
}

// MergeScheduled combines the weekly-schedule occurrences with those attached
// to meetings. An id present in both keeps the meeting copy; occurrences
// without an id are all kept. The result is ordered by SortOccurrences.
func MergeScheduled(weekly []Occurrence, matches []MeetingMatch, loc *time.Location) []Occurrence {
	var fromMeetings []Occurrence
	for _, m := range matches {
		fromMeetings = append(fromMeetings, m.Flatten()...)
	}

	index := make(map[ident.ID]int)
	out := make([]Occurrence, 0, len(weekly)+len(fromMeetings))
	for _, group := range [][]Occurrence{weekly, fromMeetings} {
		for _, o := range group {
			if o.ID.IsZero() {
				out = append(out, o)
				continue
			}
			if i, ok := index[o.ID]; ok {
				out[i] = o
				continue
			}
			index[o.ID] = len(out)
			out = append(out, o)
		}
	}
	SortOccurrences(out, loc)
	return out
}

// SortMeetingMatches orders matches by meeting date, then start time.
// POST: matches is sorted in place; equal keys keep their input order
func SortMeetingMatches(matches []MeetingMatch, loc *time.Location) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].Meeting, matches[j].Meeting
		if da, db := dateKeyOrMax(a.TaughtOn), dateKeyOrMax(b.TaughtOn); da != db {
			return da < db
		}
		return timeofday.Key(a.StartsAt, loc) < timeofday.Key(b.StartsAt, loc)
	})
}
