package projections

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/lessonplan"
	"rinkdesk/internal/domain/timeofday"
)

const (
	msgWeeklyLessonsFailed  = "Failed to load lessons for the weekly schedule"
	msgMeetingLessonsFailed = "Failed to load lessons for one-off meetings"
)

// GetRosterLessonsDeps holds dependencies for GetRosterLessons.
type GetRosterLessonsDeps struct {
	Lessons  ScheduledLessonSource
	Location *time.Location
}

// RosterLessonRow is one planned lesson of a roster.
type RosterLessonRow struct {
	Occurrence lessonplan.Occurrence `json:"occurrence"`
	Title      string                `json:"title"`
	DateLabel  string                `json:"date_label"`
	TimeLabel  string                `json:"time_label"`
}

// GetRosterLessonsResult carries the query result.
type GetRosterLessonsResult struct {
	Lessons       []RosterLessonRow         `json:"lessons"`
	Meetings      []lessonplan.MeetingMatch `json:"meetings"`
	WeeklyError   string                    `json:"weekly_error,omitempty"`
	MeetingsError string                    `json:"meetings_error,omitempty"`
}

// QueryGetRosterLessons lists the lesson plans scheduled for a roster.
// Lessons matched to the weekly schedule and lessons attached to one-off
// meetings load concurrently and fail independently; a failed section sets
// its error message and the other is still returned. An occurrence in both
// keeps the meeting copy.
// PRE: rosterID is non-empty
// POST: Lessons are ordered by date then start time; Meetings by date then start time
func QueryGetRosterLessons(ctx context.Context, rosterID ident.ID, deps GetRosterLessonsDeps) (GetRosterLessonsResult, error) {
	if rosterID.IsZero() {
		return GetRosterLessonsResult{}, ErrMissingRoster
	}

	var (
		weekly              []lessonplan.Occurrence
		matches             []lessonplan.MeetingMatch
		weeklyErr, matchErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		weekly, weeklyErr = deps.Lessons.ListLessonPlansMatchingSchedule(gctx, rosterID)
		return nil
	})
	g.Go(func() error {
		matches, matchErr = deps.Lessons.ListScheduledLessons(gctx, rosterID)
		return nil
	})
	_ = g.Wait()

	var res GetRosterLessonsResult
	if weeklyErr != nil {
		slog.Warn("roster_lessons_weekly_failed", "roster_id", rosterID, "error", weeklyErr)
		res.WeeklyError = sectionMessage(weeklyErr, msgWeeklyLessonsFailed)
		weekly = nil
	}
	if matchErr != nil {
		slog.Warn("roster_lessons_meetings_failed", "roster_id", rosterID, "error", matchErr)
		res.MeetingsError = sectionMessage(matchErr, msgMeetingLessonsFailed)
		matches = nil
	}

	lessonplan.SortMeetingMatches(matches, deps.Location)
	res.Meetings = matches
	if res.Meetings == nil {
		res.Meetings = []lessonplan.MeetingMatch{}
	}

	merged := lessonplan.MergeScheduled(weekly, matches, deps.Location)
	res.Lessons = make([]RosterLessonRow, 0, len(merged))
	for _, o := range merged {
		res.Lessons = append(res.Lessons, RosterLessonRow{
			Occurrence: o,
			Title:      o.Title(),
			DateLabel:  DateLabel(o.TaughtOn, deps.Location),
			TimeLabel:  timeofday.FormatRange(o.StartsAt, o.EndsAt, deps.Location),
		})
	}
	return res, nil
}
