package restapi

import (
	"context"
	"net/url"

	"rinkdesk/internal/domain/lessonplan"
	"rinkdesk/internal/domain/meeting"
	"rinkdesk/internal/domain/roster"
)

func dateQuery(date string) url.Values {
	return url.Values{"date": {date}}
}

// ListLessonPlansByDate returns the occurrences taught on date (GET /lesson_plans_by_date).
// PRE: date is YYYY-MM-DD
func (c *Client) ListLessonPlansByDate(ctx context.Context, date string) ([]lessonplan.Occurrence, error) {
	return getList[lessonplan.Occurrence](ctx, c, "list_lesson_plans_by_date", "/lesson_plans_by_date", dateQuery(date), "lesson_plan_occurrences", "lesson_plans")
}

// ListRostersByDate returns the rosters with schedules embedded that may meet on
// date (GET /rosters_by_date).
// PRE: date is YYYY-MM-DD
func (c *Client) ListRostersByDate(ctx context.Context, date string) ([]roster.Roster, error) {
	return getList[roster.Roster](ctx, c, "list_rosters_by_date", "/rosters_by_date", dateQuery(date))
}

// ListRosterMeetingsByDate returns the one-off meetings on date (GET /roster_meetings_by_date).
// PRE: date is YYYY-MM-DD
func (c *Client) ListRosterMeetingsByDate(ctx context.Context, date string) ([]meeting.Meeting, error) {
	return getList[meeting.Meeting](ctx, c, "list_roster_meetings_by_date", "/roster_meetings_by_date", dateQuery(date), "roster_meetings", "meetings")
}
