package projections

import (
	"errors"
	"time"

	"rinkdesk/internal/domain/calendar"
)

// ErrInvalidMonth is returned for a month that is not YYYY-MM.
var ErrInvalidMonth = errors.New("month must be YYYY-MM")

const monthLayout = "2006-01"

// GetCalendarMonthQuery carries query parameters.
type GetCalendarMonthQuery struct {
	Month string // YYYY-MM; "" means the current month
}

// GetCalendarMonthDeps holds dependencies for GetCalendarMonth.
type GetCalendarMonthDeps struct {
	Location *time.Location
	Now      func() time.Time
}

// GetCalendarMonthResult carries the query result.
type GetCalendarMonthResult struct {
	Month string          `json:"month"`
	Title string          `json:"title"`
	Prev  string          `json:"prev"`
	Next  string          `json:"next"`
	Today string          `json:"today"`
	Cells []calendar.Cell `json:"cells"`
}

// QueryGetCalendarMonth lays out a six-week month grid.
// PRE: none
// POST: Cells holds calendar.MonthGridCells days; Prev and Next are adjacent YYYY-MM keys
func QueryGetCalendarMonth(query GetCalendarMonthQuery, deps GetCalendarMonthDeps) (GetCalendarMonthResult, error) {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	today := now().In(loc)

	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
	if query.Month != "" {
		t, err := time.ParseInLocation(monthLayout, query.Month, loc)
		if err != nil {
			return GetCalendarMonthResult{}, ErrInvalidMonth
		}
		first = t
	}

	return GetCalendarMonthResult{
		Month: first.Format(monthLayout),
		Title: first.Format("January 2006"),
		Prev:  first.AddDate(0, -1, 0).Format(monthLayout),
		Next:  first.AddDate(0, 1, 0).Format(monthLayout),
		Today: today.Format("2006-01-02"),
		Cells: calendar.MonthCells(first.Year(), first.Month(), today, loc),
	}, nil
}
