package calendar

import (
	"time"

	"rinkdesk/internal/domain/timeofday"
)

// MonthGridCells is the number of cells in a six-week month grid.
const MonthGridCells = 42

// Cell is one day of a month grid.
type Cell struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	Weekday int    `json:"weekday"`
	InMonth bool   `json:"in_month"`
	IsToday bool   `json:"is_today"`
}

// MonthCells lays out a month as 42 days starting on the Sunday on or before the 1st.
// PRE: loc may be nil (time.Local is used)
// POST: Returns exactly MonthGridCells cells in date order
func MonthCells(year int, month time.Month, today time.Time, loc *time.Location) []Cell {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	todayKey := timeofday.DateKey(today.In(loc))

	cells := make([]Cell, 0, MonthGridCells)
	for i := 0; i < MonthGridCells; i++ {
		d := start.AddDate(0, 0, i)
		key := timeofday.DateKey(d)
		cells = append(cells, Cell{
			Date:    key,
			Day:     d.Day(),
			Weekday: int(d.Weekday()),
			InMonth: d.Month() == first.Month(),
			IsToday: key == todayKey,
		})
	}
	return cells
}
