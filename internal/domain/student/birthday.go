package student

import (
	"regexp"
	"strconv"
	"time"
)

// Birthday windows, in days from today.
const (
	UpcomingBirthdayDays = 30
	RecentBirthdayDays   = 14
)

var (
	isoPrefix = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	usDate    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// MonthDay is a birthday without its year.
type MonthDay struct {
	Month time.Month
	Day   int
}

// ParseMonthDay reads the month and day of a YYYY-MM-DD value (any suffix
// ignored) or a US M/D/YYYY value. The year never matters, so Feb 29 is
// accepted; days past the month's leap-year length are rejected.
// POST: Returns ok=false for blank or unrecognised input
func ParseMonthDay(v string) (MonthDay, bool) {
	var m, d string
	if g := isoPrefix.FindStringSubmatch(v); g != nil {
		m, d = g[2], g[3]
	} else if g := usDate.FindStringSubmatch(v); g != nil {
		m, d = g[1], g[2]
	} else {
		return MonthDay{}, false
	}
	month, _ := strconv.Atoi(m)
	day, _ := strconv.Atoi(d)
	if month < 1 || month > 12 || day < 1 {
		return MonthDay{}, false
	}
	// 2000 is a leap year.
	if last := time.Date(2000, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day(); day > last {
		return MonthDay{}, false
	}
	return MonthDay{Month: time.Month(month), Day: day}, true
}

// Label formats the birthday as "Jan 2".
func (md MonthDay) Label() string {
	return time.Date(2000, md.Month, md.Day, 0, 0, 0, 0, time.UTC).Format("Jan 2")
}

// Distance returns the whole days until the next birthday and since the last
// one, counted on loc's calendar. On the day itself both are 0. A Feb 29
// birthday falls on Mar 1 in common years.
// PRE: loc may be nil (time.Local is used)
func (md MonthDay) Distance(today time.Time, loc *time.Location) (until, since int) {
	if loc == nil {
		loc = time.Local
	}
	today = today.In(loc)
	year := today.Year()
	day := civilDay(year, today.Month(), today.Day())

	this := civilDay(year, md.Month, md.Day)
	next, prev := this, this
	if this < day {
		next = civilDay(year+1, md.Month, md.Day)
	}
	if this > day {
		prev = civilDay(year-1, md.Month, md.Day)
	}
	return next - day, day - prev
}

// civilDay numbers calendar days so that differences count days regardless of
// DST transitions. Out-of-range days normalise like time.Date.
func civilDay(year int, month time.Month, day int) int {
	return int(time.Date(year, month, day, 12, 0, 0, 0, time.UTC).Unix() / 86400)
}
