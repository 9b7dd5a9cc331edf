package projections

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"rinkdesk/internal/domain/calendar"
	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/roster"
	"rinkdesk/internal/domain/schedule"
	"rinkdesk/internal/domain/timeofday"
)

// Fan-out defaults.
const (
	DefaultFetchTimeout  = 10 * time.Second
	DefaultMaxConcurrent = 8
)

// FetchOptions bounds a concurrent fan-out of upstream calls.
type FetchOptions struct {
	// Timeout applies to each call separately; <= 0 means DefaultFetchTimeout.
	Timeout time.Duration
	// MaxConcurrent caps calls in flight; <= 0 means DefaultMaxConcurrent.
	MaxConcurrent int
}

func (o FetchOptions) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultFetchTimeout
	}
	return o.Timeout
}

func (o FetchOptions) limit() int {
	if o.MaxConcurrent <= 0 {
		return DefaultMaxConcurrent
	}
	return o.MaxConcurrent
}

// BuildWeeklyOverview fetches every roster's schedules concurrently and groups them by weekday.
// A failed fetch contributes no slots and its roster id is reported in failed;
// the other rosters are unaffected. Rosters without an id are skipped.
// PRE: rosters may be empty; cmp may be nil
// POST: The result is independent of the order in which fetches complete
func BuildWeeklyOverview(ctx context.Context, rosters []roster.Roster, fetch ScheduleFetcher, opts FetchOptions, cmp calendar.CompareFunc) (ov calendar.Overview, failed []ident.ID) {
	results := make([][]schedule.WeeklySchedule, len(rosters))
	errs := make([]error, len(rosters))

	var g errgroup.Group
	g.SetLimit(opts.limit())
	for i := range rosters {
		if rosters[i].ID.IsZero() {
			continue
		}
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, opts.timeout())
			defer cancel()
			list, err := fetch.ListRosterSchedules(fctx, rosters[i].ID)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = list
			return nil
		})
	}
	_ = g.Wait()

	var slots []calendar.Slot
	for i, list := range results {
		if errs[i] != nil {
			slog.Warn("roster_schedules_fetch_failed",
				"roster_id", rosters[i].ID,
				"error", errs[i],
			)
			failed = append(failed, rosters[i].ID)
			continue
		}
		for _, s := range list {
			slots = append(slots, calendar.Slot{Roster: rosters[i], Schedule: s})
		}
	}
	return calendar.NewOverview(slots, cmp), failed
}

// LoadRosters lists rosters, falling back to the full listing when the
// primary one fails.
// PRE: none
// POST: Returns an error only when both listings fail
func LoadRosters(ctx context.Context, lister RosterLister) ([]roster.Roster, error) {
	rosters, err := lister.ListRosters(ctx)
	if err == nil {
		return rosters, nil
	}
	slog.Warn("rosters_fetch_failed", "error", err, "fallback", "all")
	rosters, fallbackErr := lister.ListAllRosters(ctx)
	if fallbackErr != nil {
		return nil, fmt.Errorf("list rosters: %w", fallbackErr)
	}
	return rosters, nil
}

// GetWeeklyOverviewDeps holds dependencies for GetWeeklyOverview.
type GetWeeklyOverviewDeps struct {
	Rosters   RosterLister
	Schedules ScheduleFetcher
	Fetch     FetchOptions
	Compare   calendar.CompareFunc
	Location  *time.Location
}

// OverviewSlot is one row of a weekly overview day.
type OverviewSlot struct {
	RosterID   ident.ID `json:"roster_id"`
	RosterName string   `json:"roster_name"`
	ScheduleID ident.ID `json:"schedule_id,omitempty"`
	StartsAt   string   `json:"starts_at"`
	EndsAt     string   `json:"ends_at"`
	TimeLabel  string   `json:"time_label"`
	Location   string   `json:"location,omitempty"`
}

// OverviewDay is one weekday column of the overview.
type OverviewDay struct {
	Weekday int            `json:"weekday"`
	Label   string         `json:"label"`
	Slots   []OverviewSlot `json:"slots"`
	More    int            `json:"more"`
}

// GetWeeklyOverviewResult carries the query result.
type GetWeeklyOverviewResult struct {
	Overview      calendar.Overview `json:"-"`
	Days          []OverviewDay     `json:"days"`
	TotalSlots    int               `json:"total_slots"`
	FailedRosters []ident.ID        `json:"failed_rosters"`
}

// QueryGetWeeklyOverview builds the seven-day overview of all rosters' weekly slots.
// PRE: deps.Rosters and deps.Schedules are non-nil
// POST: Days always holds Sunday..Saturday; each day shows at most calendar.OverviewDayLimit slots
func QueryGetWeeklyOverview(ctx context.Context, deps GetWeeklyOverviewDeps) (GetWeeklyOverviewResult, error) {
	rosters, err := LoadRosters(ctx, deps.Rosters)
	if err != nil {
		return GetWeeklyOverviewResult{}, err
	}

	ov, failed := BuildWeeklyOverview(ctx, rosters, deps.Schedules, deps.Fetch, deps.Compare)
	if failed == nil {
		failed = []ident.ID{}
	}
	return GetWeeklyOverviewResult{
		Overview:      ov,
		Days:          overviewDays(ov, calendar.OverviewDayLimit, deps.Location),
		TotalSlots:    ov.Count(),
		FailedRosters: failed,
	}, nil
}

func overviewDays(ov calendar.Overview, limit int, loc *time.Location) []OverviewDay {
	days := make([]OverviewDay, 0, 7)
	for w := schedule.Sunday; w <= schedule.Saturday; w++ {
		shown, more := ov.Day(w, limit)
		day := OverviewDay{
			Weekday: int(w),
			Label:   timeofday.WeekdayShort(int(w)),
			Slots:   make([]OverviewSlot, 0, len(shown)),
			More:    more,
		}
		for _, s := range shown {
			day.Slots = append(day.Slots, OverviewSlot{
				RosterID:   s.Roster.ID,
				RosterName: s.Roster.Name,
				ScheduleID: s.Schedule.ID,
				StartsAt:   s.Schedule.StartsAt,
				EndsAt:     s.Schedule.EndsAt,
				TimeLabel:  timeofday.FormatRange(s.Schedule.StartsAt, s.Schedule.EndsAt, loc),
				Location:   s.Schedule.Location,
			})
		}
		days = append(days, day)
	}
	return days
}
