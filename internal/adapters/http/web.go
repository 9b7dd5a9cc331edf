package web

import (
	"crypto/rand"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rinkdesk/internal/adapters/http/middleware"
	"rinkdesk/internal/adapters/http/perf"
	"rinkdesk/internal/application/orchestrators"
	"rinkdesk/internal/application/projections"
	"rinkdesk/internal/domain/calendar"
)

// API is the upstream surface the handlers read from and write to.
type API interface {
	projections.RosterLister
	projections.ScheduleFetcher
	projections.CalendarSource
	projections.StudentLister
	projections.RosterDirectoryLister
	projections.LessonPlanLister
	projections.LessonPlanGetter
	projections.UserLister
	projections.RosterGetter
	projections.MeetingLister
	projections.MyStudentsLister
	projections.StudentGetter
	projections.SkillLister
	projections.ScheduledLessonSource
	orchestrators.ScheduleWriter
	orchestrators.MeetingWriter
	orchestrators.OccurrenceWriter
	orchestrators.MembershipWriter
	orchestrators.SkillWriter
}

// Options configures the mux.
type Options struct {
	Production bool
	// CSRFKey must be 32 bytes; when empty a random key is generated
	// outside production.
	CSRFKey []byte
	// TrustedOrigins are accepted as CSRF referers.
	TrustedOrigins []string
	// RequireToken rejects /api/ requests that carry no API token.
	RequireToken       bool
	RateLimitPerSecond int
	SlowRequestMs      int

	Location     *time.Location
	Fetch        projections.FetchOptions
	Tolerances   calendar.Tolerances
	UpcomingDays int
	Compare      calendar.CompareFunc
	Now          func() time.Time
}

// ErrCSRFKeyRequired is returned when production runs without a CSRF key.
var ErrCSRFKeyRequired = errors.New("csrf key is required in production")

// DefaultRateLimitPerSecond applies when Options.RateLimitPerSecond is unset.
const DefaultRateLimitPerSecond = 20

// server carries the handler dependencies.
type server struct {
	api       API
	collector *perf.Collector
	opts      Options
}

func (s *server) now() time.Time {
	if s.opts.Now != nil {
		return s.opts.Now()
	}
	return time.Now()
}

// csrfKey returns the configured key, generating a per-process one in development.
func csrfKey(opts Options) ([]byte, error) {
	if len(opts.CSRFKey) > 0 {
		if len(opts.CSRFKey) != 32 {
			return nil, errors.New("csrf key must be 32 bytes")
		}
		return opts.CSRFKey, nil
	}
	if opts.Production {
		return nil, ErrCSRFKeyRequired
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	slog.Warn("csrf_key_generated", "hint", "set RINKDESK_CSRF_KEY (64 hex chars) so form tokens survive restarts")
	return key, nil
}

// NewMux wires HTTP handlers for the app.
// PRE: api is non-nil; collector may be nil
// POST: Returns the handler wrapped in the middleware chain, or an error for a bad CSRF key
func NewMux(api API, collector *perf.Collector, opts Options) (http.Handler, error) {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.RateLimitPerSecond <= 0 {
		opts.RateLimitPerSecond = DefaultRateLimitPerSecond
	}
	key, err := csrfKey(opts)
	if err != nil {
		return nil, err
	}

	s := &server{api: api, collector: collector, opts: opts}
	mux := http.NewServeMux()
	s.routes(mux)

	limiter := middleware.NewRateLimiter(opts.RateLimitPerSecond)

	// Request order: RequestID -> Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(key, opts.Production, opts.TrustedOrigins),
		middleware.Auth(opts.RequireToken),
		middleware.RateLimit(limiter),
		middleware.Timing(collector, opts.SlowRequestMs),
		middleware.RequestID,
	), nil
}

func (s *server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/perf", s.handlePerf)

	mux.HandleFunc("GET /api/calendar", s.handleCalendarDay)
	mux.HandleFunc("GET /api/calendar/month", s.handleCalendarMonth)
	mux.HandleFunc("GET /api/calendar.ics", s.handleCalendarDayICS)
	mux.HandleFunc("GET /api/weekly-overview", s.handleWeeklyOverview)

	mux.HandleFunc("GET /api/students", s.handleStudents)
	mux.HandleFunc("GET /api/students/{id}", s.handleStudent)
	mux.HandleFunc("GET /api/my-students", s.handleMyStudents)
	mux.HandleFunc("GET /api/skills", s.handleSkills)
	mux.HandleFunc("GET /api/rosters", s.handleRosters)
	mux.HandleFunc("GET /api/lesson-plans", s.handleLessonPlans)
	mux.HandleFunc("GET /api/admin/users", s.handleUsers)

	mux.HandleFunc("GET /api/lesson-plans/{id}", s.handleLessonPlan)
	mux.HandleFunc("POST /api/lesson-plans/{id}/occurrences", s.handleAddOccurrence)
	mux.HandleFunc("DELETE /api/lesson-plans/{id}/occurrences/{oid}", s.handleRemoveOccurrence)
	mux.HandleFunc("POST /api/lesson-plans/{id}/skills", s.handleAddSkills)
	mux.HandleFunc("DELETE /api/lesson-plans/{id}/skills/{sid}", s.handleRemoveSkill)

	mux.HandleFunc("GET /api/rosters/{id}/upcoming", s.handleUpcoming)
	mux.HandleFunc("GET /api/rosters/{id}/calendar.ics", s.handleRosterICS)
	mux.HandleFunc("POST /api/rosters/{id}/schedules", s.handleAddSchedule)
	mux.HandleFunc("DELETE /api/rosters/{id}/schedules/{sid}", s.handleRemoveSchedule)
	mux.HandleFunc("POST /api/rosters/{id}/meetings", s.handleAddMeeting)
	mux.HandleFunc("DELETE /api/rosters/{id}/meetings/{mid}", s.handleRemoveMeeting)
	mux.HandleFunc("GET /api/rosters/{id}/lessons", s.handleRosterLessons)
	mux.HandleFunc("POST /api/rosters/{id}/students/{mid}", s.memberHandler(orchestrators.MemberStudent, false))
	mux.HandleFunc("DELETE /api/rosters/{id}/students/{mid}", s.memberHandler(orchestrators.MemberStudent, true))
	mux.HandleFunc("POST /api/rosters/{id}/teachers/{mid}", s.memberHandler(orchestrators.MemberTeacher, false))
	mux.HandleFunc("DELETE /api/rosters/{id}/teachers/{mid}", s.memberHandler(orchestrators.MemberTeacher, true))
}
