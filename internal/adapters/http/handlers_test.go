package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"rinkdesk/internal/adapters/http/middleware"
	"rinkdesk/internal/adapters/restapi"
	"rinkdesk/internal/domain/account"
	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/lessonplan"
	"rinkdesk/internal/domain/meeting"
	"rinkdesk/internal/domain/roster"
	"rinkdesk/internal/domain/schedule"
	"rinkdesk/internal/domain/skill"
	"rinkdesk/internal/domain/student"
)

// mockAPI is an in-memory API.
// PRE: zero value is usable; nil slices read as empty lists
// POST: writes are recorded in calls; errors set in the fields are returned unchanged
type mockAPI struct {
	rosters   []roster.Roster
	schedules map[ident.ID][]schedule.WeeklySchedule
	byDate    []roster.Roster
	meetings  []meeting.Meeting
	plans     []lessonplan.LessonPlan
	plan      *lessonplan.LessonPlan
	students  []student.Student
	users     []account.User
	roster    *roster.Roster
	detail    *student.Student
	skills    []skill.Skill
	scheduled []lessonplan.MeetingMatch
	err       error
	writeErr  error

	mu    sync.Mutex
	calls []string
}

func (m *mockAPI) record(format string, args ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
	return m.writeErr
}

func (m *mockAPI) ListRosters(context.Context) ([]roster.Roster, error)    { return m.rosters, m.err }
func (m *mockAPI) ListAllRosters(context.Context) ([]roster.Roster, error) { return m.rosters, m.err }
func (m *mockAPI) ListRosterSchedules(_ context.Context, id ident.ID) ([]schedule.WeeklySchedule, error) {
	return m.schedules[id], m.err
}
func (m *mockAPI) ListLessonPlansByDate(context.Context, string) ([]lessonplan.Occurrence, error) {
	return nil, m.err
}
func (m *mockAPI) ListRostersByDate(context.Context, string) ([]roster.Roster, error) {
	return m.byDate, m.err
}
func (m *mockAPI) ListRosterMeetingsByDate(context.Context, string) ([]meeting.Meeting, error) {
	return m.meetings, m.err
}
func (m *mockAPI) ListStudents(context.Context) ([]student.Student, error) { return m.students, m.err }
func (m *mockAPI) ListRosterDirectory(context.Context) ([]roster.Roster, error) {
	return m.rosters, m.err
}
func (m *mockAPI) ListLessonPlans(context.Context) ([]lessonplan.LessonPlan, error) {
	return m.plans, m.err
}
func (m *mockAPI) ListLessonPlansMatchingSchedule(context.Context, ident.ID) ([]lessonplan.Occurrence, error) {
	return nil, m.err
}
func (m *mockAPI) GetLessonPlan(context.Context, ident.ID) (*lessonplan.LessonPlan, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.plan == nil {
		return nil, &restapi.Error{Op: "get lesson plan", StatusCode: http.StatusNotFound, Message: "Lesson plan not found"}
	}
	return m.plan, nil
}
func (m *mockAPI) ListAdminUsers(context.Context) ([]account.User, error) { return m.users, m.err }
func (m *mockAPI) GetRoster(context.Context, ident.ID) (*roster.Roster, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.roster, nil
}
func (m *mockAPI) ListRosterMeetings(context.Context, ident.ID) ([]meeting.Meeting, error) {
	return m.meetings, m.err
}
func (m *mockAPI) CreateRosterSchedule(_ context.Context, id ident.ID, s schedule.WeeklySchedule) error {
	return m.record("create schedule %s day=%d %s-%s", id, s.Weekday, s.StartsAt, s.EndsAt)
}
func (m *mockAPI) DeleteRosterSchedule(_ context.Context, id, sid ident.ID) error {
	return m.record("delete schedule %s/%s", id, sid)
}
func (m *mockAPI) CreateRosterMeeting(_ context.Context, id ident.ID, mt meeting.Meeting) error {
	return m.record("create meeting %s %s", id, mt.TaughtOn)
}
func (m *mockAPI) DeleteRosterMeeting(_ context.Context, id, mid ident.ID) error {
	return m.record("delete meeting %s/%s", id, mid)
}
func (m *mockAPI) CreateLessonPlanOccurrence(_ context.Context, id ident.ID, o lessonplan.Occurrence) error {
	return m.record("create occurrence %s %s", id, o.TaughtOn)
}
func (m *mockAPI) DeleteLessonPlanOccurrence(_ context.Context, id, oid ident.ID) error {
	return m.record("delete occurrence %s/%s", id, oid)
}

func (m *mockAPI) ListStudentsFromRosters(context.Context) ([]student.Student, error) {
	return m.students, m.err
}
func (m *mockAPI) GetStudent(context.Context, ident.ID) (*student.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.detail == nil {
		return nil, &restapi.Error{Op: "get student", StatusCode: http.StatusNotFound, Message: "Student not found"}
	}
	return m.detail, nil
}
func (m *mockAPI) ListSkills(context.Context) ([]skill.Skill, error) { return m.skills, m.err }
func (m *mockAPI) ListScheduledLessons(context.Context, ident.ID) ([]lessonplan.MeetingMatch, error) {
	return m.scheduled, m.err
}
func (m *mockAPI) AddRosterStudent(_ context.Context, id, sid ident.ID) error {
	return m.record("add student %s/%s", id, sid)
}
func (m *mockAPI) RemoveRosterStudent(_ context.Context, id, sid ident.ID) error {
	return m.record("remove student %s/%s", id, sid)
}
func (m *mockAPI) AddRosterTeacher(_ context.Context, id, tid ident.ID) error {
	return m.record("add teacher %s/%s", id, tid)
}
func (m *mockAPI) RemoveRosterTeacher(_ context.Context, id, tid ident.ID) error {
	return m.record("remove teacher %s/%s", id, tid)
}
func (m *mockAPI) AddLessonPlanSkills(_ context.Context, id ident.ID, ids []ident.ID, role skill.Role) error {
	return m.record("add skills %s %v %s", id, ids, role)
}
func (m *mockAPI) RemoveLessonPlanSkill(_ context.Context, id, sid ident.ID, role skill.Role) error {
	return m.record("remove skill %s/%s %s", id, sid, role)
}

func fixedNow() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }

// newTestMux registers the routes without the middleware chain.
func newTestMux(api *mockAPI) *http.ServeMux {
	s := &server{api: api, opts: Options{Location: time.UTC, Now: fixedNow, UpcomingDays: 28}}
	mux := http.NewServeMux()
	s.routes(mux)
	return mux
}

func serve(h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// TestHealth verifies the liveness check.
func TestHealth(t *testing.T) {
	rec := serve(newTestMux(&mockAPI{}), "GET", "/health", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("GET /health = %d %s", rec.Code, rec.Body.String())
	}
}

// TestCalendarDay verifies the day view renders class notes and reports bad dates.
func TestCalendarDay(t *testing.T) {
	api := &mockAPI{
		byDate: []roster.Roster{{
			ID:   "1",
			Name: "Learn to Skate",
			Schedules: []schedule.WeeklySchedule{
				{ID: "9", RosterID: "1", Weekday: schedule.Monday, StartsAt: "17:00", EndsAt: "18:00"},
			},
		}},
		meetings: []meeting.Meeting{
			{ID: "3", RosterID: "1", TaughtOn: "2024-01-15", StartsAt: "2024-01-15T19:00:00Z", EndsAt: "2024-01-15T20:00:00Z", Notes: "**bring skates**"},
		},
	}
	mux := newTestMux(api)

	rec := serve(mux, "GET", "/api/calendar?date=2024-01-15", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Date    string `json:"date"`
		Classes []struct {
			Type      string `json:"type"`
			NotesHTML string `json:"notes_html"`
		} `json:"classes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Date != "2024-01-15" || len(body.Classes) != 2 {
		t.Fatalf("body = %+v", body)
	}
	if body.Classes[0].Type != "weekly" || body.Classes[1].Type != "one-off" {
		t.Errorf("class order = %s, %s", body.Classes[0].Type, body.Classes[1].Type)
	}
	if !strings.Contains(body.Classes[1].NotesHTML, "<strong>bring skates</strong>") {
		t.Errorf("notes_html = %q", body.Classes[1].NotesHTML)
	}

	if rec := serve(mux, "GET", "/api/calendar?date=2024-02-31", "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("impossible date status = %d, want 400", rec.Code)
	}
}

// TestCalendarMonth verifies the month grid and its validation.
func TestCalendarMonth(t *testing.T) {
	mux := newTestMux(&mockAPI{})
	rec := serve(mux, "GET", "/api/calendar/month?month=2024-02", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"prev":"2024-01"`) {
		t.Errorf("GET month = %d %s", rec.Code, rec.Body.String())
	}
	if rec := serve(mux, "GET", "/api/calendar/month?month=2024-13", "", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad month status = %d, want 400", rec.Code)
	}
}

// TestWriteError verifies the upstream error to status mapping.
func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"validation", schedule.ErrInvalidWeekday, http.StatusBadRequest, "weekday"},
		{"wrapped validation", fmt.Errorf("add: %w", meeting.ErrEmptyDate), http.StatusBadRequest, "date is required"},
		{"not found passes through", &restapi.Error{Op: "get", StatusCode: 404, Message: "Roster not found"}, http.StatusNotFound, "Roster not found"},
		{"unauthorized passes through", &restapi.Error{Op: "get", StatusCode: 401, Message: "Sign in"}, http.StatusUnauthorized, "Sign in"},
		{"upstream 500", &restapi.Error{Op: "get", StatusCode: 500, Message: "boom"}, http.StatusBadGateway, "upstream request failed"},
		{"transport", errors.New("dial tcp: refused"), http.StatusBadGateway, "upstream request failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest("GET", "/api/x", nil), tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want %q", rec.Body.String(), tt.wantBody)
			}
			if strings.Contains(rec.Body.String(), "refused") {
				t.Errorf("transport detail leaked: %s", rec.Body.String())
			}
		})
	}
}

// TestAddSchedule verifies JSON and form bodies and that invalid input is never sent.
func TestAddSchedule(t *testing.T) {
	form := url.Values{"weekday": {"3"}, "starts_at": {"09:00"}, "ends_at": {"10:00"}}.Encode()
	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantCall    string
	}{
		{"json", "application/json", `{"weekday":1,"starts_at":"17:00","ends_at":"18:00"}`, http.StatusCreated, "create schedule 5 day=1 17:00-18:00"},
		{"json string weekday", "application/json", `{"weekday":"2","starts_at":"17:00","ends_at":"18:00"}`, http.StatusCreated, "create schedule 5 day=2 17:00-18:00"},
		{"form", "application/x-www-form-urlencoded", form, http.StatusCreated, "create schedule 5 day=3 09:00-10:00"},
		{"missing weekday", "application/json", `{"starts_at":"17:00","ends_at":"18:00"}`, http.StatusBadRequest, ""},
		{"end before start", "application/json", `{"weekday":1,"starts_at":"18:00","ends_at":"17:00"}`, http.StatusBadRequest, ""},
		{"unknown field", "application/json", `{"weekday":1,"starts_at":"17:00","ends_at":"18:00","extra":true}`, http.StatusBadRequest, ""},
		{"malformed json", "application/json", `{"weekday":`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAPI{}
			rec := serve(newTestMux(api), "POST", "/api/rosters/5/schedules", tt.contentType, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			got := strings.Join(api.calls, ";")
			if got != tt.wantCall {
				t.Errorf("calls = %q, want %q", got, tt.wantCall)
			}
		})
	}
}

// TestDeleteRoutes verifies removals reach the API with both path ids.
func TestDeleteRoutes(t *testing.T) {
	tests := []struct {
		target   string
		wantCall string
	}{
		{"/api/rosters/5/schedules/9", "delete schedule 5/9"},
		{"/api/rosters/5/meetings/3", "delete meeting 5/3"},
		{"/api/lesson-plans/7/occurrences/11", "delete occurrence 7/11"},
		{"/api/lesson-plans/7/skills/4?role=warmup", "remove skill 7/4 warmup"},
		{"/api/lesson-plans/7/skills/4", "remove skill 7/4 main"},
		{"/api/rosters/5/students/12", "remove student 5/12"},
		{"/api/rosters/5/teachers/2", "remove teacher 5/2"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			api := &mockAPI{}
			rec := serve(newTestMux(api), "DELETE", tt.target, "", "")
			if rec.Code != http.StatusNoContent {
				t.Fatalf("status = %d, want 204", rec.Code)
			}
			if len(api.calls) != 1 || api.calls[0] != tt.wantCall {
				t.Errorf("calls = %v, want %q", api.calls, tt.wantCall)
			}
		})
	}
}

// TestAddMeetingAndOccurrence verifies creates and upstream error passthrough.
func TestAddMeetingAndOccurrence(t *testing.T) {
	api := &mockAPI{}
	mux := newTestMux(api)
	rec := serve(mux, "POST", "/api/rosters/5/meetings", "application/json",
		`{"taught_on":"2024-01-20","starts_at":"10:00","ends_at":"11:00","notes":"Ice show"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("meeting status = %d (%s)", rec.Code, rec.Body.String())
	}
	rec = serve(mux, "POST", "/api/lesson-plans/7/occurrences", "application/json", `{"taught_on":"2024-01-22"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("occurrence status = %d (%s)", rec.Code, rec.Body.String())
	}
	want := "create meeting 5 2024-01-20;create occurrence 7 2024-01-22"
	if got := strings.Join(api.calls, ";"); got != want {
		t.Errorf("calls = %q, want %q", got, want)
	}

	api.writeErr = &restapi.Error{Op: "create", StatusCode: http.StatusUnprocessableEntity, Message: "Taught on has already been taken"}
	rec = serve(mux, "POST", "/api/lesson-plans/7/occurrences", "application/json", `{"taught_on":"2024-01-22"}`)
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "already been taken") {
		t.Errorf("upstream rejection = %d %s", rec.Code, rec.Body.String())
	}
}

// TestLessonPlan verifies the detail view renders its description and maps 404.
func TestLessonPlan(t *testing.T) {
	api := &mockAPI{plan: &lessonplan.LessonPlan{ID: "7", Title: "Edges", Description: "Warm up\n<script>x</script>"}}
	rec := serve(newTestMux(api), "GET", "/api/lesson-plans/7", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		DescriptionHTML string `json:"description_html"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(body.DescriptionHTML, "Warm up") || strings.Contains(body.DescriptionHTML, "<script>") {
		t.Errorf("description_html = %q", body.DescriptionHTML)
	}

	rec = serve(newTestMux(&mockAPI{}), "GET", "/api/lesson-plans/8", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing plan status = %d, want 404", rec.Code)
	}
}

// TestDirectories verifies each directory route answers with a page.
func TestDirectories(t *testing.T) {
	api := &mockAPI{
		students: []student.Student{{ID: "1", FirstName: "Ada", LastName: "Lovelace"}},
		rosters:  []roster.Roster{{ID: "1", Name: "Juniors"}},
		plans:    []lessonplan.LessonPlan{{ID: "1", Title: "Edges"}},
		users:    []account.User{{ID: "1", Email: "coach@example.com"}},
	}
	for _, target := range []string{"/api/students", "/api/rosters", "/api/lesson-plans", "/api/admin/users?sort=email&dir=desc"} {
		t.Run(target, func(t *testing.T) {
			rec := serve(newTestMux(api), "GET", target, "", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
			}
			var page struct {
				Items []json.RawMessage `json:"items"`
				Total int               `json:"total"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if page.Total != 1 || len(page.Items) != 1 {
				t.Errorf("page = %+v", page)
			}
		})
	}

	failing := &mockAPI{err: errors.New("connection reset")}
	if rec := serve(newTestMux(failing), "GET", "/api/students", "", ""); rec.Code != http.StatusBadGateway {
		t.Errorf("failing directory status = %d, want 502", rec.Code)
	}
}

// TestRosterICS verifies the roster feed carries stable UIDs and the calendar content type.
func TestRosterICS(t *testing.T) {
	api := &mockAPI{
		roster: &roster.Roster{ID: "5", Name: "Learn to Skate"},
		schedules: map[ident.ID][]schedule.WeeklySchedule{
			"5": {{ID: "9", RosterID: "5", Weekday: schedule.Monday, StartsAt: "17:00", EndsAt: "18:00", Location: "Rink A"}},
		},
	}
	rec := serve(newTestMux(api), "GET", "/api/rosters/5/calendar.ics?from=2024-01-15&days=7", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"BEGIN:VCALENDAR", "UID:schedule-9-2024-01-15@rinkdesk", "SUMMARY:Learn to Skate", "LOCATION:Rink A"} {
		if !strings.Contains(body, want) {
			t.Errorf("ics missing %q:\n%s", want, body)
		}
	}
	if n := strings.Count(body, "BEGIN:VEVENT"); n != 1 {
		t.Errorf("events = %d, want 1", n)
	}
}

// TestEventUID verifies UIDs are stable for records with ids.
func TestEventUID(t *testing.T) {
	if got := eventUID("meeting", "3", ""); got != "meeting-3@rinkdesk" {
		t.Errorf("eventUID = %q", got)
	}
	a, b := eventUID("meeting", "", ""), eventUID("meeting", "", "")
	if a == b || !strings.HasSuffix(a, "@rinkdesk") {
		t.Errorf("random UIDs = %q, %q", a, b)
	}
}

// TestRenderMarkdown verifies markdown rendering and raw HTML suppression.
func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		notWant string
	}{
		{"", "", ""},
		{"**bold**", "<strong>bold</strong>", ""},
		{"line one\nline two", "<br", ""},
		{"<img src=x onerror=alert(1)>", "", "<img"},
	}
	for _, tt := range tests {
		got := renderMarkdown(tt.in)
		if tt.want != "" && !strings.Contains(got, tt.want) {
			t.Errorf("renderMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if tt.want == "" && tt.notWant == "" && got != "" {
			t.Errorf("renderMarkdown(%q) = %q, want empty", tt.in, got)
		}
		if tt.notWant != "" && strings.Contains(got, tt.notWant) {
			t.Errorf("renderMarkdown(%q) = %q, must not contain %q", tt.in, got, tt.notWant)
		}
	}
}

// TestNewMux verifies the middleware chain around the routes.
func TestNewMux(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	h, err := NewMux(&mockAPI{}, nil, Options{CSRFKey: key, RequireToken: true, Location: time.UTC})
	if err != nil {
		t.Fatalf("NewMux: %v", err)
	}

	rec := serve(h, "GET", "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
	if rec := serve(h, "GET", "/api/students", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("tokenless api status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest("GET", "/api/students", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("bearer api status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
}

// TestNewMux_FormMutation verifies a browser-style flow through the full chain:
// a GET hands out the CSRF token and cookie, and a same-origin form post using
// them creates the schedule.
func TestNewMux_FormMutation(t *testing.T) {
	api := &mockAPI{}
	h, err := NewMux(api, nil, Options{Location: time.UTC, Now: fixedNow})
	if err != nil {
		t.Fatalf("NewMux: %v", err)
	}

	get := httptest.NewRecorder()
	h.ServeHTTP(get, httptest.NewRequest("GET", "/api/weekly-overview", nil))
	if get.Code != http.StatusOK {
		t.Fatalf("GET weekly-overview = %d %s", get.Code, get.Body.String())
	}
	token := get.Header().Get(middleware.CSRFHeader)
	if token == "" {
		t.Fatal("no CSRF token issued")
	}

	post := func(withToken bool) *httptest.ResponseRecorder {
		form := url.Values{"weekday": {"3"}, "starts_at": {"09:00"}, "ends_at": {"10:00"}}
		if withToken {
			form.Set("gorilla.csrf.Token", token)
		}
		req := httptest.NewRequest("POST", "/api/rosters/5/schedules", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Origin", "http://example.com")
		for _, c := range get.Result().Cookies() {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := post(false); rec.Code != http.StatusForbidden {
		t.Errorf("tokenless form post = %d, want 403", rec.Code)
	}
	rec := post(true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("form post = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	if got := strings.Join(api.calls, ";"); got != "create schedule 5 day=3 09:00-10:00" {
		t.Errorf("upstream call = %q", got)
	}
}

// TestNewMux_CSRFKey verifies key validation.
func TestNewMux_CSRFKey(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"production without key", Options{Production: true}, true},
		{"short key", Options{CSRFKey: []byte("short")}, true},
		{"development generates", Options{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMux(&mockAPI{}, nil, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMux err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestRosterMembership verifies the add routes and validation of the member kind.
func TestRosterMembership(t *testing.T) {
	api := &mockAPI{}
	mux := newTestMux(api)
	for _, target := range []string{"/api/rosters/5/students/12", "/api/rosters/5/teachers/2"} {
		if rec := serve(mux, "POST", target, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("POST %s = %d (%s)", target, rec.Code, rec.Body.String())
		}
	}
	if got, want := strings.Join(api.calls, ";"), "add student 5/12;add teacher 5/2"; got != want {
		t.Errorf("calls = %q, want %q", got, want)
	}

	api.writeErr = &restapi.Error{Op: "add", StatusCode: http.StatusUnprocessableEntity, Message: "Student already on roster"}
	rec := serve(mux, "POST", "/api/rosters/5/students/12", "", "")
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "already on roster") {
		t.Errorf("upstream rejection = %d %s", rec.Code, rec.Body.String())
	}
}

// TestAddSkills verifies JSON and form bodies and role validation.
func TestAddSkills(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantCall    string
	}{
		{"json", "application/json", `{"skill_ids":[3,"5",3],"role":"cooldown"}`, http.StatusOK, "add skills 7 [3 5] cooldown"},
		{"form", "application/x-www-form-urlencoded", "skill_ids=4,+9&role=", http.StatusOK, "add skills 7 [4 9] main"},
		{"no skills", "application/json", `{"skill_ids":[]}`, http.StatusBadRequest, ""},
		{"bad role", "application/json", `{"skill_ids":[1],"role":"stretch"}`, http.StatusBadRequest, ""},
		{"unknown field", "application/json", `{"skills":[1]}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAPI{}
			rec := serve(newTestMux(api), "POST", "/api/lesson-plans/7/skills", tt.contentType, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := strings.Join(api.calls, ";"); got != tt.wantCall {
				t.Errorf("calls = %q, want %q", got, tt.wantCall)
			}
		})
	}
}

// TestStudentViews verifies the my-students card, the student detail and the skill catalogue.
func TestStudentViews(t *testing.T) {
	level := 1
	api := &mockAPI{
		students: []student.Student{
			{ID: "1", FirstName: "Ada", LastName: "Lovelace", Birthday: "2012-01-16"},
			{ID: "2", FirstName: "Grace", LastName: "Hopper", Birthday: "2011-01-10"},
			{ID: "1", FirstName: "Ada", LastName: "Lovelace", Birthday: "2012-01-16"},
		},
		detail: &student.Student{ID: "1", FirstName: "Ada", Notes: "**strong** edges", Rosters: []student.RosterRef{{ID: "4", Name: "Basic 1"}}},
		skills: []skill.Skill{{ID: "9", Name: "Bunny hop", Level: &level}},
	}
	mux := newTestMux(api)

	rec := serve(mux, "GET", "/api/my-students?q=&show_all=true", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("my-students status = %d (%s)", rec.Code, rec.Body.String())
	}
	var mine struct {
		Total    int  `json:"total"`
		ShowAll  bool `json:"show_all"`
		Upcoming []struct {
			ID   ident.ID `json:"id"`
			When string   `json:"when"`
		} `json:"upcoming_birthdays"`
		Recent []struct {
			ID   ident.ID `json:"id"`
			Days int      `json:"days"`
		} `json:"recent_birthdays"`
		Badge int `json:"birthday_badge_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &mine); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if mine.Total != 2 || !mine.ShowAll || mine.Badge != 2 {
		t.Errorf("my-students = %+v", mine)
	}
	if len(mine.Upcoming) != 1 || mine.Upcoming[0].When != "Tomorrow" || len(mine.Recent) != 1 || mine.Recent[0].Days != 5 {
		t.Errorf("birthdays = %+v / %+v", mine.Upcoming, mine.Recent)
	}

	rec = serve(mux, "GET", "/api/students/1", "", "")
	var detail struct {
		NotesHTML string `json:"notes_html"`
		Rosters   []struct {
			Name string `json:"name"`
		} `json:"rosters"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("student = %d %s (%v)", rec.Code, rec.Body.String(), err)
	}
	if !strings.Contains(detail.NotesHTML, "<strong>strong</strong>") || len(detail.Rosters) != 1 || detail.Rosters[0].Name != "Basic 1" {
		t.Errorf("student detail = %+v", detail)
	}
	if rec := serve(newTestMux(&mockAPI{}), "GET", "/api/students/2", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing student status = %d, want 404", rec.Code)
	}

	rec = serve(mux, "GET", "/api/skills", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"levels":[{"level":1,"skills":[{"id":9`) {
		t.Errorf("skills = %d %s", rec.Code, rec.Body.String())
	}
}

// TestRosterLessons verifies both lesson sources reach the response.
func TestRosterLessons(t *testing.T) {
	api := &mockAPI{scheduled: []lessonplan.MeetingMatch{{
		Meeting:     lessonplan.MeetingSlot{TaughtOn: "2024-01-20", StartsAt: "09:00", EndsAt: "10:00"},
		Occurrences: []lessonplan.Occurrence{{ID: "8", LessonPlan: &lessonplan.LessonPlan{ID: "2", Title: "Spins"}}},
	}}}
	rec := serve(newTestMux(api), "GET", "/api/rosters/5/lessons", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Lessons []struct {
			Title     string `json:"title"`
			DateLabel string `json:"date_label"`
		} `json:"lessons"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Lessons) != 1 || body.Lessons[0].Title != "Spins" || body.Lessons[0].DateLabel != "Jan 20, 2024" {
		t.Errorf("lessons = %+v", body.Lessons)
	}
}
