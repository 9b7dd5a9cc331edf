package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"rinkdesk/internal/adapters/http/middleware"
	"rinkdesk/internal/adapters/restapi"
	"rinkdesk/internal/application/projections"
	"rinkdesk/internal/domain/lessonplan"
	"rinkdesk/internal/domain/meeting"
	"rinkdesk/internal/domain/roster"
	"rinkdesk/internal/domain/schedule"
	"rinkdesk/internal/domain/skill"
	"rinkdesk/internal/domain/student"
)

// maxBodyBytes caps mutation request bodies.
const maxBodyBytes = 64 << 10

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// renderMarkdown converts markdown to HTML, falling back to escaped text.
func renderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTMLEscapeString(md)
	}
	return buf.String()
}

// badRequestErrors are the validation failures reported to the caller as 400.
var badRequestErrors = []error{
	projections.ErrInvalidDate,
	projections.ErrInvalidMonth,
	projections.ErrMissingRoster,
	restapi.ErrMissingID,
	schedule.ErrInvalidWeekday,
	schedule.ErrEmptyStartTime,
	schedule.ErrEmptyEndTime,
	schedule.ErrInvalidStartTime,
	schedule.ErrInvalidEndTime,
	schedule.ErrEndNotAfterStart,
	schedule.ErrLocationTooLong,
	schedule.ErrEmptyRosterID,
	schedule.ErrEmptyScheduleID,
	meeting.ErrEmptyMeetingID,
	meeting.ErrEmptyDate,
	meeting.ErrInvalidDate,
	meeting.ErrEmptyStartTime,
	meeting.ErrEmptyEndTime,
	meeting.ErrInvalidTime,
	meeting.ErrEndNotAfterStart,
	meeting.ErrLocationTooLong,
	meeting.ErrNotesTooLong,
	lessonplan.ErrEmptyLessonPlanID,
	lessonplan.ErrEmptyOccurrenceID,
	lessonplan.ErrEmptyDate,
	lessonplan.ErrInvalidDate,
	lessonplan.ErrInvalidStartTime,
	lessonplan.ErrInvalidEndTime,
	lessonplan.ErrEndWithoutStart,
	lessonplan.ErrEndNotAfterStart,
	lessonplan.ErrLocationTooLong,
	student.ErrEmptyStudentID,
	roster.ErrEmptyTeacherID,
	skill.ErrEmptySkillID,
	skill.ErrNoSkills,
	skill.ErrInvalidRole,
}

func isBadRequest(err error) bool {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}

// writeError maps an error to a status: validation failures are 400, upstream
// 401/403/404/422 pass through, anything else from upstream is 502.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if isBadRequest(err) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	var apiErr *restapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity:
			writeJSON(w, apiErr.StatusCode, errorBody{Error: apiErr.Message})
			return
		}
		slog.Warn("upstream_error",
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"op", apiErr.Op,
			"status", apiErr.StatusCode,
			"error", apiErr.Message,
		)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "upstream request failed"})
		return
	}
	internalError(w, r, err)
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error",
		"request_id", middleware.RequestIDFromContext(r.Context()),
		"path", r.URL.Path,
		"error", err.Error(),
	)
	writeJSON(w, http.StatusBadGateway, errorBody{Error: "upstream request failed"})
}

// decodeBody reads a JSON body strictly, or form values otherwise.
// PRE: v is a pointer to a struct with json tags
func decodeBody(w http.ResponseWriter, r *http.Request, v any, fromForm func(get func(string) string)) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return strictDecode(r, v)
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	fromForm(r.PostForm.Get)
	return nil
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// queryBool reads a boolean flag such as ?show_all=1.
func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

// queryInt reads an integer parameter, returning 0 when absent or malformed.
func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// handleHealth reports liveness.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePerf returns the request and upstream timing snapshot.
// Query: window (minutes, default 15), top (default 10).
func (s *server) handlePerf(w http.ResponseWriter, r *http.Request) {
	if s.collector == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "perf collection disabled"})
		return
	}
	window := queryInt(r, "window")
	if window <= 0 {
		window = 15
	}
	top := queryInt(r, "top")
	if top <= 0 {
		top = 10
	}
	writeJSON(w, http.StatusOK, s.collector.Snapshot(s.now().Add(-time.Duration(window)*time.Minute), top))
}
