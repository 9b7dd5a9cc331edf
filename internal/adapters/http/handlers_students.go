package web

import (
	"net/http"

	"rinkdesk/internal/application/projections"
	"rinkdesk/internal/domain/ident"
)

// handleMyStudents serves the caller's students with nearby birthdays.
// Query: q, show_all.
func (s *server) handleMyStudents(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetMyStudents(r.Context(), projections.GetMyStudentsQuery{
		Search:  r.URL.Query().Get("q"),
		ShowAll: queryBool(r, "show_all"),
	}, projections.GetMyStudentsDeps{
		Students: s.api,
		Location: s.opts.Location,
		Now:      s.now,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// studentResponse adds rendered notes to a student detail.
type studentResponse struct {
	projections.GetStudentResult
	NotesHTML string `json:"notes_html,omitempty"`
}

// handleStudent serves one student with their rosters.
func (s *server) handleStudent(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetStudent(r.Context(), ident.ID(r.PathValue("id")), projections.GetStudentDeps{
		Students: s.api,
		Location: s.opts.Location,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, studentResponse{GetStudentResult: res, NotesHTML: renderMarkdown(res.Student.Notes)})
}
