package web

import (
	"net/http"

	"rinkdesk/internal/application/listutil"
	"rinkdesk/internal/application/projections"
)

// Directory handlers share the query parameters
// q, page, per_page, sort and dir; lesson plans also accept roster_id.

func (s *server) handleStudents(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseListParams(r.URL.Query(), projections.StudentSortColumns, nil)
	page, err := projections.QueryGetStudentDirectory(r.Context(), params, projections.GetStudentDirectoryDeps{
		Students: s.api,
		Location: s.opts.Location,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *server) handleRosters(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseListParams(r.URL.Query(), projections.RosterSortColumns, nil)
	page, err := projections.QueryGetRosterDirectory(r.Context(), params, projections.GetRosterDirectoryDeps{
		Rosters:  s.api,
		Location: s.opts.Location,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *server) handleLessonPlans(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseListParams(r.URL.Query(), projections.LessonPlanSortColumns, projections.LessonPlanFilterKeys)
	page, err := projections.QueryGetLessonPlanDirectory(r.Context(), params, projections.GetLessonPlanDirectoryDeps{
		LessonPlans: s.api,
		Location:    s.opts.Location,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *server) handleUsers(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseListParams(r.URL.Query(), projections.UserSortColumns, nil)
	page, err := projections.QueryGetUserDirectory(r.Context(), params, projections.GetUserDirectoryDeps{
		Users:    s.api,
		Location: s.opts.Location,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
