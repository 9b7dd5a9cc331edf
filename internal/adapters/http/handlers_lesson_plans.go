package web

import (
	"net/http"
	"strings"

	"rinkdesk/internal/application/orchestrators"
	"rinkdesk/internal/application/projections"
	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/lessonplan"
)

// lessonPlanResponse adds the rendered description to a lesson plan detail.
type lessonPlanResponse struct {
	projections.GetLessonPlanResult
	DescriptionHTML string `json:"description_html,omitempty"`
}

// handleLessonPlan serves one lesson plan with its occurrences matched to rosters.
func (s *server) handleLessonPlan(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetLessonPlan(r.Context(), ident.ID(r.PathValue("id")), projections.GetLessonPlanDeps{
		Plans:      s.api,
		Rosters:    s.api,
		Schedules:  s.api,
		Fetch:      s.opts.Fetch,
		Compare:    s.opts.Compare,
		Tolerances: s.opts.Tolerances,
		Location:   s.opts.Location,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lessonPlanResponse{
		GetLessonPlanResult: res,
		DescriptionHTML:     renderMarkdown(res.Plan.Description),
	})
}

// occurrenceRequest is the body of POST /api/lesson-plans/{id}/occurrences.
type occurrenceRequest struct {
	TaughtOn string   `json:"taught_on"`
	StartsAt string   `json:"starts_at"`
	EndsAt   string   `json:"ends_at"`
	Location string   `json:"location"`
	RosterID ident.ID `json:"roster_id"`
}

// handleAddOccurrence schedules a lesson plan on a date.
func (s *server) handleAddOccurrence(w http.ResponseWriter, r *http.Request) {
	var req occurrenceRequest
	err := decodeBody(w, r, &req, func(get func(string) string) {
		req = occurrenceRequest{
			TaughtOn: get("taught_on"),
			StartsAt: get("starts_at"),
			EndsAt:   get("ends_at"),
			Location: get("location"),
			RosterID: ident.ID(get("roster_id")),
		}
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	planID := ident.ID(r.PathValue("id"))
	err = orchestrators.ExecuteAddLessonPlanOccurrence(r.Context(), orchestrators.AddLessonPlanOccurrenceInput{
		LessonPlanID: planID,
		Occurrence: lessonplan.Occurrence{
			LessonPlanID: planID,
			TaughtOn:     req.TaughtOn,
			StartsAt:     req.StartsAt,
			EndsAt:       req.EndsAt,
			Location:     req.Location,
			RosterID:     req.RosterID,
		},
	}, orchestrators.AddLessonPlanOccurrenceDeps{Occurrences: s.api})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// handleRemoveOccurrence deletes one dated occurrence of a lesson plan.
func (s *server) handleRemoveOccurrence(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteRemoveLessonPlanOccurrence(r.Context(), orchestrators.RemoveLessonPlanOccurrenceInput{
		LessonPlanID: ident.ID(r.PathValue("id")),
		OccurrenceID: ident.ID(r.PathValue("oid")),
	}, orchestrators.RemoveLessonPlanOccurrenceDeps{Occurrences: s.api})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSkills serves the skill catalogue grouped by level.
// Query: q, category.
func (s *server) handleSkills(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetSkills(r.Context(), projections.GetSkillsQuery{
		Search:   r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}, projections.GetSkillsDeps{Skills: s.api})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// skillsRequest is the body of POST /api/lesson-plans/{id}/skills.
// Forms send skill_ids comma separated.
type skillsRequest struct {
	SkillIDs []ident.ID `json:"skill_ids"`
	Role     string     `json:"role"`
}

// handleAddSkills attaches skills to a lesson plan under one role.
func (s *server) handleAddSkills(w http.ResponseWriter, r *http.Request) {
	var req skillsRequest
	err := decodeBody(w, r, &req, func(get func(string) string) {
		req = skillsRequest{Role: get("role")}
		for _, id := range strings.Split(get("skill_ids"), ",") {
			req.SkillIDs = append(req.SkillIDs, ident.ID(strings.TrimSpace(id)))
		}
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	err = orchestrators.ExecuteAddLessonPlanSkills(r.Context(), orchestrators.AddLessonPlanSkillsInput{
		LessonPlanID: ident.ID(r.PathValue("id")),
		SkillIDs:     req.SkillIDs,
		Role:         req.Role,
	}, orchestrators.LessonPlanSkillsDeps{Skills: s.api})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// handleRemoveSkill detaches one skill from a lesson plan.
// Query: role (default main).
func (s *server) handleRemoveSkill(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteRemoveLessonPlanSkill(r.Context(), orchestrators.RemoveLessonPlanSkillInput{
		LessonPlanID: ident.ID(r.PathValue("id")),
		SkillID:      ident.ID(r.PathValue("sid")),
		Role:         r.URL.Query().Get("role"),
	}, orchestrators.LessonPlanSkillsDeps{Skills: s.api})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
