package restapi

import (
	"context"
	"net/http"
	"net/url"

	"rinkdesk/internal/domain/account"
	"rinkdesk/internal/domain/ident"
	"rinkdesk/internal/domain/lessonplan"
	"rinkdesk/internal/domain/skill"
	"rinkdesk/internal/domain/student"
)

// ListStudents returns every student (GET /students).
func (c *Client) ListStudents(ctx context.Context) ([]student.Student, error) {
	return getList[student.Student](ctx, c, "list_students", "/students", nil, "students")
}

// ListStudentsFromRosters returns the students on the caller's rosters
// (GET /students_from_rosters). The list may repeat a student.
func (c *Client) ListStudentsFromRosters(ctx context.Context) ([]student.Student, error) {
	return getList[student.Student](ctx, c, "list_students_from_rosters", "/students_from_rosters", nil, "students")
}

// GetStudent returns one student with their rosters (GET /students/{id}).
func (c *Client) GetStudent(ctx context.Context, id ident.ID) (*student.Student, error) {
	seg, err := pathID(id)
	if err != nil {
		return nil, err
	}
	return getOne[student.Student](ctx, c, "get_student", "/students/"+seg)
}

// ListSkills returns the skill catalogue (GET /skills).
func (c *Client) ListSkills(ctx context.Context) ([]skill.Skill, error) {
	return getList[skill.Skill](ctx, c, "list_skills", "/skills", nil, "skills")
}

// AddLessonPlanSkills attaches skills under a role (POST /lesson_plans/{id}/add_skills).
func (c *Client) AddLessonPlanSkills(ctx context.Context, planID ident.ID, skillIDs []ident.ID, role skill.Role) error {
	seg, err := pathID(planID)
	if err != nil {
		return err
	}
	body := map[string]any{"skill_ids": skillIDs, "role": role}
	return c.send(ctx, "add_lesson_plan_skills", http.MethodPost, "/lesson_plans/"+seg+"/add_skills", body)
}

// RemoveLessonPlanSkill detaches one skill from a role
// (DELETE /lesson_plans/{id}/remove_skill/{sid}?role=).
func (c *Client) RemoveLessonPlanSkill(ctx context.Context, planID, skillID ident.ID, role skill.Role) error {
	seg, err := pathID(planID)
	if err != nil {
		return err
	}
	sid, err := pathID(skillID)
	if err != nil {
		return err
	}
	q := url.Values{"role": {string(role)}}
	_, err = c.do(ctx, "remove_lesson_plan_skill", http.MethodDelete, "/lesson_plans/"+seg+"/remove_skill/"+sid, q, nil)
	return err
}

// ListLessonPlans returns every lesson plan (GET /lesson_plans).
func (c *Client) ListLessonPlans(ctx context.Context) ([]lessonplan.LessonPlan, error) {
	return getList[lessonplan.LessonPlan](ctx, c, "list_lesson_plans", "/lesson_plans", nil, "lesson_plans")
}

// GetLessonPlan returns one plan with its occurrences (GET /lesson_plans/{id}).
func (c *Client) GetLessonPlan(ctx context.Context, id ident.ID) (*lessonplan.LessonPlan, error) {
	seg, err := pathID(id)
	if err != nil {
		return nil, err
	}
	return getOne[lessonplan.LessonPlan](ctx, c, "get_lesson_plan", "/lesson_plans/"+seg)
}

// CreateLessonPlanOccurrence schedules a plan
// (POST /lesson_plans/{id}/lesson_plan_occurrences). Empty optional fields are sent as null.
func (c *Client) CreateLessonPlanOccurrence(ctx context.Context, planID ident.ID, o lessonplan.Occurrence) error {
	seg, err := pathID(planID)
	if err != nil {
		return err
	}
	var rosterID any
	if id := o.EffectiveRosterID(); !id.IsZero() {
		rosterID = id
	}
	body := map[string]any{
		"lesson_plan_occurrence": map[string]any{
			"taught_on": o.TaughtOn,
			"starts_at": nullable(o.StartsAt),
			"ends_at":   nullable(o.EndsAt),
			"location":  nullable(o.Location),
			"roster_id": rosterID,
		},
	}
	return c.send(ctx, "create_lesson_plan_occurrence", http.MethodPost, "/lesson_plans/"+seg+"/lesson_plan_occurrences", body)
}

// DeleteLessonPlanOccurrence unschedules a plan
// (DELETE /lesson_plans/{id}/lesson_plan_occurrences/{oid}).
func (c *Client) DeleteLessonPlanOccurrence(ctx context.Context, planID, occurrenceID ident.ID) error {
	seg, err := pathID(planID)
	if err != nil {
		return err
	}
	oid, err := pathID(occurrenceID)
	if err != nil {
		return err
	}
	return c.send(ctx, "delete_lesson_plan_occurrence", http.MethodDelete, "/lesson_plans/"+seg+"/lesson_plan_occurrences/"+oid, nil)
}

// ListAdminUsers returns every account (GET /admin/users).
func (c *Client) ListAdminUsers(ctx context.Context) ([]account.User, error) {
	return getList[account.User](ctx, c, "list_admin_users", "/admin/users", nil, "users")
}
