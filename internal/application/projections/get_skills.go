package projections

import (
	"context"
	"fmt"
	"strings"

	"rinkdesk/internal/domain/skill"
)

// GetSkillsQuery carries query parameters.
type GetSkillsQuery struct {
	Search   string // matches name or category
	Category string // exact, case-insensitive
}

// GetSkillsDeps holds dependencies for GetSkills.
type GetSkillsDeps struct {
	Skills SkillLister
}

// GetSkillsResult carries the grouped catalogue.
type GetSkillsResult struct {
	Groups     []skill.LevelGroup `json:"levels"`
	Total      int                `json:"total"`
	Categories []string           `json:"categories"`
}

// QueryGetSkills loads the skill catalogue grouped by level.
// Categories lists every category in the catalogue, before filtering, in
// first-seen order.
// POST: Groups and Categories are non-nil
func QueryGetSkills(ctx context.Context, query GetSkillsQuery, deps GetSkillsDeps) (GetSkillsResult, error) {
	all, err := deps.Skills.ListSkills(ctx)
	if err != nil {
		return GetSkillsResult{}, fmt.Errorf("list skills: %w", err)
	}
	search := strings.ToLower(strings.TrimSpace(query.Search))
	category := strings.TrimSpace(query.Category)

	res := GetSkillsResult{Categories: []string{}}
	seen := make(map[string]bool)
	var kept []skill.Skill
	for _, s := range all {
		if c := strings.TrimSpace(s.Category); c != "" && !seen[strings.ToLower(c)] {
			seen[strings.ToLower(c)] = true
			res.Categories = append(res.Categories, c)
		}
		if category != "" && !strings.EqualFold(strings.TrimSpace(s.Category), category) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(s.Name+" "+s.Category), search) {
			continue
		}
		kept = append(kept, s)
	}
	res.Groups = skill.GroupByLevel(kept)
	if res.Groups == nil {
		res.Groups = []skill.LevelGroup{}
	}
	res.Total = len(kept)
	return res, nil
}
