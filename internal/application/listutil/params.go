package listutil

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// DefaultPerPage is the page size used when per_page is absent or not offered.
const DefaultPerPage = 10

// PerPageOptions are the page sizes a directory offers.
var PerPageOptions = []int{5, 10, 20, 40}

// Sort directions
const (
	Asc  = "asc"
	Desc = "desc"
)

// ListParams is the list state carried in a directory URL:
// q, sort, dir, page, per_page and any named filters.
type ListParams struct {
	Page    int
	PerPage int
	Sort    string // "" unless one of the offered columns
	Dir     string // "", Asc or Desc
	Search  string
	Filters map[string]string
}

// ParseListParams reads list state from query values, dropping anything unrecognised.
// PRE: sortColumns and filterKeys may be nil
// POST: Page >= 1; PerPage is one of PerPageOptions; Filters is non-nil
func ParseListParams(q url.Values, sortColumns, filterKeys []string) ListParams {
	p := ListParams{
		Page:    1,
		PerPage: DefaultPerPage,
		Search:  strings.TrimSpace(q.Get("q")),
		Filters: map[string]string{},
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get("per_page")); err == nil && slices.Contains(PerPageOptions, n) {
		p.PerPage = n
	}
	if col := q.Get("sort"); slices.Contains(sortColumns, col) {
		p.Sort = col
	}
	switch dir := strings.ToLower(q.Get("dir")); dir {
	case Asc, Desc:
		p.Dir = dir
	}
	for _, key := range filterKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			p.Filters[key] = v
		}
	}
	return p
}

// SortOr fills in the column and direction a directory sorts by when the URL names none.
// POST: Dir is Asc or Desc
func (p ListParams) SortOr(col, dir string) ListParams {
	if p.Sort == "" {
		p.Sort = col
	}
	if p.Dir == "" {
		p.Dir = dir
	}
	if p.Dir != Desc {
		p.Dir = Asc
	}
	return p
}

// Descending reports whether Dir is Desc.
func (p ListParams) Descending() bool {
	return p.Dir == Desc
}

// Filter returns the named filter value, or "".
func (p ListParams) Filter(key string) string {
	return p.Filters[key]
}

// PageInfo is the pagination state of a processed list.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPageInfo clamps page into range for total rows.
// PRE: none
// POST: TotalPages >= 1; 1 <= Page <= TotalPages; PerPage >= 1; Total >= 0
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	total = max(total, 0)
	pages := max((total+perPage-1)/perPage, 1)
	return PageInfo{
		Page:       min(max(page, 1), pages),
		PerPage:    perPage,
		Total:      total,
		TotalPages: pages,
	}
}

// Offset is the index of the page's first row.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow is the 1-based number of the first row shown, 0 for an empty list.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow is the 1-based number of the last row shown.
func (p PageInfo) EndRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// Ellipsis stands for the gap in PageButtons.
const Ellipsis = 0

// PageButtons lists the page links of a pager: every page up to four,
// otherwise the first two and last two around an Ellipsis.
// POST: Returns [1] when totalPages <= 1
func PageButtons(totalPages int) []int {
	switch {
	case totalPages <= 1:
		return []int{1}
	case totalPages <= 4:
		out := make([]int, 0, totalPages)
		for n := 1; n <= totalPages; n++ {
			out = append(out, n)
		}
		return out
	}
	return []int{1, 2, Ellipsis, totalPages - 1, totalPages}
}
