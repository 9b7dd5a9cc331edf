package projections

import (
	"strings"
	"time"

	"rinkdesk/internal/application/listutil"
	"rinkdesk/internal/domain/timeofday"
)

// Placeholder shown for absent values.
const Placeholder = "—"

// DirectoryPage is one page of a processed directory listing.
type DirectoryPage[R any] struct {
	Items       []R    `json:"items"`
	Page        int    `json:"page"`
	PerPage     int    `json:"per_page"`
	Total       int    `json:"total"`
	TotalPages  int    `json:"total_pages"`
	ShowingFrom int    `json:"showing_from"`
	ShowingTo   int    `json:"showing_to"`
	PageButtons []int  `json:"page_buttons"`
	Query       string `json:"q"`
	Sort        string `json:"sort"`
	Dir         string `json:"dir"`
}

// newDirectoryPage maps a processed page to rows.
func newDirectoryPage[T, R any](res listutil.Result[T], params listutil.ListParams, row func(T) R) DirectoryPage[R] {
	rows := make([]R, 0, len(res.Items))
	for _, item := range res.Items {
		rows = append(rows, row(item))
	}
	return DirectoryPage[R]{
		Items:       rows,
		Page:        res.Page,
		PerPage:     res.PerPage,
		Total:       res.Total,
		TotalPages:  res.TotalPages,
		ShowingFrom: res.StartRow(),
		ShowingTo:   res.EndRow(),
		PageButtons: listutil.PageButtons(res.TotalPages),
		Query:       params.Search,
		Sort:        params.Sort,
		Dir:         params.Dir,
	}
}

// query builds a listutil.Query from request params.
func query[T any](params listutil.ListParams, text func(T) string, keys []listutil.SortKey[T], id func(T) string) listutil.Query[T] {
	return listutil.Query[T]{
		Search:  params.Search,
		Text:    text,
		Keys:    keys,
		Desc:    params.Descending(),
		ID:      id,
		Page:    params.Page,
		PerPage: params.PerPage,
	}
}

// DateLabel formats a date or datetime as "Jan 2, 2006", or Placeholder.
// A bare YYYY-MM-DD names a local calendar day and is never shifted by zone.
func DateLabel(v string, loc *time.Location) string {
	t, ok := timeofday.ParseDateKey(v, loc)
	if !ok {
		t, ok = timeofday.ParseDateTime(v, loc)
	}
	if !ok {
		return Placeholder
	}
	return t.Format("Jan 2, 2006")
}

// Initials returns the uppercase first letters of first and last name, or "??".
func Initials(first, last string) string {
	var b strings.Builder
	for _, part := range []string{first, last} {
		if r := []rune(strings.TrimSpace(part)); len(r) > 0 {
			b.WriteString(strings.ToUpper(string(r[0])))
		}
	}
	if b.Len() == 0 {
		return "??"
	}
	return b.String()
}
