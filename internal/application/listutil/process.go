package listutil

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Query describes one filter, sort and paginate pass over a list.
type Query[T any] struct {
	// Search is matched case-insensitively as a substring of Text(item).
	Search string
	Text   func(T) string

	// Keys are compared in order; later keys break ties of earlier ones.
	Keys []SortKey[T]
	Desc bool
	// ID breaks remaining ties in ascending order regardless of Desc.
	ID func(T) string

	Page    int
	PerPage int
}

// Result is one page of a processed list.
type Result[T any] struct {
	Items []T
	PageInfo
}

// Process filters, sorts and paginates items.
// An empty Search keeps every item; a nil Text drops nothing. Items without a
// sort key go after items with one in both directions. Page is clamped to
// [1, TotalPages]. A PerPage below 1 is not a page size: it selects
// DefaultPerPage, and the size actually applied is reported in Result.PerPage.
// PRE: none
// POST: items is not modified; len(Items) <= Result.PerPage; Total counts every filtered item
func Process[T any](items []T, q Query[T]) Result[T] {
	filtered := Filter(items, q.Search, q.Text)

	sort.SliceStable(filtered, func(i, j int) bool {
		c := compareKeys(q.Keys, q.Desc, filtered[i], filtered[j])
		if c == 0 && q.ID != nil {
			c = compareIDs(q.ID(filtered[i]), q.ID(filtered[j]))
		}
		return c < 0
	})

	info := NewPageInfo(q.Page, q.PerPage, len(filtered))
	return Result[T]{
		Items:    filtered[info.Offset():info.EndRow()],
		PageInfo: info,
	}
}

// Filter returns a copy of the items whose text contains search, ignoring case.
// PRE: text may be nil (every item is kept)
// POST: Returns a fresh, non-nil slice in input order
func Filter[T any](items []T, search string, text func(T) string) []T {
	out := make([]T, 0, len(items))
	search = strings.TrimSpace(search)
	if search == "" || text == nil {
		return append(out, items...)
	}
	fold := cases.Fold()
	needle := fold.String(search)
	for _, item := range items {
		if strings.Contains(fold.String(text(item)), needle) {
			out = append(out, item)
		}
	}
	return out
}

// Join concatenates searchable fields with single spaces.
func Join(fields ...string) string {
	return strings.Join(fields, " ")
}

// compareIDs orders numeric ids numerically and anything else bytewise.
func compareIDs(a, b string) int {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
