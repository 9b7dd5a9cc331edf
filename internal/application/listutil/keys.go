package listutil

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"rinkdesk/internal/domain/timeofday"
)

// SortKey orders items on one field that may be absent.
type SortKey[T any] struct {
	has func(T) bool
	cmp func(a, b T) int
}

// Has reports whether item carries the key.
func (k SortKey[T]) Has(item T) bool {
	return k.has(item)
}

// Compare orders two items that both carry the key.
func (k SortKey[T]) Compare(a, b T) int {
	return k.cmp(a, b)
}

var collators = sync.Pool{
	New: func() any { return collate.New(language.English, collate.IgnoreCase) },
}

// CompareFold compares two strings case-insensitively in English collation order.
// Safe for concurrent use.
func CompareFold(a, b string) int {
	c := collators.Get().(*collate.Collator)
	defer collators.Put(c)
	return c.CompareString(a, b)
}

// StringKey sorts on a text field with CompareFold. Blank values are absent.
func StringKey[T any](field func(T) string) SortKey[T] {
	return SortKey[T]{
		has: func(item T) bool { return strings.TrimSpace(field(item)) != "" },
		cmp: func(a, b T) int {
			return CompareFold(strings.TrimSpace(field(a)), strings.TrimSpace(field(b)))
		},
	}
}

// TimeKey sorts on a date or datetime field. Values that do not parse are absent.
// PRE: loc may be nil (time.Local is used)
func TimeKey[T any](field func(T) string, loc *time.Location) SortKey[T] {
	parse := func(item T) (time.Time, bool) {
		return timeofday.ParseDateTime(field(item), loc)
	}
	return SortKey[T]{
		has: func(item T) bool {
			_, ok := parse(item)
			return ok
		},
		cmp: func(a, b T) int {
			ta, _ := parse(a)
			tb, _ := parse(b)
			return ta.Compare(tb)
		},
	}
}

// IntKey sorts on an integer field; field reports presence.
func IntKey[T any](field func(T) (int, bool)) SortKey[T] {
	return SortKey[T]{
		has: func(item T) bool {
			_, ok := field(item)
			return ok
		},
		cmp: func(a, b T) int {
			x, _ := field(a)
			y, _ := field(b)
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		},
	}
}

// BoolKey sorts false before true. It is always present.
func BoolKey[T any](field func(T) bool) SortKey[T] {
	return IntKey(func(item T) (int, bool) {
		if field(item) {
			return 1, true
		}
		return 0, true
	})
}

// compareKeys walks keys in order. An item missing a key sorts after one that
// has it whatever the direction; two items missing it move on to the next key.
func compareKeys[T any](keys []SortKey[T], desc bool, a, b T) int {
	for _, k := range keys {
		ha, hb := k.Has(a), k.Has(b)
		switch {
		case ha && !hb:
			return -1
		case !ha && hb:
			return 1
		case !ha && !hb:
			continue
		}
		c := k.Compare(a, b)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}
