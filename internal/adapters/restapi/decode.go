package restapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// defaultListKeys are the wrapper keys tried after any caller-supplied ones.
var defaultListKeys = []string{"rosters", "data", "items"}

// DecodeList normalizes a list reply. A raw JSON array is decoded as is; an
// object is searched for the first of keys, then "rosters", "data" and
// "items", holding an array. Anything else is an empty list.
// PRE: none
// POST: Returns a non-nil slice; error only when a found array fails to decode into T
func DecodeList[T any](body []byte, keys ...string) ([]T, error) {
	raw := bytes.TrimSpace(body)
	if len(raw) == 0 {
		return []T{}, nil
	}

	switch raw[0] {
	case '[':
		return decodeArray[T](raw)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return []T{}, nil
		}
		for _, k := range slices.Concat(keys, defaultListKeys) {
			v := bytes.TrimSpace(obj[k])
			if len(v) > 0 && v[0] == '[' {
				return decodeArray[T](v)
			}
		}
	}
	return []T{}, nil
}

func decodeArray[T any](raw []byte) ([]T, error) {
	out := []T{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return []T{}, fmt.Errorf("decode list: %w", err)
	}
	return out, nil
}
