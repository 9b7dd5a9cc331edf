// Package ident holds the identifier type shared by all upstream records.
package ident

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ID identifies an upstream record. The API emits ids as JSON numbers or
// strings depending on the endpoint; both decode to the same ID.
// The zero value means "no id".
type ID string

// IsZero reports whether the id is absent.
func (id ID) IsZero() bool {
	return id == ""
}

// String returns the id text.
func (id ID) String() string {
	return string(id)
}

// UnmarshalJSON accepts a number, a string or null.
// PRE: data is a single JSON value
// POST: id holds the textual form; null and "" leave it zero
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits canonical integer ids as numbers so request bodies
// round-trip unchanged to the upstream API. Anything else, "007" or "+5"
// included, is written as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// First returns the first non-zero id, or the zero id.
func First(ids ...ID) ID {
	for _, id := range ids {
		if !id.IsZero() {
			return id
		}
	}
	return ""
}
