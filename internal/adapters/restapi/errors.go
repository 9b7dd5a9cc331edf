package restapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error is a non-2xx reply from the REST API.
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// IsStatus reports whether err is an *Error with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// IsNotFound reports whether err is a 404 from the REST API.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// Message returns the user-facing message of err, or fallback when err did not
// come from the REST API.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// messageFrom extracts a message from an error body: errors joined with ", ",
// else error, else message.
func messageFrom(body []byte, status int) string {
	var payload struct {
		Errors  json.RawMessage `json:"errors"`
		Error   any             `json:"error"`
		Message any             `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := joinErrors(payload.Errors); msg != "" {
			return msg
		}
		if s, ok := payload.Error.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
		if s, ok := payload.Message.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return fmt.Sprintf("request failed (status %d)", status)
}

// joinErrors accepts ["a","b"] or {"field":["a"]} shapes.
func joinErrors(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(nonEmpty(list), ", ")
	}
	var byField map[string][]string
	if err := json.Unmarshal(raw, &byField); err == nil {
		var parts []string
		for field, msgs := range byField {
			for _, m := range nonEmpty(msgs) {
				parts = append(parts, field+" "+m)
			}
		}
		sort.Strings(parts)
		return strings.Join(parts, ", ")
	}
	return ""
}

func nonEmpty(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// UserMessage returns the message extracted from the error body.
func (e *Error) UserMessage() string {
	return e.Message
}
