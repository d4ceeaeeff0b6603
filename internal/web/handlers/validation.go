package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ValidationError represents a rejected request field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// requireString trims s and fails when nothing is left.
func requireString(s, field string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ValidationError{Field: field, Message: "is required"}
	}
	return s, nil
}

// acceptedTimeLayouts are tried in order. The zoneless forms come from
// browser date and datetime-local inputs and are read as UTC.
var acceptedTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// parseTime parses a client supplied timestamp.
func parseTime(value, field string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ValidationError{Field: field, Message: "is required"}
	}
	for _, layout := range acceptedTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ValidationError{Field: field, Message: "must be an RFC 3339 timestamp or YYYY-MM-DD date"}
}

// optionalQuery returns the query value for name, or nil when it is absent
// or empty.
func optionalQuery(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	return &v
}

// intQuery parses an integer query parameter, returning fallback when absent.
func intQuery(r *http.Request, name string, fallback int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, ValidationError{Field: name, Message: "must be an integer"}
	}
	return n, nil
}

// optionalString trims s and maps empty results to nil.
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
