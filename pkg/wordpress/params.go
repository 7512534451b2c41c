package wordpress

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Argument extraction helpers for tool handlers. Tool arguments arrive
// as map[string]any decoded from JSON, so numbers are float64 and IDs
// may be sent as strings by loosely typed callers; these helpers
// coerce the common forms and reject the rest with a FieldError.

// PostStatuses lists the post states the REST API accepts.
var PostStatuses = []string{"publish", "future", "draft", "pending", "private"}

// CommentStatuses lists the comment states the REST API accepts.
var CommentStatuses = []string{"approve", "hold", "spam", "trash"}

// MediaTypes lists the attachment media_type filters the REST API
// accepts.
var MediaTypes = []string{"image", "video", "audio", "application", "text"}

// SearchSubtypes lists the content types the search endpoint can be
// restricted to.
var SearchSubtypes = []string{"post", "page", "any"}

// maxPerPage is the REST API's hard ceiling on collection page size.
const maxPerPage = 100

// RequireID extracts a required positive integer identifier.
func RequireID(args map[string]any, field string) (int, error) {
	v, ok := args[field]
	if !ok {
		return 0, &FieldError{Field: field, Message: "required"}
	}

	id, ok := coerceInt(v)
	if !ok {
		return 0, &FieldError{Field: field, Message: fmt.Sprintf("must be an integer, got %T", v)}
	}
	if id <= 0 {
		return 0, &FieldError{Field: field, Message: fmt.Sprintf("must be a positive integer, got %d", id)}
	}
	return id, nil
}

// RequireString extracts a required non-empty string.
func RequireString(args map[string]any, field string) (string, error) {
	v, ok := args[field]
	if !ok {
		return "", &FieldError{Field: field, Message: "required"}
	}

	s, ok := v.(string)
	if !ok {
		return "", &FieldError{Field: field, Message: fmt.Sprintf("must be a string, got %T", v)}
	}
	if strings.TrimSpace(s) == "" {
		return "", &FieldError{Field: field, Message: "must not be empty"}
	}
	return s, nil
}

// OptionalString extracts a string if present. Absent fields return
// ok=false with no error; present non-string values are an error.
func OptionalString(args map[string]any, field string) (string, bool, error) {
	v, ok := args[field]
	if !ok {
		return "", false, nil
	}

	s, ok := v.(string)
	if !ok {
		return "", false, &FieldError{Field: field, Message: fmt.Sprintf("must be a string, got %T", v)}
	}
	return s, true, nil
}

// OptionalInt extracts an integer if present.
func OptionalInt(args map[string]any, field string) (int, bool, error) {
	v, ok := args[field]
	if !ok {
		return 0, false, nil
	}

	n, ok := coerceInt(v)
	if !ok {
		return 0, false, &FieldError{Field: field, Message: fmt.Sprintf("must be an integer, got %T", v)}
	}
	return n, true, nil
}

// OptionalBool extracts a boolean if present.
func OptionalBool(args map[string]any, field string) (bool, bool, error) {
	v, ok := args[field]
	if !ok {
		return false, false, nil
	}

	b, ok := v.(bool)
	if !ok {
		return false, false, &FieldError{Field: field, Message: fmt.Sprintf("must be a boolean, got %T", v)}
	}
	return b, true, nil
}

// OptionalStringSlice extracts an array of strings if present.
func OptionalStringSlice(args map[string]any, field string) ([]string, bool, error) {
	v, ok := args[field]
	if !ok {
		return nil, false, nil
	}

	items, ok := v.([]any)
	if !ok {
		return nil, false, &FieldError{Field: field, Message: fmt.Sprintf("must be an array of strings, got %T", v)}
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false, &FieldError{Field: field, Message: fmt.Sprintf("element %d must be a string, got %T", i, item)}
		}
		out = append(out, s)
	}
	return out, true, nil
}

// OptionalEnum extracts a string if present and checks it against the
// allowed values.
func OptionalEnum(args map[string]any, field string, allowed []string) (string, bool, error) {
	s, ok, err := OptionalString(args, field)
	if err != nil || !ok {
		return "", ok, err
	}

	for _, a := range allowed {
		if s == a {
			return s, true, nil
		}
	}
	return "", false, &FieldError{
		Field:   field,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// OptionalPage extracts the "page" pagination parameter, requiring a
// value of at least 1.
func OptionalPage(args map[string]any) (int, bool, error) {
	n, ok, err := OptionalInt(args, "page")
	if err != nil || !ok {
		return 0, ok, err
	}
	if n < 1 {
		return 0, false, &FieldError{Field: "page", Message: fmt.Sprintf("must be at least 1, got %d", n)}
	}
	return n, true, nil
}

// OptionalPerPage extracts the "per_page" pagination parameter,
// bounded to the REST API's 1..100 range.
func OptionalPerPage(args map[string]any) (int, bool, error) {
	n, ok, err := OptionalInt(args, "per_page")
	if err != nil || !ok {
		return 0, ok, err
	}
	if n < 1 || n > maxPerPage {
		return 0, false, &FieldError{
			Field:   "per_page",
			Message: fmt.Sprintf("must be between 1 and %d, got %d", maxPerPage, n),
		}
	}
	return n, true, nil
}

// MaxLength checks a string field against an upper length bound,
// measured in bytes.
func MaxLength(field, value string, max int) error {
	if len(value) > max {
		return &FieldError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d bytes, got %d", max, len(value)),
		}
	}
	return nil
}

// coerceInt converts the integer forms JSON decoding and loosely typed
// callers produce. Fractional floats and non-numeric strings fail.
func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
