package wordpress

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// FieldError represents a request validation failure.
// It identifies the invalid field so callers can surface actionable
// messages without inspecting the request themselves.
type FieldError struct {
	// Field is the name of the invalid field
	Field string

	// Message describes what is invalid about the field
	Message string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// Methods lists the HTTP methods the client accepts.
var Methods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodPatch,
}

// ValidateRequest checks a request's shape before any network or cache
// activity. It returns a *FieldError describing the first problem
// found, or nil when the request is well formed.
//
// Endpoints must be REST routes relative to the wp-json root
// ("wp/v2/posts"), never absolute URLs, and must carry query
// parameters in params rather than inline.
func ValidateRequest(method, endpoint string, params map[string]string) error {
	if err := validateMethod(method); err != nil {
		return err
	}
	if err := validateEndpoint(endpoint); err != nil {
		return err
	}
	return validateParams(params)
}

func validateMethod(method string) error {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return nil
	case "":
		return &FieldError{Field: "method", Message: "method is required"}
	default:
		return &FieldError{
			Field:   "method",
			Message: fmt.Sprintf("unsupported method %q (supported: %s)", method, strings.Join(Methods, ", ")),
		}
	}
}

func validateEndpoint(endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		return &FieldError{Field: "endpoint", Message: "endpoint is required"}
	}
	if strings.Contains(endpoint, "://") {
		return &FieldError{Field: "endpoint", Message: "endpoint must be a route relative to wp-json, not an absolute URL"}
	}
	if strings.Contains(endpoint, "..") {
		return &FieldError{Field: "endpoint", Message: "endpoint must not contain path traversal"}
	}
	// Inline query strings would bypass parameter sorting and split the
	// cache key space for identical requests.
	if strings.ContainsAny(endpoint, "?#") {
		return &FieldError{Field: "endpoint", Message: "endpoint must not embed a query string; pass parameters separately"}
	}
	return nil
}

func validateParams(params map[string]string) error {
	if len(params) == 0 {
		return nil
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			return &FieldError{Field: "params", Message: "parameter names must not be empty"}
		}
	}
	return nil
}

// NormalizeEndpoint canonicalizes a route for request building and
// cache keying: surrounding whitespace and the leading slash are
// stripped so "wp/v2/posts" and "/wp/v2/posts" address the same cache
// entry.
func NormalizeEndpoint(endpoint string) string {
	return strings.TrimPrefix(strings.TrimSpace(endpoint), "/")
}
