package client

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a request failure. The values double as metric and
// log labels.
type Kind string

const (
	// KindNetwork covers transport-level failures: refused connections,
	// DNS failures, timeouts.
	KindNetwork Kind = "network"

	// KindAuthentication covers rejected or missing credentials.
	KindAuthentication Kind = "authentication"

	// KindRateLimit covers local admission rejections and server 429s.
	KindRateLimit Kind = "rate_limit"

	// KindValidation covers malformed caller input and 400/422 replies.
	KindValidation Kind = "validation"

	// KindServer covers 5xx replies.
	KindServer Kind = "server"

	// KindUnknown covers everything the classifier cannot place.
	KindUnknown Kind = "unknown"
)

// Error is implemented by every classified request error.
type Error interface {
	error
	Kind() Kind
}

// NetworkError reports a transport-level failure.
type NetworkError struct {
	// Operation describes the failed call, e.g. "GET wp/v2/posts".
	Operation string

	// Message is a sanitized description of the failure.
	Message string

	// Timeout is set when the failure was a deadline expiry.
	Timeout bool

	// Cause is the underlying transport error.
	Cause error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("network timeout during %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("network error during %s: %s", e.Operation, e.Message)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// Kind returns KindNetwork.
func (e *NetworkError) Kind() Kind { return KindNetwork }

// AuthenticationError reports rejected or unusable credentials.
type AuthenticationError struct {
	// Operation describes the failed call.
	Operation string

	// Message is a sanitized description; never credential material.
	Message string

	// StatusCode is the HTTP status that triggered the error, zero when
	// the failure happened before any request.
	StatusCode int

	// Cause is the underlying error, if any.
	Cause error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed during %s: %s", e.Operation, e.Message)
}

func (e *AuthenticationError) Unwrap() error { return e.Cause }

// Kind returns KindAuthentication.
func (e *AuthenticationError) Kind() Kind { return KindAuthentication }

// RateLimitError reports an admission rejection, local or remote.
type RateLimitError struct {
	// Operation describes the failed call.
	Operation string

	// Message is a sanitized description of the rejection.
	Message string

	// RetryAfter is how long to wait before trying again, zero when the
	// server did not say.
	RetryAfter time.Duration

	// Limit is the admission limit that was hit, zero when unknown.
	Limit int
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limit exceeded during %s: %s (retry after %s)", e.Operation, e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded during %s: %s", e.Operation, e.Message)
}

// Kind returns KindRateLimit.
func (e *RateLimitError) Kind() Kind { return KindRateLimit }

// ValidationError reports malformed caller input. It is never retried.
type ValidationError struct {
	// Operation describes the rejected call.
	Operation string

	// Field names the offending parameter, empty when the problem is
	// not tied to one field.
	Field string

	// Message describes what is wrong.
	Message string

	// Cause is the underlying validation error.
	Cause error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid request for %s: field %q: %s", e.Operation, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid request for %s: %s", e.Operation, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// Kind returns KindValidation.
func (e *ValidationError) Kind() Kind { return KindValidation }

// ServerError reports a 5xx reply.
type ServerError struct {
	// Operation describes the failed call.
	Operation string

	// StatusCode is the HTTP status.
	StatusCode int

	// Message is a sanitized description from the response body.
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error during %s: status %d: %s", e.Operation, e.StatusCode, e.Message)
}

// Kind returns KindServer.
func (e *ServerError) Kind() Kind { return KindServer }

// UnknownError reports a failure the classifier could not place.
type UnknownError struct {
	// Operation describes the failed call.
	Operation string

	// StatusCode is the HTTP status, zero when the failure was not an
	// HTTP reply.
	StatusCode int

	// Message is a sanitized description.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *UnknownError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("unexpected failure during %s: status %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("unexpected failure during %s: %s", e.Operation, e.Message)
}

func (e *UnknownError) Unwrap() error { return e.Cause }

// Kind returns KindUnknown.
func (e *UnknownError) Kind() Kind { return KindUnknown }

var (
	_ Error = (*NetworkError)(nil)
	_ Error = (*AuthenticationError)(nil)
	_ Error = (*RateLimitError)(nil)
	_ Error = (*ValidationError)(nil)
	_ Error = (*ServerError)(nil)
	_ Error = (*UnknownError)(nil)
)

// KindOf returns the classification of err, or KindUnknown when err
// carries none. Nil maps to the empty Kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var classified Error
	if errors.As(err, &classified) {
		return classified.Kind()
	}
	return KindUnknown
}

// IsRetryable reports whether the failure class may succeed on retry:
// network failures, 5xx replies and rate limiting. Validation,
// authentication and unknown failures are never retried.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindServer, KindRateLimit:
		return true
	default:
		return false
	}
}

// RetryAfterOf returns the server-suggested wait carried by a rate
// limit error, zero otherwise.
func RetryAfterOf(err error) time.Duration {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle.RetryAfter
	}
	return 0
}
