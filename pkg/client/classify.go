package client

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"presshq/pressgate/pkg/client/auth"
	"presshq/pressgate/pkg/telemetry/logging"
)

// maxBodyExcerpt bounds how much of a failure response body is kept in
// error messages.
const maxBodyExcerpt = 256

// classifier maps transport errors and HTTP failure replies onto the
// typed errors of this package. Every message passes through the
// redactor so credential material never reaches callers or logs.
type classifier struct {
	redactor *logging.Redactor
}

func newClassifier(redactor *logging.Redactor) *classifier {
	if redactor == nil {
		redactor = logging.NewRedactor(nil)
	}
	return &classifier{redactor: redactor}
}

// classify wraps a transport-level error. Already-classified errors
// pass through unchanged so wrapping is idempotent.
func (c *classifier) classify(err error, operation string) error {
	if err == nil {
		return nil
	}

	var classified Error
	if errors.As(err, &classified) {
		return err
	}

	switch {
	case errors.Is(err, auth.ErrSessionFailed):
		return &AuthenticationError{
			Operation: operation,
			Message:   "authentication session failed, credentials must be reconfigured",
			Cause:     err,
		}
	case errors.Is(err, auth.ErrNotAuthenticated):
		return &AuthenticationError{
			Operation: operation,
			Message:   "no authenticated session",
			Cause:     err,
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &NetworkError{
			Operation: operation,
			Message:   "request timed out",
			Timeout:   true,
			Cause:     err,
		}
	case errors.Is(err, context.Canceled):
		return &NetworkError{
			Operation: operation,
			Message:   "request cancelled",
			Cause:     err,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &NetworkError{
			Operation: operation,
			Message:   c.sanitize(err.Error()),
			Timeout:   netErr.Timeout(),
			Cause:     err,
		}
	}

	return &UnknownError{
		Operation: operation,
		Message:   c.sanitize(err.Error()),
		Cause:     err,
	}
}

// classifyStatus maps a non-2xx HTTP reply onto a typed error.
// Auth and rate limit replies carry retry context; 400 and 422 surface
// the site's own validation message.
func (c *classifier) classifyStatus(operation string, status int, body []byte, retryAfter time.Duration) error {
	message := c.bodyMessage(status, body)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthenticationError{
			Operation:  operation,
			Message:    message,
			StatusCode: status,
		}
	case status == http.StatusTooManyRequests:
		return &RateLimitError{
			Operation:  operation,
			Message:    message,
			RetryAfter: retryAfter,
		}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		wpErr := decodeWPError(body)
		return &ValidationError{
			Operation: operation,
			Field:     wpErr.param(),
			Message:   c.sanitize(wpErr.text(message)),
		}
	case status >= 500:
		return &ServerError{
			Operation:  operation,
			StatusCode: status,
			Message:    message,
		}
	default:
		return &UnknownError{
			Operation:  operation,
			StatusCode: status,
			Message:    message,
		}
	}
}

// bodyMessage extracts a human-readable message from a failure body,
// preferring the REST API's own error envelope over a raw excerpt.
func (c *classifier) bodyMessage(status int, body []byte) string {
	if msg := decodeWPError(body).text(""); msg != "" {
		return c.sanitize(msg)
	}
	excerpt := strings.TrimSpace(string(body))
	if len(excerpt) > maxBodyExcerpt {
		excerpt = excerpt[:maxBodyExcerpt] + "..."
	}
	if excerpt == "" {
		return http.StatusText(status)
	}
	return c.sanitize(excerpt)
}

func (c *classifier) sanitize(s string) string {
	return c.redactor.RedactString(s)
}

// wpError is the REST API error envelope:
//
//	{"code":"rest_invalid_param","message":"...","data":{"status":400,"params":{...}}}
type wpError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int               `json:"status"`
		Params map[string]string `json:"params"`
	} `json:"data"`
}

func decodeWPError(body []byte) wpError {
	var we wpError
	if len(body) == 0 {
		return we
	}
	_ = json.Unmarshal(body, &we)
	return we
}

// text returns the envelope message, annotated with the error code when
// present, or fallback when the envelope is empty.
func (we wpError) text(fallback string) string {
	if we.Message == "" {
		return fallback
	}
	if we.Code != "" {
		return we.Message + " (" + we.Code + ")"
	}
	return we.Message
}

// param returns the first offending parameter named by an invalid-param
// reply, empty when the reply names none.
func (we wpError) param() string {
	first := ""
	for name := range we.Data.Params {
		if first == "" || name < first {
			first = name
		}
	}
	return first
}
