package client

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"network", &NetworkError{Operation: "GET wp/v2/posts"}, KindNetwork},
		{"authentication", &AuthenticationError{Operation: "authenticate"}, KindAuthentication},
		{"rate limit", &RateLimitError{Operation: "GET wp/v2/posts"}, KindRateLimit},
		{"validation", &ValidationError{Operation: "GET wp/v2/posts"}, KindValidation},
		{"server", &ServerError{Operation: "GET wp/v2/posts", StatusCode: 502}, KindServer},
		{"unknown", &UnknownError{Operation: "GET wp/v2/posts"}, KindUnknown},
		{"wrapped", fmt.Errorf("handler: %w", &ServerError{StatusCode: 503}), KindServer},
		{"unclassified", errors.New("boom"), KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Errorf("KindOf() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"network", &NetworkError{}, true},
		{"server", &ServerError{StatusCode: 500}, true},
		{"rate limit", &RateLimitError{}, true},
		{"authentication", &AuthenticationError{}, false},
		{"validation", &ValidationError{}, false},
		{"unknown", &UnknownError{StatusCode: 404}, false},
		{"unclassified", errors.New("boom"), false},
		{"nil", nil, false},
		{"wrapped network", fmt.Errorf("send: %w", &NetworkError{Timeout: true}), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	var err error = &NetworkError{Operation: "GET wp/v2/posts", Message: "connection refused", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the transport cause")
	}

	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatal("expected errors.As to match *NetworkError")
	}
	if ne.Message != "connection refused" {
		t.Errorf("unexpected message %q", ne.Message)
	}
}

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want []string
	}{
		{
			"network timeout",
			&NetworkError{Operation: "GET wp/v2/posts", Message: "request timed out", Timeout: true},
			[]string{"network timeout", "GET wp/v2/posts"},
		},
		{
			"rate limit with retry-after",
			&RateLimitError{Operation: "GET wp/v2/posts", Message: "window exhausted", RetryAfter: 30 * time.Second},
			[]string{"rate limit exceeded", "retry after 30s"},
		},
		{
			"validation with field",
			&ValidationError{Operation: "POST wp/v2/posts", Field: "status", Message: "not a valid status"},
			[]string{`field "status"`, "not a valid status"},
		},
		{
			"server",
			&ServerError{Operation: "GET wp/v2/posts", StatusCode: 502, Message: "Bad Gateway"},
			[]string{"status 502", "Bad Gateway"},
		},
		{
			"unknown with status",
			&UnknownError{Operation: "GET wp/v2/missing", StatusCode: 404, Message: "Not Found"},
			[]string{"status 404"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := tc.err.Error()
			for _, want := range tc.want {
				if !strings.Contains(msg, want) {
					t.Errorf("message %q missing %q", msg, want)
				}
			}
		})
	}
}

func TestRetryAfterOf(t *testing.T) {
	err := fmt.Errorf("request: %w", &RateLimitError{RetryAfter: 42 * time.Second})
	if got := RetryAfterOf(err); got != 42*time.Second {
		t.Errorf("RetryAfterOf() = %v, want 42s", got)
	}
	if got := RetryAfterOf(errors.New("boom")); got != 0 {
		t.Errorf("RetryAfterOf() = %v for unrelated error, want 0", got)
	}
}
