package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"presshq/pressgate/pkg/client/auth"
)

func TestClassify_Nil(t *testing.T) {
	c := newClassifier(nil)
	if got := c.classify(nil, "GET wp/v2/posts"); got != nil {
		t.Errorf("classify(nil) = %v, want nil", got)
	}
}

func TestClassify_AlreadyClassifiedPassesThrough(t *testing.T) {
	c := newClassifier(nil)
	orig := &ServerError{Operation: "GET wp/v2/posts", StatusCode: 500}

	got := c.classify(orig, "GET wp/v2/posts")
	if got != orig {
		t.Errorf("classify() rewrapped an already classified error: %v", got)
	}

	wrapped := fmt.Errorf("execute: %w", orig)
	if got := c.classify(wrapped, "GET wp/v2/posts"); got != wrapped {
		t.Errorf("classify() rewrapped a wrapped classified error: %v", got)
	}
}

func TestClassify_TransportErrors(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		wantKind    Kind
		wantTimeout bool
	}{
		{"deadline", context.DeadlineExceeded, KindNetwork, true},
		{"wrapped deadline", fmt.Errorf("Get \"https://example.com\": %w", context.DeadlineExceeded), KindNetwork, true},
		{"cancelled", context.Canceled, KindNetwork, false},
		{"dns timeout", &net.DNSError{Err: "i/o timeout", Name: "example.com", IsTimeout: true}, KindNetwork, true},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "example.com"}, KindNetwork, false},
		{"op error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, KindNetwork, false},
		{"session failed", auth.ErrSessionFailed, KindAuthentication, false},
		{"not authenticated", auth.ErrNotAuthenticated, KindAuthentication, false},
		{"plain", errors.New("boom"), KindUnknown, false},
	}

	c := newClassifier(nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.classify(tc.err, "GET wp/v2/posts")
			if kind := KindOf(got); kind != tc.wantKind {
				t.Fatalf("kind = %q, want %q", kind, tc.wantKind)
			}
			if !errors.Is(got, tc.err) {
				t.Error("classified error lost its cause")
			}
			if tc.wantKind == KindNetwork {
				var ne *NetworkError
				if !errors.As(got, &ne) {
					t.Fatal("expected *NetworkError")
				}
				if ne.Timeout != tc.wantTimeout {
					t.Errorf("Timeout = %v, want %v", ne.Timeout, tc.wantTimeout)
				}
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		wantKind  Kind
		retryable bool
	}{
		{"unauthorized", 401, KindAuthentication, false},
		{"forbidden", 403, KindAuthentication, false},
		{"too many requests", 429, KindRateLimit, true},
		{"bad request", 400, KindValidation, false},
		{"unprocessable", 422, KindValidation, false},
		{"not found", 404, KindUnknown, false},
		{"gone", 410, KindUnknown, false},
		{"conflict", 409, KindUnknown, false},
		{"internal", 500, KindServer, true},
		{"bad gateway", 502, KindServer, true},
		{"unavailable", 503, KindServer, true},
	}

	c := newClassifier(nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := c.classifyStatus("GET wp/v2/posts", tc.status, nil, 0)
			if kind := KindOf(err); kind != tc.wantKind {
				t.Errorf("kind = %q, want %q", kind, tc.wantKind)
			}
			if got := IsRetryable(err); got != tc.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tc.retryable)
			}
		})
	}
}

func TestClassifyStatus_RateLimitCarriesRetryAfter(t *testing.T) {
	c := newClassifier(nil)
	err := c.classifyStatus("GET wp/v2/posts", 429, nil, 30*time.Second)

	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("expected *RateLimitError, got %T", err)
	}
	if rle.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v, want 30s", rle.RetryAfter)
	}
}

func TestClassifyStatus_WPErrorEnvelope(t *testing.T) {
	body := []byte(`{"code":"rest_invalid_param","message":"Invalid parameter(s): status","data":{"status":400,"params":{"status":"status is not one of publish, draft."}}}`)

	c := newClassifier(nil)
	err := c.classifyStatus("POST wp/v2/posts", 400, body, 0)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if ve.Field != "status" {
		t.Errorf("Field = %q, want %q", ve.Field, "status")
	}
	if !strings.Contains(ve.Message, "Invalid parameter(s): status") {
		t.Errorf("message %q missing the site's explanation", ve.Message)
	}
	if !strings.Contains(ve.Message, "rest_invalid_param") {
		t.Errorf("message %q missing the error code", ve.Message)
	}
}

func TestClassifyStatus_ServerErrorUsesEnvelopeMessage(t *testing.T) {
	body := []byte(`{"code":"internal_server_error","message":"There has been a critical error on this website."}`)

	c := newClassifier(nil)
	err := c.classifyStatus("GET wp/v2/posts", 500, body, 0)

	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected *ServerError, got %T", err)
	}
	if !strings.Contains(se.Message, "critical error") {
		t.Errorf("message %q missing the envelope message", se.Message)
	}
}

func TestClassifyStatus_EmptyBodyFallsBackToStatusText(t *testing.T) {
	c := newClassifier(nil)
	err := c.classifyStatus("GET wp/v2/posts", 503, nil, 0)

	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected *ServerError, got %T", err)
	}
	if se.Message != "Service Unavailable" {
		t.Errorf("message = %q, want status text", se.Message)
	}
}

func TestClassifyStatus_TruncatesLongBodies(t *testing.T) {
	body := []byte("<html>" + strings.Repeat("x", 4096))

	c := newClassifier(nil)
	err := c.classifyStatus("GET wp/v2/posts", 500, body, 0)

	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected *ServerError, got %T", err)
	}
	if len(se.Message) > maxBodyExcerpt+16 {
		t.Errorf("message length %d, want truncated to roughly %d", len(se.Message), maxBodyExcerpt)
	}
	if !strings.HasSuffix(se.Message, "...") {
		t.Errorf("truncated message %q missing ellipsis", se.Message)
	}
}

func TestClassifyStatus_RedactsCredentials(t *testing.T) {
	body := []byte(`{"code":"login_failed","message":"rejected login with password=hunter2 for admin"}`)

	c := newClassifier(nil)
	err := c.classifyStatus("GET wp/v2/posts", 500, body, 0)

	msg := err.Error()
	if strings.Contains(msg, "hunter2") {
		t.Errorf("message %q leaked a credential", msg)
	}
	if !strings.Contains(msg, "password: ***") {
		t.Errorf("message %q missing the redaction marker", msg)
	}
}
