package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"presshq/pressgate/pkg/cache"
	"presshq/pressgate/pkg/client/auth"
	"presshq/pressgate/pkg/telemetry/logging"
	"presshq/pressgate/pkg/telemetry/tracing"
	"presshq/pressgate/pkg/wordpress"
)

// RequestOptions tunes a single request.
type RequestOptions struct {
	// Params are query parameters. They are passed separately from the
	// endpoint so they can be sorted into the cache key.
	Params map[string]string

	// SkipCache bypasses the cache lookup for a GET. The fresh
	// response is still stored, which is what cache warming relies on.
	SkipCache bool
}

// Request outcomes, recorded per call.
const (
	outcomeSuccess  = "success"
	outcomeError    = "error"
	outcomeCacheHit = "cache_hit"
	outcomeRejected = "rejected"
)

// maxRetryAfter caps how long a Retry-After header is believed.
const maxRetryAfter = time.Hour

// Request runs one call through the full pipeline: validation, cache
// lookup, admission control, lazy authentication, the HTTP exchange
// with retries, and error classification. The returned payload is the
// raw JSON response body; empty bodies come back as JSON null.
//
// Request stats and metrics are updated on every call, cache hits and
// rejections included.
func (c *Client) Request(ctx context.Context, method, endpoint string, data any, opts *RequestOptions) (json.RawMessage, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	start := time.Now()
	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)

	var span trace.Span
	if c.tracer != nil && c.tracer.Enabled() {
		ctx, span = c.tracer.Start(ctx, "wordpress.request",
			trace.WithAttributes(tracing.RequestAttributes(c.profile.ID, method, endpoint)...))
		tracing.SetRequestID(span, requestID)
		defer span.End()
	}

	payload, outcome, err := c.do(ctx, span, method, endpoint, data, opts, requestID)

	elapsed := time.Since(start)
	c.stats.record(err == nil, elapsed)
	c.metrics.RecordRequest(c.profile.ID, method, outcome, elapsed)

	if err != nil {
		kind := string(KindOf(err))
		c.metrics.RecordError(c.profile.ID, kind)
		if span != nil {
			tracing.SetErrorKind(span, kind)
			tracing.SetError(span, err)
		}
		c.logger.WarnContext(ctx, "request failed",
			"method", method,
			"endpoint", endpoint,
			"kind", kind,
			"duration", elapsed,
			"error", err.Error(),
		)
		return nil, err
	}

	if outcome == outcomeSuccess {
		c.metrics.RecordResponseSize(c.profile.ID, len(payload))
	}
	c.logger.DebugContext(ctx, "request completed",
		"method", method,
		"endpoint", endpoint,
		"outcome", outcome,
		"duration", elapsed,
		"bytes", len(payload),
	)
	return payload, nil
}

// do runs the pre-network stages and hands off to execute. It returns
// the outcome label recorded for the call.
func (c *Client) do(ctx context.Context, span trace.Span, method, endpoint string, data any, opts *RequestOptions, requestID string) (json.RawMessage, string, error) {
	operation := method + " " + endpoint

	// Validation runs before any cache or network work; nothing that
	// fails here is ever retried.
	if err := wordpress.ValidateRequest(method, endpoint, opts.Params); err != nil {
		var fieldErr *wordpress.FieldError
		if errors.As(err, &fieldErr) {
			return nil, outcomeError, &ValidationError{
				Operation: operation,
				Field:     fieldErr.Field,
				Message:   fieldErr.Message,
				Cause:     err,
			}
		}
		return nil, outcomeError, &ValidationError{Operation: operation, Message: err.Error(), Cause: err}
	}

	endpoint = wordpress.NormalizeEndpoint(endpoint)
	operation = method + " " + endpoint
	resource := wordpress.ResourceTypeFor(endpoint)
	isRead := method == http.MethodGet

	var cacheKey, canonical string
	if c.cache != nil && isRead {
		canonical = cache.Canonical(method, endpoint, opts.Params, c.profile.ID)
		cacheKey = cache.HashCanonical(canonical)

		if !opts.SkipCache {
			if value, layer, ok := c.cache.Get(ctx, cacheKey); ok {
				if span != nil {
					tracing.SetCacheHit(span, true, layer)
				}
				c.logger.DebugContext(ctx, "cache hit",
					"method", method, "endpoint", endpoint, "layer", layer)
				return json.RawMessage(value), outcomeCacheHit, nil
			}
			if span != nil {
				tracing.SetCacheHit(span, false, "")
			}
		}
	}

	// Admission control runs after the cache lookup so hits stay free.
	if c.limiter != nil {
		waitStart := time.Now()
		result, err := c.limiter.Acquire(ctx, c.profile.ID)
		if err != nil {
			return nil, outcomeError, c.classify.classify(err, operation)
		}
		if waited := time.Since(waitStart); waited > time.Millisecond {
			c.metrics.RecordRateLimitQueued(c.profile.ID)
			c.metrics.ObserveRateLimitWait(c.profile.ID, waited)
		}
		c.metrics.UpdateRateLimitRemaining(c.profile.ID, result.Remaining)
		if !result.Allowed {
			c.metrics.RecordRateLimitRejected(c.profile.ID)
			return nil, outcomeRejected, &RateLimitError{
				Operation:  operation,
				Message:    "request budget for the site is exhausted",
				RetryAfter: result.RetryAfter,
				Limit:      result.Limit,
			}
		}
	}

	body, err := encodeBody(data)
	if err != nil {
		return nil, outcomeError, &ValidationError{
			Operation: operation,
			Field:     "data",
			Message:   "request body is not JSON-encodable",
			Cause:     err,
		}
	}

	payload, err := c.execute(ctx, span, method, endpoint, operation, body, opts.Params, requestID)
	if err != nil {
		return nil, outcomeError, err
	}

	if c.cache != nil {
		if isRead {
			c.cache.Set(ctx, &cache.Entry{
				Key:          cacheKey,
				Canonical:    canonical,
				Value:        payload,
				SiteID:       c.profile.ID,
				ResourceType: string(resource),
			}, c.ttlFor(resource))
		} else if removed := c.cache.Invalidate(ctx, c.profile.ID, string(resource)); removed > 0 {
			c.logger.DebugContext(ctx, "cache invalidated",
				"resource", string(resource), "entries", removed)
		}
	}

	return payload, outcomeSuccess, nil
}

// httpResult is one attempt's reply, body fully read.
type httpResult struct {
	status int
	header http.Header
	body   []byte
}

// execute drives the attempt loop: authenticate, send, classify, and
// either return or retry. A 401/403 mid-session triggers one
// re-authentication and one replay without consuming the retry budget;
// a second auth failure is final.
func (c *Client) execute(ctx context.Context, span trace.Span, method, endpoint, operation string, body []byte, params map[string]string, requestID string) (json.RawMessage, error) {
	reqURL := c.requestURL(endpoint, params)

	retries := 0
	replayedAuth := false

	for {
		if err := c.ensureAuth(ctx, span); err != nil {
			return nil, err
		}

		res, err := c.send(ctx, method, reqURL, operation, body, requestID)
		if err != nil {
			classified := c.classify.classify(err, operation)
			if !c.shouldRetry(ctx, classified, retries) {
				return nil, classified
			}
			retries++
			c.noteRetry(ctx, span, method, endpoint, retries, classified)
			if err := c.backoff(ctx, retries, 0); err != nil {
				return nil, classified
			}
			continue
		}

		switch {
		case res.status >= 200 && res.status < 300:
			if len(res.body) == 0 {
				// DELETE and some plugin routes reply with an empty
				// body; normalize so callers always get valid JSON.
				return json.RawMessage("null"), nil
			}
			return json.RawMessage(res.body), nil

		case res.status == http.StatusUnauthorized || res.status == http.StatusForbidden:
			cause := c.classify.classifyStatus(operation, res.status, res.body, 0)
			if replayedAuth {
				return nil, cause
			}
			replayedAuth = true
			if err := c.reauthenticate(ctx, operation, cause); err != nil {
				return nil, err
			}
			// The replay does not consume the retry budget: a refreshed
			// session gets exactly one more shot.
			continue

		default:
			retryAfter := parseRetryAfter(res.header.Get("Retry-After"))
			classified := c.classify.classifyStatus(operation, res.status, res.body, retryAfter)
			if !c.shouldRetry(ctx, classified, retries) {
				return nil, classified
			}
			retries++
			c.noteRetry(ctx, span, method, endpoint, retries, classified)
			if err := c.backoff(ctx, retries, retryAfter); err != nil {
				return nil, classified
			}
		}
	}
}

// send runs one HTTP attempt, bounded by the profile timeout.
func (c *Client) send(ctx context.Context, method, reqURL, operation string, body []byte, requestID string) (*httpResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.profile.Timeout)
	defer cancel()

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, reqURL, reader)
	if err != nil {
		return nil, err
	}

	// Credentials are re-read per attempt so a replay after
	// re-authentication picks up the fresh session.
	headers, err := c.auth.Headers()
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if c.tracer != nil && c.tracer.Enabled() {
		tracing.Inject(attemptCtx, req.Header)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(payload)) > c.maxResponseBytes {
		return nil, &UnknownError{
			Operation: operation,
			Message:   fmt.Sprintf("response exceeded the %d byte limit", c.maxResponseBytes),
		}
	}

	return &httpResult{status: resp.StatusCode, header: resp.Header, body: payload}, nil
}

// ensureAuth establishes the session if none is held. The fast path
// for an already-authenticated client takes one mutex acquisition.
func (c *Client) ensureAuth(ctx context.Context, span trace.Span) error {
	held := c.auth.IsAuthenticated()

	ok, err := c.auth.Authenticate(ctx)
	if err != nil {
		c.metrics.UpdateAuthSession(c.profile.ID, false)
		return c.classify.classify(err, "authenticate")
	}
	if !ok {
		c.metrics.RecordAuthRefresh(c.profile.ID, "rejected")
		c.metrics.UpdateAuthSession(c.profile.ID, false)
		return &AuthenticationError{
			Operation: "authenticate",
			Message:   "site rejected the configured credentials",
		}
	}

	if !held {
		c.metrics.RecordAuthRefresh(c.profile.ID, "success")
	}
	c.metrics.UpdateAuthSession(c.profile.ID, true)
	if span != nil {
		tracing.SetAuthMethod(span, string(c.profile.Auth.Method))
	}
	return nil
}

// reauthenticate refreshes the session after a mid-request 401/403.
// cause is the classified rejection that triggered it.
func (c *Client) reauthenticate(ctx context.Context, operation string, cause error) error {
	c.logger.WarnContext(ctx, "session rejected mid-request, re-authenticating",
		"operation", operation)

	err := c.auth.HandleAuthFailure(ctx, cause)
	if err == nil {
		c.metrics.RecordAuthRefresh(c.profile.ID, "success")
		c.metrics.UpdateAuthSession(c.profile.ID, true)
		return nil
	}

	c.metrics.UpdateAuthSession(c.profile.ID, false)
	if errors.Is(err, auth.ErrSessionFailed) {
		c.metrics.RecordAuthRefresh(c.profile.ID, "rejected")
	} else {
		c.metrics.RecordAuthRefresh(c.profile.ID, "error")
	}
	return c.classify.classify(err, operation)
}

// shouldRetry decides whether a failed attempt gets another one.
func (c *Client) shouldRetry(ctx context.Context, err error, retries int) bool {
	if retries >= c.profile.MaxRetries {
		return false
	}
	if ctx.Err() != nil {
		return false
	}
	return IsRetryable(err)
}

// noteRetry records one retry in metrics, tracing and logs.
func (c *Client) noteRetry(ctx context.Context, span trace.Span, method, endpoint string, retries int, cause error) {
	c.metrics.RecordRetry(c.profile.ID, method)
	if span != nil {
		tracing.SetRetryCount(span, retries)
	}
	c.logger.DebugContext(ctx, "retrying request",
		"method", method,
		"endpoint", endpoint,
		"attempt", retries,
		"cause", string(KindOf(cause)),
	)
}

// backoff sleeps before retry attempt number attempt, honoring the
// context.
func (c *Client) backoff(ctx context.Context, attempt int, retryAfter time.Duration) error {
	delay := c.retryDelay(attempt, retryAfter)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryDelay computes the wait before a retry: the server-suggested
// wait when one was given, otherwise exponential backoff with jitter.
// Either way the policy's MaxDelay is the ceiling.
func (c *Client) retryDelay(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return min(retryAfter, c.retry.MaxDelay)
	}

	// The shift overflows long before an attempt counter plausibly
	// gets here; saturate instead.
	if attempt > 30 {
		return c.retry.MaxDelay
	}

	delay := c.retry.BaseDelay << uint(attempt-1)
	if delay <= 0 || delay > c.retry.MaxDelay {
		delay = c.retry.MaxDelay
	}
	if c.retry.Jitter > 0 {
		delay += time.Duration(float64(delay) * c.retry.Jitter * rand.Float64())
		if delay > c.retry.MaxDelay {
			delay = c.retry.MaxDelay
		}
	}
	return delay
}

// requestURL assembles the absolute URL for a REST route. Query
// parameters are encoded in sorted order, matching the canonical form
// the cache key was built from.
func (c *Client) requestURL(endpoint string, params map[string]string) string {
	u := c.profile.BaseURL + "/wp-json/" + endpoint
	if len(params) == 0 {
		return u
	}
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return u + "?" + q.Encode()
}

// ttlFor selects the cache lifetime for a resource: the site's fixed
// override when configured, the resource-class policy otherwise.
func (c *Client) ttlFor(resource wordpress.ResourceType) time.Duration {
	if c.profile.CacheTTL > 0 {
		return c.profile.CacheTTL
	}
	switch resource.Class() {
	case wordpress.TTLStatic:
		return c.ttl.Static
	case wordpress.TTLSemiStatic:
		return c.ttl.SemiStatic
	default:
		return c.ttl.Dynamic
	}
}

func encodeBody(data any) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	return json.Marshal(data)
}

// parseRetryAfter reads a Retry-After header: either delay seconds or
// an HTTP-date. Waits are capped at an hour; anything unparseable
// counts as absent.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return min(time.Duration(secs)*time.Second, maxRetryAfter)
	}

	if t, err := http.ParseTime(value); err == nil {
		d := time.Until(t)
		if d <= 0 {
			return 0
		}
		return min(d, maxRetryAfter)
	}

	return 0
}

// drain discards a response body so the connection can be reused.
func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 256<<10))
}
