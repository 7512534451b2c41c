package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotAuthenticated is returned by Headers when the session does
	// not currently hold accepted credentials.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionFailed is returned once the session's re-authentication
	// budget is exhausted. The credentials must be reconfigured before
	// the session can be used again.
	ErrSessionFailed = errors.New("authentication session failed, credentials must be reconfigured")
)

// errCredentialsRejected marks an attempt the site answered with
// 401/403. Callers report it as (false, nil), not as an error.
var errCredentialsRejected = errors.New("credentials rejected by site")

const (
	defaultAPIKeyHeader = "X-API-Key"
	defaultTokenRoute   = "jwt-auth/v1/token"
	defaultTimeout      = 30 * time.Second

	// maxConsecutiveFailures is the number of consecutive credential
	// rejections after which the session stops contacting the site.
	maxConsecutiveFailures = 2
)

// Authenticator owns one authentication session for one site.
//
// Sessions move UNAUTHENTICATED -> AUTHENTICATING -> AUTHENTICATED or
// FAILED. A rejection leaves one retry in the budget; a second
// consecutive rejection is terminal until the credentials change, so a
// misconfigured site does not hammer the login endpoint on every tool
// call. Transport failures do not consume the budget.
//
// All state is mutex-protected and at most one attempt is in flight at
// a time; concurrent callers adopt the in-flight attempt's outcome.
type Authenticator struct {
	config Config
	client *http.Client
	logger *slog.Logger

	mu          sync.Mutex
	state       State
	headers     map[string]string
	lastAttempt time.Time
	lastError   error
	failures    int

	// bearerToken and tokenExpiry cache the token obtained from the
	// login endpoint. Unused for other methods.
	bearerToken string
	tokenExpiry time.Time

	// inflight is non-nil while an attempt is running; it is closed
	// when the attempt completes.
	inflight chan struct{}
}

// New creates an authenticator for the given credentials. The HTTP
// client is shared with the owning site client; nil falls back to a
// default client.
func New(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Authenticator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Method == MethodBasic {
		logger.Warn("basic auth sends the account password on every request, use an application password in production")
	}

	return &Authenticator{
		config: cfg,
		client: httpClient,
		logger: logger,
		state:  StateUnauthenticated,
	}, nil
}

// validateConfig checks that the fields the selected method needs are
// present.
func validateConfig(cfg Config) error {
	if cfg.BaseURL == "" {
		return errors.New("auth config missing base URL")
	}

	switch cfg.Method {
	case MethodAppPassword:
		if cfg.Username == "" || cfg.AppPassword == "" {
			return fmt.Errorf("auth method %q requires username and app_password", cfg.Method)
		}
	case MethodBearerToken:
		if cfg.Token == "" && (cfg.Username == "" || cfg.Password == "") {
			return fmt.Errorf("auth method %q requires a token or username and password", cfg.Method)
		}
	case MethodBasic:
		if cfg.Username == "" || cfg.Password == "" {
			return fmt.Errorf("auth method %q requires username and password", cfg.Method)
		}
	case MethodAPIKey:
		if cfg.APIKey == "" {
			return fmt.Errorf("auth method %q requires api_key", cfg.Method)
		}
	default:
		return fmt.Errorf("unsupported auth method %q", cfg.Method)
	}
	return nil
}

// Authenticate validates the configured credentials against the site,
// obtaining a bearer token first when the method calls for one.
//
// It returns (true, nil) when the site accepted the credentials,
// (false, nil) when the site rejected them, and (false, err) for
// transport failures, misconfiguration, or an exhausted session. An
// already-authenticated session returns immediately.
func (a *Authenticator) Authenticate(ctx context.Context) (bool, error) {
	a.mu.Lock()
	now := time.Now()

	if a.authenticatedLocked(now) {
		a.mu.Unlock()
		return true, nil
	}
	if a.failures >= maxConsecutiveFailures {
		a.mu.Unlock()
		return false, ErrSessionFailed
	}
	if a.inflight != nil {
		return a.waitInflight(ctx)
	}

	done := make(chan struct{})
	a.inflight = done
	a.state = StateAuthenticating
	a.lastAttempt = now
	token, expiry := a.bearerToken, a.tokenExpiry
	a.mu.Unlock()

	res := a.attempt(ctx, token, expiry)

	a.mu.Lock()
	a.applyResultLocked(res)
	a.inflight = nil
	close(done)
	a.mu.Unlock()

	if res.err != nil {
		return false, res.err
	}
	return res.ok, nil
}

// HandleAuthFailure reacts to a 401/403 the site returned for a request
// made with this session's headers. It discards the rejected
// credentials and attempts exactly one re-authentication; if that also
// fails the session is terminal and ErrSessionFailed is returned.
// Concurrent failures collapse into a single re-authentication.
func (a *Authenticator) HandleAuthFailure(ctx context.Context, cause error) error {
	a.mu.Lock()
	if a.failures >= maxConsecutiveFailures {
		a.mu.Unlock()
		return ErrSessionFailed
	}
	if a.inflight != nil {
		ok, err := a.waitInflight(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSessionFailed
		}
		return nil
	}

	// The rejected request is itself evidence the current credentials
	// no longer work.
	a.failures++
	a.headers = nil
	if a.config.Method == MethodBearerToken && a.config.Token == "" {
		a.bearerToken = ""
		a.tokenExpiry = time.Time{}
	}

	done := make(chan struct{})
	a.inflight = done
	a.state = StateAuthenticating
	a.lastAttempt = time.Now()
	token, expiry := a.bearerToken, a.tokenExpiry
	a.mu.Unlock()

	a.logger.Warn("authentication failure reported, re-authenticating",
		"method", a.config.Method,
		"cause", cause,
	)

	res := a.attempt(ctx, token, expiry)

	a.mu.Lock()
	a.applyResultLocked(res)
	a.inflight = nil
	close(done)
	a.mu.Unlock()

	if res.err != nil {
		return res.err
	}
	if !res.ok {
		return ErrSessionFailed
	}
	return nil
}

// Headers returns a copy of the current authentication headers. It
// fails with ErrNotAuthenticated when the session is not authenticated
// or its token has expired.
func (a *Authenticator) Headers() (map[string]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.authenticatedLocked(time.Now()) {
		return nil, ErrNotAuthenticated
	}

	out := make(map[string]string, len(a.headers))
	for k, v := range a.headers {
		out[k] = v
	}
	return out, nil
}

// IsAuthenticated reports whether the session holds accepted,
// unexpired credentials.
func (a *Authenticator) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authenticatedLocked(time.Now())
}

// Status returns a read-only snapshot of the session.
func (a *Authenticator) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Status{
		Method:          a.config.Method,
		State:           a.state,
		IsAuthenticated: a.authenticatedLocked(time.Now()),
		LastAuthAttempt: a.lastAttempt,
	}
	if a.lastError != nil {
		s.LastError = a.lastError.Error()
	}
	return s
}

// authenticatedLocked reports whether the session is usable right now.
// Caller must hold a.mu.
func (a *Authenticator) authenticatedLocked(now time.Time) bool {
	if a.state != StateAuthenticated {
		return false
	}
	if a.config.Method == MethodBearerToken && !a.tokenExpiry.IsZero() && now.After(a.tokenExpiry) {
		return false
	}
	return true
}

// applyResultLocked folds a completed attempt into the session state.
// Caller must hold a.mu.
func (a *Authenticator) applyResultLocked(res attemptResult) {
	switch {
	case res.err != nil:
		a.state = StateFailed
		a.lastError = res.err
		a.headers = nil
	case !res.ok:
		a.state = StateFailed
		a.failures++
		a.lastError = errCredentialsRejected
		a.headers = nil
	default:
		a.state = StateAuthenticated
		a.failures = 0
		a.lastError = nil
		a.headers = res.headers
		a.bearerToken = res.token
		a.tokenExpiry = res.expiry
	}
}

// waitInflight blocks until the in-flight attempt completes and adopts
// its outcome. Called with a.mu held; returns with it released.
func (a *Authenticator) waitInflight(ctx context.Context) (bool, error) {
	done := a.inflight
	a.mu.Unlock()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-done:
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateAuthenticated {
		return true, nil
	}
	if errors.Is(a.lastError, errCredentialsRejected) {
		return false, nil
	}
	if a.lastError != nil {
		return false, a.lastError
	}
	return false, ErrNotAuthenticated
}
