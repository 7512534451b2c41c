package auth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"presshq/pressgate/pkg/wordpress"
)

// attemptResult is the outcome of one authentication attempt. ok means
// the site accepted the credentials; err is reserved for transport
// failures and misconfiguration.
type attemptResult struct {
	headers map[string]string
	token   string
	expiry  time.Time
	ok      bool
	err     error
}

// attempt runs the configured strategy. It performs network I/O and
// must be called without holding the session mutex; the cached bearer
// token is passed in so the attempt never reads shared state.
func (a *Authenticator) attempt(ctx context.Context, cachedToken string, cachedExpiry time.Time) attemptResult {
	switch a.config.Method {
	case MethodAppPassword:
		return a.probeWith(ctx, basicHeader(a.config.Username, a.config.AppPassword))
	case MethodBasic:
		return a.probeWith(ctx, basicHeader(a.config.Username, a.config.Password))
	case MethodAPIKey:
		name := a.config.HeaderName
		if name == "" {
			name = defaultAPIKeyHeader
		}
		return a.probeWith(ctx, map[string]string{name: a.config.APIKey})
	case MethodBearerToken:
		return a.bearerAttempt(ctx, cachedToken, cachedExpiry)
	default:
		return attemptResult{err: fmt.Errorf("unsupported auth method %q", a.config.Method)}
	}
}

// bearerAttempt ensures a usable token, obtaining a fresh one from the
// login endpoint when none is cached or the cached one expired, then
// validates it with the probe.
func (a *Authenticator) bearerAttempt(ctx context.Context, token string, expiry time.Time) attemptResult {
	switch {
	case a.config.Token != "":
		token, expiry = a.config.Token, time.Time{}
	case token == "" || (!expiry.IsZero() && time.Now().After(expiry)):
		fresh, freshExpiry, ok, err := a.obtainToken(ctx)
		if err != nil || !ok {
			return attemptResult{ok: ok, err: err}
		}
		token, expiry = fresh, freshExpiry
	}

	res := a.probeWith(ctx, map[string]string{"Authorization": "Bearer " + token})
	res.token, res.expiry = token, expiry
	return res
}

// tokenRequest is the login payload for the JWT Authentication plugin.
type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// tokenResponse is the login reply. expires_in is optional; tokens
// without it are treated as valid until the site rejects them.
type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// obtainToken logs in against the token endpoint. ok is false when the
// site rejected the username/password pair.
func (a *Authenticator) obtainToken(ctx context.Context) (string, time.Time, bool, error) {
	body, err := json.Marshal(tokenRequest{
		Username: a.config.Username,
		Password: a.config.Password,
	})
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL(), bytes.NewReader(body))
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return "", time.Time{}, false, nil
	default:
		io.Copy(io.Discard, resp.Body)
		return "", time.Time{}, false, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", time.Time{}, false, fmt.Errorf("decode token response: %w", err)
	}
	if tr.Token == "" {
		return "", time.Time{}, false, errors.New("token response missing token")
	}

	var expiry time.Time
	if tr.ExpiresIn > 0 {
		expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return tr.Token, expiry, true, nil
}

func (a *Authenticator) tokenURL() string {
	if a.config.TokenURL != "" {
		return a.config.TokenURL
	}
	return a.config.BaseURL + "/wp-json/" + defaultTokenRoute
}

// probeWith validates a header set against the site and folds the
// outcome into an attemptResult.
func (a *Authenticator) probeWith(ctx context.Context, headers map[string]string) attemptResult {
	ok, err := a.probe(ctx, headers)
	if err != nil {
		return attemptResult{err: err}
	}
	if !ok {
		return attemptResult{}
	}
	return attemptResult{headers: headers, ok: true}
}

// probe issues an authenticated request for the calling user's own
// record. Any 2xx proves the credentials work; 401/403 means they were
// rejected.
func (a *Authenticator) probe(ctx context.Context, headers map[string]string) (bool, error) {
	url := a.config.BaseURL + "/wp-json/" + wordpress.Me()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("build probe request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("credential probe: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("credential probe returned status %d", resp.StatusCode)
	}
}

func basicHeader(username, secret string) map[string]string {
	cred := base64.StdEncoding.EncodeToString([]byte(username + ":" + secret))
	return map[string]string{"Authorization": "Basic " + cred}
}
