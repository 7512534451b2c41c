package auth

import "time"

// Method selects the authentication scheme for a site.
type Method string

const (
	// MethodAppPassword authenticates with a WordPress application
	// password sent as an HTTP Basic header.
	MethodAppPassword Method = "app-password"

	// MethodBearerToken authenticates with a bearer token, either
	// configured directly or obtained from the site's token endpoint.
	MethodBearerToken Method = "bearer-token"

	// MethodBasic authenticates with the account password. Intended
	// for local development only.
	MethodBasic Method = "basic"

	// MethodAPIKey authenticates with a static key in a configurable
	// header.
	MethodAPIKey Method = "api-key"
)

// State describes where a session is in its lifecycle.
type State string

const (
	// StateUnauthenticated is the initial state before any attempt.
	StateUnauthenticated State = "unauthenticated"

	// StateAuthenticating is set while an attempt is in flight.
	StateAuthenticating State = "authenticating"

	// StateAuthenticated means the site accepted the credentials.
	StateAuthenticated State = "authenticated"

	// StateFailed means the most recent attempt did not succeed.
	StateFailed State = "failed"
)

// Config describes the credentials for one site session. Method selects
// the scheme; the remaining fields are read per method.
type Config struct {
	// Method is the authentication scheme.
	Method Method

	// BaseURL is the site root without the /wp-json suffix.
	BaseURL string

	// Username is the WordPress account name (app-password, basic, and
	// the bearer-token login call).
	Username string

	// AppPassword is the application password (app-password method).
	AppPassword string

	// Password is the account password (basic method and the
	// bearer-token login call).
	Password string

	// Token is a pre-issued bearer token. When set, no login call is
	// made.
	Token string

	// TokenURL is the endpoint used to obtain a bearer token.
	// Default: "<BaseURL>/wp-json/jwt-auth/v1/token"
	TokenURL string

	// APIKey is the pre-shared key for the api-key method.
	APIKey string

	// HeaderName is the request header carrying APIKey.
	// Default: "X-API-Key"
	HeaderName string
}

// Status is a read-only snapshot of a session.
type Status struct {
	// Method is the configured authentication scheme.
	Method Method `json:"method"`

	// State is the session's current lifecycle state.
	State State `json:"state"`

	// IsAuthenticated reports whether the session currently holds
	// accepted, unexpired credentials.
	IsAuthenticated bool `json:"is_authenticated"`

	// LastAuthAttempt is when the most recent attempt started. Zero
	// when no attempt has been made.
	LastAuthAttempt time.Time `json:"last_auth_attempt"`

	// LastError describes the most recent failure, empty when the
	// session is healthy. Never contains credential material.
	LastError string `json:"last_error,omitempty"`
}
