// Package auth owns the authentication session between one site client
// and one WordPress installation.
//
// # Methods
//
// Four schemes are supported, selected by Config.Method:
//
//   - app-password: HTTP Basic built from the username and a WordPress
//     application password. The recommended scheme.
//   - bearer-token: a token configured directly, or obtained by logging
//     in against the site's JWT token endpoint. Expiry from the login
//     response is tracked and an expired token is re-obtained on the
//     next Authenticate.
//   - basic: HTTP Basic from the account password. Logged as a warning
//     at construction; development use only.
//   - api-key: a static key in a configurable header.
//
// Every scheme is validated against the site with a probe request for
// the authenticated user's own record before the session is marked
// authenticated.
//
// # Session Lifecycle
//
// Sessions start unauthenticated, pass through authenticating while an
// attempt is in flight, and land in authenticated or failed:
//
//	a, err := auth.New(auth.Config{
//		Method:      auth.MethodAppPassword,
//		BaseURL:     "https://blog.example.com",
//		Username:    "admin",
//		AppPassword: "xxxx xxxx xxxx xxxx",
//	}, httpClient, logger)
//	if err != nil {
//		return err
//	}
//	ok, err := a.Authenticate(ctx)
//
// Authenticate distinguishes three outcomes: (true, nil) when the site
// accepted the credentials, (false, nil) when it rejected them, and a
// non-nil error for transport failures or misconfiguration.
//
// # Failure Handling
//
// When a request made with this session's headers comes back 401/403,
// the caller reports it with HandleAuthFailure. The session discards
// the rejected credentials and re-authenticates exactly once; if the
// retry also fails the session is terminal and every further call
// returns ErrSessionFailed until the credentials are reconfigured.
// Concurrent failure reports collapse into a single re-authentication.
package auth
