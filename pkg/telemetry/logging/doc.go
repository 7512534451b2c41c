// Package logging provides structured logging with credential redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON and text formats
//   - Automatic credential redaction (application passwords, tokens,
//     Authorization headers, URL-embedded credentials)
//   - Context-aware logging with request, site, and tool fields
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Redact: true,
//	})
//	if err != nil {
//	    // handle error
//	}
//
//	logger.Info("Request completed",
//	    "site", "prod",
//	    "status", 200,
//	)
//
// # Output Stream
//
// Logs go to stderr by default. Stdout belongs to the MCP protocol stream,
// and a single stray log line there corrupts the session. Pass an explicit
// Writer only when you know the output is not shared with the protocol.
//
// # Redaction
//
// When Redact is enabled, every logged field passes through the Redactor.
// Values under sensitive keys (password, token, authorization, ...) are
// blanked to a short prefix; other string values are scrubbed by the
// built-in patterns plus any custom patterns from the configuration. The
// same Redactor sanitizes client error messages, so credentials never
// reach tool output either.
//
// # Context Fields
//
//	ctx = logging.WithRequestID(ctx, requestID)
//	ctx = logging.WithSite(ctx, siteID)
//	logger.InfoContext(ctx, "Request started") // carries request_id, site
package logging
