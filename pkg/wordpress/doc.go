// Package wordpress describes the WordPress REST API surface the
// client talks to: route builders, request validation, resource
// categorization for cache scoping, and argument coercion for tool
// handlers.
//
// # Routes
//
// Builders return routes relative to a site's wp-json root:
//
//	wordpress.Posts()       // "wp/v2/posts"
//	wordpress.Post(42)      // "wp/v2/posts/42"
//	wordpress.Me()          // "wp/v2/users/me"
//
// ResourceTypeFor maps any route back to the ResourceType used to
// scope cache invalidation, and each ResourceType carries a TTL class
// reflecting how quickly that kind of content goes stale.
//
// # Validation
//
// ValidateRequest rejects malformed requests before any cache or
// network activity: unknown HTTP methods, absolute URLs, path
// traversal, and inline query strings. Failures are *FieldError values
// naming the offending field.
//
// The argument helpers (RequireID, OptionalPerPage, OptionalEnum, ...)
// extract and coerce values from the map[string]any that JSON-decoded
// tool arguments arrive in. JSON numbers decode as float64, so integer
// identifiers are coerced from float64 and string forms; anything else
// fails with a FieldError.
package wordpress
