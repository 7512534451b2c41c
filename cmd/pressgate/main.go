// Pressgate is an MCP server for managing WordPress sites over the REST API.
//
// It speaks the Model Context Protocol on stdin/stdout, exposing WordPress
// content, media, user, comment, and taxonomy operations as tools backed by
// a resilient site client:
//   - Per-site authentication (application passwords, bearer tokens, API keys)
//   - Automatic retries with exponential backoff and Retry-After support
//   - Per-site rate limiting
//   - TTL-based response caching with an optional persistent disk layer
//
// Usage:
//
//	# Start the MCP server with the default configuration
//	pressgate serve
//
//	# Start with a custom configuration file
//	pressgate serve --config /etc/pressgate/config.yaml
//
//	# Check a configuration file without starting the server
//	pressgate validate
//
//	# List configured sites and probe their connectivity
//	pressgate sites list
//	pressgate sites test
//
//	# Inspect or manage the response cache
//	pressgate cache stats
//	pressgate cache warm endpoints.txt --site blog
//
//	# Show version information
//	pressgate version
//
// For complete documentation, see: https://github.com/presshq/pressgate
package main

func main() {
	Execute()
}
