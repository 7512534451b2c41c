// Package cache provides the layered response cache: an in-memory
// store for speed and an optional SQLite-backed disk store for
// persistence across restarts.
//
// # Keys
//
// Cache keys are derived from the request, not assigned: the method,
// endpoint, sorted query parameters, and site ID are normalized into a
// canonical description and hashed (FNV-1a, base36). Two requests for
// the same thing always share one entry, and entries from different
// sites never collide by construction because the site ID is part of
// the hashed material.
//
//	key := cache.Key("GET", "wp/v2/posts", params, "prod")
//
// # Layering
//
// Reads check memory first, then disk. A disk hit is promoted into
// memory with its remaining TTL. Writes and invalidations apply to
// both layers. If the disk store cannot be opened the manager logs a
// warning and continues memory-only.
//
// # Expiry and Eviction
//
// Every entry carries an expiry; expired entries are removed on read,
// by the memory layer's background sweep, and by the cron-scheduled
// disk prune. The memory layer additionally evicts the least recently
// accessed entry when it reaches capacity.
//
// # Invalidation
//
// After a successful write request the client invalidates every entry
// sharing the written resource's site and resource type, so stale list
// or detail reads are never served:
//
//	manager.Invalidate(ctx, "prod", "posts")
//
// # Management
//
// Stats, Info, and Clear back the cache administration tools; they are
// not on the request hot path.
package cache
