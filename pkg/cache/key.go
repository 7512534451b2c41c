package cache

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Canonical builds the normalized request description a cache key is
// hashed from: METHOD|endpoint|sorted params|siteID. Sorting the
// parameters makes the description independent of map iteration order,
// so identical requests always share one entry.
func Canonical(method, endpoint string, params map[string]string, siteID string) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte('|')
	b.WriteString(strings.TrimPrefix(strings.TrimSpace(endpoint), "/"))
	b.WriteByte('|')

	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for i, k := range keys {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(params[k])
		}
	}

	b.WriteByte('|')
	b.WriteString(siteID)
	return b.String()
}

// Key hashes a canonical request description into a compact cache key:
// FNV-1a over the canonical string, base36-encoded.
//
// A 32-bit non-cryptographic hash trades a small, bounded collision
// probability for speed. A false hit serves slightly stale public
// content at worst, and the TTL bounds how long that can last.
func Key(method, endpoint string, params map[string]string, siteID string) string {
	return HashCanonical(Canonical(method, endpoint, params, siteID))
}

// HashCanonical hashes an already-built canonical description.
func HashCanonical(canonical string) string {
	h := fnv.New32a()
	h.Write([]byte(canonical))
	return strconv.FormatUint(uint64(h.Sum32()), 36)
}
