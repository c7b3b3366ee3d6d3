package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Cache stores normalized text keyed by raw text plus normalization settings.
// The pairwise cross product normalizes the same card text once per
// comparison, so memoization turns O(n*m) normalizations into O(n+m).
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Flush()
}

// Key builds a cache key from the normalization-relevant parts.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return "ankidiff:v1:" + hex.EncodeToString(hash[:])
}
