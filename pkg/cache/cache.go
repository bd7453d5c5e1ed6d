// Package cache provides byte-level caching for computed artifacts, most
// importantly greedy elimination orders, which can be expensive to
// recompute for large problems.
//
// Three backends implement the same interface:
//   - [FileCache]: files under a directory, for CLI usage
//   - [RedisCache]: Redis, for server deployments
//   - [NullCache]: a no-op, for tests and disabled caching
//
// Keys for elimination orders are derived from a SHA-256 hash of the
// problem's scopes and the ordering parameters, so any change to the
// problem or the options misses cleanly.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores opaque byte values under string keys with optional TTLs.
type Cache interface {
	// Get retrieves a value. The second result reports whether the key
	// was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// OrderKey derives the cache key for a greedy elimination order from the
// problem structure (scopes and domain sizes) and the ordering parameters.
// Values do not enter the key; the order depends only on the graph.
func OrderKey(scopes [][]int, domSizes [][]int, maxComplexity float64, heuristic string, selectionScale float64, seed int64) string {
	return hashKey("order", scopes, domSizes, maxComplexity, heuristic, selectionScale, seed)
}
