package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a TTL store for resolved query fragments. Entries expire on their
// own; there is no invalidation.
type Cache interface {
	Get(key string) (string, bool)
	Set(key string, value string, ttl time.Duration)
}

// CacheKey derives the cache key for a raw concept string
func CacheKey(concept string) string {
	hash := sha256.Sum256([]byte(concept))
	return "querysmith:mesh:v1:" + hex.EncodeToString(hash[:])
}
