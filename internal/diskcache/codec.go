package diskcache

import (
	"encoding/json"
	"time"

	"github.com/repvault/repvault/internal/contract"
)

// GetJSON reads the entry for key and decodes it into T. A payload that
// no longer decodes into T is treated like any other corrupt entry:
// miss, plus best-effort deletion.
func GetJSON[T any](c contract.Cache, key string) (T, bool) {
	var v T
	raw, ok := c.Get(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		c.Invalidate(key)
		var zero T
		return zero, false
	}
	return v, true
}

// SetJSON encodes v and stores it under key with the given TTL.
func SetJSON[T any](c contract.Cache, key string, v T, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		// Deliberately discarded: an unencodable value is a no-op write.
		return
	}
	c.Set(key, raw, ttl)
}
