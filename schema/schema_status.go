package schema

import "time"

// CacheStatus represents the status of the disk cache.
type CacheStatus struct {
	Directory       string    `json:"directory"`
	TotalEntries    int       `json:"total_entries"`
	TotalSizeBytes  int64     `json:"total_size_bytes"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
}

// SessionStoreStatus represents the status of the session snapshot store.
type SessionStoreStatus struct {
	Backend      string    `json:"backend"`
	Connected    bool      `json:"connected"`
	HasSnapshot  bool      `json:"has_snapshot"`
	SavedAt      time.Time `json:"saved_at"`
	TotalHistory int       `json:"total_history"`
}

// CacheEntryInfo describes one cache entry for diagnostics. The key is
// the sanitized on-disk token, which is all the cache retains.
type CacheEntryInfo struct {
	Key       string        `json:"key"`
	StoredAt  time.Time     `json:"stored_at"`
	TTL       time.Duration `json:"ttl"`
	SizeBytes int64         `json:"size_bytes"`
	AgeRatio  float64       `json:"age_ratio"` // fraction of TTL elapsed (0 fresh, >=1 expired)
}

// LimiterStatus represents a point-in-time probe of the rate limiter.
type LimiterStatus struct {
	MaxRequests int           `json:"max_requests"`
	Window      time.Duration `json:"window"`
	Used        int           `json:"used"`
	Remaining   int           `json:"remaining"`
	RetryAfter  time.Duration `json:"retry_after"`
	Blocked     bool          `json:"blocked"`
}
