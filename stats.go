package lru

// Stats is a point-in-time snapshot of a cache's activity counters.
// Counters accumulate for the lifetime of the cache; Clear does not reset
// them. Only Get and GetWithTTL count as lookups, so Peek and Contains can
// probe a cache without skewing its hit rate.
type Stats struct {
	// Hits is the number of lookups that found a live entry.
	Hits uint64

	// Misses is the number of lookups that found nothing, including ones
	// that landed on an expired entry.
	Misses uint64

	// Evictions is the number of entries displaced by writes to a full
	// cache. Explicit removals and Clear are not counted.
	Evictions uint64

	// Expired is the number of entries reclaimed past their deadline,
	// lazily or via RemoveExpired. Always zero for caches without expiry.
	Expired uint64
}

// add returns the element-wise sum of two snapshots.
func (s Stats) add(o Stats) Stats {
	s.Hits += o.Hits
	s.Misses += o.Misses
	s.Evictions += o.Evictions
	s.Expired += o.Expired
	return s
}
