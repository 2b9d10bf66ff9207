// Package lru provides generic, thread-safe LRU cache implementations.
//
// Three cache types are provided:
//
//   - [Cache]: A fixed-capacity LRU cache
//   - [Expirable]: An LRU cache with per-entry TTL expiration
//   - [Sharded]: A cache split across independently locked shards
//
// All are safe for concurrent use and support eviction callbacks.
//
// Entries live in a hash map and on a recency chain bounded by two sentinel
// nodes, so every operation runs in constant time: a read promotes its entry
// to the hot end of the chain, and a write to a full cache evicts from the
// cold end before inserting.
//
// # Basic Usage
//
// Create a cache and store values:
//
//	cache := lru.MustNew[string, int](100)
//	cache.Set("key", 42)
//	value, found := cache.Get("key")
//
// A lookup reports absence through its boolean, never through a reserved
// value, so any value type works, zero values included.
//
// # Memoization with GetOrSet
//
// Compute values on cache miss:
//
//	result, err := cache.GetOrSet("key", func() (int, error) {
//	    return expensiveComputation()
//	})
//
// Use [Cache.GetOrSetSingleflight] when concurrent callers should share a
// single computation per key.
//
// # Expirable Cache
//
// Create a cache where entries expire after a duration:
//
//	cache := lru.MustNewExpirable[string, int](100, 5*time.Minute)
//	cache.Set("key", 42)
//	value, ttl, found := cache.GetWithTTL("key")
//
// Expired entries are reclaimed lazily by reads and by writes that need
// room. Call [Expirable.RemoveExpired] to explicitly purge all expired
// entries.
//
// # Eviction Callbacks
//
// Register a callback to be notified when entries are evicted:
//
//	cache.OnEvict(func(key string, value int) {
//	    fmt.Printf("evicted: %s=%d\n", key, value)
//	})
//
// Callbacks are invoked for capacity evictions, explicit removals via
// [Cache.Remove], and [Cache.Clear]. An [Expirable] additionally invokes
// them from [Expirable.RemoveExpired], but never for expired entries it
// reclaims lazily; those are treated as already gone.
//
// # Counters
//
// Every cache keeps cumulative hit, miss and eviction counters:
//
//	stats := cache.Stats()
//	fmt.Println(stats.Hits, stats.Misses, stats.Evictions)
//
// # Degenerate caches
//
// The constructors reject capacities of zero or less with
// [ErrInvalidCapacity], so a constructed cache always has room for at least
// one entry. A zero-value Cache has no capacity; rather than panicking, it
// serves every read as a miss and drops writes with a warning through the
// logger configured via [Cache.SetLogger] (the process default logger when
// unset).
package lru
