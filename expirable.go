package lru

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Expirable represents a thread-safe, fixed-size LRU cache with expiry functionality.
// Each entry has an absolute expiration time set when written via [Expirable.Set] or
// [Expirable.GetOrSet]. The TTL is not refreshed on reads (no sliding expiration).
//
// Expired entries are reclaimed lazily: a read that lands on one removes it
// and reports a miss, and a write that needs room reclaims expired entries
// from the cold end before evicting a live one. Lazy reclamation never
// invokes the eviction callback; an expired entry is treated as already
// gone. Use [Expirable.RemoveExpired] to purge expired entries with
// callbacks.
//
// An Expirable should be created with [NewExpirable] or [MustNewExpirable].
// The zero value drops writes with a warning and is otherwise not ready for use.
type Expirable[K comparable, V any] struct {
	capacity int
	items    map[K]*entry[K, V]
	order    chain[K, V] // recency order, hot end first
	mu       sync.RWMutex
	ttl      time.Duration
	timeNow  func() time.Time // for testing
	stats    Stats
	onEvict  OnEvictFunc[K, V] // callback for evictions
	logger   *slog.Logger      // nil means slog.Default
	sfGroup  singleflight.Group
}

// setOptions holds optional parameters for Set operations.
type setOptions struct {
	ttl time.Duration
}

// SetOption is a functional option for [Expirable.Set], [Expirable.GetOrSet],
// and [Expirable.GetOrSetSingleflight].
type SetOption func(*setOptions)

// WithTTL sets a custom TTL for the entry being set, overriding the cache's default TTL.
// If ttl is zero or negative, the cache's default TTL is used instead.
func WithTTL(ttl time.Duration) SetOption {
	return func(o *setOptions) {
		o.ttl = ttl
	}
}

// NewExpirable creates a new LRU cache with the given capacity and TTL.
// Each entry expires a fixed duration after it is written via Set or GetOrSet.
// Reads (Get, Peek, GetWithTTL) do not extend an entry's TTL.
// The capacity must be greater than zero, and the TTL must be greater than zero.
func NewExpirable[K comparable, V any](capacity int, ttl time.Duration) (*Expirable[K, V], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}

	c := &Expirable[K, V]{
		capacity: capacity,
		items:    make(map[K]*entry[K, V], capacity),
		ttl:      ttl,
		timeNow:  time.Now,
	}
	c.order.init()
	return c, nil
}

// MustNewExpirable creates a new LRU cache with the given capacity and TTL.
// It panics if the capacity or TTL is less than or equal to zero.
func MustNewExpirable[K comparable, V any](capacity int, ttl time.Duration) *Expirable[K, V] {
	cache, err := NewExpirable[K, V](capacity, ttl)
	if err != nil {
		panic(err)
	}
	return cache
}

// Get retrieves a value from the cache by key.
// It returns the value and a boolean indicating whether the key was found and not expired.
// A hit makes the entry the most recently used one. An expired entry is
// reclaimed and reported as a miss, without invoking the eviction callback.
func (c *Expirable[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()

	var zero V

	e, found := c.items[key]
	if !found {
		c.stats.Misses++
		c.mu.Unlock()
		return zero, false
	}

	if c.timeNow().After(e.expiry) {
		delete(c.items, e.key)
		c.order.remove(e)
		c.stats.Misses++
		c.stats.Expired++
		c.mu.Unlock()
		return zero, false
	}

	c.order.moveToFront(e)
	c.stats.Hits++
	val := e.val
	c.mu.Unlock()

	return val, true
}

// Peek retrieves a value from the cache by key without updating its position
// in the LRU list. This is useful for checking a value without affecting
// eviction order. Returns the value and a boolean indicating whether the key
// was found and not expired.
//
// Note: Unlike [Expirable.Get], expired items are not removed from the cache.
// Use [Expirable.RemoveExpired] to explicitly purge expired entries.
func (c *Expirable[K, V]) Peek(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V

	e, found := c.items[key]
	if !found {
		return zero, false
	}

	if c.timeNow().After(e.expiry) {
		return zero, false
	}

	return e.val, true
}

// GetWithTTL retrieves a value and its remaining TTL from the cache by key.
// It returns the value, remaining TTL, and a boolean indicating whether the key was found and not expired.
// Like [Expirable.Get], it reclaims an expired entry without invoking the
// eviction callback.
func (c *Expirable[K, V]) GetWithTTL(key K) (V, time.Duration, bool) {
	c.mu.Lock()

	var zero V

	e, found := c.items[key]
	if !found {
		c.stats.Misses++
		c.mu.Unlock()
		return zero, 0, false
	}

	now := c.timeNow()
	if now.After(e.expiry) {
		delete(c.items, e.key)
		c.order.remove(e)
		c.stats.Misses++
		c.stats.Expired++
		c.mu.Unlock()
		return zero, 0, false
	}

	c.order.moveToFront(e)
	c.stats.Hits++

	// calculate remaining TTL
	ttl := e.expiry.Sub(now)
	if ttl < 0 {
		ttl = 0
	}
	val := e.val
	c.mu.Unlock()

	return val, ttl, true
}

// GetOrSet retrieves a value from the cache by key, or computes and sets it if not present or expired.
// The compute function is only called if the key is not present in the cache or is expired.
// Note: if multiple goroutines call GetOrSet concurrently for the same missing/expired key,
// compute may be called multiple times but only one result will be cached.
//
// Options can be passed to customize the entry, such as [WithTTL] to override
// the cache's default TTL for this specific entry.
func (c *Expirable[K, V]) GetOrSet(key K, compute func() (V, error), opts ...SetOption) (V, error) {
	// fast path: check if item exists and is not expired
	if val, found := c.Get(key); found {
		return val, nil
	}

	opt := setOptions{}
	for _, o := range opts {
		o(&opt)
	}

	// compute the value outside the lock to avoid deadlock if compute
	// calls back into the cache
	val, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	// check again in case it was added while we were computing
	if e, found := c.items[key]; found {
		if !c.timeNow().After(e.expiry) {
			c.order.moveToFront(e)
			val := e.val
			c.mu.Unlock()
			return val, nil
		}
		// stale entry, reclaim it quietly before the rewrite
		delete(c.items, key)
		c.order.remove(e)
		c.stats.Expired++
	}

	if c.capacity <= 0 {
		logger := c.logger
		c.mu.Unlock()
		warnDroppedWrite(logger, key)
		return val, nil
	}

	ttl := c.ttl
	if opt.ttl > 0 {
		ttl = opt.ttl
	}

	// add to cache
	evictedKey, evictedVal, hasEvicted := c.setLocked(key, val, ttl)
	onEvict := c.onEvict
	c.mu.Unlock()

	if hasEvicted && onEvict != nil {
		onEvict(evictedKey, evictedVal)
	}
	return val, nil
}

// GetOrSetSingleflight retrieves a value from the cache by key, or computes and sets it if not present or expired.
// Unlike [Expirable.GetOrSet], if multiple goroutines call GetOrSetSingleflight concurrently for the same
// missing/expired key, the compute function is called exactly once and all callers receive the same result.
// This is useful when the compute function is expensive (e.g., database queries, API calls).
//
// The singleflight deduplication only applies to concurrent in-flight calls; once a value is cached,
// subsequent calls return the cached value without invoking singleflight.
//
// Options can be passed to customize the entry, such as [WithTTL] to override
// the cache's default TTL for this specific entry.
func (c *Expirable[K, V]) GetOrSetSingleflight(key K, compute func() (V, error), opts ...SetOption) (V, error) {
	// fast path: check if item exists and is not expired
	if val, found := c.Get(key); found {
		return val, nil
	}

	opt := setOptions{}
	for _, o := range opts {
		o(&opt)
	}

	// use singleflight to deduplicate concurrent computes for the same key
	sfKey := fmt.Sprintf("%v", key)
	result, err, _ := c.sfGroup.Do(sfKey, func() (any, error) {
		// check again inside singleflight in case another goroutine just cached it
		if val, found := c.Get(key); found {
			return val, nil
		}

		val, err := compute()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		// check again in case it was added while we were computing
		if e, found := c.items[key]; found {
			if !c.timeNow().After(e.expiry) {
				c.order.moveToFront(e)
				existingVal := e.val
				c.mu.Unlock()
				return existingVal, nil
			}
			// stale entry, reclaim it quietly before the rewrite
			delete(c.items, key)
			c.order.remove(e)
			c.stats.Expired++
		}

		if c.capacity <= 0 {
			logger := c.logger
			c.mu.Unlock()
			warnDroppedWrite(logger, key)
			return val, nil
		}

		ttl := c.ttl
		if opt.ttl > 0 {
			ttl = opt.ttl
		}

		evictedKey, evictedVal, hasEvicted := c.setLocked(key, val, ttl)
		onEvict := c.onEvict
		c.mu.Unlock()

		if hasEvicted && onEvict != nil {
			onEvict(evictedKey, evictedVal)
		}
		return val, nil
	})

	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}

// Set adds or updates an item in the cache.
// If the key already exists, its value and expiry are updated in place and
// the entry becomes the most recently used one. When the cache is full, Set
// first reclaims expired entries from the cold end of the LRU list and only
// evicts a live entry (invoking the eviction callback) if none were expired.
//
// A cache without capacity (the zero value) logs a warning and discards the
// write rather than failing; [NewExpirable] never produces such a cache.
//
// Options can be passed to customize the entry, such as [WithTTL] to override
// the cache's default TTL for this specific entry.
func (c *Expirable[K, V]) Set(key K, value V, opts ...SetOption) {
	opt := setOptions{}
	for _, o := range opts {
		o(&opt)
	}

	c.mu.Lock()
	if c.capacity <= 0 {
		logger := c.logger
		c.mu.Unlock()
		warnDroppedWrite(logger, key)
		return
	}

	ttl := c.ttl
	if opt.ttl > 0 {
		ttl = opt.ttl
	}

	evictedKey, evictedVal, hasEvicted := c.setLocked(key, value, ttl)
	onEvict := c.onEvict
	c.mu.Unlock()

	if hasEvicted && onEvict != nil {
		onEvict(evictedKey, evictedVal)
	}
}

// setLocked is an internal method that adds or updates an item in the cache.
// it assumes the mutex is already locked and the capacity is positive.
// Returns the evicted key/value and whether a live entry was evicted;
// expired entries reclaimed to make room are not reported.
func (c *Expirable[K, V]) setLocked(key K, value V, ttl time.Duration) (evictedKey K, evictedVal V, evicted bool) {
	now := c.timeNow()

	// if key exists, update value and expiry and move to front
	if e, found := c.items[key]; found {
		c.order.moveToFront(e)
		e.val = value
		e.expiry = now.Add(ttl)
		return
	}

	// make room if needed: expired entries at the cold end are already
	// dead and reclaimed quietly; a live entry is evicted as a last resort
	for len(c.items) >= c.capacity {
		oldest := c.order.back()
		if oldest == nil {
			break
		}
		if now.After(oldest.expiry) {
			delete(c.items, oldest.key)
			c.order.remove(oldest)
			c.stats.Expired++
			continue
		}
		evictedKey = oldest.key
		evictedVal = oldest.val
		evicted = true
		delete(c.items, oldest.key)
		c.order.remove(oldest)
		c.stats.Evictions++
		break
	}

	// add new item
	e := &entry[K, V]{
		key:    key,
		val:    value,
		expiry: now.Add(ttl),
	}
	c.order.pushFront(e)
	c.items[key] = e
	return
}

// Remove deletes an item from the cache by key, expired or not.
// It returns whether the key was found and removed.
func (c *Expirable[K, V]) Remove(key K) bool {
	c.mu.Lock()
	e, found := c.items[key]
	if !found {
		c.mu.Unlock()
		return false
	}

	evictedKey := e.key
	evictedVal := e.val
	onEvict := c.onEvict

	delete(c.items, key)
	c.order.remove(e)
	c.mu.Unlock()

	if onEvict != nil {
		onEvict(evictedKey, evictedVal)
	}
	return true
}

// Len returns the current number of non-expired items in the cache.
//
// Note: This method does not remove expired entries; it only excludes them from the count.
// Use [Expirable.RemoveExpired] to explicitly purge expired entries.
func (c *Expirable[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	now := c.timeNow()

	for _, e := range c.items {
		if !now.After(e.expiry) {
			count++
		}
	}

	return count
}

// Clear removes all items from the cache.
//
// If an eviction callback is set, it is called only for entries that have not
// yet expired at the time of clearing.
func (c *Expirable[K, V]) Clear() {
	c.mu.Lock()
	onEvict := c.onEvict

	var evicted []entry[K, V]
	if onEvict != nil {
		now := c.timeNow()
		evicted = make([]entry[K, V], 0, len(c.items))
		for e := c.order.front(); e != nil; e = c.order.next(e) {
			if !now.After(e.expiry) {
				evicted = append(evicted, *e)
			}
		}
	}

	c.items = make(map[K]*entry[K, V], c.capacity)
	c.order.init()
	c.mu.Unlock()

	for _, e := range evicted {
		onEvict(e.key, e.val)
	}
}

// Contains checks if a key exists in the cache and is not expired.
//
// Note: This method does not remove expired entries from the cache.
// Use [Expirable.RemoveExpired] to explicitly purge expired entries.
func (c *Expirable[K, V]) Contains(key K) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, found := c.items[key]
	if !found {
		return false
	}

	return !c.timeNow().After(e.expiry)
}

// Keys returns a slice of all keys in the cache that haven't expired.
// The order is from most recently used to least recently used.
func (c *Expirable[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.timeNow()
	keys := make([]K, 0, len(c.items))

	for e := c.order.front(); e != nil; e = c.order.next(e) {
		if !now.After(e.expiry) {
			keys = append(keys, e.key)
		}
	}

	return keys
}

// Capacity returns the maximum capacity of the cache.
func (c *Expirable[K, V]) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of the cache's activity counters.
func (c *Expirable[K, V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.stats
}

// TTL returns the time-to-live duration for cache entries.
func (c *Expirable[K, V]) TTL() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ttl
}

// SetTTL updates the TTL for future cache entries.
// It does not affect existing entries. A TTL of zero or less is rejected
// with [ErrInvalidTTL].
func (c *Expirable[K, V]) SetTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.ttl = ttl
	return nil
}

// OnEvict sets a callback function that will be called when an entry is evicted from the cache.
// The callback will receive the key and value of the evicted entry.
// It fires for capacity evictions of live entries, [Expirable.Remove],
// [Expirable.Clear] and [Expirable.RemoveExpired], but never for expired
// entries reclaimed lazily by reads or writes.
//
// The callback is invoked after the cache's internal lock is released and may be called
// concurrently from multiple goroutines. It must be safe for concurrent use.
func (c *Expirable[K, V]) OnEvict(f OnEvictFunc[K, V]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onEvict = f
}

// SetLogger sets the logger used for cache warnings. Passing nil restores
// the process default logger.
func (c *Expirable[K, V]) SetLogger(logger *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger = logger
}

// SetTimeNowFunc replaces the function used to get the current time.
// This is primarily useful for testing. Passing nil resets to time.Now.
func (c *Expirable[K, V]) SetTimeNowFunc(f func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f == nil {
		f = time.Now
	}
	c.timeNow = f
}

// RemoveExpired explicitly removes all expired items from the cache.
// Returns the number of items removed.
// This method will call the eviction callback for each expired item if one is set.
func (c *Expirable[K, V]) RemoveExpired() int {
	c.mu.Lock()

	now := c.timeNow()
	removed := 0

	expiredKeys := make([]K, 0)
	expiredVals := make([]V, 0)

	for e := c.order.front(); e != nil; {
		next := c.order.next(e)
		if now.After(e.expiry) {
			expiredKeys = append(expiredKeys, e.key)
			expiredVals = append(expiredVals, e.val)
			delete(c.items, e.key)
			c.order.remove(e)
			removed++
		}
		e = next
	}

	c.stats.Expired += uint64(removed)
	onEvict := c.onEvict
	c.mu.Unlock()

	if onEvict != nil {
		for i := range expiredKeys {
			onEvict(expiredKeys[i], expiredVals[i])
		}
	}

	return removed
}
