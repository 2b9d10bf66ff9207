package lru

import "time"

// entry is an intrusive node in the recency chain. The same node type backs
// [Cache] and [Expirable]; caches without expiry leave the deadline as the
// zero time.
type entry[K comparable, V any] struct {
	key    K
	val    V
	expiry time.Time
	prev   *entry[K, V]
	next   *entry[K, V]
}

// chain keeps entries in recency order between two sentinel nodes. The
// sentinels are embedded values, not members: mru.next is the most recently
// used entry, lru.prev the least recently used one, and an empty chain has
// the sentinels linked to each other. Splicing next to a sentinel never
// touches a nil pointer.
type chain[K comparable, V any] struct {
	mru entry[K, V] // sentinel ahead of the most recently used entry
	lru entry[K, V] // sentinel behind the least recently used entry
}

// init links the sentinels to each other, yielding an empty chain.
func (l *chain[K, V]) init() {
	l.mru.next = &l.lru
	l.lru.prev = &l.mru
}

// front returns the most recently used entry, or nil if the chain is empty.
// An uninitialized chain reads as empty.
func (l *chain[K, V]) front() *entry[K, V] {
	if l.mru.next == nil || l.mru.next == &l.lru {
		return nil
	}
	return l.mru.next
}

// back returns the least recently used entry, or nil if the chain is empty.
// An uninitialized chain reads as empty.
func (l *chain[K, V]) back() *entry[K, V] {
	if l.lru.prev == nil || l.lru.prev == &l.mru {
		return nil
	}
	return l.lru.prev
}

// next returns the entry after e in hot-to-cold order, or nil past the last
// entry.
func (l *chain[K, V]) next(e *entry[K, V]) *entry[K, V] {
	if e.next == &l.lru {
		return nil
	}
	return e.next
}

// pushFront links e right behind the hot-end sentinel.
func (l *chain[K, V]) pushFront(e *entry[K, V]) {
	e.prev = &l.mru
	e.next = l.mru.next
	e.prev.next = e
	e.next.prev = e
}

// remove unlinks e. The sentinels guarantee e.prev and e.next are non-nil
// for any linked entry.
func (l *chain[K, V]) remove(e *entry[K, V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = nil
	e.next = nil
}

// moveToFront relinks e as the most recently used entry.
func (l *chain[K, V]) moveToFront(e *entry[K, V]) {
	if l.mru.next == e {
		return
	}
	l.remove(e)
	l.pushFront(e)
}
