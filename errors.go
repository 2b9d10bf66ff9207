package lru

import "errors"

// Configuration errors returned by the constructors. The Must variants
// panic with the same values.
var (
	// ErrInvalidCapacity is returned when a cache is created with a
	// capacity of zero or less.
	ErrInvalidCapacity = errors.New("capacity must be greater than zero")

	// ErrInvalidTTL is returned when an expirable cache is created with, or
	// switched to, a TTL of zero or less.
	ErrInvalidTTL = errors.New("TTL must be greater than zero")

	// ErrInvalidShardCount is returned when a sharded cache is created with
	// a shard count of zero or less.
	ErrInvalidShardCount = errors.New("shard count must be greater than zero")
)
