package lru

import "log/slog"

// warnDroppedWrite logs a write dropped by a cache that has no capacity.
// The constructors reject non-positive capacities, so only a zero-value
// cache can take this path.
func warnDroppedWrite(logger *slog.Logger, key any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("cache has no capacity, dropping write", "key", key)
}
