package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/V1997/lru"
)

var rootCmd = &cobra.Command{
	Use:   "lrudemo",
	Short: "Walk an LRU cache through its eviction behaviors",
	Long:  "lrudemo fills a small LRU cache, replays hits, misses, updates and evictions, and reports the cache counters. With --ttl it also walks an expirable cache through lazy expiry.",
	Run: func(cmd *cobra.Command, args []string) {
		capacity, _ := cmd.Flags().GetInt("capacity")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		verbose, _ := cmd.Flags().GetBool("verbose")
		if err := runDemo(capacity, ttl, verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runDemo(capacity int, ttl time.Duration, verbose bool) error {
	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cache, err := lru.New[int, string](capacity)
	if err != nil {
		return err
	}
	cache.SetLogger(logger)
	cache.OnEvict(func(key int, value string) {
		logger.Info("evicted", "key", key, "value", value)
	})

	logger.Info("filling cache", "capacity", capacity)
	for key := 1; key <= capacity; key++ {
		cache.Set(key, spell(key))
		logger.Debug("set", "key", key, "value", spell(key))
	}
	logger.Info("cache filled", "keys", cache.Keys(), "len", cache.Len())

	// a hit refreshes recency, a miss leaves the cache untouched
	if v, ok := cache.Get(1); ok {
		logger.Info("hit", "key", 1, "value", v)
	}
	if _, ok := cache.Get(capacity + 1); !ok {
		logger.Info("miss", "key", capacity+1)
	}

	// one write past capacity pushes out the least recently used entry
	overflow := capacity + 1
	cache.Set(overflow, spell(overflow))
	logger.Info("after overflow", "keys", cache.Keys())

	// updating an existing key keeps the entry and bumps it to the hot end
	cache.Set(1, strings.ToUpper(spell(1)))
	if v, ok := cache.Get(1); ok {
		logger.Info("updated in place", "key", 1, "value", v)
	}

	// a single-slot cache replaces its only entry on every distinct write
	single := lru.MustNew[int, string](1)
	single.Set(1, "single")
	single.Set(2, "replacement")
	logger.Info("single slot", "keys", single.Keys(), "len", single.Len())

	// a zero-value cache has no capacity and drops writes with a warning
	var degenerate lru.Cache[int, string]
	degenerate.SetLogger(logger)
	degenerate.Set(9, spell(9))
	logger.Debug("degenerate cache", "len", degenerate.Len())

	stats := cache.Stats()
	logger.Info("counters",
		"hits", stats.Hits,
		"misses", stats.Misses,
		"evictions", stats.Evictions,
	)

	if ttl > 0 {
		return runExpiryDemo(logger, capacity, ttl)
	}
	return nil
}

func runExpiryDemo(logger *slog.Logger, capacity int, ttl time.Duration) error {
	cache, err := lru.NewExpirable[int, string](capacity, ttl)
	if err != nil {
		return err
	}
	cache.SetLogger(logger)

	cache.Set(1, spell(1))
	if v, remaining, ok := cache.GetWithTTL(1); ok {
		logger.Info("entry alive", "key", 1, "value", v, "expires_in", remaining)
	}

	logger.Info("waiting for expiry", "ttl", ttl)
	time.Sleep(ttl + 10*time.Millisecond)

	// the read reclaims the expired entry, so the sweep finds nothing
	if _, ok := cache.Get(1); !ok {
		logger.Info("entry expired", "key", 1)
	}
	removed := cache.RemoveExpired()
	logger.Info("swept expired entries", "removed", removed, "len", cache.Len())

	stats := cache.Stats()
	logger.Info("expiry counters", "misses", stats.Misses, "expired", stats.Expired)
	return nil
}

// spell returns the English name for small numbers and the digits otherwise,
// just to make the demo values readable.
func spell(n int) string {
	names := []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten"}
	if n >= 0 && n < len(names) {
		return names[n]
	}
	return strconv.Itoa(n)
}

func init() {
	rootCmd.Flags().IntP("capacity", "c", 3, "Cache capacity for the walkthrough")
	rootCmd.Flags().DurationP("ttl", "t", 0, "Run the expiry walkthrough with this TTL (0 skips it)")
	rootCmd.Flags().BoolP("verbose", "v", false, "Enable debug output")
}

func main() {
	Execute()
}
