package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/upec/tracklane/internal/contract"
	"github.com/upec/tracklane/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// CacheSchemaVersion reports the cache schema version stored with each layout.
func CacheSchemaVersion() int { return currentCacheVersion }

// cacheTTL bounds how long a cached layout is trusted.
const cacheTTL = 7 * 24 * time.Hour

// cachedBuild returns a cached layout for the same input and options, or builds
// and stores a fresh one.
func cachedBuild(mgr contract.CacheManager, raw []schema.RawTaskIntervals, opts BuildOptions) schema.TimelineResult {
	if opts.Now.IsZero() {
		opts.Now = time.Now().Truncate(time.Minute)
	}
	if mgr == nil || mgr.GetCacheStore() == nil {
		return Build(raw, opts)
	}
	store := mgr.GetCacheStore()

	key, err := generateCacheKey(raw, opts)
	if err != nil {
		contract.LogWarn("Cache key generation failed", err)
		return Build(raw, opts)
	}

	if result, ok := checkCacheHit(store, key); ok {
		return result
	}
	return computeAndStore(store, key, raw, opts)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) (schema.TimelineResult, bool) {
	var result schema.TimelineResult
	data, version, ts, err := store.Get(key)
	if err != nil || data == nil {
		return result, false // Cache miss
	}
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return result, false // Stale or version mismatch
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false
	}
	return result, true
}

// computeAndStore builds the result and stores it in cache
func computeAndStore(store contract.CacheStore, key string, raw []schema.RawTaskIntervals, opts BuildOptions) schema.TimelineResult {
	result := Build(raw, opts)
	if data, err := json.Marshal(result); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Cache write failed", err)
		}
	}
	return result
}

// generateCacheKey hashes the input together with every option that changes output.
// Only the date of now matters unless some task has no start, in which case its
// window opens at now and the minute is keyed too.
func generateCacheKey(raw []schema.RawTaskIntervals, opts BuildOptions) (string, error) {
	payload, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("failed to encode input: %w", err)
	}
	now := schema.DateOf(opts.Now)
	if !allTasksTimed(raw) {
		now = opts.Now.Truncate(time.Minute).Format(time.RFC3339)
	}
	header := fmt.Sprintf("%s:%d:%s:%s:",
		opts.Strategy,
		opts.PaletteSize,
		opts.Window,
		now,
	)
	sum := sha256.Sum256(append([]byte(header), payload...))
	return fmt.Sprintf("%x", sum), nil
}

// allTasksTimed reports whether every task has at least one interval with a start.
func allTasksTimed(raw []schema.RawTaskIntervals) bool {
	for _, task := range raw {
		timed := false
		for i := range task.Intervals {
			if task.Intervals[i].HasStart() {
				timed = true
				break
			}
		}
		if !timed {
			return false
		}
	}
	return true
}
