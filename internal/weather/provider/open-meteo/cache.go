// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package openmeteo

import (
	"math"
	"sync"
	"time"
)

// coordPrecision quantizes station coordinates to 0.01 degrees (≈ 1.1 km)
const coordPrecision = 1e-2

const (
	cacheTTLHit  = 2 * time.Hour
	cacheTTLMiss = 10 * time.Minute
)

type cacheKey struct {
	LatQ int32
	LonQ int32
	Hour string
}

type cacheEntry struct {
	Probability float64
	Found       bool
	Expiry      time.Time
}

// rainCache remembers lookups per station and observation hour. The observation dataset is
// updated hourly, so most refreshes ask for an hour that was already looked up.
type rainCache struct {
	ttlHit  time.Duration
	ttlMiss time.Duration

	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
}

func newRainCache(ttlHit, ttlMiss time.Duration) *rainCache {
	return &rainCache{
		ttlHit:  ttlHit,
		ttlMiss: ttlMiss,
		entries: make(map[cacheKey]cacheEntry),
	}
}

// get returns the cached entry for the given key. ok is false if nothing valid is cached.
func (c *rainCache) get(key cacheKey, now time.Time) (entry cacheEntry, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok = c.entries[key]
	if !ok || !now.Before(entry.Expiry) {
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *rainCache) put(key cacheKey, probability float64, found bool, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ttl := c.ttlHit
	if !found {
		ttl = c.ttlMiss
	}
	c.entries[key] = cacheEntry{
		Probability: probability,
		Found:       found,
		Expiry:      now.Add(ttl),
	}

	// drop expired entries so a long running service does not collect every hour it has seen
	for k, e := range c.entries {
		if !now.Before(e.Expiry) {
			delete(c.entries, k)
		}
	}
}

func quantizeCoord(val float64) int32 {
	return int32(math.Round(val / coordPrecision))
}

func newKey(lat, lon float64, observedAt time.Time) cacheKey {
	return cacheKey{
		LatQ: quantizeCoord(lat),
		LonQ: quantizeCoord(lon),
		Hour: observedAt.Format(hourOfDayFmt),
	}
}
