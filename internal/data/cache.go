package data

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"

	"bifacial-compare/internal/model"
)

// SiteSky is the site-dependent part of a simulation: solar position and clear-sky
// irradiance over a window. It does not depend on albedo, geometry or hardware.
type SiteSky struct {
	Position *model.SolarPosition
	ClearSky *model.ClearSky
}

type siteEntry struct {
	once sync.Once
	sky  *SiteSky
	err  error
}

// SiteCache shares SiteSky values between scenarios at the same site. Concurrent
// callers asking for the same key wait on a single computation.
type SiteCache struct {
	mu     sync.Mutex
	store  map[string]*siteEntry
	hits   atomic.Int64
	misses atomic.Int64
}

func NewSiteCache() *SiteCache {
	return &SiteCache{store: make(map[string]*siteEntry)}
}

// Get returns the cached value for (site, window) or computes it. Failed
// computations are not kept, so a later call retries.
func (c *SiteCache) Get(site model.Site, w model.Window, compute func() (*SiteSky, error)) (*SiteSky, error) {
	if c == nil {
		return compute()
	}
	key := GenerateSiteKey(site, w)

	c.mu.Lock()
	e, ok := c.store[key]
	if !ok {
		e = &siteEntry{}
		c.store[key] = e
	}
	c.mu.Unlock()

	computed := false
	e.once.Do(func() {
		computed = true
		e.sky, e.err = compute()
	})
	if computed {
		c.misses.Add(1)
	} else {
		c.hits.Add(1)
	}

	if e.err != nil {
		c.mu.Lock()
		if c.store[key] == e {
			delete(c.store, key)
		}
		c.mu.Unlock()
		return nil, e.err
	}
	return e.sky, nil
}

// Stats returns hit and miss counts.
func (c *SiteCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *SiteCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

// Clear removes all entries from the cache
func (c *SiteCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]*siteEntry)
}

// GenerateSiteKey creates a cache key from the site and window
func GenerateSiteKey(site model.Site, w model.Window) string {
	keyStr := fmt.Sprintf("%.6f:%.6f:%.2f:%s:%s:%s:%s",
		site.Latitude,
		site.Longitude,
		site.Altitude,
		site.Timezone,
		w.Start,
		w.End,
		w.Freq,
	)
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}
