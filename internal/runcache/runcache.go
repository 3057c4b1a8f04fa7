// Package runcache persists per-site counters across process runs so
// each run can report new-vs-cumulative deltas.
package runcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"slapred/bonusscraper/internal/bonus"
	"slapred/bonusscraper/logger"
)

// Entry carries one site's counters across runs. Cumulative totals are
// monotonically non-decreasing; entries are never deleted.
type Entry struct {
	LastRunNewBonuses        int               `json:"last_run_new_bonuses"`
	CumulativeTotalBonuses   int               `json:"cumulative_total_bonuses"`
	LastRunNewDownlines      int               `json:"last_run_new_downlines"`
	CumulativeTotalDownlines int               `json:"cumulative_total_downlines"`
	LastRunNewErrors         int               `json:"last_run_new_errors"`
	CumulativeTotalErrors    int               `json:"cumulative_total_errors"`
	OldFlags                 bonus.CoarseFlags `json:"old_flags"`
	NewFlags                 bonus.ClaimFlags  `json:"new_flags"`
	LastProcessedTS          string            `json:"last_processed_ts"`
}

// Delta is one run's newly observed counts for a site.
type Delta struct {
	Bonuses   int
	Downlines int
	Errors    int
}

// Cache is the whole run-metrics document. Single-writer, sequential
// access is assumed; there is no cross-process consistency guarantee.
type Cache struct {
	TotalScriptRuns int              `json:"total_script_runs"`
	Sites           map[string]Entry `json:"sites"`

	path string
	log  *logger.Logger
}

// Load reads the cache document from path. A missing or malformed file
// (either top-level key absent, or not JSON) yields a fresh default
// document rather than an error.
func Load(path string) *Cache {
	log := logger.ForCache()
	cache := &Cache{
		Sites: make(map[string]Entry),
		path:  path,
		log:   log,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", path).Msg("Run cache not found, starting fresh")
		} else {
			log.Warn().Err(err).Str("path", path).Msg("Failed to read run cache, starting fresh")
		}
		return cache
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Run cache not parseable, re-initializing")
		return cache
	}
	if _, ok := raw["total_script_runs"]; !ok {
		log.Warn().Str("path", path).Msg("Run cache malformed, re-initializing")
		return cache
	}
	if _, ok := raw["sites"]; !ok {
		log.Warn().Str("path", path).Msg("Run cache malformed, re-initializing")
		return cache
	}

	if err := json.Unmarshal(data, cache); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Run cache not decodable, re-initializing")
		return &Cache{Sites: make(map[string]Entry), path: path, log: log}
	}
	if cache.Sites == nil {
		cache.Sites = make(map[string]Entry)
	}
	cache.path = path
	cache.log = log

	log.Info().Str("path", path).Int("runs", cache.TotalScriptRuns).Msg("Run cache loaded")
	return cache
}

// BeginRun increments the total run counter and returns the new value.
func (c *Cache) BeginRun() int {
	c.TotalScriptRuns++
	return c.TotalScriptRuns
}

// Previous returns the stored entry for a site key, or a zero entry on
// first encounter.
func (c *Cache) Previous(siteKey string) Entry {
	return c.Sites[siteKey]
}

// Update folds one run's delta into a site's entry: each cumulative
// total becomes previous cumulative plus the delta, the latest flags are
// recorded, and the entry is timestamped. The updated entry is returned.
func (c *Cache) Update(siteKey string, delta Delta, coarse bonus.CoarseFlags, claim bonus.ClaimFlags) Entry {
	prev := c.Sites[siteKey]
	entry := Entry{
		LastRunNewBonuses:        delta.Bonuses,
		CumulativeTotalBonuses:   prev.CumulativeTotalBonuses + delta.Bonuses,
		LastRunNewDownlines:      delta.Downlines,
		CumulativeTotalDownlines: prev.CumulativeTotalDownlines + delta.Downlines,
		LastRunNewErrors:         delta.Errors,
		CumulativeTotalErrors:    prev.CumulativeTotalErrors + delta.Errors,
		OldFlags:                 coarse,
		NewFlags:                 claim,
		LastProcessedTS:          time.Now().Format(time.RFC3339),
	}
	c.Sites[siteKey] = entry
	return entry
}

// Save writes the whole document back to disk. Callers defer this so
// persistence also happens on interrupt and error paths.
func (c *Cache) Save() error {
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode run cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run cache: %w", err)
	}

	c.log.Info().Str("path", c.path).Int("runs", c.TotalScriptRuns).Msg("Run cache saved")
	return nil
}
