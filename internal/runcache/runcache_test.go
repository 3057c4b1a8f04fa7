package runcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slapred/bonusscraper/internal/bonus"
)

func cachePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "run_metrics_cache.json")
}

func TestLoadMissingFile(t *testing.T) {
	c := Load(cachePath(t))
	assert.Equal(t, 0, c.TotalScriptRuns)
	assert.Empty(t, c.Sites)
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "not json at all"},
		{"missing total_script_runs", `{"sites": {}}`},
		{"missing sites", `{"total_script_runs": 3}`},
		{"json array", `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := cachePath(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			c := Load(path)
			assert.Equal(t, 0, c.TotalScriptRuns)
			assert.Empty(t, c.Sites)
		})
	}
}

func TestBeginRun(t *testing.T) {
	c := Load(cachePath(t))
	assert.Equal(t, 1, c.BeginRun())
	assert.Equal(t, 2, c.BeginRun())
}

func TestUpdateAccumulates(t *testing.T) {
	c := Load(cachePath(t))

	first := c.Update("https://example.com", Delta{Bonuses: 3, Downlines: 2, Errors: 0},
		bonus.CoarseFlags{C: true}, bonus.ClaimFlags{A: true})
	assert.Equal(t, 3, first.LastRunNewBonuses)
	assert.Equal(t, 3, first.CumulativeTotalBonuses)
	assert.Equal(t, 2, first.CumulativeTotalDownlines)
	assert.Equal(t, 0, first.CumulativeTotalErrors)

	second := c.Update("https://example.com", Delta{Bonuses: 1, Errors: 1},
		bonus.CoarseFlags{O: true}, bonus.ClaimFlags{})
	assert.Equal(t, 1, second.LastRunNewBonuses)
	assert.Equal(t, 4, second.CumulativeTotalBonuses)
	assert.Equal(t, 2, second.CumulativeTotalDownlines)
	assert.Equal(t, 1, second.CumulativeTotalErrors)
	assert.Equal(t, bonus.CoarseFlags{O: true}, second.OldFlags)

	ts, err := time.Parse(time.RFC3339, second.LastProcessedTS)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestPreviousUnknownSite(t *testing.T) {
	c := Load(cachePath(t))
	assert.Equal(t, Entry{}, c.Previous("https://unknown.example"))
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := cachePath(t)

	c := Load(path)
	c.BeginRun()
	c.Update("https://example.com", Delta{Bonuses: 5, Downlines: 1, Errors: 2},
		bonus.CoarseFlags{C: true, O: true}, bonus.ClaimFlags{L: true})
	require.NoError(t, c.Save())

	reloaded := Load(path)
	assert.Equal(t, 1, reloaded.TotalScriptRuns)

	entry := reloaded.Previous("https://example.com")
	assert.Equal(t, 5, entry.CumulativeTotalBonuses)
	assert.Equal(t, 1, entry.CumulativeTotalDownlines)
	assert.Equal(t, 2, entry.CumulativeTotalErrors)
	assert.Equal(t, bonus.CoarseFlags{C: true, O: true}, entry.OldFlags)
	assert.Equal(t, bonus.ClaimFlags{L: true}, entry.NewFlags)
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.json")
	c := Load(path)
	c.BeginRun()
	require.NoError(t, c.Save())

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
