package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "urls.txt", cfg.URLFile)
	assert.Equal(t, filepath.Join("data", "downlines_master.csv"), cfg.DownlineCSVPath)
	assert.Equal(t, filepath.Join("data", "run_metrics_cache.json"), cfg.RunCachePath)
	assert.Contains(t, cfg.BonusCSVPath, "_bonuses.csv")
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 15*time.Second, cfg.AuthTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.PageDelay)
	assert.Equal(t, time.Second, cfg.MinRequestDelay)
	assert.Equal(t, 3*time.Second, cfg.MaxRequestDelay)
	assert.False(t, cfg.DownlineEnabled)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.MemcacheAddr)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SCRAPER_MOBILE", "0123456789")
	t.Setenv("SCRAPER_PASSWORD", "secret")
	t.Setenv("DOWNLINE_ENABLED", "true")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "10")
	t.Setenv("DATA_DIR", "/tmp/out")

	cfg := LoadConfig()
	assert.Equal(t, "0123456789", cfg.Mobile)
	assert.True(t, cfg.DownlineEnabled)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, filepath.Join("/tmp/out", "downlines_master.csv"), cfg.DownlineCSVPath)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Mobile:          "0123456789",
		Password:        "secret",
		URLFile:         "urls.txt",
		MinRequestDelay: time.Second,
		MaxRequestDelay: 2 * time.Second,
	}
	assert.NoError(t, valid.Validate())

	noMobile := valid
	noMobile.Mobile = ""
	assert.Error(t, noMobile.Validate())

	noPassword := valid
	noPassword.Password = ""
	assert.Error(t, noPassword.Validate())

	badDelays := valid
	badDelays.MinRequestDelay = 5 * time.Second
	assert.Error(t, badDelays.Validate())
}

func TestLoadURLs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := `# production sites
https://site-a.example

https://site-b.example/path?x=1
  # indented comment
https://site-c.example
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	urls, err := LoadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://site-a.example",
		"https://site-b.example/path?x=1",
		"https://site-c.example",
	}, urls)
}

func TestLoadURLsMissingFile(t *testing.T) {
	_, err := LoadURLs(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}
