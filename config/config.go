package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Credentials for the platform login API
	Mobile   string
	Password string

	// Input
	URLFile string

	// Output targets
	BonusCSVPath    string
	DownlineCSVPath string
	RunCachePath    string

	// Optional secondary sink (Redis streams)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Optional rate-limit cache
	MemcacheAddr string

	// Scraper behaviour
	DownlineEnabled bool
	RequestTimeout  time.Duration
	AuthTimeout     time.Duration
	PageDelay       time.Duration
	MinRequestDelay time.Duration
	MaxRequestDelay time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	requestTimeout, _ := strconv.Atoi(getEnv("REQUEST_TIMEOUT_SECONDS", "30"))
	authTimeout, _ := strconv.Atoi(getEnv("AUTH_TIMEOUT_SECONDS", "15"))
	pageDelayMs, _ := strconv.Atoi(getEnv("PAGE_DELAY_MS", "500"))
	minDelayMs, _ := strconv.Atoi(getEnv("MIN_REQUEST_DELAY_MS", "1000"))
	maxDelayMs, _ := strconv.Atoi(getEnv("MAX_REQUEST_DELAY_MS", "3000"))
	downlineEnabled, _ := strconv.ParseBool(getEnv("DOWNLINE_ENABLED", "false"))

	dataDir := getEnv("DATA_DIR", "data")

	return Config{
		Mobile:               getEnv("SCRAPER_MOBILE", ""),
		Password:             getEnv("SCRAPER_PASSWORD", ""),
		URLFile:              getEnv("URL_FILE", "urls.txt"),
		BonusCSVPath:         getEnv("BONUS_CSV_PATH", defaultBonusCSVPath(dataDir)),
		DownlineCSVPath:      getEnv("DOWNLINE_CSV_PATH", filepath.Join(dataDir, "downlines_master.csv")),
		RunCachePath:         getEnv("RUN_CACHE_PATH", filepath.Join(dataDir, "run_metrics_cache.json")),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "bonusscraper"),
		RedisStreamMaxLength: streamMaxLen,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		DownlineEnabled:      downlineEnabled,
		RequestTimeout:       time.Duration(requestTimeout) * time.Second,
		AuthTimeout:          time.Duration(authTimeout) * time.Second,
		PageDelay:            time.Duration(pageDelayMs) * time.Millisecond,
		MinRequestDelay:      time.Duration(minDelayMs) * time.Millisecond,
		MaxRequestDelay:      time.Duration(maxDelayMs) * time.Millisecond,
		Environment:          getEnv("SCRAPER_ENVIRONMENT", "development"),
	}
}

// defaultBonusCSVPath returns the dated per-day bonus CSV path
func defaultBonusCSVPath(dataDir string) string {
	name := time.Now().Format("2006-01-02") + "_bonuses.csv"
	return filepath.Join(dataDir, name)
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Mobile == "" {
		return fmt.Errorf("SCRAPER_MOBILE is required")
	}
	if c.Password == "" {
		return fmt.Errorf("SCRAPER_PASSWORD is required")
	}
	if c.URLFile == "" {
		return fmt.Errorf("URL_FILE is required")
	}
	if c.MinRequestDelay > c.MaxRequestDelay {
		return fmt.Errorf("MIN_REQUEST_DELAY_MS must not exceed MAX_REQUEST_DELAY_MS")
	}
	return nil
}

// LoadURLs reads target site URLs from a text file, skipping blank lines
// and lines starting with '#'.
func LoadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL file: %w", err)
	}
	return urls, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
