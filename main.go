package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"slapred/bonusscraper/config"
	"slapred/bonusscraper/internal/api"
	"slapred/bonusscraper/internal/bonus"
	"slapred/bonusscraper/internal/downline"
	"slapred/bonusscraper/internal/runcache"
	"slapred/bonusscraper/logger"
	"slapred/bonusscraper/services/cache"
	"slapred/bonusscraper/services/sink"
	"slapred/bonusscraper/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Bool("downline_mode", cfg.DownlineEnabled).
		Msg("Starting application")

	urls, err := config.LoadURLs(cfg.URLFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.URLFile).Msg("Failed to load URL list")
	}
	if len(urls) == 0 {
		log.Warn().Str("file", cfg.URLFile).Msg("URL list is empty, nothing to do")
		return
	}
	log.Info().Int("count", len(urls)).Str("file", cfg.URLFile).Msg("Loaded URL list")

	// Set up context cancelled by interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Rate-limit block cache: memcache when configured, in-process otherwise
	var cacheSvc cache.CacheService
	if cfg.MemcacheAddr != "" {
		cacheSvc = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	} else {
		cacheSvc = cache.NewMemoryService()
	}

	// Output sinks: CSV primary, Redis streams optional
	csvSink := sink.NewCSVSink(cfg.BonusCSVPath, cfg.DownlineCSVPath)
	var publishers []sink.RowPublisher
	var redisSink *sink.RedisSink
	if cfg.RedisAddr != "" {
		redisSink = sink.NewRedisSink(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength)
		publishers = append(publishers, redisSink)
		logger.Info("Publishing rows to Redis at %s (DB: %d, stream prefix: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}
	outSink := sink.NewFanOut(csvSink, publishers...)
	defer outSink.Close()

	client := api.NewClient(cfg.RequestTimeout, cfg.AuthTimeout, cacheSvc)
	scraper := bonus.NewScraper(client, outSink)
	paginator := downline.NewPaginator(client, outSink, cfg.PageDelay)

	// The run cache must be persisted on every exit path, including
	// interrupts, so the save is deferred before the run starts.
	runCache := runcache.Load(cfg.RunCachePath)
	defer func() {
		if err := runCache.Save(); err != nil {
			log.Error().Err(err).Msg("Failed to save run cache")
		}
	}()

	w := worker.NewWorker(cfg, client, scraper, paginator, runCache)
	summary := w.Run(ctx, urls)

	if redisSink != nil {
		if err := redisSink.TrimStreams(); err != nil {
			log.Warn().Err(err).Msg("Failed to trim Redis streams")
		}
	}

	if summary.Interrupted {
		log.Warn().Msg("Shutting down after interrupt")
	} else {
		log.Info().Msg("Shutting down gracefully...")
	}
}
