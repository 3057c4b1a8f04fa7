// Package worker drives the per-site pipeline: normalize, authenticate,
// fetch (bonuses or downlines), and fold results into the run cache.
package worker

import (
	"context"
	mathrand "math/rand"
	"time"

	"slapred/bonusscraper/config"
	"slapred/bonusscraper/internal/api"
	"slapred/bonusscraper/internal/bonus"
	"slapred/bonusscraper/internal/downline"
	"slapred/bonusscraper/internal/runcache"
	"slapred/bonusscraper/internal/siteurl"
	"slapred/bonusscraper/logger"
	scrapeerrors "slapred/bonusscraper/pkg/errors"
)

// FailedSite identifies a site that errored during a run, with a short
// reason tag for the summary.
type FailedSite struct {
	Site   string
	Reason string
}

// RunSummary aggregates one full run over all URLs.
type RunSummary struct {
	RunNumber     int
	URLsProcessed int
	NewBonuses    int
	NewDownlines  int
	NewErrors     int
	BonusAmount   float64
	FailedSites   []FailedSite
	Interrupted   bool
}

// siteResult is the outcome of processing a single site.
type siteResult struct {
	bonuses   int
	downlines int
	amount    float64
	coarse    bonus.CoarseFlags
	claim     bonus.ClaimFlags
	err       error
}

// Worker processes sites strictly one at a time. No resource is held
// across site boundaries and a failed site never aborts the run.
type Worker struct {
	cfg       config.Config
	client    *api.Client
	scraper   *bonus.Scraper
	paginator *downline.Paginator
	cache     *runcache.Cache
	log       *logger.Logger
	rnd       *mathrand.Rand
}

// NewWorker creates a worker over the shared services.
func NewWorker(
	cfg config.Config,
	client *api.Client,
	scraper *bonus.Scraper,
	paginator *downline.Paginator,
	cache *runcache.Cache,
) *Worker {
	return &Worker{
		cfg:       cfg,
		client:    client,
		scraper:   scraper,
		paginator: paginator,
		cache:     cache,
		log:       logger.ForWorker(),
		rnd:       mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

// Run processes every URL in order and returns the run summary. The run
// cache is updated per site; persisting it is the caller's concern so it
// also happens when Run stops early.
func (w *Worker) Run(ctx context.Context, urls []string) RunSummary {
	summary := RunSummary{RunNumber: w.cache.BeginRun()}

	start := time.Now()
	w.log.Info().
		Int("run", summary.RunNumber).
		Int("urls", len(urls)).
		Bool("downline_mode", w.cfg.DownlineEnabled).
		Msg("Run starting")

	for idx, rawURL := range urls {
		if ctx.Err() != nil {
			summary.Interrupted = true
			w.log.Warn().Int("processed", idx).Msg("Run interrupted")
			break
		}

		siteKey := siteurl.Normalize(rawURL)
		siteStart := time.Now()
		prev := w.cache.Previous(siteKey)

		result := w.processSite(ctx, siteKey)
		// Per-site timeouts also satisfy context error checks, so an
		// interrupt is only recognized when the run context itself is done.
		if result.err != nil && ctx.Err() != nil {
			summary.Interrupted = true
			w.log.Warn().Str("site", siteKey).Msg("Run interrupted mid-site")
			break
		}

		delta := runcache.Delta{
			Bonuses:   result.bonuses,
			Downlines: result.downlines,
		}
		if result.err != nil {
			delta.Errors = 1
			summary.FailedSites = append(summary.FailedSites, FailedSite{
				Site:   siteKey,
				Reason: scrapeerrors.ReasonOf(result.err),
			})
			w.log.Warn().
				Str("site", siteKey).
				Err(result.err).
				Msg("Site failed")
		}

		entry := w.cache.Update(siteKey, delta, result.coarse, result.claim)

		summary.URLsProcessed++
		summary.NewBonuses += result.bonuses
		summary.NewDownlines += result.downlines
		summary.NewErrors += delta.Errors
		summary.BonusAmount += result.amount

		w.log.Info().
			Str("site", siteKey).
			Int("run", summary.RunNumber).
			Dur("took", time.Since(siteStart)).
			Int("new_bonuses", entry.LastRunNewBonuses).
			Int("prev_bonuses", prev.LastRunNewBonuses).
			Int("total_bonuses", entry.CumulativeTotalBonuses).
			Int("new_downlines", entry.LastRunNewDownlines).
			Int("total_downlines", entry.CumulativeTotalDownlines).
			Int("new_errors", entry.LastRunNewErrors).
			Int("total_errors", entry.CumulativeTotalErrors).
			Interface("old_flags", entry.OldFlags).
			Interface("new_flags", entry.NewFlags).
			Msgf("Processed %d/%d", idx+1, len(urls))
	}

	w.log.Info().
		Int("run", summary.RunNumber).
		Dur("duration", time.Since(start)).
		Int("urls_processed", summary.URLsProcessed).
		Int("new_bonuses", summary.NewBonuses).
		Int("new_downlines", summary.NewDownlines).
		Int("new_errors", summary.NewErrors).
		Float64("bonus_amount", summary.BonusAmount).
		Int("failed_sites", len(summary.FailedSites)).
		Msg("Run finished")

	for _, failed := range summary.FailedSites {
		w.log.Warn().
			Str("site", failed.Site).
			Str("reason", failed.Reason).
			Msg("Failed site")
	}

	return summary
}

// processSite runs auth and one fetch for a single site key.
func (w *Worker) processSite(ctx context.Context, siteKey string) siteResult {
	auth, err := w.client.Login(ctx, siteKey, w.cfg.Mobile, w.cfg.Password)
	if err != nil {
		return siteResult{err: err}
	}

	// Jittered pause between auth and data fetch to stay under upstream
	// rate limits.
	if err := w.jitterSleep(ctx); err != nil {
		return siteResult{err: err}
	}

	if w.cfg.DownlineEnabled {
		count, err := w.paginator.Run(ctx, siteKey, auth)
		return siteResult{downlines: count, err: err}
	}

	fetched, err := w.scraper.Fetch(ctx, siteKey, auth)
	if err != nil {
		return siteResult{err: err}
	}
	return siteResult{
		bonuses: fetched.Count,
		amount:  fetched.TotalAmount,
		coarse:  fetched.Coarse,
		claim:   fetched.Claim,
	}
}

// jitterSleep pauses for a random duration between the configured min
// and max request delays, honoring cancellation.
func (w *Worker) jitterSleep(ctx context.Context) error {
	min := w.cfg.MinRequestDelay
	max := w.cfg.MaxRequestDelay
	if max <= 0 {
		return nil
	}
	delay := min
	if span := max - min; span > 0 {
		delay += time.Duration(w.rnd.Int63n(int64(span)))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
