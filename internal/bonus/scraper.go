package bonus

import (
	"context"

	"slapred/bonusscraper/internal/api"
	"slapred/bonusscraper/logger"
	"slapred/bonusscraper/pkg/errors"
)

// SyncAPI fetches the raw bonus/promotion items for a session.
type SyncAPI interface {
	SyncData(ctx context.Context, auth *api.AuthData) ([]interface{}, error)
}

// Writer appends processed bonus rows to the output sink.
type Writer interface {
	WriteBonuses(rows []Bonus) error
}

// Summary aggregates one site's bonus fetch.
type Summary struct {
	Count       int
	TotalAmount float64
	Coarse      CoarseFlags
	Claim       ClaimFlags
}

// Scraper fetches, classifies, and persists the bonuses of one site.
// Rows are never deduplicated: every fetch re-appends the currently
// active bonuses.
type Scraper struct {
	client SyncAPI
	sink   Writer
	log    *logger.Logger
}

// NewScraper creates a bonus scraper writing to sink.
func NewScraper(client SyncAPI, sink Writer) *Scraper {
	return &Scraper{
		client: client,
		sink:   sink,
		log:    logger.ForWorker(),
	}
}

// Fetch retrieves and processes all bonuses for an authenticated site.
// Upstream failures propagate as typed errors; a sink write failure is
// escalated because dropping fetched data silently is worse.
func (s *Scraper) Fetch(ctx context.Context, siteURL string, auth *api.AuthData) (*Summary, error) {
	items, err := s.client.SyncData(ctx, auth)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	if len(items) == 0 {
		s.log.Info().Str("site", siteURL).Int("count", 0).Msg("No bonus data")
		return summary, nil
	}

	rows := make([]Bonus, 0, len(items))
	for _, item := range items {
		data, ok := item.(map[string]interface{})
		if !ok {
			s.log.Warn().Str("site", siteURL).Msg("Skipping non-object bonus item")
			continue
		}

		b := FromRaw(data, siteURL, auth.MerchantName)
		rows = append(rows, *b)

		summary.Coarse.Observe(b.Name)
		summary.Claim.Observe(b)
		summary.TotalAmount += b.Amount
	}
	summary.Count = len(rows)

	if len(rows) > 0 {
		if err := s.sink.WriteBonuses(rows); err != nil {
			return nil, errors.NewSink(siteURL, "failed to append bonus rows", err)
		}
	}

	s.log.Info().
		Str("site", siteURL).
		Int("count", summary.Count).
		Float64("amount", summary.TotalAmount).
		Msg("Bonus data processed")
	return summary, nil
}
