package downline

import (
	"context"
	"time"

	"slapred/bonusscraper/internal/api"
	"slapred/bonusscraper/logger"
	"slapred/bonusscraper/pkg/errors"
)

// DownlineAPI fetches one raw downline page for a session.
type DownlineAPI interface {
	GetDownline(ctx context.Context, auth *api.AuthData, pageIndex int) (interface{}, error)
}

// Store appends downline rows and seeds the dedup key set from rows
// already written.
type Store interface {
	SeedDownlineKeys() (map[string]struct{}, error)
	AppendDownlines(rows []Downline) error
}

// Paginator walks the downline pages of one site in page-index order,
// appending only previously unseen rows.
type Paginator struct {
	client    DownlineAPI
	sink      Store
	pageDelay time.Duration
	log       *logger.Logger
}

// NewPaginator creates a paginator. pageDelay is the politeness pause
// between page requests.
func NewPaginator(client DownlineAPI, sink Store, pageDelay time.Duration) *Paginator {
	return &Paginator{
		client:    client,
		sink:      sink,
		pageDelay: pageDelay,
		log:       logger.ForWorker(),
	}
}

// Run fetches pages starting at index 0 until a page contributes no new
// rows (the success terminal), the downline field stops being a list
// (also a natural end), or a call fails. Returns the count of newly
// appended rows.
func (p *Paginator) Run(ctx context.Context, siteURL string, auth *api.AuthData) (int, error) {
	seen, err := p.sink.SeedDownlineKeys()
	if err != nil {
		p.log.Warn().Err(err).Str("site", siteURL).Msg("Failed to seed downline keys, starting empty")
		seen = make(map[string]struct{})
	}

	totalNew := 0
	for pageIndex := 0; ; pageIndex++ {
		raw, err := p.client.GetDownline(ctx, auth, pageIndex)
		if err != nil {
			return totalNew, err
		}

		list, ok := raw.([]interface{})
		if !ok {
			p.log.Warn().Str("site", siteURL).Int("page", pageIndex).Msg("Downline data not a list, stopping")
			break
		}

		var newRows []Downline
		for _, item := range list {
			data, isObj := item.(map[string]interface{})
			if !isObj {
				continue
			}
			row := FromRaw(data, siteURL)
			key := row.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			newRows = append(newRows, row)
		}

		// A page of only already-seen rows ends pagination even if more
		// pages notionally exist upstream.
		if len(newRows) == 0 {
			break
		}

		if err := p.sink.AppendDownlines(newRows); err != nil {
			return totalNew, errors.NewSink(siteURL, "failed to append downline rows", err)
		}
		totalNew += len(newRows)

		p.log.Debug().
			Str("site", siteURL).
			Int("page", pageIndex).
			Int("new_rows", len(newRows)).
			Msg("Downline page appended")

		if err := sleepCtx(ctx, p.pageDelay); err != nil {
			return totalNew, err
		}
	}

	p.log.Info().Str("site", siteURL).Int("new_downlines", totalNew).Msg("Downline data processed")
	return totalNew, nil
}

// sleepCtx pauses for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
