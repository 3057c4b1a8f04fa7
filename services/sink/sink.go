// Package sink persists processed rows. The CSV sink is the primary,
// seedable store; additional publishers receive copies of appended rows.
package sink

import (
	"slapred/bonusscraper/internal/bonus"
	"slapred/bonusscraper/internal/downline"
	"slapred/bonusscraper/logger"
)

// Store is the full primary sink contract: bonus appends plus seedable
// downline appends.
type Store interface {
	WriteBonuses(rows []bonus.Bonus) error
	SeedDownlineKeys() (map[string]struct{}, error)
	AppendDownlines(rows []downline.Downline) error
}

// RowPublisher receives copies of rows appended to the primary store.
type RowPublisher interface {
	PublishBonuses(rows []bonus.Bonus) error
	PublishDownlines(rows []downline.Downline) error
	Close() error
}

// FanOut writes to a primary store and mirrors appended rows to any
// number of publishers. Publisher failures are logged but do not fail
// the append: the primary store is the source of truth.
type FanOut struct {
	primary    Store
	publishers []RowPublisher
	log        *logger.Logger
}

// NewFanOut creates a fan-out sink over a primary store.
func NewFanOut(primary Store, publishers ...RowPublisher) *FanOut {
	return &FanOut{
		primary:    primary,
		publishers: publishers,
		log:        logger.ForSink("fanout"),
	}
}

// WriteBonuses appends to the primary store and mirrors to publishers.
func (f *FanOut) WriteBonuses(rows []bonus.Bonus) error {
	if err := f.primary.WriteBonuses(rows); err != nil {
		return err
	}
	for _, p := range f.publishers {
		if err := p.PublishBonuses(rows); err != nil {
			f.log.Warn().Err(err).Msg("Secondary sink bonus publish failed")
		}
	}
	return nil
}

// SeedDownlineKeys seeds from the primary store only.
func (f *FanOut) SeedDownlineKeys() (map[string]struct{}, error) {
	return f.primary.SeedDownlineKeys()
}

// AppendDownlines appends to the primary store and mirrors to publishers.
func (f *FanOut) AppendDownlines(rows []downline.Downline) error {
	if err := f.primary.AppendDownlines(rows); err != nil {
		return err
	}
	for _, p := range f.publishers {
		if err := p.PublishDownlines(rows); err != nil {
			f.log.Warn().Err(err).Msg("Secondary sink downline publish failed")
		}
	}
	return nil
}

// Close closes all publishers.
func (f *FanOut) Close() {
	for _, p := range f.publishers {
		if err := p.Close(); err != nil {
			f.log.Warn().Err(err).Msg("Failed to close publisher")
		}
	}
}
