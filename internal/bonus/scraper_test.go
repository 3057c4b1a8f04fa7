package bonus

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slapred/bonusscraper/internal/api"
	scrapeerrors "slapred/bonusscraper/pkg/errors"
)

type stubSyncAPI struct {
	items []interface{}
	err   error
}

func (s *stubSyncAPI) SyncData(_ context.Context, _ *api.AuthData) ([]interface{}, error) {
	return s.items, s.err
}

type stubWriter struct {
	written [][]Bonus
	err     error
}

func (w *stubWriter) WriteBonuses(rows []Bonus) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, rows)
	return nil
}

func testAuth() *api.AuthData {
	return &api.AuthData{MerchantID: "5", MerchantName: "Example Casino"}
}

func TestScraperFetch(t *testing.T) {
	client := &stubSyncAPI{items: []interface{}{
		map[string]interface{}{"id": "1", "name": "Commission Bonus", "amount": "30", "claimConfig": `["AUTO_CLAIM"]`},
		map[string]interface{}{"id": "2", "name": "Welcome Bonus", "amount": 20.0},
		"not an object",
	}}
	sink := &stubWriter{}
	s := NewScraper(client, sink)

	summary, err := s.Fetch(context.Background(), "https://example.com", testAuth())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, 50.0, summary.TotalAmount)
	assert.Equal(t, CoarseFlags{C: true, O: true}, summary.Coarse)
	assert.Equal(t, ClaimFlags{A: true}, summary.Claim)

	require.Len(t, sink.written, 1)
	require.Len(t, sink.written[0], 2)
	assert.Equal(t, "Example Casino", sink.written[0][0].MerchantName)
	assert.Equal(t, "https://example.com", sink.written[0][0].URL)
}

func TestScraperFetchEmpty(t *testing.T) {
	sink := &stubWriter{}
	s := NewScraper(&stubSyncAPI{}, sink)

	summary, err := s.Fetch(context.Background(), "https://example.com", testAuth())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Count)
	assert.Empty(t, sink.written)
}

func TestScraperFetchAPIError(t *testing.T) {
	apiErr := scrapeerrors.NewAPI("https://example.com", "syncData failed", nil)
	s := NewScraper(&stubSyncAPI{err: apiErr}, &stubWriter{})

	_, err := s.Fetch(context.Background(), "https://example.com", testAuth())
	assert.Equal(t, apiErr, err)
}

func TestScraperFetchSinkError(t *testing.T) {
	client := &stubSyncAPI{items: []interface{}{
		map[string]interface{}{"id": "1", "name": "Bonus"},
	}}
	s := NewScraper(client, &stubWriter{err: fmt.Errorf("disk full")})

	_, err := s.Fetch(context.Background(), "https://example.com", testAuth())
	require.Error(t, err)
	assert.Equal(t, scrapeerrors.ErrorTypeSink, scrapeerrors.TypeOf(err))
	assert.Contains(t, err.Error(), "disk full")
}
