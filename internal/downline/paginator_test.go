package downline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slapred/bonusscraper/internal/api"
	scrapeerrors "slapred/bonusscraper/pkg/errors"
)

type stubDownlineAPI struct {
	pages []interface{}
	calls int
	errAt int
	err   error
}

func (s *stubDownlineAPI) GetDownline(_ context.Context, _ *api.AuthData, pageIndex int) (interface{}, error) {
	s.calls++
	if s.err != nil && pageIndex == s.errAt {
		return nil, s.err
	}
	if pageIndex < len(s.pages) {
		return s.pages[pageIndex], nil
	}
	// Sites repeat the last page forever once exhausted.
	return s.pages[len(s.pages)-1], nil
}

type stubStore struct {
	seed      map[string]struct{}
	seedErr   error
	appended  []Downline
	appendErr error
}

func (s *stubStore) SeedDownlineKeys() (map[string]struct{}, error) {
	if s.seedErr != nil {
		return nil, s.seedErr
	}
	if s.seed == nil {
		return make(map[string]struct{}), nil
	}
	return s.seed, nil
}

func (s *stubStore) AppendDownlines(rows []Downline) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, rows...)
	return nil
}

func row(id string) map[string]interface{} {
	return map[string]interface{}{
		"id":               id,
		"name":             "player" + id,
		"count":            1,
		"amount":           10,
		"registerDateTime": "2024-01-01 00:00:00",
	}
}

func page(ids ...string) interface{} {
	items := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		items = append(items, row(id))
	}
	return items
}

func testAuth() *api.AuthData {
	return &api.AuthData{MerchantID: "5", MerchantName: "Example"}
}

func TestPaginatorStopsOnRepeatedPage(t *testing.T) {
	client := &stubDownlineAPI{pages: []interface{}{
		page("1", "2"),
		page("3"),
	}}
	store := &stubStore{}
	p := NewPaginator(client, store, 0)

	n, err := p.Run(context.Background(), "https://example.com", testAuth())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, store.appended, 3)
	// Pages 0 and 1 carry new rows; page 2 repeats page 1 and ends the walk.
	assert.Equal(t, 3, client.calls)
}

func TestPaginatorSkipsSeededRows(t *testing.T) {
	known := FromRaw(row("1"), "https://example.com")
	client := &stubDownlineAPI{pages: []interface{}{page("1", "2")}}
	store := &stubStore{seed: map[string]struct{}{known.Key(): {}}}
	p := NewPaginator(client, store, 0)

	n, err := p.Run(context.Background(), "https://example.com", testAuth())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, store.appended, 1)
	assert.Equal(t, "2", store.appended[0].ID)
}

func TestPaginatorDedupsWithinRun(t *testing.T) {
	client := &stubDownlineAPI{pages: []interface{}{page("1", "1", "2")}}
	store := &stubStore{}
	p := NewPaginator(client, store, 0)

	n, err := p.Run(context.Background(), "https://example.com", testAuth())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPaginatorStopsOnNonListPayload(t *testing.T) {
	client := &stubDownlineAPI{pages: []interface{}{
		page("1"),
		map[string]interface{}{"unexpected": true},
	}}
	store := &stubStore{}
	p := NewPaginator(client, store, 0)

	n, err := p.Run(context.Background(), "https://example.com", testAuth())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPaginatorEmptyFirstPage(t *testing.T) {
	client := &stubDownlineAPI{pages: []interface{}{page()}}
	store := &stubStore{}
	p := NewPaginator(client, store, 0)

	n, err := p.Run(context.Background(), "https://example.com", testAuth())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, store.appended)
	assert.Equal(t, 1, client.calls)
}

func TestPaginatorPropagatesFetchError(t *testing.T) {
	apiErr := scrapeerrors.NewAPI("https://example.com", "getDownline failed", nil)
	client := &stubDownlineAPI{pages: []interface{}{page("1"), page("2")}, err: apiErr, errAt: 1}
	store := &stubStore{}
	p := NewPaginator(client, store, 0)

	n, err := p.Run(context.Background(), "https://example.com", testAuth())
	assert.Equal(t, apiErr, err)
	// Page 0 was persisted before the failure.
	assert.Equal(t, 1, n)
}

func TestPaginatorEscalatesAppendError(t *testing.T) {
	client := &stubDownlineAPI{pages: []interface{}{page("1")}}
	store := &stubStore{appendErr: fmt.Errorf("disk full")}
	p := NewPaginator(client, store, 0)

	_, err := p.Run(context.Background(), "https://example.com", testAuth())
	require.Error(t, err)
	assert.Equal(t, scrapeerrors.ErrorTypeSink, scrapeerrors.TypeOf(err))
}

func TestPaginatorSeedFailureStartsEmpty(t *testing.T) {
	client := &stubDownlineAPI{pages: []interface{}{page("1")}}
	store := &stubStore{seedErr: fmt.Errorf("corrupt csv")}
	p := NewPaginator(client, store, 0)

	n, err := p.Run(context.Background(), "https://example.com", testAuth())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
