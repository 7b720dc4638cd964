package prices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrimitra/mandi-cli/internal/acquire"
	"github.com/agrimitra/mandi-cli/internal/model"
	"github.com/agrimitra/mandi-cli/internal/store"
)

type stubFetcher struct {
	result *model.AcquisitionResult
	err    error
	calls  int
}

func (f *stubFetcher) Name() string    { return "stub" }
func (f *stubFetcher) Available() bool { return true }
func (f *stubFetcher) Fetch(_ context.Context, _ model.AcquisitionTarget) (*model.AcquisitionResult, error) {
	f.calls++
	return f.result, f.err
}

type stubStore struct {
	saved    []*model.AcquisitionResult
	saveErr  error
	snapshot *store.Snapshot
}

func (s *stubStore) SaveSnapshot(_ context.Context, _ string, result *model.AcquisitionResult) (*store.Snapshot, error) {
	s.saved = append(s.saved, result)
	return s.snapshot, s.saveErr
}
func (s *stubStore) ListSnapshots(_ context.Context, _ int) ([]store.Snapshot, error) {
	return nil, nil
}
func (s *stubStore) History(_ context.Context, _ store.HistoryFilter) ([]model.NormalizedPriceRecord, error) {
	return nil, nil
}
func (s *stubStore) Prune(_ context.Context, _ time.Time) (int, error) { return 0, nil }
func (s *stubStore) Migrate(_ context.Context) error                   { return nil }
func (s *stubStore) Close() error                                      { return nil }

func liveResult(commodities ...string) *model.AcquisitionResult {
	records := make([]model.NormalizedPriceRecord, len(commodities))
	for i, c := range commodities {
		records[i] = model.NormalizedPriceRecord{
			Commodity:  c,
			Price:      2450,
			Provenance: model.ProvenanceLiveScrape,
		}
	}
	return &model.AcquisitionResult{
		Success:   true,
		Records:   records,
		Source:    "stub",
		FetchedAt: time.Now(),
	}
}

func newService(f acquire.Fetcher, st store.Store) *Service {
	chain := acquire.NewChain(f)
	batch := acquire.NewBatch(nil, chain, 2, time.Millisecond)
	return NewService(chain, batch, st)
}

func TestService_RegionOnlyQueryUsesChain(t *testing.T) {
	fetcher := &stubFetcher{result: liveResult("Wheat")}
	st := &stubStore{}
	svc := newService(fetcher, st)

	result := svc.GetPrices(context.Background(), Query{State: "Maharashtra"})

	require.True(t, result.Usable())
	assert.Equal(t, "stub", result.Source)
	assert.Equal(t, 1, fetcher.calls)
	require.Len(t, st.saved, 1, "live results are recorded")
}

func TestService_SingleCommodityUsesBatch(t *testing.T) {
	// Any non-empty commodity list goes through the batch orchestrator,
	// even a list of one.
	fetcher := &stubFetcher{result: liveResult("Wheat")}
	st := &stubStore{}
	svc := newService(fetcher, st)

	result := svc.GetPrices(context.Background(), Query{State: "Maharashtra", Commodities: []string{"Wheat"}})

	require.True(t, result.Usable())
	assert.Equal(t, "chunked-individual", result.Source)
	assert.Equal(t, 1, fetcher.calls)
	require.Len(t, st.saved, 1)
}

func TestService_MultiCommodityUsesBatch(t *testing.T) {
	fetcher := &stubFetcher{result: liveResult("Wheat")}
	svc := newService(fetcher, nil)

	result := svc.GetPrices(context.Background(), Query{
		State:       "Punjab",
		Commodities: []string{"Wheat", "Rice", "Onion"},
	})

	require.True(t, result.Usable())
	assert.Equal(t, "chunked-individual", result.Source)
	assert.Equal(t, 3, fetcher.calls, "one chain pass per commodity")
}

func TestService_FallsBackToPlaceholder(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("upstream down")}
	st := &stubStore{}
	svc := newService(fetcher, st)

	result := svc.GetPrices(context.Background(), Query{State: "Punjab", Commodities: []string{"Wheat"}})

	require.True(t, result.Success, "the facade never fails")
	assert.Equal(t, "fallback", result.Source)
	require.NotEmpty(t, result.Records)
	for _, r := range result.Records {
		assert.Equal(t, model.ProvenancePlaceholder, r.Provenance)
	}
	assert.Empty(t, st.saved, "placeholder data is never persisted")
}

func TestService_EmptyQueryReturnsFullFallbackTable(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("down")}
	svc := newService(fetcher, nil)

	result := svc.GetPrices(context.Background(), Query{})

	require.True(t, result.Success)
	assert.Equal(t, "fallback", result.Source)
	assert.NotEmpty(t, result.Records)
}

func TestService_StoreFailureDoesNotPropagate(t *testing.T) {
	fetcher := &stubFetcher{result: liveResult("Wheat")}
	st := &stubStore{saveErr: errors.New("disk full")}
	svc := newService(fetcher, st)

	result := svc.GetPrices(context.Background(), Query{Commodities: []string{"Wheat"}})

	require.True(t, result.Usable())
	assert.Equal(t, "chunked-individual", result.Source)
}
