package acquire

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrimitra/mandi-cli/internal/model"
)

// mockFetcher implements Fetcher for testing.
type mockFetcher struct {
	name      string
	available bool
	result    *model.AcquisitionResult
	err       error
	calls     int
}

func (m *mockFetcher) Name() string    { return m.name }
func (m *mockFetcher) Available() bool { return m.available }
func (m *mockFetcher) Fetch(_ context.Context, _ model.AcquisitionTarget) (*model.AcquisitionResult, error) {
	m.calls++
	return m.result, m.err
}

func successResult(source string, n int) *model.AcquisitionResult {
	records := make([]model.NormalizedPriceRecord, n)
	for i := range records {
		records[i] = model.NormalizedPriceRecord{
			Commodity: "Wheat", Price: 2450,
			Provenance: model.ProvenanceLiveScrape,
		}
	}
	return &model.AcquisitionResult{
		Success: true, Records: records, Source: source, FetchedAt: time.Now(),
	}
}

func TestChain_FirstSuccessShortCircuits(t *testing.T) {
	f1 := &mockFetcher{name: "f1", available: true, err: errors.New("f1 down")}
	f2 := &mockFetcher{name: "f2", available: true, err: errors.New("f2 down")}
	f3 := &mockFetcher{name: "f3", available: true, result: successResult("f3", 2)}
	f4 := &mockFetcher{name: "f4", available: true, result: successResult("f4", 9)}

	chain := NewChain(f1, f2, f3, f4)
	result := chain.FetchPrices(context.Background(), model.AcquisitionTarget{Commodity: "Wheat"})

	require.True(t, result.Usable())
	assert.Equal(t, "f3", result.Source)
	assert.Len(t, result.Records, 2)
	assert.Equal(t, 1, f1.calls)
	assert.Equal(t, 1, f2.calls)
	assert.Equal(t, 1, f3.calls)
	assert.Equal(t, 0, f4.calls, "chain must stop at the first success")
}

func TestChain_EmptyResultAdvancesChain(t *testing.T) {
	empty := &mockFetcher{name: "empty", available: true, result: successResult("empty", 0)}
	full := &mockFetcher{name: "full", available: true, result: successResult("full", 1)}

	chain := NewChain(empty, full)
	result := chain.FetchPrices(context.Background(), model.AcquisitionTarget{})

	require.True(t, result.Usable())
	assert.Equal(t, "full", result.Source)
}

func TestChain_SkipsUnavailable(t *testing.T) {
	down := &mockFetcher{name: "down", available: false, result: successResult("down", 5)}
	up := &mockFetcher{name: "up", available: true, result: successResult("up", 1)}

	chain := NewChain(down, up)
	result := chain.FetchPrices(context.Background(), model.AcquisitionTarget{})

	assert.Equal(t, "up", result.Source)
	assert.Equal(t, 0, down.calls)
}

func TestChain_AllFail(t *testing.T) {
	f1 := &mockFetcher{name: "f1", available: true, err: errors.New("boom")}
	f2 := &mockFetcher{name: "f2", available: true, result: successResult("f2", 0)}

	chain := NewChain(f1, f2)
	result := chain.FetchPrices(context.Background(), model.AcquisitionTarget{})

	assert.False(t, result.Success)
	assert.Empty(t, result.Records)
	assert.Equal(t, "chain", result.Source)
	assert.Contains(t, result.Error, "boom")
}

func TestChain_NoFetchers(t *testing.T) {
	chain := NewChain()
	result := chain.FetchPrices(context.Background(), model.AcquisitionTarget{})
	assert.False(t, result.Success)
}
