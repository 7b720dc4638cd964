// Package prices is the public face of the acquisition pipeline. Callers
// ask it for market prices and always get data back: live records when any
// strategy delivers, placeholder records when everything upstream is down.
package prices

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/agrimitra/mandi-cli/internal/acquire"
	"github.com/agrimitra/mandi-cli/internal/fallback"
	"github.com/agrimitra/mandi-cli/internal/model"
	"github.com/agrimitra/mandi-cli/internal/store"
)

// Query describes what the caller wants prices for. Everything is
// optional; a zero Query means "today's prices, any region".
type Query struct {
	State       string   `json:"state,omitempty"`
	District    string   `json:"district,omitempty"`
	Commodities []string `json:"commodities,omitempty"`
	Date        string   `json:"date,omitempty"`
}

// Service acquires market prices through the strategy chain with batch
// orchestration and placeholder fallback. The zero value is not usable;
// construct with NewService.
type Service struct {
	chain *acquire.Chain
	batch *acquire.Batch
	store store.Store // nil disables history recording
}

// NewService wires the façade. store may be nil when persistence is not
// configured.
func NewService(chain *acquire.Chain, batch *acquire.Batch, st store.Store) *Service {
	return &Service{chain: chain, batch: batch, store: st}
}

// GetPrices returns market prices for the query. It never returns an
// error for upstream failures: when every live source fails the result
// carries placeholder records, and Success stays true because the caller
// got an answer. The only signal of degraded data is the provenance on
// the records and the "fallback" source.
func (s *Service) GetPrices(ctx context.Context, q Query) *model.AcquisitionResult {
	result := s.fetchLive(ctx, q)

	if result.Usable() {
		s.record(ctx, q.State, result)
		return result
	}

	zap.L().Warn("prices: all live sources failed, serving placeholder data",
		zap.String("state", q.State),
		zap.Strings("commodities", q.Commodities),
		zap.String("last_error", result.Error),
	)

	now := time.Now()
	return &model.AcquisitionResult{
		Success:   true,
		Records:   fallback.Prices(q.State, q.Commodities, now),
		Source:    "fallback",
		FetchedAt: now,
	}
}

// fetchLive dispatches commodity queries, one target per commodity, to
// the batch orchestrator; a region-only query is a single chain pass.
func (s *Service) fetchLive(ctx context.Context, q Query) *model.AcquisitionResult {
	if len(q.Commodities) > 0 {
		targets := make([]model.AcquisitionTarget, len(q.Commodities))
		for i, c := range q.Commodities {
			targets[i] = model.AcquisitionTarget{
				State:     q.State,
				District:  q.District,
				Commodity: c,
				Date:      q.Date,
			}
		}
		return s.batch.FetchBatch(ctx, targets)
	}

	return s.chain.FetchPrices(ctx, model.AcquisitionTarget{
		State:    q.State,
		District: q.District,
		Date:     q.Date,
	})
}

// record persists a live result best-effort. Store failures are logged
// and swallowed; history is a convenience, not part of the contract.
func (s *Service) record(ctx context.Context, state string, result *model.AcquisitionResult) {
	if s.store == nil {
		return
	}
	if _, err := s.store.SaveSnapshot(ctx, state, result); err != nil {
		zap.L().Warn("prices: failed to record snapshot",
			zap.String("source", result.Source),
			zap.Error(err),
		)
	}
}
