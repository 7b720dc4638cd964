package acquire

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/agrimitra/mandi-cli/internal/model"
)

// Chain tries acquisition strategies in priority order, returning the
// first one that yields usable data. Strategies run strictly one at a
// time: the source is rate-limited and shared, so racing them would burn
// quota for nothing.
type Chain struct {
	fetchers []Fetcher
}

// NewChain creates a Chain. Order matters: callers pass the cheapest,
// lowest-latency strategies first.
func NewChain(fetchers ...Fetcher) *Chain {
	return &Chain{fetchers: fetchers}
}

// FetchPrices tries each strategy until one returns a successful result
// with at least one record. A strategy that errors, times out, or comes
// back empty just advances the chain. When every strategy is exhausted
// the result is a failure; substituting placeholder data is the caller's
// decision, not the chain's.
func (c *Chain) FetchPrices(ctx context.Context, target model.AcquisitionTarget) *model.AcquisitionResult {
	var lastErr error
	for _, f := range c.fetchers {
		if !f.Available() {
			zap.L().Debug("acquire: strategy unavailable, skipping",
				zap.String("strategy", f.Name()),
			)
			continue
		}

		start := time.Now()
		result, err := f.Fetch(ctx, target)
		if err != nil {
			lastErr = err
			zap.L().Warn("acquire: strategy failed, trying next",
				zap.String("strategy", f.Name()),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err),
			)
			continue
		}
		if !result.Usable() {
			zap.L().Debug("acquire: strategy returned no records, trying next",
				zap.String("strategy", f.Name()),
			)
			continue
		}

		zap.L().Info("acquire: strategy succeeded",
			zap.String("strategy", f.Name()),
			zap.Int("records", len(result.Records)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return result
	}

	zap.L().Warn("acquire: all strategies exhausted",
		zap.String("state", target.State),
		zap.String("commodity", target.Commodity),
		zap.Error(lastErr),
	)
	return failure("chain", lastErr)
}
