package acquire

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agrimitra/mandi-cli/internal/model"
	"github.com/agrimitra/mandi-cli/internal/normalize"
	"github.com/agrimitra/mandi-cli/pkg/scraperapi"
)

// Batch acquires prices for many targets. The primary path is one bulk
// request to the scraping service; when that fails it degrades to
// per-target chain fetches in small chunks with a pause between them, so
// the upstream source never sees more than chunkSize concurrent requests.
type Batch struct {
	scraper    scraperapi.Client // nil disables the bulk path
	chain      *Chain
	chunkSize  int
	chunkDelay time.Duration
}

// NewBatch creates a batch orchestrator. chunkSize bounds concurrent
// fallback fetches; chunkDelay is the politeness pause between chunks.
func NewBatch(scraper scraperapi.Client, chain *Chain, chunkSize int, chunkDelay time.Duration) *Batch {
	if chunkSize <= 0 {
		chunkSize = 2
	}
	if chunkDelay < 0 {
		chunkDelay = 0
	}
	return &Batch{
		scraper:    scraper,
		chain:      chain,
		chunkSize:  chunkSize,
		chunkDelay: chunkDelay,
	}
}

// FetchBatch acquires prices for all targets and aggregates the records.
// Individual target failures cost only their own records; once the
// fallback path has run the aggregate result reports success even when
// every target came back empty, because the orchestrator's contract is to
// maximize returned data, not to surface per-target errors.
func (b *Batch) FetchBatch(ctx context.Context, targets []model.AcquisitionTarget) *model.AcquisitionResult {
	if len(targets) == 0 {
		return failure("batch", nil)
	}

	if result := b.tryBulk(ctx, targets); result.Usable() {
		return result
	}

	zap.L().Info("acquire: bulk path failed, falling back to chunked fetches",
		zap.Int("targets", len(targets)),
		zap.Int("chunk_size", b.chunkSize),
	)
	return b.fetchChunked(ctx, targets)
}

// tryBulk sends every target in one request to the scraping service.
func (b *Batch) tryBulk(ctx context.Context, targets []model.AcquisitionTarget) *model.AcquisitionResult {
	if b.scraper == nil {
		return failure("scraper-service-batch", nil)
	}
	if !b.scraper.Health(ctx) {
		zap.L().Debug("acquire: scraping service unhealthy, skipping bulk path")
		return failure("scraper-service-batch", nil)
	}

	reqs := make([]scraperapi.BatchTarget, 0, len(targets))
	for _, t := range targets {
		if t.State == "" || t.Commodity == "" {
			continue
		}
		reqs = append(reqs, scraperapi.BatchTarget{
			State:     t.State,
			Commodity: normalize.SourceName(t.Commodity),
			Market:    DefaultMarket(t.State),
		})
	}
	if len(reqs) == 0 {
		return failure("scraper-service-batch", nil)
	}

	env, err := b.scraper.Batch(ctx, reqs)
	if err != nil {
		zap.L().Warn("acquire: bulk batch request failed", zap.Error(err))
		return failure("scraper-service-batch", err)
	}

	now := time.Now()
	records := normalize.Records(ServiceRecordsToRaw(env.Data), model.ProvenanceLiveScrape, now)
	return &model.AcquisitionResult{
		Success:   true,
		Records:   records,
		Source:    "scraper-service-batch",
		FetchedAt: now,
	}
}

// fetchChunked walks the targets in fixed-size chunks. Members of a chunk
// run concurrently; chunks never overlap, and a pause separates them to
// stay under the source's rate limit.
func (b *Batch) fetchChunked(ctx context.Context, targets []model.AcquisitionTarget) *model.AcquisitionResult {
	var (
		mu      sync.Mutex
		records []model.NormalizedPriceRecord
	)

	for start := 0; start < len(targets); start += b.chunkSize {
		end := min(start+b.chunkSize, len(targets))
		chunk := targets[start:end]

		g, gCtx := errgroup.WithContext(ctx)
		for _, target := range chunk {
			g.Go(func() error {
				result := b.chain.FetchPrices(gCtx, target)
				if result.Usable() {
					mu.Lock()
					records = append(records, result.Records...)
					mu.Unlock()
				}
				// A failed target contributes nothing; never fail the batch.
				return nil
			})
		}
		_ = g.Wait()

		if end < len(targets) {
			timer := time.NewTimer(b.chunkDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return &model.AcquisitionResult{
					Success:   true,
					Records:   records,
					Source:    "chunked-individual",
					FetchedAt: time.Now(),
					Error:     ctx.Err().Error(),
				}
			case <-timer.C:
			}
		}
	}

	return &model.AcquisitionResult{
		Success:   true,
		Records:   records,
		Source:    "chunked-individual",
		FetchedAt: time.Now(),
	}
}
