package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/agrimitra/mandi-cli/internal/acquire"
	"github.com/agrimitra/mandi-cli/internal/prices"
	"github.com/agrimitra/mandi-cli/internal/store"
	"github.com/agrimitra/mandi-cli/pkg/ogd"
	"github.com/agrimitra/mandi-cli/pkg/scraperapi"
)

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.DSN)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func initScraperClient() scraperapi.Client {
	return scraperapi.NewClient(cfg.Scraper.BaseURL,
		scraperapi.WithRequestTimeout(time.Duration(cfg.Scraper.TimeoutSecs)*time.Second),
		scraperapi.WithBatchTimeout(time.Duration(cfg.Scraper.BatchTimeoutSecs)*time.Second),
	)
}

// initService wires the full acquisition pipeline: proxy and direct
// report scraping first, then the backend scraping service, then the OGD
// API when a key is configured. st may be nil to skip history recording.
func initService(st store.Store) *prices.Service {
	sourceTimeout := time.Duration(cfg.Source.TimeoutSecs) * time.Second
	scraper := initScraperClient()

	chain := acquire.NewChain(
		acquire.NewProxyFetcher(cfg.Source.ReportURL, cfg.Source.ProxyURL, sourceTimeout),
		acquire.NewDirectFetcher(cfg.Source.ReportURL, sourceTimeout),
		acquire.NewScraperFetcher(scraper),
		acquire.NewOGDFetcher(
			ogd.NewClient(cfg.OGD.Key, cfg.OGD.ResourceID, ogd.WithBaseURL(cfg.OGD.BaseURL)),
			cfg.OGD.Key != "",
		),
	)
	batch := acquire.NewBatch(scraper, chain, cfg.Batch.ChunkSize, cfg.Batch.ChunkDelay())

	return prices.NewService(chain, batch, st)
}
