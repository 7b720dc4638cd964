package acquire

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/agrimitra/mandi-cli/internal/model"
	"github.com/agrimitra/mandi-cli/internal/normalize"
	"github.com/agrimitra/mandi-cli/internal/report"
	"github.com/agrimitra/mandi-cli/internal/resilience"
	"github.com/agrimitra/mandi-cli/pkg/scraperapi"
)

// defaultMarkets holds the biggest mandi per state, used when a target
// does not name one; the scraping service requires a market.
var defaultMarkets = map[string]string{
	"Maharashtra":    "Pune",
	"Punjab":         "Ludhiana",
	"Uttar Pradesh":  "Lucknow",
	"Haryana":        "Karnal",
	"Rajasthan":      "Jaipur",
	"Gujarat":        "Ahmedabad",
	"Karnataka":      "Bangalore",
	"Andhra Pradesh": "Hyderabad",
	"Tamil Nadu":     "Chennai",
	"West Bengal":    "Kolkata",
	"Madhya Pradesh": "Bhopal",
	"Bihar":          "Patna",
	"Odisha":         "Bhubaneswar",
}

// DefaultMarket returns the fallback mandi for a state.
func DefaultMarket(state string) string {
	if m, ok := defaultMarkets[state]; ok {
		return m
	}
	return "Pune"
}

// ScraperFetcher delegates the scrape to the backend scraping service.
// Most robust strategy, also the slowest: the service drives a real
// browser against the source.
type ScraperFetcher struct {
	client scraperapi.Client
	retry  resilience.Retry
}

// NewScraperFetcher wraps a scraping-service client as a Fetcher.
func NewScraperFetcher(client scraperapi.Client) *ScraperFetcher {
	return &ScraperFetcher{
		client: client,
		retry:  resilience.Retry{Attempts: 2, BaseDelay: time.Second, MaxDelay: 5 * time.Second},
	}
}

func (s *ScraperFetcher) Name() string { return "scraper-service" }

// Available probes the service's health endpoint; a timeout means the
// service is assumed down and the chain moves on without waiting 30s.
func (s *ScraperFetcher) Available() bool {
	return s.client.Health(context.Background())
}

// Fetch asks the service to scrape one (state, commodity, market) triple.
func (s *ScraperFetcher) Fetch(ctx context.Context, target model.AcquisitionTarget) (*model.AcquisitionResult, error) {
	if target.State == "" || target.Commodity == "" {
		return nil, eris.New("scraper-service: state and commodity are required")
	}

	commodity := normalize.SourceName(target.Commodity)
	market := DefaultMarket(target.State)

	env, err := resilience.Do(ctx, s.retry, "scraper-service request",
		func(ctx context.Context) (*scraperapi.Envelope, error) {
			return s.client.Request(ctx, target.State, commodity, market)
		})
	if err != nil {
		return nil, eris.Wrap(err, "scraper-service: request")
	}

	now := time.Now()
	records := normalize.Records(ServiceRecordsToRaw(env.Data), model.ProvenanceLiveScrape, now)

	return &model.AcquisitionResult{
		Success:   true,
		Records:   records,
		Source:    s.Name(),
		FetchedAt: now,
	}, nil
}

// ServiceRecordsToRaw converts service rows (string prices) to raw records.
func ServiceRecordsToRaw(rows []scraperapi.Record) []model.RawPriceRecord {
	raws := make([]model.RawPriceRecord, 0, len(rows))
	for _, r := range rows {
		unit := r.Unit
		if unit == "" {
			unit = "Quintal"
		}
		raws = append(raws, model.RawPriceRecord{
			State:       r.State,
			District:    r.District,
			Market:      r.Market,
			Commodity:   r.Commodity,
			Variety:     r.Variety,
			Grade:       r.Grade,
			ArrivalDate: r.Date,
			MinPrice:    report.ParsePrice(r.MinPrice),
			MaxPrice:    report.ParsePrice(r.MaxPrice),
			ModalPrice:  report.ParsePrice(r.ModalPrice),
			Unit:        unit,
		})
	}
	return raws
}
