package acquire

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/agrimitra/mandi-cli/internal/model"
	"github.com/agrimitra/mandi-cli/internal/normalize"
	"github.com/agrimitra/mandi-cli/internal/report"
	"github.com/agrimitra/mandi-cli/internal/resilience"
	"github.com/agrimitra/mandi-cli/pkg/ogd"
)

// OGDFetcher reads prices from the data.gov.in OGD API. The data lags the
// live report by a day or two, so this strategy runs last in the chain;
// records it yields carry the live-api provenance.
type OGDFetcher struct {
	client  ogd.Client
	enabled bool
	retry   resilience.Retry
}

// NewOGDFetcher wraps an OGD client as a Fetcher. Pass enabled=false when
// no API key is configured; the chain then skips this strategy.
func NewOGDFetcher(client ogd.Client, enabled bool) *OGDFetcher {
	return &OGDFetcher{
		client:  client,
		enabled: enabled,
		retry:   resilience.Retry{Attempts: 2, BaseDelay: time.Second, MaxDelay: 5 * time.Second},
	}
}

func (o *OGDFetcher) Name() string    { return "ogd-api" }
func (o *OGDFetcher) Available() bool { return o.enabled }

// Fetch queries the OGD resource for the target's region and commodity.
func (o *OGDFetcher) Fetch(ctx context.Context, target model.AcquisitionTarget) (*model.AcquisitionResult, error) {
	filters := ogd.Filters{
		State:    target.State,
		District: target.District,
	}
	if target.Commodity != "" {
		filters.Commodity = normalize.SourceName(target.Commodity)
	}

	rows, err := resilience.Do(ctx, o.retry, "ogd records",
		func(ctx context.Context) ([]ogd.Record, error) {
			return o.client.Records(ctx, filters)
		})
	if err != nil {
		return nil, eris.Wrap(err, "ogd-api: records")
	}

	now := time.Now()
	raws := make([]model.RawPriceRecord, 0, len(rows))
	for _, r := range rows {
		raws = append(raws, model.RawPriceRecord{
			State:       r.State,
			District:    r.District,
			Market:      r.Market,
			Commodity:   r.Commodity,
			Variety:     r.Variety,
			Grade:       r.Grade,
			ArrivalDate: r.ArrivalDate,
			MinPrice:    report.ParsePrice(r.MinPrice),
			MaxPrice:    report.ParsePrice(r.MaxPrice),
			ModalPrice:  report.ParsePrice(r.ModalPrice),
			// OGD quotes are per quintal; the resource has no unit field.
			Unit: "Quintal",
		})
	}
	records := normalize.Records(raws, model.ProvenanceLiveAPI, now)

	return &model.AcquisitionResult{
		Success:   true,
		Records:   records,
		Source:    o.Name(),
		FetchedAt: now,
	}, nil
}
