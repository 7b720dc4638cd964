// Package acquire obtains market prices from AGMARKNET through a chain of
// independent strategies. The source is unofficial, rate-limited, and
// frequently down, so every strategy is built to fail cheaply and hand off
// to the next one.
package acquire

import (
	"context"
	"net/url"
	"time"

	"github.com/agrimitra/mandi-cli/internal/model"
	"github.com/agrimitra/mandi-cli/internal/normalize"
)

// Fetcher is a single acquisition strategy. Strategies are interchangeable
// and polymorphic: the chain and the batch orchestrator treat them all the
// same way.
type Fetcher interface {
	// Fetch acquires prices for one target. A nil-or-empty result and an
	// error are equivalent failures to the chain.
	Fetch(ctx context.Context, target model.AcquisitionTarget) (*model.AcquisitionResult, error)
	// Name identifies the strategy in logs.
	Name() string
	// Available reports whether the strategy can currently be attempted.
	Available() bool
}

// reportQuery builds the report-page query string for a target. The date
// defaults to today, matching the report's own default view.
func reportQuery(target model.AcquisitionTarget, now time.Time) url.Values {
	q := url.Values{}
	if target.State != "" {
		q.Set("state", normalize.StateCode(target.State))
	}
	if target.District != "" {
		q.Set("district", target.District)
	}
	if target.Commodity != "" {
		q.Set("commodity", normalize.SourceName(target.Commodity))
	}
	date := target.Date
	if date == "" {
		date = now.Format("2006-01-02")
	}
	q.Set("date", date)
	return q
}

// failure builds a failed AcquisitionResult for a source.
func failure(source string, err error) *model.AcquisitionResult {
	res := &model.AcquisitionResult{
		Success:   false,
		Source:    source,
		FetchedAt: time.Now(),
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
