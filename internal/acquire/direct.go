package acquire

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/agrimitra/mandi-cli/internal/model"
	"github.com/agrimitra/mandi-cli/internal/normalize"
	"github.com/agrimitra/mandi-cli/internal/report"
	"github.com/agrimitra/mandi-cli/internal/resilience"
)

// browserHeaders mimic a desktop browser; the report server rejects
// obviously non-browser clients.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
}

// DirectFetcher requests the report page straight from the source. Works
// from server-side runtimes; browsers get blocked by the source's CORS
// policy, which is what the proxy strategy is for.
type DirectFetcher struct {
	reportURL string
	client    *http.Client
	limiter   *rate.Limiter
}

// NewDirectFetcher creates a direct report-page fetcher.
func NewDirectFetcher(reportURL string, timeout time.Duration) *DirectFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DirectFetcher{
		reportURL: reportURL,
		client:    &http.Client{Timeout: timeout},
		// One request a second keeps us inside the source's tolerance.
		limiter: rate.NewLimiter(1, 2),
	}
}

func (d *DirectFetcher) Name() string    { return "direct" }
func (d *DirectFetcher) Available() bool { return true }

// Fetch downloads the report page and parses it.
func (d *DirectFetcher) Fetch(ctx context.Context, target model.AcquisitionTarget) (*model.AcquisitionResult, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "direct: rate limiter wait")
	}

	reqURL := d.reportURL + "?" + reportQuery(target, time.Now()).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "direct: create request")
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "direct: fetch report")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("direct: status %d", resp.StatusCode)
		if resilience.RetryableStatus(resp.StatusCode) {
			return nil, resilience.Transient(err, resp.StatusCode)
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, eris.Wrap(err, "direct: read body")
	}

	now := time.Now()
	records := normalize.Records(report.Parse(body), model.ProvenanceLiveScrape, now)

	return &model.AcquisitionResult{
		Success:   true,
		Records:   records,
		Source:    d.Name(),
		FetchedAt: now,
	}, nil
}
