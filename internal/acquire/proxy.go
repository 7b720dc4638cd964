package acquire

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/agrimitra/mandi-cli/internal/model"
	"github.com/agrimitra/mandi-cli/internal/normalize"
	"github.com/agrimitra/mandi-cli/internal/report"
	"github.com/agrimitra/mandi-cli/internal/resilience"
)

// ProxyFetcher requests the report page through a public CORS relay. The
// relay wraps the page in a JSON envelope with the HTML under "contents".
type ProxyFetcher struct {
	reportURL string
	proxyURL  string
	client    *http.Client
	limiter   *rate.Limiter
}

type proxyEnvelope struct {
	Contents string `json:"contents"`
}

// NewProxyFetcher creates a relay-backed fetcher.
func NewProxyFetcher(reportURL, proxyURL string, timeout time.Duration) *ProxyFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ProxyFetcher{
		reportURL: reportURL,
		proxyURL:  proxyURL,
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(1, 2),
	}
}

func (p *ProxyFetcher) Name() string    { return "proxy" }
func (p *ProxyFetcher) Available() bool { return true }

// Fetch downloads the report page via the relay and parses it.
func (p *ProxyFetcher) Fetch(ctx context.Context, target model.AcquisitionTarget) (*model.AcquisitionResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "proxy: rate limiter wait")
	}

	pageURL := p.reportURL + "?" + reportQuery(target, time.Now()).Encode()
	reqURL := p.proxyURL + "?url=" + url.QueryEscape(pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "proxy: create request")
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "proxy: fetch via relay")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("proxy: relay status %d", resp.StatusCode)
		if resilience.RetryableStatus(resp.StatusCode) {
			return nil, resilience.Transient(err, resp.StatusCode)
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, eris.Wrap(err, "proxy: read body")
	}

	var env proxyEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "proxy: unmarshal relay envelope")
	}
	if env.Contents == "" {
		return nil, eris.New("proxy: relay returned empty contents")
	}

	now := time.Now()
	records := normalize.Records(report.Parse([]byte(env.Contents)), model.ProvenanceLiveScrape, now)

	return &model.AcquisitionResult{
		Success:   true,
		Records:   records,
		Source:    p.Name(),
		FetchedAt: now,
	}, nil
}
