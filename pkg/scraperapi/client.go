// Package scraperapi provides a client for the AGMARKNET backend scraping
// service, a Selenium-driven sidecar that returns semi-structured price
// data as JSON.
package scraperapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the scraping-service operations.
type Client interface {
	// Health probes the service. A timeout or refused connection means
	// "assume unavailable", reported as false without an error.
	Health(ctx context.Context) bool
	// Request scrapes prices for one (state, commodity, market) triple.
	Request(ctx context.Context, state, commodity, market string) (*Envelope, error)
	// Batch scrapes many targets in one server-side pass.
	Batch(ctx context.Context, targets []BatchTarget) (*Envelope, error)
	// Markets lists the markets the service knows for a state.
	Markets(ctx context.Context, state string) ([]string, error)
	// Commodities lists the commodities the service can scrape.
	Commodities(ctx context.Context) ([]string, error)
}

// Record is one scraped price row. The service reports prices as strings.
type Record struct {
	State      string `json:"State"`
	District   string `json:"District"`
	Market     string `json:"Market"`
	Commodity  string `json:"Commodity"`
	Variety    string `json:"Variety"`
	Grade      string `json:"Grade"`
	Date       string `json:"Date"`
	MinPrice   string `json:"Min Price"`
	MaxPrice   string `json:"Max Price"`
	ModalPrice string `json:"Modal Price"`
	Unit       string `json:"Unit"`
}

// Envelope is the service's uniform response shape.
type Envelope struct {
	Success bool     `json:"success"`
	Data    []Record `json:"data"`
	Error   string   `json:"error,omitempty"`
}

// BatchTarget is one entry of a bulk scrape request.
type BatchTarget struct {
	State     string `json:"state"`
	Commodity string `json:"commodity"`
	Market    string `json:"market,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type listResponse struct {
	Success     bool     `json:"success"`
	Markets     []string `json:"markets,omitempty"`
	Commodities []string `json:"commodities,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Option configures the scraperapi client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithBatchTimeout sets the timeout for bulk scrape requests. Bulk scrapes
// drive a real browser per target and are slow; the default is 90s.
func WithBatchTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.batchTimeout = d
	}
}

// WithRequestTimeout sets the timeout for single scrape requests
// (default 30s).
func WithRequestTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.requestTimeout = d
	}
}

// WithHealthTimeout sets the health-probe timeout (default 8s).
func WithHealthTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.healthTimeout = d
	}
}

type httpClient struct {
	baseURL        string
	http           *http.Client
	requestTimeout time.Duration
	batchTimeout   time.Duration
	healthTimeout  time.Duration
	listTimeout    time.Duration
}

// NewClient creates a scraping-service client for the given base URL.
// Every operation carries its own deadline via context, so the underlying
// http.Client deliberately has no client-wide timeout: one would cap slow
// bulk scrapes at the single-request budget.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		requestTimeout: 30 * time.Second,
		batchTimeout:   90 * time.Second,
		healthTimeout:  8 * time.Second,
		listTimeout:    15 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var hr healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return false
	}
	return hr.Status == "healthy"
}

func (c *httpClient) Request(ctx context.Context, state, commodity, market string) (*Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("state", state)
	q.Set("commodity", commodity)
	q.Set("market", market)

	body, err := c.get(ctx, "/request?"+q.Encode())
	if err != nil {
		return nil, eris.Wrap(err, "scraperapi: request")
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "scraperapi: unmarshal request response")
	}
	if !env.Success {
		return nil, eris.Errorf("scraperapi: service error: %s", env.Error)
	}
	return &env, nil
}

func (c *httpClient) Batch(ctx context.Context, targets []BatchTarget) (*Envelope, error) {
	if len(targets) == 0 {
		return nil, eris.New("scraperapi: no batch targets")
	}

	payload, err := json.Marshal(targets)
	if err != nil {
		return nil, eris.Wrap(err, "scraperapi: marshal batch targets")
	}

	ctx, cancel := context.WithTimeout(ctx, c.batchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/batch", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "scraperapi: create batch request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "scraperapi: batch request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "scraperapi: read batch response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("scraperapi: batch status %d: %s", resp.StatusCode, string(body))
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "scraperapi: unmarshal batch response")
	}
	if !env.Success {
		return nil, eris.Errorf("scraperapi: batch service error: %s", env.Error)
	}
	return &env, nil
}

func (c *httpClient) Markets(ctx context.Context, state string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()

	body, err := c.get(ctx, "/markets?state="+url.QueryEscape(state))
	if err != nil {
		return nil, eris.Wrap(err, "scraperapi: markets")
	}

	var lr listResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, eris.Wrap(err, "scraperapi: unmarshal markets response")
	}
	if !lr.Success {
		return nil, eris.Errorf("scraperapi: markets service error: %s", lr.Error)
	}
	return lr.Markets, nil
}

func (c *httpClient) Commodities(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()

	body, err := c.get(ctx, "/commodities")
	if err != nil {
		return nil, eris.Wrap(err, "scraperapi: commodities")
	}

	var lr listResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, eris.Wrap(err, "scraperapi: unmarshal commodities response")
	}
	if !lr.Success {
		return nil, eris.Errorf("scraperapi: commodities service error: %s", lr.Error)
	}
	return lr.Commodities, nil
}

func (c *httpClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
