// Package ogd provides a client for the data.gov.in Open Government Data
// resource API, which republishes AGMARKNET mandi prices with a lag.
package ogd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the OGD resource operations.
type Client interface {
	// Records fetches price records matching the filters.
	Records(ctx context.Context, f Filters) ([]Record, error)
}

// Filters narrow an OGD resource query. Zero values are omitted.
type Filters struct {
	State     string
	District  string
	Commodity string
	Limit     int
}

// Record is one OGD price row. The API reports every field as a string.
type Record struct {
	State       string `json:"state"`
	District    string `json:"district"`
	Market      string `json:"market"`
	Commodity   string `json:"commodity"`
	Variety     string `json:"variety"`
	Grade       string `json:"grade"`
	ArrivalDate string `json:"arrival_date"`
	MinPrice    string `json:"min_price"`
	MaxPrice    string `json:"max_price"`
	ModalPrice  string `json:"modal_price"`
}

type recordsResponse struct {
	Records []Record `json:"records"`
}

// Option configures the OGD client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey     string
	resourceID string
	baseURL    string
	http       *http.Client
}

// NewClient creates an OGD client for one resource. The AGMARKNET daily
// price resource is 9ef84268-d588-465a-a308-a864a43d0070.
func NewClient(apiKey, resourceID string, opts ...Option) Client {
	c := &httpClient{
		apiKey:     apiKey,
		resourceID: resourceID,
		baseURL:    "https://api.data.gov.in",
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Records(ctx context.Context, f Filters) ([]Record, error) {
	q := url.Values{}
	q.Set("api-key", c.apiKey)
	q.Set("format", "json")
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	q.Set("limit", fmt.Sprint(limit))
	if f.State != "" {
		q.Set("filters[state]", f.State)
	}
	if f.District != "" {
		q.Set("filters[district]", f.District)
	}
	if f.Commodity != "" {
		q.Set("filters[commodity]", f.Commodity)
	}

	reqURL := fmt.Sprintf("%s/resource/%s?%s", c.baseURL, c.resourceID, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "ogd: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "ogd: request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "ogd: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("ogd: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var rr recordsResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, eris.Wrap(err, "ogd: unmarshal response")
	}
	return rr.Records, nil
}
