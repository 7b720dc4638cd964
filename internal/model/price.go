// Package model defines the value types that cross the price-pipeline
// boundary. All of them are transient per-call objects; nothing here owns
// long-lived state.
package model

import "time"

// Trend indicates where the modal price sits inside the day's range.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// Unit is a canonical trade unit for a price quote.
type Unit string

const (
	UnitKilogram Unit = "kilogram"
	UnitQuintal  Unit = "quintal"
	UnitTon      Unit = "ton"
)

// Provenance tags where a price record came from.
type Provenance string

const (
	// ProvenanceLiveScrape marks records parsed out of the AGMARKNET
	// report page (via proxy or direct fetch) or the scraping service.
	ProvenanceLiveScrape Provenance = "live-scrape"
	// ProvenanceLiveAPI marks records from the data.gov.in OGD API.
	ProvenanceLiveAPI Provenance = "live-api"
	// ProvenancePlaceholder marks synthetic fallback records.
	ProvenancePlaceholder Provenance = "placeholder"
)

// RawPriceRecord is a single row as extracted from a source, before
// normalization. Field values are whatever the source reported; only the
// prices are parsed. Raw records never leave the pipeline.
type RawPriceRecord struct {
	State       string
	District    string
	Market      string
	Commodity   string
	Variety     string
	Grade       string
	ArrivalDate string // inconsistent source format, parsed later
	MinPrice    float64
	MaxPrice    float64
	ModalPrice  float64
	Unit        string
}

// NormalizedPriceRecord is the canonical price record returned to callers.
type NormalizedPriceRecord struct {
	Commodity  string     `json:"commodity"`
	Variety    string     `json:"variety,omitempty"`
	Market     string     `json:"market"`
	State      string     `json:"state"`
	District   string     `json:"district"`
	Price      float64    `json:"price"` // modal price
	MinPrice   float64    `json:"min_price"`
	MaxPrice   float64    `json:"max_price"`
	Unit       string     `json:"unit"`
	Date       time.Time  `json:"date"`
	Trend      Trend      `json:"trend"`
	Change     float64    `json:"change"` // signed offset from range midpoint
	Provenance Provenance `json:"provenance"`
	FetchedAt  time.Time  `json:"fetched_at"`
}

// AcquisitionTarget identifies one (region, commodity) fetch. Every field
// is optional; an empty Date means today.
type AcquisitionTarget struct {
	State     string `json:"state,omitempty"`
	District  string `json:"district,omitempty"`
	Commodity string `json:"commodity,omitempty"`
	Date      string `json:"date,omitempty"`
}

// AcquisitionResult is the uniform return type of every acquisition
// strategy and of the batch path.
type AcquisitionResult struct {
	Success   bool                    `json:"success"`
	Records   []NormalizedPriceRecord `json:"records"`
	Source    string                  `json:"source"`
	FetchedAt time.Time               `json:"fetched_at"`
	Error     string                  `json:"error,omitempty"`
}

// Usable reports whether a result carries data worth returning: a
// successful fetch with at least one record.
func (r *AcquisitionResult) Usable() bool {
	return r != nil && r.Success && len(r.Records) > 0
}
