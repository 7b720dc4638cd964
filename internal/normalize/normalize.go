// Package normalize maps raw source records onto the canonical price
// schema: commodity aliases, unit vocabulary, date layouts, and the derived
// trend/change indicators.
package normalize

import (
	"math"
	"strings"
	"time"

	"github.com/agrimitra/mandi-cli/internal/model"
)

// commodityEntry pairs a canonical commodity name with the spelling
// variants AGMARKNET uses for it. Matching is ordered: first entry whose
// variant appears (case-insensitively) in the source name wins.
type commodityEntry struct {
	Canonical string
	Variants  []string
}

var commodityTable = []commodityEntry{
	{"Rice", []string{"Rice", "Paddy (Dhan)", "Basmati Rice", "Rice (Coarse)", "Rice (Medium)"}},
	{"Wheat", []string{"Wheat", "Wheat (Duram)", "Wheat (Sharbati)"}},
	{"Cotton", []string{"Cotton", "Kapas", "Cotton Seed"}},
	{"Sugarcane", []string{"Sugarcane", "Sugar"}},
	{"Maize", []string{"Maize", "Makka(Corn)"}},
	{"Bajra", []string{"Bajra(Pearl Millet)", "Pearl Millet"}},
	{"Jowar", []string{"Jowar", "Sorghum"}},
	{"Barley", []string{"Barley", "Jau"}},
	{"Gram", []string{"Gram", "Bengal Gram(Gram)", "Chana(Gram)"}},
	{"Tur", []string{"Tur(Arhar)", "Arhar (Tur)", "Pigeon Pea"}},
	{"Mustard", []string{"Mustard Seed", "Rape Seed", "Mustard Oil"}},
	{"Groundnut", []string{"Groundnut pods", "Groundnut", "Peanut"}},
	{"Soybean", []string{"Soyabean", "Soya Bean"}},
	{"Sunflower", []string{"Sunflower", "Sunflower Seed"}},
	{"Tomato", []string{"Tomato"}},
	{"Onion", []string{"Onion", "Onion Big", "Onion Small"}},
	{"Potato", []string{"Potato"}},
}

// stateCodes maps state names to the abbreviations the AGMARKNET report
// query expects.
var stateCodes = map[string]string{
	"Andhra Pradesh": "AP",
	"Assam":          "AS",
	"Bihar":          "BR",
	"Chhattisgarh":   "CG",
	"Gujarat":        "GJ",
	"Haryana":        "HR",
	"Karnataka":      "KA",
	"Kerala":         "KL",
	"Madhya Pradesh": "MP",
	"Maharashtra":    "MH",
	"Odisha":         "OR",
	"Punjab":         "PB",
	"Rajasthan":      "RJ",
	"Tamil Nadu":     "TN",
	"Telangana":      "TS",
	"Uttar Pradesh":  "UP",
	"West Bengal":    "WB",
}

var unitTable = map[string]model.Unit{
	"quintal":     model.UnitQuintal,
	"kg":          model.UnitKilogram,
	"kilogram":    model.UnitKilogram,
	"tonnes":      model.UnitTon,
	"ton":         model.UnitTon,
	"per kg":      model.UnitKilogram,
	"per quintal": model.UnitQuintal,
}

// dateLayouts are the report date formats seen in the wild, most common
// first. OGD records use the slashed form.
var dateLayouts = []string{
	"02-Jan-2006",
	"02-01-2006",
	"02/01/2006",
}

// Commodity maps a source commodity name onto its canonical name. Unknown
// names pass through unchanged so unfamiliar commodities are not dropped.
func Commodity(source string) string {
	lower := strings.ToLower(source)
	for _, entry := range commodityTable {
		for _, variant := range entry.Variants {
			if strings.Contains(lower, strings.ToLower(variant)) {
				return entry.Canonical
			}
		}
	}
	return source
}

// SourceName returns the spelling AGMARKNET expects for a canonical
// commodity, for use in upstream queries. Unknown names pass through.
func SourceName(canonical string) string {
	for _, entry := range commodityTable {
		if strings.EqualFold(entry.Canonical, canonical) {
			return entry.Variants[0]
		}
	}
	return canonical
}

// KnownCommodities returns the canonical commodity vocabulary in table order.
func KnownCommodities() []string {
	names := make([]string, len(commodityTable))
	for i, entry := range commodityTable {
		names[i] = entry.Canonical
	}
	return names
}

// StateCode returns the report-query abbreviation for a state, or the
// input unchanged when the state is not in the table.
func StateCode(state string) string {
	if code, ok := stateCodes[state]; ok {
		return code
	}
	return state
}

// UnitString maps a source unit string onto the canonical vocabulary,
// defaulting to the lower-cased original when unmapped.
func UnitString(source string) string {
	if u, ok := unitTable[strings.ToLower(strings.TrimSpace(source))]; ok {
		return string(u)
	}
	return strings.ToLower(source)
}

// Date parses a source date string, defaulting to now when no layout
// matches.
func Date(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return now
}

// TrendOf derives the price trend from where the modal price sits in the
// min-max range. The 0.6/0.4 position thresholds mirror the upstream
// heuristic; there is no documented ground truth for them.
func TrendOf(minPrice, maxPrice, modalPrice float64) model.Trend {
	priceRange := maxPrice - minPrice
	if priceRange == 0 {
		return model.TrendStable
	}
	position := (modalPrice - minPrice) / priceRange
	switch {
	case position > 0.6:
		return model.TrendRising
	case position < 0.4:
		return model.TrendFalling
	default:
		return model.TrendStable
	}
}

// ChangeOf is the modal price's signed offset from the range midpoint,
// rounded to the nearest whole rupee.
func ChangeOf(minPrice, maxPrice, modalPrice float64) float64 {
	return math.Round(modalPrice - (minPrice+maxPrice)/2)
}

// Record converts a raw record to canonical form. It returns nil when the
// record is unusable: non-positive modal price, a negative price, or a
// range the modal price falls outside of. Bad records are dropped, never
// corrected.
func Record(raw model.RawPriceRecord, prov model.Provenance, fetchedAt time.Time) *model.NormalizedPriceRecord {
	if raw.ModalPrice <= 0 {
		return nil
	}
	if raw.MinPrice < 0 || raw.MaxPrice < 0 {
		return nil
	}
	if raw.MinPrice > 0 && raw.MaxPrice > 0 &&
		(raw.ModalPrice < raw.MinPrice || raw.ModalPrice > raw.MaxPrice) {
		return nil
	}

	return &model.NormalizedPriceRecord{
		Commodity:  Commodity(raw.Commodity),
		Variety:    raw.Variety,
		Market:     raw.Market,
		State:      raw.State,
		District:   raw.District,
		Price:      raw.ModalPrice,
		MinPrice:   raw.MinPrice,
		MaxPrice:   raw.MaxPrice,
		Unit:       UnitString(raw.Unit),
		Date:       Date(raw.ArrivalDate, fetchedAt),
		Trend:      TrendOf(raw.MinPrice, raw.MaxPrice, raw.ModalPrice),
		Change:     ChangeOf(raw.MinPrice, raw.MaxPrice, raw.ModalPrice),
		Provenance: prov,
		FetchedAt:  fetchedAt,
	}
}

// Records normalizes a batch of raw records, dropping the unusable ones.
func Records(raws []model.RawPriceRecord, prov model.Provenance, fetchedAt time.Time) []model.NormalizedPriceRecord {
	out := make([]model.NormalizedPriceRecord, 0, len(raws))
	for _, raw := range raws {
		if rec := Record(raw, prov, fetchedAt); rec != nil {
			out = append(out, *rec)
		}
	}
	return out
}
