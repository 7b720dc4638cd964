// Package fallback supplies synthetic price records for when every live
// acquisition strategy has failed. The figures are rough seasonal
// averages, clearly tagged with placeholder provenance so callers can
// tell them apart from real quotes.
package fallback

import (
	"strings"
	"time"

	"github.com/agrimitra/mandi-cli/internal/model"
	"github.com/agrimitra/mandi-cli/internal/normalize"
)

type entry struct {
	commodity string
	market    string
	min       float64
	max       float64
	price     float64
	unit      string
}

// table holds one representative quote per staple commodity. Trend and
// change are not stored; they are derived from the range exactly as they
// are for live records.
var table = []entry{
	{"Wheat", "Local Mandi", 2300, 2500, 2450, "quintal"},
	{"Rice", "APMC", 3180, 3380, 3200, "quintal"},
	{"Cotton", "Cotton Market", 5700, 5900, 5800, "quintal"},
	{"Sugarcane", "Sugar Mill", 310, 360, 350, "quintal"},
	{"Tomato", "Vegetable Market", 12, 28, 25, "kilogram"},
	{"Onion", "Wholesale Market", 17, 25, 18, "kilogram"},
	{"Potato", "Wholesale Market", 14, 16, 15, "kilogram"},
	{"Maize", "Feed Mill", 2025, 2125, 2100, "quintal"},
}

// Prices returns placeholder records for the requested commodities, or the
// whole table when none are named. Unknown commodities yield nothing; the
// provider never invents a quote it has no figure for.
func Prices(state string, commodities []string, now time.Time) []model.NormalizedPriceRecord {
	if state == "" {
		state = "Unknown"
	}

	wanted := make(map[string]bool, len(commodities))
	for _, c := range commodities {
		wanted[strings.ToLower(normalize.Commodity(c))] = true
	}

	records := make([]model.NormalizedPriceRecord, 0, len(table))
	for _, e := range table {
		if len(wanted) > 0 && !wanted[strings.ToLower(e.commodity)] {
			continue
		}
		records = append(records, model.NormalizedPriceRecord{
			Commodity:  e.commodity,
			Market:     e.market,
			State:      state,
			District:   "Various",
			Price:      e.price,
			MinPrice:   e.min,
			MaxPrice:   e.max,
			Unit:       e.unit,
			Date:       time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
			Trend:      normalize.TrendOf(e.min, e.max, e.price),
			Change:     normalize.ChangeOf(e.min, e.max, e.price),
			Provenance: model.ProvenancePlaceholder,
			FetchedAt:  now,
		})
	}
	return records
}
