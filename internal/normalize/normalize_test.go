package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrimitra/mandi-cli/internal/model"
)

func rawRecord(minP, maxP, modal float64) model.RawPriceRecord {
	return model.RawPriceRecord{
		State:       "Maharashtra",
		District:    "Pune",
		Market:      "Pune Market",
		Commodity:   "Wheat",
		Variety:     "FAQ",
		Grade:       "Grade A",
		ArrivalDate: "19-Oct-2025",
		MinPrice:    minP,
		MaxPrice:    maxP,
		ModalPrice:  modal,
		Unit:        "Quintal",
	}
}

func TestCommodity_AliasMatch(t *testing.T) {
	assert.Equal(t, "Rice", Commodity("Paddy (Dhan)"))
	assert.Equal(t, "Rice", Commodity("BASMATI RICE"))
	assert.Equal(t, "Cotton", Commodity("Kapas"))
	assert.Equal(t, "Tur", Commodity("Arhar (Tur)"))
	assert.Equal(t, "Maize", Commodity("Makka(Corn) Local"))
}

func TestCommodity_UnknownPassesThrough(t *testing.T) {
	assert.Equal(t, "Dragonfruit", Commodity("Dragonfruit"))
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "Rice", SourceName("rice"))
	assert.Equal(t, "Tur(Arhar)", SourceName("Tur"))
	assert.Equal(t, "Dragonfruit", SourceName("Dragonfruit"))
}

func TestStateCode(t *testing.T) {
	assert.Equal(t, "MH", StateCode("Maharashtra"))
	assert.Equal(t, "PB", StateCode("Punjab"))
	assert.Equal(t, "Sikkim", StateCode("Sikkim"))
}

func TestUnitString(t *testing.T) {
	assert.Equal(t, "quintal", UnitString("Quintal"))
	assert.Equal(t, "quintal", UnitString("Per Quintal"))
	assert.Equal(t, "kilogram", UnitString("Kg"))
	assert.Equal(t, "kilogram", UnitString("Kilogram"))
	assert.Equal(t, "ton", UnitString("Tonnes"))
	assert.Equal(t, "ton", UnitString("Ton"))
	// Unmapped units fall back to the lower-cased original.
	assert.Equal(t, "bag of 50kg", UnitString("Bag of 50Kg"))
}

func TestDate(t *testing.T) {
	now := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)

	d := Date("19-Oct-2025", now)
	assert.Equal(t, time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC), d)

	d = Date("19-10-2025", now)
	assert.Equal(t, time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC), d)

	d = Date("19/10/2025", now)
	assert.Equal(t, time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC), d)

	// Unparseable dates default to now.
	assert.Equal(t, now, Date("someday", now))
	assert.Equal(t, now, Date("", now))
}

func TestTrendOf_Thresholds(t *testing.T) {
	// position = (modal - min) / (max - min), range 1000
	assert.Equal(t, model.TrendRising, TrendOf(1000, 2000, 1601))  // 0.601
	assert.Equal(t, model.TrendStable, TrendOf(1000, 2000, 1600))  // 0.600
	assert.Equal(t, model.TrendStable, TrendOf(1000, 2000, 1400))  // 0.400
	assert.Equal(t, model.TrendFalling, TrendOf(1000, 2000, 1399)) // 0.399
	assert.Equal(t, model.TrendStable, TrendOf(1000, 2000, 1500))  // 0.500
}

func TestTrendOf_ZeroRange(t *testing.T) {
	assert.Equal(t, model.TrendStable, TrendOf(2000, 2000, 2000))
}

func TestChangeOf(t *testing.T) {
	assert.Equal(t, 0.0, ChangeOf(2400, 2500, 2450))
	assert.Equal(t, 50.0, ChangeOf(2400, 2500, 2500))
	assert.Equal(t, -50.0, ChangeOf(2400, 2500, 2400))
	assert.Equal(t, 0.0, ChangeOf(2000, 2000, 2000))
}

func TestRecord_Normalizes(t *testing.T) {
	now := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)

	rec := Record(rawRecord(2400, 2500, 2450), model.ProvenanceLiveScrape, now)
	require.NotNil(t, rec)

	assert.Equal(t, "Wheat", rec.Commodity)
	assert.Equal(t, "Pune Market", rec.Market)
	assert.Equal(t, 2450.0, rec.Price)
	assert.Equal(t, 2400.0, rec.MinPrice)
	assert.Equal(t, 2500.0, rec.MaxPrice)
	assert.Equal(t, "quintal", rec.Unit)
	assert.Equal(t, model.TrendStable, rec.Trend)
	assert.Equal(t, 0.0, rec.Change)
	assert.Equal(t, model.ProvenanceLiveScrape, rec.Provenance)
	assert.Equal(t, time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC), rec.Date)
	assert.Equal(t, now, rec.FetchedAt)
}

func TestRecord_DropsNonPositiveModal(t *testing.T) {
	now := time.Now()
	assert.Nil(t, Record(rawRecord(2400, 2500, 0), model.ProvenanceLiveScrape, now))
	assert.Nil(t, Record(rawRecord(2400, 2500, -10), model.ProvenanceLiveScrape, now))
}

func TestRecord_DropsModalOutsideRange(t *testing.T) {
	now := time.Now()
	assert.Nil(t, Record(rawRecord(2400, 2500, 2600), model.ProvenanceLiveScrape, now))
	assert.Nil(t, Record(rawRecord(2400, 2500, 2300), model.ProvenanceLiveScrape, now))
	assert.Nil(t, Record(rawRecord(-1, 2500, 2450), model.ProvenanceLiveScrape, now))
}

func TestRecord_RangeCheckSkippedWhenIncomplete(t *testing.T) {
	// Sources sometimes omit min/max; the modal-only record survives.
	rec := Record(rawRecord(0, 0, 2450), model.ProvenanceLiveAPI, time.Now())
	require.NotNil(t, rec)
	assert.Equal(t, 2450.0, rec.Price)
}

func TestRecords_DropsBadKeepsGood(t *testing.T) {
	raws := []model.RawPriceRecord{
		rawRecord(2400, 2500, 2450),
		rawRecord(2400, 2500, 0),    // dropped: no modal
		rawRecord(2400, 2500, 9999), // dropped: outside range
	}

	out := Records(raws, model.ProvenanceLiveScrape, time.Now())
	require.Len(t, out, 1)
	assert.Equal(t, 2450.0, out[0].Price)
}

func TestKnownCommodities(t *testing.T) {
	names := KnownCommodities()
	assert.Contains(t, names, "Wheat")
	assert.Contains(t, names, "Onion")
	assert.Equal(t, "Rice", names[0])
}
