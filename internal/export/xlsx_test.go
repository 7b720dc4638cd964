package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/agrimitra/mandi-cli/internal/model"
)

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.xlsx")
	now := time.Date(2026, time.August, 19, 10, 0, 0, 0, time.UTC)

	records := []model.NormalizedPriceRecord{
		{
			Commodity: "Wheat", Market: "Pune", State: "Maharashtra", District: "Pune",
			Price: 2450, MinPrice: 2400, MaxPrice: 2500, Unit: "quintal",
			Date: now.Truncate(24 * time.Hour), Trend: model.TrendStable,
			Provenance: model.ProvenanceLiveScrape, FetchedAt: now,
		},
		{
			Commodity: "Rice", Market: "Ludhiana", State: "Punjab", District: "Ludhiana",
			Price: 3200, MinPrice: 3150, MaxPrice: 3250, Unit: "quintal",
			Date: now.Truncate(24 * time.Hour), Trend: model.TrendRising, Change: 50,
			Provenance: model.ProvenanceLiveAPI, FetchedAt: now,
		},
	}

	require.NoError(t, WriteXLSX(path, records))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, "Prices", sheet.Name)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "Commodity", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Wheat", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "live-api", sheet.Rows[2].Cells[12].String())

	price, err := sheet.Rows[1].Cells[5].Float()
	require.NoError(t, err)
	assert.Equal(t, 2450.0, price)
}

func TestWriteXLSX_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteXLSX(path, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets[0].Rows, 1, "header only")
}
