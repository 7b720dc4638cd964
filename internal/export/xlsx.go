// Package export writes price history to spreadsheet files for use
// outside the CLI.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/agrimitra/mandi-cli/internal/model"
)

// header is the column order of exported sheets.
var header = []string{
	"Commodity", "Variety", "Market", "State", "District",
	"Price", "Min Price", "Max Price", "Unit", "Date",
	"Trend", "Change", "Provenance", "Fetched At",
}

// WriteXLSX writes the records to an .xlsx file with one "Prices" sheet.
func WriteXLSX(path string, records []model.NormalizedPriceRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Prices")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	headerRow := sheet.AddRow()
	for _, h := range header {
		headerRow.AddCell().SetString(h)
	}

	for _, r := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Commodity)
		row.AddCell().SetString(r.Variety)
		row.AddCell().SetString(r.Market)
		row.AddCell().SetString(r.State)
		row.AddCell().SetString(r.District)
		row.AddCell().SetFloat(r.Price)
		row.AddCell().SetFloat(r.MinPrice)
		row.AddCell().SetFloat(r.MaxPrice)
		row.AddCell().SetString(r.Unit)
		row.AddCell().SetString(r.Date.Format("2006-01-02"))
		row.AddCell().SetString(string(r.Trend))
		row.AddCell().SetFloat(r.Change)
		row.AddCell().SetString(string(r.Provenance))
		row.AddCell().SetString(r.FetchedAt.Format("2006-01-02 15:04:05"))
	}

	return eris.Wrap(f.Save(path), "export: save file")
}
