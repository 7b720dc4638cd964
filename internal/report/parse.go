// Package report extracts price rows from AGMARKNET report payloads. The
// report markup is not a stable contract, so parsing is regex-based and
// best-effort: malformed rows are dropped, never fatal. A DOM parser would
// buy nothing against a moving target.
package report

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/agrimitra/mandi-cli/internal/model"
)

// minColumns is the expected column count of a report row: state, district,
// market, commodity, variety, grade, date, min, max, modal, unit.
const minColumns = 11

var (
	rowRe  = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	cellRe = regexp.MustCompile(`(?is)<td[^>]*>(.*?)</td>`)
	tagRe  = regexp.MustCompile(`<[^>]*>`)

	entityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)

	priceJunkRe = regexp.MustCompile(`[^\d.]`)
)

// Parse scans a report payload for table rows and returns one raw record
// per well-formed row. It never fails: empty, truncated, or non-HTML input
// yields an empty slice, and rows with too few cells or a non-positive
// modal price are skipped.
func Parse(payload []byte) []model.RawPriceRecord {
	var records []model.RawPriceRecord

	for _, row := range rowRe.FindAllSubmatch(payload, -1) {
		cells := extractCells(row[1])
		if len(cells) < minColumns {
			continue
		}

		rec := model.RawPriceRecord{
			State:       cells[0],
			District:    cells[1],
			Market:      cells[2],
			Commodity:   cells[3],
			Variety:     cells[4],
			Grade:       cells[5],
			ArrivalDate: cells[6],
			MinPrice:    ParsePrice(cells[7]),
			MaxPrice:    ParsePrice(cells[8]),
			ModalPrice:  ParsePrice(cells[9]),
			Unit:        cells[10],
		}

		if rec.ModalPrice <= 0 {
			continue
		}
		records = append(records, rec)
	}

	return records
}

// extractCells pulls the <td> contents out of one row, stripped of markup
// and common entities.
func extractCells(row []byte) []string {
	matches := cellRe.FindAllSubmatch(row, -1)
	cells := make([]string, 0, len(matches))
	for _, m := range matches {
		text := tagRe.ReplaceAllString(string(m[1]), "")
		text = entityReplacer.Replace(text)
		cells = append(cells, strings.TrimSpace(text))
	}
	return cells
}

// ParsePrice parses a source price string, tolerating commas, currency
// markers, and stray markup. Unparseable input yields 0.
func ParsePrice(s string) float64 {
	clean := priceJunkRe.ReplaceAllString(s, "")
	if clean == "" {
		return 0
	}
	price, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return price
}
