// Package sheet loads the expected product rows out of the program
// spreadsheet. Header names vary between programs, so columns are resolved by
// fuzzy match instead of fixed position.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/garment-labs/labelaudit/internal/entity"
	"github.com/garment-labs/labelaudit/internal/textnorm"
	"github.com/garment-labs/labelaudit/internal/upc"
)

// ErrNoSheet is returned for workbooks without a single worksheet.
var ErrNoSheet = errors.New("workbook has no sheets")

var reHeaderNoise = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeHeader lowercases a header cell and strips everything but letters
// and digits, so "Care Label UPC" and "care_label_upc" map the same way.
func normalizeHeader(name string) string {
	return reHeaderNoise.ReplaceAllString(strings.ToLower(name), "")
}

// columnMap holds the resolved column index per expected field; -1 = absent.
type columnMap struct {
	style   int
	size    int
	color   int
	careUPC int
	hangUPC int
	upc     int
}

// mapColumns scans headers left to right; the first header containing a
// candidate substring claims the field.
func mapColumns(headers []string) columnMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}
	find := func(candidates ...string) int {
		for i, key := range normalized {
			if key == "" {
				continue
			}
			for _, candidate := range candidates {
				if strings.Contains(key, candidate) {
					return i
				}
			}
		}
		return -1
	}
	return columnMap{
		style:   find("style"),
		size:    find("size"),
		color:   find("color"),
		careUPC: find("carelabelupc", "careupc", "carelabel"),
		hangUPC: find("hangtagupc", "hangupc", "rfidupc", "hangtag", "rfid"),
		upc:     find("upc"),
	}
}

// ReadExpected loads expected rows from an XLSX/XLSM stream. The first sheet
// is read; its first row is the header.
func ReadExpected(r io.Reader) ([]entity.ExpectedRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return readRows(f)
}

// ReadExpectedFile loads expected rows from a workbook on disk.
func ReadExpectedFile(path string) ([]entity.ExpectedRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return readRows(f)
}

func readRows(f *excelize.File) ([]entity.ExpectedRow, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := mapColumns(rows[0])
	out := make([]entity.ExpectedRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		er := entity.ExpectedRow{
			Style:   textnorm.CollapseUpper(cell(row, cols.style)),
			Size:    textnorm.CollapseUpper(cell(row, cols.size)),
			Color:   textnorm.CollapseUpper(cell(row, cols.color)),
			CareUPC: upc.Digits(cell(row, cols.careUPC)),
			HangUPC: upc.Digits(cell(row, cols.hangUPC)),
		}
		// sheets that carry a single UPC column apply it to the care side
		if er.CareUPC == "" {
			er.CareUPC = upc.Digits(cell(row, cols.upc))
		}
		out = append(out, er)
	}
	return out, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
