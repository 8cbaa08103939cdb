// Package export renders validation reports as XLSX workbooks for human
// review.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/garment-labs/labelaudit/internal/entity"
)

// Service produces XLSX bytes for reports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ValidationReportXLSX returns a workbook with one row per expected row: the
// spreadsheet keys, then per side the match level, expected vs actual UPC and
// the agreement flag, with the summary block under the table.
func (s *Service) ValidationReportXLSX(report entity.ValidationReport) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Validation"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Row",
		"Style",
		"Size",
		"Color",
		"Care Match",
		"Care UPC Expected",
		"Care UPC Actual",
		"Care OK",
		"Hang Match",
		"Hang UPC Expected",
		"Hang UPC Actual",
		"Hang OK",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for i, res := range report.Results {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, i+1)
		write(2, res.Row.Style)
		write(3, res.Row.Size)
		write(4, res.Row.Color)
		write(5, string(res.CareLabel.Match))
		write(6, res.Row.CareUPC)
		write(7, res.CareLabel.UPCActual)
		write(8, res.CareLabel.UPCMatches)
		write(9, string(res.HangTag.Match))
		write(10, res.Row.HangUPC)
		write(11, res.HangTag.UPCActual)
		write(12, res.HangTag.UPCMatches)

		row++
	}

	// summary block, one blank row below the table
	row++
	summary := [][2]any{
		{"Rows", report.Summary.Rows},
		{"Care label matches", report.Summary.CareLabelMatches},
		{"Hang tag matches", report.Summary.HangTagMatches},
	}
	for _, line := range summary {
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		valueCell, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(sheet, labelCell, line[0])
		_ = f.SetCellValue(sheet, valueCell, line[1])
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 6)
	_ = f.SetColWidth(sheet, "B", "B", 16) // style
	_ = f.SetColWidth(sheet, "C", "C", 10) // size
	_ = f.SetColWidth(sheet, "D", "D", 18) // color
	_ = f.SetColWidth(sheet, "E", "G", 18) // care columns
	_ = f.SetColWidth(sheet, "H", "H", 10)
	_ = f.SetColWidth(sheet, "I", "K", 18) // hang columns
	_ = f.SetColWidth(sheet, "L", "L", 10)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(report.Results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
