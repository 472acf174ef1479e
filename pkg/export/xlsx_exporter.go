package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	listSheet  = "Seats"
	chartSheet = "Chart"
)

// XLSXExporter renders a workbook with the seat list and a chart sheet laid out like the room.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render builds the workbook bytes.
func (e *XLSXExporter) Render(data Dataset, chart SeatChart) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName(f.GetSheetName(0), listSheet); err != nil {
		return nil, fmt.Errorf("name seats sheet: %w", err)
	}
	for r, record := range data.records() {
		for c, value := range record {
			if err := setCell(f, listSheet, c+1, r+1, value); err != nil {
				return nil, err
			}
		}
	}

	if _, err := f.NewSheet(chartSheet); err != nil {
		return nil, fmt.Errorf("create chart sheet: %w", err)
	}
	if err := setCell(f, chartSheet, 1, 1, chart.Title); err != nil {
		return nil, err
	}
	for r := 0; r < chart.Rows; r++ {
		for c := 0; c < chart.Columns; c++ {
			if err := setCell(f, chartSheet, c+1, r+3, chart.label(r, c)); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, sheet string, col, row int, value string) error {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell reference: %w", err)
	}
	if err := f.SetCellValue(sheet, ref, value); err != nil {
		return fmt.Errorf("set %s!%s: %w", sheet, ref, err)
	}
	return nil
}
