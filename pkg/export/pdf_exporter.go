package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth  = 277.0
	cellHeight = 14.0
)

// PDFExporter renders a seating chart page followed by the seat list.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render draws chart as a grid of boxes, one per seat, then data as a table.
func (e *PDFExporter) Render(data Dataset, chart SeatChart) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	if chart.Rows <= 0 || chart.Columns <= 0 {
		return nil, fmt.Errorf("pdf chart requires a non-empty grid")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	if chart.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(chart.Title), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 6, "FRONT", "B", 1, "C", false, 0, "")
	pdf.Ln(3)

	seatWidth := pageWidth / float64(chart.Columns)
	pdf.SetFont("Arial", "", 7)
	for r := 0; r < chart.Rows; r++ {
		for c := 0; c < chart.Columns; c++ {
			label := chart.label(r, c)
			fill := label != ""
			if fill {
				pdf.SetFillColor(230, 236, 245)
			}
			x, y := pdf.GetXY()
			pdf.Rect(x, y, seatWidth, cellHeight, drawStyle(fill))
			pdf.SetXY(x, y+1)
			pdf.CellFormat(seatWidth, 4, fmt.Sprintf("R%d C%d", r+1, c+1), "", 2, "L", false, 0, "")
			pdf.MultiCell(seatWidth, 3.5, label, "", "C", false)
			pdf.SetXY(x+seatWidth, y)
		}
		pdf.Ln(cellHeight)
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 10)
	colWidth := pageWidth / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawStyle(fill bool) string {
	if fill {
		return "FD"
	}
	return "D"
}
