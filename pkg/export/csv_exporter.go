package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// SeatChart is a classroom laid out as it is seen from the front. Cells[r][c] holds the
// label of the seat at row r and column c, empty for a free seat.
type SeatChart struct {
	Title   string
	Rows    int
	Columns int
	Cells   [][]string
}

func (c SeatChart) label(row, col int) string {
	if row >= len(c.Cells) || col >= len(c.Cells[row]) {
		return ""
	}
	return c.Cells[row][col]
}

func (d Dataset) records() [][]string {
	out := make([][]string, 0, len(d.Rows)+1)
	out = append(out, d.Headers)
	for _, row := range d.Rows {
		record := make([]string, len(d.Headers))
		for i, header := range d.Headers {
			record[i] = row[header]
		}
		out = append(out, record)
	}
	return out
}

// CSVExporter writes the seat list followed by the room layout. The layout section starts
// with the chart title, then a column header row, then one line per seat row with
// multi-line labels flattened.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Render(data Dataset, chart SeatChart) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.WriteAll(data.records()); err != nil {
		return nil, fmt.Errorf("write seat list: %w", err)
	}

	if chart.Rows > 0 && chart.Columns > 0 {
		layout := make([][]string, 0, chart.Rows+2)
		layout = append(layout, []string{chart.Title})
		header := make([]string, chart.Columns+1)
		for c := 0; c < chart.Columns; c++ {
			header[c+1] = fmt.Sprintf("Column %d", c+1)
		}
		layout = append(layout, header)
		for r := 0; r < chart.Rows; r++ {
			line := make([]string, chart.Columns+1)
			line[0] = fmt.Sprintf("Row %d", r+1)
			for c := 0; c < chart.Columns; c++ {
				line[c+1] = strings.ReplaceAll(chart.label(r, c), "\n", " - ")
			}
			layout = append(layout, line)
		}
		if err := writer.WriteAll(layout); err != nil {
			return nil, fmt.Errorf("write seat layout: %w", err)
		}
	}
	return buf.Bytes(), nil
}
