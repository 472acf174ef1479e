package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Row", "Column", "Name"},
		Rows: []map[string]string{
			{"Row": "1", "Column": "1", "Name": "Asha"},
			{"Row": "1", "Column": "2", "Name": ""},
		},
	}
}

func sampleChart() SeatChart {
	return SeatChart{
		Title:   "Hall A",
		Rows:    2,
		Columns: 2,
		Cells:   [][]string{{"Asha\n10A Red", ""}, {"", "Bima\n10B Blue"}},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset(), sampleChart())
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(out))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 7)
	assert.Equal(t, []string{"Row", "Column", "Name"}, records[0])
	assert.Equal(t, []string{"1", "1", "Asha"}, records[1])
	assert.Equal(t, []string{"Hall A"}, records[3])
	assert.Equal(t, []string{"", "Column 1", "Column 2"}, records[4])
	assert.Equal(t, []string{"Row 1", "Asha - 10A Red", ""}, records[5])
	assert.Equal(t, []string{"Row 2", "", "Bima - 10B Blue"}, records[6])
}

func TestCSVExporterWithoutChartWritesListOnly(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset(), SeatChart{})
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{}, sampleChart())
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), sampleChart())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().Render(sampleDataset(), SeatChart{})
	assert.Error(t, err)
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset(), sampleChart())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Seats", "Chart"}, f.GetSheetList())
	name, err := f.GetCellValue("Seats", "C2")
	require.NoError(t, err)
	assert.Equal(t, "Asha", name)

	seat, err := f.GetCellValue("Chart", "B4")
	require.NoError(t, err)
	assert.Equal(t, "Bima\n10B Blue", seat)
}
