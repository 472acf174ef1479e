package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeRoster(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"ID", "Name", "Class", "House"},
		{"s1", "Asha", "10A", "Red"},
		{"s2", "Bima", "10A", "Blue"},
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	_, err := f.NewSheet("Classrooms")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Classrooms", "A1", &[]interface{}{"ID", "Name", "Rows", "Columns"}))
	require.NoError(t, f.SetSheetRow("Classrooms", "A2", &[]interface{}{"lab", "Science Lab", 3, 4}))

	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootShowsHelp(t *testing.T) {
	out, err := run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "allocate")
}

func TestGridListsAndPrints(t *testing.T) {
	path := writeRoster(t)

	out, err := run(t, "grid", "--roster-file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "lab\tScience Lab\t3x4\t0/12")

	out, err = run(t, "grid", "--roster-file", path, "--classroom", "lab")
	require.NoError(t, err)
	assert.Contains(t, out, "Science Lab (lab) 3x4, 0 occupied")

	_, err = run(t, "grid", "--roster-file", path, "--classroom", "gym")
	assert.Error(t, err)
}

func TestAllocate(t *testing.T) {
	path := writeRoster(t)

	out, err := run(t, "allocate", "--roster-file", path, "--student", "s1", "--classroom", "lab", "--row", "1", "--col", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "seated s1 in lab at row 1, column 2")
	assert.Contains(t, out, "COMMITTED")

	_, err = run(t, "allocate", "--roster-file", path, "--student", "s1", "--classroom", "lab", "--row", "7", "--col", "0")
	assert.Error(t, err)

	_, err = run(t, "allocate", "--roster-file", path, "--student", "s1")
	assert.ErrorContains(t, err, "required flag")
}

func TestImportIntoMemoryRoster(t *testing.T) {
	path := writeRoster(t)
	out, err := run(t, "import", "--roster", "memory", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 students")
}

func TestPrintErrorShowsState(t *testing.T) {
	path := writeRoster(t)
	_, err := run(t, "allocate", "--roster-file", path, "--student", "s9", "--classroom", "lab", "--row", "0", "--col", "0")
	require.Error(t, err)

	buf := new(bytes.Buffer)
	printError(buf, err)
	assert.Contains(t, buf.String(), "student not found")
}
