// Package testutil provides fixture helpers for tests that need
// experiment-plan workbooks.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// WritePlanWorkbook writes an .xlsx experiment plan named name into dir
// and returns its path. groupRow is the first header row (group names
// with blanks under merged spans), columnRow the second, dataRows the
// sample rows.
func WritePlanWorkbook(t *testing.T, dir, name string, groupRow, columnRow []string, dataRows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	writeRow := func(rowIdx int, cells []string) {
		for col, cell := range cells {
			if cell == "" {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(col+1, rowIdx)
			if err != nil {
				t.Fatalf("cell name for column %d: %v", col, err)
			}
			if err := f.SetCellStr(sheet, cellName, cell); err != nil {
				t.Fatalf("set cell %s: %v", cellName, err)
			}
		}
	}

	writeRow(1, groupRow)
	writeRow(2, columnRow)
	for i, row := range dataRows {
		writeRow(i+3, row)
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
