// Package tablereader reads spreadsheet answer-key files into plain rows
// of cell values for the tabular key extractor.
package tablereader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// maxXLSRows bounds how many rows are pulled from a legacy .xls workbook;
// answer keys are tens to a few hundred rows.
const maxXLSRows = 10000

// RowSource supplies the rows of a tabular document, each row an ordered
// list of cell values.
type RowSource interface {
	Rows(path string) ([][]string, error)
}

// Reader implements RowSource for .xlsx and legacy .xls workbooks.
type Reader struct{}

// NewReader creates a spreadsheet row source.
func NewReader() *Reader {
	return &Reader{}
}

// Supports reports whether the file extension is a readable spreadsheet
// format.
func (r *Reader) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}

// Rows reads all cell rows of the first sheet.
func (r *Reader) Rows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return r.readXLSX(path)
	case ".xls":
		return r.readXLS(path)
	}
	return nil, fmt.Errorf("unsupported spreadsheet format: %s", path)
}

func (r *Reader) readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("xlsx file %s has no sheets", path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", path, err)
	}
	return rows, nil
}

func (r *Reader) readXLS(path string) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls file %s: %w", path, err)
	}
	return wb.ReadAllCells(maxXLSRows), nil
}
