// Package catalog loads a tabular catalog and turns its rows into embedded catalog items.
package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a raw tabular catalog: a header row and data rows. Rows may be ragged.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Format is a catalog file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFor infers the format from a file name or object key extension.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported catalog format %q (supported: .csv, .xlsx)", path.Ext(name))
	}
}

// Parse decodes data in the given format. sheet selects the XLSX sheet; empty means the first one.
func Parse(data []byte, format Format, sheet string) (*Table, error) {
	switch format {
	case FormatCSV:
		return parseCSV(bytes.NewReader(data))
	case FormatXLSX:
		return parseXLSX(data, sheet)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
}

func parseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	return newTable(records)
}

func parseXLSX(data []byte, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
	}
	return newTable(rows)
}

func newTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog is empty: missing header row")
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return &Table{Columns: header, Rows: records[1:]}, nil
}

// ColumnIndex returns the position of name in the header, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}
