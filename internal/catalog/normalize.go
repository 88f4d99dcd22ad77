package catalog

import (
	"fmt"
	"strings"

	"github.com/hyperjump/ragd/internal/models"
)

// Schema names the columns used to build items.
type Schema struct {
	IDColumn   string
	TextColumn string
	// PayloadColumns are copied into the item payload; empty means every column.
	PayloadColumns []string
	// MaxRows limits how many data rows are used; zero means all.
	MaxRows int
}

// Record is one normalized catalog row.
type Record struct {
	ID      string
	Text    string
	Payload map[string]string
}

// RowError reports a data row that cannot become a record. Row is 1-based and counts the header.
type RowError struct {
	Row    int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("catalog row %d: %s", e.Row, e.Reason)
}

// Normalize converts table rows into records. Absent and blank cells become models.MissingValue.
// A row whose ID cell is blank is rejected.
func Normalize(t *Table, s Schema) ([]Record, error) {
	idCol := t.ColumnIndex(s.IDColumn)
	if idCol < 0 {
		return nil, fmt.Errorf("id column %q not found in catalog header", s.IDColumn)
	}
	textCol := t.ColumnIndex(s.TextColumn)
	if textCol < 0 {
		return nil, fmt.Errorf("text column %q not found in catalog header", s.TextColumn)
	}
	payloadCols := s.PayloadColumns
	if len(payloadCols) == 0 {
		payloadCols = t.Columns
	}
	payloadIdx := make([]int, len(payloadCols))
	for i, name := range payloadCols {
		payloadIdx[i] = t.ColumnIndex(name)
		if payloadIdx[i] < 0 {
			return nil, fmt.Errorf("payload column %q not found in catalog header", name)
		}
	}

	rows := t.Rows
	if s.MaxRows > 0 && len(rows) > s.MaxRows {
		rows = rows[:s.MaxRows]
	}
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		id := strings.TrimSpace(cell(row, idCol))
		if id == "" {
			return nil, &RowError{Row: i + 2, Reason: fmt.Sprintf("blank %s", s.IDColumn)}
		}
		payload := make(map[string]string, len(payloadCols))
		for j, name := range payloadCols {
			if name == "" {
				continue
			}
			payload[name] = normalizeCell(cell(row, payloadIdx[j]))
		}
		records = append(records, Record{
			ID:      id,
			Text:    normalizeCell(cell(row, textCol)),
			Payload: payload,
		})
	}
	return records, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func normalizeCell(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return models.MissingValue
	}
	return v
}
