package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/proliance-rcm/phil/internal/model"
)

// CSVParser parses a combined-table CSV export.
type CSVParser struct{}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Parse reads a CSV export. Columns are located by header name, so column
// order does not matter; short records read as blanks for the trailing
// columns.
func (p *CSVParser) Parse(r io.Reader) ([]model.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // exports vary in trailing optional columns

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return rowsFromRecords(records), nil
}
