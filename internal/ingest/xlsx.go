package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/proliance-rcm/phil/internal/model"
)

// XLSXParser parses the first sheet of an XLSX workbook. Cell values come
// back as the displayed strings, which preserves the TEXT formatting the
// amount columns rely on.
type XLSXParser struct{}

// Format returns the parser name.
func (p *XLSXParser) Format() string { return "xlsx" }

// Parse reads an XLSX export.
func (p *XLSXParser) Parse(r io.Reader) ([]model.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return rowsFromRecords(records), nil
}
