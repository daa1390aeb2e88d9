// Package ingest reads payer remittance exports (CSV or XLSX), combines
// them into one row table, and scrubs the result before grouping.
package ingest

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/proliance-rcm/phil/internal/model"
)

// Parser converts one export file into rows.
type Parser interface {
	Parse(r io.Reader) ([]model.Row, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes an export file in the input directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for a format (file extension without dot), or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVParser{})
	r.Register(&XLSXParser{})
	return r
}

// Scan returns parsable export files in dir, sorted by name.
func Scan(dir string, reg *Registry) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(e.Name())), ".")
		if reg.Get(ext) == nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// Column names of the combined table. Every column is an opaque string.
const (
	ColEFTNum      = "EFT NUM"
	ColPracticeID  = "PRACTICE ID"
	ColChkNbr      = "Chk Nbr"
	ColEncNbr      = "Enc Nbr"
	ColClmStsCod   = "Clm Sts Cod"
	ColCPT4        = "CPT4"
	ColDescription = "Description"
	ColClmNbr      = "Clm Nbr"
	ColPostingSts  = "Posting Sts"
	ColTxnStatus   = "Txn Status"
	ColBillAmt     = "Bill Amt"
	ColPdAmt       = "Pd Amt"
	ColDedAmt      = "Ded Amt"
	ColAdjAmt      = "Adj Amt"
	ColReasonCd    = "Reason Cd"
	ColRemarkCodes = "Remark Codes"
	ColFile        = "File"
	ColPayerFolder = "PAYER FOLDER"
	ColPatName     = "Pat Name"
	ColPolNbr      = "Pol Nbr"
	ColSvcDate     = "Svc Date"
)

// requiredColumns are the columns the classification core depends on. A
// missing column is non-fatal: the field reads as blank and a warning is
// logged once per file.
var requiredColumns = []string{
	ColEFTNum, ColPracticeID, ColChkNbr, ColEncNbr, ColClmStsCod, ColCPT4,
	ColDescription, ColClmNbr, ColPostingSts, ColTxnStatus, ColBillAmt,
	ColPdAmt, ColDedAmt, ColReasonCd, ColRemarkCodes, ColFile,
}

// rowsFromRecords converts a header row plus data records into rows.
func rowsFromRecords(records [][]string) []model.Row {
	if len(records) == 0 {
		return nil
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			log.Printf("[ingest] missing column %q: substituting blanks", name)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	rows := make([]model.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, model.Row{
			EFTNum:      field(rec, ColEFTNum),
			PracticeID:  field(rec, ColPracticeID),
			ChkNbr:      field(rec, ColChkNbr),
			EncNbr:      field(rec, ColEncNbr),
			ClmStsCod:   field(rec, ColClmStsCod),
			CPT4:        field(rec, ColCPT4),
			Description: field(rec, ColDescription),
			ClmNbr:      field(rec, ColClmNbr),
			PostingSts:  field(rec, ColPostingSts),
			TxnStatus:   field(rec, ColTxnStatus),
			BillAmt:     field(rec, ColBillAmt),
			PdAmt:       field(rec, ColPdAmt),
			DedAmt:      field(rec, ColDedAmt),
			AdjAmt:      field(rec, ColAdjAmt),
			ReasonCd:    field(rec, ColReasonCd),
			RemarkCodes: field(rec, ColRemarkCodes),
			File:        field(rec, ColFile),
			PayerFolder: field(rec, ColPayerFolder),
			PatName:     field(rec, ColPatName),
			PolNbr:      field(rec, ColPolNbr),
			SvcDate:     field(rec, ColSvcDate),
		})
	}
	return rows
}
