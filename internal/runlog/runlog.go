// Package runlog appends one CSV record per pipeline run so batch history
// survives outside the generated reports.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp time.Time
	RunID     string
	Payer     string
	RowsIn    int
	EFTs      int
	Excluded  int
	Status    string
	Note      string
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,run_id,payer,rows_in,efts,excluded,status,note"

const (
	numFields = 8
	logFile   = "run-log.csv"

	colTimestamp = 0
	colRunID     = 1
	colPayer     = 2
	colRowsIn    = 3
	colEFTs      = 4
	colExcluded  = 5
	colStatus    = 6
	colNote      = 7
)

// NewEntry stamps an entry with the current time and a fresh run ID.
func NewEntry(payer string) Entry {
	return Entry{
		Timestamp: time.Now().UTC(),
		RunID:     uuid.NewString(),
		Payer:     payer,
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colPayer] = e.Payer
	row[colRowsIn] = strconv.Itoa(e.RowsIn)
	row[colEFTs] = strconv.Itoa(e.EFTs)
	row[colExcluded] = strconv.Itoa(e.Excluded)
	row[colStatus] = e.Status
	row[colNote] = e.Note
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	rowsIn, err := strconv.Atoi(record[colRowsIn])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing rows_in %q: %w", record[colRowsIn], err)
	}
	efts, err := strconv.Atoi(record[colEFTs])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing efts %q: %w", record[colEFTs], err)
	}
	excluded, err := strconv.Atoi(record[colExcluded])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing excluded %q: %w", record[colExcluded], err)
	}

	return Entry{
		Timestamp: ts,
		RunID:     record[colRunID],
		Payer:     record[colPayer],
		RowsIn:    rowsIn,
		EFTs:      efts,
		Excluded:  excluded,
		Status:    record[colStatus],
		Note:      record[colNote],
	}, nil
}

// Append writes entries to <logDir>/run-log.csv, creating the file and
// header if needed.
func Append(logDir string, entries []Entry) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := filepath.Join(logDir, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <logDir>/run-log.csv.
// Returns an empty slice if the file does not exist.
func Read(logDir string) ([]Entry, error) {
	path := filepath.Join(logDir, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
