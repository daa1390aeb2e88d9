// Package mapping resolves practice and payer identities from the
// Proliance mapping workbook.
package mapping

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/proliance-rcm/phil/internal/model"
)

const (
	practiceSheet = "Waystar Practices"
	payerSheet    = "Waystar Payers"
)

// zelisFolder is matched by transaction-number shape, not by the workbook.
const zelisFolder = "Zelis"

// PayerEntry is one row of the payer sheet.
type PayerEntry struct {
	Name      string
	WaystarID string
	Folder    string
}

// Identity is a resolved payment identity.
type Identity struct {
	PayerFolder string
	EFTNum      string
	PracticeID  string
}

// Service provides in-memory lookup over the mapping workbook.
type Service struct {
	practices map[string]string // WS_ID -> APP_ID
	payers    []PayerEntry
}

// NewService creates a Service from loaded mapping data.
func NewService(practices map[string]string, payers []PayerEntry) *Service {
	if practices == nil {
		practices = make(map[string]string)
	}
	return &Service{practices: practices, payers: payers}
}

// Load reads the mapping workbook from disk and returns a Service.
func Load(path string) (*Service, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("mapping workbook: %w", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening mapping workbook: %w", err)
	}
	defer f.Close()

	practices, err := readPractices(f)
	if err != nil {
		return nil, err
	}
	payers, err := readPayers(f)
	if err != nil {
		return nil, err
	}
	return NewService(practices, payers), nil
}

// readPractices maps column A (WS_ID) to column D (APP_ID).
func readPractices(f *excelize.File) (map[string]string, error) {
	rows, err := f.GetRows(practiceSheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", practiceSheet, err)
	}

	practices := make(map[string]string)
	for _, row := range rows {
		wsID := cell(row, 0)
		appID := cell(row, 3)
		if wsID == "" || appID == "" || wsID == "WS_ID" {
			continue
		}
		practices[wsID] = appID
	}
	return practices, nil
}

// readPayers reads columns A-C (name, waystar ID, payer folder).
func readPayers(f *excelize.File) ([]PayerEntry, error) {
	rows, err := f.GetRows(payerSheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", payerSheet, err)
	}

	var payers []PayerEntry
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		e := PayerEntry{
			Name:      cell(row, 0),
			WaystarID: cell(row, 1),
			Folder:    cell(row, 2),
		}
		if e.WaystarID == "" && e.Folder == "" {
			continue
		}
		payers = append(payers, e)
	}
	return payers, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// PracticeID returns the APP_ID for a WS_ID, or "".
func (s *Service) PracticeID(wsID string) string {
	return s.practices[strings.TrimSpace(wsID)]
}

// PayerFolder returns the folder for a Waystar ID, skipping Zelis entries.
// Zelis is only ever assigned by transaction-number shape.
func (s *Service) PayerFolder(waystarID string) string {
	waystarID = strings.TrimSpace(waystarID)
	for _, e := range s.payers {
		if e.WaystarID == waystarID && e.Folder != zelisFolder {
			return e.Folder
		}
	}
	return ""
}

// Resolve determines the payer folder, EFT number, and practice ID for one
// row. fileParts is the row's File value split on underscores; the first
// part is the WS_ID, the second the payer's Waystar ID. The EFT number is
// the check number with the practice's APP_ID prefix stripped. A stripped
// number of exactly nine digits starting with 6 or 7 is a Zelis payment
// regardless of the payer sheet.
func (s *Service) Resolve(fileParts []string, chkNbr string) Identity {
	var wsID, waystarID string
	if len(fileParts) >= 2 {
		wsID = fileParts[0]
		waystarID = fileParts[1]
	}

	chkNbr = strings.TrimSpace(chkNbr)
	trn := chkNbr
	if appID := s.practices[wsID]; appID != "" && strings.HasPrefix(chkNbr, appID) {
		trn = chkNbr[len(appID):]
	}

	folder := ""
	if isZelisTRN(trn) {
		folder = zelisFolder
	} else {
		folder = s.PayerFolder(waystarID)
	}

	return Identity{PayerFolder: folder, EFTNum: trn, PracticeID: wsID}
}

// Annotate fills each row's PayerFolder, EFTNum, and PracticeID from its
// File value and check number.
func (s *Service) Annotate(rows []model.Row) {
	for i := range rows {
		parts := strings.Split(strings.TrimSpace(rows[i].File), "_")
		id := s.Resolve(parts, rows[i].ChkNbr)
		rows[i].PayerFolder = id.PayerFolder
		rows[i].EFTNum = id.EFTNum
		rows[i].PracticeID = id.PracticeID
	}
}

func isZelisTRN(trn string) bool {
	if len(trn) != 9 {
		return false
	}
	if trn[0] != '6' && trn[0] != '7' {
		return false
	}
	for _, c := range trn {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
