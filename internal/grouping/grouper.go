// Package grouping turns the flat combined transaction table into the
// nested EFT -> Payment -> Encounter -> Service hierarchy that the
// classifiers and the balancing engine consume.
package grouping

import (
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/proliance-rcm/phil/internal/model"
)

// missingEncounterDesc marks an EFT whose source data never matched an
// encounter. The whole EFT is excluded from the hierarchy and reported
// separately; this is a data-quality gate, not a classification outcome.
const missingEncounterDesc = "Encounter not found."

// Grouper builds payment hierarchies from flat row tables.
type Grouper struct {
	// DefaultPayer is used when no row carries a resolved payer folder.
	DefaultPayer string
}

// Build groups rows into the EFT hierarchy. Rows with a blank EFT number
// are ignored; EFTs flagged by the missing-encounter gate are excluded
// entirely and listed in Hierarchy.Excluded.
func (g Grouper) Build(rows []model.Row) *model.Hierarchy {
	h := &model.Hierarchy{EFTs: make(map[string]*model.EFT)}

	excluded := make(map[string]bool)
	for _, row := range rows {
		if strings.TrimSpace(row.Description) != missingEncounterDesc {
			continue
		}
		eftNum := strings.TrimSpace(row.EFTNum)
		if eftNum == "" || excluded[eftNum] {
			continue
		}
		excluded[eftNum] = true
		h.Excluded = append(h.Excluded, eftNum)
	}
	if len(h.Excluded) > 0 {
		log.Printf("[grouping] excluding %d EFTs with missing encounters", len(h.Excluded))
	}

	byEFT := make(map[string][]model.Row)
	for _, row := range rows {
		eftNum := strings.TrimSpace(row.EFTNum)
		if eftNum == "" || excluded[eftNum] {
			continue
		}
		if _, seen := byEFT[eftNum]; !seen {
			h.Order = append(h.Order, eftNum)
		}
		byEFT[eftNum] = append(byEFT[eftNum], row)
	}

	for _, eftNum := range h.Order {
		h.EFTs[eftNum] = g.buildEFT(eftNum, byEFT[eftNum])
	}
	return h
}

func (g Grouper) buildEFT(eftNum string, rows []model.Row) *model.EFT {
	eft := &model.EFT{
		Num:      eftNum,
		Payer:    g.resolvePayer(rows),
		Payments: make(map[model.PaymentKey]*model.Payment),
	}

	groups := make(map[model.PaymentKey][]model.Row)
	for _, row := range rows {
		key := model.PaymentKey{
			PracticeID: strings.TrimSpace(row.PracticeID),
			ChkNbr:     strings.TrimSpace(row.ChkNbr),
		}
		if key.Zero() {
			continue
		}
		// Key collisions merge into one group, never drop rows.
		if _, seen := groups[key]; !seen {
			eft.Keys = append(eft.Keys, key)
		}
		groups[key] = append(groups[key], row)
	}

	for _, key := range eft.Keys {
		eft.Payments[key] = buildPayment(key, groups[key])
	}
	return eft
}

// resolvePayer takes the first non-empty resolved payer folder, falling
// back to the batch default.
func (g Grouper) resolvePayer(rows []model.Row) string {
	for _, row := range rows {
		if p := strings.TrimSpace(row.PayerFolder); p != "" {
			return p
		}
	}
	return g.DefaultPayer
}

func buildPayment(key model.PaymentKey, rows []model.Row) *model.Payment {
	practiceID, num, amt := paymentIdentity(key, rows)

	p := &model.Payment{
		Key:        key,
		PracticeID: practiceID,
		Num:        num,
		Amt:        amt,
		Encounters: make(map[model.EncounterKey]*model.Encounter),
	}

	var plaRows []model.Row
	encGroups := make(map[model.EncounterKey][]model.Row)
	for _, row := range rows {
		if isPLARow(row) {
			plaRows = append(plaRows, row)
			continue
		}
		if strings.TrimSpace(row.EncNbr) == "" {
			continue // unrelated row
		}
		encKey := model.EncounterKey{
			Num:    strings.TrimSpace(row.EncNbr),
			ClmSts: model.CleanClaimStatus(row.ClmStsCod),
		}
		if _, seen := encGroups[encKey]; !seen {
			p.EncKeys = append(p.EncKeys, encKey)
		}
		encGroups[encKey] = append(encGroups[encKey], row)
	}

	p.PLAs = buildPLASet(plaRows)
	for _, encKey := range p.EncKeys {
		p.Encounters[encKey] = buildEncounter(encKey, encGroups[encKey])
	}
	return p
}

// fileColumnParts is the fixed underscore-delimited layout of the File
// column: WS_ID_WAYSTARID_AMOUNT_CHECKNUMBER_TYPE_FILEDATE.
const fileColumnParts = 6

// paymentIdentity derives the payment's practice ID, check number, and
// stated amount from the File column. A malformed File value is a
// non-fatal parse failure: identity falls back to the grouping key and
// the amount to zero.
func paymentIdentity(key model.PaymentKey, rows []model.Row) (string, string, decimal.Decimal) {
	fileName := ""
	for _, row := range rows {
		if f := strings.TrimSpace(row.File); f != "" {
			fileName = f
			break
		}
	}
	if fileName == "" {
		return key.PracticeID, key.ChkNbr, decimal.Zero
	}

	parts := strings.Split(fileName, "_")
	if len(parts) < fileColumnParts {
		log.Printf("[grouping] unexpected File format %q: expected %d parts, got %d",
			fileName, fileColumnParts, len(parts))
		return key.PracticeID, key.ChkNbr, decimal.Zero
	}

	amt, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil {
		log.Printf("[grouping] unreadable amount in File %q: %v", fileName, err)
		amt = decimal.Zero
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[3]), amt
}

func buildEncounter(key model.EncounterKey, rows []model.Row) *model.Encounter {
	enc := &model.Encounter{
		Key:    key,
		Num:    key.Num,
		Status: key.ClmSts,
	}
	for _, row := range rows {
		if strings.TrimSpace(row.CPT4) == "" {
			continue
		}
		enc.Services = append(enc.Services, buildService(row))
	}
	return enc
}

func buildService(row model.Row) model.Service {
	svc := model.Service{
		ClmSts:      model.CleanClaimStatus(row.ClmStsCod),
		PostingSts:  strings.TrimSpace(row.PostingSts),
		CPT4:        strings.TrimSpace(row.CPT4),
		TxnStatus:   strings.TrimSpace(row.TxnStatus),
		Description: strings.TrimSpace(row.Description),
		BillAmt:     strings.TrimSpace(row.BillAmt),
		PdAmt:       strings.TrimSpace(row.PdAmt),
		DedAmt:      strings.TrimSpace(row.DedAmt),
		AdjAmt:      strings.TrimSpace(row.AdjAmt),
	}
	if svc.AdjAmt == "" {
		svc.AdjAmt = "0"
	}
	if code := strings.TrimSpace(row.ReasonCd); code != "" {
		svc.Codes = append(svc.Codes, code)
	}
	if code := strings.TrimSpace(row.RemarkCodes); code != "" {
		svc.Remarks = append(svc.Remarks, code)
	}
	return svc
}
