package ingest

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/proliance-rcm/phil/internal/model"
)

// ScrubStats summarizes a scrub pass.
type ScrubStats struct {
	BadRowsRemoved   int
	InterestRemoved  int
	PLARowsRewritten int
	RowsIn           int
	RowsOut          int
}

var (
	plaScrubAmtRe      = regexp.MustCompile(`Provider Level Adjustment.*\$(\-?\d+\.\d+)`)
	interestScrubAmtRe = regexp.MustCompile(`Interest payment.*\$(\-?\d+\.\d+)`)
)

// Scrub removes known bad rows and fuses interest rows into their matching
// L6 provider level adjustment row. The input slice is not modified.
func Scrub(rows []model.Row) ([]model.Row, ScrubStats) {
	stats := ScrubStats{RowsIn: len(rows)}

	kept := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		if isBadRow(r) {
			stats.BadRowsRemoved++
			continue
		}
		kept = append(kept, r)
	}

	kept = fuseInterestRows(kept, &stats)
	stats.RowsOut = len(kept)

	log.Printf("[ingest] scrubbed %d rows: removed %d bad, fused %d interest into %d PLA rows",
		stats.RowsIn, stats.BadRowsRemoved, stats.InterestRemoved, stats.PLARowsRewritten)
	return kept, stats
}

// isBadRow matches rows that carry no postable information: zero-amount
// service lines with no reason code, zero-amount "Encounter not found."
// stubs, and dateless "Encounter payer not found" stubs.
func isBadRow(r model.Row) bool {
	if r.EncNbr != "" && r.BillAmt == "0" && r.PdAmt == "0" && r.ReasonCd == "" {
		return true
	}
	if r.EncNbr == "" && r.Description == "Encounter not found." && r.BillAmt == "0" && r.PdAmt == "0" {
		return true
	}
	if r.Description == "Encounter payer not found" && r.SvcDate == "" && r.ReasonCd == "" {
		return true
	}
	return false
}

// fuseInterestRows handles checks where the payer reported interest as
// separate rows alongside a single L6 provider level adjustment for the
// same total. The PLA row absorbs the interest rows' patient identity and
// gets a parseable L6^ description; the interest rows are dropped.
func fuseInterestRows(rows []model.Row, stats *ScrubStats) []model.Row {
	byChk := make(map[string][]int)
	for i, r := range rows {
		byChk[r.ChkNbr] = append(byChk[r.ChkNbr], i)
	}

	drop := make(map[int]bool)
	for _, indices := range byChk {
		fuseCheckGroup(rows, indices, drop, stats)
	}
	if len(drop) == 0 {
		return rows
	}

	kept := make([]model.Row, 0, len(rows)-len(drop))
	for i, r := range rows {
		if drop[i] {
			stats.InterestRemoved++
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func fuseCheckGroup(rows []model.Row, indices []int, drop map[int]bool, stats *ScrubStats) {
	var interestIdx, plaIdx []int
	for _, i := range indices {
		desc := rows[i].Description
		switch {
		case strings.HasPrefix(desc, "Interest payment"):
			interestIdx = append(interestIdx, i)
		case strings.HasPrefix(desc, "Provider Level Adjustment") && strings.Contains(desc, "L6"):
			plaIdx = append(plaIdx, i)
		}
	}
	if len(plaIdx) != 1 || len(interestIdx) == 0 {
		return
	}

	pi := plaIdx[0]
	m := plaScrubAmtRe.FindStringSubmatch(rows[pi].Description)
	if m == nil {
		return
	}
	amtStr := m[1]
	plaAmt, err := decimal.NewFromString(amtStr)
	if err != nil {
		return
	}

	interestTotal := decimal.Zero
	for _, i := range interestIdx {
		im := interestScrubAmtRe.FindStringSubmatch(rows[i].Description)
		if im == nil {
			return
		}
		amt, err := decimal.NewFromString(im[1])
		if err != nil {
			return
		}
		interestTotal = interestTotal.Add(amt)
	}
	if !plaAmt.Round(2).Equal(interestTotal.Round(2)) {
		return
	}

	patName := rows[interestIdx[0]].PatName
	clmSts := rows[interestIdx[0]].ClmStsCod
	rows[pi].PatName = patName
	rows[pi].ClmStsCod = clmSts

	// Pull the encounter and policy numbers from any sibling row for the
	// same patient and claim status on this check.
	encNbr, polNbr := "", ""
	for _, i := range indices {
		r := rows[i]
		if r.PatName == patName && r.ClmStsCod == clmSts && r.EncNbr != "" && r.PolNbr != "" {
			encNbr = r.EncNbr
			polNbr = r.PolNbr
			break
		}
	}

	rows[pi].EncNbr = encNbr
	rows[pi].PolNbr = polNbr
	for _, i := range interestIdx {
		rows[i].EncNbr = encNbr
		rows[i].PolNbr = polNbr
		drop[i] = true
	}

	rows[pi].Description = fmt.Sprintf("L6^Enc: %s|Status: %s|Pol Nbr: %s|Amt: %s",
		encNbr, clmSts, polNbr, amtStr)
	stats.PLARowsRewritten++
}
