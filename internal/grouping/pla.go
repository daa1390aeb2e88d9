package grouping

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/proliance-rcm/phil/internal/model"
)

// A row is a PLA when either condition holds:
//
//	A: blank encounter number and a "Provider Level Adjustment" description
//	B: claim number "Provider Lvl Adj", non-blank encounter number, and an
//	   "L6" description
//
// Condition B marks the interest (L6) sub-type; A and B never overlap
// because A requires a blank encounter number and B a non-blank one.
const (
	plaDescMarker = "Provider Level Adjustment"
	plaClmMarker  = "Provider Lvl Adj"
	l6Marker      = "L6"
)

func isPLARow(row model.Row) bool {
	return isOtherPLARow(row) || isL6PLARow(row)
}

func isOtherPLARow(row model.Row) bool {
	return strings.TrimSpace(row.EncNbr) == "" &&
		strings.Contains(row.Description, plaDescMarker)
}

func isL6PLARow(row model.Row) bool {
	return strings.TrimSpace(row.ClmNbr) == plaClmMarker &&
		strings.TrimSpace(row.EncNbr) != "" &&
		strings.Contains(row.Description, l6Marker)
}

// Amount extraction patterns, tried in priority order. The free-text PLA
// descriptions vary between payers, so the ladder starts with explicit
// dollar patterns and falls back to any bare two-decimal number.
var plaAmountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$(-?\d+\.?\d*)`),
	regexp.MustCompile(`(-?)\$(\d+\.?\d*)`),
	regexp.MustCompile(`Amt:\s*\$?(-?\d+\.?\d*)`),
	regexp.MustCompile(`Amount:\s*\$?(-?\d+\.?\d*)`),
	regexp.MustCompile(`found:\s*(-?\d+\.?\d*)`),
	regexp.MustCompile(`applied:\s*(-?\d+\.?\d*)`),
	regexp.MustCompile(`:\s*(-?\d+\.?\d*)$`),
	regexp.MustCompile(`(-?\d+\.\d{2})`),
}

// extractPLAAmount pulls a dollar amount out of a PLA description.
// Extraction failure is not an error; the row simply contributes nothing
// to the PLA sum.
func extractPLAAmount(description string) (decimal.Decimal, bool) {
	for _, re := range plaAmountPatterns {
		m := re.FindStringSubmatch(description)
		if m == nil {
			continue
		}
		raw := strings.TrimSpace(strings.Join(m[1:], ""))
		d, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		return d, true
	}
	return decimal.Zero, false
}

var plaSubPrefixes = []string{"found: ", "applied: ", ": ", " - "}

// cleanPLADescription strips the "Provider Level Adjustment" boilerplate
// from a description, leaving the payload shown in reports.
func cleanPLADescription(description string) string {
	const foundPrefix = plaDescMarker + " found: "
	if strings.Contains(description, foundPrefix) {
		return strings.TrimSpace(strings.ReplaceAll(description, foundPrefix, ""))
	}
	if i := strings.Index(description, plaDescMarker+" "); i >= 0 {
		remaining := strings.TrimSpace(description[i+len(plaDescMarker):])
		for _, prefix := range plaSubPrefixes {
			if strings.HasPrefix(remaining, prefix) {
				remaining = strings.TrimSpace(remaining[len(prefix):])
				break
			}
		}
		return remaining
	}
	return description
}

// buildPLASet classifies a payment's PLA rows into L6 vs Other and sums
// their extracted amounts.
func buildPLASet(rows []model.Row) model.PLASet {
	var set model.PLASet
	set.L6Amt = decimal.Zero
	set.OtherAmt = decimal.Zero

	for _, row := range rows {
		desc := strings.TrimSpace(row.Description)
		cleaned := cleanPLADescription(desc)
		amt, ok := extractPLAAmount(desc)

		if isL6PLARow(row) {
			set.L6 = append(set.L6, cleaned)
			if ok {
				set.L6Amt = set.L6Amt.Add(amt)
			}
		} else {
			set.Other = append(set.Other, cleaned)
			if ok {
				set.OtherAmt = set.OtherAmt.Add(amt)
			}
		}
	}
	return set
}
