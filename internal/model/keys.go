package model

import "strings"

// PaymentKey identifies one check/practice combination within an EFT.
type PaymentKey struct {
	PracticeID string
	ChkNbr     string
}

// Zero reports whether both key components are blank.
func (k PaymentKey) Zero() bool {
	return k.PracticeID == "" && k.ChkNbr == ""
}

// String renders the legacy underscore form used in reports.
func (k PaymentKey) String() string {
	return k.PracticeID + "_" + k.ChkNbr
}

// EncounterKey identifies one claim submission instance. Two rows with the
// same encounter number but different claim-status codes are different
// encounters.
type EncounterKey struct {
	Num    string
	ClmSts string
}

// String renders the legacy underscore form used in reports.
func (k EncounterKey) String() string {
	return k.Num + "_" + k.ClmSts
}

// CleanClaimStatus strips a parenthetical suffix from a claim-status code,
// e.g. "22 (Reprocessed)" -> "22".
func CleanClaimStatus(clmSts string) string {
	if i := strings.Index(clmSts, "("); i >= 0 {
		return strings.TrimSpace(clmSts[:i])
	}
	return strings.TrimSpace(clmSts)
}
