package model

import "github.com/shopspring/decimal"

// PaymentStatus is the posting decision for one payment.
type PaymentStatus string

const (
	StatusImmediatePost PaymentStatus = "Immediate Post"
	StatusPLAOnly       PaymentStatus = "PLA Only"
	StatusMixedPost     PaymentStatus = "Mixed Post"
	StatusQuickPost     PaymentStatus = "Quick Post"
	StatusFullPost      PaymentStatus = "Full Post"
	StatusUnknown       PaymentStatus = "Unknown"
)

// EFT is one electronic funds transfer, possibly covering multiple
// practice/check payments.
type EFT struct {
	Num      string
	Payer    string
	Keys     []PaymentKey // first-seen order
	Payments map[PaymentKey]*Payment
}

// IsSplit reports whether the EFT contains more than one payment. It is
// always derived, never stored.
func (e *EFT) IsSplit() bool {
	return len(e.Payments) > 1
}

// PLASet holds a payment's provider-level adjustments split into interest
// (L6) and everything else. The two lists are disjoint and together cover
// every PLA row of the payment.
type PLASet struct {
	L6       []string // cleaned descriptions
	Other    []string
	L6Amt    decimal.Decimal
	OtherAmt decimal.Decimal
}

// Empty reports whether the payment has no PLAs at all.
func (p PLASet) Empty() bool {
	return len(p.L6) == 0 && len(p.Other) == 0
}

// Sum returns the total adjustment amount across both categories.
func (p PLASet) Sum() decimal.Decimal {
	return p.L6Amt.Add(p.OtherAmt)
}

// Payment is one check/practice combination within an EFT.
type Payment struct {
	Key        PaymentKey
	PracticeID string
	Num        string
	Amt        decimal.Decimal // stated amount, parsed from the File column
	Status     PaymentStatus
	PLAs       PLASet
	EncKeys    []EncounterKey // first-seen order
	Encounters map[EncounterKey]*Encounter

	// EncsToCheck is the subset of encounters that carry at least one tag,
	// sorted by encounter number then claim status.
	EncsToCheck []EncounterReview
}

// Encounter is one claim submission instance.
type Encounter struct {
	Key      EncounterKey
	Num      string
	Status   string // claim-status code, parenthetical suffix stripped
	Services []Service
	Tags     []Tag
}

// Service is one billed line item, identified by a non-blank CPT4 code.
type Service struct {
	ClmSts      string
	PostingSts  string
	CPT4        string
	TxnStatus   string
	Description string
	BillAmt     string
	PdAmt       string
	DedAmt      string
	AdjAmt      string
	Codes       []string
	Remarks     []string
}

// TagDetail maps one tag to the distinct CPT4 codes that produced it.
type TagDetail struct {
	Tag   Tag
	CPT4s []string
}

// EncounterReview is one encounter requiring human review, with its
// classification detail.
type EncounterReview struct {
	Key    EncounterKey
	Num    string
	ClmSts string
	Tags   []TagDetail
}

// HasTag reports whether the review carries the given tag.
func (r EncounterReview) HasTag(tag Tag) bool {
	for _, d := range r.Tags {
		if d.Tag == tag {
			return true
		}
	}
	return false
}

// CPT4sFor returns the CPT4 codes recorded for the given tag, or nil.
func (r EncounterReview) CPT4sFor(tag Tag) []string {
	for _, d := range r.Tags {
		if d.Tag == tag {
			return d.CPT4s
		}
	}
	return nil
}

// Hierarchy is the fully grouped EFT -> Payment -> Encounter -> Service
// structure for one payer batch, plus the EFT numbers excluded by the
// missing-encounter gate.
type Hierarchy struct {
	Order    []string // EFT numbers, first-seen order
	EFTs     map[string]*EFT
	Excluded []string // "Encounter not found." EFT numbers
}
