// Package analytics scans the classified hierarchy for the cross-cutting
// review scenarios surfaced in the batch report.
package analytics

import (
	"log"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/proliance-rcm/phil/internal/model"
)

// PaymentInfo is a flattened view of one payment for reporting.
type PaymentInfo struct {
	EFTNum          string
	PracticeID      string
	PaymentNum      string
	Amt             decimal.Decimal
	Status          model.PaymentStatus
	EncsToCheck     int
	TotalEncounters int
	PLAL6Count      int
	PLAOtherCount   int
}

// MismatchInfo is one encounter tagged chg_mismatch_cpt4.
type MismatchInfo struct {
	EFTNum      string
	PracticeID  string
	PaymentNum  string
	Key         model.EncounterKey
	EncsToCheck int // in the owning payment
	CPT4s       []string
}

// SplitEFTInfo aggregates a split EFT's review load across its payments.
type SplitEFTInfo struct {
	EFTNum           string
	TotalEncsToCheck int
	Payments         []PaymentInfo
}

// Summary holds the headline counts for the analytics section.
type Summary struct {
	MixedPostNoPLAs      int
	MixedPostL6Only      int
	ChargeMismatchCPT4   int
	LargestNoPLAsEncs    int
	LargestL6OnlyEncs    int
	SmallestMismatchEncs int
}

// Results are the aggregator's scenario lists and extremal records. All
// lists are deterministically ordered: the Mixed Post lists descending by
// encounters-to-check, the mismatch list ascending (easiest to clear
// first).
type Results struct {
	MixedPostNoPLAs    []PaymentInfo
	MixedPostL6Only    []PaymentInfo
	ChargeMismatchCPT4 []MismatchInfo

	// Extremal review loads, tracked separately for split and non-split
	// EFTs. Nil when no candidate exists.
	MaxNotSplitPayment *PaymentInfo
	MaxSplitEFT        *SplitEFTInfo

	Summary Summary
}

// Analyze scans a fully classified hierarchy. The hierarchy is read-only
// input; calling Analyze twice yields identical results.
func Analyze(h *model.Hierarchy) *Results {
	res := &Results{}

	for _, eftNum := range h.Order {
		eft := h.EFTs[eftNum]
		if eft.IsSplit() {
			analyzeSplitEFT(eftNum, eft, res)
			continue
		}
		for _, key := range eft.Keys {
			p := eft.Payments[key]
			info := paymentInfo(eftNum, p)

			if info.EncsToCheck > 0 &&
				(res.MaxNotSplitPayment == nil || info.EncsToCheck > res.MaxNotSplitPayment.EncsToCheck) {
				res.MaxNotSplitPayment = &info
			}

			if p.Status != model.StatusMixedPost {
				continue
			}
			switch {
			case p.PLAs.Empty():
				res.MixedPostNoPLAs = append(res.MixedPostNoPLAs, info)
			case len(p.PLAs.L6) > 0 && len(p.PLAs.Other) == 0:
				res.MixedPostL6Only = append(res.MixedPostL6Only, info)
			}
			collectMismatches(eftNum, p, res)
		}
	}

	sortResults(res)
	fillSummary(res)

	log.Printf("[analytics] mixed-post no-PLAs=%d, L6-only=%d, chg-mismatch=%d",
		res.Summary.MixedPostNoPLAs, res.Summary.MixedPostL6Only, res.Summary.ChargeMismatchCPT4)
	return res
}

func analyzeSplitEFT(eftNum string, eft *model.EFT, res *Results) {
	total := 0
	payments := make([]PaymentInfo, 0, len(eft.Keys))
	for _, key := range eft.Keys {
		info := paymentInfo(eftNum, eft.Payments[key])
		total += info.EncsToCheck
		payments = append(payments, info)
	}
	if total == 0 {
		return
	}
	if res.MaxSplitEFT == nil || total > res.MaxSplitEFT.TotalEncsToCheck {
		res.MaxSplitEFT = &SplitEFTInfo{
			EFTNum:           eftNum,
			TotalEncsToCheck: total,
			Payments:         payments,
		}
	}
}

func collectMismatches(eftNum string, p *model.Payment, res *Results) {
	for _, review := range p.EncsToCheck {
		cpt4s := review.CPT4sFor(model.TagChgMismatchCPT4)
		if cpt4s == nil {
			continue
		}
		res.ChargeMismatchCPT4 = append(res.ChargeMismatchCPT4, MismatchInfo{
			EFTNum:      eftNum,
			PracticeID:  p.PracticeID,
			PaymentNum:  p.Num,
			Key:         review.Key,
			EncsToCheck: len(p.EncsToCheck),
			CPT4s:       cpt4s,
		})
	}
}

func paymentInfo(eftNum string, p *model.Payment) PaymentInfo {
	return PaymentInfo{
		EFTNum:          eftNum,
		PracticeID:      p.PracticeID,
		PaymentNum:      p.Num,
		Amt:             p.Amt,
		Status:          p.Status,
		EncsToCheck:     len(p.EncsToCheck),
		TotalEncounters: len(p.Encounters),
		PLAL6Count:      len(p.PLAs.L6),
		PLAOtherCount:   len(p.PLAs.Other),
	}
}

func sortResults(res *Results) {
	byEncsDesc := func(infos []PaymentInfo) func(i, j int) bool {
		return func(i, j int) bool {
			return infos[i].EncsToCheck > infos[j].EncsToCheck
		}
	}
	sort.SliceStable(res.MixedPostNoPLAs, byEncsDesc(res.MixedPostNoPLAs))
	sort.SliceStable(res.MixedPostL6Only, byEncsDesc(res.MixedPostL6Only))
	sort.SliceStable(res.ChargeMismatchCPT4, func(i, j int) bool {
		return res.ChargeMismatchCPT4[i].EncsToCheck < res.ChargeMismatchCPT4[j].EncsToCheck
	})
}

func fillSummary(res *Results) {
	res.Summary = Summary{
		MixedPostNoPLAs:    len(res.MixedPostNoPLAs),
		MixedPostL6Only:    len(res.MixedPostL6Only),
		ChargeMismatchCPT4: len(res.ChargeMismatchCPT4),
	}
	if len(res.MixedPostNoPLAs) > 0 {
		res.Summary.LargestNoPLAsEncs = res.MixedPostNoPLAs[0].EncsToCheck
	}
	if len(res.MixedPostL6Only) > 0 {
		res.Summary.LargestL6OnlyEncs = res.MixedPostL6Only[0].EncsToCheck
	}
	if len(res.ChargeMismatchCPT4) > 0 {
		res.Summary.SmallestMismatchEncs = res.ChargeMismatchCPT4[0].EncsToCheck
	}
}
