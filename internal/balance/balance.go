// Package balance determines whether each payment's ledger reconciles to
// its stated amount, and whether an EFT's batch can close.
package balance

import (
	"log"

	"github.com/shopspring/decimal"

	"github.com/proliance-rcm/phil/internal/amount"
	"github.com/proliance-rcm/phil/internal/model"
)

// Balance notes, mirroring the posting engine's change-log vocabulary.
const (
	NoteBatchClosed    = "Balanced-Batch Closed"
	NoteBatchNotClosed = "Balanced-Batch Not Closed"
	NotePLAs           = "Not Balanced-PLAs" // non-fatal, PLA-explained discrepancy
	NoteReview         = "Not Balanced-Review"
)

// Result is the balancing outcome for one payment.
type Result struct {
	Balanced    bool
	Note        string
	Discrepancy decimal.Decimal // stated amount minus posted ledger
}

// Sheet holds the balancing results for a whole hierarchy.
type Sheet struct {
	// Payments is keyed by EFT number, then payment key.
	Payments map[string]map[model.PaymentKey]Result
	// EFTClosed reports, per EFT, whether every sibling payment balanced.
	EFTClosed map[string]bool
}

// Result returns the outcome for one payment.
func (s *Sheet) Result(eftNum string, key model.PaymentKey) (Result, bool) {
	byKey, ok := s.Payments[eftNum]
	if !ok {
		return Result{}, false
	}
	r, ok := byKey[key]
	return r, ok
}

// Evaluate balances every payment in the hierarchy. A split EFT closes its
// batch only when every sibling payment is independently balanced; the
// EFT-level decision is a logical AND, not a separate computation.
func Evaluate(h *model.Hierarchy) *Sheet {
	sheet := &Sheet{
		Payments:  make(map[string]map[model.PaymentKey]Result),
		EFTClosed: make(map[string]bool),
	}

	notBalanced := 0
	for _, eftNum := range h.Order {
		eft := h.EFTs[eftNum]
		byKey := make(map[model.PaymentKey]Result, len(eft.Keys))

		allBalanced := true
		for _, key := range eft.Keys {
			r := evaluatePayment(eft.Payments[key])
			byKey[key] = r
			if !r.Balanced {
				allBalanced = false
				notBalanced++
			}
		}

		// Balanced payments in an unclosed batch stay open.
		for key, r := range byKey {
			if r.Balanced {
				if allBalanced {
					r.Note = NoteBatchClosed
				} else {
					r.Note = NoteBatchNotClosed
				}
				byKey[key] = r
			}
		}

		sheet.Payments[eftNum] = byKey
		sheet.EFTClosed[eftNum] = allBalanced
	}

	if notBalanced > 0 {
		log.Printf("[balance] %d payments did not balance", notBalanced)
	}
	return sheet
}

func evaluatePayment(p *model.Payment) Result {
	posted, notPosted := ledgerTotals(p)
	disc := p.Amt.Sub(posted)

	switch p.Status {
	case model.StatusImmediatePost, model.StatusQuickPost, model.StatusFullPost:
		// No PLAs by definition; the ledger must match exactly.
		if disc.IsZero() {
			return Result{Balanced: true, Discrepancy: disc}
		}
		return Result{Note: NoteReview, Discrepancy: disc}

	case model.StatusPLAOnly:
		return plaResult(p, disc)

	case model.StatusMixedPost:
		if hasNotPostedEncounter(p) {
			// Outstanding not-posted amounts plus PLAs must explain the
			// whole discrepancy.
			expected := notPosted.Add(p.PLAs.Sum())
			if disc.Equal(expected) {
				return Result{Balanced: true, Discrepancy: disc}
			}
			return Result{Note: NoteReview, Discrepancy: disc}
		}
		if p.PLAs.Empty() {
			if disc.IsZero() {
				return Result{Balanced: true, Discrepancy: disc}
			}
			return Result{Note: NoteReview, Discrepancy: disc}
		}
		return plaResult(p, disc)

	default:
		// Unknown goes straight to manual triage.
		return Result{Note: NoteReview, Discrepancy: disc}
	}
}

// plaResult applies the PLA balancing rules: only interest (L6) explains a
// discrepancy. Non-interest PLAs never balance; a discrepancy matching the
// PLA sum is the non-fatal "Not Balanced-PLAs" case, anything else needs
// escalation.
func plaResult(p *model.Payment, disc decimal.Decimal) Result {
	if len(p.PLAs.Other) == 0 {
		if disc.Equal(p.PLAs.L6Amt) {
			return Result{Balanced: true, Discrepancy: disc}
		}
		return Result{Note: NoteReview, Discrepancy: disc}
	}
	if disc.Equal(p.PLAs.Sum()) {
		return Result{Note: NotePLAs, Discrepancy: disc}
	}
	return Result{Note: NoteReview, Discrepancy: disc}
}

// ledgerTotals sums paid amounts across the payment's services, split into
// posted and not-posted portions.
func ledgerTotals(p *model.Payment) (posted, notPosted decimal.Decimal) {
	posted, notPosted = decimal.Zero, decimal.Zero
	for _, key := range p.EncKeys {
		for _, svc := range p.Encounters[key].Services {
			if svc.PostingSts == "Not Posted" {
				notPosted = notPosted.Add(amount.Parse(svc.PdAmt))
			} else {
				posted = posted.Add(amount.Parse(svc.PdAmt))
			}
		}
	}
	return posted, notPosted
}

func hasNotPostedEncounter(p *model.Payment) bool {
	for _, review := range p.EncsToCheck {
		if review.HasTag(model.TagOtherNotPosted) {
			return true
		}
	}
	return false
}
