package classify

import (
	"log"

	"github.com/proliance-rcm/phil/internal/model"
)

// PaymentStatuses assigns every payment its posting status from the PLA
// state and the aggregated encounter tags. Must run after TagEncounters.
func PaymentStatuses(h *model.Hierarchy) {
	unknown := 0
	for _, eftNum := range h.Order {
		eft := h.EFTs[eftNum]
		for _, key := range eft.Keys {
			p := eft.Payments[key]
			p.Status = determineStatus(p)
			if p.Status == model.StatusUnknown {
				unknown++
				log.Printf("[classify] payment %s in EFT %s has unrecognized status combination",
					p.Key, eftNum)
			}
		}
	}
	if unknown > 0 {
		log.Printf("[classify] %d payments need manual triage (status Unknown)", unknown)
	}
}

// determineStatus evaluates the closed status enum in fixed priority order.
// Unknown is a real outcome surfaced for manual triage, never an error.
func determineStatus(p *model.Payment) model.PaymentStatus {
	hasPLAs := !p.PLAs.Empty()

	if len(p.EncsToCheck) == 0 {
		if hasPLAs {
			return model.StatusPLAOnly
		}
		return model.StatusImmediatePost
	}

	tags := make(map[model.Tag]bool)
	for _, review := range p.EncsToCheck {
		for _, d := range review.Tags {
			tags[d.Tag] = true
		}
	}

	for tag := range tags {
		if model.NotPostedTags[tag] {
			return model.StatusMixedPost
		}
	}

	if !hasPLAs {
		onlyQuick := true
		for tag := range tags {
			if !model.QuickPostTags[tag] {
				onlyQuick = false
				break
			}
		}
		if onlyQuick {
			return model.StatusQuickPost
		}

		for tag := range tags {
			if model.CheckNGAndDataTags[tag] || model.ReversalTags[tag] {
				return model.StatusFullPost
			}
		}
	}

	return model.StatusUnknown
}
