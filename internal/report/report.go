// Package report renders the batch results as markdown files.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/proliance-rcm/phil/internal/analytics"
	"github.com/proliance-rcm/phil/internal/balance"
	"github.com/proliance-rcm/phil/internal/model"
)

// EFTsMarkdown renders the full hierarchy as nested toggle sections, split
// and not-split EFTs separated, only review-worthy encounters expanded.
func EFTsMarkdown(payerName string, h *model.Hierarchy) string {
	var notSplit, split []string
	for _, eftNum := range h.Order {
		if h.EFTs[eftNum].IsSplit() {
			split = append(split, eftNum)
		} else {
			notSplit = append(notSplit, eftNum)
		}
	}
	sort.Strings(notSplit)
	sort.Strings(split)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s EFTs Analysis\n\n", payerName)

	writeEFTGroup(&b, h, fmt.Sprintf("EFTs - Not Split (%d)", len(notSplit)), notSplit)
	writeEFTGroup(&b, h, fmt.Sprintf("EFTs - Split (%d)", len(split)), split)

	if len(h.Excluded) > 0 {
		openDetails(&b, fmt.Sprintf("EFTs - Excluded (%d)", len(h.Excluded)))
		for _, eftNum := range h.Excluded {
			fmt.Fprintf(&b, "- %s\n", eftNum)
		}
		b.WriteString("\n")
		closeDetails(&b)
	}
	return b.String()
}

func writeEFTGroup(b *strings.Builder, h *model.Hierarchy, title string, eftNums []string) {
	openDetails(b, title)
	for _, eftNum := range eftNums {
		writeEFT(b, eftNum, h.EFTs[eftNum])
	}
	closeDetails(b)
}

func writeEFT(b *strings.Builder, eftNum string, eft *model.EFT) {
	total := 0
	for _, key := range eft.Keys {
		total += len(eft.Payments[key].EncsToCheck)
	}

	openDetails(b, fmt.Sprintf("EFT: %s (Payer: %s, Payments: %d, Encs To Check: %d)",
		eftNum, eft.Payer, len(eft.Payments), total))
	for _, key := range eft.Keys {
		writePayment(b, key, eft.Payments[key])
	}
	closeDetails(b)
}

func writePayment(b *strings.Builder, key model.PaymentKey, p *model.Payment) {
	openDetails(b, fmt.Sprintf("Payment: %s (Practice: %s, Num: %s, Status: %s)",
		key.String(), p.PracticeID, p.Num, p.Status))

	openDetails(b, fmt.Sprintf("PLAs (L6: %d, Other: %d)", len(p.PLAs.L6), len(p.PLAs.Other)))
	writePLAList(b, "L6 PLAs", p.PLAs.L6)
	writePLAList(b, "Other PLAs", p.PLAs.Other)
	closeDetails(b)

	openDetails(b, fmt.Sprintf("Encounters to Check (%d)", len(p.EncsToCheck)))
	if len(p.EncsToCheck) == 0 {
		b.WriteString("No encounters require review.\n\n")
	}
	for _, review := range p.EncsToCheck {
		writeEncounterReview(b, review)
	}
	closeDetails(b)

	closeDetails(b)
}

func writePLAList(b *strings.Builder, title string, plas []string) {
	if len(plas) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s:**\n", title)
	for _, pla := range plas {
		fmt.Fprintf(b, "- %s\n", pla)
	}
	b.WriteString("\n")
}

func writeEncounterReview(b *strings.Builder, review model.EncounterReview) {
	openDetails(b, fmt.Sprintf("Encounter: %s (Status: %s, Review: %d)",
		review.Num, review.ClmSts, len(review.Tags)))
	for _, d := range review.Tags {
		cpt4s := "No CPT4"
		if len(d.CPT4s) > 0 {
			cpt4s = strings.Join(d.CPT4s, ", ")
		}
		fmt.Fprintf(b, "- %s: %s\n", d.Tag, cpt4s)
	}
	b.WriteString("\n")
	closeDetails(b)
}

// AnalyticsMarkdown renders the analytics scenarios and the balancing
// outcome per payment.
func AnalyticsMarkdown(payerName string, h *model.Hierarchy, res *analytics.Results, sheet *balance.Sheet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Analytics\n\n", payerName)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Mixed Post without PLAs: %d\n", res.Summary.MixedPostNoPLAs)
	fmt.Fprintf(&b, "- Mixed Post with only L6 PLAs: %d\n", res.Summary.MixedPostL6Only)
	fmt.Fprintf(&b, "- Encounters with CPT4 charge mismatches: %d\n", res.Summary.ChargeMismatchCPT4)
	b.WriteString("\n")

	writePaymentList(&b, "Mixed Post - No PLAs", res.MixedPostNoPLAs)
	writePaymentList(&b, "Mixed Post - L6 PLAs Only", res.MixedPostL6Only)
	writeMismatchList(&b, res.ChargeMismatchCPT4)

	b.WriteString("## Largest Review Loads\n\n")
	if res.MaxNotSplitPayment != nil {
		p := res.MaxNotSplitPayment
		fmt.Fprintf(&b, "- Payment (not split): EFT %s, practice %s, num %s, %d encounters to check\n",
			p.EFTNum, p.PracticeID, p.PaymentNum, p.EncsToCheck)
	}
	if res.MaxSplitEFT != nil {
		fmt.Fprintf(&b, "- EFT (split): %s, %d encounters to check across %d payments\n",
			res.MaxSplitEFT.EFTNum, res.MaxSplitEFT.TotalEncsToCheck, len(res.MaxSplitEFT.Payments))
	}
	if res.MaxNotSplitPayment == nil && res.MaxSplitEFT == nil {
		b.WriteString("- No encounters to check in this batch.\n")
	}
	b.WriteString("\n")

	if sheet != nil {
		writeBalanceSection(&b, h, sheet)
	}
	return b.String()
}

func writePaymentList(b *strings.Builder, title string, infos []analytics.PaymentInfo) {
	fmt.Fprintf(b, "## %s (%d)\n\n", title, len(infos))
	if len(infos) == 0 {
		b.WriteString("None.\n\n")
		return
	}
	b.WriteString("| EFT | Practice | Payment | Amount | Encs To Check | Encounters |\n")
	b.WriteString("|-----|----------|---------|--------|---------------|------------|\n")
	for _, p := range infos {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %d | %d |\n",
			p.EFTNum, p.PracticeID, p.PaymentNum, p.Amt.StringFixed(2), p.EncsToCheck, p.TotalEncounters)
	}
	b.WriteString("\n")
}

func writeMismatchList(b *strings.Builder, infos []analytics.MismatchInfo) {
	fmt.Fprintf(b, "## CPT4 Charge Mismatches (%d)\n\n", len(infos))
	if len(infos) == 0 {
		b.WriteString("None.\n\n")
		return
	}
	b.WriteString("| EFT | Practice | Payment | Encounter | Status | CPT4s | Encs To Check |\n")
	b.WriteString("|-----|----------|---------|-----------|--------|-------|---------------|\n")
	for _, m := range infos {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %d |\n",
			m.EFTNum, m.PracticeID, m.PaymentNum, m.Key.Num, m.Key.ClmSts,
			strings.Join(m.CPT4s, ", "), m.EncsToCheck)
	}
	b.WriteString("\n")
}

func writeBalanceSection(b *strings.Builder, h *model.Hierarchy, sheet *balance.Sheet) {
	b.WriteString("## Balancing\n\n")
	b.WriteString("| EFT | Payment | Balanced | Note | Discrepancy |\n")
	b.WriteString("|-----|---------|----------|------|-------------|\n")
	for _, eftNum := range h.Order {
		eft := h.EFTs[eftNum]
		for _, key := range eft.Keys {
			r, ok := sheet.Result(eftNum, key)
			if !ok {
				continue
			}
			balanced := "no"
			if r.Balanced {
				balanced = "yes"
			}
			fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
				eftNum, key.String(), balanced, r.Note, r.Discrepancy.StringFixed(2))
		}
	}
	b.WriteString("\n")
}

// Write saves a rendered markdown document under dir.
func Write(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}

func openDetails(b *strings.Builder, summary string) {
	fmt.Fprintf(b, "<details markdown=\"1\">\n<summary>%s</summary>\n\n", summary)
}

func closeDetails(b *strings.Builder) {
	b.WriteString("</details>\n\n")
}
