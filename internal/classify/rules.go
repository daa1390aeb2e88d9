package classify

import (
	"strings"

	"github.com/proliance-rcm/phil/internal/amount"
	"github.com/proliance-rcm/phil/internal/model"
)

// serviceContext carries everything a rule may inspect when classifying a
// single service: the service itself, the resolved payer, the CPT4 sets of
// sibling encounters sharing the same encounter number, and the configured
// service pairs.
type serviceContext struct {
	svc   model.Service
	payer string

	primaryCPT4s    map[string]bool // claim status 1, 19
	secondaryCPT4s  map[string]bool // claim status 2, 20
	tertiaryCPT4s   map[string]bool // claim status 3* or 21
	recoupmentCPT4s map[string]bool // claim status 22

	pairs ServicePairs
}

// pairedCPT4 returns the configured opposite code for the service's CPT4,
// or "" when no pair is configured.
func (c *serviceContext) pairedCPT4() string {
	return c.pairs.Opposite(c.svc.CPT4)
}

func (c *serviceContext) inNonRecoupment(cpt4 string) bool {
	return c.primaryCPT4s[cpt4] || c.secondaryCPT4s[cpt4] || c.tertiaryCPT4s[cpt4]
}

// verdict is the tri-state outcome of one rule: no match (keep evaluating),
// a tag, or a skip that ends evaluation without tagging (self-resolving
// situations such as a recoupment matched by its replacement claim).
type verdict int

const (
	noMatch verdict = iota
	tagged
	skipped
)

// rule is one (predicate, tag) entry in the ordered evaluation table.
type rule struct {
	name  string
	apply func(*serviceContext) (model.Tag, verdict)
}

// exactDescriptionTags are fixed sentinel descriptions written upstream by
// the posting engine; they win over every other rule.
var exactDescriptionTags = []struct {
	description string
	tag         model.Tag
}{
	{"Encounter payer not found.", model.TagEncPayerNotFound},
	{"Charge mismatch on amount.", model.TagMultipleToOne},
	{"Multiple payments found for the same line item.", model.TagMultipleToOne},
	{"Service line payments do not sum to claim level payment.", model.TagSvcNoMatchClm},
	{"Charge mismatch on CPT4.", model.TagChgMismatchCPT4},
}

// ruleTable is the single authoritative, ordered classification table.
// The first rule that returns tagged or skipped ends evaluation.
var ruleTable = []rule{
	{name: "exact_description", apply: matchExactDescription},
	{name: "not_posted", apply: matchNotPosted},
	{name: "recoupment", apply: matchRecoupment},
	{name: "non_recoupment", apply: matchNonRecoupment},
	{name: "secondary", apply: matchSecondary},
	{name: "tertiary", apply: matchTertiary},
}

// classifyService runs the service through the rule table and returns at
// most one tag.
func classifyService(ctx *serviceContext) (model.Tag, bool) {
	for _, r := range ruleTable {
		tag, v := r.apply(ctx)
		switch v {
		case tagged:
			return tag, true
		case skipped:
			return "", false
		}
	}
	return "", false
}

func matchExactDescription(ctx *serviceContext) (model.Tag, verdict) {
	for _, m := range exactDescriptionTags {
		if ctx.svc.Description == m.description {
			return m.tag, tagged
		}
	}
	return "", noMatch
}

func matchNotPosted(ctx *serviceContext) (model.Tag, verdict) {
	if ctx.svc.PostingSts == "Not Posted" {
		return model.TagOtherNotPosted, tagged
	}
	return "", noMatch
}

// matchRecoupment handles claim status 22. A recoupment whose paired CPT4
// appears in any non-recoupment sibling is self-resolving and skipped;
// otherwise the recoupment is tagged by whether its own CPT4 was re-billed.
func matchRecoupment(ctx *serviceContext) (model.Tag, verdict) {
	if ctx.svc.ClmSts != "22" {
		return "", noMatch
	}
	if opp := ctx.pairedCPT4(); opp != "" && ctx.inNonRecoupment(opp) {
		return "", skipped
	}
	if ctx.inNonRecoupment(ctx.svc.CPT4) {
		return model.Tag22With123, tagged
	}
	return model.Tag22No123, tagged
}

// matchNonRecoupment handles the appeal/adjustment checks for services that
// are not recoupments. A service whose CPT4 (or paired CPT4) appears on the
// recoupment side is skipped: the reversal rules own it.
func matchNonRecoupment(ctx *serviceContext) (model.Tag, verdict) {
	if ctx.svc.ClmSts == "22" {
		return "", noMatch
	}
	if ctx.recoupmentCPT4s[ctx.svc.CPT4] {
		return "", skipped
	}
	if opp := ctx.pairedCPT4(); opp != "" && ctx.recoupmentCPT4s[opp] {
		return "", skipped
	}

	if ctx.svc.TxnStatus == "Appeal" && amount.NonZero(ctx.svc.AdjAmt) {
		return model.TagAppealHasAdj, tagged
	}
	if ctx.svc.TxnStatus != "Appeal" && amount.Equal(ctx.svc.BillAmt, ctx.svc.AdjAmt) {
		return model.TagChgEqualAdj, tagged
	}
	return "", noMatch
}

var secondaryPayers = map[string]bool{
	"Medicare": true,
	"Tricare":  true,
	"DSHS":     true,
}

// matchSecondary handles claim statuses 2 and 20 via reason/remark code
// combinations and the special secondary payers.
func matchSecondary(ctx *serviceContext) (model.Tag, verdict) {
	if ctx.svc.ClmSts != "2" && ctx.svc.ClmSts != "20" {
		return "", noMatch
	}

	codes := append(append([]string{}, ctx.svc.Codes...), ctx.svc.Remarks...)
	if hasAllCodes(codes, "N408", "PR96") && hasAnyCode(codes, "CO45", "OA23") {
		return model.TagSecondaryN408PR96, tagged
	}
	if hasAnyCode(codes, "CO94", "OA94") && hasAnyCode(codes, "CO45", "OA23") &&
		hasAllCodes(codes, "PR96") {
		return model.TagSecondaryCO94OA94, tagged
	}
	if secondaryPayers[ctx.payer] {
		return model.TagSecondaryMcTricare, tagged
	}
	return "", noMatch
}

func matchTertiary(ctx *serviceContext) (model.Tag, verdict) {
	if isTertiaryStatus(ctx.svc.ClmSts) {
		return model.TagTertiary, tagged
	}
	return "", noMatch
}

func isTertiaryStatus(clmSts string) bool {
	return strings.HasPrefix(clmSts, "3") || clmSts == "21"
}

func hasAllCodes(codes []string, required ...string) bool {
	for _, want := range required {
		found := false
		for _, c := range codes {
			if c == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func hasAnyCode(codes []string, candidates ...string) bool {
	for _, want := range candidates {
		for _, c := range codes {
			if c == want {
				return true
			}
		}
	}
	return false
}
