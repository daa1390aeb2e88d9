// Package classify evaluates the ordered business-rule table against each
// service, aggregates tags per encounter, and determines payment statuses
// from the aggregate.
package classify

import (
	"log"
	"sort"

	"github.com/proliance-rcm/phil/internal/model"
)

// ServicePairs maps visit CPT4 codes to their established-patient
// counterparts (and back). A recoupment of one side is self-resolving when
// the other side was billed instead.
type ServicePairs map[string]string

// DefaultServicePairs returns the standard new/established visit pairs.
func DefaultServicePairs() ServicePairs {
	return NewServicePairs([][2]string{
		{"99202", "99212"},
		{"99203", "99213"},
		{"99204", "99214"},
		{"99205", "99215"},
		{"99206", "99216"},
	})
}

// NewServicePairs builds a bidirectional pair lookup.
func NewServicePairs(pairs [][2]string) ServicePairs {
	sp := make(ServicePairs, len(pairs)*2)
	for _, p := range pairs {
		sp[p[0]] = p[1]
		sp[p[1]] = p[0]
	}
	return sp
}

// Opposite returns the paired code for cpt4, or "".
func (sp ServicePairs) Opposite(cpt4 string) string {
	return sp[cpt4]
}

// Classifier tags encounters for review.
type Classifier struct {
	Pairs ServicePairs
}

// New returns a Classifier with the given service pairs; nil pairs fall
// back to the defaults.
func New(pairs ServicePairs) *Classifier {
	if pairs == nil {
		pairs = DefaultServicePairs()
	}
	return &Classifier{Pairs: pairs}
}

// TagEncounters classifies every encounter of every payment in the
// hierarchy, filling Encounter.Tags and Payment.EncsToCheck. The hierarchy
// structure itself is never mutated; classification of an already
// classified hierarchy yields identical results.
func (c *Classifier) TagEncounters(h *model.Hierarchy) {
	for _, eftNum := range h.Order {
		eft := h.EFTs[eftNum]
		for _, key := range eft.Keys {
			c.tagPayment(eft.Payments[key], eft.Payer)
		}
	}
	log.Printf("[classify] tagged encounters for %d EFTs", len(h.Order))
}

func (c *Classifier) tagPayment(p *model.Payment, payer string) {
	p.EncsToCheck = p.EncsToCheck[:0]
	for _, encKey := range p.EncKeys {
		enc := p.Encounters[encKey]
		review, ok := c.CheckEncounter(p, enc, payer)
		if !ok {
			enc.Tags = nil
			continue
		}
		enc.Tags = make([]model.Tag, len(review.Tags))
		for i, d := range review.Tags {
			enc.Tags[i] = d.Tag
		}
		p.EncsToCheck = append(p.EncsToCheck, review)
	}

	sort.SliceStable(p.EncsToCheck, func(i, j int) bool {
		a, b := p.EncsToCheck[i], p.EncsToCheck[j]
		if a.Num != b.Num {
			return a.Num < b.Num
		}
		return a.ClmSts < b.ClmSts
	})
}

// CheckEncounter classifies a single encounter in the context of its
// payment and returns the review detail, or ok=false when no service
// produced a tag and the encounter needs no review.
func (c *Classifier) CheckEncounter(p *model.Payment, enc *model.Encounter, payer string) (model.EncounterReview, bool) {
	sets := collectSiblingCPT4s(p, enc.Num)

	tagCPT4s := make(map[model.Tag]map[string]bool)
	var tagOrder []model.Tag
	for _, svc := range enc.Services {
		ctx := &serviceContext{
			svc:             svc,
			payer:           payer,
			primaryCPT4s:    sets.primary,
			secondaryCPT4s:  sets.secondary,
			tertiaryCPT4s:   sets.tertiary,
			recoupmentCPT4s: sets.recoupment,
			pairs:           c.Pairs,
		}
		tag, ok := classifyService(ctx)
		if !ok {
			continue
		}
		if _, seen := tagCPT4s[tag]; !seen {
			tagOrder = append(tagOrder, tag)
			tagCPT4s[tag] = make(map[string]bool)
		}
		tagCPT4s[tag][svc.CPT4] = true
	}

	if len(tagOrder) == 0 {
		return model.EncounterReview{}, false
	}

	review := model.EncounterReview{
		Key:    enc.Key,
		Num:    enc.Num,
		ClmSts: enc.Status,
	}
	for _, tag := range tagOrder {
		cpt4s := make([]string, 0, len(tagCPT4s[tag]))
		for code := range tagCPT4s[tag] {
			cpt4s = append(cpt4s, code)
		}
		sort.Strings(cpt4s)
		review.Tags = append(review.Tags, model.TagDetail{Tag: tag, CPT4s: cpt4s})
	}
	return review, true
}

// siblingCPT4s are the CPT4 code sets of all encounters in a payment that
// share one encounter number, bucketed by claim-status class.
type siblingCPT4s struct {
	primary    map[string]bool
	secondary  map[string]bool
	tertiary   map[string]bool
	recoupment map[string]bool
}

func collectSiblingCPT4s(p *model.Payment, encNum string) siblingCPT4s {
	sets := siblingCPT4s{
		primary:    make(map[string]bool),
		secondary:  make(map[string]bool),
		tertiary:   make(map[string]bool),
		recoupment: make(map[string]bool),
	}
	for _, key := range p.EncKeys {
		enc := p.Encounters[key]
		if enc.Num != encNum {
			continue
		}
		var bucket map[string]bool
		switch {
		case enc.Status == "22":
			bucket = sets.recoupment
		case enc.Status == "1" || enc.Status == "19":
			bucket = sets.primary
		case enc.Status == "2" || enc.Status == "20":
			bucket = sets.secondary
		case isTertiaryStatus(enc.Status):
			bucket = sets.tertiary
		default:
			continue
		}
		for _, svc := range enc.Services {
			if svc.CPT4 != "" {
				bucket[svc.CPT4] = true
			}
		}
	}
	return sets
}
