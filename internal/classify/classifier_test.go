package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proliance-rcm/phil/internal/model"
)

func newEncounter(num, clmSts string, services ...model.Service) *model.Encounter {
	return &model.Encounter{
		Key:      model.EncounterKey{Num: num, ClmSts: clmSts},
		Num:      num,
		Status:   clmSts,
		Services: services,
	}
}

func newPayment(encs ...*model.Encounter) *model.Payment {
	p := &model.Payment{Encounters: make(map[model.EncounterKey]*model.Encounter)}
	for _, enc := range encs {
		p.EncKeys = append(p.EncKeys, enc.Key)
		p.Encounters[enc.Key] = enc
	}
	return p
}

func svc(clmSts, cpt4 string) model.Service {
	return model.Service{ClmSts: clmSts, CPT4: cpt4, AdjAmt: "0"}
}

func TestExactDescriptionTags(t *testing.T) {
	tests := []struct {
		description string
		want        model.Tag
	}{
		{"Encounter payer not found.", model.TagEncPayerNotFound},
		{"Charge mismatch on amount.", model.TagMultipleToOne},
		{"Multiple payments found for the same line item.", model.TagMultipleToOne},
		{"Service line payments do not sum to claim level payment.", model.TagSvcNoMatchClm},
		{"Charge mismatch on CPT4.", model.TagChgMismatchCPT4},
	}
	c := New(nil)
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			s := svc("1", "99213")
			s.Description = tt.description
			enc := newEncounter("E1", "1", s)
			p := newPayment(enc)

			review, ok := c.CheckEncounter(p, enc, "Aetna")
			require.True(t, ok)
			assert.True(t, review.HasTag(tt.want))
		})
	}
}

func TestNotPostedBeatsLaterRules(t *testing.T) {
	s := svc("22", "99213")
	s.PostingSts = "Not Posted"
	enc := newEncounter("E1", "22", s)
	p := newPayment(enc)

	review, ok := New(nil).CheckEncounter(p, enc, "Aetna")
	require.True(t, ok)
	assert.True(t, review.HasTag(model.TagOtherNotPosted))
	assert.False(t, review.HasTag(model.Tag22No123), "the first matching rule ends evaluation")
}

func TestRecoupment(t *testing.T) {
	c := New(nil)

	t.Run("no rebill tags 22_no_123", func(t *testing.T) {
		enc := newEncounter("E1", "22", svc("22", "99213"))
		p := newPayment(enc)

		review, ok := c.CheckEncounter(p, enc, "Aetna")
		require.True(t, ok)
		assert.Equal(t, []string{"99213"}, review.CPT4sFor(model.Tag22No123))
	})

	t.Run("rebilled CPT4 tags 22_with_123", func(t *testing.T) {
		recoup := newEncounter("E1", "22", svc("22", "99213"))
		rebill := newEncounter("E1", "1", svc("1", "99213"))
		p := newPayment(recoup, rebill)

		review, ok := c.CheckEncounter(p, recoup, "Aetna")
		require.True(t, ok)
		assert.True(t, review.HasTag(model.Tag22With123))
	})

	t.Run("paired code self-resolves", func(t *testing.T) {
		// 99203 was recouped and 99213 billed in its place.
		recoup := newEncounter("E1", "22", svc("22", "99203"))
		rebill := newEncounter("E1", "1", svc("1", "99213"))
		p := newPayment(recoup, rebill)

		_, ok := c.CheckEncounter(p, recoup, "Aetna")
		assert.False(t, ok, "pair substitution needs no review")
	})

	t.Run("sibling with different encounter number is ignored", func(t *testing.T) {
		recoup := newEncounter("E1", "22", svc("22", "99213"))
		other := newEncounter("E2", "1", svc("1", "99213"))
		p := newPayment(recoup, other)

		review, ok := c.CheckEncounter(p, recoup, "Aetna")
		require.True(t, ok)
		assert.True(t, review.HasTag(model.Tag22No123))
	})
}

func TestNonRecoupment(t *testing.T) {
	c := New(nil)

	t.Run("recouped CPT4 skips the replacement side", func(t *testing.T) {
		recoup := newEncounter("E1", "22", svc("22", "99213"))
		rebill := newEncounter("E1", "1", svc("1", "99213"))
		p := newPayment(recoup, rebill)

		_, ok := c.CheckEncounter(p, rebill, "Aetna")
		assert.False(t, ok, "the recoupment side owns the review")
	})

	t.Run("appeal with adjustment", func(t *testing.T) {
		s := svc("1", "99213")
		s.TxnStatus = "Appeal"
		s.AdjAmt = "10.00"
		enc := newEncounter("E1", "1", s)
		p := newPayment(enc)

		review, ok := c.CheckEncounter(p, enc, "Aetna")
		require.True(t, ok)
		assert.True(t, review.HasTag(model.TagAppealHasAdj))
	})

	t.Run("appeal without adjustment passes", func(t *testing.T) {
		s := svc("1", "99213")
		s.TxnStatus = "Appeal"
		enc := newEncounter("E1", "1", s)
		p := newPayment(enc)

		_, ok := c.CheckEncounter(p, enc, "Aetna")
		assert.False(t, ok)
	})

	t.Run("charge fully adjusted", func(t *testing.T) {
		s := svc("1", "99213")
		s.BillAmt = "100.00"
		s.AdjAmt = "100.00"
		enc := newEncounter("E1", "1", s)
		p := newPayment(enc)

		review, ok := c.CheckEncounter(p, enc, "Aetna")
		require.True(t, ok)
		assert.True(t, review.HasTag(model.TagChgEqualAdj))
	})

	t.Run("blank amounts never compare equal", func(t *testing.T) {
		s := svc("1", "99213")
		s.BillAmt = ""
		s.AdjAmt = ""
		enc := newEncounter("E1", "1", s)
		p := newPayment(enc)

		_, ok := c.CheckEncounter(p, enc, "Aetna")
		assert.False(t, ok)
	})
}

func TestSecondary(t *testing.T) {
	c := New(nil)

	secondarySvc := func(codes, remarks []string) model.Service {
		s := svc("2", "99213")
		s.Codes = codes
		s.Remarks = remarks
		return s
	}

	t.Run("N408 PR96 with CO45", func(t *testing.T) {
		enc := newEncounter("E1", "2", secondarySvc([]string{"CO45", "PR96"}, []string{"N408"}))
		p := newPayment(enc)

		review, ok := c.CheckEncounter(p, enc, "Aetna")
		require.True(t, ok)
		assert.True(t, review.HasTag(model.TagSecondaryN408PR96))
	})

	t.Run("CO94 with OA23 and PR96", func(t *testing.T) {
		enc := newEncounter("E1", "2", secondarySvc([]string{"CO94", "OA23", "PR96"}, nil))
		p := newPayment(enc)

		review, ok := c.CheckEncounter(p, enc, "Aetna")
		require.True(t, ok)
		assert.True(t, review.HasTag(model.TagSecondaryCO94OA94))
	})

	t.Run("special secondary payer", func(t *testing.T) {
		enc := newEncounter("E1", "20", svc("20", "99213"))
		p := newPayment(enc)

		review, ok := c.CheckEncounter(p, enc, "Medicare")
		require.True(t, ok)
		assert.True(t, review.HasTag(model.TagSecondaryMcTricare))
	})

	t.Run("ordinary payer without codes passes", func(t *testing.T) {
		enc := newEncounter("E1", "2", svc("2", "99213"))
		p := newPayment(enc)

		_, ok := c.CheckEncounter(p, enc, "Aetna")
		assert.False(t, ok)
	})
}

func TestTertiary(t *testing.T) {
	c := New(nil)
	for _, clmSts := range []string{"3", "30", "21"} {
		enc := newEncounter("E1", clmSts, svc(clmSts, "99213"))
		p := newPayment(enc)

		review, ok := c.CheckEncounter(p, enc, "Aetna")
		require.True(t, ok, "status %s", clmSts)
		assert.True(t, review.HasTag(model.TagTertiary), "status %s", clmSts)
	}
}

func TestCheckEncounterDedupesCPT4s(t *testing.T) {
	enc := newEncounter("E1", "22",
		svc("22", "99214"), svc("22", "99213"), svc("22", "99213"))
	p := newPayment(enc)

	review, ok := New(nil).CheckEncounter(p, enc, "Aetna")
	require.True(t, ok)
	assert.Equal(t, []string{"99213", "99214"}, review.CPT4sFor(model.Tag22No123),
		"CPT4s are deduped and sorted")
}

func TestTagEncountersIsIdempotent(t *testing.T) {
	recoup := newEncounter("E2", "22", svc("22", "99213"))
	clean := newEncounter("E1", "1", svc("1", "99499"))
	p := newPayment(clean, recoup)
	p.Key = model.PaymentKey{PracticeID: "WS1", ChkNbr: "C1"}

	eft := &model.EFT{
		Num:      "EFT1",
		Payer:    "Aetna",
		Keys:     []model.PaymentKey{p.Key},
		Payments: map[model.PaymentKey]*model.Payment{p.Key: p},
	}
	h := &model.Hierarchy{Order: []string{"EFT1"}, EFTs: map[string]*model.EFT{"EFT1": eft}}

	c := New(nil)
	c.TagEncounters(h)
	require.Len(t, p.EncsToCheck, 1)
	first := p.EncsToCheck[0]
	assert.Equal(t, "E2", first.Num)
	assert.Empty(t, clean.Tags)
	assert.Equal(t, []model.Tag{model.Tag22No123}, recoup.Tags)

	c.TagEncounters(h)
	require.Len(t, p.EncsToCheck, 1)
	assert.Equal(t, first, p.EncsToCheck[0])
}

func TestServicePairs(t *testing.T) {
	sp := DefaultServicePairs()
	assert.Equal(t, "99213", sp.Opposite("99203"))
	assert.Equal(t, "99203", sp.Opposite("99213"))
	assert.Equal(t, "", sp.Opposite("99499"))
}
