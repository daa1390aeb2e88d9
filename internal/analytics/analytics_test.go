package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proliance-rcm/phil/internal/model"
)

func reviewWith(num string, tags ...model.Tag) model.EncounterReview {
	r := model.EncounterReview{Key: model.EncounterKey{Num: num, ClmSts: "1"}, Num: num, ClmSts: "1"}
	for _, tag := range tags {
		r.Tags = append(r.Tags, model.TagDetail{Tag: tag, CPT4s: []string{"99213"}})
	}
	return r
}

func mixedPayment(chkNbr string, plas model.PLASet, reviews ...model.EncounterReview) (model.PaymentKey, *model.Payment) {
	key := model.PaymentKey{PracticeID: "WS1", ChkNbr: chkNbr}
	return key, &model.Payment{
		Key:         key,
		PracticeID:  "WS1",
		Num:         chkNbr,
		Amt:         decimal.RequireFromString("100.00"),
		Status:      model.StatusMixedPost,
		PLAs:        plas,
		EncsToCheck: reviews,
		Encounters:  map[model.EncounterKey]*model.Encounter{},
	}
}

func addEFT(h *model.Hierarchy, eftNum string, keys []model.PaymentKey, payments map[model.PaymentKey]*model.Payment) {
	h.Order = append(h.Order, eftNum)
	h.EFTs[eftNum] = &model.EFT{Num: eftNum, Payer: "Aetna", Keys: keys, Payments: payments}
}

func TestAnalyze(t *testing.T) {
	h := &model.Hierarchy{EFTs: make(map[string]*model.EFT)}

	// Not split, Mixed Post without PLAs, two encounters to check.
	k1, p1 := mixedPayment("C1", model.PLASet{},
		reviewWith("E1", model.TagOtherNotPosted),
		reviewWith("E2", model.TagChgMismatchCPT4))
	addEFT(h, "EFT1", []model.PaymentKey{k1}, map[model.PaymentKey]*model.Payment{k1: p1})

	// Not split, Mixed Post with only L6 PLAs, one encounter to check.
	l6 := model.PLASet{L6: []string{"interest"}, L6Amt: decimal.RequireFromString("1.25")}
	k2, p2 := mixedPayment("C2", l6, reviewWith("E3", model.TagOtherNotPosted))
	addEFT(h, "EFT2", []model.PaymentKey{k2}, map[model.PaymentKey]*model.Payment{k2: p2})

	// Split EFT with three encounters to check across two payments.
	k3, p3 := mixedPayment("C3", model.PLASet{},
		reviewWith("E4", model.TagOtherNotPosted), reviewWith("E5", model.TagOtherNotPosted))
	k4, p4 := mixedPayment("C4", model.PLASet{}, reviewWith("E6", model.TagOtherNotPosted))
	addEFT(h, "EFT3", []model.PaymentKey{k3, k4},
		map[model.PaymentKey]*model.Payment{k3: p3, k4: p4})

	res := Analyze(h)

	require.Len(t, res.MixedPostNoPLAs, 1)
	assert.Equal(t, "EFT1", res.MixedPostNoPLAs[0].EFTNum)
	assert.Equal(t, 2, res.MixedPostNoPLAs[0].EncsToCheck)

	require.Len(t, res.MixedPostL6Only, 1)
	assert.Equal(t, "EFT2", res.MixedPostL6Only[0].EFTNum)

	require.Len(t, res.ChargeMismatchCPT4, 1)
	assert.Equal(t, "E2", res.ChargeMismatchCPT4[0].Key.Num)
	assert.Equal(t, []string{"99213"}, res.ChargeMismatchCPT4[0].CPT4s)

	require.NotNil(t, res.MaxNotSplitPayment)
	assert.Equal(t, "EFT1", res.MaxNotSplitPayment.EFTNum)
	assert.Equal(t, 2, res.MaxNotSplitPayment.EncsToCheck)

	require.NotNil(t, res.MaxSplitEFT)
	assert.Equal(t, "EFT3", res.MaxSplitEFT.EFTNum)
	assert.Equal(t, 3, res.MaxSplitEFT.TotalEncsToCheck)

	assert.Equal(t, 1, res.Summary.MixedPostNoPLAs)
	assert.Equal(t, 1, res.Summary.MixedPostL6Only)
	assert.Equal(t, 1, res.Summary.ChargeMismatchCPT4)
	assert.Equal(t, 2, res.Summary.LargestNoPLAsEncs)
}

func TestAnalyzeOrdersLists(t *testing.T) {
	h := &model.Hierarchy{EFTs: make(map[string]*model.EFT)}

	kSmall, pSmall := mixedPayment("C1", model.PLASet{},
		reviewWith("E1", model.TagChgMismatchCPT4))
	addEFT(h, "EFT1", []model.PaymentKey{kSmall}, map[model.PaymentKey]*model.Payment{kSmall: pSmall})

	kBig, pBig := mixedPayment("C2", model.PLASet{},
		reviewWith("E2", model.TagChgMismatchCPT4),
		reviewWith("E3", model.TagOtherNotPosted),
		reviewWith("E4", model.TagOtherNotPosted))
	addEFT(h, "EFT2", []model.PaymentKey{kBig}, map[model.PaymentKey]*model.Payment{kBig: pBig})

	res := Analyze(h)

	// Mixed Post list descends by review load; mismatches ascend.
	require.Len(t, res.MixedPostNoPLAs, 2)
	assert.Equal(t, "EFT2", res.MixedPostNoPLAs[0].EFTNum)
	assert.Equal(t, "EFT1", res.MixedPostNoPLAs[1].EFTNum)

	require.Len(t, res.ChargeMismatchCPT4, 2)
	assert.Equal(t, "E1", res.ChargeMismatchCPT4[0].Key.Num)
	assert.Equal(t, "E2", res.ChargeMismatchCPT4[1].Key.Num)
}

func TestAnalyzeEmptyHierarchy(t *testing.T) {
	h := &model.Hierarchy{EFTs: make(map[string]*model.EFT)}
	res := Analyze(h)

	assert.Empty(t, res.MixedPostNoPLAs)
	assert.Nil(t, res.MaxNotSplitPayment)
	assert.Nil(t, res.MaxSplitEFT)
	assert.Equal(t, 0, res.Summary.ChargeMismatchCPT4)
}
