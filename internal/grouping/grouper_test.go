package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proliance-rcm/phil/internal/model"
)

func TestBuildHierarchy(t *testing.T) {
	rows := []model.Row{
		{
			EFTNum: "EFT1", PracticeID: "WS1", ChkNbr: "CHK100",
			EncNbr: "E1", ClmStsCod: "1", CPT4: "99213",
			BillAmt: "100.00", PdAmt: "80.00",
			File: "WS1_WAY1_500.00_CHK100_EFT_20250101", PayerFolder: "Aetna",
		},
		{
			EFTNum: "EFT1", PracticeID: "WS1", ChkNbr: "CHK100",
			EncNbr: "E1", ClmStsCod: "1", CPT4: "99214",
			BillAmt: "150.00", PdAmt: "120.00",
			File: "WS1_WAY1_500.00_CHK100_EFT_20250101",
		},
		{
			EFTNum: "EFT1", PracticeID: "WS1", ChkNbr: "CHK100",
			EncNbr: "E1", ClmStsCod: "22 (Reprocessed)", CPT4: "99213",
			File: "WS1_WAY1_500.00_CHK100_EFT_20250101",
		},
	}

	h := Grouper{DefaultPayer: "Unknown"}.Build(rows)

	require.Equal(t, []string{"EFT1"}, h.Order)
	eft := h.EFTs["EFT1"]
	require.NotNil(t, eft)
	assert.Equal(t, "Aetna", eft.Payer)
	assert.False(t, eft.IsSplit())

	key := model.PaymentKey{PracticeID: "WS1", ChkNbr: "CHK100"}
	p := eft.Payments[key]
	require.NotNil(t, p)
	assert.Equal(t, "WS1", p.PracticeID)
	assert.Equal(t, "CHK100", p.Num)
	assert.Equal(t, "500", p.Amt.String())

	// Two encounters: the parenthetical suffix is stripped before keying,
	// so the reprocessed row is a distinct status-22 encounter.
	require.Len(t, p.EncKeys, 2)
	primary := p.Encounters[model.EncounterKey{Num: "E1", ClmSts: "1"}]
	require.NotNil(t, primary)
	require.Len(t, primary.Services, 2)

	recoup := p.Encounters[model.EncounterKey{Num: "E1", ClmSts: "22"}]
	require.NotNil(t, recoup)
	assert.Equal(t, "22", recoup.Status)
}

func TestBuildExcludesMissingEncounterEFTs(t *testing.T) {
	rows := []model.Row{
		{EFTNum: "EFT1", PracticeID: "WS1", ChkNbr: "C1", EncNbr: "E1", ClmStsCod: "1", CPT4: "99213"},
		{EFTNum: "EFT2", Description: "Encounter not found."},
		{EFTNum: "EFT2", PracticeID: "WS1", ChkNbr: "C2", EncNbr: "E2", ClmStsCod: "1", CPT4: "99214"},
	}

	h := Grouper{}.Build(rows)

	assert.Equal(t, []string{"EFT2"}, h.Excluded)
	assert.Equal(t, []string{"EFT1"}, h.Order)
	assert.NotContains(t, h.EFTs, "EFT2", "the whole EFT is excluded, not just the flagged row")
}

func TestBuildSkipsBlankKeys(t *testing.T) {
	rows := []model.Row{
		{EFTNum: "", EncNbr: "E1", ClmStsCod: "1", CPT4: "99213"},
		{EFTNum: "EFT1", PracticeID: "", ChkNbr: "", EncNbr: "E1", ClmStsCod: "1", CPT4: "99213"},
	}

	h := Grouper{}.Build(rows)

	require.Equal(t, []string{"EFT1"}, h.Order)
	assert.Empty(t, h.EFTs["EFT1"].Keys, "blank practice and check number never form a payment")
}

func TestPaymentIdentityFallback(t *testing.T) {
	key := model.PaymentKey{PracticeID: "WS9", ChkNbr: "CHK9"}

	t.Run("malformed File falls back to key", func(t *testing.T) {
		practiceID, num, amt := paymentIdentity(key, []model.Row{{File: "short_name"}})
		assert.Equal(t, "WS9", practiceID)
		assert.Equal(t, "CHK9", num)
		assert.True(t, amt.IsZero())
	})

	t.Run("unreadable amount keeps parsed identity", func(t *testing.T) {
		practiceID, num, amt := paymentIdentity(key, []model.Row{{File: "WS1_WAY1_bad_CHK1_EFT_20250101"}})
		assert.Equal(t, "WS1", practiceID)
		assert.Equal(t, "CHK1", num)
		assert.True(t, amt.IsZero())
	})

	t.Run("blank File falls back to key", func(t *testing.T) {
		practiceID, num, amt := paymentIdentity(key, []model.Row{{}})
		assert.Equal(t, "WS9", practiceID)
		assert.Equal(t, "CHK9", num)
		assert.True(t, amt.IsZero())
	})
}

func TestBuildServiceDefaults(t *testing.T) {
	svc := buildService(model.Row{
		CPT4: "99213", ClmStsCod: "1 (Primary)",
		ReasonCd: "CO45", RemarkCodes: "N408",
	})
	assert.Equal(t, "1", svc.ClmSts)
	assert.Equal(t, "0", svc.AdjAmt, "missing adjustment amount defaults to zero")
	assert.Equal(t, []string{"CO45"}, svc.Codes)
	assert.Equal(t, []string{"N408"}, svc.Remarks)
}

func TestSplitEFT(t *testing.T) {
	rows := []model.Row{
		{EFTNum: "EFT1", PracticeID: "WS1", ChkNbr: "C1", EncNbr: "E1", ClmStsCod: "1", CPT4: "99213"},
		{EFTNum: "EFT1", PracticeID: "WS2", ChkNbr: "C2", EncNbr: "E2", ClmStsCod: "1", CPT4: "99214"},
	}

	h := Grouper{}.Build(rows)
	eft := h.EFTs["EFT1"]
	require.NotNil(t, eft)
	assert.True(t, eft.IsSplit())
	assert.Len(t, eft.Keys, 2)
}
