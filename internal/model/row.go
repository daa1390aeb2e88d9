package model

// Row is one raw transaction record from the combined payment table.
// Every field is kept as a string to preserve the source TEXT formatting;
// amounts are decimal-formatted strings and are only parsed at computation
// boundaries.
type Row struct {
	EFTNum      string
	PracticeID  string
	ChkNbr      string
	EncNbr      string
	ClmStsCod   string
	CPT4        string
	Description string
	ClmNbr      string
	PostingSts  string
	TxnStatus   string
	BillAmt     string
	PdAmt       string
	DedAmt      string
	AdjAmt      string
	ReasonCd    string
	RemarkCodes string
	File        string
	PayerFolder string

	// Carried for scrubbing (interest/PLA fusion), not part of the
	// classification hierarchy.
	PatName string
	PolNbr  string
	SvcDate string
}
