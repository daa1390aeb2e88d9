package model

// Tag classifies why a service within an encounter needs review.
type Tag string

const (
	Tag22No123            Tag = "22_no_123"
	Tag22With123          Tag = "22_with_123"
	TagAppealHasAdj       Tag = "appeal_has_adj"
	TagChgEqualAdj        Tag = "chg_equal_adj"
	TagSecondaryN408PR96  Tag = "secondary_n408_pr96"
	TagSecondaryCO94OA94  Tag = "secondary_co94_oa94"
	TagSecondaryMcTricare Tag = "secondary_mc_tricare_dshs"
	TagTertiary           Tag = "tertiary"
	TagEncPayerNotFound   Tag = "enc_payer_not_found"
	TagMultipleToOne      Tag = "multiple_to_one"
	TagOtherNotPosted     Tag = "other_not_posted"
	TagSvcNoMatchClm      Tag = "svc_no_match_clm"
	TagChgMismatchCPT4    Tag = "chg_mismatch_cpt4"
)

// NotPostedTags are the tags whose presence on any encounter forces a
// payment into Mixed Post.
var NotPostedTags = map[Tag]bool{
	TagEncPayerNotFound: true,
	TagMultipleToOne:    true,
	TagOtherNotPosted:   true,
	TagSvcNoMatchClm:    true,
	TagChgMismatchCPT4:  true,
}

// QuickPostTags are the only tags a Quick Post payment may carry.
var QuickPostTags = map[Tag]bool{
	TagAppealHasAdj:      true,
	TagChgEqualAdj:       true,
	TagSecondaryN408PR96: true,
}

// CheckNGAndDataTags require a ledger lookup before posting (Full Post).
var CheckNGAndDataTags = map[Tag]bool{
	TagSecondaryCO94OA94:  true,
	TagSecondaryMcTricare: true,
	TagTertiary:           true,
}

// ReversalTags are the recoupment outcomes (Full Post).
var ReversalTags = map[Tag]bool{
	Tag22No123:   true,
	Tag22With123: true,
}
