package models

// Attribute field names as they appear in snapshots and configuration files.
const (
	PaperIDsField     = "paper_ids"
	NamesField        = "names"
	NameTokensField   = "name_tokens"
	TitlesField       = "title_texts"
	TitleTokensField  = "title_tokens"
	AffiliationsField = "affiliation_tokens"
	KeywordsField     = "keyword_tokens"
)

const (
	// DefaultMatchThreshold is the score a pair must strictly exceed to be reported.
	DefaultMatchThreshold = 0.5
)

// Report header columns
const (
	ReportAuthorIDColumn   = "AuthorId"
	ReportDuplicatesColumn = "DuplicateAuthorIds"
)
