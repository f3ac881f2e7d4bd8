package models

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

var (
	// ErrMalformedRecord is returned when a record lacks one of its attribute sets.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrDuplicateRecord is returned when two records share an id.
	ErrDuplicateRecord = errors.New("duplicate record id")
)

// Field identifies one of the seven attribute sets of a Record.
type Field int

const (
	PaperIDs Field = iota
	Names
	NameTokens
	Titles
	TitleTokens
	Affiliations
	Keywords
)

// AllFields lists every attribute field in scoring order.
var AllFields = [...]Field{PaperIDs, Names, NameTokens, Titles, TitleTokens, Affiliations, Keywords}

func (f Field) String() string {
	switch f {
	case PaperIDs:
		return PaperIDsField
	case Names:
		return NamesField
	case NameTokens:
		return NameTokensField
	case Titles:
		return TitlesField
	case TitleTokens:
		return TitleTokensField
	case Affiliations:
		return AffiliationsField
	case Keywords:
		return KeywordsField
	default:
		return "unknown"
	}
}

// ParseField maps a field name back to its Field.
func ParseField(name string) (Field, bool) {
	for _, f := range AllFields {
		if f.String() == name {
			return f, true
		}
	}
	return 0, false
}

// Record holds the attribute sets of one author.
// Records are immutable once they are part of a RecordSet.
type Record struct {
	ID           int64
	PaperIDs     *roaring.Bitmap
	Names        TokenSet
	NameTokens   TokenSet
	Affiliations TokenSet
	Titles       TokenSet
	TitleTokens  TokenSet
	Keywords     TokenSet
}

// NewRecord returns a record with every attribute set present and empty.
func NewRecord(id int64) *Record {
	return &Record{
		ID:           id,
		PaperIDs:     roaring.New(),
		Names:        TokenSet{},
		NameTokens:   TokenSet{},
		Affiliations: TokenSet{},
		Titles:       TokenSet{},
		TitleTokens:  TokenSet{},
		Keywords:     TokenSet{},
	}
}

// Tokens returns the string set stored under f.
// PaperIDs has no string form and yields nil.
func (r *Record) Tokens(f Field) TokenSet {
	switch f {
	case Names:
		return r.Names
	case NameTokens:
		return r.NameTokens
	case Titles:
		return r.Titles
	case TitleTokens:
		return r.TitleTokens
	case Affiliations:
		return r.Affiliations
	case Keywords:
		return r.Keywords
	default:
		return nil
	}
}

// SetTokens replaces the string set stored under f.
func (r *Record) SetTokens(f Field, set TokenSet) {
	switch f {
	case Names:
		r.Names = set
	case NameTokens:
		r.NameTokens = set
	case Titles:
		r.Titles = set
	case TitleTokens:
		r.TitleTokens = set
	case Affiliations:
		r.Affiliations = set
	case Keywords:
		r.Keywords = set
	}
}

// FieldLen returns the cardinality of the set stored under f.
func (r *Record) FieldLen(f Field) int {
	if f == PaperIDs {
		if r.PaperIDs == nil {
			return 0
		}
		return int(r.PaperIDs.GetCardinality())
	}
	return r.Tokens(f).Len()
}

// Validate checks that the record carries every attribute set.
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil record", ErrMalformedRecord)
	}
	if r.PaperIDs == nil {
		return fmt.Errorf("%w: author %d has no %s set", ErrMalformedRecord, r.ID, PaperIDs)
	}
	return nil
}
