// Package similarity scores how likely two author records describe the same person.
package similarity

import "authordedup.kddcup.org/internal/models"

// DuplicateScorer scores similarity between two author records.
type DuplicateScorer interface {
	// Score returns a value from 0.0 (nothing in common) up to the weight sum.
	Score(a, b *models.Record) float64
}

// WeightedScorer sums per-field Tanimoto scores scaled by field weights.
// It holds no mutable state and is safe for concurrent use.
type WeightedScorer struct {
	weights Weights
}

// NewWeightedScorer creates a scorer using w.
func NewWeightedScorer(w Weights) *WeightedScorer {
	return &WeightedScorer{weights: w}
}

// NewDefaultScorer creates a scorer with DefaultWeights.
func NewDefaultScorer() *WeightedScorer {
	return NewWeightedScorer(DefaultWeights())
}

// Weights returns the weights the scorer was built with.
func (s *WeightedScorer) Weights() Weights {
	return s.weights
}

// Score returns the weighted Tanimoto similarity of a and b.
// A field only contributes when both records have a non-empty set for it.
func (s *WeightedScorer) Score(a, b *models.Record) float64 {
	var total float64

	if s.weights.PaperIDs != 0 && a.PaperIDs != nil && b.PaperIDs != nil &&
		!a.PaperIDs.IsEmpty() && !b.PaperIDs.IsEmpty() {
		total += s.weights.PaperIDs * TanimotoBitmap(a.PaperIDs, b.PaperIDs)
	}

	total += s.tokenScore(s.weights.Names, a.Names, b.Names)
	total += s.tokenScore(s.weights.NameTokens, a.NameTokens, b.NameTokens)
	total += s.tokenScore(s.weights.Titles, a.Titles, b.Titles)
	total += s.tokenScore(s.weights.TitleTokens, a.TitleTokens, b.TitleTokens)
	total += s.tokenScore(s.weights.Affiliations, a.Affiliations, b.Affiliations)
	total += s.tokenScore(s.weights.Keywords, a.Keywords, b.Keywords)

	return total
}

func (s *WeightedScorer) tokenScore(weight float64, a, b models.TokenSet) float64 {
	if weight == 0 || a.IsEmpty() || b.IsEmpty() {
		return 0.0
	}
	return weight * Tanimoto(a, b)
}

// FieldScores breaks Score down per field; used for debugging matches.
func (s *WeightedScorer) FieldScores(a, b *models.Record) map[models.Field]float64 {
	scores := make(map[models.Field]float64, len(models.AllFields))
	for _, f := range models.AllFields {
		if f == models.PaperIDs {
			scores[f] = s.weights.PaperIDs * TanimotoBitmap(a.PaperIDs, b.PaperIDs)
			continue
		}
		scores[f] = s.tokenScore(s.weights.For(f), a.Tokens(f), b.Tokens(f))
	}
	return scores
}
