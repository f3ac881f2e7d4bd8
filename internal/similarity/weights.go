package similarity

import (
	"errors"
	"fmt"
	"math"

	"authordedup.kddcup.org/internal/models"
)

// ErrInvalidWeights is returned by Weights.Validate.
var ErrInvalidWeights = errors.New("invalid similarity weights")

const weightSumTolerance = 1e-9

// Weights holds the contribution of each attribute field to the total score.
type Weights struct {
	PaperIDs     float64 `json:"paper_ids"`
	Names        float64 `json:"names"`
	NameTokens   float64 `json:"name_tokens"`
	Titles       float64 `json:"title_texts"`
	TitleTokens  float64 `json:"title_tokens"`
	Affiliations float64 `json:"affiliation_tokens"`
	Keywords     float64 `json:"keyword_tokens"`
}

// DefaultWeights returns the tuned field weights. They sum to 1.0.
func DefaultWeights() Weights {
	return Weights{
		PaperIDs:     0.08,
		Names:        0.30,
		NameTokens:   0.26,
		Titles:       0.12,
		TitleTokens:  0.08,
		Affiliations: 0.08,
		Keywords:     0.08,
	}
}

// For returns the weight configured for f.
func (w Weights) For(f models.Field) float64 {
	switch f {
	case models.PaperIDs:
		return w.PaperIDs
	case models.Names:
		return w.Names
	case models.NameTokens:
		return w.NameTokens
	case models.Titles:
		return w.Titles
	case models.TitleTokens:
		return w.TitleTokens
	case models.Affiliations:
		return w.Affiliations
	case models.Keywords:
		return w.Keywords
	default:
		return 0
	}
}

// Sum returns the maximum score reachable with these weights.
func (w Weights) Sum() float64 {
	total := 0.0
	for _, f := range models.AllFields {
		total += w.For(f)
	}
	return total
}

// Validate requires non-negative weights that sum to 1.
func (w Weights) Validate() error {
	for _, f := range models.AllFields {
		v := w.For(f)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s weight %v must be a non-negative number", ErrInvalidWeights, f, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %v, expected 1.0", ErrInvalidWeights, sum)
	}
	return nil
}
