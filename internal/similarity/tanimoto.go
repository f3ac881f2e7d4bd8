package similarity

import (
	"github.com/RoaringBitmap/roaring/v2"

	"authordedup.kddcup.org/internal/models"
)

// Tanimoto returns |a ∩ b| / |a ∪ b| for two token sets, or 0 when they share nothing.
func Tanimoto(a, b models.TokenSet) float64 {
	inter := a.IntersectionSize(b)
	if inter == 0 {
		return 0.0
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// TanimotoBitmap is Tanimoto over two paper id bitmaps.
func TanimotoBitmap(a, b *roaring.Bitmap) float64 {
	if a == nil || b == nil {
		return 0.0
	}
	inter := a.AndCardinality(b)
	if inter == 0 {
		return 0.0
	}
	union := a.GetCardinality() + b.GetCardinality() - inter
	return float64(inter) / float64(union)
}
