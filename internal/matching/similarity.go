package matching

import (
	"github.com/spigell/jobmatch/internal/embedding"
)

// Cosine returns dot(a,b) / (|a| * |b|). It is 0 when either vector has zero
// norm or the vectors differ in length.
func Cosine(a, b embedding.Vector) float64 {
	if a.Dimensions() != b.Dimensions() || a.Dimensions() == 0 {
		return 0
	}

	norms := a.Norm() * b.Norm()
	if norms == 0 {
		return 0
	}

	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}

	return dot / norms
}
