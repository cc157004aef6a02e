// Package embedding defines the text embedding contract shared by the catalog
// and profile vectorizers.
package embedding

import (
	"context"
	"fmt"
	"math"
)

// Vector is a fixed-length embedding. Vectors compared with each other must
// come from the same embedder and model.
type Vector []float32

// Dimensions returns the dimensionality of the vector.
func (v Vector) Dimensions() int {
	return len(v)
}

// Norm returns the euclidean length of the vector.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// IsZero reports whether the vector carries no direction.
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Embedder maps text into the shared embedding space.
//
// EmbedBatch must return the same vectors as calling Embed per item, in input
// order. Implementations must not modify the input slice. Blank text maps to
// a zero vector without contacting a backend.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
	EmbedBatch(ctx context.Context, texts []string) ([]Vector, error)
	Model() string
}

// Initializer is implemented by embedders with an expensive one-time setup.
type Initializer interface {
	Init(ctx context.Context) error
}

// ModelUnavailableError reports that the embedding backend could not be initialized.
// Matching cannot proceed without it.
type ModelUnavailableError struct {
	Provider string
	Model    string
	Err      error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("embedding model %s/%s is unavailable: %v", e.Provider, e.Model, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }
