// Package hashing implements an offline embedder based on feature hashing of
// word tokens and character trigrams. It needs no model artifact, works for any
// script and is fully deterministic.
package hashing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/spigell/jobmatch/internal/embedding"
)

const (
	// DefaultDimensions is used when no dimensionality is configured.
	DefaultDimensions = 512

	tokenWeight   = 1.0
	trigramWeight = 0.5
)

// Embedder hashes text features into a fixed number of buckets.
type Embedder struct {
	dimensions int
}

// New creates an embedder with the given dimensionality.
func New(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{dimensions: dimensions}
}

func (e *Embedder) Model() string {
	return fmt.Sprintf("xxhash-%d", e.dimensions)
}

// Dimensions returns the length of produced vectors.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

func (e *Embedder) Embed(_ context.Context, text string) (embedding.Vector, error) {
	return e.vector(text), nil
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([]embedding.Vector, error) {
	out := make([]embedding.Vector, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *Embedder) vector(text string) embedding.Vector {
	acc := make([]float64, e.dimensions)

	for _, token := range tokenize(text) {
		e.add(acc, "w:"+token, tokenWeight)

		runes := []rune("#" + token + "#")
		for i := 0; i+3 <= len(runes); i++ {
			e.add(acc, "t:"+string(runes[i:i+3]), trigramWeight)
		}
	}

	var norm float64
	for _, x := range acc {
		norm += x * x
	}
	norm = math.Sqrt(norm)

	out := make(embedding.Vector, e.dimensions)
	if norm == 0 {
		return out
	}
	for i, x := range acc {
		out[i] = float32(x / norm)
	}
	return out
}

func (e *Embedder) add(acc []float64, feature string, weight float64) {
	h := xxhash.Sum64String(feature)
	bucket := h % uint64(e.dimensions)
	if h>>63 == 1 {
		weight = -weight
	}
	acc[bucket] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
