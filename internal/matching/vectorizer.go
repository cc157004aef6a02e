package matching

import (
	"context"
	"fmt"

	"github.com/spigell/jobmatch/internal/catalog"
	"github.com/spigell/jobmatch/internal/embedding"
)

// Index holds one vector per occupation of a catalog generation, aligned by position.
// It is read-only once built.
type Index struct {
	Generation uint64
	Model      string
	Dimensions int
	Vectors    []embedding.Vector
}

// Len returns the number of indexed occupations.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.Vectors)
}

// BuildIndex embeds every occupation of gen with a single batch call.
func BuildIndex(ctx context.Context, embedder embedding.Embedder, gen *catalog.Generation) (*Index, error) {
	if embedder == nil {
		return nil, errNilEmbedder
	}
	if gen == nil {
		return nil, fmt.Errorf("catalog generation is required")
	}

	index := &Index{Generation: gen.ID, Model: embedder.Model()}
	if len(gen.Occupations) == 0 {
		return index, nil
	}

	texts := make([]string, len(gen.Occupations))
	for i, o := range gen.Occupations {
		texts[i] = OccupationText(o)
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding catalog: %w", err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d occupations", len(vectors), len(texts))
	}

	for i, v := range vectors {
		if v.IsZero() {
			continue
		}
		if index.Dimensions == 0 {
			index.Dimensions = v.Dimensions()
			continue
		}
		if v.Dimensions() != index.Dimensions {
			return nil, fmt.Errorf("%w: occupation %q has %d dimensions, expected %d",
				ErrDimensionMismatch, gen.Occupations[i].ID, v.Dimensions(), index.Dimensions)
		}
	}

	index.Vectors = vectors
	return index, nil
}
