package matching

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/spigell/jobmatch/internal/embedding"
)

// keywordEmbedder maps texts onto axes by keyword, giving tests full control over similarity.
type keywordEmbedder struct {
	axes  []string
	calls atomic.Int32
}

func newKeywordEmbedder(axes ...string) *keywordEmbedder {
	return &keywordEmbedder{axes: axes}
}

func (k *keywordEmbedder) Embed(_ context.Context, text string) (embedding.Vector, error) {
	k.calls.Add(1)
	return k.vector(text), nil
}

func (k *keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([]embedding.Vector, error) {
	k.calls.Add(1)
	out := make([]embedding.Vector, len(texts))
	for i, text := range texts {
		out[i] = k.vector(text)
	}
	return out, nil
}

func (k *keywordEmbedder) Model() string { return "keywords" }

func (k *keywordEmbedder) vector(text string) embedding.Vector {
	lower := strings.ToLower(text)
	v := make(embedding.Vector, len(k.axes))
	for i, axis := range k.axes {
		v[i] = float32(strings.Count(lower, strings.ToLower(axis)))
	}
	return v
}
