// Package gemini embeds text with the Gemini embedding models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/spigell/jobmatch/internal/embedding"
	"github.com/spigell/jobmatch/internal/logger"
)

const (
	// Provider is the provider name used in logs and errors.
	Provider = "gemini"
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-embedding-001"

	defaultBatchSize   = 100
	defaultConcurrency = 4
	defaultMaxRetries  = 3
	taskType           = "SEMANTIC_SIMILARITY"
)

// Config configures the Gemini embedder.
type Config struct {
	APIKey      string
	Model       string
	MaxRetries  int
	BatchSize   int
	Concurrency int
	// Dimensions truncates the output vectors. Zero keeps the model default.
	Dimensions int
}

type embedClient interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder wraps the Google GenAI client and implements embedding.Embedder.
type Embedder struct {
	models      embedClient
	model       string
	maxRetries  int
	batchSize   int
	concurrency int
	dimensions  int32
	logger      *zap.Logger

	// observed holds the vector length seen in responses, used for blank inputs.
	observed atomic.Int64
}

// New creates an embedder backed by the Gemini API.
func New(ctx context.Context, cfg Config, log *zap.Logger) (*Embedder, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newEmbedder(client.Models, cfg, log), nil
}

func newEmbedder(models embedClient, cfg Config, log *zap.Logger) *Embedder {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	e := &Embedder{
		models:      models,
		model:       model,
		maxRetries:  cfg.MaxRetries,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
		logger:      logger.WithCommonFields(log, Provider, model),
	}

	if e.maxRetries <= 0 {
		e.maxRetries = defaultMaxRetries
	}
	if e.batchSize <= 0 || e.batchSize > defaultBatchSize {
		e.batchSize = defaultBatchSize
	}
	if e.concurrency <= 0 {
		e.concurrency = defaultConcurrency
	}
	if cfg.Dimensions > 0 {
		e.dimensions = int32(cfg.Dimensions)
		e.observed.Store(int64(cfg.Dimensions))
	}

	return e
}

func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}

func (e *Embedder) Embed(ctx context.Context, text string) (embedding.Vector, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in chunks of at most BatchSize, running up to
// Concurrency requests at a time. Output order follows input order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([]embedding.Vector, error) {
	if e == nil || e.models == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}

	out := make([]embedding.Vector, len(texts))

	pending := make([]int, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) != "" {
			pending = append(pending, i)
		}
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(e.concurrency)

	for start := 0; start < len(pending); start += e.batchSize {
		chunk := pending[start:min(start+e.batchSize, len(pending))]

		group.Go(func() error {
			contents := make([]*genai.Content, len(chunk))
			for i, idx := range chunk {
				contents[i] = &genai.Content{Parts: []*genai.Part{{Text: texts[idx]}}}
			}

			vectors, err := e.embedWithRetry(gctx, contents)
			if err != nil {
				return err
			}

			for i, idx := range chunk {
				out[idx] = vectors[i]
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	dims := int(e.observed.Load())
	for _, idx := range pending {
		if len(out[idx]) != dims {
			return nil, fmt.Errorf("gemini returned %d dimensions, expected %d", len(out[idx]), dims)
		}
	}

	for i := range out {
		if out[i] == nil {
			out[i] = make(embedding.Vector, dims)
		}
	}

	return out, nil
}

func (e *Embedder) embedContents(ctx context.Context, contents []*genai.Content) ([]embedding.Vector, error) {
	cfg := &genai.EmbedContentConfig{TaskType: taskType}
	if e.dimensions > 0 {
		dims := e.dimensions
		cfg.OutputDimensionality = &dims
	}

	resp, err := e.models.EmbedContent(ctx, e.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if resp == nil || len(resp.Embeddings) != len(contents) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("gemini returned %d embeddings for %d inputs", got, len(contents))
	}

	vectors := make([]embedding.Vector, len(resp.Embeddings))
	for i, item := range resp.Embeddings {
		if item == nil || len(item.Values) == 0 {
			return nil, fmt.Errorf("gemini returned an empty embedding at position %d", i)
		}
		vectors[i] = embedding.Vector(item.Values)
		e.observed.CompareAndSwap(0, int64(len(item.Values)))
	}

	return vectors, nil
}
