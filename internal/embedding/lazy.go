package embedding

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/logger"
)

// Loader builds the underlying embedder. It is called at most once successfully.
type Loader func(ctx context.Context) (Embedder, error)

// Lazy defers loading an embedder until Init or first use. Concurrent first
// callers share one load; a failed load is reported as ModelUnavailableError
// and attempted again by the next caller.
type Lazy struct {
	provider string
	model    string
	load     Loader
	logger   *zap.Logger

	mu       sync.Mutex
	embedder Embedder
}

// NewLazy wraps load. provider and model only describe the backend in errors and logs.
func NewLazy(provider, model string, load Loader, log *zap.Logger) *Lazy {
	return &Lazy{
		provider: provider,
		model:    model,
		load:     load,
		logger:   logger.WithCommonFields(log, provider, model),
	}
}

// Init loads the embedder if it is not loaded yet.
func (l *Lazy) Init(ctx context.Context) error {
	_, err := l.get(ctx)
	return err
}

func (l *Lazy) get(ctx context.Context) (Embedder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.embedder != nil {
		return l.embedder, nil
	}

	if l.load == nil {
		return nil, &ModelUnavailableError{Provider: l.provider, Model: l.model, Err: errors.New("no loader configured")}
	}

	l.logger.Info("loading embedding model")

	embedder, err := l.load(ctx)
	if err == nil && embedder == nil {
		err = errors.New("loader returned no embedder")
	}
	if err != nil {
		var unavailable *ModelUnavailableError
		if errors.As(err, &unavailable) {
			return nil, err
		}
		return nil, &ModelUnavailableError{Provider: l.provider, Model: l.model, Err: err}
	}

	l.embedder = embedder
	l.logger.Info("embedding model loaded")

	return embedder, nil
}

func (l *Lazy) Embed(ctx context.Context, text string) (Vector, error) {
	embedder, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return embedder.Embed(ctx, text)
}

func (l *Lazy) EmbedBatch(ctx context.Context, texts []string) ([]Vector, error) {
	embedder, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return embedder.EmbedBatch(ctx, texts)
}

// Model returns the loaded model name, or the configured one before loading.
func (l *Lazy) Model() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.embedder != nil {
		return l.embedder.Model()
	}
	return l.model
}
