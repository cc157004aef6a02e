// Package advisor owns the loaded catalog, the embedder and the catalog
// vectors, and exposes matching and training recommendation on top of them.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spigell/jobmatch/internal/catalog"
	"github.com/spigell/jobmatch/internal/embedding"
	"github.com/spigell/jobmatch/internal/logger"
	"github.com/spigell/jobmatch/internal/matching"
	"github.com/spigell/jobmatch/internal/training"
)

const (
	DefaultTopK         = 5
	DefaultTrainingTopK = 3
	DefaultMaxGapSkills = 5
)

// Catalog supplies catalog generations. *catalog.Store implements it.
// Load reads a new generation without installing it; Publish installs one
// unless a newer generation is already current.
type Catalog interface {
	Current() *catalog.Generation
	Load() (*catalog.Generation, error)
	Publish(gen *catalog.Generation) bool
}

// Options tune the per-request flow.
type Options struct {
	TopK                int
	TrainingTopK        int
	MaxGapSkills        int
	ReinforcementSkills int
	Policy              matching.Policy
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.TrainingTopK <= 0 {
		o.TrainingTopK = DefaultTrainingTopK
	}
	if o.MaxGapSkills <= 0 {
		o.MaxGapSkills = DefaultMaxGapSkills
	}
	if o.ReinforcementSkills <= 0 {
		o.ReinforcementSkills = training.DefaultReinforcementSkills
	}
	if o.Policy == (matching.Policy{}) {
		o.Policy = matching.DefaultPolicy()
	}
	return o
}

// Analysis is the outcome of one full request.
type Analysis struct {
	RequestID string            `json:"request_id"`
	Matches   []matching.Result `json:"job_recommendations"`
	GapSkills []string          `json:"missing_skills"`
	Trainings []training.Result `json:"training_recommendations"`
}

// snapshot pairs a catalog generation with the vectors built from it.
type snapshot struct {
	gen   *catalog.Generation
	index *matching.Index
}

// Service serves match and training requests against one catalog snapshot at
// a time. Snapshots are immutable; Reload replaces them as a whole, and an
// older snapshot never replaces a newer one.
type Service struct {
	catalog     Catalog
	embedder    embedding.Embedder
	matcher     *matching.Matcher
	recommender *training.Recommender
	opts        Options
	logger      *zap.Logger

	current  atomic.Pointer[snapshot]
	group    singleflight.Group
	reloadMu sync.Mutex
}

// New creates a service. Nothing is loaded until Init or the first request.
func New(source Catalog, embedder embedding.Embedder, opts Options, log *zap.Logger) (*Service, error) {
	if source == nil {
		return nil, errors.New("catalog is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}

	opts = opts.withDefaults()
	if err := opts.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching policy: %w", err)
	}

	log = logger.OrNop(log)

	return &Service{
		catalog:     source,
		embedder:    embedder,
		matcher:     matching.NewMatcher(embedder, opts.Policy, log.Named("matcher")),
		recommender: training.NewRecommender(opts.ReinforcementSkills, log.Named("training")),
		opts:        opts,
		logger:      log,
	}, nil
}

// Init loads the catalog if needed, initializes the embedder and vectorizes
// the catalog. Calling it at startup keeps the first request fast.
func (s *Service) Init(ctx context.Context) error {
	_, err := s.ready(ctx)
	return err
}

// Reload reads the catalog files again, vectorizes the new generation and
// swaps catalog and vectors in together. Concurrent calls run one after
// another, each reading the files anew. On error neither the served snapshot
// nor the catalog's current generation changes.
func (s *Service) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	gen, err := s.catalog.Load()
	if err != nil {
		return err
	}

	_, err = s.build(ctx, gen)
	return err
}

// Generation returns the catalog generation currently served, or nil before Init.
func (s *Service) Generation() *catalog.Generation {
	if snap := s.current.Load(); snap != nil {
		return snap.gen
	}
	return nil
}

// Match ranks the catalog occupations for profile. It returns at most topK
// semantic results; on a weak match up to topK flagged alternatives follow
// them, so the list may hold up to 2*topK entries.
func (s *Service) Match(ctx context.Context, profile matching.Profile, topK int) ([]matching.Result, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	snap, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}

	return s.matcher.Match(ctx, profile, snap.gen.Occupations, snap.index, topK)
}

// RecommendTrainings ranks the training catalog against gapSkills, or against
// the first profile skills when gapSkills is empty.
func (s *Service) RecommendTrainings(ctx context.Context, profile matching.Profile, gapSkills []string, topK int) ([]training.Result, error) {
	snap, err := s.ready(ctx)
	if err != nil {
		return nil, err
	}

	return s.recommender.RecommendFor(gapSkills, profile.Skills, snap.gen.Trainings, topK), nil
}

// Analyze runs the whole flow for one profile: match, collect the missing
// skills of every result, then recommend trainings for them.
func (s *Service) Analyze(ctx context.Context, profile matching.Profile) (*Analysis, error) {
	requestID := uuid.NewString()
	log := logger.WithFields(s.logger, zap.String(logger.FieldRequestID, requestID))

	log.Info("analysis started", zap.Int("skills", len(profile.DistinctSkills())))

	matches, err := s.Match(ctx, profile, s.opts.TopK)
	if err != nil {
		log.Error("matching failed", zap.Error(err))
		return nil, err
	}

	gaps := GapSkills(matches, s.opts.MaxGapSkills)

	trainings, err := s.RecommendTrainings(ctx, profile, gaps, s.opts.TrainingTopK)
	if err != nil {
		log.Error("training recommendation failed", zap.Error(err))
		return nil, err
	}

	log.Info("analysis finished",
		zap.Int("matches", len(matches)),
		zap.Strings("gap_skills", gaps),
		zap.Int("trainings", len(trainings)),
	)

	return &Analysis{
		RequestID: requestID,
		Matches:   matches,
		GapSkills: gaps,
		Trainings: trainings,
	}, nil
}

// GapSkills collects missing skills across results in result order, without
// case-insensitive duplicates, keeping at most limit of them.
func GapSkills(results []matching.Result, limit int) []string {
	seen := make(map[string]struct{})
	gaps := make([]string, 0, limit)
	for _, r := range results {
		for _, skill := range r.MissingSkills {
			if len(gaps) == limit {
				return gaps
			}
			key := strings.ToLower(strings.TrimSpace(skill))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			gaps = append(gaps, skill)
		}
	}
	return gaps
}

func (s *Service) ready(ctx context.Context) (*snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}

	v, err, _ := s.group.Do("init", func() (any, error) {
		if snap := s.current.Load(); snap != nil {
			return snap, nil
		}

		gen := s.catalog.Current()
		if gen == nil {
			var err error
			if gen, err = s.catalog.Load(); err != nil {
				return nil, err
			}
		}

		if initializer, ok := s.embedder.(embedding.Initializer); ok {
			if err := initializer.Init(ctx); err != nil {
				return nil, err
			}
		}

		return s.build(ctx, gen)
	})
	if err != nil {
		return nil, err
	}

	return v.(*snapshot), nil
}

func (s *Service) build(ctx context.Context, gen *catalog.Generation) (*snapshot, error) {
	index, err := matching.BuildIndex(ctx, s.embedder, gen)
	if err != nil {
		s.logger.Error("catalog vectorization failed", zap.Uint64("generation", gen.ID), zap.Error(err))
		return nil, err
	}

	snap := &snapshot{gen: gen, index: index}
	if !s.publish(snap) {
		current := s.current.Load()
		s.logger.Info("catalog vectorized but a newer generation is already served",
			zap.Uint64("generation", gen.ID),
			zap.Uint64("served_generation", current.gen.ID),
		)
		return current, nil
	}
	s.catalog.Publish(gen)

	s.logger.Info("catalog vectorized",
		zap.Uint64("generation", gen.ID),
		zap.String(logger.FieldModel, index.Model),
		zap.Int("vectors", index.Len()),
		zap.Int("dimensions", index.Dimensions),
	)

	return snap, nil
}

// publish installs snap unless the served snapshot is from the same or a newer generation.
func (s *Service) publish(snap *snapshot) bool {
	for {
		cur := s.current.Load()
		if cur != nil && cur.gen.ID >= snap.gen.ID {
			return false
		}
		if s.current.CompareAndSwap(cur, snap) {
			return true
		}
	}
}
