package catalog

import (
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/logger"
)

// Source names the files a Store loads from.
type Source struct {
	Occupations string `mapstructure:"occupations"`
	Trainings   string `mapstructure:"trainings"`
}

// Store keeps the current catalog generation. Readers always observe a
// complete generation: a reload builds a new one and swaps it in atomically.
type Store struct {
	source  Source
	logger  *zap.Logger
	current atomic.Pointer[Generation]
	seq     atomic.Uint64
}

// NewStore creates a store for the given source. Nothing is read until Reload.
func NewStore(source Source, log *zap.Logger) *Store {
	return &Store{
		source: source,
		logger: logger.OrNop(log),
	}
}

// Current returns the latest loaded generation or nil before the first load.
func (s *Store) Current() *Generation {
	return s.current.Load()
}

// Reload reads both catalogs and replaces the current generation. On error
// the previous generation stays in place.
func (s *Store) Reload() (*Generation, error) {
	gen, err := s.Load()
	if err != nil {
		return nil, err
	}

	s.Publish(gen)
	return gen, nil
}

// Load reads both catalogs into a new generation without making it current.
// Generation ids grow with every successful Load.
func (s *Store) Load() (*Generation, error) {
	gen, err := s.read()
	if err != nil {
		return nil, err
	}

	s.logger.Info("catalog loaded",
		zap.Uint64("generation", gen.ID),
		zap.Time("loaded_at", gen.LoadedAt),
		zap.Int("occupations", len(gen.Occupations)),
		zap.Int("trainings", len(gen.Trainings)),
		zap.Int("placeholders", gen.Placeholders()),
	)

	return gen, nil
}

// Publish makes gen current unless a newer generation already is.
// It reports whether gen was installed.
func (s *Store) Publish(gen *Generation) bool {
	for {
		cur := s.current.Load()
		if cur != nil && cur.ID >= gen.ID {
			return cur == gen
		}
		if s.current.CompareAndSwap(cur, gen) {
			return true
		}
	}
}

func (s *Store) read() (*Generation, error) {
	occupations, err := LoadOccupations(s.source.Occupations)
	if err != nil {
		return nil, err
	}

	var trainings []TrainingResource
	if strings.TrimSpace(s.source.Trainings) == "" {
		s.logger.Warn("training catalog is not configured; training recommendations will be empty")
	} else {
		trainings, err = LoadTrainings(s.source.Trainings)
		if err != nil {
			return nil, err
		}
	}

	if len(occupations) == 0 {
		s.logger.Warn("occupation catalog is empty", zap.String("path", s.source.Occupations))
	}

	return &Generation{
		ID:          s.seq.Add(1),
		LoadedAt:    time.Now().UTC(),
		Occupations: occupations,
		Trainings:   trainings,
	}, nil
}
