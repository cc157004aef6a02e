// Package matching ranks catalog occupations against a profile by embedding
// similarity, with a lexical fallback when no strong semantic match exists.
package matching

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/catalog"
	"github.com/spigell/jobmatch/internal/embedding"
	"github.com/spigell/jobmatch/internal/logger"
	"github.com/spigell/jobmatch/internal/utils"
)

const maxLogLength = 200

// ErrDimensionMismatch reports vectors that cannot come from the same embedder.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

var errNilEmbedder = errors.New("embedder is required")

// Result is one ranked occupation.
type Result struct {
	OccupationID      string   `json:"occupation_id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	MatchScore        float64  `json:"match_score"`
	RequiredSkills    []string `json:"required_skills"`
	MissingSkills     []string `json:"missing_skills"`
	SalaryRange       string   `json:"salary_range,omitempty"`
	EducationLevel    string   `json:"education_level,omitempty"`
	IsAlternative     bool     `json:"is_alternative"`
	AlternativeReason string   `json:"alternative_reason,omitempty"`
}

// Matcher ranks occupations for a profile.
type Matcher struct {
	embedder embedding.Embedder
	policy   Policy
	logger   *zap.Logger
}

// NewMatcher creates a matcher. The embedder must be the one the index was built with.
func NewMatcher(embedder embedding.Embedder, policy Policy, log *zap.Logger) *Matcher {
	return &Matcher{
		embedder: embedder,
		policy:   policy,
		logger:   logger.OrNop(log),
	}
}

// Match returns at most topK semantic results ordered by descending similarity,
// ties kept in catalog order. When the best of them scores under the weak
// match threshold, up to topK lexical alternatives are appended after them.
func (m *Matcher) Match(ctx context.Context, profile Profile, occupations []catalog.Occupation, index *Index, topK int) ([]Result, error) {
	if topK <= 0 || len(occupations) == 0 {
		return []Result{}, nil
	}

	if m.embedder == nil {
		return nil, errNilEmbedder
	}

	if index.Len() != len(occupations) {
		return nil, fmt.Errorf("vector index holds %d vectors for %d occupations", index.Len(), len(occupations))
	}

	text := profile.Text()
	m.logger.Debug("embedding profile", zap.String("profile_preview", utils.TruncateForLog(text, maxLogLength)))

	vector, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding profile: %w", err)
	}

	if !vector.IsZero() && index.Dimensions != 0 && vector.Dimensions() != index.Dimensions {
		return nil, fmt.Errorf("%w: profile has %d dimensions, catalog has %d", ErrDimensionMismatch, vector.Dimensions(), index.Dimensions)
	}

	scores := make([]float64, len(occupations))
	for i, v := range index.Vectors {
		scores[i] = Cosine(vector, v)
	}

	selected := rank(scores, topK)
	skills := profile.DistinctSkills()

	results := make([]Result, 0, len(selected))
	for _, idx := range selected {
		results = append(results, newResult(occupations[idx], scores[idx], skills))
	}

	maxScore := 0.0
	if len(selected) > 0 {
		maxScore = scores[selected[0]]
	}

	if maxScore >= m.policy.WeakMatchThreshold {
		m.logger.Debug("semantic match",
			zap.Int("results", len(results)),
			zap.Float64("max_score", maxScore),
		)
		return results, nil
	}

	alternatives := m.alternatives(profile, occupations, topK)

	m.logger.Info("weak semantic match, appending lexical alternatives",
		zap.Float64("max_score", maxScore),
		zap.Float64("threshold", m.policy.WeakMatchThreshold),
		zap.Int("primary", len(results)),
		zap.Int("alternatives", len(alternatives)),
	)

	return append(results, alternatives...), nil
}

// rank returns the indices of the topK highest scores, descending, stable on ties.
func rank(scores []float64, topK int) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})

	if len(order) > topK {
		order = order[:topK]
	}
	return order
}

func newResult(o catalog.Occupation, score float64, profileSkills []string) Result {
	return Result{
		OccupationID:   o.ID,
		Title:          o.DisplayTitle(),
		Description:    o.DisplayDescription(),
		MatchScore:     score,
		RequiredSkills: distinct(o.RequiredSkills),
		MissingSkills:  MissingSkills(o.RequiredSkills, profileSkills),
		SalaryRange:    o.SalaryRange,
		EducationLevel: o.EducationLevel,
	}
}
