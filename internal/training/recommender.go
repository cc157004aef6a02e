// Package training scores training resources against a list of gap skills.
// Scoring is lexical and independent of the embedding space.
package training

import (
	"cmp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/catalog"
	"github.com/spigell/jobmatch/internal/logger"
)

// DefaultReinforcementSkills caps the profile skills used when no gap exists.
const DefaultReinforcementSkills = 3

// Result is a training resource with its relevance to the gap list.
type Result struct {
	catalog.TrainingResource
	RelevanceScore float64 `json:"relevance_score"`
}

// Recommender ranks training resources.
type Recommender struct {
	reinforcement int
	logger        *zap.Logger
}

// NewRecommender creates a recommender. reinforcement caps the profile skills
// substituted for an empty gap list; non-positive values use the default.
func NewRecommender(reinforcement int, log *zap.Logger) *Recommender {
	if reinforcement <= 0 {
		reinforcement = DefaultReinforcementSkills
	}
	return &Recommender{
		reinforcement: reinforcement,
		logger:        logger.OrNop(log),
	}
}

// Basis returns the skills trainings are scored against. With no gap skills
// the first profile skills are used instead, so the result reinforces what
// the profile already knows.
func (r *Recommender) Basis(gapSkills, profileSkills []string) []string {
	basis := clean(gapSkills)
	if len(basis) > 0 {
		return basis
	}

	basis = clean(profileSkills)
	if len(basis) > r.reinforcement {
		basis = basis[:r.reinforcement]
	}

	if len(basis) > 0 {
		r.logger.Debug("no gap skills, recommending reinforcement trainings", zap.Strings("skills", basis))
	}
	return basis
}

// RecommendFor resolves the basis from gapSkills and profileSkills and ranks trainings against it.
func (r *Recommender) RecommendFor(gapSkills, profileSkills []string, trainings []catalog.TrainingResource, topK int) []Result {
	return r.Recommend(r.Basis(gapSkills, profileSkills), trainings, topK)
}

// Recommend scores every training by the share of gap skills it covers. A gap
// skill is covered when it contains, or is contained in, an acquired skill,
// case-insensitively. Trainings covering nothing are dropped; the rest are sorted by
// descending score with ties in catalog order and cut to topK.
func (r *Recommender) Recommend(gapSkills []string, trainings []catalog.TrainingResource, topK int) []Result {
	gaps := clean(gapSkills)
	if topK <= 0 || len(gaps) == 0 || len(trainings) == 0 {
		return []Result{}
	}

	lowered := make([]string, len(gaps))
	for i, g := range gaps {
		lowered[i] = strings.ToLower(g)
	}

	results := make([]Result, 0, len(trainings))
	for _, t := range trainings {
		matches := covered(lowered, t.SkillsAcquired)
		if matches == 0 {
			continue
		}

		results = append(results, Result{
			TrainingResource: t,
			RelevanceScore:   float64(matches) / float64(len(lowered)),
		})
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Compare(b.RelevanceScore, a.RelevanceScore)
	})

	if len(results) > topK {
		results = results[:topK]
	}

	r.logger.Debug("trainings ranked",
		zap.Int("gap_skills", len(lowered)),
		zap.Int("candidates", len(trainings)),
		zap.Int("results", len(results)),
	)

	return results
}

func covered(gaps, acquired []string) int {
	skills := make([]string, 0, len(acquired))
	for _, a := range acquired {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			skills = append(skills, a)
		}
	}

	matches := 0
	for _, g := range gaps {
		for _, a := range skills {
			if strings.Contains(a, g) || strings.Contains(g, a) {
				matches++
				break
			}
		}
	}
	return matches
}

// clean trims skills and drops blanks and case-insensitive duplicates.
func clean(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
