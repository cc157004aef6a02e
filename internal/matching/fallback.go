package matching

import (
	"strings"

	"github.com/spigell/jobmatch/internal/catalog"
)

// alternatives ranks occupations by lexical overlap with the profile skills:
//
//	skill_overlap = required skills contained in, or containing, some profile skill / required skills
//	title_overlap = distinct title tokens found among profile skill tokens / distinct title tokens
//	score         = SkillWeight*skill_overlap + TitleWeight*title_overlap
//
// Occupations without required skills and zero scores are skipped.
func (m *Matcher) alternatives(profile Profile, occupations []catalog.Occupation, topK int) []Result {
	skills := profile.DistinctSkills()
	if len(skills) == 0 {
		return []Result{}
	}

	lowered := make([]string, len(skills))
	profileTokens := make(map[string]struct{})
	for i, s := range skills {
		lowered[i] = strings.ToLower(s)
		for _, token := range strings.Fields(lowered[i]) {
			profileTokens[token] = struct{}{}
		}
	}

	scores := make([]float64, len(occupations))
	for i, o := range occupations {
		required := distinct(o.RequiredSkills)
		if len(required) == 0 {
			continue
		}

		scores[i] = m.policy.SkillWeight*skillOverlap(required, lowered) +
			m.policy.TitleWeight*titleOverlap(o.Title, profileTokens)
	}

	reason := m.policy.reason()
	results := make([]Result, 0, topK)
	for _, idx := range rank(scores, len(scores)) {
		if len(results) == topK || scores[idx] <= 0 {
			break
		}

		result := newResult(occupations[idx], scores[idx], skills)
		result.IsAlternative = true
		result.AlternativeReason = reason
		results = append(results, result)
	}

	return results
}

func skillOverlap(required, profileSkills []string) float64 {
	matched := 0
	for _, skill := range required {
		skill = strings.ToLower(skill)
		for _, have := range profileSkills {
			if strings.Contains(have, skill) || strings.Contains(skill, have) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(required))
}

func titleOverlap(title string, profileTokens map[string]struct{}) float64 {
	tokens := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(title)) {
		tokens[token] = struct{}{}
	}

	if len(tokens) == 0 {
		return 0
	}

	shared := 0
	for token := range tokens {
		if _, ok := profileTokens[token]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(tokens))
}
