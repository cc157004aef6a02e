package matching

import (
	"fmt"
	"strings"

	"github.com/spigell/jobmatch/internal/catalog"
)

// Profile is the parsed free-text profile of a candidate. It has no identity
// and lives for one request.
type Profile struct {
	// Skills keep their spelling for display and are compared case-insensitively.
	Skills          []string `yaml:"skills" json:"skills"`
	ExperienceYears *int     `yaml:"experience_years" json:"experience_years,omitempty"`
	Education       []string `yaml:"education" json:"education"`
	Summary         string   `yaml:"summary" json:"summary"`
}

// Validate rejects profiles that violate the input contract.
func (p Profile) Validate() error {
	if p.ExperienceYears != nil && *p.ExperienceYears < 0 {
		return fmt.Errorf("experience years must not be negative, got %d", *p.ExperienceYears)
	}
	return nil
}

// DistinctSkills returns the profile skills without blanks and without
// case-insensitive duplicates, first spelling kept.
func (p Profile) DistinctSkills() []string {
	return distinct(p.Skills)
}

// Text renders the canonical profile representation that gets embedded.
// Absent fields are omitted.
func (p Profile) Text() string {
	parts := make([]string, 0, 4)

	if skills := p.DistinctSkills(); len(skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(skills, ", "))
	}

	if p.ExperienceYears != nil && *p.ExperienceYears >= 0 {
		parts = append(parts, fmt.Sprintf("%d years of experience", *p.ExperienceYears))
	}

	if education := nonBlank(p.Education); len(education) > 0 {
		parts = append(parts, "Education: "+strings.Join(education, ", "))
	}

	if summary := strings.TrimSpace(p.Summary); summary != "" {
		parts = append(parts, summary)
	}

	return strings.Join(parts, ". ")
}

// OccupationText renders the canonical occupation representation that gets embedded.
func OccupationText(o catalog.Occupation) string {
	return fmt.Sprintf("%s. %s. Skills: %s", o.DisplayTitle(), o.DisplayDescription(), strings.Join(o.RequiredSkills, ", "))
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func distinct(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range nonBlank(values) {
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// MissingSkills returns the required skills with no case-insensitive exact
// match among the profile skills, in required order.
func MissingSkills(required, profileSkills []string) []string {
	have := make(map[string]struct{}, len(profileSkills))
	for _, s := range nonBlank(profileSkills) {
		have[strings.ToLower(s)] = struct{}{}
	}

	missing := make([]string, 0)
	for _, skill := range distinct(required) {
		if _, ok := have[strings.ToLower(skill)]; !ok {
			missing = append(missing, skill)
		}
	}
	return missing
}
