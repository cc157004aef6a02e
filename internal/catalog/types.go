// Package catalog holds the occupation and training catalogs the matcher ranks against.
package catalog

import (
	"strings"
	"time"
)

const (
	// PlaceholderTitle is shown for occupations stored without a title.
	PlaceholderTitle = "Untitled occupation"
	// PlaceholderDescription is shown for occupations stored without a description.
	PlaceholderDescription = "No description available"
)

// Occupation is one immutable occupation record.
type Occupation struct {
	ID             string   `mapstructure:"id" json:"id" validate:"required"`
	Title          string   `mapstructure:"title" json:"title"`
	Description    string   `mapstructure:"description" json:"description"`
	RequiredSkills []string `mapstructure:"required_skills" json:"required_skills"`
	OptionalSkills []string `mapstructure:"optional_skills" json:"optional_skills,omitempty"`
	SalaryRange    string   `mapstructure:"salary_range" json:"salary_range,omitempty"`
	EducationLevel string   `mapstructure:"education_level" json:"education_level,omitempty"`
}

// DisplayTitle returns the title or a placeholder when the record has none.
// The stored record is never modified.
func (o Occupation) DisplayTitle() string {
	if title := strings.TrimSpace(o.Title); title != "" {
		return title
	}
	return PlaceholderTitle
}

// DisplayDescription returns the description or a placeholder.
func (o Occupation) DisplayDescription() string {
	if description := strings.TrimSpace(o.Description); description != "" {
		return description
	}
	return PlaceholderDescription
}

// TrainingResource is one entry of the training catalog.
type TrainingResource struct {
	ID             string   `mapstructure:"id" json:"training_id" validate:"required"`
	Title          string   `mapstructure:"title" json:"title"`
	Provider       string   `mapstructure:"provider" json:"provider"`
	URL            string   `mapstructure:"url" json:"url"`
	Duration       string   `mapstructure:"duration" json:"duration"`
	SkillsAcquired []string `mapstructure:"skills_acquired" json:"skills_acquired"`
}

// Generation is one complete, read-only load of both catalogs.
// A reload produces a new Generation; an existing one is never mutated.
type Generation struct {
	ID          uint64
	LoadedAt    time.Time
	Occupations []Occupation
	Trainings   []TrainingResource
}

// Len returns the number of occupations in the generation.
func (g *Generation) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Occupations)
}

// Placeholders counts occupations that are displayed with a placeholder title or description.
func (g *Generation) Placeholders() int {
	if g == nil {
		return 0
	}

	count := 0
	for _, o := range g.Occupations {
		if strings.TrimSpace(o.Title) == "" || strings.TrimSpace(o.Description) == "" {
			count++
		}
	}
	return count
}
