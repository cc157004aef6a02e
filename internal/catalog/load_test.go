package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadOccupationsJSONList(t *testing.T) {
	path := writeFile(t, "occupations.json", `[
		{"id": "A", "title": "Data Analyst", "description": "Analyses data", "required_skills": ["SQL", "Python"], "salary_range": 45000},
		{"id": "B", "title": "Welder", "description": "Joins metal", "required_skills": ["Welding"], "education_level": "CAP"}
	]`)

	occupations, err := LoadOccupations(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(occupations) != 2 {
		t.Fatalf("expected 2 occupations, got %d", len(occupations))
	}

	if occupations[0].ID != "A" || occupations[1].ID != "B" {
		t.Fatalf("unexpected order: %+v", occupations)
	}

	if got := strings.Join(occupations[0].RequiredSkills, ","); got != "SQL,Python" {
		t.Fatalf("unexpected required skills: %s", got)
	}

	if occupations[0].SalaryRange != "45000" {
		t.Fatalf("expected numeric salary to be decoded as string, got %q", occupations[0].SalaryRange)
	}

	if occupations[1].EducationLevel != "CAP" {
		t.Fatalf("unexpected education level: %q", occupations[1].EducationLevel)
	}
}

func TestLoadOccupationsWrappedWithJobIDAlias(t *testing.T) {
	path := writeFile(t, "rome.json", `{"version": "4.60", "jobs": [
		{"job_id": "M1805", "title": "Études et développement informatique", "description": "Conçoit des logiciels", "required_skills": ["Java"]}
	]}`)

	occupations, err := LoadOccupations(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(occupations) != 1 || occupations[0].ID != "M1805" {
		t.Fatalf("expected job_id alias to populate id, got %+v", occupations)
	}
}

func TestLoadOccupationsYAML(t *testing.T) {
	path := writeFile(t, "occupations.yaml", `
occupations:
  - id: W1
    title: Welder
    required_skills: [Welding, Safety]
`)

	occupations, err := LoadOccupations(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(occupations) != 1 || len(occupations[0].RequiredSkills) != 2 {
		t.Fatalf("unexpected occupations: %+v", occupations)
	}
}

func TestLoadOccupationsEmptyListIsValid(t *testing.T) {
	path := writeFile(t, "occupations.json", `[]`)

	occupations, err := LoadOccupations(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(occupations) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(occupations))
	}
}

func TestLoadOccupationsErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.json") },
			wantErr: "no such file",
		},
		{
			name:    "malformed document",
			path:    func(t *testing.T) string { return writeFile(t, "bad.json", `[{"id": "A",`) },
			wantErr: "parse",
		},
		{
			name:    "empty document",
			path:    func(t *testing.T) string { return writeFile(t, "empty.json", ``) },
			wantErr: "document is empty",
		},
		{
			name:    "no list",
			path:    func(t *testing.T) string { return writeFile(t, "obj.json", `{"items": []}`) },
			wantErr: "no record list",
		},
		{
			name:    "missing id",
			path:    func(t *testing.T) string { return writeFile(t, "noid.json", `[{"title": "Welder"}]`) },
			wantErr: "record 0",
		},
		{
			name: "duplicate id",
			path: func(t *testing.T) string {
				return writeFile(t, "dup.json", `[{"id": "A", "title": "x"}, {"id": "A", "title": "y"}]`)
			},
			wantErr: "duplicate id",
		},
		{
			name:    "not configured",
			path:    func(*testing.T) string { return "" },
			wantErr: "not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadOccupations(tt.path(t))
			if err == nil {
				t.Fatalf("expected error")
			}

			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected *LoadError, got %T", err)
			}

			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestOccupationPlaceholders(t *testing.T) {
	path := writeFile(t, "occupations.json", `[{"id": "X", "title": "  ", "required_skills": ["Go"]}]`)

	occupations, err := LoadOccupations(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record := occupations[0]
	if record.DisplayTitle() != PlaceholderTitle {
		t.Fatalf("expected placeholder title, got %q", record.DisplayTitle())
	}
	if record.DisplayDescription() != PlaceholderDescription {
		t.Fatalf("expected placeholder description, got %q", record.DisplayDescription())
	}
	if record.Title != "  " {
		t.Fatalf("placeholder must not be written back, got %q", record.Title)
	}
}

func TestLoadTrainings(t *testing.T) {
	path := writeFile(t, "formations.json", `{"trainings": [
		{"training_id": "T1", "title": "Python for data", "provider": "OpenClassrooms", "url": "https://example.com/t1", "duration": "40h", "skills_acquired": ["Python", "Pandas"]},
		{"id": "T2", "title": "SQL basics", "skills_acquired": ["SQL"]}
	]}`)

	trainings, err := LoadTrainings(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(trainings) != 2 {
		t.Fatalf("expected 2 trainings, got %d", len(trainings))
	}

	if trainings[0].ID != "T1" || trainings[0].Provider != "OpenClassrooms" {
		t.Fatalf("unexpected first training: %+v", trainings[0])
	}

	if trainings[1].ID != "T2" {
		t.Fatalf("unexpected second training: %+v", trainings[1])
	}
}
