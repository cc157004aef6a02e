package training

import (
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/jobmatch/internal/catalog"
)

func trainingCatalog() []catalog.TrainingResource {
	return []catalog.TrainingResource{
		{ID: "t1", Title: "Python for analysts", SkillsAcquired: []string{"Python", "Pandas"}},
		{ID: "t2", Title: "Databases", SkillsAcquired: []string{"PostgreSQL", "Data modelling"}},
		{ID: "t3", Title: "Welding basics", SkillsAcquired: []string{"MIG welding"}},
		{ID: "t4", Title: "Analytics bootcamp", SkillsAcquired: []string{"python", "sql"}},
		{ID: "t5", Title: "Empty", SkillsAcquired: nil},
	}
}

func ids(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.ID)
	}
	return out
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name     string
		gaps     []string
		topK     int
		wantIDs  []string
		wantTop  float64
		wantNone bool
	}{
		{
			name:    "full coverage ranks first",
			gaps:    []string{"Python", "SQL"},
			topK:    5,
			wantIDs: []string{"t4", "t1", "t2"},
			wantTop: 1,
		},
		{
			name:    "gap contained in acquired skill",
			gaps:    []string{"welding"},
			topK:    5,
			wantIDs: []string{"t3"},
			wantTop: 1,
		},
		{
			name:    "acquired skill contained in gap",
			gaps:    []string{"advanced pandas"},
			topK:    5,
			wantIDs: []string{"t1"},
			wantTop: 1,
		},
		{
			name:    "top k cuts ties in catalog order",
			gaps:    []string{"Python"},
			topK:    1,
			wantIDs: []string{"t1"},
			wantTop: 1,
		},
		{
			name:     "no coverage",
			gaps:     []string{"Rust"},
			topK:     3,
			wantNone: true,
		},
		{
			name:     "non-positive top k",
			gaps:     []string{"Python"},
			topK:     0,
			wantNone: true,
		},
		{
			name:     "empty gaps",
			gaps:     []string{"", "  "},
			topK:     3,
			wantNone: true,
		},
	}

	recommender := NewRecommender(0, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := recommender.Recommend(tt.gaps, trainingCatalog(), tt.topK)
			if results == nil {
				t.Fatalf("expected non-nil results")
			}

			if tt.wantNone {
				if len(results) != 0 {
					t.Fatalf("expected no results, got %v", ids(results))
				}
				return
			}

			if got := ids(results); !reflect.DeepEqual(got, tt.wantIDs) {
				t.Fatalf("expected %v, got %v", tt.wantIDs, got)
			}

			if results[0].RelevanceScore != tt.wantTop {
				t.Fatalf("expected top score %v, got %v", tt.wantTop, results[0].RelevanceScore)
			}

			for i, r := range results {
				if r.RelevanceScore <= 0 || r.RelevanceScore > 1 {
					t.Fatalf("score out of range at %d: %v", i, r.RelevanceScore)
				}
				if i > 0 && r.RelevanceScore > results[i-1].RelevanceScore {
					t.Fatalf("scores not descending at %d", i)
				}
			}
		})
	}
}

func TestRecommendPartialScore(t *testing.T) {
	results := NewRecommender(0, nil).Recommend([]string{"Python", "SQL", "Docker", "Kubernetes"}, trainingCatalog(), 5)

	want := map[string]float64{"t4": 0.5, "t1": 0.25, "t2": 0.25}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %v", len(want), ids(results))
	}
	for _, r := range results {
		if r.RelevanceScore != want[r.ID] {
			t.Fatalf("%s: expected %v, got %v", r.ID, want[r.ID], r.RelevanceScore)
		}
	}
}

func TestBasisSubstitutesProfileSkills(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	recommender := NewRecommender(3, zap.New(core))

	basis := recommender.Basis(nil, []string{"Python", "SQL"})
	if !reflect.DeepEqual(basis, []string{"Python", "SQL"}) {
		t.Fatalf("expected profile skills as basis, got %v", basis)
	}

	if logs.FilterMessage("no gap skills, recommending reinforcement trainings").Len() != 1 {
		t.Fatalf("expected substitution to be logged")
	}

	results := recommender.RecommendFor(nil, []string{"Python", "SQL"}, trainingCatalog(), 3)
	found := false
	for _, r := range results {
		if r.ID == "t1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the Python training among %v", ids(results))
	}
}

func TestBasis(t *testing.T) {
	recommender := NewRecommender(3, nil)

	tests := []struct {
		name    string
		gaps    []string
		profile []string
		want    []string
	}{
		{name: "gaps win", gaps: []string{"Go"}, profile: []string{"Python"}, want: []string{"Go"}},
		{name: "capped", profile: []string{"a", "b", "c", "d"}, want: []string{"a", "b", "c"}},
		{name: "deduplicated", gaps: []string{"Go", "go ", ""}, want: []string{"Go"}},
		{name: "nothing", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recommender.Basis(tt.gaps, tt.profile); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
