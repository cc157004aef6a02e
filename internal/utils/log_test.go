package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	tests := map[string]struct {
		input string
		limit int
		want  string
	}{
		"disabled":         {input: "Skills: Python, SQL", limit: 0, want: ""},
		"fits":             {input: "Skills: Go", limit: 20, want: "Skills: Go"},
		"cut":              {input: "Skills: Python, SQL", limit: 14, want: "Skills: Python..."},
		"trimmed first":    {input: "\n  Welder  \n", limit: 6, want: "Welder"},
		"counts runes":     {input: "Développeur back-end", limit: 11, want: "Développeur..."},
		"non latin script": {input: "Аналитик данных", limit: 8, want: "Аналитик..."},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := TruncateForLog(tt.input, tt.limit); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
