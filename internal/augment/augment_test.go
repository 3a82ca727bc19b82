package augment

import (
	"reflect"
	"testing"
)

func TestApplyBoosts(t *testing.T) {
	tests := []struct {
		name   string
		terms  []string
		boosts map[string]float64
		want   []string
	}{
		{
			name:   "no boosts passes through",
			terms:  []string{"alpha", "beta"},
			boosts: nil,
			want:   []string{"alpha", "beta"},
		},
		{
			name:   "boosted term repeated floor times",
			terms:  []string{"alpha", "beta"},
			boosts: map[string]float64{"alpha": 2.9},
			want:   []string{"alpha", "alpha", "beta"},
		},
		{
			name:   "multiplier below one passes through",
			terms:  []string{"alpha"},
			boosts: map[string]float64{"alpha": 0.4},
			want:   []string{"alpha"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyBoosts(tt.terms, tt.boosts)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ApplyBoosts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExactMatchBoost(t *testing.T) {
	got := ExactMatchBoost([]string{"exact", "other"}, []string{"exact", "unused"})
	want := []string{"exact", "exact", "exact", "other"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExactMatchBoost() = %v, want %v", got, want)
	}
}

func TestFuzzyEquivalent(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"search", "Search", true},
		{"ranking", "rankings", true},
		{"cat", "dog", false},
		{"identical", "identical", true},
	}
	for _, tt := range tests {
		if got := FuzzyEquivalent(tt.a, tt.b); got != tt.want {
			t.Errorf("FuzzyEquivalent(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPhraseMatches(t *testing.T) {
	docTokens := []string{"the", "cat", "sat", "cat", "mat"}
	if got := PhraseMatches([]string{"cat", "mat"}, docTokens); got != 3 {
		t.Errorf("PhraseMatches = %d, want 3", got)
	}
	if got := PhraseMatches([]string{"dog"}, docTokens); got != 0 {
		t.Errorf("PhraseMatches for absent term = %d, want 0", got)
	}
	if got := PhraseMatches(nil, docTokens); got != 0 {
		t.Errorf("PhraseMatches for empty query = %d, want 0", got)
	}
}
