package expand

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExpandQueryTokenizationOnly(t *testing.T) {
	e := NewSynonymExpander(nil)

	terms, err := e.ExpandQuery(context.Background(), "The quick cars")
	if err != nil {
		t.Fatalf("ExpandQuery: %v", err)
	}
	want := []string{"car", "quick"}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("terms = %v, want %v", terms, want)
	}
}

func TestExpandQuerySynonymUnion(t *testing.T) {
	e := NewSynonymExpander(map[string][]string{
		"car": {"automobile", "vehicle"},
	})

	terms, err := e.ExpandQuery(context.Background(), "car")
	if err != nil {
		t.Fatalf("ExpandQuery: %v", err)
	}
	want := []string{"automobile", "car", "vehicle"}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("terms = %v, want %v", terms, want)
	}
}

func TestExpandQueryDeduplicates(t *testing.T) {
	e := NewSynonymExpander(map[string][]string{
		"car":  {"automobile"},
		"auto": {"automobile"},
	})

	terms, err := e.ExpandQuery(context.Background(), "car auto car")
	if err != nil {
		t.Fatalf("ExpandQuery: %v", err)
	}
	want := []string{"auto", "automobile", "car"}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("terms = %v, want %v", terms, want)
	}
}

func TestExpandQueryEmpty(t *testing.T) {
	e := NewSynonymExpander(map[string][]string{"car": {"automobile"}})

	terms, err := e.ExpandQuery(context.Background(), "")
	if err != nil {
		t.Fatalf("ExpandQuery: %v", err)
	}
	if len(terms) != 0 {
		t.Errorf("expected no terms for empty query, got %v", terms)
	}
}

func TestExpandQueryDeterministic(t *testing.T) {
	e := NewSynonymExpander(map[string][]string{
		"graph": {"network", "web"},
		"rank":  {"score", "order"},
	})

	first, err := e.ExpandQuery(context.Background(), "graph rank")
	if err != nil {
		t.Fatalf("ExpandQuery: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := e.ExpandQuery(context.Background(), "graph rank")
		if err != nil {
			t.Fatalf("ExpandQuery: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: terms = %v, want %v", i, again, first)
		}
	}
}

func TestBoostedExpander(t *testing.T) {
	inner := NewSynonymExpander(nil)
	e := NewBoostedExpander(inner, map[string]float64{"graph": 2.9}, []string{"rank"})

	terms, err := e.ExpandQuery(context.Background(), "graph rank doc")
	if err != nil {
		t.Fatalf("ExpandQuery: %v", err)
	}
	counts := make(map[string]int)
	for _, term := range terms {
		counts[term]++
	}
	if counts["graph"] != 2 {
		t.Errorf("graph repeated %d times, want 2 (floor of 2.9)", counts["graph"])
	}
	if counts["rank"] != 3 {
		t.Errorf("rank repeated %d times, want 3 (exact match)", counts["rank"])
	}
	if counts["doc"] != 1 {
		t.Errorf("doc repeated %d times, want 1", counts["doc"])
	}
}

func TestLoadSynonyms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	content := "car:\n  - automobile\n  - vehicle\nfast:\n  - quick\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	table, err := LoadSynonyms(path)
	if err != nil {
		t.Fatalf("LoadSynonyms: %v", err)
	}
	if got := table["car"]; !reflect.DeepEqual(got, []string{"automobile", "vehicle"}) {
		t.Errorf("car synonyms = %v", got)
	}
	if got := table["fast"]; !reflect.DeepEqual(got, []string{"quick"}) {
		t.Errorf("fast synonyms = %v", got)
	}
}

func TestLoadSynonymsMissingFile(t *testing.T) {
	if _, err := LoadSynonyms("/nonexistent/synonyms.yaml"); err == nil {
		t.Error("expected error for missing synonyms file")
	}
}
