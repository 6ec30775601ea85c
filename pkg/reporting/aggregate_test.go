package reporting

import (
	"testing"

	"github.com/annoflow/annoflow/internal/model"
)

func casStats(counts map[string]int) model.CasStats {
	stats := make(model.CasStats, len(counts))
	for name, total := range counts {
		stats[name] = &model.TypeStat{Total: total, Features: make(map[string]int)}
	}
	return stats
}

func twoAnnotatorProject() *model.Project {
	return &model.Project{
		Name: "demo",
		Documents: []model.Document{
			{Name: "doc1.txt", State: model.StateAnnotationFinished},
		},
		Annotations: map[string]model.AnnotationSet{
			"doc1.txt": {
				"alice": casStats(map[string]int{"custom.Span.PHI": 10, "custom.Span.Concept": 4}),
				"bob":   casStats(map[string]int{"custom.Span.PHI": 6}),
			},
		},
		TypeNames: map[string]string{
			"custom.Span.PHI":     "PHI",
			"custom.Span.Concept": "Concept",
		},
	}
}

func TestAggregateTypeCountsModes(t *testing.T) {
	tests := []struct {
		mode        AggregationMode
		wantPHI     int
		wantConcept int
	}{
		{ModeSum, 16, 4},
		{ModeAverage, 8, 2},
		{ModeMax, 10, 4},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			counts := AggregateTypeCounts(twoAnnotatorProject(), nil, tt.mode)
			if got := counts.Get("PHI"); got == nil || got.Total != tt.wantPHI {
				t.Errorf("PHI total = %v, want %d", got, tt.wantPHI)
			}
			if got := counts.Get("Concept"); got == nil || got.Total != tt.wantConcept {
				t.Errorf("Concept total = %v, want %d", got, tt.wantConcept)
			}
		})
	}
}

func TestAggregateTypeCountsOrdering(t *testing.T) {
	counts := AggregateTypeCounts(twoAnnotatorProject(), nil, ModeSum)
	if len(counts) != 2 {
		t.Fatalf("got %d types, want 2", len(counts))
	}
	if counts[0].Name != "PHI" || counts[1].Name != "Concept" {
		t.Errorf("order = %q, %q; want PHI first by total", counts[0].Name, counts[1].Name)
	}
}

func TestAggregateTypeCountsExclusion(t *testing.T) {
	excluded := NewExclusionSet([]string{"custom.Span.Concept"})
	counts := AggregateTypeCounts(twoAnnotatorProject(), excluded, ModeSum)
	if counts.Get("Concept") != nil {
		t.Error("excluded type still present in aggregation")
	}
	if counts.Get("PHI") == nil {
		t.Error("non-excluded type missing")
	}
}

func TestMaxCasStatsTieBreaksOnFirst(t *testing.T) {
	first := casStats(map[string]int{"A": 5})
	second := casStats(map[string]int{"B": 5})
	best := maxCasStats([]model.CasStats{first, second})
	if _, ok := best["A"]; !ok {
		t.Error("tie should keep the first annotator in name order")
	}
}

func TestAverageCasStatsRounds(t *testing.T) {
	stats := averageCasStats([]model.CasStats{
		casStats(map[string]int{"A": 3}),
		casStats(map[string]int{"A": 4}),
	})
	if got := stats["A"].Total; got != 4 {
		t.Errorf("average of 3 and 4 = %d, want 4 (rounded)", got)
	}
}

func TestDocumentCategoriesCoversAllStates(t *testing.T) {
	categories := DocumentCategories([]model.Document{
		{Name: "a", State: model.StateNew},
		{Name: "b", State: model.StateAnnotationFinished},
		{Name: "c", State: model.StateAnnotationFinished},
	})
	if len(categories) != len(model.DocumentStates) {
		t.Fatalf("got %d categories, want %d", len(categories), len(model.DocumentStates))
	}
	if categories[model.StateAnnotationFinished] != 2 {
		t.Errorf("finished = %d, want 2", categories[model.StateAnnotationFinished])
	}
	if categories[model.StateCurationFinished] != 0 {
		t.Errorf("curation finished = %d, want 0", categories[model.StateCurationFinished])
	}
}

func TestFilterToDocuments(t *testing.T) {
	counts := AggregatedTypeCounts{
		{Name: "PHI", Total: 10, Documents: map[string]int{"keep": 7, "drop": 3}},
		{Name: "Only", Total: 2, Documents: map[string]int{"drop": 2}},
	}
	filtered := FilterToDocuments(counts, map[string]struct{}{"keep": {}})
	if len(filtered) != 1 {
		t.Fatalf("got %d types, want 1", len(filtered))
	}
	if filtered[0].Total != 7 {
		t.Errorf("total = %d, want 7", filtered[0].Total)
	}
}
