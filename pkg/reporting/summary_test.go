package reporting

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/annoflow/annoflow/internal/model"
)

func buildTestSummary(t *testing.T) *model.ProjectSummary {
	t.Helper()
	project := twoAnnotatorProject()
	counts := AggregateTypeCounts(project, nil, ModeSum)
	return BuildSummary(SummaryInput{
		Project:          project,
		TypeCounts:       counts,
		Progress:         model.Progress{PercentComplete: 100, FinishedDocuments: 1, TotalDocuments: 1},
		Mode:             ModeSum,
		GeneratorVersion: "test",
		Created:          time.Date(2026, 3, 15, 12, 30, 0, 0, time.UTC),
	})
}

func TestBuildSummaryCarriesNoAnnotatorNames(t *testing.T) {
	raw, err := json.Marshal(buildTestSummary(t))
	if err != nil {
		t.Fatal(err)
	}
	for _, actor := range []string{"alice", "bob"} {
		if strings.Contains(string(raw), actor) {
			t.Errorf("summary leaks annotator name %q", actor)
		}
	}
}

func TestBuildSummaryDeterministicReportID(t *testing.T) {
	first := buildTestSummary(t)
	second := buildTestSummary(t)
	if first.ReportID != second.ReportID {
		t.Errorf("report IDs differ across runs: %s vs %s", first.ReportID, second.ReportID)
	}
	if first.Created != "2026-03-15" {
		t.Errorf("created = %q, want 2026-03-15", first.Created)
	}
}

func TestBuildSummaryFeatureWhitelist(t *testing.T) {
	project := twoAnnotatorProject()
	project.Annotations["doc1.txt"]["alice"]["custom.Span.PHI"].Features["NAME"] = 3
	project.Annotations["doc1.txt"]["alice"]["custom.Span.Concept"].Features["x"] = 1
	project.TypeNames["custom.Other"] = "Other"
	project.Annotations["doc1.txt"]["alice"]["custom.Other"] = &model.TypeStat{
		Total: 2, Features: map[string]int{"y": 2},
	}

	counts := AggregateTypeCounts(project, nil, ModeSum)
	summary := BuildSummary(SummaryInput{
		Project:    project,
		TypeCounts: counts,
		Mode:       ModeSum,
		Created:    time.Now(),
	})

	if summary.TypeCounts["PHI"].Features == nil {
		t.Error("PHI should carry its feature breakdown")
	}
	if summary.TypeCounts["Other"].Features != nil {
		t.Error("non-whitelisted type must not carry features")
	}
	if got := summary.TypeCounts["PHI"].Features["NAME"][string(model.StateAnnotationFinished)]; got != 3 {
		t.Errorf("NAME count under finished state = %d, want 3", got)
	}
}

func TestBuildSummaryStatusBuckets(t *testing.T) {
	summary := buildTestSummary(t)
	entry := summary.TypeCounts["PHI"]
	if got := entry.TotalByStatus[string(model.StateAnnotationFinished)]; got != entry.Total {
		t.Errorf("all counts should bucket under the document's state, got %d of %d", got, entry.Total)
	}
	if summary.DocCategories[string(model.StateAnnotationFinished)] != 1 {
		t.Errorf("doc categories = %v", summary.DocCategories)
	}
}

func TestBuildRollupWeightsByDocumentCount(t *testing.T) {
	big := &model.ProjectSummary{
		ProjectName: "big",
		Progress:    model.Progress{FinishedDocuments: 900, TotalDocuments: 1000, PercentComplete: 90},
	}
	small := &model.ProjectSummary{
		ProjectName: "small",
		Progress:    model.Progress{FinishedDocuments: 0, TotalDocuments: 10},
	}

	rollup := BuildRollup("team", []*model.ProjectSummary{big, small})
	want := 900.0 / 1010.0 * 100
	if rollup.Progress.PercentComplete != want {
		t.Errorf("percent = %v, want %v (document-weighted)", rollup.Progress.PercentComplete, want)
	}
	if rollup.Progress.RemainingDocuments != 110 {
		t.Errorf("remaining = %d, want 110", rollup.Progress.RemainingDocuments)
	}
}

func TestBuildRollupEstimateNeedsAllMembers(t *testing.T) {
	withEstimate := &model.ProjectSummary{
		Progress: model.Progress{Available: true, EstimatedRemainingSeconds: 3600, TotalDocuments: 5, FinishedDocuments: 2},
	}
	without := &model.ProjectSummary{
		Progress: model.Progress{TotalDocuments: 5},
	}

	partial := BuildRollup("t", []*model.ProjectSummary{withEstimate, without})
	if partial.Progress.Available {
		t.Error("roll-up estimate should be unavailable when a member lacks one")
	}
	if partial.MissingEstimates != 1 {
		t.Errorf("missing estimates = %d, want 1", partial.MissingEstimates)
	}

	full := BuildRollup("t", []*model.ProjectSummary{withEstimate})
	if !full.Progress.Available || full.Progress.EstimatedRemainingSeconds != 3600 {
		t.Errorf("full roll-up estimate = %+v", full.Progress)
	}
}

func TestGroupByTag(t *testing.T) {
	tagged := &model.ProjectSummary{ProjectName: "a", ProjectTags: []string{"team1", "pilot"}}
	untagged := &model.ProjectSummary{ProjectName: "b"}

	groups := GroupByTag([]*model.ProjectSummary{tagged, untagged})
	if len(groups["team1"]) != 1 || len(groups["pilot"]) != 1 {
		t.Errorf("tagged summary missing from its groups: %v", groups)
	}
	if len(groups[UntaggedGroup]) != 1 || groups[UntaggedGroup][0].ProjectName != "b" {
		t.Errorf("untagged summary not grouped: %v", groups)
	}

	tags := UniqueTags([]*model.ProjectSummary{tagged, untagged})
	want := []string{"pilot", "team1", UntaggedGroup}
	if len(tags) != len(want) {
		t.Fatalf("tags = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}
}
