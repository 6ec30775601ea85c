package pipeline

import (
	"archive/zip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/annoflow/annoflow/internal/model"
	"github.com/annoflow/annoflow/pkg/reporting"
)

const fixtureMetadata = `{
  "name": "demo",
  "description": "#pilot",
  "application_version": "32.4",
  "source_documents": [
    {"name": "doc1.txt", "state": "ANNOTATION_FINISHED"},
    {"name": "doc2.txt", "state": "ANNOTATION_FINISHED"},
    {"name": "doc3.txt", "state": "NEW"}
  ]
}`

const fixtureCAS = `{
  "%FEATURE_STRUCTURES": [
    {"%TYPE": "custom.Span.PHI", "begin": 0, "end": 4, "value": "NAME"},
    {"%TYPE": "custom.Span.Internal", "begin": 5, "end": 9}
  ]
}`

const fixtureLog = `{"created": 1700000000000, "user": "alice", "event": "SpanCreatedEvent", "document_name": "doc1.txt", "annotation_type": "custom.Span.PHI"}
{"created": 1700000060000, "user": "alice", "event": "SpanCreatedEvent", "document_name": "doc1.txt", "annotation_type": "custom.Span.PHI"}
{"created": 1700000120000, "user": "alice", "event": "SpanCreatedEvent", "document_name": "doc2.txt", "annotation_type": "custom.Span.PHI"}
{"created": 1700000180000, "user": "alice", "event": "SpanCreatedEvent", "document_name": "doc2.txt", "annotation_type": "custom.Span.PHI"}
garbage line
`

func writeFixtureFolder(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	f, err := os.Create(filepath.Join(dir, "demo.zip"))
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	entries := map[string]string{
		"exportedproject.json":           fixtureMetadata,
		"annotation/doc1.txt/alice.json": fixtureCAS,
		"annotation/doc2.txt/alice.json": fixtureCAS,
	}
	for name, content := range entries {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "demo.jsonl"), []byte(fixtureLog), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
}

func TestRun(t *testing.T) {
	dir := writeFixtureFolder(t)

	reports, err := Run(context.Background(), dir, Options{
		ExcludedTypes: []string{"custom.Span.Internal"},
		Mode:          reporting.ModeSum,
		Now:           fixedNow,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}

	report := reports[0]
	if report.Project.Name != "demo" {
		t.Errorf("project = %q", report.Project.Name)
	}
	if report.SkippedRecords != 1 {
		t.Errorf("skipped records = %d, want 1 (garbage line)", report.SkippedRecords)
	}

	if report.TypeCounts.Get("Internal") != nil {
		t.Error("excluded type survived the pipeline")
	}
	phi := report.TypeCounts.Get("PHI")
	if phi == nil || phi.Total != 2 {
		t.Fatalf("PHI counts = %+v, want total 2", phi)
	}

	if report.Statuses["doc1.txt"] != model.StatusFinished {
		t.Errorf("doc1 status = %v", report.Statuses["doc1.txt"])
	}
	if report.Statuses["doc3.txt"] != model.StatusNotStarted {
		t.Errorf("doc3 status = %v", report.Statuses["doc3.txt"])
	}

	// Two finished documents with observed activity: estimate available.
	if !report.Progress.Available {
		t.Error("expected an available estimate with two finished documents")
	}
	if report.Progress.FinishedDocuments != 2 || report.Progress.TotalDocuments != 3 {
		t.Errorf("progress = %+v", report.Progress)
	}

	if len(report.AnnotatorStats) != 1 || report.AnnotatorStats[0].Actor != "alice" {
		t.Errorf("annotator stats = %+v", report.AnnotatorStats)
	}

	if report.Summary.Created != "2026-03-15" {
		t.Errorf("summary created = %q", report.Summary.Created)
	}
	if report.Summary.ProjectTags[0] != "pilot" {
		t.Errorf("summary tags = %v", report.Summary.ProjectTags)
	}
}

func TestRunReportsProgress(t *testing.T) {
	dir := writeFixtureFolder(t)

	var mu sync.Mutex
	lastDone, lastTotal := 0, 0
	_, err := Run(context.Background(), dir, Options{
		Mode: reporting.ModeSum,
		Now:  fixedNow,
		Progress: func(done, total int, project, document string) {
			mu.Lock()
			lastDone, lastTotal = done, total
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	// The fixture archive holds two CAS files; the denominator is
	// pre-counted across the folder before loading starts.
	if lastDone != 2 || lastTotal != 2 {
		t.Errorf("progress ended at %d/%d, want 2/2", lastDone, lastTotal)
	}
}

func TestRunDeterministic(t *testing.T) {
	dir := writeFixtureFolder(t)
	opts := Options{Mode: reporting.ModeSum, Now: fixedNow}

	first, err := Run(context.Background(), dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Run(context.Background(), dir, opts)
	if err != nil {
		t.Fatal(err)
	}

	a, err := json.Marshal(first[0].Summary)
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(second[0].Summary)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("identical runs produced different summaries")
	}
}

func TestRunEmptyFolder(t *testing.T) {
	if _, err := Run(context.Background(), t.TempDir(), Options{}); err == nil {
		t.Fatal("expected error for folder without inputs")
	}
}

func TestRunLead(t *testing.T) {
	dir := t.TempDir()

	summary := &model.ProjectSummary{
		ProjectName: "demo",
		ProjectTags: []string{"pilot"},
		Created:     "2026-03-15",
		Progress:    model.Progress{FinishedDocuments: 2, TotalDocuments: 3},
	}
	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "demo_2026_03_15.json"), data, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	report, err := RunLead(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Summaries) != 1 {
		t.Errorf("summaries = %d, want 1", len(report.Summaries))
	}
	if len(report.Skipped) != 1 {
		t.Errorf("skipped = %v", report.Skipped)
	}
	if len(report.Tags) != 1 || report.Tags[0] != "pilot" {
		t.Errorf("tags = %v", report.Tags)
	}
	if len(report.Rollups) != 1 || report.Rollups[0].Tag != "pilot" {
		t.Errorf("rollups = %+v", report.Rollups)
	}
}
