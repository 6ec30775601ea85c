package export

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/annoflow/annoflow/internal/model"
)

func sampleSummary() *model.ProjectSummary {
	return &model.ProjectSummary{
		ProjectName: "Medical Notes",
		ProjectTags: []string{"team1"},
		ReportID:    "fixed-id",
		Created:     "2026-03-15",
		DocCategories: map[string]int{
			string(model.StateNew):                3,
			string(model.StateAnnotationFinished): 7,
		},
		TokenCategories: map[string]int{},
		TypeCounts: map[string]model.TypeSummary{
			"PHI": {Total: 42, TotalByStatus: map[string]int{string(model.StateAnnotationFinished): 42}},
		},
		Progress:        model.Progress{PercentComplete: 70, FinishedDocuments: 7, TotalDocuments: 10},
		AggregationMode: "sum",
	}
}

func TestSummaryFileName(t *testing.T) {
	created := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := SummaryFileName("Medical Notes", created); got != "Medical_Notes_2026_03_15.json" {
		t.Errorf("file name = %q", got)
	}
}

func TestWriteSummaryByteIdenticalReruns(t *testing.T) {
	dir := t.TempDir()

	first, err := WriteSummary(dir, sampleSummary())
	if err != nil {
		t.Fatal(err)
	}
	firstData, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}

	second, err := WriteSummary(dir, sampleSummary())
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("paths differ: %s vs %s", first, second)
	}
	secondData, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(firstData, secondData) {
		t.Error("re-export of identical input is not byte-identical")
	}
}

func TestWriteSummaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteSummary(dir, sampleSummary())
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := ReadSummary(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ProjectName != "Medical Notes" {
		t.Errorf("project name = %q", loaded.ProjectName)
	}
	if loaded.TypeCounts["PHI"].Total != 42 {
		t.Errorf("PHI total = %d, want 42", loaded.TypeCounts["PHI"].Total)
	}
	if loaded.Progress.PercentComplete != 70 {
		t.Errorf("percent = %v, want 70", loaded.Progress.PercentComplete)
	}
}

func TestReadSummaryDirSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	if _, err := WriteSummary(dir, sampleSummary()); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := ReadSummaryDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Summaries) != 1 {
		t.Errorf("got %d summaries, want 1", len(result.Summaries))
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "broken.json" {
		t.Errorf("skipped = %v, want [broken.json]", result.Skipped)
	}
}

func TestWriteBundle(t *testing.T) {
	dir := t.TempDir()
	if _, err := WriteSummary(dir, sampleSummary()); err != nil {
		t.Fatal(err)
	}
	other := sampleSummary()
	other.ProjectName = "Other"
	if _, err := WriteSummary(dir, other); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "reports.zip")
	count, err := WriteBundle(dir, dest)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("bundled %d files, want 2", count)
	}

	reader, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
	if len(reader.File) != 2 {
		t.Fatalf("archive holds %d entries, want 2", len(reader.File))
	}
	if reader.File[0].Name != "Medical_Notes_2026_03_15.json" {
		t.Errorf("first entry = %q", reader.File[0].Name)
	}
}

func TestResolveOutputDir(t *testing.T) {
	if got := ResolveOutputDir("explicit"); got != "explicit" {
		t.Errorf("explicit dir = %q", got)
	}
	t.Setenv(OutputDirEnv, "/tmp/reports")
	if got := ResolveOutputDir(""); got != "/tmp/reports" {
		t.Errorf("env dir = %q", got)
	}
	t.Setenv(OutputDirEnv, "")
	if got := ResolveOutputDir(""); got != DefaultOutputDir {
		t.Errorf("default dir = %q", got)
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteWorkbook(path, sampleSummary()); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("workbook is empty")
	}
}
