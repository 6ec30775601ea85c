package parser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectFormatByExtension(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"project.zip", FormatArchive},
		{"events.log", FormatEventLog},
		{"events.jsonl", FormatEventLog},
		{"summary.json", FormatSummary},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.path); got != tt.want {
			t.Errorf("DetectFormat(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDetectFormatBySniffing(t *testing.T) {
	dir := t.TempDir()

	zipPath := filepath.Join(dir, "export")
	if err := os.WriteFile(zipPath, []byte("PK\x03\x04rest"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := DetectFormat(zipPath); got != FormatArchive {
		t.Errorf("zip magic = %v, want archive", got)
	}

	logPath := filepath.Join(dir, "audit")
	if err := os.WriteFile(logPath, []byte(`{"created": 1}`), 0644); err != nil {
		t.Fatal(err)
	}
	if got := DetectFormat(logPath); got != FormatEventLog {
		t.Errorf("json lines = %v, want eventlog", got)
	}

	if got := DetectFormat(filepath.Join(dir, "missing")); got != FormatUnknown {
		t.Errorf("missing file = %v, want unknown", got)
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("ZIP") != FormatArchive || ParseFormat("jsonl") != FormatEventLog {
		t.Error("format aliases not recognized")
	}
	if ParseFormat("parquet") != FormatUnknown {
		t.Error("unknown alias should map to FormatUnknown")
	}
}
