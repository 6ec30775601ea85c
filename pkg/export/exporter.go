// Package export writes and reads transportable project summaries.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/annoflow/annoflow/internal/model"
)

const (
	// OutputDirEnv overrides the default output directory.
	OutputDirEnv = "ANNOFLOW_OUTPUT_DIR"
	// DefaultOutputDir receives summaries when nothing else is set.
	DefaultOutputDir = "exported_reports"

	jsonIndent = "    "
)

// ResolveOutputDir picks the summary output directory: explicit flag,
// then the environment override, then ./exported_reports.
func ResolveOutputDir(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if dir := os.Getenv(OutputDirEnv); dir != "" {
		return dir
	}
	return DefaultOutputDir
}

// NormalizeProjectName makes a project name safe for file names.
func NormalizeProjectName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	return name
}

// SummaryFileName returns the canonical summary file name,
// <project>_<YYYY_MM_DD>.json.
func SummaryFileName(projectName string, created time.Time) string {
	return fmt.Sprintf("%s_%s.json", NormalizeProjectName(projectName), created.Format("2006_01_02"))
}

// WriteSummary writes a summary into dir under its canonical name and
// returns the full path. Marshaling is deterministic (sorted keys,
// four-space indent), so re-exporting unchanged input produces a
// byte-identical file. The write goes through a temp file and rename
// so a crash cannot leave a truncated summary behind.
func WriteSummary(dir string, summary *model.ProjectSummary) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	created, err := time.Parse("2006-01-02", summary.Created)
	if err != nil {
		return "", fmt.Errorf("summary has invalid created date %q: %w", summary.Created, err)
	}

	data, err := json.MarshalIndent(summary, "", jsonIndent)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, SummaryFileName(summary.ProjectName, created))
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("write summary: %w", err)
	}
	return path, nil
}
