package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/annoflow/annoflow/internal/model"
)

// ReadSummary loads one summary file.
func ReadSummary(path string) (*model.ProjectSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var summary model.ProjectSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("parse summary %s: %w", filepath.Base(path), err)
	}
	if summary.ProjectName == "" {
		return nil, fmt.Errorf("summary %s has no project name", filepath.Base(path))
	}
	return &summary, nil
}

// DirResult is the outcome of loading a summary folder.
type DirResult struct {
	Summaries []*model.ProjectSummary
	Skipped   []string
}

// ReadSummaryDir loads every .json summary in dir, ordered by file
// name. Files that fail to parse are skipped and reported by name, not
// fatal: one corrupt export must not take down the whole lead view.
func ReadSummaryDir(dir string) (DirResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return DirResult{}, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var result DirResult
	for _, name := range names {
		summary, err := ReadSummary(filepath.Join(dir, name))
		if err != nil {
			result.Skipped = append(result.Skipped, name)
			continue
		}
		result.Summaries = append(result.Summaries, summary)
	}
	return result, nil
}
