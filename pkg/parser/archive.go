package parser

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/annoflow/annoflow/internal/model"
)

const metadataEntry = "exportedproject.json"

// ProgressFunc reports CAS loading progress. done and total count CAS
// files across the whole run; project and document name the current
// position.
type ProgressFunc func(done, total int, project, document string)

// ArchiveStats accounts for one archive load.
type ArchiveStats struct {
	CASFiles   int
	SkippedCAS int
}

// ArchiveParser reads zipped project exports: project metadata plus one
// CAS JSON per document and annotator. One parser may load several
// archives concurrently; the progress counters are shared across them.
type ArchiveParser struct {
	cfg Config

	// Progress, when set, is invoked after each CAS file.
	Progress ProgressFunc

	done, total atomic.Int64
}

// NewArchiveParser creates a new archive parser.
func NewArchiveParser(cfg Config) *ArchiveParser {
	return &ArchiveParser{cfg: cfg}
}

// projectMeta mirrors the archive's exportedproject.json.
type projectMeta struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	SourceDocuments []struct {
		Name  string `json:"name"`
		State string `json:"state"`
	} `json:"source_documents"`
	ApplicationVersion string `json:"application_version"`
}

// SetTotal primes the progress denominator for a multi-archive run.
// Without it, progress is reported against this archive alone. Call
// before any concurrent ParseArchive starts.
func (p *ArchiveParser) SetTotal(total int) {
	p.total.Store(int64(total))
}

// CountCASFiles returns the number of CAS entries the archive at path
// would load, for progress pre-counting.
func CountCASFiles(path string) (int, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNotArchive, path)
	}
	defer reader.Close()

	meta, err := readMetadata(&reader.Reader)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, doc := range meta.SourceDocuments {
		total += len(matchingCASEntries(&reader.Reader, doc.Name, model.ParseDocumentState(doc.State)))
	}
	return total, nil
}

// ParseArchive loads the project export at archivePath.
func (p *ArchiveParser) ParseArchive(ctx context.Context, archivePath string) (*model.Project, ArchiveStats, error) {
	var stats ArchiveStats

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %s", ErrNotArchive, archivePath)
	}
	defer reader.Close()

	meta, err := readMetadata(&reader.Reader)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", filepath.Base(archivePath), err)
	}
	if len(meta.SourceDocuments) == 0 {
		return nil, stats, fmt.Errorf("%s: %w", filepath.Base(archivePath), ErrNoDocuments)
	}

	name := meta.Name
	if name == "" {
		name = projectStem(archivePath)
	}

	project := &model.Project{
		Name:            name,
		Tags:            parseTags(meta.Description),
		Annotations:     make(map[string]model.AnnotationSet),
		TypeNames:       make(map[string]string),
		PlatformVersion: meta.ApplicationVersion,
	}

	if p.total.Load() == 0 {
		if total, err := CountCASFiles(archivePath); err == nil {
			p.total.CompareAndSwap(0, int64(total))
		}
	}

	for _, doc := range meta.SourceDocuments {
		select {
		case <-ctx.Done():
			return nil, stats, ErrContextCanceled
		default:
		}

		state := model.ParseDocumentState(doc.State)
		project.Documents = append(project.Documents, model.Document{
			Name:  doc.Name,
			State: state,
		})
		project.Annotations[doc.Name] = make(model.AnnotationSet)

		for _, entry := range matchingCASEntries(&reader.Reader, doc.Name, state) {
			stats.CASFiles++

			annotator := strings.TrimSuffix(path.Base(entry.Name), ".json")
			if err := p.loadCAS(entry, project, doc.Name, annotator); err != nil {
				stats.SkippedCAS++
			}

			done := p.done.Add(1)
			if p.Progress != nil {
				p.Progress(int(done), int(p.total.Load()), project.Name, doc.Name)
			}
		}
	}

	return project, stats, nil
}

func (p *ArchiveParser) loadCAS(entry *zip.File, project *model.Project, document, annotator string) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	stats, typeNames, err := DecodeCAS(rc)
	if err != nil {
		return err
	}
	project.Annotations[document][annotator] = stats
	for name, uiName := range typeNames {
		project.TypeNames[name] = uiName
	}
	return nil
}

func readMetadata(reader *zip.Reader) (*projectMeta, error) {
	for _, entry := range reader.File {
		if entry.Name != metadataEntry {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		var meta projectMeta
		if err := json.NewDecoder(rc).Decode(&meta); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", metadataEntry, err)
		}
		return &meta, nil
	}
	return nil, ErrMissingMetadata
}

// matchingCASEntries finds the CAS files for one document. Curated
// documents read from the curation folder, everything else from the
// annotation folder. INITIAL_CAS is the pristine import and only
// counts when no annotator has saved a CAS yet.
func matchingCASEntries(reader *zip.Reader, document string, state model.DocumentState) []*zip.File {
	prefix := "annotation/" + document + "/"
	if state == model.StateCurationFinished {
		prefix = "curation/" + document + "/"
	}

	var matches []*zip.File
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name, prefix) && strings.HasSuffix(entry.Name, ".json") {
			matches = append(matches, entry)
		}
	}

	if len(matches) > 1 {
		filtered := matches[:0]
		for _, entry := range matches {
			if !strings.HasSuffix(entry.Name, "INITIAL_CAS.json") {
				filtered = append(filtered, entry)
			}
		}
		matches = filtered
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return matches
}

// projectStem strips the directory and archive suffix from a path.
func projectStem(archivePath string) string {
	base := filepath.Base(archivePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// parseTags extracts #tag words from a project description. Returns
// nil when the description carries none.
func parseTags(description string) []string {
	var tags []string
	for _, word := range strings.Fields(description) {
		if strings.HasPrefix(word, "#") {
			tag := strings.Trim(word, "#")
			if tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
