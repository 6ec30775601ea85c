// Package pipeline drives a full report run: discover inputs, parse
// them, fold the numbers, and produce exportable summaries.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/annoflow/annoflow/internal/model"
	"github.com/annoflow/annoflow/pkg/parser"
	"github.com/annoflow/annoflow/pkg/reporting"
	"github.com/annoflow/annoflow/pkg/telemetry"
)

// Options configures a report run.
type Options struct {
	// ExcludedTypes removes annotation types from every count.
	ExcludedTypes []string

	// IdleGap splits activity sessions; zero means the default.
	IdleGap time.Duration

	// Mode combines annotators per document.
	Mode reporting.AggregationMode

	// CuratedOnly restricts annotation counts to curated documents.
	CuratedOnly bool

	// Concurrency bounds parallel archive loading; zero means 4.
	Concurrency int

	// Progress reports per-CAS loading progress.
	Progress parser.ProgressFunc

	// GeneratorVersion lands in exported summaries.
	GeneratorVersion string

	// Now stamps the summaries; nil means time.Now.
	Now func() time.Time
}

// ProjectReport is the full result for one project.
type ProjectReport struct {
	Project        *model.Project
	TypeCounts     reporting.AggregatedTypeCounts
	AnnotatorStats []model.AnnotatorStats
	Statuses       map[string]model.DocumentStatus
	Progress       model.Progress
	Summary        *model.ProjectSummary
	SkippedRecords int
}

// Run loads every project in folder and computes its report. Archives
// are loaded in parallel, bounded by Concurrency; reports come back
// ordered by project name.
func Run(ctx context.Context, folder string, opts Options) ([]*ProjectReport, error) {
	ctx, span := telemetry.StartSpan(ctx, "pipeline.run",
		attribute.String("folder", folder))
	defer span.End()

	archives, logs, err := discoverInputs(folder)
	if err != nil {
		return nil, err
	}
	if len(archives) == 0 && len(logs) == 0 {
		return nil, fmt.Errorf("no project archives or event logs in %s", folder)
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	archiveParser := parser.NewArchiveParser(parser.DefaultConfig())
	archiveParser.Progress = opts.Progress
	if opts.Progress != nil {
		total := 0
		for _, archive := range archives {
			if n, err := parser.CountCASFiles(archive); err == nil {
				total += n
			}
		}
		archiveParser.SetTotal(total)
	}

	projects := make([]*model.Project, len(archives))
	skipped := make([]int, len(archives))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, archive := range archives {
		i, archive := i, archive
		g.Go(func() error {
			project, stats, err := archiveParser.ParseArchive(gctx, archive)
			if err != nil {
				return fmt.Errorf("load %s: %w", filepath.Base(archive), err)
			}
			projects[i] = project
			skipped[i] = stats.SkippedCAS
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	// A log with no archive still yields a report: events alone carry
	// enough for activity and per-annotator views.
	if len(projects) == 0 {
		for _, logPath := range logs {
			projects = append(projects, &model.Project{Name: stem(logPath)})
			skipped = append(skipped, 0)
		}
	}
	logs = attachEvents(ctx, projects, logs, &skipped)
	for _, leftover := range logs {
		slog.Warn("event log matches no project, ignoring", "file", filepath.Base(leftover))
	}

	reports := make([]*ProjectReport, 0, len(projects))
	for i, project := range projects {
		reports = append(reports, buildReport(ctx, project, skipped[i], opts))
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Project.Name < reports[j].Project.Name
	})
	return reports, nil
}

// discoverInputs lists the folder's archives and event logs, sorted.
func discoverInputs(folder string) (archives, logs []string, err error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(folder, entry.Name())
		switch parser.DetectFormat(path) {
		case parser.FormatArchive:
			archives = append(archives, path)
		case parser.FormatEventLog:
			logs = append(logs, path)
		}
	}
	sort.Strings(archives)
	sort.Strings(logs)
	return archives, logs, nil
}

// attachEvents parses each event log and attaches it to the project
// whose name or file stem matches. With a single project every log
// attaches to it. Returns the logs that matched nothing.
func attachEvents(ctx context.Context, projects []*model.Project, logs []string, skipped *[]int) []string {
	logParser := parser.NewEventLogParser(parser.DefaultConfig())

	byName := make(map[string]int, len(projects))
	for i, project := range projects {
		byName[strings.ToLower(project.Name)] = i
	}

	var unmatched []string
	for _, logPath := range logs {
		target := -1
		if i, ok := byName[strings.ToLower(stem(logPath))]; ok {
			target = i
		} else if len(projects) == 1 {
			target = 0
		}
		if target < 0 {
			unmatched = append(unmatched, logPath)
			continue
		}

		batch, err := logParser.ParseFile(ctx, logPath)
		if err != nil {
			slog.Warn("skipping unreadable event log", "file", filepath.Base(logPath), "error", err)
			continue
		}
		projects[target].Events = append(projects[target].Events, batch.Events...)
		(*skipped)[target] += batch.Skipped
		if batch.Skipped > 0 {
			slog.Info("skipped malformed records",
				"file", filepath.Base(logPath), "skipped", batch.Skipped, "parsed", batch.Parsed)
		}
	}
	return unmatched
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// buildReport folds one loaded project into its report.
func buildReport(ctx context.Context, project *model.Project, skippedRecords int, opts Options) *ProjectReport {
	_, span := telemetry.StartSpan(ctx, "pipeline.report",
		attribute.String("project", project.Name))
	defer span.End()

	excluded := reporting.NewExclusionSet(opts.ExcludedTypes)
	events := excluded.FilterEvents(project.Events)

	idleGap := opts.IdleGap
	if idleGap <= 0 {
		idleGap = reporting.DefaultIdleGap
	}

	counts := reporting.AggregateTypeCounts(project, excluded, opts.Mode)
	if opts.CuratedOnly {
		counts = reporting.FilterToDocuments(counts, reporting.CuratedDocuments(project.Documents))
	}

	actual := make(map[string]int)
	for _, typeCount := range counts {
		for document, count := range typeCount.Documents {
			actual[document] += count
		}
	}

	statuses := reporting.ClassifyDocuments(project.Documents, events, actual)
	active := reporting.ActiveTimeByDocument(events, idleGap)
	progress := reporting.EstimateProgress(statuses, active, len(project.Documents))

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	summary := reporting.BuildSummary(reporting.SummaryInput{
		Project:          project,
		TypeCounts:       counts,
		Progress:         progress,
		Mode:             opts.Mode,
		SkippedRecords:   skippedRecords,
		GeneratorVersion: opts.GeneratorVersion,
		Created:          now(),
	})

	return &ProjectReport{
		Project:        project,
		TypeCounts:     counts,
		AnnotatorStats: reporting.BuildAnnotatorStats(events, idleGap),
		Statuses:       statuses,
		Progress:       progress,
		Summary:        summary,
		SkippedRecords: skippedRecords,
	}
}
