package pipeline

import (
	"context"
	"log/slog"

	"github.com/annoflow/annoflow/internal/model"
	"github.com/annoflow/annoflow/pkg/export"
	"github.com/annoflow/annoflow/pkg/remote"
	"github.com/annoflow/annoflow/pkg/reporting"
	"github.com/annoflow/annoflow/pkg/telemetry"
)

// LeadReport is the cross-project view over a folder of summaries.
type LeadReport struct {
	Summaries []*model.ProjectSummary
	Rollups   []reporting.Rollup
	Tags      []string
	Skipped   []string
}

// RunLead loads exported summaries from folder and groups them by tag.
// Corrupt files are skipped and reported, never fatal.
func RunLead(ctx context.Context, folder string) (*LeadReport, error) {
	_, span := telemetry.StartSpan(ctx, "pipeline.lead")
	defer span.End()

	result, err := export.ReadSummaryDir(folder)
	if err != nil {
		return nil, err
	}
	for _, name := range result.Skipped {
		slog.Warn("skipping unreadable summary", "file", name)
	}

	return &LeadReport{
		Summaries: result.Summaries,
		Rollups:   reporting.BuildRollups(result.Summaries),
		Tags:      reporting.UniqueTags(result.Summaries),
		Skipped:   result.Skipped,
	}, nil
}

// RunLeadRemote pulls summaries from object storage into folder first,
// then builds the lead report from the merged set.
func RunLeadRemote(ctx context.Context, client *remote.Client, folder string) (*LeadReport, error) {
	pulled, err := client.PullAll(ctx, folder)
	if err != nil {
		return nil, err
	}
	slog.Info("pulled summaries", "count", pulled, "bucket", client.Bucket())
	return RunLead(ctx, folder)
}
