package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/annoflow/annoflow/pkg/pipeline"
	"github.com/annoflow/annoflow/pkg/tui"
)

var leadPullURL string

var leadCmd = &cobra.Command{
	Use:   "lead [folder]",
	Short: "Print the cross-project roll-up for a folder of summaries",
	Long: `Read exported summary files from the folder, group them by their
#tags, and print combined progress per group.

With --pull, summaries are first downloaded from object storage into
the folder and merged with whatever is already there.

Examples:
  annoflow lead ./collected-reports
  annoflow lead ./collected-reports --pull s3://reports/team-a`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLead,
}

func init() {
	leadCmd.Flags().StringVar(&leadPullURL, "pull", "", "Pull summaries from an s3://bucket/prefix URL first")
	rootCmd.AddCommand(leadCmd)
}

func runLead(cmd *cobra.Command, args []string) error {
	folder, err := requireFolder(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, shutdown, err := setup(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	var report *pipeline.LeadReport
	if leadPullURL != "" {
		client, err := remoteClient(ctx, cfg, leadPullURL)
		if err != nil {
			return err
		}
		report, err = pipeline.RunLeadRemote(ctx, client, folder)
		if err != nil {
			return err
		}
	} else {
		report, err = pipeline.RunLead(ctx, folder)
		if err != nil {
			return err
		}
	}

	tui.PrintHeader(version)
	if len(report.Summaries) == 0 {
		return fmt.Errorf("no summary files in %s", folder)
	}

	for _, rollup := range report.Rollups {
		tui.PrintRollup(rollup.Tag, len(rollup.Projects),
			rollup.Progress.PercentComplete,
			rollup.Progress.FinishedDocuments,
			rollup.Progress.TotalDocuments)
	}
	for _, summary := range report.Summaries {
		tui.PrintProjectSummary(summary)
	}
	return nil
}
