package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/annoflow/annoflow/pkg/export"
	"github.com/annoflow/annoflow/pkg/pipeline"
	"github.com/annoflow/annoflow/pkg/tui"
)

var (
	reportXLSX   bool
	reportBundle string
)

var reportCmd = &cobra.Command{
	Use:   "report [folder]",
	Short: "Export project summaries without serving the dashboard",
	Long: `Load the project folder, compute its statistics, and write one
summary JSON per project into the output directory.

The summary carries aggregate numbers only: no annotator names, no
per-document detail. Re-running over unchanged input reproduces the
files byte for byte.

Examples:
  annoflow report ./my-project
  annoflow report ./my-project -o /srv/reports --xlsx
  annoflow report ./my-project --bundle reports.zip`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportXLSX, "xlsx", false, "Also write an XLSX workbook per project")
	reportCmd.Flags().StringVar(&reportBundle, "bundle", "", "Pack the exported summaries into a zip")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
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

	opts := pipelineOptions(cfg)

	bar := tui.ShowProgress(-1, "loading archives")
	opts.Progress = func(done, total int, project, document string) {
		if total > 0 && bar.GetMax() != total {
			bar.ChangeMax(total)
		}
		bar.Set(done)
	}

	reports, err := pipeline.Run(ctx, folder, opts)
	bar.Finish()
	if err != nil {
		return err
	}

	outputDir := export.ResolveOutputDir(firstNonEmpty(outputDirFlag, cfg.OutputDir))
	for _, report := range reports {
		tui.PrintProjectSummary(report.Summary)

		path, err := export.WriteSummary(outputDir, report.Summary)
		if err != nil {
			return err
		}
		tui.PrintExported(path)

		if reportXLSX {
			xlsxPath := strings.TrimSuffix(path, ".json") + ".xlsx"
			if err := export.WriteWorkbook(xlsxPath, report.Summary); err != nil {
				return err
			}
			tui.PrintExported(xlsxPath)
		}
	}

	if reportBundle != "" {
		count, err := export.WriteBundle(outputDir, reportBundle)
		if err != nil {
			return err
		}
		tui.PrintExported(fmt.Sprintf("%s (%d summaries)", reportBundle, count))
	}
	return nil
}
