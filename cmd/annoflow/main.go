// Annoflow - annotation project reporting.
// Turns annotation platform exports and audit logs into progress
// reports and an interactive dashboard.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/annoflow/annoflow/internal/logging"
	"github.com/annoflow/annoflow/pkg/config"
	"github.com/annoflow/annoflow/pkg/pipeline"
	"github.com/annoflow/annoflow/pkg/reporting"
	"github.com/annoflow/annoflow/pkg/telemetry"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	managerMode bool
	leadMode    bool

	aggregationFlag string
	idleGapFlag     time.Duration
	curatedOnly     bool
	outputDirFlag   string

	logLevel string
	logJSON  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "annoflow [folder]",
	Short: "Annoflow - annotation project reporting",
	Long: `Annoflow reads annotation platform exports and audit event logs and
serves an interactive reporting dashboard.

Manager mode (-m) points at one project folder: archives (.zip) plus
optional event logs (.jsonl/.log). Lead mode (-l) points at a folder of
exported summaries collected from several locations.

Examples:
  annoflow -m ./my-project          # dashboard for one project folder
  annoflow -l ./collected-reports   # cross-project dashboard
  annoflow report ./my-project      # export summaries without serving`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
	Args:    cobra.MaximumNArgs(1),
	RunE:    runDashboard,
}

func init() {
	rootCmd.Flags().BoolVarP(&managerMode, "manager", "m", false, "Serve one project folder")
	rootCmd.Flags().BoolVarP(&leadMode, "lead", "l", false, "Serve a folder of exported summaries")

	rootCmd.PersistentFlags().StringVar(&aggregationFlag, "aggregation", "", "Combine annotators per document: sum, average, max")
	rootCmd.PersistentFlags().DurationVar(&idleGapFlag, "idle-gap", 0, "Inactivity threshold splitting work sessions (e.g. 5m)")
	rootCmd.PersistentFlags().BoolVar(&curatedOnly, "curated-only", false, "Count annotations on curated documents only")
	rootCmd.PersistentFlags().StringVarP(&outputDirFlag, "output", "o", "", "Directory for exported summaries")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log as JSON")
}

// setup initializes logging and telemetry, returning the loaded config
// and a shutdown function for the tracer.
func setup(ctx context.Context) (*config.Config, func(), error) {
	logging.Init(logJSON, logging.ParseLevel(logLevel))

	if err := config.Global().Load(); err != nil {
		return nil, nil, err
	}
	cfg := config.Global().Get()

	shutdown := func() {}
	if cfg.Telemetry.Enabled {
		tcfg := telemetry.DefaultConfig("annoflow", version)
		if cfg.Telemetry.Endpoint != "" {
			tcfg.Endpoint = cfg.Telemetry.Endpoint
		}
		stop, err := telemetry.NewExporter(tcfg).Init(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("telemetry init: %w", err)
		}
		shutdown = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			stop(ctx)
		}
	}
	return cfg, shutdown, nil
}

// pipelineOptions merges config and flags into run options.
func pipelineOptions(cfg *config.Config) pipeline.Options {
	mode := reporting.ParseAggregationMode(cfg.Aggregation)
	if aggregationFlag != "" {
		mode = reporting.ParseAggregationMode(aggregationFlag)
	}

	idleGap := cfg.IdleGap.Std()
	if idleGapFlag > 0 {
		idleGap = idleGapFlag
	}

	return pipeline.Options{
		ExcludedTypes:    cfg.ExcludedTypes,
		IdleGap:          idleGap,
		Mode:             mode,
		CuratedOnly:      curatedOnly,
		GeneratorVersion: version,
	}
}

// requireFolder validates the folder argument and that it exists.
func requireFolder(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("a folder argument is required")
	}
	folder := args[0]
	info, err := os.Stat(folder)
	if err != nil {
		return "", fmt.Errorf("cannot open %s: %w", folder, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", folder)
	}
	return folder, nil
}
