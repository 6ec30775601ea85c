package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/annoflow/annoflow/pkg/config"
	"github.com/annoflow/annoflow/pkg/remote"
	"github.com/annoflow/annoflow/pkg/tui"
)

var pushCmd = &cobra.Command{
	Use:   "push [dir] [s3://bucket/prefix]",
	Short: "Upload exported summaries to object storage",
	Long: `Upload every summary JSON in the directory to an S3-compatible
bucket, where a lead can pull them with "annoflow lead --pull".

The destination comes from the URL argument, or from the s3 section of
the config file when the URL is omitted.

Examples:
  annoflow push ./exported_reports s3://reports/team-a
  annoflow push ./exported_reports      # bucket from config`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	dir := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, shutdown, err := setup(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	url := ""
	if len(args) == 2 {
		url = args[1]
	}
	client, err := remoteClient(ctx, cfg, url)
	if err != nil {
		return err
	}

	pushed, err := client.PushDir(ctx, dir)
	if err != nil {
		return err
	}
	if pushed == 0 {
		return fmt.Errorf("no summary files in %s", dir)
	}
	tui.PrintExported(fmt.Sprintf("s3://%s (%d summaries)", client.Bucket(), pushed))
	return nil
}

// remoteClient builds an S3 client from an s3:// URL, falling back to
// the config file's s3 section when the URL is empty.
func remoteClient(ctx context.Context, cfg *config.Config, url string) (*remote.Client, error) {
	rcfg := remote.DefaultConfig(cfg.S3.Bucket, cfg.S3.Region)
	rcfg.Prefix = cfg.S3.Prefix
	rcfg.Endpoint = cfg.S3.Endpoint
	rcfg.UsePathStyle = cfg.S3.PathStyle

	if url != "" {
		bucket, prefix, err := remote.ParseURL(url)
		if err != nil {
			return nil, err
		}
		rcfg.Bucket = bucket
		rcfg.Prefix = prefix
	}
	if rcfg.Bucket == "" {
		return nil, fmt.Errorf("no bucket: pass an s3:// URL or set s3.bucket in the config")
	}
	return remote.NewClient(ctx, rcfg)
}
