package main

import (
	"context"
	"embed"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/annoflow/annoflow/pkg/export"
	"github.com/annoflow/annoflow/pkg/server"
	"github.com/annoflow/annoflow/pkg/tui"
	"github.com/annoflow/annoflow/pkg/watch"
)

//go:embed web/*
var webFS embed.FS

// runDashboard serves the dashboard for a project or summary folder.
func runDashboard(cmd *cobra.Command, args []string) error {
	if managerMode == leadMode {
		return fmt.Errorf("pick exactly one of --manager or --lead")
	}
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

	outputDir := export.ResolveOutputDir(firstNonEmpty(outputDirFlag, cfg.OutputDir))
	srv := server.NewServer(folder, leadMode, pipelineOptions(cfg), outputDir, webFS)
	if err := srv.Reload(ctx); err != nil {
		return err
	}

	watcher, err := watch.NewWatcher(0)
	if err != nil {
		return err
	}
	defer watcher.Close()
	watcher.OnChange = func(string) error { return srv.Reload(ctx) }
	if err := watcher.Watch(folder); err != nil {
		return err
	}
	go watcher.Run(ctx)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // Disable for SSE
		IdleTimeout:  120 * time.Second,
	}

	tui.PrintHeader(version)
	tui.PrintServing(addr)

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Serve(listener) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
