// Package tui renders terminal output for report runs.
// Simple, streaming, no complex TUI - just clean styled output.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"

	"github.com/annoflow/annoflow/internal/model"
)

// Colors (Swiss minimal)
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

// PrintHeader prints the tool banner.
func PrintHeader(version string) {
	fmt.Println()
	fmt.Println(titleStyle.Render("  ANNOFLOW") + mutedStyle.Render(" v"+version))
	fmt.Println(mutedStyle.Render("  Annotation project reporting"))
	fmt.Println()
}

// PrintProjectSummary prints one project's headline numbers.
func PrintProjectSummary(summary *model.ProjectSummary) {
	fmt.Println()
	fmt.Println(mutedStyle.Render("  ─────────────────────────────────────"))
	name := summary.ProjectName
	if len(summary.ProjectTags) > 0 {
		name += mutedStyle.Render("  #" + strings.Join(summary.ProjectTags, " #"))
	}
	fmt.Printf("  %s\n", titleStyle.Render(name))

	fmt.Printf("  %s %d/%d finished (%.0f%%)\n",
		mutedStyle.Render("Documents:"),
		summary.Progress.FinishedDocuments,
		summary.Progress.TotalDocuments,
		summary.Progress.PercentComplete)

	if summary.Progress.Available {
		remaining := time.Duration(summary.Progress.EstimatedRemainingSeconds) * time.Second
		fmt.Printf("  %s %s\n", mutedStyle.Render("Remaining:"), titleStyle.Render(formatDuration(remaining)))
	} else {
		fmt.Printf("  %s %s\n", mutedStyle.Render("Remaining:"), mutedStyle.Render("insufficient data"))
	}

	if summary.SkippedRecords > 0 {
		fmt.Printf("  %s %d malformed records skipped\n", accentStyle.Render("!"), summary.SkippedRecords)
	}
	fmt.Println(mutedStyle.Render("  ─────────────────────────────────────"))
}

// PrintRollup prints one tag group's combined numbers.
func PrintRollup(tag string, projects int, percent float64, finished, total int) {
	fmt.Printf("  %s %s\n", accentStyle.Render("#"+tag),
		mutedStyle.Render(fmt.Sprintf("%d projects", projects)))
	fmt.Printf("    %d/%d documents finished (%.0f%%)\n", finished, total, percent)
}

// PrintExported prints where a summary landed.
func PrintExported(path string) {
	fmt.Printf("  %s %s\n", successStyle.Render("✓"), path)
}

// PrintServing prints the dashboard URL once the server is up.
func PrintServing(addr string) {
	fmt.Println()
	fmt.Printf("  %s http://%s\n", successStyle.Render("▸ Dashboard:"), addr)
	fmt.Println(mutedStyle.Render("  Ctrl+C to stop"))
	fmt.Println()
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

// ShowProgress creates a progress bar for archive loading.
func ShowProgress(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
