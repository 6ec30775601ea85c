// Package server provides the HTTP API for the dashboard.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/annoflow/annoflow/pkg/charts"
	"github.com/annoflow/annoflow/pkg/export"
	"github.com/annoflow/annoflow/pkg/pipeline"
	"github.com/annoflow/annoflow/pkg/reporting"
)

// Server handles HTTP requests for the dashboard.
type Server struct {
	folder    string
	lead      bool
	opts      pipeline.Options
	outputDir string

	mu         sync.RWMutex
	reports    []*pipeline.ProjectReport
	leadReport *pipeline.LeadReport

	mux      *http.ServeMux
	broker   *SSEBroker
	staticFS embed.FS
}

// NewServer creates the dashboard server for a project folder (manager
// mode) or a summary folder (lead mode). Call Reload before serving to
// populate the initial state.
func NewServer(folder string, lead bool, opts pipeline.Options, outputDir string, staticFS embed.FS) *Server {
	s := &Server{
		folder:    folder,
		lead:      lead,
		opts:      opts,
		outputDir: outputDir,
		mux:       http.NewServeMux(),
		broker:    NewSSEBroker(),
		staticFS:  staticFS,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures HTTP handlers.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/projects", s.handleProjects)
	s.mux.HandleFunc("/api/projects/", s.handleProjectCharts)
	s.mux.HandleFunc("/api/lead/tags", s.handleLeadTags)
	s.mux.HandleFunc("/api/lead/tags/", s.handleLeadCharts)
	s.mux.HandleFunc("/api/export", s.handleExport)
	s.mux.HandleFunc("/api/events", s.broker.Handler())

	// Static files (embedded HTML/CSS/JS)
	s.mux.HandleFunc("/", s.handleStatic)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mux.ServeHTTP(w, r)
}

// Reload re-runs the pipeline over the folder and notifies connected
// dashboards. Safe to call concurrently; readers see either the old or
// the new state, never a mix.
func (s *Server) Reload(ctx context.Context) error {
	if s.lead {
		leadReport, err := pipeline.RunLead(ctx, s.folder)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.leadReport = leadReport
		s.mu.Unlock()
	} else {
		reports, err := pipeline.Run(ctx, s.folder, s.opts)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.reports = reports
		s.mu.Unlock()
	}

	slog.Info("reloaded", "folder", s.folder, "lead", s.lead)
	s.broker.PublishReload()
	return nil
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	projects := len(s.reports)
	if s.lead && s.leadReport != nil {
		projects = len(s.leadReport.Summaries)
	}
	s.mu.RUnlock()

	jsonResponse(w, map[string]any{
		"status":   "ok",
		"lead":     s.lead,
		"projects": projects,
	})
}

// projectInfo is the list entry for one project.
type projectInfo struct {
	Name           string   `json:"name"`
	Tags           []string `json:"tags,omitempty"`
	Percent        float64  `json:"percent_complete"`
	Finished       int      `json:"finished_documents"`
	Total          int      `json:"total_documents"`
	SkippedRecords int      `json:"skipped_records"`
}

// handleProjects lists loaded projects (or summaries in lead mode).
func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := []projectInfo{}
	if s.lead {
		if s.leadReport != nil {
			for _, summary := range s.leadReport.Summaries {
				infos = append(infos, projectInfo{
					Name:           summary.ProjectName,
					Tags:           summary.ProjectTags,
					Percent:        summary.Progress.PercentComplete,
					Finished:       summary.Progress.FinishedDocuments,
					Total:          summary.Progress.TotalDocuments,
					SkippedRecords: summary.SkippedRecords,
				})
			}
		}
	} else {
		for _, report := range s.reports {
			infos = append(infos, projectInfo{
				Name:           report.Project.Name,
				Tags:           report.Project.Tags,
				Percent:        report.Progress.PercentComplete,
				Finished:       report.Progress.FinishedDocuments,
				Total:          report.Progress.TotalDocuments,
				SkippedRecords: report.SkippedRecords,
			})
		}
	}
	jsonResponse(w, infos)
}

// handleProjectCharts serves /api/projects/{name}/charts.
func (s *Server) handleProjectCharts(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/projects/")
	name, tail, _ := strings.Cut(rest, "/")
	if name == "" || tail != "charts" {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lead {
		if s.leadReport != nil {
			for _, summary := range s.leadReport.Summaries {
				if summary.ProjectName == name {
					jsonResponse(w, map[string]charts.Figure{
						"status":   charts.DocumentStatusFigure(summary),
						"progress": charts.ProgressFigure(summary.Progress),
					})
					return
				}
			}
		}
		jsonError(w, "unknown project", http.StatusNotFound)
		return
	}

	for _, report := range s.reports {
		if report.Project.Name == name {
			jsonResponse(w, map[string]charts.Figure{
				"status":    charts.DocumentStatusFigure(report.Summary),
				"breakdown": charts.AnnotationBreakdownFigure(report.TypeCounts, s.opts.CuratedOnly),
				"progress":  charts.ProgressFigure(report.Progress),
			})
			return
		}
	}
	jsonError(w, "unknown project", http.StatusNotFound)
}

// handleLeadTags lists the tag groups.
func (s *Server) handleLeadTags(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.lead || s.leadReport == nil {
		jsonResponse(w, []string{})
		return
	}
	jsonResponse(w, s.leadReport.Tags)
}

// handleLeadCharts serves /api/lead/tags/{tag}/charts.
func (s *Server) handleLeadCharts(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/lead/tags/")
	tag, tail, _ := strings.Cut(rest, "/")
	if tag == "" || tail != "charts" {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.lead || s.leadReport == nil {
		jsonError(w, "not in lead mode", http.StatusNotFound)
		return
	}
	for _, rollup := range s.leadReport.Rollups {
		if rollup.Tag == tag {
			jsonResponse(w, map[string]charts.Figure{
				"status":    charts.RollupFigure(rollup),
				"breakdown": charts.AnnotationBreakdownFigure(rollupTypeCounts(rollup), false),
				"progress":  charts.ProgressFigure(rollup.Progress),
			})
			return
		}
	}
	jsonError(w, "unknown tag", http.StatusNotFound)
}

// rollupTypeCounts shapes a roll-up's type totals for the bar chart.
func rollupTypeCounts(rollup reporting.Rollup) reporting.AggregatedTypeCounts {
	counts := make(reporting.AggregatedTypeCounts, 0, len(rollup.TypeTotals))
	for name, total := range rollup.TypeTotals {
		counts = append(counts, reporting.TypeCount{Name: name, Total: total})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Total != counts[j].Total {
			return counts[i].Total > counts[j].Total
		}
		return counts[i].Name < counts[j].Name
	})
	return counts
}

// handleExport writes all current summaries to the output directory.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	reports := s.reports
	s.mu.RUnlock()

	if s.lead {
		jsonError(w, "export runs in manager mode only", http.StatusBadRequest)
		return
	}

	paths := make([]string, 0, len(reports))
	for _, report := range reports {
		path, err := export.WriteSummary(s.outputDir, report.Summary)
		if err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		paths = append(paths, path)
	}
	jsonResponse(w, map[string]any{"exported": paths})
}

// handleStatic serves the embedded dashboard UI.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	data, err := s.staticFS.ReadFile("web" + path)
	if err != nil {
		data, err = s.staticFS.ReadFile("web/index.html")
		if err != nil {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
	}

	switch filepath.Ext(path) {
	case ".html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	case ".css":
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
	case ".js":
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	case ".json":
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}

	w.Write(data)
}

// Helper functions

func jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
