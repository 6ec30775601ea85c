package model

// TypeSummary is the exported, aggregate-only view of one annotation
// type: totals split by document state, never by annotator or document.
type TypeSummary struct {
	Total         int            `json:"total"`
	TotalByStatus map[string]int `json:"total_by_status"`

	// Features breaks feature values down by document state. Only
	// populated for whitelisted types (see reporting).
	Features map[string]map[string]int `json:"features,omitempty"`
}

// ProjectSummary is the transportable, lossy snapshot consumed by the
// lead aggregation mode. It deliberately carries no per-annotator and
// no per-document detail; re-importing a summary can never reconstruct
// either.
type ProjectSummary struct {
	ProjectName string   `json:"project_name"`
	ProjectTags []string `json:"project_tags"`

	// ReportID uniquely identifies this export.
	ReportID string `json:"report_id"`

	// Created is the export date, ISO 8601 (date only).
	Created string `json:"created"`

	// DocCategories counts documents per workflow state.
	DocCategories map[string]int `json:"doc_categories"`

	// TokenCategories counts tokens per workflow state.
	TokenCategories map[string]int `json:"doc_token_categories"`

	// TypeCounts holds aggregate counts per annotation type.
	TypeCounts map[string]TypeSummary `json:"type_counts"`

	// Progress is the estimator output.
	Progress Progress `json:"progress"`

	AggregationMode  string `json:"aggregation_mode"`
	SkippedRecords   int    `json:"skipped_records"`
	PlatformVersion  string `json:"platform_version,omitempty"`
	GeneratorVersion string `json:"generator_version,omitempty"`
}

// TotalDocuments sums the document categories.
func (s *ProjectSummary) TotalDocuments() int {
	total := 0
	for _, count := range s.DocCategories {
		total += count
	}
	return total
}
