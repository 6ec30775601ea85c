package reporting

import (
	"time"

	"github.com/google/uuid"

	"github.com/annoflow/annoflow/internal/model"
)

// FeatureBreakdownTypes are the types whose feature values travel in
// the exported summary. Everything else exports totals only, keeping
// the payload small.
var FeatureBreakdownTypes = map[string]struct{}{
	"PHI":     {},
	"Concept": {},
}

// SummaryInput collects everything the summary builder needs.
type SummaryInput struct {
	Project          *model.Project
	TypeCounts       AggregatedTypeCounts
	Progress         model.Progress
	Mode             AggregationMode
	SkippedRecords   int
	GeneratorVersion string
	Created          time.Time
}

// reportNamespace scopes deterministic report IDs.
var reportNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("annoflow.report"))

// BuildSummary projects a loaded project onto its transportable
// summary. The projection is lossy on purpose: counts are keyed by
// document state only, so no per-annotator or per-document detail
// crosses a location boundary. The report ID derives from the project
// name and export date, keeping repeated runs byte-identical.
func BuildSummary(in SummaryInput) *model.ProjectSummary {
	project := in.Project
	created := in.Created.Format("2006-01-02")

	documentStates := make(map[string]model.DocumentState, len(project.Documents))
	for _, document := range project.Documents {
		documentStates[document.Name] = document.State
	}

	summary := &model.ProjectSummary{
		ProjectName:      project.Name,
		ProjectTags:      project.Tags,
		ReportID:         uuid.NewSHA1(reportNamespace, []byte(project.Name+"|"+created)).String(),
		Created:          created,
		DocCategories:    stateCounts(DocumentCategories(project.Documents)),
		TokenCategories:  stateCounts(TokenCategories(project.Documents, in.TypeCounts)),
		TypeCounts:       make(map[string]model.TypeSummary, len(in.TypeCounts)),
		Progress:         in.Progress,
		AggregationMode:  string(in.Mode),
		SkippedRecords:   in.SkippedRecords,
		PlatformVersion:  project.PlatformVersion,
		GeneratorVersion: in.GeneratorVersion,
	}

	for _, typeCount := range in.TypeCounts {
		entry := model.TypeSummary{
			Total:         typeCount.Total,
			TotalByStatus: make(map[string]int),
		}
		for document, count := range typeCount.Documents {
			entry.TotalByStatus[stateKey(documentStates, document)] += count
		}

		if _, ok := FeatureBreakdownTypes[typeCount.Name]; ok {
			entry.Features = make(map[string]map[string]int, len(typeCount.Features))
			for _, feature := range typeCount.Features {
				byState := make(map[string]int)
				for document, count := range feature.Documents {
					byState[stateKey(documentStates, document)] += count
				}
				entry.Features[feature.Value] = byState
			}
		}

		summary.TypeCounts[typeCount.Name] = entry
	}

	return summary
}

func stateKey(states map[string]model.DocumentState, document string) string {
	if state, ok := states[document]; ok {
		return string(state)
	}
	return string(model.StateUnknown)
}

func stateCounts(categories map[model.DocumentState]int) map[string]int {
	counts := make(map[string]int, len(categories))
	for state, count := range categories {
		counts[string(state)] = count
	}
	return counts
}
