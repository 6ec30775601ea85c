package reporting

import (
	"math"
	"sort"
	"strings"

	"github.com/annoflow/annoflow/internal/model"
)

// AggregationMode controls how per-annotator counts combine into one
// count per document.
type AggregationMode string

const (
	// ModeSum adds all annotators' counts together.
	ModeSum AggregationMode = "sum"
	// ModeAverage divides the sum by the number of annotators.
	ModeAverage AggregationMode = "average"
	// ModeMax keeps the single busiest annotator's counts.
	ModeMax AggregationMode = "max"
)

// ParseAggregationMode parses a mode string, defaulting to sum.
func ParseAggregationMode(s string) AggregationMode {
	switch strings.ToLower(s) {
	case "average", "avg", "mean":
		return ModeAverage
	case "max", "maximum":
		return ModeMax
	default:
		return ModeSum
	}
}

// FeatureCount tallies one feature value across documents.
type FeatureCount struct {
	Value     string
	Total     int
	Documents map[string]int
}

// TypeCount tallies one annotation type across a project.
type TypeCount struct {
	Name      string
	Total     int
	Documents map[string]int
	Features  []FeatureCount
}

// AggregatedTypeCounts holds per-type counts ordered by descending
// total (name breaks ties) so downstream output is deterministic.
type AggregatedTypeCounts []TypeCount

// Get returns the entry for name, or nil.
func (c AggregatedTypeCounts) Get(name string) *TypeCount {
	for i := range c {
		if c[i].Name == name {
			return &c[i]
		}
	}
	return nil
}

// AggregateTypeCounts folds a project's CAS stats into ordered
// per-type counts keyed by display name. Excluded types are removed
// before aggregation; mode decides how annotators combine per document.
func AggregateTypeCounts(project *model.Project, excluded ExclusionSet, mode AggregationMode) AggregatedTypeCounts {
	type typeAcc struct {
		total     int
		documents map[string]int
		features  map[string]map[string]int
	}
	accs := make(map[string]*typeAcc)

	for _, document := range sortedKeys(project.Annotations) {
		annotators := project.Annotations[document]
		statsList := make([]model.CasStats, 0, len(annotators))
		for _, annotator := range sortedKeys(annotators) {
			statsList = append(statsList, excluded.FilterCas(annotators[annotator]))
		}
		if len(statsList) == 0 {
			continue
		}

		combined := combineCasStats(statsList, mode)

		for typeName, stat := range combined {
			display := project.DisplayName(typeName)
			acc, ok := accs[display]
			if !ok {
				acc = &typeAcc{
					documents: make(map[string]int),
					features:  make(map[string]map[string]int),
				}
				accs[display] = acc
			}
			acc.total += stat.Total
			acc.documents[document] += stat.Total
			for value, count := range stat.Features {
				if acc.features[value] == nil {
					acc.features[value] = make(map[string]int)
				}
				acc.features[value][document] += count
			}
		}
	}

	counts := make(AggregatedTypeCounts, 0, len(accs))
	for name, acc := range accs {
		features := make([]FeatureCount, 0, len(acc.features))
		for value, documents := range acc.features {
			total := 0
			for _, count := range documents {
				total += count
			}
			features = append(features, FeatureCount{Value: value, Total: total, Documents: documents})
		}
		sort.Slice(features, func(i, j int) bool {
			if features[i].Total != features[j].Total {
				return features[i].Total > features[j].Total
			}
			return features[i].Value < features[j].Value
		})
		counts = append(counts, TypeCount{
			Name:      name,
			Total:     acc.total,
			Documents: acc.documents,
			Features:  features,
		})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Total != counts[j].Total {
			return counts[i].Total > counts[j].Total
		}
		return counts[i].Name < counts[j].Name
	})
	return counts
}

// combineCasStats merges one document's annotator stats per mode.
func combineCasStats(statsList []model.CasStats, mode AggregationMode) model.CasStats {
	switch mode {
	case ModeAverage:
		return averageCasStats(statsList)
	case ModeMax:
		return maxCasStats(statsList)
	default:
		return mergeCasStats(statsList)
	}
}

func mergeCasStats(statsList []model.CasStats) model.CasStats {
	merged := make(model.CasStats)
	for _, stats := range statsList {
		for typeName, stat := range stats {
			entry, ok := merged[typeName]
			if !ok {
				entry = &model.TypeStat{Features: make(map[string]int)}
				merged[typeName] = entry
			}
			entry.Total += stat.Total
			for value, count := range stat.Features {
				entry.Features[value] += count
			}
		}
	}
	return merged
}

func averageCasStats(statsList []model.CasStats) model.CasStats {
	if len(statsList) == 0 {
		return model.CasStats{}
	}
	averaged := mergeCasStats(statsList)
	divisor := float64(len(statsList))
	for _, stat := range averaged {
		stat.Total = int(math.Round(float64(stat.Total) / divisor))
		for value, count := range stat.Features {
			stat.Features[value] = int(math.Round(float64(count) / divisor))
		}
	}
	return averaged
}

// maxCasStats keeps the stats of the annotator with the highest
// annotation total. Caller passes stats in annotator-name order, so
// ties resolve to the first name.
func maxCasStats(statsList []model.CasStats) model.CasStats {
	best := model.CasStats{}
	bestTotal := -1
	for _, stats := range statsList {
		total := 0
		for _, stat := range stats {
			total += stat.Total
		}
		if total > bestTotal {
			bestTotal = total
			best = stats
		}
	}
	return best
}

// DocumentCategories counts documents per workflow state.
func DocumentCategories(documents []model.Document) map[model.DocumentState]int {
	categories := make(map[model.DocumentState]int, len(model.DocumentStates))
	for _, state := range model.DocumentStates {
		categories[state] = 0
	}
	for _, document := range documents {
		if _, ok := categories[document.State]; ok {
			categories[document.State]++
		}
	}
	return categories
}

// TokenCategories counts tokens per workflow state using the Token
// type's per-document counts. Documents without token counts add zero.
func TokenCategories(documents []model.Document, counts AggregatedTypeCounts) map[model.DocumentState]int {
	categories := make(map[model.DocumentState]int, len(model.DocumentStates))
	for _, state := range model.DocumentStates {
		categories[state] = 0
	}

	tokens := counts.Get("Token")
	if tokens == nil {
		return categories
	}
	for _, document := range documents {
		if _, ok := categories[document.State]; ok {
			categories[document.State] += tokens.Documents[document.Name]
		}
	}
	return categories
}

// CuratedDocuments returns the names of documents whose curation is
// finished.
func CuratedDocuments(documents []model.Document) map[string]struct{} {
	curated := make(map[string]struct{})
	for _, document := range documents {
		if document.State == model.StateCurationFinished {
			curated[document.Name] = struct{}{}
		}
	}
	return curated
}

// FilterToDocuments restricts counts to the allowed documents,
// dropping types and features that no longer match anything.
func FilterToDocuments(counts AggregatedTypeCounts, allowed map[string]struct{}) AggregatedTypeCounts {
	filtered := make(AggregatedTypeCounts, 0, len(counts))
	for _, typeCount := range counts {
		documents := make(map[string]int)
		total := 0
		for document, count := range typeCount.Documents {
			if _, ok := allowed[document]; ok {
				documents[document] = count
				total += count
			}
		}
		if len(documents) == 0 {
			continue
		}

		var features []FeatureCount
		for _, feature := range typeCount.Features {
			matching := make(map[string]int)
			featureTotal := 0
			for document, count := range feature.Documents {
				if _, ok := allowed[document]; ok {
					matching[document] = count
					featureTotal += count
				}
			}
			if len(matching) > 0 {
				features = append(features, FeatureCount{Value: feature.Value, Total: featureTotal, Documents: matching})
			}
		}

		filtered = append(filtered, TypeCount{
			Name:      typeCount.Name,
			Total:     total,
			Documents: documents,
			Features:  features,
		})
	}
	return filtered
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
