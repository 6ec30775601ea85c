// Package reporting folds parsed annotation data into per-annotator,
// per-document, and per-project statistics.
package reporting

import "github.com/annoflow/annoflow/internal/model"

// ExclusionSet holds annotation type names removed from all counts.
// Read-only input for a run; membership checks match the exact name
// the source format carries.
type ExclusionSet map[string]struct{}

// NewExclusionSet builds a set from configured type names.
func NewExclusionSet(names []string) ExclusionSet {
	set := make(ExclusionSet, len(names))
	for _, name := range names {
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// Contains reports whether typeName is excluded.
func (s ExclusionSet) Contains(typeName string) bool {
	_, ok := s[typeName]
	return ok
}

// FilterEvents returns the events whose annotation type is not
// excluded. Document-level events (empty type) always pass. Pure.
func (s ExclusionSet) FilterEvents(events []model.Event) []model.Event {
	if len(s) == 0 {
		return events
	}
	kept := make([]model.Event, 0, len(events))
	for _, event := range events {
		if event.AnnotationType != "" && s.Contains(event.AnnotationType) {
			continue
		}
		kept = append(kept, event)
	}
	return kept
}

// FilterCas returns a copy of stats without the excluded types. Pure.
func (s ExclusionSet) FilterCas(stats model.CasStats) model.CasStats {
	if len(s) == 0 {
		return stats
	}
	kept := make(model.CasStats, len(stats))
	for typeName, stat := range stats {
		if s.Contains(typeName) {
			continue
		}
		kept[typeName] = stat
	}
	return kept
}
