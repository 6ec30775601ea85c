package model

// TypeStat counts annotations of one type within a single CAS.
type TypeStat struct {
	Total    int
	Features map[string]int // feature value -> occurrences
}

// Clone returns a deep copy of the stat.
func (t *TypeStat) Clone() *TypeStat {
	features := make(map[string]int, len(t.Features))
	for value, count := range t.Features {
		features[value] = count
	}
	return &TypeStat{Total: t.Total, Features: features}
}

// CasStats maps fully-qualified type names to their counts for one CAS
// (one annotator's view of one document).
type CasStats map[string]*TypeStat

// AnnotationSet maps annotator name -> that annotator's CAS stats.
type AnnotationSet map[string]CasStats

// Project is a fully loaded annotation project.
type Project struct {
	// Name is the project name without the archive suffix.
	Name string

	// Tags are the #tag words from the project description, nil when
	// the description carries none.
	Tags []string

	// Documents lists the project's source documents.
	Documents []Document

	// Annotations maps document name -> annotator -> CAS stats.
	Annotations map[string]AnnotationSet

	// TypeNames maps fully-qualified type names to their display
	// names, collected from the export's layer definitions.
	TypeNames map[string]string

	// Events is the project's audit log, empty when no log file
	// accompanies the archive.
	Events []Event

	// PlatformVersion is the exporting platform's version string.
	PlatformVersion string
}

// DisplayName resolves a fully-qualified type name to its UI name,
// falling back to the last dotted segment.
func (p *Project) DisplayName(typeName string) string {
	if name, ok := p.TypeNames[typeName]; ok && name != "" {
		return name
	}
	return ShortTypeName(typeName)
}

// ShortTypeName returns the last dotted segment of a type name.
func ShortTypeName(typeName string) string {
	for i := len(typeName) - 1; i >= 0; i-- {
		if typeName[i] == '.' {
			return typeName[i+1:]
		}
	}
	return typeName
}
