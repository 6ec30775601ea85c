package model

// DocumentState is the annotation platform's per-document workflow state.
type DocumentState string

const (
	StateNew                  DocumentState = "NEW"
	StateAnnotationInProgress DocumentState = "ANNOTATION_IN_PROGRESS"
	StateAnnotationFinished   DocumentState = "ANNOTATION_FINISHED"
	StateCurationInProgress   DocumentState = "CURATION_IN_PROGRESS"
	StateCurationFinished     DocumentState = "CURATION_FINISHED"
	StateUnknown              DocumentState = "UNKNOWN"
)

// DocumentStates lists the known states in workflow order. Chart and
// summary output iterate this slice so ordering stays stable.
var DocumentStates = []DocumentState{
	StateNew,
	StateAnnotationInProgress,
	StateAnnotationFinished,
	StateCurationInProgress,
	StateCurationFinished,
}

// Known reports whether s is one of the five platform states.
func (s DocumentState) Known() bool {
	switch s {
	case StateNew, StateAnnotationInProgress, StateAnnotationFinished,
		StateCurationInProgress, StateCurationFinished:
		return true
	}
	return false
}

// Finished reports whether a document in state s counts as done.
func (s DocumentState) Finished() bool {
	return s == StateAnnotationFinished || s == StateCurationFinished
}

// Label returns the human-readable state name used in charts.
func (s DocumentState) Label() string {
	switch s {
	case StateNew:
		return "New"
	case StateAnnotationInProgress:
		return "Annotation In Progress"
	case StateAnnotationFinished:
		return "Annotation Finished"
	case StateCurationInProgress:
		return "Curation In Progress"
	case StateCurationFinished:
		return "Curation Finished"
	default:
		return string(s)
	}
}

// ParseDocumentState maps a raw state string onto the closed state set.
func ParseDocumentState(raw string) DocumentState {
	s := DocumentState(raw)
	if s.Known() {
		return s
	}
	return StateUnknown
}

// Document is a source document within a project.
type Document struct {
	Name  string
	State DocumentState

	// ExpectedAnnotations is the expected annotation count when the
	// export provides one; zero means unspecified.
	ExpectedAnnotations int
}

// DocumentStatus classifies completion derived from events or state.
type DocumentStatus uint8

const (
	StatusNotStarted DocumentStatus = iota
	StatusInProgress
	StatusFinished
)

// String returns the status name.
func (s DocumentStatus) String() string {
	switch s {
	case StatusInProgress:
		return "in_progress"
	case StatusFinished:
		return "finished"
	default:
		return "not_started"
	}
}
