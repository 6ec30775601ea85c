// Package model defines core data structures for annoflow.
package model

import "time"

// EventKind classifies a platform audit-log event.
// The set is closed: unrecognized event names parse to KindUnknown and
// are dropped by the parser with a skip count.
type EventKind uint8

const (
	KindUnknown EventKind = iota
	KindCreate
	KindUpdate
	KindDelete
	KindView
	KindStateChange
)

// String returns the kind name.
func (k EventKind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	case KindView:
		return "view"
	case KindStateChange:
		return "state_change"
	default:
		return "unknown"
	}
}

// Event is a single decoded audit-log record. Immutable once parsed.
type Event struct {
	// Actor is the annotator account that triggered the event.
	Actor string

	// Timestamp of the event.
	Timestamp time.Time

	// Kind is the closed event classification.
	Kind EventKind

	// Document names the document the event applies to.
	Document string

	// AnnotationType is the layer/type of the touched annotation,
	// empty for document-level events (open, state change).
	AnnotationType string

	// State carries the new document state for KindStateChange.
	State DocumentState
}

// EventBatch holds a parsed event log plus its skip accounting.
type EventBatch struct {
	Events  []Event
	Parsed  int
	Skipped int
}
