package model

import "time"

// Session is a contiguous stretch of annotator activity. Consecutive
// events further apart than the idle-gap threshold start a new session.
type Session struct {
	Start  time.Time
	End    time.Time
	Events int
}

// Duration returns the session length.
func (s Session) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// AnnotatorStats aggregates one annotator's activity across a project.
// Derived per run, never persisted and never exported across locations.
type AnnotatorStats struct {
	Actor string

	// CountsByType tallies created annotations per annotation type.
	CountsByType map[string]int

	// CountsByKind tallies events per kind.
	CountsByKind map[EventKind]int

	// ActiveTime is the summed within-session time.
	ActiveTime time.Duration

	// Sessions are the idle-gap-delimited activity stretches.
	Sessions []Session

	// Documents is the number of distinct documents touched.
	Documents int
}

// Progress is the estimator output for one project.
type Progress struct {
	PercentComplete    float64 `json:"percent_complete"`
	FinishedDocuments  int     `json:"finished_documents"`
	TotalDocuments     int     `json:"total_documents"`
	RemainingDocuments int     `json:"remaining_documents"`

	// EstimatedRemainingSeconds is the linear projection of remaining
	// work. Meaningless unless Available is true.
	EstimatedRemainingSeconds float64 `json:"estimated_remaining_seconds"`

	// Available is false when fewer than two documents are finished
	// ("insufficient data"), never an error.
	Available bool `json:"available"`
}
