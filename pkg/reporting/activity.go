package reporting

import (
	"time"

	"github.com/annoflow/annoflow/internal/model"
)

// DefaultIdleGap is the idle threshold splitting activity sessions.
// Deltas at or above it count as idle, not work. Policy constant,
// overridable through configuration.
const DefaultIdleGap = 5 * time.Minute

// BuildAnnotatorStats derives per-annotator statistics from a filtered
// event stream. Events must already be ordered by timestamp (the
// parser guarantees this). Output is ordered by actor name.
func BuildAnnotatorStats(events []model.Event, idleGap time.Duration) []model.AnnotatorStats {
	if idleGap <= 0 {
		idleGap = DefaultIdleGap
	}

	byActor := make(map[string][]model.Event)
	for _, event := range events {
		byActor[event.Actor] = append(byActor[event.Actor], event)
	}

	stats := make([]model.AnnotatorStats, 0, len(byActor))
	for _, actor := range sortedKeys(byActor) {
		actorEvents := byActor[actor]

		entry := model.AnnotatorStats{
			Actor:        actor,
			CountsByType: make(map[string]int),
			CountsByKind: make(map[model.EventKind]int),
		}
		documents := make(map[string]struct{})

		for _, event := range actorEvents {
			entry.CountsByKind[event.Kind]++
			if event.Kind == model.KindCreate && event.AnnotationType != "" {
				entry.CountsByType[event.AnnotationType]++
			}
			if event.Document != "" {
				documents[event.Document] = struct{}{}
			}
		}
		entry.Documents = len(documents)

		entry.Sessions = sessionize(actorEvents, idleGap)
		for _, session := range entry.Sessions {
			entry.ActiveTime += session.Duration()
		}

		stats = append(stats, entry)
	}
	return stats
}

// sessionize splits an actor's ordered events into sessions at gaps of
// idleGap or more.
func sessionize(events []model.Event, idleGap time.Duration) []model.Session {
	if len(events) == 0 {
		return nil
	}

	var sessions []model.Session
	current := model.Session{
		Start:  events[0].Timestamp,
		End:    events[0].Timestamp,
		Events: 1,
	}
	for _, event := range events[1:] {
		if event.Timestamp.Sub(current.End) >= idleGap {
			sessions = append(sessions, current)
			current = model.Session{Start: event.Timestamp, End: event.Timestamp}
		} else {
			current.End = event.Timestamp
		}
		current.Events++
	}
	sessions = append(sessions, current)
	return sessions
}

// ActiveTimeByDocument sums per-actor session time attributed to each
// document: an actor's consecutive events on the same document closer
// together than idleGap count toward that document's active time.
func ActiveTimeByDocument(events []model.Event, idleGap time.Duration) map[string]time.Duration {
	if idleGap <= 0 {
		idleGap = DefaultIdleGap
	}

	type docActor struct {
		document string
		actor    string
	}
	grouped := make(map[docActor][]model.Event)
	for _, event := range events {
		if event.Document == "" {
			continue
		}
		key := docActor{document: event.Document, actor: event.Actor}
		grouped[key] = append(grouped[key], event)
	}

	active := make(map[string]time.Duration)
	for key, groupEvents := range grouped {
		for _, session := range sessionize(groupEvents, idleGap) {
			active[key.document] += session.Duration()
		}
	}
	return active
}

// ClassifyDocuments assigns a completion status to every document.
// The exported document state decides first; a later state-change
// event overrides it; meeting an expected annotation count finishes a
// document outright. Documents with no events and no progress state
// are not started — never an error.
func ClassifyDocuments(documents []model.Document, events []model.Event, actualCounts map[string]int) map[string]model.DocumentStatus {
	lastState := make(map[string]model.DocumentState)
	touched := make(map[string]struct{})
	for _, event := range events {
		if event.Document == "" {
			continue
		}
		touched[event.Document] = struct{}{}
		if event.Kind == model.KindStateChange && event.State != model.StateUnknown {
			lastState[event.Document] = event.State
		}
	}

	statuses := make(map[string]model.DocumentStatus, len(documents))
	for _, document := range documents {
		state := document.State
		if eventState, ok := lastState[document.Name]; ok {
			state = eventState
		}

		switch {
		case state.Finished():
			statuses[document.Name] = model.StatusFinished
		case document.ExpectedAnnotations > 0 && actualCounts[document.Name] >= document.ExpectedAnnotations:
			statuses[document.Name] = model.StatusFinished
		case state == model.StateAnnotationInProgress || state == model.StateCurationInProgress:
			statuses[document.Name] = model.StatusInProgress
		default:
			if _, ok := touched[document.Name]; ok {
				statuses[document.Name] = model.StatusInProgress
			} else {
				statuses[document.Name] = model.StatusNotStarted
			}
		}
	}

	// Documents that only exist in the event log still classify.
	for document := range touched {
		if _, ok := statuses[document]; ok {
			continue
		}
		if state, ok := lastState[document]; ok && state.Finished() {
			statuses[document] = model.StatusFinished
		} else {
			statuses[document] = model.StatusInProgress
		}
	}
	return statuses
}
