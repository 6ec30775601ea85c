package parser

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/annoflow/annoflow/internal/model"
)

func TestParseEventLog(t *testing.T) {
	log := strings.Join([]string{
		`{"created": 1700000300000, "user": "bob", "event": "SpanCreatedEvent", "document_name": "doc1.txt", "annotation_type": "custom.Span.PHI"}`,
		`{"created": 1700000000000, "user": "alice", "event": "DocumentOpenedEvent", "document_name": "doc1.txt"}`,
		`not json at all`,
		`{"created": 1700000100000, "user": "alice", "event": "SomethingWeirdHappened"}`,
		`{"created": 1700000200000, "event": "SpanCreatedEvent", "document_name": "doc1.txt"}`,
		``,
		`{"created": 1700000400000, "annotator": "carol", "event": "DocumentStateChangedEvent", "document_name": "doc1.txt", "details": {"state": "ANNOTATION_FINISHED"}}`,
	}, "\n")

	p := NewEventLogParser(DefaultConfig())
	batch, err := p.Parse(context.Background(), strings.NewReader(log))
	if err != nil {
		t.Fatal(err)
	}

	if batch.Parsed != 3 {
		t.Errorf("parsed = %d, want 3", batch.Parsed)
	}
	if batch.Skipped != 3 {
		t.Errorf("skipped = %d, want 3 (bad json, unknown event, missing actor)", batch.Skipped)
	}
	if len(batch.Events) != 3 {
		t.Fatalf("events = %d, want 3", len(batch.Events))
	}

	// Ordered by timestamp despite input order.
	if batch.Events[0].Actor != "alice" || batch.Events[0].Kind != model.KindView {
		t.Errorf("first event = %+v", batch.Events[0])
	}
	if batch.Events[1].Kind != model.KindCreate || batch.Events[1].AnnotationType != "custom.Span.PHI" {
		t.Errorf("second event = %+v", batch.Events[1])
	}

	last := batch.Events[2]
	if last.Actor != "carol" {
		t.Errorf("annotator field should supply the actor, got %q", last.Actor)
	}
	if last.Kind != model.KindStateChange || last.State != model.StateAnnotationFinished {
		t.Errorf("state change = %+v", last)
	}
	if want := time.UnixMilli(1700000400000).UTC(); !last.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", last.Timestamp, want)
	}
}

func TestParseEventLogStateChangeWithoutState(t *testing.T) {
	log := `{"created": 1700000000000, "user": "alice", "event": "DocumentStateChangedEvent", "document_name": "d"}`
	p := NewEventLogParser(DefaultConfig())
	batch, err := p.Parse(context.Background(), strings.NewReader(log))
	if err != nil {
		t.Fatal(err)
	}
	if batch.Parsed != 0 || batch.Skipped != 1 {
		t.Errorf("parsed=%d skipped=%d, want 0/1", batch.Parsed, batch.Skipped)
	}
}

func TestKindForEventName(t *testing.T) {
	tests := []struct {
		name string
		want model.EventKind
	}{
		{"SpanCreatedEvent", model.KindCreate},
		{"RelationDeletedEvent", model.KindDelete},
		{"FeatureValueUpdatedEvent", model.KindUpdate},
		{"DocumentOpenedEvent", model.KindView},
		{"DocumentStateChangedEvent", model.KindStateChange},
		{"LoginEvent", model.KindUnknown},
		{"", model.KindUnknown},
	}
	for _, tt := range tests {
		if got := KindForEventName(tt.name); got != tt.want {
			t.Errorf("KindForEventName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
