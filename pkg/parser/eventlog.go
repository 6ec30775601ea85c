package parser

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/annoflow/annoflow/internal/model"
)

// EventLogParser decodes the platform's line-oriented audit log.
// Each line is one JSON object. Malformed or unrecognized lines are
// skipped and counted, never fatal.
type EventLogParser struct {
	cfg Config
}

// NewEventLogParser creates a new event log parser.
func NewEventLogParser(cfg Config) *EventLogParser {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.MaxLineSize <= 0 {
		cfg.MaxLineSize = DefaultConfig().MaxLineSize
	}
	return &EventLogParser{cfg: cfg}
}

// logRecord mirrors one audit log line. Fields absent in a given
// format variant decode to their zero values and are validated below.
type logRecord struct {
	Created        int64           `json:"created"`
	User           string          `json:"user"`
	Annotator      string          `json:"annotator"`
	Event          string          `json:"event"`
	DocumentName   string          `json:"document_name"`
	AnnotationType string          `json:"annotation_type"`
	Details        json.RawMessage `json:"details"`
}

type stateDetails struct {
	State string `json:"state"`
}

// Parse reads the log from r and returns the decoded events ordered by
// timestamp, together with parse/skip counts.
func (p *EventLogParser) Parse(ctx context.Context, r io.Reader) (model.EventBatch, error) {
	var batch model.EventBatch

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, p.cfg.BufferSize), p.cfg.MaxLineSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return batch, ErrContextCanceled
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		event, ok := decodeLine(line)
		if !ok {
			batch.Skipped++
			continue
		}
		batch.Events = append(batch.Events, event)
		batch.Parsed++
	}
	if err := scanner.Err(); err != nil {
		return batch, fmt.Errorf("reading event log: %w", err)
	}

	sort.SliceStable(batch.Events, func(i, j int) bool {
		return batch.Events[i].Timestamp.Before(batch.Events[j].Timestamp)
	})
	return batch, nil
}

// ParseFile parses the event log at path.
func (p *EventLogParser) ParseFile(ctx context.Context, path string) (model.EventBatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.EventBatch{}, fmt.Errorf("opening event log %s: %w", path, err)
	}
	defer f.Close()
	return p.Parse(ctx, f)
}

// decodeLine turns one log line into an Event. Returns false for lines
// that cannot be attributed (bad JSON, unknown event name, missing
// actor or timestamp).
func decodeLine(line []byte) (model.Event, bool) {
	if line[0] != '{' {
		return model.Event{}, false
	}

	var rec logRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return model.Event{}, false
	}

	kind := KindForEventName(rec.Event)
	if kind == model.KindUnknown {
		return model.Event{}, false
	}

	actor := rec.User
	if actor == "" {
		actor = rec.Annotator
	}
	if actor == "" || rec.Created <= 0 {
		return model.Event{}, false
	}

	event := model.Event{
		Actor:          actor,
		Timestamp:      time.UnixMilli(rec.Created).UTC(),
		Kind:           kind,
		Document:       rec.DocumentName,
		AnnotationType: rec.AnnotationType,
	}

	if kind == model.KindStateChange {
		var details stateDetails
		if len(rec.Details) > 0 {
			if err := json.Unmarshal(rec.Details, &details); err != nil {
				return model.Event{}, false
			}
		}
		if details.State == "" {
			return model.Event{}, false
		}
		event.State = model.ParseDocumentState(details.State)
	}

	return event, true
}

// KindForEventName maps a platform event name onto the closed kind set.
func KindForEventName(name string) model.EventKind {
	switch {
	case name == "":
		return model.KindUnknown
	case name == "DocumentStateChangedEvent":
		return model.KindStateChange
	case name == "DocumentOpenedEvent":
		return model.KindView
	case strings.HasSuffix(name, "CreatedEvent"):
		return model.KindCreate
	case strings.HasSuffix(name, "DeletedEvent"):
		return model.KindDelete
	case strings.HasSuffix(name, "UpdatedEvent"):
		return model.KindUpdate
	default:
		return model.KindUnknown
	}
}
