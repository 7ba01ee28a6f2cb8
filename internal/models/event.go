package models

import (
	"encoding/json"
	"strings"
)

// EventKindTag is the closed set of event kinds the dashboard knows how to display
type EventKindTag int

const (
	EventOther EventKindTag = iota
	EventCreated
	EventDeleted
	EventModified
	EventRenamed
)

func (t EventKindTag) String() string {
	switch t {
	case EventCreated:
		return "Created"
	case EventDeleted:
		return "Deleted"
	case EventModified:
		return "Modified"
	case EventRenamed:
		return "Renamed"
	default:
		return "Other"
	}
}

// EventKind is an event label as written by the agent together with its classification.
// Unknown labels are kept verbatim under EventOther.
type EventKind struct {
	Tag   EventKindTag
	Label string
}

var eventLabels = map[string]EventKindTag{
	"created":   EventCreated,
	"criado":    EventCreated,
	"deleted":   EventDeleted,
	"deletado":  EventDeleted,
	"excluido":  EventDeleted,
	"modified":  EventModified,
	"alterado":  EventModified,
	"renamed":   EventRenamed,
	"renomeado": EventRenamed,
}

// ParseEventKind classifies a raw label; matching is case-insensitive
func ParseEventKind(label string) EventKind {
	tag, ok := eventLabels[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		tag = EventOther
	}
	return EventKind{Tag: tag, Label: label}
}

func (k EventKind) String() string {
	if k.Label == "" {
		return k.Tag.String()
	}
	return k.Label
}

// MarshalJSON writes the raw label so API consumers see what the agent recorded
func (k EventKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON classifies a label received over the wire
func (k *EventKind) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	*k = ParseEventKind(label)
	return nil
}
