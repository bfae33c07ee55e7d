package broadcast

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventCreated EventType = "CREATED"
	EventUpdated EventType = "UPDATED"
	EventDeleted EventType = "DELETED"
)

// Event is the cross-instance channel message. CREATED/UPDATED carry the
// entity (opaque to the channel), DELETED carries only the id.
type Event struct {
	Type      EventType       `json:"type"`
	ID        int             `json:"id,omitempty"`
	Entity    json.RawMessage `json:"entity,omitempty"`
	Timestamp int64           `json:"timestamp"` // epoch millis, send time

	// Origin identifies the publishing channel instance. Stamped on publish;
	// receivers never see their own events.
	Origin string `json:"origin"`
}

func (e Event) valid() bool {
	switch e.Type {
	case EventCreated, EventUpdated, EventDeleted:
		return true
	}
	return false
}

// Created builds a CREATED event for an entity. Encoding failures are
// impossible for the plain structs we publish, but fall back to id-only.
func Created(id int, entity any) Event {
	return entityEvent(EventCreated, id, entity)
}

func Updated(id int, entity any) Event {
	return entityEvent(EventUpdated, id, entity)
}

func Deleted(id int) Event {
	return Event{Type: EventDeleted, ID: id, Timestamp: time.Now().UnixMilli()}
}

func entityEvent(typ EventType, id int, entity any) Event {
	ev := Event{Type: typ, ID: id, Timestamp: time.Now().UnixMilli()}
	if b, err := json.Marshal(entity); err == nil {
		ev.Entity = b
	}
	return ev
}
