// Package queue implements the event relay: every successful
// mutation on the primary write path is published as an event and
// independent consumers replay the mutation against their own store.
// Delivery is at-least-once; consumers are idempotent.
package queue

import "encoding/json"

// EventType enumerates the mutation kinds carried by events.  The
// names match the wire protocol of the historical consumers.
type EventType string

const (
	EventCreation        EventType = "creation"
	EventModification    EventType = "modification"
	EventSuppression     EventType = "suppression"
	EventRecuperation    EventType = "recuperation"
	EventRecuperationAll EventType = "recuperation_tous"
)

// Entity names used in event envelopes.
const (
	EntityClient      = "client"
	EntityRoom        = "room"
	EntityReservation = "reservation"
)

// Per-entity topics.  Each topic maps to one durable queue on the
// broker.
const (
	TopicClients      = "client-events"
	TopicRooms        = "room-events"
	TopicReservations = "reservation-events"
)

// Topics lists every relay topic, in the order consumers subscribe.
var Topics = []string{TopicClients, TopicRooms, TopicReservations}

// TopicFor returns the topic carrying events for the given entity.
func TopicFor(entity string) string {
	switch entity {
	case EntityClient:
		return TopicClients
	case EntityRoom:
		return TopicRooms
	default:
		return TopicReservations
	}
}

// Event is the envelope published for every mutation.  Data holds
// the entity payload for creation and modification, a Deleted stub
// for suppression, and a Lookup stub for recuperation.
type Event struct {
	Entity string          `json:"entityType"`
	Type   EventType       `json:"eventType"`
	Data   json.RawMessage `json:"data"`
}

// New builds an event, marshaling the payload into the envelope.
func New(entity string, t EventType, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Entity: entity, Type: t, Data: data}, nil
}

// Deleted is the payload of a suppression event: the identity of the
// removed entity.
type Deleted struct {
	ID string `json:"id"`
}

// Lookup is the payload of a recuperation event.
type Lookup struct {
	ID string `json:"id"`
}
