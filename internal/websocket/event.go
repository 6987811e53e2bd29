package websocket

import (
	"encoding/json"
	"time"
)

// EventType is the canonical name of a cross-view event
type EventType string

const (
	EventTypeMonthlyStatusChanged  EventType = "monthlyStatusChanged"
	EventTypePlannerStatusChanged  EventType = "plannerStatusChanged"
	EventTypeMonthlyExpenseChanged EventType = "monthlyExpenseChanged"
	EventTypeAnnualExpenseChanged  EventType = "annualExpenseChanged"
	EventTypeDataChanged           EventType = "dataChanged"
	EventTypeDocumentReloaded      EventType = "documentReloaded"
	EventTypeIntentRejected        EventType = "intentRejected"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeStatus   EntityType = "status"
	EntityTypeExpense  EntityType = "expense"
	EntityTypeData     EntityType = "data"
	EntityTypeDocument EntityType = "document"
	EntityTypeIntent   EntityType = "intent"
)

// Event represents a WebSocket event message sent to view renderers
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Canonical event name e.g. "monthlyStatusChanged"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "status"
	Payload   interface{} `json:"payload"`   // Event data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      string(eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// StatusChanged creates a status event; eventType is the monthly or planner variant
func StatusChanged(eventType EventType, payload interface{}) Event {
	return NewEvent(eventType, EntityTypeStatus, payload)
}

// ExpenseChanged creates an expense event; eventType is the monthly or annual variant
func ExpenseChanged(eventType EventType, payload interface{}) Event {
	return NewEvent(eventType, EntityTypeExpense, payload)
}

// DataChanged creates a dataChanged event
func DataChanged(payload interface{}) Event {
	return NewEvent(EventTypeDataChanged, EntityTypeData, payload)
}

// DocumentReloaded creates a documentReloaded event, sent after the document was
// replaced from storage or imported
func DocumentReloaded(payload interface{}) Event {
	return NewEvent(EventTypeDocumentReloaded, EntityTypeDocument, payload)
}

// IntentRejected creates the reply sent to a renderer whose intent could not be applied
func IntentRejected(payload interface{}) Event {
	return NewEvent(EventTypeIntentRejected, EntityTypeIntent, payload)
}
