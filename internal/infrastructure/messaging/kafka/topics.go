// Package kafka publishes the engine's domain events for downstream
// consumers (task assignment, analytics, client portal).
package kafka

import (
	"time"

	"github.com/google/uuid"
)

// Topics carrying engine events.
const (
	// TopicTimelineRecordCreated carries one event per newly created work
	// record.  Keyed by client ID so a client's records stay ordered.
	TopicTimelineRecordCreated = "timeline.record.created"

	// TopicTimelineDuplicatesRemoved carries one event per destructive
	// cleanup run.
	TopicTimelineDuplicatesRemoved = "timeline.duplicates.removed"
)

// EventEnvelope is the common wrapper every published event carries.
type EventEnvelope struct {
	EventID    string      `json:"event_id"`
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// newEnvelope stamps a payload with identity and time.
func newEnvelope(eventType string, payload interface{}) EventEnvelope {
	return EventEnvelope{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// RecordCreatedPayload describes a newly created work record.
type RecordCreatedPayload struct {
	RecordID      string    `json:"record_id"`
	ClientID      string    `json:"client_id"`
	ActivityID    string    `json:"activity_id"`
	SubactivityID string    `json:"subactivity_id"`
	BranchID      string    `json:"branch_id"`
	FinancialYear string    `json:"financial_year"`
	Period        string    `json:"period"`
	DueDate       time.Time `json:"due_date"`
	Jurisdiction  string    `json:"jurisdiction,omitempty"`
}

// DuplicatesRemovedPayload describes a destructive cleanup run.
type DuplicatesRemovedPayload struct {
	Identities   []string `json:"identities"`
	DeletedCount int64    `json:"deleted_count"`
}
