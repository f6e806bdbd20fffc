package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusProcessed  OutboxStatus = "PROCESSED"
	OutboxStatusFailed     OutboxStatus = "FAILED"
)

const (
	AggregatePatient       = "patient"
	AggregateComorbidity   = "comorbidity"
	AggregateInvestigation = "investigation"
	AggregateTreatment     = "treatment"
	AggregateConservative  = "conservative_treatment"
	AggregateSurgery       = "surgery"
	AggregateTransplant    = "transplant_evaluation"
	AggregateFollowUp      = "follow_up"
	AggregateFile          = "file"
	AggregateUser          = "user"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"

	// ActionExported is recorded against the nil aggregate id.
	ActionExported = "exported"
)

// EventType joins an aggregate and an action, e.g. "patient.created".
func EventType(aggregate, action string) string {
	return aggregate + "." + action
}

type OutboxEvent struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	EventType     string          `db:"event_type" json:"type"`
	AggregateType string          `db:"aggregate_type" json:"aggregateType"`
	AggregateID   uuid.UUID       `db:"aggregate_id" json:"aggregateId"`
	Payload       []byte          `db:"payload" json:"-"`
	Status        OutboxStatus    `db:"status" json:"status"`
	Attempts      int             `db:"attempts" json:"attempts"`
	ErrorMessage  *string         `db:"error_message" json:"errorMessage,omitempty"`
	NextAttemptAt time.Time       `db:"next_attempt_at" json:"nextAttemptAt"`
	ProcessedAt   *time.Time      `db:"processed_at" json:"processedAt,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// EventPayload is the body written for every domain mutation.
type EventPayload struct {
	ActorID   *uuid.UUID  `json:"actorId,omitempty"`
	PatientID *uuid.UUID  `json:"patientId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// OutboxMessage is what the relay publishes to the broker.
type OutboxMessage struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	AggregateType string          `json:"aggregateType"`
	AggregateID   uuid.UUID       `json:"aggregateId"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (e *OutboxEvent) Message() OutboxMessage {
	return OutboxMessage{
		ID:            e.ID,
		Type:          e.EventType,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		Payload:       json.RawMessage(e.Payload),
		CreatedAt:     e.CreatedAt,
	}
}
