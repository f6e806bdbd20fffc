package event

import (
	"context"

	"github.com/google/uuid"
)

// Emitter records domain events for asynchronous delivery. Emission is best
// effort and never fails the calling operation.
type Emitter interface {
	Emit(ctx context.Context, aggregate, action string, aggregateID uuid.UUID, patientID *uuid.UUID, data interface{})
}

// Noop discards every event.
type Noop struct{}

func (Noop) Emit(context.Context, string, string, uuid.UUID, *uuid.UUID, interface{}) {}
