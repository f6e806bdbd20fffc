package event

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/model"
)

// Recorded is one call captured by a Recorder.
type Recorded struct {
	Type        string
	AggregateID uuid.UUID
	PatientID   *uuid.UUID
	ActorID     *uuid.UUID
	Data        interface{}
}

// Recorder keeps emitted events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

func (r *Recorder) Emit(ctx context.Context, aggregate, action string, aggregateID uuid.UUID, patientID *uuid.UUID, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{
		Type:        model.EventType(aggregate, action),
		AggregateID: aggregateID,
		PatientID:   patientID,
		ActorID:     model.ActorID(ctx),
		Data:        data,
	})
}

func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.events...)
}

// Types lists the recorded event types in order.
func (r *Recorder) Types() []string {
	var out []string
	for _, e := range r.Events() {
		out = append(out, e.Type)
	}
	return out
}
