package event

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
)

// Service appends events to the outbox table after the mutation that raised
// them has committed. Emission is best effort: a failed insert is logged and
// the event is lost. The worker relays stored events.
type Service struct {
	outboxRepo repository.OutboxRepository
}

func NewService(outboxRepo repository.OutboxRepository) *Service {
	return &Service{outboxRepo: outboxRepo}
}

func (s *Service) Emit(ctx context.Context, aggregate, action string, aggregateID uuid.UUID, patientID *uuid.UUID, data interface{}) {
	eventType := model.EventType(aggregate, action)
	logger := zerolog.Ctx(ctx).With().
		Str("event_type", eventType).
		Str("aggregate_id", aggregateID.String()).
		Logger()

	payload, err := json.Marshal(model.EventPayload{
		ActorID:   model.ActorID(ctx),
		PatientID: patientID,
		Data:      data,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal event payload")
		return
	}

	event := &model.OutboxEvent{
		EventType:     eventType,
		AggregateType: aggregate,
		AggregateID:   aggregateID,
		Payload:       payload,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		logger.Error().Err(err).Msg("failed to write outbox event")
		return
	}

	logger.Debug().Str("event_id", event.ID.String()).Msg("event recorded")
}
