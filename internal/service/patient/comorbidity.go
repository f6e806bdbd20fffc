package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/service"
	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
)

func (s *Service) ListComorbidities(ctx context.Context, patientID uuid.UUID) ([]*model.PatientComorbidity, error) {
	if err := service.EnsurePatient(ctx, s.repo, patientID); err != nil {
		return nil, err
	}
	items, err := s.comorbidityRepo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return items, nil
}

func (s *Service) AddComorbidity(ctx context.Context, patientID uuid.UUID, req *model.ComorbidityRequest) (*model.PatientComorbidity, error) {
	if err := service.EnsurePatient(ctx, s.repo, patientID); err != nil {
		return nil, err
	}

	c := req.Build(patientID)
	c.CreatedByID = model.ActorID(ctx)
	if err := s.comorbidityRepo.Create(ctx, c); err != nil {
		return nil, service.MapError(err, "comorbidity")
	}

	s.events.Emit(ctx, model.AggregateComorbidity, model.ActionCreated, c.ID, &patientID, map[string]string{
		"conditionName": c.ConditionName,
	})
	return c, nil
}

func (s *Service) UpdateComorbidity(ctx context.Context, patientID, id uuid.UUID, req *model.ComorbidityRequest) (*model.PatientComorbidity, error) {
	if err := service.EnsurePatient(ctx, s.repo, patientID); err != nil {
		return nil, err
	}

	c := req.Build(patientID)
	c.ID = id
	if err := s.comorbidityRepo.Update(ctx, c); err != nil {
		return nil, service.MapError(err, "comorbidity")
	}

	s.events.Emit(ctx, model.AggregateComorbidity, model.ActionUpdated, c.ID, &patientID, nil)
	return c, nil
}

func (s *Service) DeleteComorbidity(ctx context.Context, patientID, id uuid.UUID) error {
	if err := service.EnsurePatient(ctx, s.repo, patientID); err != nil {
		return err
	}
	if err := s.comorbidityRepo.Delete(ctx, patientID, id); err != nil {
		return service.MapError(err, "comorbidity")
	}
	s.events.Emit(ctx, model.AggregateComorbidity, model.ActionDeleted, id, &patientID, nil)
	return nil
}
