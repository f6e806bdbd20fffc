package surgery

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
	"github.com/jwalitptl/patient-registry/internal/service"
	"github.com/jwalitptl/patient-registry/internal/service/event"
	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
)

type SurgeryService interface {
	CreateSurgery(ctx context.Context, req *model.SurgeryRequest) (*model.SurgeryDetail, error)
	GetSurgery(ctx context.Context, id uuid.UUID) (*model.SurgeryDetail, error)
	UpdateSurgery(ctx context.Context, id uuid.UUID, req *model.SurgeryRequest) (*model.SurgeryDetail, error)
	DeleteSurgery(ctx context.Context, id uuid.UUID) error
	ListSurgeries(ctx context.Context, filter *model.SurgeryFilter) ([]*model.SurgeryDetail, int, error)
}

type Service struct {
	repo     repository.SurgeryRepository
	patients service.PatientChecker
	events   event.Emitter
	now      func() time.Time
}

func NewService(repo repository.SurgeryRepository, patients service.PatientChecker, events event.Emitter) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		events:   events,
		now:      time.Now,
	}
}

func (s *Service) CreateSurgery(ctx context.Context, req *model.SurgeryRequest) (*model.SurgeryDetail, error) {
	sd := req.Build()
	if err := service.EnsurePatient(ctx, s.patients, sd.PatientID); err != nil {
		return nil, err
	}

	sd.CreatedByID = model.ActorID(ctx)
	if err := s.repo.Create(ctx, sd); err != nil {
		return nil, service.MapError(err, "surgery")
	}

	s.events.Emit(ctx, model.AggregateSurgery, model.ActionCreated, sd.ID, &sd.PatientID, map[string]string{
		"surgeryName": sd.SurgeryName,
		"surgeryType": sd.SurgeryType,
	})
	return sd, nil
}

func (s *Service) GetSurgery(ctx context.Context, id uuid.UUID) (*model.SurgeryDetail, error) {
	sd, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "surgery")
	}
	sd.Patient.ComputeAge(s.now())
	return sd, nil
}

func (s *Service) UpdateSurgery(ctx context.Context, id uuid.UUID, req *model.SurgeryRequest) (*model.SurgeryDetail, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "surgery")
	}

	sd := req.Build()
	if sd.PatientID != existing.PatientID {
		if err := service.EnsurePatient(ctx, s.patients, sd.PatientID); err != nil {
			return nil, err
		}
	} else {
		sd.Patient = existing.Patient
	}

	sd.ID = id
	if err := s.repo.Update(ctx, sd); err != nil {
		return nil, service.MapError(err, "surgery")
	}
	sd.Patient.ComputeAge(s.now())

	s.events.Emit(ctx, model.AggregateSurgery, model.ActionUpdated, sd.ID, &sd.PatientID, nil)
	return sd, nil
}

// DeleteSurgery removes the row permanently.
func (s *Service) DeleteSurgery(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return service.MapError(err, "surgery")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.MapError(err, "surgery")
	}

	s.events.Emit(ctx, model.AggregateSurgery, model.ActionDeleted, id, &existing.PatientID, nil)
	return nil
}

func (s *Service) ListSurgeries(ctx context.Context, filter *model.SurgeryFilter) ([]*model.SurgeryDetail, int, error) {
	filter.Normalize()
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	now := s.now()
	for _, sd := range items {
		sd.Patient.ComputeAge(now)
	}
	return items, total, nil
}
