package treatment

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

type TreatmentService interface {
	CreateTreatment(ctx context.Context, req *model.TreatmentRequest) (*model.PatientTreatment, error)
	GetTreatment(ctx context.Context, id uuid.UUID) (*model.PatientTreatment, error)
	UpdateTreatment(ctx context.Context, id uuid.UUID, req *model.TreatmentRequest) (*model.PatientTreatment, error)
	DeleteTreatment(ctx context.Context, id uuid.UUID) error
	ListTreatments(ctx context.Context, filter *model.TreatmentFilter) ([]*model.PatientTreatment, int, error)
}

type Service struct {
	repo     repository.TreatmentRepository
	patients service.PatientChecker
	events   event.Emitter
	now      func() time.Time
}

func NewService(repo repository.TreatmentRepository, patients service.PatientChecker, events event.Emitter) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		events:   events,
		now:      time.Now,
	}
}

func (s *Service) CreateTreatment(ctx context.Context, req *model.TreatmentRequest) (*model.PatientTreatment, error) {
	t := req.Build()
	if err := service.EnsurePatient(ctx, s.patients, t.PatientID); err != nil {
		return nil, err
	}

	t.CreatedByID = model.ActorID(ctx)
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, service.MapError(err, "treatment")
	}

	s.events.Emit(ctx, model.AggregateTreatment, model.ActionCreated, t.ID, &t.PatientID, map[string]string{
		"treatmentType": t.TreatmentType,
		"status":        t.Status,
	})
	return t, nil
}

func (s *Service) GetTreatment(ctx context.Context, id uuid.UUID) (*model.PatientTreatment, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "treatment")
	}
	t.Patient.ComputeAge(s.now())
	return t, nil
}

func (s *Service) UpdateTreatment(ctx context.Context, id uuid.UUID, req *model.TreatmentRequest) (*model.PatientTreatment, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "treatment")
	}

	t := req.Build()
	if t.PatientID != existing.PatientID {
		if err := service.EnsurePatient(ctx, s.patients, t.PatientID); err != nil {
			return nil, err
		}
	} else {
		t.Patient = existing.Patient
	}

	t.ID = id
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, service.MapError(err, "treatment")
	}
	t.Patient.ComputeAge(s.now())

	s.events.Emit(ctx, model.AggregateTreatment, model.ActionUpdated, t.ID, &t.PatientID, map[string]string{
		"status": t.Status,
	})
	return t, nil
}

func (s *Service) DeleteTreatment(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return service.MapError(err, "treatment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.MapError(err, "treatment")
	}

	s.events.Emit(ctx, model.AggregateTreatment, model.ActionDeleted, id, &existing.PatientID, nil)
	return nil
}

func (s *Service) ListTreatments(ctx context.Context, filter *model.TreatmentFilter) ([]*model.PatientTreatment, int, error) {
	filter.Normalize()
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	now := s.now()
	for _, t := range items {
		t.Patient.ComputeAge(now)
	}
	return items, total, nil
}
