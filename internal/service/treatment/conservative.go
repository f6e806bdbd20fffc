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

type ConservativeTreatmentService interface {
	CreateConservativeTreatment(ctx context.Context, req *model.ConservativeTreatmentRequest) (*model.ConservativeTreatment, error)
	GetConservativeTreatment(ctx context.Context, id uuid.UUID) (*model.ConservativeTreatment, error)
	UpdateConservativeTreatment(ctx context.Context, id uuid.UUID, req *model.ConservativeTreatmentRequest) (*model.ConservativeTreatment, error)
	DeleteConservativeTreatment(ctx context.Context, id uuid.UUID) error
	ListConservativeTreatments(ctx context.Context, filter *model.ConservativeTreatmentFilter) ([]*model.ConservativeTreatment, int, error)
}

type ConservativeService struct {
	repo     repository.ConservativeTreatmentRepository
	patients service.PatientChecker
	events   event.Emitter
	now      func() time.Time
}

func NewConservativeService(repo repository.ConservativeTreatmentRepository, patients service.PatientChecker, events event.Emitter) *ConservativeService {
	return &ConservativeService{
		repo:     repo,
		patients: patients,
		events:   events,
		now:      time.Now,
	}
}

func (s *ConservativeService) CreateConservativeTreatment(ctx context.Context, req *model.ConservativeTreatmentRequest) (*model.ConservativeTreatment, error) {
	ct := req.Build()
	if err := service.EnsurePatient(ctx, s.patients, ct.PatientID); err != nil {
		return nil, err
	}

	ct.CreatedByID = model.ActorID(ctx)
	if err := s.repo.Create(ctx, ct); err != nil {
		return nil, service.MapError(err, "conservative treatment")
	}

	s.events.Emit(ctx, model.AggregateConservative, model.ActionCreated, ct.ID, &ct.PatientID, map[string]string{
		"response": ct.Response,
	})
	return ct, nil
}

func (s *ConservativeService) GetConservativeTreatment(ctx context.Context, id uuid.UUID) (*model.ConservativeTreatment, error) {
	ct, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "conservative treatment")
	}
	ct.Patient.ComputeAge(s.now())
	return ct, nil
}

func (s *ConservativeService) UpdateConservativeTreatment(ctx context.Context, id uuid.UUID, req *model.ConservativeTreatmentRequest) (*model.ConservativeTreatment, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "conservative treatment")
	}

	ct := req.Build()
	if ct.PatientID != existing.PatientID {
		if err := service.EnsurePatient(ctx, s.patients, ct.PatientID); err != nil {
			return nil, err
		}
	} else {
		ct.Patient = existing.Patient
	}

	ct.ID = id
	if err := s.repo.Update(ctx, ct); err != nil {
		return nil, service.MapError(err, "conservative treatment")
	}
	ct.Patient.ComputeAge(s.now())

	s.events.Emit(ctx, model.AggregateConservative, model.ActionUpdated, ct.ID, &ct.PatientID, map[string]string{
		"response": ct.Response,
	})
	return ct, nil
}

func (s *ConservativeService) DeleteConservativeTreatment(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return service.MapError(err, "conservative treatment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.MapError(err, "conservative treatment")
	}

	s.events.Emit(ctx, model.AggregateConservative, model.ActionDeleted, id, &existing.PatientID, nil)
	return nil
}

func (s *ConservativeService) ListConservativeTreatments(ctx context.Context, filter *model.ConservativeTreatmentFilter) ([]*model.ConservativeTreatment, int, error) {
	filter.Normalize()
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	now := s.now()
	for _, ct := range items {
		ct.Patient.ComputeAge(now)
	}
	return items, total, nil
}
