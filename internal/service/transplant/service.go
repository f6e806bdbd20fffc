package transplant

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

type TransplantService interface {
	CreateEvaluation(ctx context.Context, req *model.TransplantEvaluationRequest) (*model.LiverTransplantEvaluation, error)
	GetEvaluation(ctx context.Context, id uuid.UUID) (*model.LiverTransplantEvaluation, error)
	UpdateEvaluation(ctx context.Context, id uuid.UUID, req *model.TransplantEvaluationRequest) (*model.LiverTransplantEvaluation, error)
	DeleteEvaluation(ctx context.Context, id uuid.UUID) error
	ListEvaluations(ctx context.Context, filter *model.TransplantEvaluationFilter) ([]*model.LiverTransplantEvaluation, int, error)
}

type Service struct {
	repo     repository.TransplantRepository
	patients service.PatientChecker
	events   event.Emitter
	now      func() time.Time
}

func NewService(repo repository.TransplantRepository, patients service.PatientChecker, events event.Emitter) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		events:   events,
		now:      time.Now,
	}
}

// CreateEvaluation records a liver transplant work-up. Missing viral markers
// are stored as NOT_DONE.
func (s *Service) CreateEvaluation(ctx context.Context, req *model.TransplantEvaluationRequest) (*model.LiverTransplantEvaluation, error) {
	e := req.Build()
	if err := service.EnsurePatient(ctx, s.patients, e.PatientID); err != nil {
		return nil, err
	}

	e.CreatedByID = model.ActorID(ctx)
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, service.MapError(err, "transplant evaluation")
	}

	s.events.Emit(ctx, model.AggregateTransplant, model.ActionCreated, e.ID, &e.PatientID, map[string]string{
		"status": e.Status,
	})
	return e, nil
}

func (s *Service) GetEvaluation(ctx context.Context, id uuid.UUID) (*model.LiverTransplantEvaluation, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "transplant evaluation")
	}
	e.Patient.ComputeAge(s.now())
	return e, nil
}

func (s *Service) UpdateEvaluation(ctx context.Context, id uuid.UUID, req *model.TransplantEvaluationRequest) (*model.LiverTransplantEvaluation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "transplant evaluation")
	}

	e := req.Build()
	if e.PatientID != existing.PatientID {
		if err := service.EnsurePatient(ctx, s.patients, e.PatientID); err != nil {
			return nil, err
		}
	} else {
		e.Patient = existing.Patient
	}

	e.ID = id
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, service.MapError(err, "transplant evaluation")
	}
	e.Patient.ComputeAge(s.now())

	s.events.Emit(ctx, model.AggregateTransplant, model.ActionUpdated, e.ID, &e.PatientID, map[string]string{
		"status": e.Status,
	})
	return e, nil
}

func (s *Service) DeleteEvaluation(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return service.MapError(err, "transplant evaluation")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.MapError(err, "transplant evaluation")
	}

	s.events.Emit(ctx, model.AggregateTransplant, model.ActionDeleted, id, &existing.PatientID, nil)
	return nil
}

func (s *Service) ListEvaluations(ctx context.Context, filter *model.TransplantEvaluationFilter) ([]*model.LiverTransplantEvaluation, int, error) {
	filter.Normalize()
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	now := s.now()
	for _, e := range items {
		e.Patient.ComputeAge(now)
	}
	return items, total, nil
}
