package investigation

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

type InvestigationService interface {
	CreateInvestigation(ctx context.Context, req *model.InvestigationRequest) (*model.PatientInvestigation, error)
	GetInvestigation(ctx context.Context, id uuid.UUID) (*model.PatientInvestigation, error)
	UpdateInvestigation(ctx context.Context, id uuid.UUID, req *model.InvestigationRequest) (*model.PatientInvestigation, error)
	DeleteInvestigation(ctx context.Context, id uuid.UUID) error
	ListInvestigations(ctx context.Context, filter *model.InvestigationFilter) ([]*model.PatientInvestigation, int, error)
}

type Service struct {
	repo     repository.InvestigationRepository
	patients service.PatientChecker
	events   event.Emitter
	now      func() time.Time
}

func NewService(repo repository.InvestigationRepository, patients service.PatientChecker, events event.Emitter) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		events:   events,
		now:      time.Now,
	}
}

func (s *Service) CreateInvestigation(ctx context.Context, req *model.InvestigationRequest) (*model.PatientInvestigation, error) {
	inv := req.Build()
	if err := service.EnsurePatient(ctx, s.patients, inv.PatientID); err != nil {
		return nil, err
	}

	inv.CreatedByID = model.ActorID(ctx)
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, service.MapError(err, "investigation")
	}

	s.events.Emit(ctx, model.AggregateInvestigation, model.ActionCreated, inv.ID, &inv.PatientID, map[string]string{
		"investigationType": inv.InvestigationType,
		"status":            inv.Status,
	})
	return inv, nil
}

func (s *Service) GetInvestigation(ctx context.Context, id uuid.UUID) (*model.PatientInvestigation, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "investigation")
	}
	inv.Patient.ComputeAge(s.now())
	return inv, nil
}

// UpdateInvestigation overwrites the record. Status may move to any value.
func (s *Service) UpdateInvestigation(ctx context.Context, id uuid.UUID, req *model.InvestigationRequest) (*model.PatientInvestigation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "investigation")
	}

	inv := req.Build()
	if inv.PatientID != existing.PatientID {
		if err := service.EnsurePatient(ctx, s.patients, inv.PatientID); err != nil {
			return nil, err
		}
	} else {
		inv.Patient = existing.Patient
	}

	inv.ID = id
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, service.MapError(err, "investigation")
	}
	inv.Patient.ComputeAge(s.now())

	s.events.Emit(ctx, model.AggregateInvestigation, model.ActionUpdated, inv.ID, &inv.PatientID, map[string]string{
		"status": inv.Status,
	})
	return inv, nil
}

func (s *Service) DeleteInvestigation(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return service.MapError(err, "investigation")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.MapError(err, "investigation")
	}

	s.events.Emit(ctx, model.AggregateInvestigation, model.ActionDeleted, id, &existing.PatientID, nil)
	return nil
}

func (s *Service) ListInvestigations(ctx context.Context, filter *model.InvestigationFilter) ([]*model.PatientInvestigation, int, error) {
	filter.Normalize()
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	now := s.now()
	for _, inv := range items {
		inv.Patient.ComputeAge(now)
	}
	return items, total, nil
}
