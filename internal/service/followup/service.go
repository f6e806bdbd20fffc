// Package followup manages follow-up visits and the dates that drive patient
// reminders.
package followup

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

type FollowUpService interface {
	CreateFollowUp(ctx context.Context, req *model.FollowUpRequest) (*model.FollowUpRecord, error)
	GetFollowUp(ctx context.Context, id uuid.UUID) (*model.FollowUpRecord, error)
	UpdateFollowUp(ctx context.Context, id uuid.UUID, req *model.FollowUpRequest) (*model.FollowUpRecord, error)
	DeleteFollowUp(ctx context.Context, id uuid.UUID) error
	ListFollowUps(ctx context.Context, filter *model.FollowUpFilter) ([]*model.FollowUpRecord, int, error)
}

type Service struct {
	repo     repository.FollowUpRepository
	patients service.PatientChecker
	events   event.Emitter
	now      func() time.Time
}

func NewService(repo repository.FollowUpRepository, patients service.PatientChecker, events event.Emitter) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		events:   events,
		now:      time.Now,
	}
}

func (s *Service) CreateFollowUp(ctx context.Context, req *model.FollowUpRequest) (*model.FollowUpRecord, error) {
	f := req.Build()
	if err := service.EnsurePatient(ctx, s.patients, f.PatientID); err != nil {
		return nil, err
	}

	f.CreatedByID = model.ActorID(ctx)
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, service.MapError(err, "follow-up")
	}

	s.events.Emit(ctx, model.AggregateFollowUp, model.ActionCreated, f.ID, &f.PatientID, map[string]string{
		"clinicalStatus": f.ClinicalStatus,
	})
	return f, nil
}

func (s *Service) GetFollowUp(ctx context.Context, id uuid.UUID) (*model.FollowUpRecord, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "follow-up")
	}
	f.Patient.ComputeAge(s.now())
	return f, nil
}

// UpdateFollowUp overwrites the record. Moving nextFollowUpDate re-arms the
// reminder for the new date.
func (s *Service) UpdateFollowUp(ctx context.Context, id uuid.UUID, req *model.FollowUpRequest) (*model.FollowUpRecord, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "follow-up")
	}

	f := req.Build()
	if f.PatientID != existing.PatientID {
		if err := service.EnsurePatient(ctx, s.patients, f.PatientID); err != nil {
			return nil, err
		}
	} else {
		f.Patient = existing.Patient
	}

	f.ID = id
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, service.MapError(err, "follow-up")
	}
	f.Patient.ComputeAge(s.now())

	s.events.Emit(ctx, model.AggregateFollowUp, model.ActionUpdated, f.ID, &f.PatientID, map[string]string{
		"clinicalStatus": f.ClinicalStatus,
	})
	return f, nil
}

func (s *Service) DeleteFollowUp(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return service.MapError(err, "follow-up")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.MapError(err, "follow-up")
	}

	s.events.Emit(ctx, model.AggregateFollowUp, model.ActionDeleted, id, &existing.PatientID, nil)
	return nil
}

func (s *Service) ListFollowUps(ctx context.Context, filter *model.FollowUpFilter) ([]*model.FollowUpRecord, int, error) {
	filter.Normalize()
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	now := s.now()
	for _, f := range items {
		f.Patient.ComputeAge(now)
	}
	return items, total, nil
}
