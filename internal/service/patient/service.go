package patient

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
	"github.com/jwalitptl/patient-registry/internal/service"
	"github.com/jwalitptl/patient-registry/internal/service/event"
	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
)

const (
	MinSuggestQueryLength = 2
	SuggestLimit          = 10
)

type PatientService interface {
	CreatePatient(ctx context.Context, req *model.PatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.PatientDetail, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, req *model.PatientRequest) (*model.Patient, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
	ListPatients(ctx context.Context, filter *model.PatientFilter) ([]*model.Patient, int, error)
	ExportPatients(ctx context.Context, filter *model.PatientFilter, max int) ([]*model.Patient, error)
	SuggestPatients(ctx context.Context, query string) ([]*model.PatientSuggestion, error)

	ListComorbidities(ctx context.Context, patientID uuid.UUID) ([]*model.PatientComorbidity, error)
	AddComorbidity(ctx context.Context, patientID uuid.UUID, req *model.ComorbidityRequest) (*model.PatientComorbidity, error)
	UpdateComorbidity(ctx context.Context, patientID, id uuid.UUID, req *model.ComorbidityRequest) (*model.PatientComorbidity, error)
	DeleteComorbidity(ctx context.Context, patientID, id uuid.UUID) error
}

type Service struct {
	repo            repository.PatientRepository
	comorbidityRepo repository.ComorbidityRepository
	events          event.Emitter
	now             func() time.Time
}

func NewService(repo repository.PatientRepository, comorbidityRepo repository.ComorbidityRepository, events event.Emitter) *Service {
	return &Service{
		repo:            repo,
		comorbidityRepo: comorbidityRepo,
		events:          events,
		now:             time.Now,
	}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.PatientRequest) (*model.Patient, error) {
	patient := req.Build()
	if patient.PatientID == "" {
		code, err := s.repo.NextPatientCode(ctx)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		patient.PatientID = code
	}
	patient.ComputeBMI()
	patient.CreatedByID = model.ActorID(ctx)
	patient.UpdatedByID = patient.CreatedByID

	if err := s.repo.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("patientId already exists", err)
		}
		return nil, apperrors.Internal(err)
	}
	patient.ComputeAge(s.now())

	s.events.Emit(ctx, model.AggregatePatient, model.ActionCreated, patient.ID, &patient.ID, map[string]string{
		"patientId": patient.PatientID,
	})
	return patient, nil
}

// GetPatient returns the patient with comorbidities and sub-record counts.
func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.PatientDetail, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "patient")
	}
	patient.ComputeAge(s.now())

	comorbidities, err := s.comorbidityRepo.ListByPatient(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	counts, err := s.repo.Counts(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.PatientDetail{
		Patient:       patient,
		Comorbidities: comorbidities,
		RecordCounts:  *counts,
	}, nil
}

// UpdatePatient overwrites every mutable field. The human patient code never
// changes; a body that names a different code is rejected.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.PatientRequest) (*model.Patient, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.MapError(err, "patient")
	}

	patient := req.Build()
	if patient.PatientID != "" && patient.PatientID != existing.PatientID {
		return nil, apperrors.InvalidField("patientId", "patientId cannot be changed")
	}

	patient.ID = id
	patient.PatientID = existing.PatientID
	patient.ComputeBMI()
	patient.UpdatedByID = model.ActorID(ctx)

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, service.MapError(err, "patient")
	}
	patient.ComputeAge(s.now())

	s.events.Emit(ctx, model.AggregatePatient, model.ActionUpdated, patient.ID, &patient.ID, nil)
	return patient, nil
}

// DeletePatient soft-deletes. Sub-records stay in place but become unreachable.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id, model.ActorID(ctx)); err != nil {
		return service.MapError(err, "patient")
	}
	s.events.Emit(ctx, model.AggregatePatient, model.ActionDeleted, id, &id, nil)
	return nil
}

func (s *Service) ListPatients(ctx context.Context, filter *model.PatientFilter) ([]*model.Patient, int, error) {
	filter.Normalize()
	patients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	now := s.now()
	for _, p := range patients {
		p.ComputeAge(now)
	}
	return patients, total, nil
}

// ExportPatients returns up to max patients matching filter, ignoring paging.
func (s *Service) ExportPatients(ctx context.Context, filter *model.PatientFilter, max int) ([]*model.Patient, error) {
	filter.Normalize()
	patients, err := s.repo.ListForExport(ctx, filter, max)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	now := s.now()
	for _, p := range patients {
		p.ComputeAge(now)
	}
	return patients, nil
}

// SuggestPatients answers autocomplete. Queries shorter than two characters
// return an empty list without touching the database.
func (s *Service) SuggestPatients(ctx context.Context, query string) ([]*model.PatientSuggestion, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSuggestQueryLength {
		return []*model.PatientSuggestion{}, nil
	}

	out, err := s.repo.Suggest(ctx, query, SuggestLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	now := s.now()
	for _, p := range out {
		p.ComputeAge(now)
	}
	return out, nil
}
