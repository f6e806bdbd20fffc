package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/model"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert or update violates a unique constraint.
	ErrDuplicate = errors.New("record already exists")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
		List(ctx context.Context, filter *model.UserFilter) ([]*model.User, int, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		SoftDelete(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error
		List(ctx context.Context, filter *model.PatientFilter) ([]*model.Patient, int, error)
		ListForExport(ctx context.Context, filter *model.PatientFilter, max int) ([]*model.Patient, error)
		Exists(ctx context.Context, id uuid.UUID) (bool, error)
		NextPatientCode(ctx context.Context) (string, error)
		Suggest(ctx context.Context, query string, limit int) ([]*model.PatientSuggestion, error)
		Counts(ctx context.Context, id uuid.UUID) (*model.RecordCounts, error)
	}

	ComorbidityRepository interface {
		Create(ctx context.Context, c *model.PatientComorbidity) error
		Get(ctx context.Context, patientID, id uuid.UUID) (*model.PatientComorbidity, error)
		Update(ctx context.Context, c *model.PatientComorbidity) error
		Delete(ctx context.Context, patientID, id uuid.UUID) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientComorbidity, error)
	}

	InvestigationRepository interface {
		Create(ctx context.Context, inv *model.PatientInvestigation) error
		Get(ctx context.Context, id uuid.UUID) (*model.PatientInvestigation, error)
		Update(ctx context.Context, inv *model.PatientInvestigation) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.InvestigationFilter) ([]*model.PatientInvestigation, int, error)
	}

	TreatmentRepository interface {
		Create(ctx context.Context, t *model.PatientTreatment) error
		Get(ctx context.Context, id uuid.UUID) (*model.PatientTreatment, error)
		Update(ctx context.Context, t *model.PatientTreatment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.TreatmentFilter) ([]*model.PatientTreatment, int, error)
	}

	ConservativeTreatmentRepository interface {
		Create(ctx context.Context, t *model.ConservativeTreatment) error
		Get(ctx context.Context, id uuid.UUID) (*model.ConservativeTreatment, error)
		Update(ctx context.Context, t *model.ConservativeTreatment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.ConservativeTreatmentFilter) ([]*model.ConservativeTreatment, int, error)
	}

	SurgeryRepository interface {
		Create(ctx context.Context, s *model.SurgeryDetail) error
		Get(ctx context.Context, id uuid.UUID) (*model.SurgeryDetail, error)
		Update(ctx context.Context, s *model.SurgeryDetail) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.SurgeryFilter) ([]*model.SurgeryDetail, int, error)
	}

	TransplantRepository interface {
		Create(ctx context.Context, e *model.LiverTransplantEvaluation) error
		Get(ctx context.Context, id uuid.UUID) (*model.LiverTransplantEvaluation, error)
		Update(ctx context.Context, e *model.LiverTransplantEvaluation) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.TransplantEvaluationFilter) ([]*model.LiverTransplantEvaluation, int, error)
	}

	FollowUpRepository interface {
		Create(ctx context.Context, f *model.FollowUpRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.FollowUpRecord, error)
		Update(ctx context.Context, f *model.FollowUpRecord) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.FollowUpFilter) ([]*model.FollowUpRecord, int, error)
		ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]*model.FollowUpReminder, error)
		MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	FileRepository interface {
		Create(ctx context.Context, f *model.PatientFile) error
		Get(ctx context.Context, id uuid.UUID) (*model.PatientFile, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter *model.FileFilter) ([]*model.PatientFile, int, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ClaimPending moves up to limit due events to PROCESSING. Events stuck in
		// PROCESSING for longer than staleAfter are claimed again.
		ClaimPending(ctx context.Context, limit int, staleAfter time.Duration) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		// MarkFailed records a failed attempt. A nil retryAt makes the failure final.
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
