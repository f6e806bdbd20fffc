// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
)

var (
	_ repository.UserRepository                  = (*UserRepository)(nil)
	_ repository.PatientRepository               = (*PatientRepository)(nil)
	_ repository.ComorbidityRepository           = (*ComorbidityRepository)(nil)
	_ repository.InvestigationRepository         = (*InvestigationRepository)(nil)
	_ repository.TreatmentRepository             = (*TreatmentRepository)(nil)
	_ repository.ConservativeTreatmentRepository = (*ConservativeTreatmentRepository)(nil)
	_ repository.SurgeryRepository               = (*SurgeryRepository)(nil)
	_ repository.TransplantRepository            = (*TransplantRepository)(nil)
	_ repository.FollowUpRepository              = (*FollowUpRepository)(nil)
	_ repository.FileRepository                  = (*FileRepository)(nil)
	_ repository.OutboxRepository                = (*OutboxRepository)(nil)
)

func errAt(args mock.Arguments, i int) error {
	if err := args.Get(i); err != nil {
		return err.(error)
	}
	return nil
}

type UserRepository struct{ mock.Mock }

func (m *UserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, errAt(args, 1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, errAt(args, 1)
}

func (m *UserRepository) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *UserRepository) List(ctx context.Context, filter *model.UserFilter) ([]*model.User, int, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]*model.User)
	return out, args.Int(1), errAt(args, 2)
}

type PatientRepository struct{ mock.Mock }

func (m *PatientRepository) Create(ctx context.Context, p *model.Patient) error {
	return m.Called(ctx, p).Error(0)
}

func (m *PatientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Patient)
	return p, errAt(args, 1)
}

func (m *PatientRepository) Update(ctx context.Context, p *model.Patient) error {
	return m.Called(ctx, p).Error(0)
}

func (m *PatientRepository) SoftDelete(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error {
	return m.Called(ctx, id, actorID).Error(0)
}

func (m *PatientRepository) List(ctx context.Context, filter *model.PatientFilter) ([]*model.Patient, int, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]*model.Patient)
	return out, args.Int(1), errAt(args, 2)
}

func (m *PatientRepository) ListForExport(ctx context.Context, filter *model.PatientFilter, max int) ([]*model.Patient, error) {
	args := m.Called(ctx, filter, max)
	out, _ := args.Get(0).([]*model.Patient)
	return out, errAt(args, 1)
}

func (m *PatientRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), errAt(args, 1)
}

func (m *PatientRepository) NextPatientCode(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), errAt(args, 1)
}

func (m *PatientRepository) Suggest(ctx context.Context, q string, limit int) ([]*model.PatientSuggestion, error) {
	args := m.Called(ctx, q, limit)
	out, _ := args.Get(0).([]*model.PatientSuggestion)
	return out, errAt(args, 1)
}

func (m *PatientRepository) Counts(ctx context.Context, id uuid.UUID) (*model.RecordCounts, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.RecordCounts)
	return c, errAt(args, 1)
}

type ComorbidityRepository struct{ mock.Mock }

func (m *ComorbidityRepository) Create(ctx context.Context, c *model.PatientComorbidity) error {
	return m.Called(ctx, c).Error(0)
}

func (m *ComorbidityRepository) Get(ctx context.Context, patientID, id uuid.UUID) (*model.PatientComorbidity, error) {
	args := m.Called(ctx, patientID, id)
	c, _ := args.Get(0).(*model.PatientComorbidity)
	return c, errAt(args, 1)
}

func (m *ComorbidityRepository) Update(ctx context.Context, c *model.PatientComorbidity) error {
	return m.Called(ctx, c).Error(0)
}

func (m *ComorbidityRepository) Delete(ctx context.Context, patientID, id uuid.UUID) error {
	return m.Called(ctx, patientID, id).Error(0)
}

func (m *ComorbidityRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientComorbidity, error) {
	args := m.Called(ctx, patientID)
	out, _ := args.Get(0).([]*model.PatientComorbidity)
	return out, errAt(args, 1)
}

type InvestigationRepository struct{ mock.Mock }

func (m *InvestigationRepository) Create(ctx context.Context, v *model.PatientInvestigation) error {
	return m.Called(ctx, v).Error(0)
}

func (m *InvestigationRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientInvestigation, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*model.PatientInvestigation)
	return v, errAt(args, 1)
}

func (m *InvestigationRepository) Update(ctx context.Context, v *model.PatientInvestigation) error {
	return m.Called(ctx, v).Error(0)
}

func (m *InvestigationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *InvestigationRepository) List(ctx context.Context, filter *model.InvestigationFilter) ([]*model.PatientInvestigation, int, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]*model.PatientInvestigation)
	return out, args.Int(1), errAt(args, 2)
}

type TreatmentRepository struct{ mock.Mock }

func (m *TreatmentRepository) Create(ctx context.Context, v *model.PatientTreatment) error {
	return m.Called(ctx, v).Error(0)
}

func (m *TreatmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientTreatment, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*model.PatientTreatment)
	return v, errAt(args, 1)
}

func (m *TreatmentRepository) Update(ctx context.Context, v *model.PatientTreatment) error {
	return m.Called(ctx, v).Error(0)
}

func (m *TreatmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *TreatmentRepository) List(ctx context.Context, filter *model.TreatmentFilter) ([]*model.PatientTreatment, int, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]*model.PatientTreatment)
	return out, args.Int(1), errAt(args, 2)
}

type ConservativeTreatmentRepository struct{ mock.Mock }

func (m *ConservativeTreatmentRepository) Create(ctx context.Context, v *model.ConservativeTreatment) error {
	return m.Called(ctx, v).Error(0)
}

func (m *ConservativeTreatmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.ConservativeTreatment, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*model.ConservativeTreatment)
	return v, errAt(args, 1)
}

func (m *ConservativeTreatmentRepository) Update(ctx context.Context, v *model.ConservativeTreatment) error {
	return m.Called(ctx, v).Error(0)
}

func (m *ConservativeTreatmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ConservativeTreatmentRepository) List(ctx context.Context, filter *model.ConservativeTreatmentFilter) ([]*model.ConservativeTreatment, int, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]*model.ConservativeTreatment)
	return out, args.Int(1), errAt(args, 2)
}

type SurgeryRepository struct{ mock.Mock }

func (m *SurgeryRepository) Create(ctx context.Context, v *model.SurgeryDetail) error {
	return m.Called(ctx, v).Error(0)
}

func (m *SurgeryRepository) Get(ctx context.Context, id uuid.UUID) (*model.SurgeryDetail, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*model.SurgeryDetail)
	return v, errAt(args, 1)
}

func (m *SurgeryRepository) Update(ctx context.Context, v *model.SurgeryDetail) error {
	return m.Called(ctx, v).Error(0)
}

func (m *SurgeryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *SurgeryRepository) List(ctx context.Context, filter *model.SurgeryFilter) ([]*model.SurgeryDetail, int, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]*model.SurgeryDetail)
	return out, args.Int(1), errAt(args, 2)
}

type TransplantRepository struct{ mock.Mock }

func (m *TransplantRepository) Create(ctx context.Context, v *model.LiverTransplantEvaluation) error {
	return m.Called(ctx, v).Error(0)
}

func (m *TransplantRepository) Get(ctx context.Context, id uuid.UUID) (*model.LiverTransplantEvaluation, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*model.LiverTransplantEvaluation)
	return v, errAt(args, 1)
}

func (m *TransplantRepository) Update(ctx context.Context, v *model.LiverTransplantEvaluation) error {
	return m.Called(ctx, v).Error(0)
}

func (m *TransplantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *TransplantRepository) List(ctx context.Context, filter *model.TransplantEvaluationFilter) ([]*model.LiverTransplantEvaluation, int, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]*model.LiverTransplantEvaluation)
	return out, args.Int(1), errAt(args, 2)
}

type FollowUpRepository struct{ mock.Mock }

func (m *FollowUpRepository) Create(ctx context.Context, v *model.FollowUpRecord) error {
	return m.Called(ctx, v).Error(0)
}

func (m *FollowUpRepository) Get(ctx context.Context, id uuid.UUID) (*model.FollowUpRecord, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*model.FollowUpRecord)
	return v, errAt(args, 1)
}

func (m *FollowUpRepository) Update(ctx context.Context, v *model.FollowUpRecord) error {
	return m.Called(ctx, v).Error(0)
}

func (m *FollowUpRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *FollowUpRepository) List(ctx context.Context, filter *model.FollowUpFilter) ([]*model.FollowUpRecord, int, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]*model.FollowUpRecord)
	return out, args.Int(1), errAt(args, 2)
}

func (m *FollowUpRepository) ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]*model.FollowUpReminder, error) {
	args := m.Called(ctx, from, to, limit)
	out, _ := args.Get(0).([]*model.FollowUpReminder)
	return out, errAt(args, 1)
}

func (m *FollowUpRepository) MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type FileRepository struct{ mock.Mock }

func (m *FileRepository) Create(ctx context.Context, f *model.PatientFile) error {
	return m.Called(ctx, f).Error(0)
}

func (m *FileRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientFile, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*model.PatientFile)
	return f, errAt(args, 1)
}

func (m *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *FileRepository) List(ctx context.Context, filter *model.FileFilter) ([]*model.PatientFile, int, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]*model.PatientFile)
	return out, args.Int(1), errAt(args, 2)
}

type OutboxRepository struct{ mock.Mock }

func (m *OutboxRepository) Create(ctx context.Context, e *model.OutboxEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *OutboxRepository) ClaimPending(ctx context.Context, limit int, staleAfter time.Duration) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit, staleAfter)
	out, _ := args.Get(0).([]*model.OutboxEvent)
	return out, errAt(args, 1)
}

func (m *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error {
	return m.Called(ctx, id, errMsg, retryAt).Error(0)
}

func (m *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	n, _ := args.Get(0).(int64)
	return n, errAt(args, 1)
}
