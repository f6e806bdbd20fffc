package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
)

var treatmentSortColumns = map[string]string{
	"createdAt":     "t.created_at",
	"updatedAt":     "t.updated_at",
	"startDate":     "t.start_date",
	"endDate":       "t.end_date",
	"treatmentName": "t.treatment_name",
	"treatmentType": "t.treatment_type",
	"status":        "t.status",
	"patientName":   "p.name",
}

const treatmentSelect = `SELECT t.*,` + patientJoin + `
	FROM patient_treatments t
	JOIN patients p ON p.id = t.patient_id`

type treatmentRepository struct {
	BaseRepository
}

func NewTreatmentRepository(base BaseRepository) repository.TreatmentRepository {
	return &treatmentRepository{base}
}

func (r *treatmentRepository) Create(ctx context.Context, t *model.PatientTreatment) error {
	query := `
		INSERT INTO patient_treatments (
			id, patient_id, treatment_type, treatment_name, status, start_date, end_date,
			medications, dosage, prescribed_by, outcome, notes, created_by_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	t.ID = uuid.New()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.PatientID, t.TreatmentType, t.TreatmentName, t.Status, t.StartDate,
		t.EndDate, t.Medications, t.Dosage, t.PrescribedBy, t.Outcome, t.Notes,
		t.CreatedByID, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create treatment: %w", mapError(err))
	}
	return nil
}

func (r *treatmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientTreatment, error) {
	var t model.PatientTreatment
	if err := r.db.GetContext(ctx, &t, treatmentSelect+` WHERE t.id = $1 AND p.is_active = TRUE`, id); err != nil {
		return nil, fmt.Errorf("failed to get treatment: %w", mapError(err))
	}
	return &t, nil
}

func (r *treatmentRepository) Update(ctx context.Context, t *model.PatientTreatment) error {
	query := `
		UPDATE patient_treatments SET
			patient_id = $1, treatment_type = $2, treatment_name = $3, status = $4,
			start_date = $5, end_date = $6, medications = $7, dosage = $8,
			prescribed_by = $9, outcome = $10, notes = $11, updated_at = $12
		WHERE id = $13
		RETURNING created_by_id, created_at
	`

	t.UpdatedAt = time.Now().UTC()
	err := r.db.QueryRowxContext(ctx, query,
		t.PatientID, t.TreatmentType, t.TreatmentName, t.Status, t.StartDate,
		t.EndDate, t.Medications, t.Dosage, t.PrescribedBy, t.Outcome, t.Notes,
		t.UpdatedAt, t.ID,
	).Scan(&t.CreatedByID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to update treatment: %w", mapError(err))
	}
	return nil
}

func (r *treatmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patient_treatments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete treatment: %w", err)
	}
	return expectAffected(result)
}

func (r *treatmentRepository) List(ctx context.Context, filter *model.TreatmentFilter) ([]*model.PatientTreatment, int, error) {
	w := newWhere("p.is_active = TRUE")
	recordRange(w, filter.RecordFilter, "t.patient_id", "t.start_date")
	w.search(filter.Search, withPatientSearch("t.treatment_name", "t.medications", "t.prescribed_by")...)
	if filter.TreatmentType != "" {
		w.eq("t.treatment_type", filter.TreatmentType)
	}
	if filter.Status != "" {
		w.eq("t.status", filter.Status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM patient_treatments t JOIN patients p ON p.id = t.patient_id` + w.String()
	if err := r.db.GetContext(ctx, &total, countQuery, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count treatments: %w", err)
	}

	limit, args := w.page(filter.ListParams)
	query := treatmentSelect + w.String() + orderBy(filter.ListParams, treatmentSortColumns) + limit

	out := []*model.PatientTreatment{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list treatments: %w", err)
	}
	return out, total, nil
}
