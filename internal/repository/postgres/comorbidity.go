package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
)

type comorbidityRepository struct {
	BaseRepository
}

func NewComorbidityRepository(base BaseRepository) repository.ComorbidityRepository {
	return &comorbidityRepository{base}
}

func (r *comorbidityRepository) Create(ctx context.Context, c *model.PatientComorbidity) error {
	query := `
		INSERT INTO patient_comorbidities (
			id, patient_id, condition_name, diagnosed_date, severity,
			is_controlled, medications, notes, created_by_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	c.ID = uuid.New()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.PatientID, c.ConditionName, c.DiagnosedDate, c.Severity,
		c.IsControlled, c.Medications, c.Notes, c.CreatedByID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comorbidity: %w", mapError(err))
	}
	return nil
}

func (r *comorbidityRepository) Get(ctx context.Context, patientID, id uuid.UUID) (*model.PatientComorbidity, error) {
	var c model.PatientComorbidity
	query := `SELECT * FROM patient_comorbidities WHERE id = $1 AND patient_id = $2`
	if err := r.db.GetContext(ctx, &c, query, id, patientID); err != nil {
		return nil, fmt.Errorf("failed to get comorbidity: %w", mapError(err))
	}
	return &c, nil
}

func (r *comorbidityRepository) Update(ctx context.Context, c *model.PatientComorbidity) error {
	query := `
		UPDATE patient_comorbidities SET
			condition_name = $1, diagnosed_date = $2, severity = $3, is_controlled = $4,
			medications = $5, notes = $6, updated_at = $7
		WHERE id = $8 AND patient_id = $9
		RETURNING created_by_id, created_at
	`

	c.UpdatedAt = time.Now().UTC()
	err := r.db.QueryRowxContext(ctx, query,
		c.ConditionName, c.DiagnosedDate, c.Severity, c.IsControlled,
		c.Medications, c.Notes, c.UpdatedAt, c.ID, c.PatientID,
	).Scan(&c.CreatedByID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to update comorbidity: %w", mapError(err))
	}
	return nil
}

func (r *comorbidityRepository) Delete(ctx context.Context, patientID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM patient_comorbidities WHERE id = $1 AND patient_id = $2`, id, patientID)
	if err != nil {
		return fmt.Errorf("failed to delete comorbidity: %w", err)
	}
	return expectAffected(result)
}

func (r *comorbidityRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientComorbidity, error) {
	out := []*model.PatientComorbidity{}
	query := `SELECT * FROM patient_comorbidities WHERE patient_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &out, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list comorbidities: %w", err)
	}
	return out, nil
}
