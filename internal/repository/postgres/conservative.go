package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
)

var conservativeSortColumns = map[string]string{
	"createdAt":      "c.created_at",
	"updatedAt":      "c.updated_at",
	"startDate":      "c.start_date",
	"endDate":        "c.end_date",
	"nextReviewDate": "c.next_review_date",
	"response":       "c.response",
	"patientName":    "p.name",
}

const conservativeSelect = `SELECT c.*,` + patientJoin + `
	FROM conservative_treatments c
	JOIN patients p ON p.id = c.patient_id`

type conservativeTreatmentRepository struct {
	BaseRepository
}

func NewConservativeTreatmentRepository(base BaseRepository) repository.ConservativeTreatmentRepository {
	return &conservativeTreatmentRepository{base}
}

func (r *conservativeTreatmentRepository) Create(ctx context.Context, t *model.ConservativeTreatment) error {
	query := `
		INSERT INTO conservative_treatments (
			id, patient_id, start_date, end_date, medications, dietary_advice,
			lifestyle_advice, response, next_review_date, notes, created_by_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	t.ID = uuid.New()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.PatientID, t.StartDate, t.EndDate, t.Medications, t.DietaryAdvice,
		t.LifestyleAdvice, t.Response, t.NextReviewDate, t.Notes, t.CreatedByID,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create conservative treatment: %w", mapError(err))
	}
	return nil
}

func (r *conservativeTreatmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.ConservativeTreatment, error) {
	var t model.ConservativeTreatment
	if err := r.db.GetContext(ctx, &t, conservativeSelect+` WHERE c.id = $1 AND p.is_active = TRUE`, id); err != nil {
		return nil, fmt.Errorf("failed to get conservative treatment: %w", mapError(err))
	}
	return &t, nil
}

func (r *conservativeTreatmentRepository) Update(ctx context.Context, t *model.ConservativeTreatment) error {
	query := `
		UPDATE conservative_treatments SET
			patient_id = $1, start_date = $2, end_date = $3, medications = $4,
			dietary_advice = $5, lifestyle_advice = $6, response = $7,
			next_review_date = $8, notes = $9, updated_at = $10
		WHERE id = $11
		RETURNING created_by_id, created_at
	`

	t.UpdatedAt = time.Now().UTC()
	err := r.db.QueryRowxContext(ctx, query,
		t.PatientID, t.StartDate, t.EndDate, t.Medications, t.DietaryAdvice,
		t.LifestyleAdvice, t.Response, t.NextReviewDate, t.Notes, t.UpdatedAt, t.ID,
	).Scan(&t.CreatedByID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to update conservative treatment: %w", mapError(err))
	}
	return nil
}

func (r *conservativeTreatmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM conservative_treatments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conservative treatment: %w", err)
	}
	return expectAffected(result)
}

func (r *conservativeTreatmentRepository) List(ctx context.Context, filter *model.ConservativeTreatmentFilter) ([]*model.ConservativeTreatment, int, error) {
	w := newWhere("p.is_active = TRUE")
	recordRange(w, filter.RecordFilter, "c.patient_id", "c.start_date")
	w.search(filter.Search, withPatientSearch("c.medications", "c.dietary_advice", "c.notes")...)
	if filter.Response != "" {
		w.eq("c.response", filter.Response)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM conservative_treatments c JOIN patients p ON p.id = c.patient_id` + w.String()
	if err := r.db.GetContext(ctx, &total, countQuery, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count conservative treatments: %w", err)
	}

	limit, args := w.page(filter.ListParams)
	query := conservativeSelect + w.String() + orderBy(filter.ListParams, conservativeSortColumns) + limit

	out := []*model.ConservativeTreatment{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list conservative treatments: %w", err)
	}
	return out, total, nil
}
