package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
)

var surgerySortColumns = map[string]string{
	"createdAt":        "s.created_at",
	"updatedAt":        "s.updated_at",
	"surgeryDate":      "s.surgery_date",
	"surgeryName":      "s.surgery_name",
	"surgeryType":      "s.surgery_type",
	"nextFollowUpDate": "s.next_follow_up_date",
	"patientName":      "p.name",
}

const surgerySelect = `SELECT s.*,` + patientJoin + `
	FROM surgery_details s
	JOIN patients p ON p.id = s.patient_id`

type surgeryRepository struct {
	BaseRepository
}

func NewSurgeryRepository(base BaseRepository) repository.SurgeryRepository {
	return &surgeryRepository{base}
}

func (r *surgeryRepository) Create(ctx context.Context, s *model.SurgeryDetail) error {
	query := `
		INSERT INTO surgery_details (
			id, patient_id, surgery_date, surgery_name, surgery_type, surgeon,
			anesthesia_type, duration_minutes, findings, complications, outcome,
			next_follow_up_date, notes, created_by_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	s.ID = uuid.New()
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.PatientID, s.SurgeryDate, s.SurgeryName, s.SurgeryType, s.Surgeon,
		s.AnesthesiaType, s.DurationMinutes, s.Findings, s.Complications, s.Outcome,
		s.NextFollowUpDate, s.Notes, s.CreatedByID, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create surgery: %w", mapError(err))
	}
	return nil
}

func (r *surgeryRepository) Get(ctx context.Context, id uuid.UUID) (*model.SurgeryDetail, error) {
	var s model.SurgeryDetail
	if err := r.db.GetContext(ctx, &s, surgerySelect+` WHERE s.id = $1 AND p.is_active = TRUE`, id); err != nil {
		return nil, fmt.Errorf("failed to get surgery: %w", mapError(err))
	}
	return &s, nil
}

func (r *surgeryRepository) Update(ctx context.Context, s *model.SurgeryDetail) error {
	query := `
		UPDATE surgery_details SET
			patient_id = $1, surgery_date = $2, surgery_name = $3, surgery_type = $4,
			surgeon = $5, anesthesia_type = $6, duration_minutes = $7, findings = $8,
			complications = $9, outcome = $10, next_follow_up_date = $11, notes = $12,
			updated_at = $13
		WHERE id = $14
		RETURNING created_by_id, created_at
	`

	s.UpdatedAt = time.Now().UTC()
	err := r.db.QueryRowxContext(ctx, query,
		s.PatientID, s.SurgeryDate, s.SurgeryName, s.SurgeryType, s.Surgeon,
		s.AnesthesiaType, s.DurationMinutes, s.Findings, s.Complications, s.Outcome,
		s.NextFollowUpDate, s.Notes, s.UpdatedAt, s.ID,
	).Scan(&s.CreatedByID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to update surgery: %w", mapError(err))
	}
	return nil
}

func (r *surgeryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM surgery_details WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete surgery: %w", err)
	}
	return expectAffected(result)
}

func (r *surgeryRepository) List(ctx context.Context, filter *model.SurgeryFilter) ([]*model.SurgeryDetail, int, error) {
	w := newWhere("p.is_active = TRUE")
	recordRange(w, filter.RecordFilter, "s.patient_id", "s.surgery_date")
	w.search(filter.Search, withPatientSearch("s.surgery_name", "s.surgeon", "s.findings")...)
	if filter.SurgeryType != "" {
		w.eq("s.surgery_type", filter.SurgeryType)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM surgery_details s JOIN patients p ON p.id = s.patient_id` + w.String()
	if err := r.db.GetContext(ctx, &total, countQuery, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count surgeries: %w", err)
	}

	limit, args := w.page(filter.ListParams)
	query := surgerySelect + w.String() + orderBy(filter.ListParams, surgerySortColumns) + limit

	out := []*model.SurgeryDetail{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list surgeries: %w", err)
	}
	return out, total, nil
}
