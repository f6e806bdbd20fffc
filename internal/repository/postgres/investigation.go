package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
)

var investigationSortColumns = map[string]string{
	"createdAt":         "i.created_at",
	"updatedAt":         "i.updated_at",
	"investigationDate": "i.investigation_date",
	"scheduledDate":     "i.scheduled_date",
	"reportDate":        "i.report_date",
	"investigationType": "i.investigation_type",
	"status":            "i.status",
	"patientName":       "p.name",
}

const investigationSelect = `SELECT i.*,` + patientJoin + `
	FROM patient_investigations i
	JOIN patients p ON p.id = i.patient_id`

type investigationRepository struct {
	BaseRepository
}

func NewInvestigationRepository(base BaseRepository) repository.InvestigationRepository {
	return &investigationRepository{base}
}

func (r *investigationRepository) Create(ctx context.Context, inv *model.PatientInvestigation) error {
	query := `
		INSERT INTO patient_investigations (
			id, patient_id, investigation_type, status, scheduled_date, investigation_date,
			report_date, performed_at, findings, impression, recommendations, notes,
			created_by_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	inv.ID = uuid.New()
	inv.CreatedAt = time.Now().UTC()
	inv.UpdatedAt = inv.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.PatientID, inv.InvestigationType, inv.Status, inv.ScheduledDate,
		inv.InvestigationDate, inv.ReportDate, inv.PerformedAt, inv.Findings,
		inv.Impression, inv.Recommendations, inv.Notes, inv.CreatedByID,
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create investigation: %w", mapError(err))
	}
	return nil
}

func (r *investigationRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientInvestigation, error) {
	var inv model.PatientInvestigation
	if err := r.db.GetContext(ctx, &inv, investigationSelect+` WHERE i.id = $1 AND p.is_active = TRUE`, id); err != nil {
		return nil, fmt.Errorf("failed to get investigation: %w", mapError(err))
	}
	return &inv, nil
}

func (r *investigationRepository) Update(ctx context.Context, inv *model.PatientInvestigation) error {
	query := `
		UPDATE patient_investigations SET
			patient_id = $1, investigation_type = $2, status = $3, scheduled_date = $4,
			investigation_date = $5, report_date = $6, performed_at = $7, findings = $8,
			impression = $9, recommendations = $10, notes = $11, updated_at = $12
		WHERE id = $13
		RETURNING created_by_id, created_at
	`

	inv.UpdatedAt = time.Now().UTC()
	err := r.db.QueryRowxContext(ctx, query,
		inv.PatientID, inv.InvestigationType, inv.Status, inv.ScheduledDate,
		inv.InvestigationDate, inv.ReportDate, inv.PerformedAt, inv.Findings,
		inv.Impression, inv.Recommendations, inv.Notes, inv.UpdatedAt, inv.ID,
	).Scan(&inv.CreatedByID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to update investigation: %w", mapError(err))
	}
	return nil
}

func (r *investigationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patient_investigations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete investigation: %w", err)
	}
	return expectAffected(result)
}

func (r *investigationRepository) List(ctx context.Context, filter *model.InvestigationFilter) ([]*model.PatientInvestigation, int, error) {
	w := newWhere("p.is_active = TRUE")
	recordRange(w, filter.RecordFilter, "i.patient_id", "i.investigation_date")
	w.search(filter.Search, withPatientSearch("i.findings", "i.impression", "i.performed_at")...)
	if filter.InvestigationType != "" {
		w.eq("i.investigation_type", filter.InvestigationType)
	}
	if filter.Status != "" {
		w.eq("i.status", filter.Status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM patient_investigations i JOIN patients p ON p.id = i.patient_id` + w.String()
	if err := r.db.GetContext(ctx, &total, countQuery, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count investigations: %w", err)
	}

	limit, args := w.page(filter.ListParams)
	query := investigationSelect + w.String() + orderBy(filter.ListParams, investigationSortColumns) + limit

	out := []*model.PatientInvestigation{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list investigations: %w", err)
	}
	return out, total, nil
}
