package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
)

var transplantSortColumns = map[string]string{
	"createdAt":      "e.created_at",
	"updatedAt":      "e.updated_at",
	"evaluationDate": "e.evaluation_date",
	"status":         "e.status",
	"meldScore":      "e.meld_score",
	"patientName":    "p.name",
}

const transplantSelect = `SELECT e.*,` + patientJoin + `
	FROM liver_transplant_evaluations e
	JOIN patients p ON p.id = e.patient_id`

type transplantRepository struct {
	BaseRepository
}

func NewTransplantRepository(base BaseRepository) repository.TransplantRepository {
	return &transplantRepository{base}
}

func (r *transplantRepository) Create(ctx context.Context, e *model.LiverTransplantEvaluation) error {
	query := `
		INSERT INTO liver_transplant_evaluations (
			id, patient_id, evaluation_date, status, hemoglobin, platelets,
			total_bilirubin, albumin, inr, creatinine, sodium, ast, alt, alp,
			hbs_ag, anti_hcv, hiv, anti_hbc, meld_score, child_pugh_class,
			donor_type, donor_relation, recommendation, notes, created_by_id,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27
		)
	`

	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.PatientID, e.EvaluationDate, e.Status, e.Hemoglobin, e.Platelets,
		e.TotalBilirubin, e.Albumin, e.INR, e.Creatinine, e.Sodium, e.AST, e.ALT, e.ALP,
		e.HBsAg, e.AntiHCV, e.HIV, e.AntiHBc, e.MeldScore, e.ChildPughClass,
		e.DonorType, e.DonorRelation, e.Recommendation, e.Notes, e.CreatedByID,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transplant evaluation: %w", mapError(err))
	}
	return nil
}

func (r *transplantRepository) Get(ctx context.Context, id uuid.UUID) (*model.LiverTransplantEvaluation, error) {
	var e model.LiverTransplantEvaluation
	if err := r.db.GetContext(ctx, &e, transplantSelect+` WHERE e.id = $1 AND p.is_active = TRUE`, id); err != nil {
		return nil, fmt.Errorf("failed to get transplant evaluation: %w", mapError(err))
	}
	return &e, nil
}

func (r *transplantRepository) Update(ctx context.Context, e *model.LiverTransplantEvaluation) error {
	query := `
		UPDATE liver_transplant_evaluations SET
			patient_id = $1, evaluation_date = $2, status = $3, hemoglobin = $4,
			platelets = $5, total_bilirubin = $6, albumin = $7, inr = $8,
			creatinine = $9, sodium = $10, ast = $11, alt = $12, alp = $13,
			hbs_ag = $14, anti_hcv = $15, hiv = $16, anti_hbc = $17, meld_score = $18,
			child_pugh_class = $19, donor_type = $20, donor_relation = $21,
			recommendation = $22, notes = $23, updated_at = $24
		WHERE id = $25
		RETURNING created_by_id, created_at
	`

	e.UpdatedAt = time.Now().UTC()
	err := r.db.QueryRowxContext(ctx, query,
		e.PatientID, e.EvaluationDate, e.Status, e.Hemoglobin,
		e.Platelets, e.TotalBilirubin, e.Albumin, e.INR,
		e.Creatinine, e.Sodium, e.AST, e.ALT, e.ALP,
		e.HBsAg, e.AntiHCV, e.HIV, e.AntiHBc, e.MeldScore,
		e.ChildPughClass, e.DonorType, e.DonorRelation,
		e.Recommendation, e.Notes, e.UpdatedAt, e.ID,
	).Scan(&e.CreatedByID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to update transplant evaluation: %w", mapError(err))
	}
	return nil
}

func (r *transplantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM liver_transplant_evaluations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transplant evaluation: %w", err)
	}
	return expectAffected(result)
}

func (r *transplantRepository) List(ctx context.Context, filter *model.TransplantEvaluationFilter) ([]*model.LiverTransplantEvaluation, int, error) {
	w := newWhere("p.is_active = TRUE")
	recordRange(w, filter.RecordFilter, "e.patient_id", "e.evaluation_date")
	w.search(filter.Search, withPatientSearch("e.recommendation", "e.donor_relation", "e.notes")...)
	if filter.Status != "" {
		w.eq("e.status", filter.Status)
	}
	if filter.DonorType != "" {
		w.eq("e.donor_type", filter.DonorType)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM liver_transplant_evaluations e JOIN patients p ON p.id = e.patient_id` + w.String()
	if err := r.db.GetContext(ctx, &total, countQuery, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count transplant evaluations: %w", err)
	}

	limit, args := w.page(filter.ListParams)
	query := transplantSelect + w.String() + orderBy(filter.ListParams, transplantSortColumns) + limit

	out := []*model.LiverTransplantEvaluation{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list transplant evaluations: %w", err)
	}
	return out, total, nil
}
