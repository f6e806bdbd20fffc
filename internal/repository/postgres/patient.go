package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
)

const patientCodeFormat = "PT%06d"

var patientSortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"name":        "name",
	"patientId":   "patient_id",
	"dateOfBirth": "date_of_birth",
	"meldScore":   "meld_score",
}

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, patient_id, name, date_of_birth, sex, mobile, email, aadhar_number,
			address_line, city, state, pincode, primary_disease, height, weight, bmi,
			blood_group, meld_score, transplant_type, is_active, created_by_id,
			updated_by_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
		)
	`

	patient.ID = uuid.New()
	patient.CreatedAt = time.Now().UTC()
	patient.UpdatedAt = patient.CreatedAt
	patient.IsActive = true

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.PatientID,
		patient.Name,
		patient.DateOfBirth,
		patient.Sex,
		patient.Mobile,
		patient.Email,
		patient.AadharNumber,
		patient.AddressLine,
		patient.City,
		patient.State,
		patient.Pincode,
		patient.PrimaryDisease,
		patient.Height,
		patient.Weight,
		patient.BMI,
		patient.BloodGroup,
		patient.MeldScore,
		patient.TransplantType,
		patient.IsActive,
		patient.CreatedByID,
		patient.UpdatedByID,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", mapError(err))
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	query := `SELECT * FROM patients WHERE id = $1 AND is_active = TRUE`
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", mapError(err))
	}
	return &patient, nil
}

// Update overwrites every mutable column. The patient code is never changed.
func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET
			name = $1, date_of_birth = $2, sex = $3, mobile = $4, email = $5,
			aadhar_number = $6, address_line = $7, city = $8, state = $9, pincode = $10,
			primary_disease = $11, height = $12, weight = $13, bmi = $14, blood_group = $15,
			meld_score = $16, transplant_type = $17, updated_by_id = $18, updated_at = $19
		WHERE id = $20 AND is_active = TRUE
		RETURNING patient_id, is_active, created_by_id, created_at
	`

	patient.UpdatedAt = time.Now().UTC()
	row := r.db.QueryRowxContext(ctx, query,
		patient.Name,
		patient.DateOfBirth,
		patient.Sex,
		patient.Mobile,
		patient.Email,
		patient.AadharNumber,
		patient.AddressLine,
		patient.City,
		patient.State,
		patient.Pincode,
		patient.PrimaryDisease,
		patient.Height,
		patient.Weight,
		patient.BMI,
		patient.BloodGroup,
		patient.MeldScore,
		patient.TransplantType,
		patient.UpdatedByID,
		patient.UpdatedAt,
		patient.ID,
	)
	err := row.Scan(&patient.PatientID, &patient.IsActive, &patient.CreatedByID, &patient.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", mapError(err))
	}
	return nil
}

func (r *patientRepository) SoftDelete(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error {
	query := `
		UPDATE patients
		SET is_active = FALSE, deleted_at = NOW(), updated_at = NOW(), updated_by_id = $1
		WHERE id = $2 AND is_active = TRUE
	`
	result, err := r.db.ExecContext(ctx, query, actorID, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return expectAffected(result)
}

func patientWhere(filter *model.PatientFilter) *whereClause {
	w := newWhere("is_active = TRUE")
	w.search(filter.Search, "name", "patient_id", "mobile", "email", "primary_disease")
	if filter.Sex != "" {
		w.eq("sex", filter.Sex)
	}
	if filter.BloodGroup != "" {
		w.eq("blood_group", filter.BloodGroup)
	}
	if filter.TransplantType != "" {
		w.eq("transplant_type", filter.TransplantType)
	}
	if filter.PrimaryDisease != "" {
		w.add("primary_disease ILIKE $%d", "%"+escapeLike(filter.PrimaryDisease)+"%")
	}
	return w
}

func (r *patientRepository) List(ctx context.Context, filter *model.PatientFilter) ([]*model.Patient, int, error) {
	w := patientWhere(filter)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM patients`+w.String(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	limit, args := w.page(filter.ListParams)
	query := `SELECT * FROM patients` + w.String() + orderBy(filter.ListParams, patientSortColumns) + limit

	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}

func (r *patientRepository) ListForExport(ctx context.Context, filter *model.PatientFilter, max int) ([]*model.Patient, error) {
	w := patientWhere(filter)
	args := append(w.args, max)
	query := fmt.Sprintf(`SELECT * FROM patients%s%s LIMIT $%d`,
		w.String(), orderBy(filter.ListParams, patientSortColumns), len(args))

	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to export patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1 AND is_active = TRUE)`
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("failed to check patient: %w", err)
	}
	return exists, nil
}

func (r *patientRepository) NextPatientCode(ctx context.Context) (string, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT nextval('patient_code_seq')`); err != nil {
		return "", fmt.Errorf("failed to allocate patient code: %w", err)
	}
	return fmt.Sprintf(patientCodeFormat, n), nil
}

func (r *patientRepository) Suggest(ctx context.Context, q string, limit int) ([]*model.PatientSuggestion, error) {
	query := `
		SELECT id, patient_id, name, sex, mobile, date_of_birth
		FROM patients
		WHERE is_active = TRUE AND (name ILIKE $1 OR patient_id ILIKE $1)
		ORDER BY name ASC
		LIMIT $2
	`
	out := []*model.PatientSuggestion{}
	if err := r.db.SelectContext(ctx, &out, query, "%"+escapeLike(q)+"%", limit); err != nil {
		return nil, fmt.Errorf("failed to suggest patients: %w", err)
	}
	return out, nil
}

func (r *patientRepository) Counts(ctx context.Context, id uuid.UUID) (*model.RecordCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM patient_investigations WHERE patient_id = $1) AS investigations,
			(SELECT COUNT(*) FROM patient_treatments WHERE patient_id = $1) AS treatments,
			(SELECT COUNT(*) FROM conservative_treatments WHERE patient_id = $1) AS conservative_treatments,
			(SELECT COUNT(*) FROM surgery_details WHERE patient_id = $1) AS surgeries,
			(SELECT COUNT(*) FROM liver_transplant_evaluations WHERE patient_id = $1) AS transplant_evaluations,
			(SELECT COUNT(*) FROM follow_up_records WHERE patient_id = $1) AS follow_ups,
			(SELECT COUNT(*) FROM patient_files WHERE patient_id = $1) AS files
	`
	var counts model.RecordCounts
	if err := r.db.GetContext(ctx, &counts, query, id); err != nil {
		return nil, fmt.Errorf("failed to count patient records: %w", err)
	}
	return &counts, nil
}
