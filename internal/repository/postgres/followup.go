package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
)

var followUpSortColumns = map[string]string{
	"createdAt":        "f.created_at",
	"updatedAt":        "f.updated_at",
	"followUpDate":     "f.follow_up_date",
	"nextFollowUpDate": "f.next_follow_up_date",
	"clinicalStatus":   "f.clinical_status",
	"patientName":      "p.name",
}

const followUpSelect = `SELECT f.*,` + patientJoin + `
	FROM follow_up_records f
	JOIN patients p ON p.id = f.patient_id`

type followUpRepository struct {
	BaseRepository
}

func NewFollowUpRepository(base BaseRepository) repository.FollowUpRepository {
	return &followUpRepository{base}
}

func (r *followUpRepository) Create(ctx context.Context, f *model.FollowUpRecord) error {
	query := `
		INSERT INTO follow_up_records (
			id, patient_id, follow_up_date, next_follow_up_date, clinical_status,
			complaints, examination, weight, investigations_advised, treatment_advised,
			notes, created_by_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	f.ID = uuid.New()
	f.CreatedAt = time.Now().UTC()
	f.UpdatedAt = f.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.PatientID, f.FollowUpDate, f.NextFollowUpDate, f.ClinicalStatus,
		f.Complaints, f.Examination, f.Weight, f.InvestigationsAdvised, f.TreatmentAdvised,
		f.Notes, f.CreatedByID, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create follow-up: %w", mapError(err))
	}
	return nil
}

func (r *followUpRepository) Get(ctx context.Context, id uuid.UUID) (*model.FollowUpRecord, error) {
	var f model.FollowUpRecord
	if err := r.db.GetContext(ctx, &f, followUpSelect+` WHERE f.id = $1 AND p.is_active = TRUE`, id); err != nil {
		return nil, fmt.Errorf("failed to get follow-up: %w", mapError(err))
	}
	return &f, nil
}

// Update overwrites the record. A changed next visit date re-arms the reminder.
func (r *followUpRepository) Update(ctx context.Context, f *model.FollowUpRecord) error {
	query := `
		UPDATE follow_up_records SET
			patient_id = $1, follow_up_date = $2,
			reminder_sent_at = CASE WHEN next_follow_up_date IS DISTINCT FROM $3 THEN NULL ELSE reminder_sent_at END,
			next_follow_up_date = $3, clinical_status = $4, complaints = $5,
			examination = $6, weight = $7, investigations_advised = $8,
			treatment_advised = $9, notes = $10, updated_at = $11
		WHERE id = $12
		RETURNING reminder_sent_at, created_by_id, created_at
	`

	f.UpdatedAt = time.Now().UTC()
	err := r.db.QueryRowxContext(ctx, query,
		f.PatientID, f.FollowUpDate, f.NextFollowUpDate, f.ClinicalStatus, f.Complaints,
		f.Examination, f.Weight, f.InvestigationsAdvised, f.TreatmentAdvised, f.Notes,
		f.UpdatedAt, f.ID,
	).Scan(&f.ReminderSentAt, &f.CreatedByID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to update follow-up: %w", mapError(err))
	}
	return nil
}

func (r *followUpRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM follow_up_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete follow-up: %w", err)
	}
	return expectAffected(result)
}

func (r *followUpRepository) List(ctx context.Context, filter *model.FollowUpFilter) ([]*model.FollowUpRecord, int, error) {
	w := newWhere("p.is_active = TRUE")
	recordRange(w, filter.RecordFilter, "f.patient_id", "f.follow_up_date")
	w.search(filter.Search, withPatientSearch("f.complaints", "f.examination", "f.notes")...)
	if filter.ClinicalStatus != "" {
		w.eq("f.clinical_status", filter.ClinicalStatus)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM follow_up_records f JOIN patients p ON p.id = f.patient_id` + w.String()
	if err := r.db.GetContext(ctx, &total, countQuery, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count follow-ups: %w", err)
	}

	limit, args := w.page(filter.ListParams)
	query := followUpSelect + w.String() + orderBy(filter.ListParams, followUpSortColumns) + limit

	out := []*model.FollowUpRecord{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list follow-ups: %w", err)
	}
	return out, total, nil
}

// ListDueReminders returns unsent reminders whose next visit falls in [from, to]
// for active patients that have an email address.
func (r *followUpRepository) ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]*model.FollowUpReminder, error) {
	query := `
		SELECT
			f.id AS follow_up_id,
			f.next_follow_up_date,
			p.id AS patient_id,
			p.patient_id AS patient_code,
			p.name AS patient_name,
			p.email AS patient_email
		FROM follow_up_records f
		JOIN patients p ON p.id = f.patient_id
		WHERE f.reminder_sent_at IS NULL
			AND f.next_follow_up_date BETWEEN $1 AND $2
			AND p.is_active = TRUE
			AND p.email <> ''
		ORDER BY f.next_follow_up_date ASC
		LIMIT $3
	`
	out := []*model.FollowUpReminder{}
	if err := r.db.SelectContext(ctx, &out, query, from, to, limit); err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return out, nil
}

func (r *followUpRepository) MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE follow_up_records SET reminder_sent_at = $1 WHERE id = $2 AND reminder_sent_at IS NULL`, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return expectAffected(result)
}
