package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
)

var fileSortColumns = map[string]string{
	"createdAt":   "f.created_at",
	"fileName":    "f.file_name",
	"sizeBytes":   "f.size_bytes",
	"category":    "f.category",
	"patientName": "p.name",
}

const fileSelect = `SELECT f.*,` + patientJoin + `
	FROM patient_files f
	JOIN patients p ON p.id = f.patient_id`

type fileRepository struct {
	BaseRepository
}

func NewFileRepository(base BaseRepository) repository.FileRepository {
	return &fileRepository{base}
}

func (r *fileRepository) Create(ctx context.Context, f *model.PatientFile) error {
	query := `
		INSERT INTO patient_files (
			id, patient_id, file_name, content_type, size_bytes, category,
			description, storage_key, uploaded_by_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.CreatedAt = time.Now().UTC()
	f.UpdatedAt = f.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.PatientID, f.FileName, f.ContentType, f.SizeBytes, f.Category,
		f.Description, f.StorageKey, f.UploadedByID, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", mapError(err))
	}
	return nil
}

func (r *fileRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientFile, error) {
	var f model.PatientFile
	if err := r.db.GetContext(ctx, &f, fileSelect+` WHERE f.id = $1 AND p.is_active = TRUE`, id); err != nil {
		return nil, fmt.Errorf("failed to get file: %w", mapError(err))
	}
	return &f, nil
}

func (r *fileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patient_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return expectAffected(result)
}

func (r *fileRepository) List(ctx context.Context, filter *model.FileFilter) ([]*model.PatientFile, int, error) {
	w := newWhere("p.is_active = TRUE")
	recordRange(w, filter.RecordFilter, "f.patient_id", "f.created_at::date")
	w.search(filter.Search, withPatientSearch("f.file_name", "f.description")...)
	if filter.Category != "" {
		w.eq("f.category", filter.Category)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM patient_files f JOIN patients p ON p.id = f.patient_id` + w.String()
	if err := r.db.GetContext(ctx, &total, countQuery, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count files: %w", err)
	}

	limit, args := w.page(filter.ListParams)
	query := fileSelect + w.String() + orderBy(filter.ListParams, fileSortColumns) + limit

	out := []*model.PatientFile{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list files: %w", err)
	}
	return out, total, nil
}
