package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
)

const uniqueViolation = "23505"

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// mapError translates driver errors into repository sentinels, keeping the
// original error in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, pqErr.Constraint)
	}
	return err
}

// expectAffected turns an UPDATE or DELETE that touched no rows into ErrNotFound.
func expectAffected(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// whereClause accumulates AND-ed conditions with positional arguments.
type whereClause struct {
	conds []string
	args  []interface{}
}

func newWhere(fixed ...string) *whereClause {
	return &whereClause{conds: append([]string(nil), fixed...)}
}

// add appends cond with value bound to the next placeholder. Every %d in cond
// is replaced with that placeholder's index.
func (w *whereClause) add(cond string, value interface{}) {
	w.args = append(w.args, value)
	n := len(w.args)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "%d", fmt.Sprint(n)))
}

func (w *whereClause) eq(column string, value interface{}) {
	w.add(column+" = $%d", value)
}

// search matches term case-insensitively as a substring of any column.
func (w *whereClause) search(term string, columns ...string) {
	if term == "" || len(columns) == 0 {
		return
	}
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = col + " ILIKE $%d"
	}
	w.add("("+strings.Join(parts, " OR ")+")", "%"+escapeLike(term)+"%")
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page returns the LIMIT/OFFSET suffix and the arguments including them.
func (w *whereClause) page(p model.ListParams) (string, []interface{}) {
	args := append(append([]interface{}(nil), w.args...), p.Limit, p.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// orderBy renders an ORDER BY clause restricted to the whitelisted sort keys.
// Unknown keys fall back to createdAt.
func orderBy(p model.ListParams, columns map[string]string) string {
	col, ok := columns[p.SortBy]
	if !ok {
		col = columns["createdAt"]
	}
	dir := "DESC"
	if p.SortOrder == "asc" {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir)
}

// recordRange filters a sub-record list by patient and by its date column.
func recordRange(w *whereClause, f model.RecordFilter, patientCol, dateCol string) {
	if id := f.PatientUUID(); id != nil {
		w.eq(patientCol, *id)
	}
	from, to := f.Range()
	if from != nil {
		w.add(dateCol+" >= $%d", *from)
	}
	if to != nil {
		w.add(dateCol+" <= $%d", *to)
	}
}

// patientJoin selects the joined patient summary into the nested Patient field.
const patientJoin = `
	p.id AS "patient.id",
	p.patient_id AS "patient.patient_id",
	p.name AS "patient.name",
	p.sex AS "patient.sex",
	p.date_of_birth AS "patient.date_of_birth"`

// patientSearchColumns are the patient columns every sub-record search covers.
var patientSearchColumns = []string{"p.name", "p.patient_id"}

func withPatientSearch(columns ...string) []string {
	return append(columns, patientSearchColumns...)
}
