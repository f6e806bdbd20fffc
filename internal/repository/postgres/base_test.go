package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
)

func TestWhereClause(t *testing.T) {
	w := newWhere("p.is_active = TRUE")
	w.eq("i.status", "PENDING")
	w.search("smith", "p.name", "p.patient_id")
	w.add("i.investigation_date >= $%d", "2024-01-01")

	assert.Equal(t,
		" WHERE p.is_active = TRUE AND i.status = $1 AND (p.name ILIKE $2 OR p.patient_id ILIKE $2) AND i.investigation_date >= $3",
		w.String())
	assert.Equal(t, []interface{}{"PENDING", "%smith%", "2024-01-01"}, w.args)

	p := model.ListParams{Page: 3, Limit: 10}
	suffix, args := w.page(p)
	assert.Equal(t, " LIMIT $4 OFFSET $5", suffix)
	assert.Equal(t, []interface{}{"PENDING", "%smith%", "2024-01-01", 10, 20}, args)
	assert.Len(t, w.args, 3, "page must not mutate the count arguments")
}

func TestWhereClauseEmpty(t *testing.T) {
	w := newWhere()
	w.search("", "name")
	assert.Equal(t, "", w.String())
	assert.Empty(t, w.args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}

func TestOrderBy(t *testing.T) {
	cols := map[string]string{"createdAt": "i.created_at", "status": "i.status"}

	assert.Equal(t, " ORDER BY i.status ASC", orderBy(model.ListParams{SortBy: "status", SortOrder: "asc"}, cols))
	assert.Equal(t, " ORDER BY i.created_at DESC", orderBy(model.ListParams{SortBy: "name; DROP TABLE users", SortOrder: "desc"}, cols))
	assert.Equal(t, " ORDER BY i.created_at DESC", orderBy(model.ListParams{}, cols))
}

func TestRecordRange(t *testing.T) {
	id := uuid.New()
	w := newWhere()
	recordRange(w, model.RecordFilter{PatientID: id.String(), FromDate: "2024-01-01", ToDate: "2024-02-01"}, "t.patient_id", "t.start_date")

	assert.Equal(t, " WHERE t.patient_id = $1 AND t.start_date >= $2 AND t.start_date <= $3", w.String())
	require.Len(t, w.args, 3)
	assert.Equal(t, id, w.args[0])
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil))
	assert.ErrorIs(t, mapError(sql.ErrNoRows), repository.ErrNotFound)
	assert.ErrorIs(t, mapError(fmt.Errorf("wrapped: %w", sql.ErrNoRows)), repository.ErrNotFound)

	dup := &pq.Error{Code: "23505", Constraint: "patients_patient_id_key"}
	err := mapError(dup)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.Contains(t, err.Error(), "patients_patient_id_key")

	other := errors.New("connection reset")
	assert.Equal(t, other, mapError(other))
}

func TestMigratorLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"010_late.sql":  {Data: []byte("SELECT 10;")},
		"002_next.sql":  {Data: []byte("SELECT 2;")},
		"001_first.sql": {Data: []byte("SELECT 1;")},
		"README.md":     {Data: []byte("docs")},
		"draft.sql":     {Data: []byte("SELECT 0;")},
	}

	migrations, err := NewMigratorFS(nil, fsys).Load()
	require.NoError(t, err)
	require.Len(t, migrations, 3)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "001_first.sql", migrations[0].Name)
	assert.Equal(t, 2, migrations[1].Version)
	assert.Equal(t, 10, migrations[2].Version)
}

func TestEmbeddedMigrationsCreateEveryTable(t *testing.T) {
	migrations, err := NewMigrator(nil).Load()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	schema := migrations[0].SQL
	for _, table := range []string{
		"users", "patients", "patient_comorbidities", "patient_investigations",
		"patient_treatments", "conservative_treatments", "surgery_details",
		"liver_transplant_evaluations", "follow_up_records", "patient_files", "outbox_events",
	} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (", table)
	}
	assert.Contains(t, schema, "patient_code_seq")
}

func TestEmbeddedMigrationsWidenBMI(t *testing.T) {
	migrations, err := NewMigrator(nil).Load()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(migrations), 2)

	assert.Equal(t, 2, migrations[1].Version)
	assert.Contains(t, migrations[1].SQL, "ALTER COLUMN bmi TYPE NUMERIC(6,1)")
}
