package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-registry/internal/config"
	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
)

// newTestDB migrates a throwaway schema on TEST_DATABASE_URL. The pool is
// pinned to one connection so that search_path sticks.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{URL: url, MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)

	schema := fmt.Sprintf("it_%d", time.Now().UnixNano())
	_, err = db.ExecContext(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "SET search_path TO "+schema)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		db.Close()
	})

	applied, err := NewMigrator(db).Up(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, applied, 2)
	return db
}

func TestRepositoriesAgainstPostgres(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := NewBaseRepository(db)
	patients := NewPatientRepository(base)

	code, err := patients.NextPatientCode(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^PT\d{6}$`, code)

	height, weight := 50.0, 300.0
	p := &model.Patient{
		PatientID:   code,
		Name:        "Ravi Kumar",
		DateOfBirth: time.Date(1980, 3, 1, 0, 0, 0, 0, time.UTC),
		Sex:         model.SexMale,
		Height:      &height,
		Weight:      &weight,
	}
	p.ComputeBMI()

	t.Run("patient with extreme bmi round trips", func(t *testing.T) {
		require.NoError(t, patients.Create(ctx, p))

		got, err := patients.Get(ctx, p.ID)
		require.NoError(t, err)
		require.NotNil(t, got.BMI)
		assert.Equal(t, 1200.0, *got.BMI)
	})

	t.Run("duplicate patient code", func(t *testing.T) {
		dup := *p
		err := patients.Create(ctx, &dup)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("last page is empty, not an error", func(t *testing.T) {
		filter := &model.PatientFilter{ListParams: model.ListParams{Page: model.MaxPage}}
		filter.Normalize()

		items, total, err := patients.List(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Empty(t, items)
	})

	t.Run("sub-record list embeds the patient", func(t *testing.T) {
		investigations := NewInvestigationRepository(base)
		done := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
		require.NoError(t, investigations.Create(ctx, &model.PatientInvestigation{
			PatientID:         p.ID,
			InvestigationType: "ULTRASONOGRAPHY",
			Status:            "COMPLETED",
			InvestigationDate: &done,
			Findings:          "Coarse echotexture",
		}))

		filter := &model.InvestigationFilter{RecordFilter: model.RecordFilter{PatientID: p.ID.String()}}
		filter.Normalize()

		items, total, err := investigations.List(ctx, filter)
		require.NoError(t, err)
		require.Equal(t, 1, total)
		require.NotNil(t, items[0].Patient)
		assert.Equal(t, code, items[0].Patient.PatientID)
		assert.Equal(t, "Ravi Kumar", items[0].Patient.Name)
	})

	t.Run("outbox claim, process and purge", func(t *testing.T) {
		outbox := NewOutboxRepository(base)
		require.NoError(t, outbox.Create(ctx, &model.OutboxEvent{
			EventType:     model.EventType(model.AggregatePatient, model.ActionCreated),
			AggregateType: model.AggregatePatient,
			AggregateID:   p.ID,
			Payload:       []byte(`{}`),
		}))

		claimed, err := outbox.ClaimPending(ctx, 10, time.Minute)
		require.NoError(t, err)
		require.Len(t, claimed, 1)
		assert.Equal(t, model.OutboxStatusProcessing, claimed[0].Status)

		again, err := outbox.ClaimPending(ctx, 10, time.Minute)
		require.NoError(t, err)
		assert.Empty(t, again)

		require.NoError(t, outbox.MarkProcessed(ctx, claimed[0].ID))
		purged, err := outbox.DeleteProcessedBefore(ctx, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), purged)

		assert.ErrorIs(t, outbox.MarkProcessed(ctx, uuid.New()), repository.ErrNotFound)
	})
}
