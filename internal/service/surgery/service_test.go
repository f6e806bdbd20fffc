package surgery

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository/mocks"
	"github.com/jwalitptl/patient-registry/internal/service/event"
	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
)

func TestCreateSurgery(t *testing.T) {
	repo := new(mocks.SurgeryRepository)
	patients := new(mocks.PatientRepository)
	events := &event.Recorder{}
	svc := NewService(repo, patients, events)

	actor := uuid.New()
	ctx := model.WithActor(context.Background(), model.Actor{UserID: actor, Role: model.RoleNurse})
	patientID := uuid.New()
	minutes := 360

	patients.On("Exists", mock.Anything, patientID).Return(true, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(sd *model.SurgeryDetail) bool {
		return sd.SurgeryType == "ELECTIVE" && *sd.DurationMinutes == 360 && *sd.CreatedByID == actor
	})).Return(nil)

	sd, err := svc.CreateSurgery(ctx, &model.SurgeryRequest{
		PatientID:       patientID.String(),
		SurgeryDate:     "2024-05-02",
		SurgeryName:     "Whipple procedure",
		DurationMinutes: &minutes,
	})
	require.NoError(t, err)
	assert.Equal(t, "Whipple procedure", sd.SurgeryName)
	assert.Equal(t, actor, *events.Events()[0].ActorID)
}

func TestGetSurgeryFillsPatientAge(t *testing.T) {
	repo := new(mocks.SurgeryRepository)
	svc := NewService(repo, new(mocks.PatientRepository), event.Noop{})
	svc.now = func() time.Time { return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC) }

	id := uuid.New()
	repo.On("Get", mock.Anything, id).Return(&model.SurgeryDetail{
		Base:    model.Base{ID: id},
		Patient: &model.PatientSummary{DateOfBirth: time.Date(1960, time.January, 2, 0, 0, 0, 0, time.UTC)},
	}, nil)

	sd, err := svc.GetSurgery(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 63, sd.Patient.Age)
}

func TestListSurgeriesRepositoryFailure(t *testing.T) {
	repo := new(mocks.SurgeryRepository)
	svc := NewService(repo, new(mocks.PatientRepository), event.Noop{})
	repo.On("List", mock.Anything, mock.Anything).Return(nil, 0, assert.AnError)

	_, _, err := svc.ListSurgeries(context.Background(), &model.SurgeryFilter{})
	assert.True(t, apperrors.Is(err, apperrors.ErrInternal))
}
