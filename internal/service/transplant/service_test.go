package transplant

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
	"github.com/jwalitptl/patient-registry/internal/repository/mocks"
	"github.com/jwalitptl/patient-registry/internal/service/event"
	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
)

func TestCreateEvaluationDefaults(t *testing.T) {
	repo := new(mocks.TransplantRepository)
	patients := new(mocks.PatientRepository)
	events := &event.Recorder{}
	svc := NewService(repo, patients, events)

	patientID := uuid.New()
	meld := 24.0
	patients.On("Exists", mock.Anything, patientID).Return(true, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *model.LiverTransplantEvaluation) bool {
		return e.Status == "PENDING" && e.HBsAg == "NOT_DONE" && e.HIV == "NEGATIVE" && *e.MeldScore == 24
	})).Return(nil)

	_, err := svc.CreateEvaluation(context.Background(), &model.TransplantEvaluationRequest{
		PatientID:      patientID.String(),
		EvaluationDate: "2024-04-01",
		HIV:            "NEGATIVE",
		MeldScore:      &meld,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"transplant_evaluation.created"}, events.Types())
}

func TestDeleteEvaluation(t *testing.T) {
	repo := new(mocks.TransplantRepository)
	events := &event.Recorder{}
	svc := NewService(repo, new(mocks.PatientRepository), events)

	id := uuid.New()
	patientID := uuid.New()
	repo.On("Get", mock.Anything, id).Return(&model.LiverTransplantEvaluation{Base: model.Base{ID: id}, PatientID: patientID}, nil)
	repo.On("Delete", mock.Anything, id).Return(nil)

	require.NoError(t, svc.DeleteEvaluation(context.Background(), id))
	recorded := events.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, patientID, *recorded[0].PatientID)

	missing := uuid.New()
	repo.On("Get", mock.Anything, missing).Return(nil, repository.ErrNotFound)
	err := svc.DeleteEvaluation(context.Background(), missing)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
