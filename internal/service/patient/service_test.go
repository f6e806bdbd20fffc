package patient

import (
	"context"
	"testing"
	"time"

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

var fixedNow = time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc           *Service
	patients      *mocks.PatientRepository
	comorbidities *mocks.ComorbidityRepository
	events        *event.Recorder
}

func newFixture() *fixture {
	f := &fixture{
		patients:      new(mocks.PatientRepository),
		comorbidities: new(mocks.ComorbidityRepository),
		events:        &event.Recorder{},
	}
	f.svc = NewService(f.patients, f.comorbidities, f.events)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func float(v float64) *float64 { return &v }

func validRequest() *model.PatientRequest {
	return &model.PatientRequest{
		Name:        "Ravi Kumar",
		DateOfBirth: "1990-06-16",
		Sex:         model.SexMale,
		Mobile:      "9876543210",
		Height:      float(175),
		Weight:      float(70),
	}
}

func TestCreatePatientGeneratesCodeAndDerivedFields(t *testing.T) {
	f := newFixture()
	actor := uuid.New()
	ctx := model.WithActor(context.Background(), model.Actor{UserID: actor, Role: model.RoleNurse})

	f.patients.On("NextPatientCode", mock.Anything).Return("PT000042", nil)
	f.patients.On("Create", mock.Anything, mock.AnythingOfType("*model.Patient")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Patient).ID = uuid.New() }).
		Return(nil)

	p, err := f.svc.CreatePatient(ctx, validRequest())
	require.NoError(t, err)

	assert.Equal(t, "PT000042", p.PatientID)
	require.NotNil(t, p.BMI)
	assert.InDelta(t, 22.9, *p.BMI, 0.001)
	assert.Equal(t, 33, p.Age)
	assert.Equal(t, actor, *p.CreatedByID)
	assert.Equal(t, []string{"patient.created"}, f.events.Types())
}

func TestCreatePatientKeepsSuppliedCode(t *testing.T) {
	f := newFixture()
	req := validRequest()
	req.PatientID = "liv-001"
	req.Weight = nil

	f.patients.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Patient) bool {
		return p.PatientID == "LIV-001" && p.BMI == nil
	})).Return(nil)

	_, err := f.svc.CreatePatient(context.Background(), req)
	require.NoError(t, err)
	f.patients.AssertNotCalled(t, "NextPatientCode", mock.Anything)
}

func TestCreatePatientDuplicateCode(t *testing.T) {
	f := newFixture()
	req := validRequest()
	req.PatientID = "PT000001"
	f.patients.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

	_, err := f.svc.CreatePatient(context.Background(), req)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	assert.Empty(t, f.events.Types())
}

func TestUpdatePatientRejectsCodeChange(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.patients.On("Get", mock.Anything, id).Return(&model.Patient{Base: model.Base{ID: id}, PatientID: "PT000001"}, nil)

	req := validRequest()
	req.PatientID = "PT000002"
	_, err := f.svc.UpdatePatient(context.Background(), id, req)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	assert.Equal(t, "patientId", appErr.Fields[0].Field)
	f.patients.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdatePatientOverwrites(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.patients.On("Get", mock.Anything, id).Return(&model.Patient{Base: model.Base{ID: id}, PatientID: "PT000001"}, nil)
	f.patients.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Patient) bool {
		return p.ID == id && p.PatientID == "PT000001" && p.BMI != nil && p.Email == ""
	})).Return(nil)

	p, err := f.svc.UpdatePatient(context.Background(), id, validRequest())
	require.NoError(t, err)
	assert.Equal(t, 33, p.Age)
	assert.Equal(t, []string{"patient.updated"}, f.events.Types())
}

func TestUpdatePatientNotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.patients.On("Get", mock.Anything, id).Return(nil, repository.ErrNotFound)

	_, err := f.svc.UpdatePatient(context.Background(), id, validRequest())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestDeletePatient(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	actor := uuid.New()
	ctx := model.WithActor(context.Background(), model.Actor{UserID: actor, Role: model.RoleDoctor})

	f.patients.On("SoftDelete", mock.Anything, id, &actor).Return(nil)
	require.NoError(t, f.svc.DeletePatient(ctx, id))
	assert.Equal(t, []string{"patient.deleted"}, f.events.Types())

	missing := uuid.New()
	f.patients.On("SoftDelete", mock.Anything, missing, mock.Anything).Return(repository.ErrNotFound)
	assert.True(t, apperrors.Is(f.svc.DeletePatient(ctx, missing), apperrors.ErrNotFound))
}

func TestGetPatientDetail(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.patients.On("Get", mock.Anything, id).Return(&model.Patient{
		Base:        model.Base{ID: id},
		DateOfBirth: time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC),
	}, nil)
	f.comorbidities.On("ListByPatient", mock.Anything, id).Return([]*model.PatientComorbidity{{ConditionName: "Diabetes"}}, nil)
	f.patients.On("Counts", mock.Anything, id).Return(&model.RecordCounts{Investigations: 3}, nil)

	detail, err := f.svc.GetPatient(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 34, detail.Age)
	assert.Len(t, detail.Comorbidities, 1)
	assert.Equal(t, 3, detail.RecordCounts.Investigations)
}

func TestListPatientsComputesAge(t *testing.T) {
	f := newFixture()
	f.patients.On("List", mock.Anything, mock.Anything).Return([]*model.Patient{
		{DateOfBirth: time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}, 1, nil)

	filter := &model.PatientFilter{}
	out, total, err := f.svc.ListPatients(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 24, out[0].Age)
	assert.Equal(t, 10, filter.Limit)
}

func TestSuggestPatients(t *testing.T) {
	t.Run("short query skips the repository", func(t *testing.T) {
		f := newFixture()
		for _, q := range []string{"", "a", "  r  "} {
			out, err := f.svc.SuggestPatients(context.Background(), q)
			require.NoError(t, err)
			assert.NotNil(t, out)
			assert.Empty(t, out)
		}
		f.patients.AssertNotCalled(t, "Suggest", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("trimmed query with limit", func(t *testing.T) {
		f := newFixture()
		f.patients.On("Suggest", mock.Anything, "ra", SuggestLimit).Return([]*model.PatientSuggestion{
			{Name: "Ravi", DateOfBirth: time.Date(1990, time.June, 16, 0, 0, 0, 0, time.UTC)},
		}, nil)

		out, err := f.svc.SuggestPatients(context.Background(), " ra ")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, 33, out[0].Age)
	})
}

func TestComorbidityRequiresActivePatient(t *testing.T) {
	f := newFixture()
	patientID := uuid.New()
	f.patients.On("Exists", mock.Anything, patientID).Return(false, nil)

	_, err := f.svc.AddComorbidity(context.Background(), patientID, &model.ComorbidityRequest{ConditionName: "Hypertension"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	f.comorbidities.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestComorbidityLifecycle(t *testing.T) {
	f := newFixture()
	patientID := uuid.New()
	id := uuid.New()
	f.patients.On("Exists", mock.Anything, patientID).Return(true, nil)
	f.comorbidities.On("Create", mock.Anything, mock.AnythingOfType("*model.PatientComorbidity")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.PatientComorbidity).ID = id }).
		Return(nil)
	f.comorbidities.On("Update", mock.Anything, mock.MatchedBy(func(c *model.PatientComorbidity) bool {
		return c.ID == id && c.Severity == "SEVERE"
	})).Return(nil)
	f.comorbidities.On("Delete", mock.Anything, patientID, id).Return(nil)

	c, err := f.svc.AddComorbidity(context.Background(), patientID, &model.ComorbidityRequest{ConditionName: "Diabetes"})
	require.NoError(t, err)
	assert.Equal(t, patientID, c.PatientID)

	_, err = f.svc.UpdateComorbidity(context.Background(), patientID, id, &model.ComorbidityRequest{ConditionName: "Diabetes", Severity: "SEVERE"})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteComorbidity(context.Background(), patientID, id))

	assert.Equal(t, []string{"comorbidity.created", "comorbidity.updated", "comorbidity.deleted"}, f.events.Types())
}
