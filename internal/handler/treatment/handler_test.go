package treatment

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-registry/internal/middleware"
	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository/mocks"
	"github.com/jwalitptl/patient-registry/internal/service/event"
	treatmentsvc "github.com/jwalitptl/patient-registry/internal/service/treatment"
	"github.com/jwalitptl/patient-registry/pkg/httputil"
	"github.com/jwalitptl/patient-registry/pkg/validator"
)

func newRouter(t *testing.T, role model.Role, register func(*gin.RouterGroup)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.Setup())

	r := gin.New()
	r.Use(middleware.ErrorHandler(false), func(c *gin.Context) {
		claims := &model.TokenClaims{UserID: uuid.New(), Role: role}
		c.Request = c.Request.WithContext(model.WithActor(c.Request.Context(), claims.Actor()))
		c.Set(middleware.ContextClaims, claims)
		c.Next()
	})
	register(r.Group("/api"))
	return r
}

func do(r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, httputil.Response) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp httputil.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func fieldSet(resp httputil.Response) map[string]bool {
	fields := map[string]bool{}
	for _, fe := range resp.Errors {
		fields[fe.Field] = true
	}
	return fields
}

func TestCreateTreatmentDefaultsToPlanned(t *testing.T) {
	repo, patients, events := new(mocks.TreatmentRepository), new(mocks.PatientRepository), &event.Recorder{}
	r := newRouter(t, model.RoleNurse, NewHandler(treatmentsvc.NewService(repo, patients, events)).RegisterRoutes)
	patientID := uuid.New()

	patients.On("Exists", mock.Anything, patientID).Return(true, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.PatientTreatment")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.PatientTreatment).ID = uuid.New() }).
		Return(nil)

	w, resp := do(r, http.MethodPost, "/api/treatments", gin.H{
		"patientId":     patientID.String(),
		"treatmentType": "MEDICAL",
		"treatmentName": "Tenofovir",
		"startDate":     "2024-01-15",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "PLANNED", resp.Data.(map[string]interface{})["status"])
	assert.Equal(t, []string{"treatment.created"}, events.Types())
}

func TestCreateTreatmentEndBeforeStart(t *testing.T) {
	repo := new(mocks.TreatmentRepository)
	r := newRouter(t, model.RoleNurse, NewHandler(treatmentsvc.NewService(repo, new(mocks.PatientRepository), &event.Recorder{})).RegisterRoutes)

	w, resp := do(r, http.MethodPost, "/api/treatments", gin.H{
		"patientId":     uuid.NewString(),
		"treatmentType": "HERBAL",
		"treatmentName": "Silymarin",
		"startDate":     "2024-01-15",
		"endDate":       "2024-01-01",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := fieldSet(resp)
	assert.True(t, fields["treatmentType"])
	assert.True(t, fields["endDate"])
}

func TestConservativeRouteIsNotAnID(t *testing.T) {
	treatments, conservative := new(mocks.TreatmentRepository), new(mocks.ConservativeTreatmentRepository)
	patients, events := new(mocks.PatientRepository), &event.Recorder{}
	r := newRouter(t, model.RoleStaff, func(g *gin.RouterGroup) {
		NewHandler(treatmentsvc.NewService(treatments, patients, events)).RegisterRoutes(g)
		NewConservativeHandler(treatmentsvc.NewConservativeService(conservative, patients, events)).RegisterRoutes(g)
	})

	conservative.On("List", mock.Anything, mock.AnythingOfType("*model.ConservativeTreatmentFilter")).
		Return([]*model.ConservativeTreatment{}, 0, nil)

	w, resp := do(r, http.MethodGet, "/api/treatments/conservative", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, resp.Data.(map[string]interface{}), "conservativeTreatments")
	treatments.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCreateConservativeDefaultsResponse(t *testing.T) {
	repo, patients, events := new(mocks.ConservativeTreatmentRepository), new(mocks.PatientRepository), &event.Recorder{}
	r := newRouter(t, model.RoleNurse, NewConservativeHandler(treatmentsvc.NewConservativeService(repo, patients, events)).RegisterRoutes)
	patientID := uuid.New()

	patients.On("Exists", mock.Anything, patientID).Return(true, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.ConservativeTreatment")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.ConservativeTreatment).ID = uuid.New() }).
		Return(nil)

	w, resp := do(r, http.MethodPost, "/api/treatments/conservative", gin.H{
		"patientId":     patientID.String(),
		"startDate":     "2024-01-15",
		"dietaryAdvice": "Low salt",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "UNKNOWN", resp.Data.(map[string]interface{})["response"])
	assert.Equal(t, []string{"conservative_treatment.created"}, events.Types())
}
