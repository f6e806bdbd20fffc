package followup

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
	followupsvc "github.com/jwalitptl/patient-registry/internal/service/followup"
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

func setup(t *testing.T, role model.Role) (*gin.Engine, *mocks.FollowUpRepository, *mocks.PatientRepository, *event.Recorder) {
	repo, patients, events := new(mocks.FollowUpRepository), new(mocks.PatientRepository), &event.Recorder{}
	r := newRouter(t, role, NewHandler(followupsvc.NewService(repo, patients, events)).RegisterRoutes)
	return r, repo, patients, events
}

func TestCreateFollowUpDefaultsToStable(t *testing.T) {
	r, repo, patients, events := setup(t, model.RoleNurse)
	patientID := uuid.New()

	patients.On("Exists", mock.Anything, patientID).Return(true, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.FollowUpRecord")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.FollowUpRecord).ID = uuid.New() }).
		Return(nil)

	w, resp := do(r, http.MethodPost, "/api/follow-up", gin.H{
		"patientId":        patientID.String(),
		"followUpDate":     "2024-05-01",
		"nextFollowUpDate": "2024-06-01",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "STABLE", data["clinicalStatus"])
	assert.Equal(t, []string{"follow_up.created"}, events.Types())
}

func TestCreateFollowUpNextVisitBeforeVisit(t *testing.T) {
	r, _, _, _ := setup(t, model.RoleNurse)

	w, resp := do(r, http.MethodPost, "/api/follow-up", gin.H{
		"patientId":        uuid.NewString(),
		"followUpDate":     "2024-05-01",
		"nextFollowUpDate": "2024-04-01",
		"clinicalStatus":   "WORSE",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := fieldSet(resp)
	assert.True(t, fields["nextFollowUpDate"])
	assert.True(t, fields["clinicalStatus"])
}

func TestListFollowUps(t *testing.T) {
	r, repo, _, _ := setup(t, model.RoleStaff)
	repo.On("List", mock.Anything, mock.AnythingOfType("*model.FollowUpFilter")).
		Return([]*model.FollowUpRecord{{Base: model.Base{ID: uuid.New()}}}, 1, nil)

	w, resp := do(r, http.MethodGet, "/api/follow-up", nil)

	require.Equal(t, http.StatusOK, w.Code)
	items := resp.Data.(map[string]interface{})["followUps"].([]interface{})
	assert.Len(t, items, 1)
}
