package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-registry/internal/middleware"
	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
	"github.com/jwalitptl/patient-registry/internal/repository/mocks"
	authsvc "github.com/jwalitptl/patient-registry/internal/service/auth"
	"github.com/jwalitptl/patient-registry/internal/service/event"
	"github.com/jwalitptl/patient-registry/pkg/httputil"
	"github.com/jwalitptl/patient-registry/pkg/security"
	"github.com/jwalitptl/patient-registry/pkg/validator"
)

type fixture struct {
	router *gin.Engine
	users  *mocks.UserRepository
	hasher security.PasswordHasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.Setup())

	users := new(mocks.UserRepository)
	hasher := security.NewBcryptHasher(4)
	tokens := security.NewTokenManager("test-secret-test-secret-test-secret", time.Hour, "patient-registry")
	svc := authsvc.NewService(users, hasher, tokens, &event.Recorder{})

	r := gin.New()
	r.Use(middleware.ErrorHandler(false))
	api := r.Group("/api")
	protected := api.Group("", middleware.NewAuthMiddleware(svc).Authenticate())
	NewHandler(svc).RegisterRoutes(api, protected)

	return &fixture{router: r, users: users, hasher: hasher}
}

func (f *fixture) do(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, httputil.Response) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var resp httputil.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func (f *fixture) activeUser(t *testing.T, password string) *model.User {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)
	return &model.User{
		Base:         model.Base{ID: uuid.New()},
		Email:        "nurse@example.com",
		PasswordHash: hash,
		FirstName:    "Asha",
		LastName:     "Rao",
		Role:         model.RoleNurse,
		IsActive:     true,
	}
}

func TestLoginThenMe(t *testing.T) {
	f := newFixture(t)
	u := f.activeUser(t, "correct-horse")

	f.users.On("GetByEmail", mock.Anything, "nurse@example.com").Return(u, nil)
	f.users.On("UpdateLastLogin", mock.Anything, u.ID, mock.Anything).Return(nil)
	f.users.On("Get", mock.Anything, u.ID).Return(u, nil)

	w, resp := f.do(http.MethodPost, "/api/auth/login", gin.H{"email": "nurse@example.com", "password": "correct-horse"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	assert.NotContains(t, w.Body.String(), "passwordHash")

	w, resp = f.do(http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nurse@example.com", resp.Data.(map[string]interface{})["email"])
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	u := f.activeUser(t, "correct-horse")
	f.users.On("GetByEmail", mock.Anything, "nurse@example.com").Return(u, nil)

	w, resp := f.do(http.MethodPost, "/api/auth/login", gin.H{"email": "nurse@example.com", "password": "battery-staple"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid credentials", resp.Message)
}

func TestMeRequiresToken(t *testing.T) {
	f := newFixture(t)

	w, resp := f.do(http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, resp.Success)

	w, _ = f.do(http.MethodGet, "/api/auth/me", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	w, resp := f.do(http.MethodPost, "/api/auth/register", gin.H{
		"email":     "invalid-email",
		"password":  "short",
		"firstName": "Asha",
		"lastName":  "Rao",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := map[string]bool{}
	for _, fe := range resp.Errors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.users.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, repository.ErrNotFound).Maybe()
	f.users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

	w, _ := f.do(http.MethodPost, "/api/auth/register", gin.H{
		"email":     "new@example.com",
		"password":  "long-enough",
		"firstName": "New",
		"lastName":  "User",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}
