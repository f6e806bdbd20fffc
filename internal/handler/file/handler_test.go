package file

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-registry/internal/middleware"
	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/service/file"
	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
	"github.com/jwalitptl/patient-registry/pkg/httputil"
	"github.com/jwalitptl/patient-registry/pkg/validator"
)

type fakeService struct {
	uploaded   *model.FileUploadForm
	uploadBody string
	stored     *model.PatientFile
	content    string
	exportErr  error
}

func (f *fakeService) UploadFile(ctx context.Context, form *model.FileUploadForm, upload file.Upload) (*model.PatientFile, error) {
	body, err := io.ReadAll(upload.Body)
	if err != nil {
		return nil, err
	}
	f.uploaded = form
	f.uploadBody = string(body)
	return &model.PatientFile{Base: model.Base{ID: uuid.New()}, FileName: upload.FileName, SizeBytes: upload.Size}, nil
}

func (f *fakeService) GetFile(ctx context.Context, id uuid.UUID) (*model.PatientFile, error) {
	if f.stored == nil || f.stored.ID != id {
		return nil, apperrors.NotFound("file")
	}
	return f.stored, nil
}

func (f *fakeService) OpenFile(ctx context.Context, id uuid.UUID) (*model.PatientFile, io.ReadCloser, error) {
	meta, err := f.GetFile(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return meta, io.NopCloser(strings.NewReader(f.content)), nil
}

func (f *fakeService) DeleteFile(ctx context.Context, id uuid.UUID) error {
	_, err := f.GetFile(ctx, id)
	return err
}

func (f *fakeService) ListFiles(ctx context.Context, filter *model.FileFilter) ([]*model.PatientFile, int, error) {
	filter.Normalize()
	return []*model.PatientFile{}, 0, nil
}

func (f *fakeService) ExportPatients(ctx context.Context, filter *model.PatientFilter, w io.Writer) (int, error) {
	if f.exportErr != nil {
		return 0, f.exportErr
	}
	_, err := w.Write([]byte("PK-workbook"))
	return 3, err
}

func newRouter(t *testing.T, svc file.FileService, role model.Role) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.Setup())

	h := NewHandler(svc)
	h.now = func() time.Time { return time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC) }

	r := gin.New()
	r.Use(middleware.ErrorHandler(false), func(c *gin.Context) {
		c.Set(middleware.ContextClaims, &model.TokenClaims{UserID: uuid.New(), Role: role})
		c.Next()
	})
	h.RegisterRoutes(r.Group("/api"))
	return r
}

func multipartBody(t *testing.T, fields map[string]string, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadFile(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(t, svc, model.RoleNurse)
	patientID := uuid.NewString()

	body, contentType := multipartBody(t, map[string]string{
		"patientId": patientID,
		"category":  "PRESCRIPTION",
	}, "rx.txt", "take twice daily")
	req := httptest.NewRequest(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, patientID, svc.uploaded.PatientID)
	assert.Equal(t, "PRESCRIPTION", svc.uploaded.Category)
	assert.Equal(t, "take twice daily", svc.uploadBody)
}

func TestUploadFileRequiresFile(t *testing.T) {
	r := newRouter(t, &fakeService{}, model.RoleNurse)

	body, contentType := multipartBody(t, map[string]string{"patientId": uuid.NewString()}, "", "")
	req := httptest.NewRequest(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "file", resp.Errors[0].Field)
}

func TestDownloadFile(t *testing.T) {
	stored := &model.PatientFile{
		Base:        model.Base{ID: uuid.New()},
		FileName:    "report.pdf",
		ContentType: "application/pdf",
		SizeBytes:   8,
	}
	r := newRouter(t, &fakeService{stored: stored, content: "%PDF-1.4"}, model.RoleStaff)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/files/"+stored.ID.String()+"/download", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=report.pdf`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/files/"+uuid.NewString()+"/download", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportPatients(t *testing.T) {
	r := newRouter(t, &fakeService{}, model.RoleDoctor)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/files/export/patients?sex=FEMALE", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, file.ExportContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "patients-20240615.xlsx")
	assert.Equal(t, "3", w.Header().Get("X-Export-Rows"))
	assert.Equal(t, "PK-workbook", w.Body.String())
}

func TestExportFailureRendersEnvelope(t *testing.T) {
	r := newRouter(t, &fakeService{exportErr: apperrors.Internal(assert.AnError)}, model.RoleDoctor)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/files/export/patients", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestExportNeedsDoctor(t *testing.T) {
	r := newRouter(t, &fakeService{}, model.RoleNurse)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/files/export/patients", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
