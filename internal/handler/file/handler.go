package file

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/patient-registry/internal/handler"
	"github.com/jwalitptl/patient-registry/internal/middleware"
	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/service/file"
	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

type Handler struct {
	service file.FileService
	now     func() time.Time
}

func NewHandler(service file.FileService) *Handler {
	return &Handler{service: service, now: time.Now}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	files := r.Group("/files")
	{
		files.GET("", middleware.RequireRole(model.RoleStaff), h.ListFiles)
		files.POST("", middleware.RequireRole(model.RoleNurse), h.UploadFile)
		files.GET("/export/patients", middleware.RequireRole(model.RoleDoctor), h.ExportPatients)
		files.GET("/:id", middleware.RequireRole(model.RoleStaff), h.GetFile)
		files.GET("/:id/download", middleware.RequireRole(model.RoleStaff), h.DownloadFile)
		files.DELETE("/:id", middleware.RequireRole(model.RoleDoctor), h.DeleteFile)
	}
}

// UploadFile accepts a multipart form with the document under "file".
func (h *Handler) UploadFile(c *gin.Context) {
	var form model.FileUploadForm
	if !handler.BindForm(c, &form) {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handler.Fail(c, handler.BindError(err))
			return
		}
		handler.Fail(c, apperrors.InvalidField("file", "file is required"))
		return
	}

	body, err := header.Open()
	if err != nil {
		handler.Fail(c, apperrors.Internal(fmt.Errorf("failed to open upload: %w", err)))
		return
	}
	defer body.Close()

	f, err := h.service.UploadFile(c.Request.Context(), &form, file.Upload{
		FileName: header.Filename,
		Size:     header.Size,
		Body:     body,
	})
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithCreated(c, "File uploaded successfully", f)
}

func (h *Handler) GetFile(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	f, err := h.service.GetFile(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "", f)
}

// DownloadFile streams the stored blob as an attachment.
func (h *Handler) DownloadFile(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	f, rc, err := h.service.OpenFile(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, f.SizeBytes, f.ContentType, rc, map[string]string{
		"Content-Disposition": attachment(f.FileName),
	})
}

func (h *Handler) DeleteFile(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteFile(c.Request.Context(), id); err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "File deleted successfully", nil)
}

func (h *Handler) ListFiles(c *gin.Context) {
	var filter model.FileFilter
	if !handler.BindQuery(c, &filter) {
		return
	}

	files, total, err := h.service.ListFiles(c.Request.Context(), &filter)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithPagination(c, "files", files, filter.Page, filter.Limit, total)
}

// ExportPatients answers with an xlsx workbook of the patients matching the
// patient list filters. The workbook is built in memory first so that a
// failure still renders as a JSON envelope.
func (h *Handler) ExportPatients(c *gin.Context) {
	var filter model.PatientFilter
	if !handler.BindQuery(c, &filter) {
		return
	}

	var buf bytes.Buffer
	rows, err := h.service.ExportPatients(c.Request.Context(), &filter, &buf)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	zerolog.Ctx(c.Request.Context()).Info().Int("rows", rows).Msg("patients exported")

	size := int64(buf.Len())
	c.DataFromReader(http.StatusOK, size, file.ExportContentType, &buf, map[string]string{
		"Content-Disposition": attachment(file.ExportFileName(h.now())),
		"X-Export-Rows":       strconv.Itoa(rows),
	})
}

func attachment(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}
