package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-registry/internal/handler"
	"github.com/jwalitptl/patient-registry/internal/middleware"
	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/service/patient"
	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

type Handler struct {
	service patient.PatientService
}

func NewHandler(service patient.PatientService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	read := middleware.RequireRole(model.RoleStaff)
	write := middleware.RequireRole(model.RoleNurse)
	remove := middleware.RequireRole(model.RoleDoctor)

	patients := r.Group("/patients")
	{
		patients.GET("", read, h.ListPatients)
		patients.GET("/suggestions", read, h.SuggestPatients)
		patients.POST("", write, h.CreatePatient)
		patients.GET("/:id", read, h.GetPatient)
		patients.PUT("/:id", write, h.UpdatePatient)
		patients.DELETE("/:id", remove, h.DeletePatient)

		patients.GET("/:id/comorbidities", read, h.ListComorbidities)
		patients.POST("/:id/comorbidities", write, h.AddComorbidity)
		patients.PUT("/:id/comorbidities/:comorbidityId", write, h.UpdateComorbidity)
		patients.DELETE("/:id/comorbidities/:comorbidityId", remove, h.DeleteComorbidity)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.PatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.service.CreatePatient(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithCreated(c, "Patient created successfully", p)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "", p)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.PatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.service.UpdatePatient(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Patient updated successfully", p)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeletePatient(c.Request.Context(), id); err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Patient deleted successfully", nil)
}

func (h *Handler) ListPatients(c *gin.Context) {
	var filter model.PatientFilter
	if !handler.BindQuery(c, &filter) {
		return
	}

	patients, total, err := h.service.ListPatients(c.Request.Context(), &filter)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithPagination(c, "patients", patients, filter.Page, filter.Limit, total)
}

// SuggestPatients backs the search-as-you-type box.
func (h *Handler) SuggestPatients(c *gin.Context) {
	suggestions, err := h.service.SuggestPatients(c.Request.Context(), c.Query("q"))
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "", suggestions)
}
