package treatment

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-registry/internal/handler"
	"github.com/jwalitptl/patient-registry/internal/middleware"
	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/service/treatment"
	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

type Handler struct {
	service treatment.TreatmentService
}

func NewHandler(service treatment.TreatmentService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	treatments := r.Group("/treatments")
	{
		treatments.GET("", middleware.RequireRole(model.RoleStaff), h.ListTreatments)
		treatments.POST("", middleware.RequireRole(model.RoleNurse), h.CreateTreatment)
		treatments.GET("/:id", middleware.RequireRole(model.RoleStaff), h.GetTreatment)
		treatments.PUT("/:id", middleware.RequireRole(model.RoleNurse), h.UpdateTreatment)
		treatments.DELETE("/:id", middleware.RequireRole(model.RoleDoctor), h.DeleteTreatment)
	}
}

func (h *Handler) CreateTreatment(c *gin.Context) {
	var req model.TreatmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.service.CreateTreatment(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithCreated(c, "Treatment created successfully", record)
}

func (h *Handler) GetTreatment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	record, err := h.service.GetTreatment(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "", record)
}

func (h *Handler) UpdateTreatment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.TreatmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.service.UpdateTreatment(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Treatment updated successfully", record)
}

func (h *Handler) DeleteTreatment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteTreatment(c.Request.Context(), id); err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Treatment deleted successfully", nil)
}

func (h *Handler) ListTreatments(c *gin.Context) {
	var filter model.TreatmentFilter
	if !handler.BindQuery(c, &filter) {
		return
	}

	items, total, err := h.service.ListTreatments(c.Request.Context(), &filter)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithPagination(c, "treatments", items, filter.Page, filter.Limit, total)
}
