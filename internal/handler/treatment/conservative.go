package treatment

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-registry/internal/handler"
	"github.com/jwalitptl/patient-registry/internal/middleware"
	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/service/treatment"
	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

type ConservativeHandler struct {
	service treatment.ConservativeTreatmentService
}

func NewConservativeHandler(service treatment.ConservativeTreatmentService) *ConservativeHandler {
	return &ConservativeHandler{service: service}
}

func (h *ConservativeHandler) RegisterRoutes(r *gin.RouterGroup) {
	conservative := r.Group("/treatments/conservative")
	{
		conservative.GET("", middleware.RequireRole(model.RoleStaff), h.ListConservativeTreatments)
		conservative.POST("", middleware.RequireRole(model.RoleNurse), h.CreateConservativeTreatment)
		conservative.GET("/:id", middleware.RequireRole(model.RoleStaff), h.GetConservativeTreatment)
		conservative.PUT("/:id", middleware.RequireRole(model.RoleNurse), h.UpdateConservativeTreatment)
		conservative.DELETE("/:id", middleware.RequireRole(model.RoleDoctor), h.DeleteConservativeTreatment)
	}
}

func (h *ConservativeHandler) CreateConservativeTreatment(c *gin.Context) {
	var req model.ConservativeTreatmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.service.CreateConservativeTreatment(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithCreated(c, "Conservative treatment created successfully", record)
}

func (h *ConservativeHandler) GetConservativeTreatment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	record, err := h.service.GetConservativeTreatment(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "", record)
}

func (h *ConservativeHandler) UpdateConservativeTreatment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.ConservativeTreatmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.service.UpdateConservativeTreatment(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Conservative treatment updated successfully", record)
}

func (h *ConservativeHandler) DeleteConservativeTreatment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteConservativeTreatment(c.Request.Context(), id); err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Conservative treatment deleted successfully", nil)
}

func (h *ConservativeHandler) ListConservativeTreatments(c *gin.Context) {
	var filter model.ConservativeTreatmentFilter
	if !handler.BindQuery(c, &filter) {
		return
	}

	items, total, err := h.service.ListConservativeTreatments(c.Request.Context(), &filter)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithPagination(c, "conservativeTreatments", items, filter.Page, filter.Limit, total)
}
