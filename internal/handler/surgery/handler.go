package surgery

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-registry/internal/handler"
	"github.com/jwalitptl/patient-registry/internal/middleware"
	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/service/surgery"
	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

type Handler struct {
	service surgery.SurgeryService
}

func NewHandler(service surgery.SurgeryService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	surgeries := r.Group("/surgery")
	{
		surgeries.GET("", middleware.RequireRole(model.RoleStaff), h.ListSurgeries)
		surgeries.POST("", middleware.RequireRole(model.RoleNurse), h.CreateSurgery)
		surgeries.GET("/:id", middleware.RequireRole(model.RoleStaff), h.GetSurgery)
		surgeries.PUT("/:id", middleware.RequireRole(model.RoleNurse), h.UpdateSurgery)
		surgeries.DELETE("/:id", middleware.RequireRole(model.RoleDoctor), h.DeleteSurgery)
	}
}

func (h *Handler) CreateSurgery(c *gin.Context) {
	var req model.SurgeryRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.service.CreateSurgery(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithCreated(c, "Surgery created successfully", record)
}

func (h *Handler) GetSurgery(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	record, err := h.service.GetSurgery(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "", record)
}

func (h *Handler) UpdateSurgery(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.SurgeryRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.service.UpdateSurgery(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Surgery updated successfully", record)
}

func (h *Handler) DeleteSurgery(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteSurgery(c.Request.Context(), id); err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Surgery deleted successfully", nil)
}

func (h *Handler) ListSurgeries(c *gin.Context) {
	var filter model.SurgeryFilter
	if !handler.BindQuery(c, &filter) {
		return
	}

	items, total, err := h.service.ListSurgeries(c.Request.Context(), &filter)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithPagination(c, "surgeries", items, filter.Page, filter.Limit, total)
}
