package investigation

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-registry/internal/handler"
	"github.com/jwalitptl/patient-registry/internal/middleware"
	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/service/investigation"
	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

type Handler struct {
	service investigation.InvestigationService
}

func NewHandler(service investigation.InvestigationService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	investigations := r.Group("/investigations")
	{
		investigations.GET("", middleware.RequireRole(model.RoleStaff), h.ListInvestigations)
		investigations.POST("", middleware.RequireRole(model.RoleNurse), h.CreateInvestigation)
		investigations.GET("/:id", middleware.RequireRole(model.RoleStaff), h.GetInvestigation)
		investigations.PUT("/:id", middleware.RequireRole(model.RoleNurse), h.UpdateInvestigation)
		investigations.DELETE("/:id", middleware.RequireRole(model.RoleDoctor), h.DeleteInvestigation)
	}
}

func (h *Handler) CreateInvestigation(c *gin.Context) {
	var req model.InvestigationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.CreateInvestigation(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithCreated(c, "Investigation created successfully", inv)
}

func (h *Handler) GetInvestigation(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	inv, err := h.service.GetInvestigation(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "", inv)
}

func (h *Handler) UpdateInvestigation(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.InvestigationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.UpdateInvestigation(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Investigation updated successfully", inv)
}

func (h *Handler) DeleteInvestigation(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteInvestigation(c.Request.Context(), id); err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Investigation deleted successfully", nil)
}

func (h *Handler) ListInvestigations(c *gin.Context) {
	var filter model.InvestigationFilter
	if !handler.BindQuery(c, &filter) {
		return
	}

	items, total, err := h.service.ListInvestigations(c.Request.Context(), &filter)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithPagination(c, "investigations", items, filter.Page, filter.Limit, total)
}
