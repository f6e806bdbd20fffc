package followup

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-registry/internal/handler"
	"github.com/jwalitptl/patient-registry/internal/middleware"
	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/service/followup"
	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

type Handler struct {
	service followup.FollowUpService
}

func NewHandler(service followup.FollowUpService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	followUps := r.Group("/follow-up")
	{
		followUps.GET("", middleware.RequireRole(model.RoleStaff), h.ListFollowUps)
		followUps.POST("", middleware.RequireRole(model.RoleNurse), h.CreateFollowUp)
		followUps.GET("/:id", middleware.RequireRole(model.RoleStaff), h.GetFollowUp)
		followUps.PUT("/:id", middleware.RequireRole(model.RoleNurse), h.UpdateFollowUp)
		followUps.DELETE("/:id", middleware.RequireRole(model.RoleDoctor), h.DeleteFollowUp)
	}
}

func (h *Handler) CreateFollowUp(c *gin.Context) {
	var req model.FollowUpRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.service.CreateFollowUp(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithCreated(c, "Follow-up created successfully", record)
}

func (h *Handler) GetFollowUp(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	record, err := h.service.GetFollowUp(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "", record)
}

func (h *Handler) UpdateFollowUp(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.FollowUpRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.service.UpdateFollowUp(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Follow-up updated successfully", record)
}

func (h *Handler) DeleteFollowUp(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteFollowUp(c.Request.Context(), id); err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Follow-up deleted successfully", nil)
}

func (h *Handler) ListFollowUps(c *gin.Context) {
	var filter model.FollowUpFilter
	if !handler.BindQuery(c, &filter) {
		return
	}

	items, total, err := h.service.ListFollowUps(c.Request.Context(), &filter)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithPagination(c, "followUps", items, filter.Page, filter.Limit, total)
}
