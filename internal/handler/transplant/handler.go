package transplant

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-registry/internal/handler"
	"github.com/jwalitptl/patient-registry/internal/middleware"
	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/service/transplant"
	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

type Handler struct {
	service transplant.TransplantService
}

func NewHandler(service transplant.TransplantService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	evaluations := r.Group("/liver-transplant")
	{
		evaluations.GET("", middleware.RequireRole(model.RoleStaff), h.ListEvaluations)
		evaluations.POST("", middleware.RequireRole(model.RoleNurse), h.CreateEvaluation)
		evaluations.GET("/:id", middleware.RequireRole(model.RoleStaff), h.GetEvaluation)
		evaluations.PUT("/:id", middleware.RequireRole(model.RoleNurse), h.UpdateEvaluation)
		evaluations.DELETE("/:id", middleware.RequireRole(model.RoleDoctor), h.DeleteEvaluation)
	}
}

func (h *Handler) CreateEvaluation(c *gin.Context) {
	var req model.TransplantEvaluationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.service.CreateEvaluation(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithCreated(c, "Transplant evaluation created successfully", record)
}

func (h *Handler) GetEvaluation(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	record, err := h.service.GetEvaluation(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "", record)
}

func (h *Handler) UpdateEvaluation(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.TransplantEvaluationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.service.UpdateEvaluation(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Transplant evaluation updated successfully", record)
}

func (h *Handler) DeleteEvaluation(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteEvaluation(c.Request.Context(), id); err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Transplant evaluation deleted successfully", nil)
}

func (h *Handler) ListEvaluations(c *gin.Context) {
	var filter model.TransplantEvaluationFilter
	if !handler.BindQuery(c, &filter) {
		return
	}

	items, total, err := h.service.ListEvaluations(c.Request.Context(), &filter)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithPagination(c, "evaluations", items, filter.Page, filter.Limit, total)
}
