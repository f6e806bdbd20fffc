package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-registry/internal/handler"
	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

func (h *Handler) ListComorbidities(c *gin.Context) {
	patientID, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	items, err := h.service.ListComorbidities(c.Request.Context(), patientID)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "", items)
}

func (h *Handler) AddComorbidity(c *gin.Context) {
	patientID, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.ComorbidityRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	item, err := h.service.AddComorbidity(c.Request.Context(), patientID, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithCreated(c, "Comorbidity added successfully", item)
}

func (h *Handler) UpdateComorbidity(c *gin.Context) {
	patientID, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "comorbidityId")
	if !ok {
		return
	}

	var req model.ComorbidityRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	item, err := h.service.UpdateComorbidity(c.Request.Context(), patientID, id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Comorbidity updated successfully", item)
}

func (h *Handler) DeleteComorbidity(c *gin.Context) {
	patientID, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "comorbidityId")
	if !ok {
		return
	}

	if err := h.service.DeleteComorbidity(c.Request.Context(), patientID, id); err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Comorbidity deleted successfully", nil)
}
