package handler

import (
	"net/http"

	"github.com/plradhouane-dev/gmao/internal/apierror"
	"github.com/plradhouane-dev/gmao/internal/dto"
	"github.com/plradhouane-dev/gmao/internal/middleware"
	"github.com/plradhouane-dev/gmao/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InterventionsHandler struct {
	svc     service.InterventionService
	reports service.ReportService
}

func NewInterventionsHandler(svc service.InterventionService, reports service.ReportService) *InterventionsHandler {
	return &InterventionsHandler{svc: svc, reports: reports}
}

func (h *InterventionsHandler) Create(c *gin.Context) {
	var req dto.CreateInterventionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InterventionsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetSession(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListByEquipment is the repair-history view of one appliance.
func (h *InterventionsHandler) ListByEquipment(c *gin.Context) {
	equipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid equipment id"))
		return
	}
	resp, err := h.svc.ListByEquipment(c.Request.Context(), middleware.GetSession(c), equipmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InterventionsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.UpdateInterventionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.GetSession(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InterventionsHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.GetSession(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportPDF serves the printable repair report.
func (h *InterventionsHandler) ExportPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	path, err := h.reports.ExportInterventionPDF(c.Request.Context(), middleware.GetSession(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, "intervention_"+id.String()+".pdf")
}
