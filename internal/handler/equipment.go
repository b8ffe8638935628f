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

type EquipmentHandler struct{ svc service.EquipmentService }

func NewEquipmentHandler(svc service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{svc: svc}
}

func (h *EquipmentHandler) Create(c *gin.Context) {
	var req dto.CreateEquipmentRequest
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

func (h *EquipmentHandler) List(c *gin.Context) {
	var filter dto.EquipmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), middleware.GetSession(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EquipmentHandler) Get(c *gin.Context) {
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

// LookupBySerial is the scan-or-type entry point of the repair flow: the
// front desk looks an appliance up before opening an intervention.
func (h *EquipmentHandler) LookupBySerial(c *gin.Context) {
	serial := c.Param("serial")
	resp, err := h.svc.LookupBySerial(c.Request.Context(), middleware.GetSession(c), serial)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EquipmentHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.UpdateEquipmentRequest
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
