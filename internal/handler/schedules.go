package handler

import (
	"net/http"
	"strconv"

	"github.com/plradhouane-dev/gmao/internal/apierror"
	"github.com/plradhouane-dev/gmao/internal/dto"
	"github.com/plradhouane-dev/gmao/internal/middleware"
	"github.com/plradhouane-dev/gmao/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SchedulesHandler struct{ svc service.ScheduleService }

func NewSchedulesHandler(svc service.ScheduleService) *SchedulesHandler {
	return &SchedulesHandler{svc: svc}
}

func (h *SchedulesHandler) Create(c *gin.Context) {
	var req dto.CreateScheduleRequest
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

func (h *SchedulesHandler) List(c *gin.Context) {
	var filter dto.ScheduleFilter
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

func (h *SchedulesHandler) Get(c *gin.Context) {
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

// ListUpcoming is the dashboard view backing the reminder window.
func (h *SchedulesHandler) ListUpcoming(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("days must be a positive integer"))
		return
	}
	entries, err := h.svc.ListDueWithin(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	data := make([]dto.ScheduleResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		serial := ""
		if e.Equipment != nil {
			serial = e.Equipment.SerialNumber
		}
		data = append(data, dto.ScheduleResponse{
			ID:              e.ID.String(),
			EquipmentID:     e.EquipmentID.String(),
			SerialNumber:    serial,
			DueDate:         e.DueDate.Format("2006-01-02"),
			MaintenanceType: e.MaintenanceType,
			Technician:      e.Technician,
			Status:          e.Status,
			Notes:           e.Notes,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "total": len(data)})
}

func (h *SchedulesHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.UpdateScheduleRequest
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

func (h *SchedulesHandler) Delete(c *gin.Context) {
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
