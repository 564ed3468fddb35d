package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/usecase/workinghours"
)

type WorkingHoursHandler struct {
	hours *workinghours.UseCase
}

func NewWorkingHoursHandler(uc *workinghours.UseCase) *WorkingHoursHandler {
	return &WorkingHoursHandler{hours: uc}
}

type WorkingHoursUpdateRequest struct {
	Days []workinghours.DayInput `json:"days" binding:"required"`
}

func (h *WorkingHoursHandler) Get(c *gin.Context) {
	barberID, err := uintParam(c, "id")
	if err != nil {
		httperr.FromError(c, err, "invalid_request")
		return
	}

	hours, err := h.hours.Get(c.Request.Context(), barberID)
	if err != nil {
		httperr.FromError(c, err, "failed_to_get_working_hours")
		return
	}

	httpresp.List(c, hours)
}

// Update replaces the whole week. Weekdays left out become days off.
func (h *WorkingHoursHandler) Update(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	barberID, err := uintParam(c, "id")
	if err != nil {
		httperr.FromError(c, err, "invalid_request")
		return
	}

	var req WorkingHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	hours, err := h.hours.Replace(c.Request.Context(), actor, barberID, req.Days)
	if err != nil {
		httperr.FromError(c, err, "failed_to_save_working_hours")
		return
	}

	httpresp.List(c, hours)
}
