package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
	"github.com/BruksfildServices01/barber-booking/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create      *appointment.CreateAppointment
	transition  *appointment.TransitionAppointment
	listByDate  *appointment.ListAppointmentsByDate
	listByMonth *appointment.ListAppointmentsByMonth
	clock       timezone.Clock
}

func NewAppointmentHandler(
	create *appointment.CreateAppointment,
	transition *appointment.TransitionAppointment,
	listByDate *appointment.ListAppointmentsByDate,
	listByMonth *appointment.ListAppointmentsByMonth,
	clock timezone.Clock,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:      create,
		transition:  transition,
		listByDate:  listByDate,
		listByMonth: listByMonth,
		clock:       clock,
	}
}

// ======================================================
// REQUESTS
// ======================================================

// ClientID is ignored for clients, who always book for themselves.
type CreateAppointmentRequest struct {
	BarberID  uint   `json:"barber_id" binding:"required"`
	ServiceID uint   `json:"service_id" binding:"required"`
	ClientID  uint   `json:"client_id"`
	Date      string `json:"date" binding:"required"`       // YYYY-MM-DD
	StartTime string `json:"start_time" binding:"required"` // HH:MM
	Notes     string `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	clientID := req.ClientID
	if actor.Role == domain.RoleClient {
		clientID = actor.ID
	}

	ap, err := h.create.Execute(c.Request.Context(), appointment.CreateAppointmentInput{
		Actor:     actor,
		BarberID:  req.BarberID,
		ServiceID: req.ServiceID,
		ClientID:  clientID,
		Date:      req.Date,
		Start:     req.StartTime,
		Notes:     req.Notes,
	})
	if err != nil {
		httperr.FromError(c, err, "failed_to_create_appointment")
		return
	}

	httpresp.Created(c, ap)
}

// ======================================================
// STATUS
// ======================================================

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		httperr.FromError(c, err, "invalid_request")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	ap, err := h.transition.Execute(c.Request.Context(), appointment.TransitionInput{
		Actor:         actor,
		AppointmentID: id,
		Status:        req.Status,
	})
	if err != nil {
		httperr.FromError(c, err, "failed_to_update_appointment")
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		httperr.FromError(c, err, "invalid_request")
		return
	}

	ap, err := h.transition.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		httperr.FromError(c, err, "failed_to_cancel_appointment")
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	barberID, err := barberFromQuery(c, actor)
	if err != nil {
		httperr.FromError(c, err, "invalid_request")
		return
	}

	day, err := h.listByDate.Execute(c.Request.Context(), actor, barberID, dateOrToday(c, h.clock))
	if err != nil {
		httperr.FromError(c, err, "failed_to_list_appointments")
		return
	}

	httpresp.OK(c, day)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	barberID, err := barberFromQuery(c, actor)
	if err != nil {
		httperr.FromError(c, err, "invalid_request")
		return
	}

	year, month, err := yearMonthOrCurrent(c, h.clock)
	if err != nil {
		httperr.FromError(c, err, "invalid_request")
		return
	}

	list, err := h.listByMonth.Execute(c.Request.Context(), actor, barberID, year, month)
	if err != nil {
		httperr.FromError(c, err, "failed_to_list_appointments")
		return
	}

	httpresp.List(c, list)
}

// barberFromQuery lets providers omit ?barber_id= for their own schedule.
func barberFromQuery(c *gin.Context, actor domain.Actor) (uint, error) {
	if c.Query("barber_id") == "" && actor.Role == domain.RoleProvider {
		return actor.ID, nil
	}
	return uintQuery(c, "barber_id")
}
