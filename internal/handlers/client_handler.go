package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/usecase/appointment"
)

type ClientHandler struct {
	history *appointment.ListClientHistory
}

func NewClientHandler(uc *appointment.ListClientHistory) *ClientHandler {
	return &ClientHandler{history: uc}
}

// ======================================================
// HISTORY
// ======================================================

// MyAppointments is the caller's own history.
func (h *ClientHandler) MyAppointments(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	h.respond(c, actor.ID)
}

// Appointments lets an admin read any client's history.
func (h *ClientHandler) Appointments(c *gin.Context) {
	clientID, err := uintParam(c, "id")
	if err != nil {
		httperr.FromError(c, err, "invalid_request")
		return
	}
	h.respond(c, clientID)
}

func (h *ClientHandler) respond(c *gin.Context, clientID uint) {
	actor, _ := middleware.ActorFrom(c)

	history, err := h.history.Execute(c.Request.Context(), actor, clientID)
	if err != nil {
		httperr.FromError(c, err, "failed_to_list_history")
		return
	}

	httpresp.OK(c, history)
}
