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

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type AvailabilityHandler struct {
	availability *appointment.GetAvailability
	clock        timezone.Clock
}

func NewAvailabilityHandler(uc *appointment.GetAvailability, clock timezone.Clock) *AvailabilityHandler {
	return &AvailabilityHandler{availability: uc, clock: clock}
}

// Get answers anonymously. The barber themself and admins also see who
// holds each taken slot.
func (h *AvailabilityHandler) Get(c *gin.Context) {
	barberID, err := uintParam(c, "id")
	if err != nil {
		httperr.FromError(c, err, "invalid_request")
		return
	}

	in := domain.AvailabilityInput{
		BarberID: barberID,
		Date:     dateOrToday(c, h.clock),
	}
	if actor, ok := middleware.ActorFrom(c); ok {
		in.IncludeOccupant = actor.Role == domain.RoleAdmin ||
			(actor.Role == domain.RoleProvider && actor.ID == barberID)
	}

	day, err := h.availability.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.FromError(c, err, "failed_to_get_availability")
		return
	}

	httpresp.OK(c, day)
}
