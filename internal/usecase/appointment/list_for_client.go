package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

// ListClientHistory returns a client's appointments, newest first.
type ListClientHistory struct {
	repo domain.Repository
}

func NewListClientHistory(repo domain.Repository) *ListClientHistory {
	return &ListClientHistory{repo: repo}
}

type ClientHistory struct {
	ClientID              uint                     `json:"client_id"`
	CompletedAppointments int                      `json:"completed_appointments"`
	Appointments          []dto.AppointmentListDTO `json:"appointments"`
}

func (uc *ListClientHistory) Execute(
	ctx context.Context,
	actor domain.Actor,
	clientID uint,
) (*ClientHistory, error) {

	if actor.Role == domain.RoleClient && actor.ID != clientID {
		return nil, httperr.Forbidden("forbidden", "history belongs to another client")
	}
	if actor.Role == domain.RoleProvider {
		return nil, httperr.Forbidden("forbidden", "providers cannot read client history")
	}

	client, err := uc.repo.GetClient(ctx, clientID)
	if err != nil {
		return nil, notFoundAs(err, "client_not_found", "client", clientID)
	}

	appointments, err := uc.repo.ListAppointmentsForClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	return &ClientHistory{
		ClientID:              client.ID,
		CompletedAppointments: client.CompletedAppointments,
		Appointments:          toListDTO(appointments),
	}, nil
}
