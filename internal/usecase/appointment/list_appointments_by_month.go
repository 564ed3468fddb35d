package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

type ListAppointmentsByMonth struct {
	repo domain.Repository
}

func NewListAppointmentsByMonth(
	repo domain.Repository,
) *ListAppointmentsByMonth {
	return &ListAppointmentsByMonth{
		repo: repo,
	}
}

func (uc *ListAppointmentsByMonth) Execute(
	ctx context.Context,
	actor domain.Actor,
	barberID uint,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	if err := domain.CanManageBarber(actor, barberID); err != nil {
		return nil, err
	}
	if month < 1 || month > 12 || year < 2000 || year > 9999 {
		return nil, httperr.Validation("invalid_month", "year/month out of range")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	appointments, err := uc.repo.ListAppointmentsForPeriod(
		ctx,
		barberID,
		start.Format(domain.DateLayout),
		end.Format(domain.DateLayout),
	)
	if err != nil {
		return nil, err
	}

	return toListDTO(appointments), nil
}
