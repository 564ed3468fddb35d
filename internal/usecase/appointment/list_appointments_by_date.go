package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/dto"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type ListAppointmentsByDate struct {
	repo domain.Repository
}

func NewListAppointmentsByDate(
	repo domain.Repository,
) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{
		repo: repo,
	}
}

func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	actor domain.Actor,
	barberID uint,
	date string,
) (*dto.DayScheduleDTO, error) {

	if err := domain.CanManageBarber(actor, barberID); err != nil {
		return nil, err
	}

	day, err := domain.ParseDate(date)
	if err != nil {
		return nil, httperr.Validation("invalid_date", err.Error())
	}
	next := day.AddDate(0, 0, 1).Format(domain.DateLayout)

	appointments, err := uc.repo.ListAppointmentsForPeriod(
		ctx,
		barberID,
		date,
		next,
	)
	if err != nil {
		return nil, err
	}

	out := &dto.DayScheduleDTO{
		BarberID:     barberID,
		Date:         date,
		Appointments: toListDTO(appointments),
	}
	for _, ap := range appointments {
		out.Totals.Total++
		switch domain.Status(ap.Status) {
		case domain.StatusPending:
			out.Totals.Pending++
		case domain.StatusConfirmed:
			out.Totals.Confirmed++
		case domain.StatusCompleted:
			out.Totals.Completed++
			out.Totals.Revenue += ap.Service.Price
		case domain.StatusCancelled:
			out.Totals.Cancelled++
		}
	}

	return out, nil
}

func toListDTO(appointments []models.Appointment) []dto.AppointmentListDTO {
	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, dto.AppointmentListDTO{
			ID:          ap.ID,
			Date:        ap.Date,
			StartTime:   domain.ClockTime(ap.StartMinute).String(),
			EndTime:     domain.ClockTime(ap.EndMinute).String(),
			Status:      ap.Status,
			ClientID:    ap.ClientID,
			ClientName:  ap.Client.Name,
			BarberID:    ap.BarberID,
			BarberName:  ap.Barber.Name,
			ServiceName: ap.Service.Name,
			Price:       ap.Service.Price,
		})
	}
	return out
}
