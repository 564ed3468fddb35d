package appointment

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

type GetAvailability struct {
	repo        domain.Repository
	granularity int
}

// NewGetAvailability takes the configured slot size; 0 derives it from
// the catalog.
func NewGetAvailability(repo domain.Repository, granularity int) *GetAvailability {
	return &GetAvailability{repo: repo, granularity: granularity}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) (out *domain.DayAvailability, err error) {

	ctx, span := tracer.Start(ctx, "GetAvailability")
	span.SetAttributes(
		attribute.Int("barber.id", int(in.BarberID)),
		attribute.String("date", in.Date),
	)
	defer func() { endSpan(span, err) }()

	date, err := domain.ParseDate(in.Date)
	if err != nil {
		return nil, httperr.Validation("invalid_date", err.Error())
	}

	if _, err := uc.repo.GetBarber(ctx, in.BarberID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, httperr.NotFoundErr("barber_not_found", fmt.Sprintf("barber %d", in.BarberID))
		}
		return nil, err
	}

	weekday := domain.WeekdayOf(date)
	day := &domain.DayAvailability{
		BarberID: in.BarberID,
		Date:     in.Date,
		Weekday:  weekday,
		Status:   domain.DayStatusDayOff,
		Slots:    []domain.TimeSlot{},
	}

	// --------------------------------------------------
	// Working hours
	// --------------------------------------------------
	wh, err := uc.repo.GetWorkingHours(ctx, in.BarberID, weekday)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, err
	}

	window, ok, err := domain.WorkingWindow(wh)
	if err != nil {
		return nil, err
	}
	if !ok {
		return day, nil
	}

	// --------------------------------------------------
	// Granularity
	// --------------------------------------------------
	minDuration := 0
	if uc.granularity <= 0 {
		if minDuration, err = uc.repo.MinServiceDuration(ctx); err != nil {
			return nil, err
		}
	}
	granularity := domain.SlotGranularity(uc.granularity, minDuration)

	// --------------------------------------------------
	// Occupancy
	// --------------------------------------------------
	appointments, err := uc.repo.ListActiveAppointments(ctx, in.BarberID, in.Date)
	if err != nil {
		return nil, err
	}

	blocks, err := uc.repo.ListBlocks(ctx, in.BarberID, in.Date)
	if err != nil {
		return nil, err
	}

	day.Working = true
	day.Status = domain.DayStatusAvailable
	day.GranularityMin = granularity
	day.Slots = domain.BuildSlots(window, granularity, appointments, blocks, in.IncludeOccupant)

	return day, nil
}
