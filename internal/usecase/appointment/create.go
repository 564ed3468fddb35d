package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	Actor domain.Actor

	BarberID  uint
	ServiceID uint
	ClientID  uint

	Date  string
	Start string
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointmentConfig struct {
	// Granularity overrides the catalog-derived slot size when > 0.
	Granularity   int
	InitialStatus domain.Status
}

type CreateAppointment struct {
	repo   domain.Repository
	audit  audit.Recorder
	events notify.Publisher
	clock  timezone.Clock
	logger *zap.Logger
	cfg    CreateAppointmentConfig
}

func NewCreateAppointment(
	repo domain.Repository,
	audit audit.Recorder,
	events notify.Publisher,
	clock timezone.Clock,
	logger *zap.Logger,
	cfg CreateAppointmentConfig,
) *CreateAppointment {
	if cfg.InitialStatus == "" {
		cfg.InitialStatus = domain.InitialStatus()
	}
	return &CreateAppointment{
		repo:   repo,
		audit:  audit,
		events: events,
		clock:  clock,
		logger: logger,
		cfg:    cfg,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (ap *models.Appointment, err error) {

	ctx, span := tracer.Start(ctx, "CreateAppointment")
	span.SetAttributes(
		attribute.Int("barber.id", int(in.BarberID)),
		attribute.String("date", in.Date),
		attribute.String("start", in.Start),
	)
	defer func() { endSpan(span, err) }()

	// --------------------------------------------------
	// 1. Input
	// --------------------------------------------------
	start, err := uc.validate(in)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Service, barber, client
	// --------------------------------------------------
	svc, err := uc.repo.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, notFoundAs(err, "service_not_found", "service", in.ServiceID)
	}

	barber, err := uc.repo.GetBarber(ctx, in.BarberID)
	if err != nil {
		return nil, notFoundAs(err, "barber_not_found", "barber", in.BarberID)
	}

	client, err := uc.repo.GetClient(ctx, in.ClientID)
	if err != nil {
		return nil, notFoundAs(err, "client_not_found", "client", in.ClientID)
	}

	now := uc.clock()
	today := timezone.Today(now)
	if in.Date < today || (in.Date == today && start < domain.ClockOf(now)) {
		return nil, httperr.Validation("start_in_past", fmt.Sprintf("%s %s has already passed", in.Date, start))
	}

	// --------------------------------------------------
	// 3. Working hours
	// --------------------------------------------------
	date, _ := domain.ParseDate(in.Date)
	weekday := domain.WeekdayOf(date)

	wh, err := uc.repo.GetWorkingHours(ctx, in.BarberID, weekday)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, err
	}
	window, ok, err := domain.WorkingWindow(wh)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperr.OutOfHours("day_off", fmt.Sprintf("barber does not work on %s", weekday))
	}

	granularity := uc.cfg.Granularity
	if granularity <= 0 {
		minDuration, err := uc.repo.MinServiceDuration(ctx)
		if err != nil {
			return nil, err
		}
		granularity = domain.SlotGranularity(0, minDuration)
	}

	requested, err := domain.CheckBookingWindow(window, start, svc.DurationMin, granularity)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 4. Conflict check + insert under the day lock
	// --------------------------------------------------
	ap = &models.Appointment{
		BarberID:    barber.ID,
		ClientID:    client.ID,
		ServiceID:   svc.ID,
		Date:        in.Date,
		StartMinute: int(requested.Start),
		EndMinute:   int(requested.End),
		Status:      string(uc.cfg.InitialStatus),
		Notes:       strings.TrimSpace(in.Notes),
	}
	if uc.cfg.InitialStatus == domain.StatusConfirmed {
		ap.ConfirmedAt = &now
	}

	err = uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		if err := tx.LockDay(ctx, in.BarberID, in.Date); err != nil {
			return err
		}

		appointments, err := tx.ListActiveAppointments(ctx, in.BarberID, in.Date)
		if err != nil {
			return err
		}
		blocks, err := tx.ListBlocks(ctx, in.BarberID, in.Date)
		if err != nil {
			return err
		}

		if err := domain.FindConflict(requested, window, appointments, blocks); err != nil {
			return err
		}

		return tx.CreateAppointment(ctx, ap)
	})
	if errors.Is(err, domain.ErrSlotTaken) {
		err = httperr.Conflict("time_conflict", "slot already taken")
	}
	if err != nil {
		if httperr.IsKind(err, httperr.KindConflict) {
			uc.audit.Dispatch(audit.Event{
				ActorID:   actorID(in.Actor),
				ActorRole: string(in.Actor.Role),
				Action:    audit.ActionAppointmentConflict,
				Entity:    "appointment",
				Metadata: map[string]any{
					"barber_id": in.BarberID,
					"date":      in.Date,
					"interval":  requested.String(),
				},
			})
		}
		return nil, err
	}

	ap.Barber = *barber
	ap.Client = *client
	ap.Service = *svc

	// --------------------------------------------------
	// 5. Audit + event
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		ActorID:   actorID(in.Actor),
		ActorRole: string(in.Actor.Role),
		Action:    audit.ActionAppointmentCreated,
		Entity:    "appointment",
		EntityID:  &ap.ID,
	})

	ev, evErr := notify.AppointmentCreated(*ap, now)
	publish(ctx, uc.events, uc.logger, ev, evErr)

	return ap, nil
}

func (uc *CreateAppointment) validate(in CreateAppointmentInput) (domain.ClockTime, error) {
	if in.BarberID == 0 || in.ServiceID == 0 || in.ClientID == 0 {
		return 0, httperr.Validation("missing_fields", "barber_id, service_id and client_id are required")
	}
	if _, err := domain.ParseDate(in.Date); err != nil {
		return 0, httperr.Validation("invalid_date", err.Error())
	}
	start, err := domain.ParseClock(in.Start)
	if err != nil {
		return 0, httperr.Validation("invalid_time", err.Error())
	}
	if len(in.Notes) > 255 {
		return 0, httperr.Validation("notes_too_long", "notes are limited to 255 characters")
	}

	switch in.Actor.Role {
	case domain.RoleAdmin:
	case domain.RoleClient:
		if in.ClientID != in.Actor.ID {
			return 0, httperr.Forbidden("forbidden", "clients book for themselves")
		}
	case domain.RoleProvider:
		if in.BarberID != in.Actor.ID {
			return 0, httperr.Forbidden("forbidden", "providers book on their own schedule")
		}
	default:
		return 0, httperr.Forbidden("forbidden", "role cannot book")
	}

	return start, nil
}

func notFoundAs(err error, code, entity string, id uint) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return httperr.NotFoundErr(code, fmt.Sprintf("%s %d", entity, id))
	}
	return err
}

func actorID(a domain.Actor) *uint {
	if a.ID == 0 {
		return nil
	}
	id := a.ID
	return &id
}
