package appointment

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

type TransitionInput struct {
	Actor         domain.Actor
	AppointmentID uint
	Status        string
}

// TransitionAppointment applies a lifecycle move requested through the
// API. Completing here never touches the client counter; reconciliation
// counts it later.
type TransitionAppointment struct {
	repo   domain.Repository
	audit  audit.Recorder
	events notify.Publisher
	clock  timezone.Clock
	logger *zap.Logger
}

func NewTransitionAppointment(
	repo domain.Repository,
	audit audit.Recorder,
	events notify.Publisher,
	clock timezone.Clock,
	logger *zap.Logger,
) *TransitionAppointment {
	return &TransitionAppointment{
		repo:   repo,
		audit:  audit,
		events: events,
		clock:  clock,
		logger: logger,
	}
}

func (uc *TransitionAppointment) Execute(
	ctx context.Context,
	in TransitionInput,
) (ap *models.Appointment, err error) {

	ctx, span := tracer.Start(ctx, "TransitionAppointment")
	span.SetAttributes(
		attribute.Int("appointment.id", int(in.AppointmentID)),
		attribute.String("status", in.Status),
	)
	defer func() { endSpan(span, err) }()

	target, ok := domain.ParseStatus(in.Status)
	if !ok {
		return nil, httperr.Validation("invalid_status", "unknown status "+in.Status)
	}
	if in.AppointmentID == 0 {
		return nil, httperr.Validation("missing_fields", "appointment id is required")
	}

	now := uc.clock()
	var from string

	err = uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		cur, err := tx.GetAppointment(ctx, in.AppointmentID)
		if err != nil {
			return notFoundAs(err, "appointment_not_found", "appointment", in.AppointmentID)
		}

		from = cur.Status
		if err := domain.Transition(cur, target, in.Actor, now); err != nil {
			return err
		}
		if err := tx.UpdateAppointment(ctx, cur); err != nil {
			return err
		}

		ap = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:   actorID(in.Actor),
		ActorRole: string(in.Actor.Role),
		Action:    audit.ActionAppointmentTransition,
		Entity:    "appointment",
		EntityID:  &ap.ID,
		Metadata:  map[string]string{"from": from, "to": ap.Status},
	})

	ev, evErr := notify.AppointmentStatusChanged(*ap, from, string(in.Actor.Role), now)
	publish(ctx, uc.events, uc.logger, ev, evErr)

	return ap, nil
}

// Cancel is the client-facing shortcut for a move to cancelled.
func (uc *TransitionAppointment) Cancel(ctx context.Context, actor domain.Actor, appointmentID uint) (*models.Appointment, error) {
	return uc.Execute(ctx, TransitionInput{
		Actor:         actor,
		AppointmentID: appointmentID,
		Status:        string(domain.StatusCancelled),
	})
}
