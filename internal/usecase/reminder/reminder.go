package reminder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
)

// SendReminders publishes one appointment.reminder event per active
// appointment on the day after now. Delivery to the client is up to the
// consumers of the event.
type SendReminders struct {
	repo   domain.Repository
	events notify.Publisher
	logger *zap.Logger
}

func NewSendReminders(repo domain.Repository, events notify.Publisher, logger *zap.Logger) *SendReminders {
	return &SendReminders{repo: repo, events: events, logger: logger}
}

// Execute returns how many reminders were published.
func (uc *SendReminders) Execute(ctx context.Context, now time.Time) (int, error) {
	tomorrow := now.AddDate(0, 0, 1).Format(domain.DateLayout)

	appointments, err := uc.repo.ListActiveAppointmentsOn(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("list appointments for %s: %w", tomorrow, err)
	}

	sent := 0
	for _, ap := range appointments {
		if ap.Client.Phone == "" && ap.Client.Email == "" {
			uc.logger.Debug("reminder skipped, client has no contact",
				zap.Uint("appointment_id", ap.ID),
			)
			continue
		}

		ev, err := notify.AppointmentReminder(ap, now)
		if err == nil {
			err = uc.events.Publish(ctx, ev)
		}
		if err != nil {
			uc.logger.Warn("reminder publish failed",
				zap.Uint("appointment_id", ap.ID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	uc.logger.Info("reminders published",
		zap.String("date", tomorrow),
		zap.Int("sent", sent),
		zap.Int("candidates", len(appointments)),
	)
	return sent, nil
}
