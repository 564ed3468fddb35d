package workinghours

import (
	"context"
	"errors"
	"fmt"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type DayInput struct {
	Weekday int    `json:"weekday"`
	Start   string `json:"start_time"`
	End     string `json:"end_time"`
	Active  bool   `json:"active"`
}

type UseCase struct {
	repo  domain.Repository
	audit audit.Recorder
}

func New(repo domain.Repository, audit audit.Recorder) *UseCase {
	return &UseCase{repo: repo, audit: audit}
}

func (uc *UseCase) Get(ctx context.Context, barberID uint) ([]models.WorkingHours, error) {
	if err := uc.ensureBarber(ctx, barberID); err != nil {
		return nil, err
	}
	return uc.repo.ListWorkingHours(ctx, barberID)
}

// Replace swaps the whole weekly table of a barber. Weekdays left out
// become days off. Existing appointments are not re-validated.
func (uc *UseCase) Replace(
	ctx context.Context,
	actor domain.Actor,
	barberID uint,
	days []DayInput,
) ([]models.WorkingHours, error) {

	if err := domain.CanManageBarber(actor, barberID); err != nil {
		return nil, err
	}
	if err := uc.ensureBarber(ctx, barberID); err != nil {
		return nil, err
	}

	seen := map[int]bool{}
	rows := make([]models.WorkingHours, 0, len(days))

	for _, d := range days {
		wd := domain.Weekday(d.Weekday)
		if !wd.Valid() {
			return nil, httperr.Validation("invalid_weekday", fmt.Sprintf("weekday %d is not in 0..6", d.Weekday))
		}
		if seen[d.Weekday] {
			return nil, httperr.Validation("duplicate_weekday", fmt.Sprintf("%s listed twice", wd))
		}
		seen[d.Weekday] = true

		row := models.WorkingHours{
			BarberID:  barberID,
			Weekday:   d.Weekday,
			StartTime: d.Start,
			EndTime:   d.End,
			Active:    d.Active,
		}

		if d.Active {
			if _, _, err := domain.WorkingWindow(&row); err != nil {
				return nil, httperr.Validation("invalid_hours", err.Error())
			}
			if d.Start == "" || d.End == "" {
				return nil, httperr.Validation("invalid_hours", fmt.Sprintf("%s needs start_time and end_time", wd))
			}
		}

		rows = append(rows, row)
	}

	if err := uc.repo.ReplaceWorkingHours(ctx, barberID, rows); err != nil {
		return nil, err
	}

	var actorID *uint
	if actor.ID != 0 {
		id := actor.ID
		actorID = &id
	}
	uc.audit.Dispatch(audit.Event{
		ActorID:   actorID,
		ActorRole: string(actor.Role),
		Action:    audit.ActionWorkingHoursReplaced,
		Entity:    "barber",
		EntityID:  &barberID,
		Metadata:  map[string]int{"days": len(rows)},
	})

	return uc.repo.ListWorkingHours(ctx, barberID)
}

func (uc *UseCase) ensureBarber(ctx context.Context, barberID uint) error {
	if _, err := uc.repo.GetBarber(ctx, barberID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return httperr.NotFoundErr("barber_not_found", fmt.Sprintf("barber %d", barberID))
		}
		return err
	}
	return nil
}
