package block

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type CreateInput struct {
	Actor    domain.Actor
	BarberID uint
	Date     string

	// Start and End are HH:MM. Leaving both empty blocks the whole day;
	// leaving one empty extends the block to opening or closing time.
	Start  string
	End    string
	Reason string
}

type UseCase struct {
	repo  domain.Repository
	audit audit.Recorder
}

func New(repo domain.Repository, audit audit.Recorder) *UseCase {
	return &UseCase{repo: repo, audit: audit}
}

// Create stores a block. A block may not cover a pending or confirmed
// appointment; those have to be cancelled first.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*models.ScheduleBlock, error) {
	if err := domain.CanManageBarber(in.Actor, in.BarberID); err != nil {
		return nil, err
	}

	date, err := domain.ParseDate(in.Date)
	if err != nil {
		return nil, httperr.Validation("invalid_date", err.Error())
	}

	b := &models.ScheduleBlock{
		BarberID: in.BarberID,
		Date:     in.Date,
		Reason:   strings.TrimSpace(in.Reason),
	}

	if in.Start != "" {
		start, err := domain.ParseClock(in.Start)
		if err != nil {
			return nil, httperr.Validation("invalid_time", err.Error())
		}
		m := int(start)
		b.StartMinute = &m
	}
	if in.End != "" {
		end, err := domain.ParseClock(in.End)
		if err != nil {
			return nil, httperr.Validation("invalid_time", err.Error())
		}
		m := int(end)
		if m == 0 {
			// 00:00 as an end means midnight.
			m = domain.MinutesPerDay
		}
		b.EndMinute = &m
	}
	if b.StartMinute != nil && b.EndMinute != nil && *b.StartMinute >= *b.EndMinute {
		return nil, httperr.Validation("invalid_interval", "block start must be before end")
	}
	if len(b.Reason) > 255 {
		return nil, httperr.Validation("reason_too_long", "reason is limited to 255 characters")
	}

	if _, err := uc.repo.GetBarber(ctx, in.BarberID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, httperr.NotFoundErr("barber_not_found", fmt.Sprintf("barber %d", in.BarberID))
		}
		return nil, err
	}

	if in.Actor.ID != 0 {
		id := in.Actor.ID
		b.CreatedBy = &id
	}

	wh, err := uc.repo.GetWorkingHours(ctx, in.BarberID, domain.WeekdayOf(date))
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, err
	}
	window, ok, err := domain.WorkingWindow(wh)
	if err != nil {
		return nil, err
	}
	if !ok {
		window = domain.Interval{Start: 0, End: domain.MinutesPerDay}
	}
	blocked := domain.BlockInterval(*b, window)

	// Same lock as booking, so a block and an appointment for the same
	// day cannot both pass their overlap checks.
	err = uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		if err := tx.LockDay(ctx, in.BarberID, in.Date); err != nil {
			return err
		}

		appointments, err := tx.ListActiveAppointments(ctx, in.BarberID, in.Date)
		if err != nil {
			return err
		}
		for _, ap := range appointments {
			if blocked.Overlaps(domain.IntervalOf(ap)) {
				return httperr.Conflict(
					"block_conflict",
					fmt.Sprintf("block %s overlaps appointment %d %s", blocked, ap.ID, domain.IntervalOf(ap)),
				)
			}
		}

		return tx.CreateBlock(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:   b.CreatedBy,
		ActorRole: string(in.Actor.Role),
		Action:    audit.ActionBlockCreated,
		Entity:    "schedule_block",
		EntityID:  &b.ID,
		Metadata:  map[string]any{"barber_id": b.BarberID, "date": b.Date, "full_day": b.FullDay()},
	})

	return b, nil
}

func (uc *UseCase) Delete(ctx context.Context, actor domain.Actor, blockID uint) error {
	b, err := uc.repo.GetBlock(ctx, blockID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return httperr.NotFoundErr("block_not_found", fmt.Sprintf("block %d", blockID))
		}
		return err
	}

	if err := domain.CanManageBarber(actor, b.BarberID); err != nil {
		return err
	}

	if err := uc.repo.DeleteBlock(ctx, blockID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return httperr.NotFoundErr("block_not_found", fmt.Sprintf("block %d", blockID))
		}
		return err
	}

	var actorID *uint
	if actor.ID != 0 {
		id := actor.ID
		actorID = &id
	}
	uc.audit.Dispatch(audit.Event{
		ActorID:   actorID,
		ActorRole: string(actor.Role),
		Action:    audit.ActionBlockDeleted,
		Entity:    "schedule_block",
		EntityID:  &blockID,
	})
	return nil
}
