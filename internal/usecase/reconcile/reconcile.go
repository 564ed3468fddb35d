package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

var tracer = otel.Tracer("github.com/BruksfildServices01/barber-booking/internal/usecase/reconcile")

type Result struct {
	Completed int `json:"completed"`
	Counted   int `json:"counted"`
	Failed    int `json:"failed"`
}

// Reconciler finalizes elapsed appointments and bumps each client's
// completion counter exactly once per appointment. Runs are idempotent
// and safe to start from several processes at once: every step is a
// conditional update whose outcome decides the next one.
type Reconciler struct {
	repo      domain.Repository
	audit     audit.Recorder
	logger    *zap.Logger
	loc       *time.Location
	batchSize int
}

// NewReconciler builds a Reconciler that reads "now" in loc, the shop
// timezone. A nil loc means timezone.DefaultTimezone.
func NewReconciler(
	repo domain.Repository,
	audit audit.Recorder,
	logger *zap.Logger,
	loc *time.Location,
	batchSize int,
) *Reconciler {
	if loc == nil {
		loc = timezone.Location(timezone.DefaultTimezone)
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Reconciler{
		repo:      repo,
		audit:     audit,
		logger:    logger,
		loc:       loc,
		batchSize: batchSize,
	}
}

// Run processes everything that ended at or before now, read as shop
// local time whatever location now carries. Candidates are fetched in
// batches until none are left. A failure on one appointment is logged
// and skipped for the rest of the run; a failure to list candidates
// aborts the run.
func (r *Reconciler) Run(ctx context.Context, now time.Time) (Result, error) {
	ctx, span := tracer.Start(ctx, "Reconcile")
	defer span.End()

	var res Result
	now = now.In(r.loc)
	today := timezone.Today(now)
	nowMinute := int(domain.ClockOf(now))

	// --------------------------------------------------
	// 1. Elapsed active appointments
	// --------------------------------------------------
	err := r.drain(ctx,
		func(limit int) ([]models.Appointment, error) {
			return r.repo.ListElapsed(ctx, today, nowMinute, limit)
		},
		func(ap models.Appointment) error {
			completed, counted, err := r.finalize(ctx, ap, now)
			if err != nil {
				res.Failed++
				r.logger.Error("reconcile appointment failed",
					zap.Uint("appointment_id", ap.ID),
					zap.Error(err),
				)
				return err
			}
			if completed {
				res.Completed++
			}
			if counted {
				res.Counted++
			}
			return nil
		},
	)
	if err != nil {
		span.RecordError(err)
		return res, fmt.Errorf("list elapsed appointments: %w", err)
	}

	// --------------------------------------------------
	// 2. Completed but never counted
	// --------------------------------------------------
	err = r.drain(ctx,
		func(limit int) ([]models.Appointment, error) {
			return r.repo.ListUncountedCompleted(ctx, limit)
		},
		func(ap models.Appointment) error {
			counted, err := r.count(ctx, ap)
			if err != nil {
				res.Failed++
				r.logger.Error("count completion failed",
					zap.Uint("appointment_id", ap.ID),
					zap.Error(err),
				)
				return err
			}
			if counted {
				res.Counted++
			}
			return nil
		},
	)
	if err != nil {
		span.RecordError(err)
		return res, fmt.Errorf("list uncounted appointments: %w", err)
	}

	span.SetAttributes(
		attribute.Int("reconcile.completed", res.Completed),
		attribute.Int("reconcile.counted", res.Counted),
		attribute.Int("reconcile.failed", res.Failed),
	)
	if res.Completed > 0 || res.Counted > 0 || res.Failed > 0 {
		r.logger.Info("reconciliation finished",
			zap.Int("completed", res.Completed),
			zap.Int("counted", res.Counted),
			zap.Int("failed", res.Failed),
		)
	}

	return res, nil
}

// drain feeds every row list returns to handle, one batch at a time.
// Handled rows leave the candidate set; rows whose handle failed stay in
// it, so the limit grows by their number and they are not retried within
// the run. Only list errors are returned.
func (r *Reconciler) drain(
	ctx context.Context,
	list func(limit int) ([]models.Appointment, error),
	handle func(ap models.Appointment) error,
) error {
	failed := map[uint]bool{}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		limit := r.batchSize + len(failed)
		page, err := list(limit)
		if err != nil {
			return err
		}

		fresh := 0
		for _, ap := range page {
			if failed[ap.ID] {
				continue
			}
			fresh++
			if err := handle(ap); err != nil {
				failed[ap.ID] = true
			}
		}

		if len(page) < limit || fresh == 0 {
			return nil
		}
	}
}

func (r *Reconciler) finalize(ctx context.Context, ap models.Appointment, now time.Time) (completed, counted bool, err error) {
	err = r.repo.WithinTx(ctx, func(tx domain.Repository) error {
		completed, err = tx.CompleteIfActive(ctx, ap.ID, now)
		if err != nil {
			return err
		}
		if !completed {
			return nil
		}
		counted, err = flipAndIncrement(ctx, tx, ap)
		return err
	})
	if err != nil {
		return false, false, err
	}

	if completed {
		id := ap.ID
		r.audit.Dispatch(audit.Event{
			ActorRole: string(domain.RoleSystem),
			Action:    audit.ActionAppointmentReconciled,
			Entity:    "appointment",
			EntityID:  &id,
			Metadata:  map[string]any{"from": ap.Status, "counted": counted},
		})
	}
	return completed, counted, nil
}

func (r *Reconciler) count(ctx context.Context, ap models.Appointment) (counted bool, err error) {
	err = r.repo.WithinTx(ctx, func(tx domain.Repository) error {
		counted, err = flipAndIncrement(ctx, tx, ap)
		return err
	})
	if err != nil {
		return false, err
	}
	return counted, nil
}

// flipAndIncrement bumps the client counter only when this transaction
// is the one that set completion_counted.
func flipAndIncrement(ctx context.Context, tx domain.Repository, ap models.Appointment) (bool, error) {
	flipped, err := tx.MarkCompletionCounted(ctx, ap.ID)
	if err != nil {
		return false, err
	}
	if !flipped {
		return false, nil
	}
	if err := tx.IncrementClientCompletions(ctx, ap.ClientID); err != nil {
		return false, err
	}
	return true, nil
}
