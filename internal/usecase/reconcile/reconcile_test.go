package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

const monday = "2026-03-09"

func at(date string, hour, minute int) time.Time {
	d, _ := time.Parse(domain.DateLayout, date)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, timezone.Location(timezone.DefaultTimezone))
}

type env struct {
	repo   *repository.MemoryRepository
	client models.Client
	barber models.Barber
	svc    models.Service
}

func newEnv() *env {
	repo := repository.NewMemoryRepository()
	return &env{
		repo:   repo,
		client: repo.SeedClient(models.Client{Name: "Ana"}),
		barber: repo.SeedBarber(models.Barber{Name: "Luis", Active: true}),
		svc:    repo.SeedService(models.Service{Name: "Corte", DurationMin: 60, Active: true}),
	}
}

func (e *env) seed(date string, startHour int, status domain.Status) models.Appointment {
	return e.repo.SeedAppointment(models.Appointment{
		BarberID:    e.barber.ID,
		ClientID:    e.client.ID,
		ServiceID:   e.svc.ID,
		Date:        date,
		StartMinute: startHour * 60,
		EndMinute:   (startHour + 1) * 60,
		Status:      string(status),
	})
}

func (e *env) counter(t *testing.T) int {
	t.Helper()
	c, err := e.repo.GetClient(context.Background(), e.client.ID)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	return c.CompletedAppointments
}

func (e *env) reconciler(repo domain.Repository) *Reconciler {
	return NewReconciler(repo, audit.Nop(), zap.NewNop(), nil, 100)
}

func TestRunIsIdempotent(t *testing.T) {
	e := newEnv()
	ap := e.seed(monday, 14, domain.StatusConfirmed)
	r := e.reconciler(e.repo)
	now := at(monday, 15, 0)

	res, err := r.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Completed != 1 || res.Counted != 1 {
		t.Fatalf("first run = %+v", res)
	}
	if got := e.counter(t); got != 1 {
		t.Fatalf("counter = %d, want 1", got)
	}

	stored, _ := e.repo.GetAppointment(context.Background(), ap.ID)
	if stored.Status != string(domain.StatusCompleted) || !stored.CompletionCounted || stored.CompletedAt == nil {
		t.Fatalf("stored = %+v", stored)
	}

	res, err = r.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res != (Result{}) {
		t.Fatalf("second run = %+v, want zero", res)
	}
	if got := e.counter(t); got != 1 {
		t.Fatalf("counter after second run = %d, want 1", got)
	}
}

func TestRunElapsedBoundary(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"still running", at(monday, 14, 59), 0},
		{"ends exactly now", at(monday, 15, 0), 1},
		{"later that day", at(monday, 21, 0), 1},
		{"next day before opening", at("2026-03-10", 0, 5), 1},
		{"day before", at("2026-03-08", 23, 59), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			e.seed(monday, 14, domain.StatusConfirmed)

			res, err := e.reconciler(e.repo).Run(context.Background(), tt.now)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if res.Completed != tt.want {
				t.Fatalf("completed = %d, want %d", res.Completed, tt.want)
			}
		})
	}
}

func TestRunReadsNowInShopTimezone(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want Result
	}{
		// 19:30 in Mexico City, while the 19:00-20:00 appointment runs.
		{"utc instant mid appointment", time.Date(2026, 3, 10, 1, 30, 0, 0, time.UTC), Result{}},
		{"utc instant at end", time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC), Result{Completed: 1, Counted: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			e.seed(monday, 19, domain.StatusConfirmed)

			res, err := e.reconciler(e.repo).Run(context.Background(), tt.now)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if res != tt.want {
				t.Fatalf("result = %+v, want %+v", res, tt.want)
			}
			if got := e.counter(t); got != tt.want.Counted {
				t.Fatalf("counter = %d, want %d", got, tt.want.Counted)
			}
		})
	}
}

func TestRunPagesThroughBatches(t *testing.T) {
	e := newEnv()
	e.seed(monday, 10, domain.StatusConfirmed)
	e.seed(monday, 11, domain.StatusConfirmed)
	e.seed(monday, 12, domain.StatusCompleted)
	e.seed(monday, 13, domain.StatusCompleted)
	r := NewReconciler(e.repo, audit.Nop(), zap.NewNop(), nil, 1)
	now := at(monday, 18, 0)

	res, err := r.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Completed != 2 || res.Counted != 4 {
		t.Fatalf("first run = %+v, want 2 completed 4 counted", res)
	}
	if got := e.counter(t); got != 4 {
		t.Fatalf("counter = %d, want 4", got)
	}

	res, err = r.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res != (Result{}) {
		t.Fatalf("second run = %+v, want zero", res)
	}
}

func TestRunPagesPastFailures(t *testing.T) {
	e := newEnv()
	bad := e.seed(monday, 10, domain.StatusConfirmed)
	e.seed(monday, 11, domain.StatusConfirmed)
	e.seed(monday, 12, domain.StatusConfirmed)

	repo := faultyRepo{Repository: e.repo, failComplete: bad.ID}
	res, err := NewReconciler(repo, audit.Nop(), zap.NewNop(), nil, 1).Run(context.Background(), at(monday, 18, 0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Completed != 2 || res.Counted != 2 || res.Failed != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunStatusesAndSweep(t *testing.T) {
	e := newEnv()
	e.seed(monday, 10, domain.StatusPending)
	e.seed(monday, 11, domain.StatusCancelled)
	manual := e.seed(monday, 12, domain.StatusCompleted)
	e.seed("2026-03-20", 10, domain.StatusConfirmed)

	res, err := e.reconciler(e.repo).Run(context.Background(), at(monday, 18, 0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Pending is finalized by the system; the manual completion is only
	// counted; cancelled and future rows are untouched.
	if res.Completed != 1 || res.Counted != 2 {
		t.Fatalf("result = %+v", res)
	}
	if got := e.counter(t); got != 2 {
		t.Fatalf("counter = %d, want 2", got)
	}

	stored, _ := e.repo.GetAppointment(context.Background(), manual.ID)
	if !stored.CompletionCounted {
		t.Fatal("manual completion not marked counted")
	}
}

func TestCounterExactnessAcrossRuns(t *testing.T) {
	e := newEnv()
	for h := 9; h < 17; h++ {
		e.seed(monday, h, domain.StatusConfirmed)
	}
	r := e.reconciler(e.repo)

	for m := 0; m <= 8*60; m += 45 {
		if _, err := r.Run(context.Background(), at(monday, 9, 0).Add(time.Duration(m)*time.Minute)); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}
	if _, err := r.Run(context.Background(), at(monday, 23, 0)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := e.counter(t); got != 8 {
		t.Fatalf("counter = %d, want 8", got)
	}
}

func TestConcurrentRunsCountOnce(t *testing.T) {
	e := newEnv()
	for h := 9; h < 19; h++ {
		e.seed(monday, h, domain.StatusConfirmed)
	}
	now := at(monday, 22, 0)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.reconciler(e.repo).Run(context.Background(), now)
		}()
	}
	wg.Wait()

	if got := e.counter(t); got != 10 {
		t.Fatalf("counter = %d, want 10", got)
	}
}

// faultyRepo fails chosen operations to exercise error isolation.
type faultyRepo struct {
	domain.Repository
	failComplete uint
	failList     bool
}

func (r faultyRepo) ListElapsed(ctx context.Context, today string, nowMinute, limit int) ([]models.Appointment, error) {
	if r.failList {
		return nil, errors.New("connection refused")
	}
	return r.Repository.ListElapsed(ctx, today, nowMinute, limit)
}

func (r faultyRepo) CompleteIfActive(ctx context.Context, id uint, at time.Time) (bool, error) {
	if id == r.failComplete {
		return false, errors.New("deadlock detected")
	}
	return r.Repository.CompleteIfActive(ctx, id, at)
}

func (r faultyRepo) WithinTx(ctx context.Context, fn func(tx domain.Repository) error) error {
	return r.Repository.WithinTx(ctx, func(tx domain.Repository) error {
		return fn(faultyRepo{Repository: tx, failComplete: r.failComplete, failList: r.failList})
	})
}

func TestRunIsolatesAppointmentFailures(t *testing.T) {
	e := newEnv()
	bad := e.seed(monday, 10, domain.StatusConfirmed)
	e.seed(monday, 11, domain.StatusConfirmed)
	e.seed(monday, 12, domain.StatusConfirmed)

	r := e.reconciler(faultyRepo{Repository: e.repo, failComplete: bad.ID})
	res, err := r.Run(context.Background(), at(monday, 18, 0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Completed != 2 || res.Counted != 2 || res.Failed != 1 {
		t.Fatalf("result = %+v", res)
	}

	stored, _ := e.repo.GetAppointment(context.Background(), bad.ID)
	if stored.Status != string(domain.StatusConfirmed) {
		t.Fatalf("failed appointment status = %s", stored.Status)
	}

	// Once the fault clears the next run picks it up.
	res, err = e.reconciler(e.repo).Run(context.Background(), at(monday, 18, 0))
	if err != nil || res.Completed != 1 || res.Counted != 1 {
		t.Fatalf("retry = %+v, %v", res, err)
	}
	if got := e.counter(t); got != 3 {
		t.Fatalf("counter = %d, want 3", got)
	}
}

func TestRunAbortsWhenStoreUnreachable(t *testing.T) {
	e := newEnv()
	e.seed(monday, 10, domain.StatusConfirmed)

	_, err := e.reconciler(faultyRepo{Repository: e.repo, failList: true}).Run(context.Background(), at(monday, 18, 0))
	if err == nil {
		t.Fatal("expected error")
	}
	if got := e.counter(t); got != 0 {
		t.Fatalf("counter = %d, want 0", got)
	}
}

func TestRunRollsBackWhenCounterFails(t *testing.T) {
	e := newEnv()
	orphan := e.repo.SeedAppointment(models.Appointment{
		BarberID:    e.barber.ID,
		ClientID:    999,
		ServiceID:   e.svc.ID,
		Date:        monday,
		StartMinute: 600,
		EndMinute:   660,
		Status:      string(domain.StatusConfirmed),
	})

	res, err := e.reconciler(e.repo).Run(context.Background(), at(monday, 18, 0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Failed != 1 || res.Completed != 0 {
		t.Fatalf("result = %+v", res)
	}

	stored, _ := e.repo.GetAppointment(context.Background(), orphan.ID)
	if stored.Status != string(domain.StatusConfirmed) || stored.CompletionCounted {
		t.Fatalf("partial write survived: %+v", stored)
	}
}
