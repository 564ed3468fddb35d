package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

const (
	monday = "2026-03-09"
	sunday = "2026-03-08"
)

type recorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recorder) Dispatch(ev audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Action)
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *fakePublisher) Publish(_ context.Context, events ...notify.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	repo   *repository.MemoryRepository
	audit  *recorder
	events *fakePublisher
	clock  timezone.Clock

	barber  models.Barber
	other   models.Barber
	service models.Service
	client  models.Client
	client2 models.Client

	availability *GetAvailability
	create       *CreateAppointment
	transition   *TransitionAppointment
}

// newFixture seeds a barber working Monday 10:00-20:00, a 60 minute
// service and two clients. "Now" is Sunday noon in the shop timezone.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := repository.NewMemoryRepository()
	f := &fixture{
		repo:   repo,
		audit:  &recorder{},
		events: &fakePublisher{},
		clock:  timezone.Fixed(time.Date(2026, 3, 8, 12, 0, 0, 0, timezone.Location(timezone.DefaultTimezone))),
	}

	f.barber = repo.SeedBarber(models.Barber{Name: "Luis", Active: true})
	f.other = repo.SeedBarber(models.Barber{Name: "Marco", Active: true})
	f.service = repo.SeedService(models.Service{Name: "Corte", DurationMin: 60, Price: 150, Active: true, Category: models.ServiceCategoryIndividual})
	f.client = repo.SeedClient(models.Client{Name: "Ana"})
	f.client2 = repo.SeedClient(models.Client{Name: "Beto"})

	for _, b := range []models.Barber{f.barber, f.other} {
		repo.SeedWorkingHours(models.WorkingHours{
			BarberID:  b.ID,
			Weekday:   int(domain.Monday),
			StartTime: "10:00",
			EndTime:   "20:00",
			Active:    true,
		})
	}

	f.wire(CreateAppointmentConfig{})
	return f
}

func (f *fixture) wire(cfg CreateAppointmentConfig) {
	f.availability = NewGetAvailability(f.repo, cfg.Granularity)
	f.create = NewCreateAppointment(f.repo, f.audit, f.events, f.clock, zap.NewNop(), cfg)
	f.transition = NewTransitionAppointment(f.repo, f.audit, f.events, f.clock, zap.NewNop())
}

func (f *fixture) clientActor() domain.Actor {
	return domain.Actor{ID: f.client.ID, Role: domain.RoleClient}
}

func (f *fixture) book(t *testing.T, start string) *models.Appointment {
	t.Helper()
	ap, err := f.create.Execute(context.Background(), CreateAppointmentInput{
		Actor:     f.clientActor(),
		BarberID:  f.barber.ID,
		ServiceID: f.service.ID,
		ClientID:  f.client.ID,
		Date:      monday,
		Start:     start,
	})
	if err != nil {
		t.Fatalf("book %s: %v", start, err)
	}
	return ap
}

func (f *fixture) tryBook(start string, serviceID uint) error {
	_, err := f.create.Execute(context.Background(), CreateAppointmentInput{
		Actor:     f.clientActor(),
		BarberID:  f.barber.ID,
		ServiceID: serviceID,
		ClientID:  f.client.ID,
		Date:      monday,
		Start:     start,
	})
	return err
}

func (f *fixture) day(t *testing.T, includeOccupant bool) *domain.DayAvailability {
	t.Helper()
	day, err := f.availability.Execute(context.Background(), domain.AvailabilityInput{
		BarberID:        f.barber.ID,
		Date:            monday,
		IncludeOccupant: includeOccupant,
	})
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	return day
}

func wantKind(t *testing.T, err error, kind httperr.Kind) {
	t.Helper()
	if !httperr.IsKind(err, kind) {
		t.Fatalf("err = %v, want kind %s", err, kind)
	}
}

func intPtr(v int) *int { return &v }
