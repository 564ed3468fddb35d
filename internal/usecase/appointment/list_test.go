package appointment

import (
	"context"
	"testing"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

func TestListByDateTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := domain.Actor{ID: f.barber.ID, Role: domain.RoleProvider}

	a := f.book(t, "10:00")
	b := f.book(t, "11:00")
	f.book(t, "12:00")
	_, _ = f.transition.Execute(ctx, TransitionInput{Actor: owner, AppointmentID: a.ID, Status: "completed"})
	_, _ = f.transition.Execute(ctx, TransitionInput{Actor: owner, AppointmentID: b.ID, Status: "cancelled"})

	day, err := NewListAppointmentsByDate(f.repo).Execute(ctx, owner, f.barber.ID, monday)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(day.Appointments) != 3 {
		t.Fatalf("appointments = %d", len(day.Appointments))
	}
	if first := day.Appointments[0]; first.StartTime != "10:00" || first.EndTime != "11:00" || first.ClientName != "Ana" || first.ServiceName != "Corte" {
		t.Fatalf("first = %+v", first)
	}
	tot := day.Totals
	if tot.Total != 3 || tot.Completed != 1 || tot.Cancelled != 1 || tot.Confirmed != 1 || tot.Revenue != 150 {
		t.Fatalf("totals = %+v", tot)
	}

	_, err = NewListAppointmentsByDate(f.repo).Execute(ctx, domain.Actor{ID: f.other.ID, Role: domain.RoleProvider}, f.barber.ID, monday)
	wantKind(t, err, httperr.KindForbidden)

	_, err = NewListAppointmentsByDate(f.repo).Execute(ctx, f.clientActor(), f.barber.ID, monday)
	wantKind(t, err, httperr.KindForbidden)

	_, err = NewListAppointmentsByDate(f.repo).Execute(ctx, owner, f.barber.ID, "09-03-2026")
	wantKind(t, err, httperr.KindValidation)
}

func TestListByMonth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := domain.Actor{ID: 1, Role: domain.RoleAdmin}

	f.book(t, "10:00")
	f.repo.SeedAppointment(models.Appointment{BarberID: f.barber.ID, ClientID: f.client.ID, ServiceID: f.service.ID, Date: "2026-04-01", StartMinute: 600, EndMinute: 660, Status: "confirmed"})
	f.repo.SeedAppointment(models.Appointment{BarberID: f.barber.ID, ClientID: f.client.ID, ServiceID: f.service.ID, Date: "2026-02-28", StartMinute: 600, EndMinute: 660, Status: "completed"})

	list, err := NewListAppointmentsByMonth(f.repo).Execute(ctx, admin, f.barber.ID, 2026, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Date != monday {
		t.Fatalf("march = %+v", list)
	}

	_, err = NewListAppointmentsByMonth(f.repo).Execute(ctx, admin, f.barber.ID, 2026, 13)
	wantKind(t, err, httperr.KindValidation)
}

func TestListClientHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.book(t, "10:00")
	f.book(t, "15:00")

	h, err := NewListClientHistory(f.repo).Execute(ctx, f.clientActor(), f.client.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(h.Appointments) != 2 || h.Appointments[0].StartTime != "15:00" {
		t.Fatalf("history = %+v", h.Appointments)
	}
	if h.Appointments[0].BarberName != "Luis" {
		t.Fatalf("barber not loaded: %+v", h.Appointments[0])
	}

	_, err = NewListClientHistory(f.repo).Execute(ctx, domain.Actor{ID: f.client2.ID, Role: domain.RoleClient}, f.client.ID)
	wantKind(t, err, httperr.KindForbidden)

	_, err = NewListClientHistory(f.repo).Execute(ctx, domain.Actor{ID: 1, Role: domain.RoleAdmin}, 999)
	wantKind(t, err, httperr.KindNotFound)
}

func TestAvailabilityEdgeCases(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	day, err := f.availability.Execute(ctx, domain.AvailabilityInput{BarberID: f.barber.ID, Date: sunday})
	if err != nil {
		t.Fatalf("sunday: %v", err)
	}
	if day.Working || day.Status != domain.DayStatusDayOff || len(day.Slots) != 0 || day.Weekday != domain.Sunday {
		t.Fatalf("sunday = %+v", day)
	}

	_, err = f.availability.Execute(ctx, domain.AvailabilityInput{BarberID: 999, Date: monday})
	wantKind(t, err, httperr.KindNotFound)

	_, err = f.availability.Execute(ctx, domain.AvailabilityInput{BarberID: f.barber.ID, Date: "tomorrow"})
	wantKind(t, err, httperr.KindValidation)

	f.book(t, "11:00")
	for _, s := range f.day(t, true).Slots {
		if s.Start == "11:00" && s.ClientName != "Ana" {
			t.Fatalf("occupant not shown to provider view: %+v", s)
		}
	}

	// Inactive row is a day off too.
	f.repo.SeedWorkingHours(models.WorkingHours{BarberID: f.barber.ID, Weekday: int(domain.Monday), StartTime: "10:00", EndTime: "20:00"})
	if day := f.day(t, false); day.Working || day.Status != domain.DayStatusDayOff {
		t.Fatalf("inactive monday = %+v", day)
	}
}

func TestAvailabilityEmptyCatalogFallsBackToHour(t *testing.T) {
	f := newFixture(t)
	f.repo.SeedService(models.Service{ID: f.service.ID, Name: "Corte", DurationMin: 60, Active: false})

	if day := f.day(t, false); day.GranularityMin != domain.DefaultGranularityMin {
		t.Fatalf("granularity = %d", day.GranularityMin)
	}
}
