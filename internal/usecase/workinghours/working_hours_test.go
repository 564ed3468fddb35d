package workinghours

import (
	"context"
	"testing"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

func TestReplaceWorkingHours(t *testing.T) {
	repo := repository.NewMemoryRepository()
	barber := repo.SeedBarber(models.Barber{Name: "Luis", Active: true})
	repo.SeedWorkingHours(models.WorkingHours{BarberID: barber.ID, Weekday: 0, StartTime: "09:00", EndTime: "13:00", Active: true})
	uc := New(repo, audit.Nop())
	ctx := context.Background()
	owner := domain.Actor{ID: barber.ID, Role: domain.RoleProvider}

	hours, err := uc.Replace(ctx, owner, barber.ID, []DayInput{
		{Weekday: 5, Start: "10:00", End: "20:00", Active: true},
		{Weekday: 1, Start: "10:00", End: "20:00", Active: true},
		{Weekday: 2, Active: false},
	})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if len(hours) != 3 || hours[0].Weekday != 1 || hours[2].Weekday != 5 {
		t.Fatalf("hours = %+v", hours)
	}

	if _, err := repo.GetWorkingHours(ctx, barber.ID, domain.Sunday); err == nil {
		t.Fatal("sunday row should be gone")
	}
}

func TestReplaceWorkingHoursValidation(t *testing.T) {
	repo := repository.NewMemoryRepository()
	barber := repo.SeedBarber(models.Barber{Name: "Luis", Active: true})
	uc := New(repo, audit.Nop())
	ctx := context.Background()
	admin := domain.Actor{ID: 1, Role: domain.RoleAdmin}

	tests := []struct {
		name  string
		actor domain.Actor
		days  []DayInput
		kind  httperr.Kind
	}{
		{"weekday 7", admin, []DayInput{{Weekday: 7, Start: "10:00", End: "20:00", Active: true}}, httperr.KindValidation},
		{"duplicate", admin, []DayInput{{Weekday: 1, Active: false}, {Weekday: 1, Active: false}}, httperr.KindValidation},
		{"close before open", admin, []DayInput{{Weekday: 1, Start: "20:00", End: "10:00", Active: true}}, httperr.KindValidation},
		{"missing end", admin, []DayInput{{Weekday: 1, Start: "10:00", Active: true}}, httperr.KindValidation},
		{"garbage", admin, []DayInput{{Weekday: 1, Start: "ten", End: "20:00", Active: true}}, httperr.KindValidation},
		{"other provider", domain.Actor{ID: 99, Role: domain.RoleProvider}, nil, httperr.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Replace(ctx, tt.actor, barber.ID, tt.days)
			if !httperr.IsKind(err, tt.kind) {
				t.Fatalf("err = %v, want %s", err, tt.kind)
			}
		})
	}

	if _, err := uc.Get(ctx, 404); !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("Get unknown barber err = %v", err)
	}
}
