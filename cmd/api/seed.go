package main

import (
	"github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// seedDemoData gives a fresh memory store two barbers working Monday to
// Saturday, a small catalog and two clients.
func seedDemoData(repo *repository.MemoryRepository) {
	barbers := []models.Barber{
		repo.SeedBarber(models.Barber{Name: "Luis", Phone: "+52 55 1000 0001", Active: true}),
		repo.SeedBarber(models.Barber{Name: "Marco", Phone: "+52 55 1000 0002", Active: true}),
	}

	for _, b := range barbers {
		for wd := 1; wd <= 6; wd++ {
			end := "20:00"
			if wd == 6 {
				end = "15:00"
			}
			repo.SeedWorkingHours(models.WorkingHours{
				BarberID:  b.ID,
				Weekday:   wd,
				StartTime: "10:00",
				EndTime:   end,
				Active:    true,
			})
		}
	}

	repo.SeedService(models.Service{Name: "Corte", DurationMin: 30, Price: 150, Active: true, Category: models.ServiceCategoryIndividual})
	repo.SeedService(models.Service{Name: "Barba", DurationMin: 30, Price: 100, Active: true, Category: models.ServiceCategoryIndividual})
	repo.SeedService(models.Service{Name: "Corte y barba", DurationMin: 60, Price: 230, Active: true, Category: models.ServiceCategoryPackage})

	repo.SeedClient(models.Client{Name: "Ana", Phone: "+52 55 2000 0001", Email: "ana@example.com"})
	repo.SeedClient(models.Client{Name: "Beto", Phone: "+52 55 2000 0002"})
}
