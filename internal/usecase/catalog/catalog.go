package catalog

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type CreateServiceInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	DurationMin int     `json:"duration_min"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

type UseCase struct {
	repo  domain.Repository
	audit audit.Recorder
}

func New(repo domain.Repository, audit audit.Recorder) *UseCase {
	return &UseCase{repo: repo, audit: audit}
}

func (uc *UseCase) List(ctx context.Context, category string) ([]models.Service, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category != "" && !validCategory(category) {
		return nil, httperr.Validation("invalid_category", "category must be individual or package")
	}
	return uc.repo.ListServices(ctx, category)
}

func (uc *UseCase) Create(ctx context.Context, actor domain.Actor, in CreateServiceInput) (*models.Service, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, httperr.Forbidden("forbidden", "only admins manage the catalog")
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if in.Category == "" {
		in.Category = models.ServiceCategoryIndividual
	}

	switch {
	case in.Name == "" || len(in.Name) > 100:
		return nil, httperr.Validation("invalid_name", "name is required (max 100 characters)")
	case in.DurationMin <= 0 || in.DurationMin > domain.MinutesPerDay:
		return nil, httperr.Validation("invalid_duration", "duration_min must be between 1 and 1440")
	case in.Price < 0:
		return nil, httperr.Validation("invalid_price", "price must not be negative")
	case !validCategory(in.Category):
		return nil, httperr.Validation("invalid_category", "category must be individual or package")
	}

	svc := &models.Service{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		DurationMin: in.DurationMin,
		Price:       in.Price,
		Category:    in.Category,
		Active:      true,
	}
	if err := uc.repo.CreateService(ctx, svc); err != nil {
		return nil, err
	}

	id := actor.ID
	uc.audit.Dispatch(audit.Event{
		ActorID:   &id,
		ActorRole: string(actor.Role),
		Action:    audit.ActionServiceCreated,
		Entity:    "service",
		EntityID:  &svc.ID,
	})
	return svc, nil
}

func validCategory(c string) bool {
	return c == models.ServiceCategoryIndividual || c == models.ServiceCategoryPackage
}
