package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/usecase/catalog"
)

type CatalogHandler struct {
	catalog *catalog.UseCase
}

func NewCatalogHandler(uc *catalog.UseCase) *CatalogHandler {
	return &CatalogHandler{catalog: uc}
}

// --------- Handlers ---------

func (h *CatalogHandler) List(c *gin.Context) {
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))

	services, err := h.catalog.List(c.Request.Context(), category)
	if err != nil {
		httperr.FromError(c, err, "failed_to_list_services")
		return
	}

	httpresp.List(c, services)
}

func (h *CatalogHandler) Create(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req catalog.CreateServiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	service, err := h.catalog.Create(c.Request.Context(), actor, req)
	if err != nil {
		httperr.FromError(c, err, "failed_to_create_service")
		return
	}

	httpresp.Created(c, service)
}
