package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/usecase/block"
)

type BlockHandler struct {
	blocks *block.UseCase
}

func NewBlockHandler(uc *block.UseCase) *BlockHandler {
	return &BlockHandler{blocks: uc}
}

// Empty start and end block the whole day.
type CreateBlockRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason"`
}

func (h *BlockHandler) Create(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	barberID, err := uintParam(c, "id")
	if err != nil {
		httperr.FromError(c, err, "invalid_request")
		return
	}

	var req CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	b, err := h.blocks.Create(c.Request.Context(), block.CreateInput{
		Actor:    actor,
		BarberID: barberID,
		Date:     req.Date,
		Start:    req.StartTime,
		End:      req.EndTime,
		Reason:   req.Reason,
	})
	if err != nil {
		httperr.FromError(c, err, "failed_to_create_block")
		return
	}

	httpresp.Created(c, b)
}

func (h *BlockHandler) Delete(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	id, err := uintParam(c, "id")
	if err != nil {
		httperr.FromError(c, err, "invalid_request")
		return
	}

	if err := h.blocks.Delete(c.Request.Context(), actor, id); err != nil {
		httperr.FromError(c, err, "failed_to_delete_block")
		return
	}

	c.Status(http.StatusNoContent)
}
