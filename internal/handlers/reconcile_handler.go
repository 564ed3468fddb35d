package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
	"github.com/BruksfildServices01/barber-booking/internal/usecase/reconcile"
)

type ReconcileHandler struct {
	reconciler *reconcile.Reconciler
	clock      timezone.Clock
}

func NewReconcileHandler(r *reconcile.Reconciler, clock timezone.Clock) *ReconcileHandler {
	return &ReconcileHandler{reconciler: r, clock: clock}
}

// Run triggers the same pass the scheduler runs hourly. Concurrent runs
// are safe.
func (h *ReconcileHandler) Run(c *gin.Context) {
	res, err := h.reconciler.Run(c.Request.Context(), h.clock())
	if err != nil {
		httperr.FromError(c, err, "reconcile_failed")
		return
	}

	httpresp.OK(c, res)
}
