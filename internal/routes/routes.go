package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-booking/internal/app"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/handlers"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.Logger(a.Logger),
		middleware.CORSMiddleware(a.Config.AllowedOrigins()),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ======================================================
	// HANDLERS
	// ======================================================
	catalogHandler := handlers.NewCatalogHandler(a.Catalog)
	availabilityHandler := handlers.NewAvailabilityHandler(a.Availability, a.Clock)
	workingHoursHandler := handlers.NewWorkingHoursHandler(a.WorkingHours)
	blockHandler := handlers.NewBlockHandler(a.Blocks)
	clientHandler := handlers.NewClientHandler(a.ClientHistory)
	reconcileHandler := handlers.NewReconcileHandler(a.Reconciler, a.Clock)

	appointmentHandler := handlers.NewAppointmentHandler(
		a.Create,
		a.Transition,
		a.ListByDate,
		a.ListByMonth,
		a.Clock,
	)

	secret := a.Config.JWTSecret
	auth := middleware.AuthMiddleware(secret)
	staff := middleware.RequireRole(domain.RoleProvider, domain.RoleAdmin)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	api.Use(middleware.RateLimit(a.Limiter, a.Logger))
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.GET("/services", catalogHandler.List)
		api.GET("/barbers/:id/working-hours", workingHoursHandler.Get)
		api.GET("/barbers/:id/availability", middleware.OptionalAuth(secret), availabilityHandler.Get)

		// ------------------------------
		// AUTHENTICATED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(auth)
		{
			secured.POST("/services", adminOnly, catalogHandler.Create)

			secured.PUT("/barbers/:id/working-hours", staff, workingHoursHandler.Update)
			secured.POST("/barbers/:id/blocks", staff, blockHandler.Create)
			secured.DELETE("/blocks/:id", staff, blockHandler.Delete)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/appointments", appointmentHandler.Create)
			secured.GET("/appointments", staff, appointmentHandler.ListByDate)
			secured.GET("/appointments/month", staff, appointmentHandler.ListByMonth)
			secured.PATCH("/appointments/:id/status", appointmentHandler.UpdateStatus)
			secured.POST("/appointments/:id/cancel", appointmentHandler.Cancel)

			secured.GET("/me/appointments", middleware.RequireRole(domain.RoleClient), clientHandler.MyAppointments)
			secured.GET("/clients/:id/appointments", adminOnly, clientHandler.Appointments)

			// ------------------------------
			// ADMIN
			// ------------------------------
			secured.POST("/admin/reconcile", adminOnly, reconcileHandler.Run)

			if a.DB != nil {
				auditLogsHandler := handlers.NewAuditLogsHandler(a.DB)
				secured.GET("/audit-logs", adminOnly, auditLogsHandler.List)
			}
		}
	}
}
