package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/app"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	"github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/logging"
	"github.com/BruksfildServices01/barber-booking/internal/routes"
	"github.com/BruksfildServices01/barber-booking/internal/scheduler"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
	"github.com/BruksfildServices01/barber-booking/internal/tracing"
)

const jobTimeout = 5 * time.Minute

func serveCmd() *cobra.Command {
	var seedDemo bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(seedDemo)
		},
	}
	cmd.Flags().BoolVar(&seedDemo, "seed-demo", false, "load demo barbers, services and clients (memory store only)")
	return cmd
}

// bootstrap loads config and opens everything the commands share.
func bootstrap(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	return app.New(ctx, cfg, logger)
}

func runServer(seedDemo bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	cfg, logger := a.Config, a.Logger
	defer func() { _ = logger.Sync() }()
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("close", zap.Error(err))
		}
	}()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     cfg.OTelEnabled,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		return err
	}

	if err := a.Migrate(); err != nil {
		return err
	}

	if mem, ok := a.Repo.(*repository.MemoryRepository); ok && seedDemo {
		seedDemoData(mem)
		logger.Info("demo data loaded")
	}

	// --------------------------------------------------
	// Background jobs
	// --------------------------------------------------

	jobs := scheduler.NewCronScheduler(timezone.Location(cfg.Timezone), logger, jobTimeout)
	if err := registerJobs(jobs, a); err != nil {
		return err
	}
	jobs.Start()

	// --------------------------------------------------
	// HTTP
	// --------------------------------------------------

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	routes.RegisterRoutes(r, a)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(r, "barber-booking"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		logger.Error("scheduler shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", zap.Error(err))
	}
	return nil
}

func registerJobs(s scheduler.Scheduler, a *app.App) error {
	if err := s.Register("reconcile", a.Config.ReconcileSchedule, func(ctx context.Context) error {
		res, err := a.Reconciler.Run(ctx, a.Clock())
		if err != nil {
			return err
		}
		a.Logger.Info("reconcile finished",
			zap.Int("completed", res.Completed),
			zap.Int("counted", res.Counted),
			zap.Int("failed", res.Failed),
		)
		return nil
	}); err != nil {
		return err
	}

	return s.Register("reminders", a.Config.ReminderSchedule, func(ctx context.Context) error {
		sent, err := a.Reminders.Execute(ctx, a.Clock())
		if err != nil {
			return err
		}
		a.Logger.Info("reminders published", zap.Int("count", sent))
		return nil
	})
}
