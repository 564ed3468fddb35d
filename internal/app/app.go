package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/barber-booking/internal/db"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
	infraRepo "github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/barber-booking/internal/usecase/appointment"
	"github.com/BruksfildServices01/barber-booking/internal/usecase/block"
	"github.com/BruksfildServices01/barber-booking/internal/usecase/catalog"
	"github.com/BruksfildServices01/barber-booking/internal/usecase/reconcile"
	"github.com/BruksfildServices01/barber-booking/internal/usecase/reminder"
	"github.com/BruksfildServices01/barber-booking/internal/usecase/workinghours"
)

// App holds the store, the side channels and every use case built on
// them. Commands and routes only read from it.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Clock  timezone.Clock

	Repo domain.Repository
	// DB is nil with the memory store.
	DB *gorm.DB

	Audit   audit.Recorder
	Events  notify.Publisher
	Limiter middleware.Limiter

	Availability  *ucAppointment.GetAvailability
	Create        *ucAppointment.CreateAppointment
	Transition    *ucAppointment.TransitionAppointment
	ListByDate    *ucAppointment.ListAppointmentsByDate
	ListByMonth   *ucAppointment.ListAppointmentsByMonth
	ClientHistory *ucAppointment.ListClientHistory
	Catalog       *catalog.UseCase
	WorkingHours  *workinghours.UseCase
	Blocks        *block.UseCase
	Reconciler    *reconcile.Reconciler
	Reminders     *reminder.SendReminders

	closers []func() error
}

// Deps are the pieces New picks from the configuration. Tests pass
// their own.
type Deps struct {
	Repo    domain.Repository
	DB      *gorm.DB
	Sink    audit.Sink
	Events  notify.Publisher
	Limiter middleware.Limiter
	Clock   timezone.Clock
}

// New opens the configured store, publisher and limiter and builds the
// use cases on top of them.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	var deps Deps

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		deps.Repo = infraRepo.NewMemoryRepository()
		deps.Sink = audit.NewLogSink(logger)
		logger.Warn("using in-memory store, data is lost on restart")

	default:
		db, err := dbpkg.NewDB(cfg, logger)
		if err != nil {
			return nil, err
		}
		deps.DB = db
		deps.Repo = infraRepo.NewAppointmentGormRepository(db)
		deps.Sink = audit.NewDBSink(db)
	}

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		deps.Events = notify.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		logger.Info("publishing events to kafka",
			zap.Strings("brokers", brokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	} else {
		deps.Events = notify.NewLogPublisher(logger)
	}

	limiter, closeLimiter := newLimiter(ctx, cfg, logger)
	deps.Limiter = limiter

	a := NewWithDeps(cfg, logger, deps)
	a.closers = append(a.closers, closeLimiter)
	if deps.DB != nil {
		a.closers = append(a.closers, func() error {
			sqlDB, err := deps.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
	}
	return a, nil
}

// NewWithDeps wires the use cases over the given store and side
// channels. Missing pieces get in-process defaults.
func NewWithDeps(cfg *config.Config, logger *zap.Logger, deps Deps) *App {
	if deps.Sink == nil {
		deps.Sink = audit.NewLogSink(logger)
	}
	if deps.Events == nil {
		deps.Events = notify.NewLogPublisher(logger)
	}
	if deps.Limiter == nil {
		deps.Limiter = middleware.NewLocalLimiter(cfg.RateLimitPerMin)
	}
	if deps.Clock == nil {
		deps.Clock = timezone.NewClock(cfg.Timezone)
	}

	dispatcher := audit.NewDispatcher(deps.Sink, logger, cfg.AuditQueueSize)

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Clock:   deps.Clock,
		Repo:    deps.Repo,
		DB:      deps.DB,
		Audit:   dispatcher,
		Events:  deps.Events,
		Limiter: deps.Limiter,
	}

	createCfg := ucAppointment.CreateAppointmentConfig{
		Granularity:   cfg.SlotGranularityMinutes,
		InitialStatus: domain.Status(cfg.InitialStatus),
	}

	a.Availability = ucAppointment.NewGetAvailability(a.Repo, cfg.SlotGranularityMinutes)
	a.Create = ucAppointment.NewCreateAppointment(a.Repo, a.Audit, a.Events, a.Clock, logger, createCfg)
	a.Transition = ucAppointment.NewTransitionAppointment(a.Repo, a.Audit, a.Events, a.Clock, logger)
	a.ListByDate = ucAppointment.NewListAppointmentsByDate(a.Repo)
	a.ListByMonth = ucAppointment.NewListAppointmentsByMonth(a.Repo)
	a.ClientHistory = ucAppointment.NewListClientHistory(a.Repo)
	a.Catalog = catalog.New(a.Repo, a.Audit)
	a.WorkingHours = workinghours.New(a.Repo, a.Audit)
	a.Blocks = block.New(a.Repo, a.Audit)
	a.Reconciler = reconcile.NewReconciler(a.Repo, a.Audit, logger, timezone.Location(cfg.Timezone), cfg.ReconcileBatchSize)
	a.Reminders = reminder.NewSendReminders(a.Repo, a.Events, logger)

	// Closed in order: the dispatcher flushes before the store goes.
	a.closers = append(a.closers,
		func() error { dispatcher.Close(); return nil },
		deps.Events.Close,
	)
	return a
}

// Close flushes queued audit entries and releases connections.
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// newLimiter prefers a Redis-backed limiter shared by all instances and
// falls back to a per-process one when Redis is not configured or not
// reachable at startup.
func newLimiter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (middleware.Limiter, func() error) {
	noop := func() error { return nil }
	if cfg.RedisAddr == "" {
		return middleware.NewLocalLimiter(cfg.RateLimitPerMin), noop
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-process rate limiter",
			zap.String("addr", cfg.RedisAddr),
			zap.Error(err),
		)
		_ = rdb.Close()
		return middleware.NewLocalLimiter(cfg.RateLimitPerMin), noop
	}

	logger.Info("rate limiting through redis", zap.String("addr", cfg.RedisAddr))
	return middleware.NewRedisLimiter(rdb, cfg.RateLimitPerMin, time.Minute), rdb.Close
}

// Migrate applies the schema. It is a no-op for the memory store.
func (a *App) Migrate() error {
	if a.DB == nil {
		return nil
	}
	if err := dbpkg.Migrate(a.DB, a.Logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
