package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one run of a periodic task.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on cron specs. Implementations must not run
// two instances of the same job concurrently.
type Scheduler interface {
	Register(name, spec string, job Job) error
	Start()
	Stop(ctx context.Context) error
}

type CronScheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// NewCronScheduler evaluates specs in loc. Each run gets a context that is
// cancelled on Stop or after timeout.
func NewCronScheduler(loc *time.Location, logger *zap.Logger, timeout time.Duration) *CronScheduler {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	cl := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())

	return &CronScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(
				cron.Recover(cl),
				cron.SkipIfStillRunning(cl),
			),
		),
		logger:  logger,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *CronScheduler) Register(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed",
				zap.String("job", name),
				zap.Duration("took", time.Since(start)),
				zap.Error(err),
			)
			return
		}
		s.logger.Debug("scheduled job finished",
			zap.String("job", name),
			zap.Duration("took", time.Since(start)),
		)
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.logger.Info("job scheduled", zap.String("job", name), zap.String("spec", spec))
	return nil
}

func (s *CronScheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them, or for ctx.
func (s *CronScheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}

// --------------------------------------------------
// Manual
// --------------------------------------------------

// Manual records registrations and runs jobs only when triggered.
type Manual struct {
	mu   sync.Mutex
	jobs map[string]Job
	spec map[string]string
}

func NewManual() *Manual {
	return &Manual{jobs: map[string]Job{}, spec: map[string]string{}}
}

func (m *Manual) Register(name, spec string, job Job) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[name] = job
	m.spec[name] = spec
	return nil
}

func (m *Manual) Start() {}

func (m *Manual) Stop(context.Context) error { return nil }

func (m *Manual) Spec(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	spec, ok := m.spec[name]
	return spec, ok
}

func (m *Manual) Trigger(ctx context.Context, name string) error {
	m.mu.Lock()
	job, ok := m.jobs[name]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("no job named %s", name)
	}
	return job(ctx)
}
