// Package scheduler runs the reconciliation pipeline on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carbonlink/backend/internal/application/reconciliation"
	"go.uber.org/zap"
)

// Runner executes one reconciliation run
type Runner interface {
	Run(ctx context.Context) (*reconciliation.RunReport, error)
}

// ReconciliationSchedulerConfig holds configuration for the reconciliation scheduler
type ReconciliationSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// Interval is the time between the start of two runs
	Interval time.Duration

	// RunTimeout is the maximum time for one run
	RunTimeout time.Duration

	// RunOnStart triggers a run immediately after Start
	RunOnStart bool
}

// DefaultReconciliationSchedulerConfig returns default configuration
func DefaultReconciliationSchedulerConfig() ReconciliationSchedulerConfig {
	return ReconciliationSchedulerConfig{
		Enabled:    true,
		Interval:   time.Hour,
		RunTimeout: 20 * time.Minute,
		RunOnStart: false,
	}
}

// Validate checks the configuration
func (c ReconciliationSchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return errors.Join(ErrInvalidConfig, errors.New("interval must be positive"))
	}
	if c.RunTimeout <= 0 {
		return errors.Join(ErrInvalidConfig, errors.New("run timeout must be positive"))
	}
	return nil
}

// RunStatus describes the most recent run
type RunStatus struct {
	StartedAt time.Time
	Duration  time.Duration
	Report    *reconciliation.RunReport
	Err       error
}

// ReconciliationScheduler triggers reconciliation runs. Runs never overlap
// within a process; the pipeline's run lock covers other processes.
type ReconciliationScheduler struct {
	runner Runner
	logger *zap.Logger
	config ReconciliationSchedulerConfig

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	inFlight atomic.Bool
	skipped  atomic.Int64
	last     atomic.Pointer[RunStatus]
}

// NewReconciliationScheduler creates a new reconciliation scheduler
func NewReconciliationScheduler(
	runner Runner,
	logger *zap.Logger,
	config ReconciliationSchedulerConfig,
) (*ReconciliationScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationScheduler{
		runner: runner,
		logger: logger,
		config: config,
	}, nil
}

// Start starts the reconciliation loop
func (s *ReconciliationScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Reconciliation scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Reconciliation scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("run_timeout", s.config.RunTimeout),
		zap.Bool("run_on_start", s.config.RunOnStart),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight run to finish
func (s *ReconciliationScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reconciliation scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Reconciliation scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *ReconciliationScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.execute(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Reconciliation loop stopping")
			return
		case <-ticker.C:
			s.execute(ctx)
		}
	}
}

// TriggerNow starts a run in the background. It returns ErrRunSkipped when a
// run is already in progress in this process.
func (s *ReconciliationScheduler) TriggerNow(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	if s.inFlight.Load() {
		s.mu.Unlock()
		return ErrRunSkipped
	}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Triggering immediate reconciliation run")
	go func() {
		defer s.wg.Done()
		s.execute(ctx)
	}()
	return nil
}

// execute runs the pipeline once unless a run is already in flight
func (s *ReconciliationScheduler) execute(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.logger.Warn("Reconciliation run skipped, previous run still in progress")
		return
	}
	defer s.inFlight.Store(false)

	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	startTime := time.Now()
	report, err := s.runner.Run(runCtx)
	status := &RunStatus{StartedAt: startTime, Duration: time.Since(startTime), Report: report, Err: err}
	s.last.Store(status)

	switch {
	case errors.Is(err, reconciliation.ErrRunInProgress):
		s.skipped.Add(1)
		s.logger.Info("Reconciliation run skipped, another instance holds the lock")
	case err != nil:
		s.logger.Error("Reconciliation run failed",
			zap.Duration("duration", status.Duration),
			zap.Error(err),
		)
	default:
		s.logger.Info("Reconciliation run completed",
			zap.Duration("duration", status.Duration),
			zap.Int("companies", report.Companies),
			zap.Int("created", report.Created),
			zap.Int("next_cursor", report.Window.NextCursor),
		)
	}
}

// LastRun returns the status of the most recent run, or nil before the first run
func (s *ReconciliationScheduler) LastRun() *RunStatus {
	return s.last.Load()
}

// SkippedRuns returns how many ticks were skipped because a run was in progress
func (s *ReconciliationScheduler) SkippedRuns() int64 {
	return s.skipped.Load()
}

// IsRunning returns whether the scheduler is running
func (s *ReconciliationScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
