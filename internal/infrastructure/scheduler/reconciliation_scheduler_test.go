package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/carbonlink/backend/internal/application/reconciliation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRunner counts runs and optionally blocks until released
type fakeRunner struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (r *fakeRunner) Run(ctx context.Context) (*reconciliation.RunReport, error) {
	r.calls.Add(1)
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return &reconciliation.RunReport{Companies: 3, Created: 2}, nil
}

func testConfig() ReconciliationSchedulerConfig {
	return ReconciliationSchedulerConfig{
		Enabled:    true,
		Interval:   time.Hour,
		RunTimeout: time.Second,
	}
}

func TestNewReconciliationScheduler_InvalidConfig(t *testing.T) {
	_, err := NewReconciliationScheduler(&fakeRunner{}, zap.NewNop(), ReconciliationSchedulerConfig{Enabled: true})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestReconciliationScheduler_RunOnStart(t *testing.T) {
	runner := &fakeRunner{}
	cfg := testConfig()
	cfg.RunOnStart = true
	s, err := NewReconciliationScheduler(runner, zap.NewNop(), cfg)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool { return s.LastRun() != nil }, time.Second, 10*time.Millisecond)
	last := s.LastRun()
	require.NoError(t, last.Err)
	assert.Equal(t, 2, last.Report.Created)

	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestReconciliationScheduler_TickerRuns(t *testing.T) {
	runner := &fakeRunner{}
	cfg := testConfig()
	cfg.Interval = 10 * time.Millisecond
	s, err := NewReconciliationScheduler(runner, zap.NewNop(), cfg)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return runner.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestReconciliationScheduler_NoOverlap(t *testing.T) {
	runner := &fakeRunner{release: make(chan struct{})}
	s, err := NewReconciliationScheduler(runner, zap.NewNop(), testConfig())
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, s.TriggerNow(context.Background()))
	assert.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, s.TriggerNow(context.Background()), ErrRunSkipped)

	// A tick arriving while the run is in flight is dropped
	s.execute(context.Background())
	assert.Equal(t, int64(1), s.SkippedRuns())
	assert.Equal(t, int32(1), runner.calls.Load())

	close(runner.release)
	assert.Eventually(t, func() bool { return s.LastRun() != nil }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestReconciliationScheduler_RunErrors(t *testing.T) {
	t.Run("lock held elsewhere counts as skipped", func(t *testing.T) {
		runner := &fakeRunner{err: reconciliation.ErrRunInProgress}
		s, err := NewReconciliationScheduler(runner, zap.NewNop(), testConfig())
		require.NoError(t, err)

		s.execute(context.Background())
		assert.Equal(t, int64(1), s.SkippedRuns())
		assert.ErrorIs(t, s.LastRun().Err, reconciliation.ErrRunInProgress)
	})

	t.Run("failure is recorded", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("cursor store unavailable")}
		s, err := NewReconciliationScheduler(runner, zap.NewNop(), testConfig())
		require.NoError(t, err)

		s.execute(context.Background())
		assert.Zero(t, s.SkippedRuns())
		assert.EqualError(t, s.LastRun().Err, "cursor store unavailable")
	})

	t.Run("run timeout cancels the run", func(t *testing.T) {
		runner := &fakeRunner{release: make(chan struct{})}
		cfg := testConfig()
		cfg.RunTimeout = 20 * time.Millisecond
		s, err := NewReconciliationScheduler(runner, zap.NewNop(), cfg)
		require.NoError(t, err)

		s.execute(context.Background())
		assert.ErrorIs(t, s.LastRun().Err, context.DeadlineExceeded)
	})
}

func TestReconciliationScheduler_Lifecycle(t *testing.T) {
	t.Run("disabled does not start", func(t *testing.T) {
		cfg := testConfig()
		cfg.Enabled = false
		s, err := NewReconciliationScheduler(&fakeRunner{}, zap.NewNop(), cfg)
		require.NoError(t, err)

		require.NoError(t, s.Start(context.Background()))
		assert.False(t, s.IsRunning())
		assert.ErrorIs(t, s.TriggerNow(context.Background()), ErrSchedulerNotRunning)
	})

	t.Run("stop before start is a no-op", func(t *testing.T) {
		s, err := NewReconciliationScheduler(&fakeRunner{}, zap.NewNop(), testConfig())
		require.NoError(t, err)
		assert.NoError(t, s.Stop(context.Background()))
	})

	t.Run("stop times out while a run is stuck", func(t *testing.T) {
		runner := &fakeRunner{release: make(chan struct{})}
		cfg := testConfig()
		cfg.RunTimeout = time.Minute
		s, err := NewReconciliationScheduler(runner, zap.NewNop(), cfg)
		require.NoError(t, err)
		require.NoError(t, s.Start(context.Background()))
		require.NoError(t, s.TriggerNow(context.Background()))
		assert.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

		stopCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, s.Stop(stopCtx), context.DeadlineExceeded)
		close(runner.release)
	})
}
