package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks connection negotiation, recommendation review and
// reconciliation activity.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	relationshipCreatedTotal  *Counter
	relationshipStatusTotal   *Counter
	recommendationReviewTotal *Counter

	reconciliationRunsTotal    *Counter
	reconciliationCandidates   *Counter
	reconciliationCompanies    *Counter
	reconciliationRunDuration  *Histogram
	reconciliationCursorOffset *Gauge

	relationshipsByStatus        *Gauge
	unacknowledgedRecommendation *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	statsProvider ConnectionStatsProvider
}

// ConnectionStatsProvider supplies point-in-time counts for periodic gauges
type ConnectionStatsProvider interface {
	// CountRelationshipsByStatus returns the number of relationships per status
	CountRelationshipsByStatus(ctx context.Context) (map[string]int64, error)

	// CountUnacknowledgedRecommendations returns the number of open, non-deleted recommendations
	CountUnacknowledgedRecommendations(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter         metric.Meter
	Logger        *zap.Logger
	StatsProvider ConnectionStatsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		statsProvider: cfg.StatsProvider,
	}

	var err error
	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&bm.relationshipCreatedTotal, "carbonlink_relationship_created_total", "Connection requests sent", "{requests}"},
		{&bm.relationshipStatusTotal, "carbonlink_relationship_status_changed_total", "Relationship status changes", "{changes}"},
		{&bm.recommendationReviewTotal, "carbonlink_recommendation_reviewed_total", "Recommendations accepted or dismissed", "{reviews}"},
		{&bm.reconciliationRunsTotal, "carbonlink_reconciliation_runs_total", "Reconciliation runs by result", "{runs}"},
		{&bm.reconciliationCandidates, "carbonlink_reconciliation_candidates_total", "Related-company candidates by outcome", "{candidates}"},
		{&bm.reconciliationCompanies, "carbonlink_reconciliation_companies_total", "Companies processed by provider outcome", "{companies}"},
	}
	for _, c := range counters {
		*c.target, err = NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
	}

	bm.reconciliationRunDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "carbonlink_reconciliation_run_duration_seconds",
		Description: "Duration of reconciliation runs",
		Unit:        "s",
		Boundaries:  []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})
	if err != nil {
		return nil, err
	}

	bm.reconciliationCursorOffset, err = NewGauge(cfg.Meter,
		"carbonlink_reconciliation_cursor",
		"Position of the reconciliation cursor after the last run",
		"{companies}",
	)
	if err != nil {
		return nil, err
	}

	bm.relationshipsByStatus, err = NewGauge(cfg.Meter,
		"carbonlink_relationships",
		"Current relationships by status",
		"{relationships}",
	)
	if err != nil {
		return nil, err
	}

	bm.unacknowledgedRecommendation, err = NewGauge(cfg.Meter,
		"carbonlink_recommendations_unacknowledged",
		"Recommendations waiting for review",
		"{recommendations}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Connection Metrics
// =============================================================================

// RecordRelationshipCreated records a connection request.
func (bm *BusinessMetrics) RecordRelationshipCreated(ctx context.Context, inviteType string) {
	bm.relationshipCreatedTotal.Inc(ctx, AttrInviteType.String(inviteType))
}

// RecordRelationshipStatusChanged records a status transition.
func (bm *BusinessMetrics) RecordRelationshipStatusChanged(ctx context.Context, from, to string) {
	bm.relationshipStatusTotal.Inc(ctx,
		AttrFromStatus.String(from),
		AttrToStatus.String(to),
	)
}

// RecordRecommendationReviewed records a review decision.
func (bm *BusinessMetrics) RecordRecommendationReviewed(ctx context.Context, status string) {
	bm.recommendationReviewTotal.Inc(ctx, AttrToStatus.String(status))
}

// =============================================================================
// Reconciliation Metrics
// =============================================================================

// ReconciliationRun summarizes one reconciliation run for metrics.
type ReconciliationRun struct {
	Succeeded bool
	Duration  time.Duration
	Cursor    int

	Resolved       int
	Unavailable    int
	ProviderFailed int
	Skipped        int

	Created    int
	Duplicates int
	Unkeyed    int
	Failed     int
}

// RecordReconciliationRun records the counters of a finished run.
func (bm *BusinessMetrics) RecordReconciliationRun(ctx context.Context, run ReconciliationRun) {
	result := "success"
	if !run.Succeeded {
		result = "error"
	}
	bm.reconciliationRunsTotal.Inc(ctx, AttrResult.String(result))
	bm.reconciliationRunDuration.RecordDuration(ctx, run.Duration, AttrResult.String(result))
	if !run.Succeeded {
		return
	}

	bm.reconciliationCursorOffset.Record(ctx, int64(run.Cursor))

	for outcome, n := range map[string]int{
		"resolved":        run.Resolved,
		"unavailable":     run.Unavailable,
		"provider_failed": run.ProviderFailed,
		"skipped":         run.Skipped,
	} {
		if n > 0 {
			bm.reconciliationCompanies.Add(ctx, int64(n), AttrOutcome.String(outcome))
		}
	}
	for outcome, n := range map[string]int{
		"created":   run.Created,
		"duplicate": run.Duplicates,
		"unkeyed":   run.Unkeyed,
		"failed":    run.Failed,
	} {
		if n > 0 {
			bm.reconciliationCandidates.Add(ctx, int64(n), AttrOutcome.String(outcome))
		}
	}
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectConnectionStats(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectConnectionStats(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectConnectionStats(ctx context.Context) {
	if bm.statsProvider == nil {
		bm.logger.Debug("No stats provider configured, skipping connection metrics collection")
		return
	}

	byStatus, err := bm.statsProvider.CountRelationshipsByStatus(ctx)
	if err != nil {
		bm.logger.Warn("Failed to count relationships by status", zap.Error(err))
	} else {
		for status, count := range byStatus {
			bm.relationshipsByStatus.Record(ctx, count, AttrStatus.String(status))
		}
	}

	open, err := bm.statsProvider.CountUnacknowledgedRecommendations(ctx)
	if err != nil {
		bm.logger.Warn("Failed to count unacknowledged recommendations", zap.Error(err))
	} else {
		bm.unacknowledgedRecommendation.Record(ctx, open)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// Business metrics attribute keys not already defined in metrics.go
var (
	AttrInviteType = attribute.Key("invite_type")
	AttrFromStatus = attribute.Key("from_status")
	AttrToStatus   = attribute.Key("to_status")
	AttrStatus     = attribute.Key("status")
	AttrOutcome    = attribute.Key("outcome")
	AttrResult     = attribute.Key("result")
)
