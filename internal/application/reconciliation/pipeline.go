// Package reconciliation runs the batch job that turns provider identity data
// into relationship recommendations, advancing a persisted cursor through the
// companies that carry a canonical external id.
package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carbonlink/backend/internal/domain/company"
	"github.com/carbonlink/backend/internal/domain/identifier"
	"github.com/carbonlink/backend/internal/domain/recommendation"
	"github.com/carbonlink/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	DefaultBatchSize = 25
	DefaultCursorKey = "reconciliation.cursor"
	DefaultLockKey   = "reconciliation.lock"
	DefaultLockTTL   = 30 * time.Minute
)

// Config holds pipeline settings
type Config struct {
	BatchSize int
	CursorKey string
	LockKey   string
	LockTTL   time.Duration
}

func (c *Config) applyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.CursorKey == "" {
		c.CursorKey = DefaultCursorKey
	}
	if c.LockKey == "" {
		c.LockKey = DefaultLockKey
	}
	if c.LockTTL <= 0 {
		c.LockTTL = DefaultLockTTL
	}
}

// RunReport summarizes one run
type RunReport struct {
	Window         Window
	PreviousCursor int
	Companies      int

	// Identifier conversion outcomes, per company
	Resolved       int
	Unavailable    int
	ProviderFailed int
	// Resolved answers without identities or a name
	Skipped int

	// Related-company lookups, per company and direction
	RelatedUnavailable int
	RelatedFailed      int

	// Candidate persistence outcomes
	Created    int
	Duplicates int
	Enriched   int
	Unkeyed    int
	Failed     int

	Duration time.Duration
}

// Pipeline is the reconciliation batch job
type Pipeline struct {
	companies       company.CompanyRepository
	recommendations recommendation.RecommendationRepository
	client          identifier.Client
	cursors         CursorStore
	lock            RunLock
	config          Config
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewPipeline creates a pipeline. lock may be nil for single-process deployments.
func NewPipeline(
	companies company.CompanyRepository,
	recommendations recommendation.RecommendationRepository,
	client identifier.Client,
	cursors CursorStore,
	lock RunLock,
	cfg Config,
	logger *zap.Logger,
) *Pipeline {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		companies:       companies,
		recommendations: recommendations,
		client:          client,
		cursors:         cursors,
		lock:            lock,
		config:          cfg,
		logger:          logger.Named("reconciliation"),
	}
}

// SetBusinessMetrics sets the business metrics recorder
func (p *Pipeline) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	p.businessMetrics = bm
}

// Run processes the next window of companies. Per-row failures are counted
// and do not stop the run; failures reading the cursor, loading companies,
// converting identifiers or saving the cursor abort it before the cursor moves.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "run")
	defer span.End()

	started := time.Now()

	if p.lock != nil {
		acquired, err := p.lock.TryLock(ctx, p.config.LockKey, p.config.LockTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		if !acquired {
			return nil, ErrRunInProgress
		}
		defer func() {
			if err := p.lock.Unlock(context.WithoutCancel(ctx), p.config.LockKey); err != nil {
				p.logger.Warn("Failed to release run lock", zap.Error(err))
			}
		}()
	}

	report, err := p.run(ctx)
	if report != nil {
		report.Duration = time.Since(started)
	}
	p.recordMetrics(ctx, report, err, time.Since(started))

	if err != nil {
		telemetry.RecordError(span, err)
		p.logger.Error("Reconciliation run aborted", zap.Error(err))
		return nil, err
	}

	telemetry.SetAttributes(span,
		"window_start", report.Window.Start,
		"window_end", report.Window.End,
		"created", report.Created,
		"duplicates", report.Duplicates,
	)
	telemetry.SetOK(span)

	p.logger.Info("Reconciliation run completed",
		zap.Int("window_start", report.Window.Start),
		zap.Int("window_end", report.Window.End),
		zap.Int("next_cursor", report.Window.NextCursor),
		zap.Int("companies", report.Companies),
		zap.Int("resolved", report.Resolved),
		zap.Int("unavailable", report.Unavailable),
		zap.Int("provider_failed", report.ProviderFailed),
		zap.Int("skipped", report.Skipped),
		zap.Int("created", report.Created),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("unkeyed", report.Unkeyed),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (p *Pipeline) run(ctx context.Context) (*RunReport, error) {
	cursor, err := p.cursors.Get(ctx, p.config.CursorKey)
	if err != nil {
		return nil, fmt.Errorf("read cursor: %w", err)
	}

	companies, err := p.companies.FindWithExternalID(ctx)
	if err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}

	window := ComputeWindow(cursor, len(companies), p.config.BatchSize)
	report := &RunReport{
		Window:         window,
		PreviousCursor: cursor,
		Companies:      window.Len(),
	}
	if window.Len() == 0 {
		p.logger.Info("No companies with an external id, nothing to reconcile")
		return report, nil
	}

	slice := companies[window.Start:window.End]
	ids := make([]string, len(slice))
	for i := range slice {
		ids[i] = slice[i].ExternalIDValue()
	}

	results, err := p.client.ConvertIdentifiers(ctx, identifier.SchemeDUNS, ids)
	if err != nil {
		return nil, fmt.Errorf("convert identifiers: %w", err)
	}

	classes := identifier.Classify(results)
	report.Unavailable = len(classes.Unavailable)
	report.ProviderFailed = len(classes.Failed)
	for _, i := range classes.Failed {
		p.logger.Warn("Identifier conversion failed",
			zap.String("company_id", slice[i].ID.String()),
			zap.String("external_id", results[i].Input.Value),
			zap.Error(results[i].Err),
		)
	}

	for _, i := range classes.Resolved {
		ident, ok := identifier.ExtractCompanyIdentifier(results[i])
		if !ok {
			report.Skipped++
			p.logger.Debug("Skipping resolved record without identities or name",
				zap.String("company_id", slice[i].ID.String()),
			)
			continue
		}
		report.Resolved++

		if err := p.reconcileCompany(ctx, &slice[i], ident, report); err != nil {
			return nil, err
		}
	}

	if err := p.cursors.Set(ctx, p.config.CursorKey, window.NextCursor); err != nil {
		return nil, fmt.Errorf("save cursor: %w", err)
	}
	return report, nil
}

var directions = []identifier.Direction{identifier.DirectionCustomers, identifier.DirectionSuppliers}

// reconcileCompany stores the related-company candidates of one resolved
// company. Only context cancellation is returned as an error.
func (p *Pipeline) reconcileCompany(ctx context.Context, target *company.Company, ident identifier.CompanyIdentifier, report *RunReport) error {
	ref := identifier.Reference{Scheme: identifier.SchemeDUNS, Value: ident.ExternalID}
	if ident.HasSecondaryID() {
		ref = identifier.Reference{Scheme: identifier.SchemeProviderID, Value: ident.SecondaryID}
	}

	for _, direction := range directions {
		candidates, err := p.client.RelatedCompanies(ctx, ref, direction)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if errors.Is(err, identifier.ErrDataUnavailable) {
				report.RelatedUnavailable++
				continue
			}
			report.RelatedFailed++
			p.logger.Warn("Related company lookup failed",
				zap.String("company_id", target.ID.String()),
				zap.String("direction", string(direction)),
				zap.Error(err),
			)
			continue
		}

		for _, candidate := range candidates {
			if err := ctx.Err(); err != nil {
				return err
			}
			p.storeCandidate(ctx, target, direction, candidate, report)
		}
	}
	return nil
}

func (p *Pipeline) storeCandidate(ctx context.Context, target *company.Company, direction identifier.Direction, candidate identifier.Candidate, report *RunReport) {
	ident := identifier.ExtractCandidate(candidate)
	if !ident.HasSecondaryID() {
		report.Unkeyed++
		p.logger.Debug("Skipping candidate without secondary id",
			zap.String("target_company_id", target.ID.String()),
			zap.String("candidate_name", ident.Name),
		)
		return
	}

	var externalID *string
	if ident.ExternalID != "" {
		externalID = &ident.ExternalID
	}
	data := recommendation.BusinessData{
		Name:    ident.Name,
		Sector:  candidate.Sector,
		Region:  candidate.Region,
		Country: candidate.Country,
	}
	relType := recommendation.MapProviderType(candidate.ProviderRelationshipType, relationshipTypeFor(direction))

	rec, err := recommendation.NewRecommendation(target.ID, ident.SecondaryID, relType, candidate.ProviderRelationshipType, externalID, data)
	if err != nil {
		report.Failed++
		p.logger.Warn("Invalid recommendation candidate", zap.String("secondary_id", ident.SecondaryID), zap.Error(err))
		return
	}

	_, created, err := p.recommendations.InsertIfAbsent(ctx, rec)
	if err != nil {
		report.Failed++
		p.logger.Error("Failed to store recommendation",
			zap.String("target_company_id", target.ID.String()),
			zap.String("secondary_id", ident.SecondaryID),
			zap.Error(err),
		)
		return
	}
	if created {
		report.Created++
		return
	}

	report.Duplicates++
	if data.IsEmpty() {
		return
	}
	if err := p.recommendations.EnrichBusinessData(ctx, rec.Lookup(), data); err != nil {
		report.Failed++
		p.logger.Error("Failed to enrich recommendation",
			zap.String("target_company_id", target.ID.String()),
			zap.String("secondary_id", ident.SecondaryID),
			zap.Error(err),
		)
		return
	}
	report.Enriched++
}

// FlagStale marks every recommendation for candidates that left the
// provider's dataset. Rows are kept for history.
func (p *Pipeline) FlagStale(ctx context.Context, secondaryIDs []string) (int64, error) {
	if len(secondaryIDs) == 0 {
		return 0, nil
	}
	n, err := p.recommendations.SetDeletedFlag(ctx, secondaryIDs)
	if err != nil {
		return 0, fmt.Errorf("flag stale recommendations: %w", err)
	}
	p.logger.Info("Flagged stale recommendations", zap.Int("secondary_ids", len(secondaryIDs)), zap.Int64("rows", n))
	return n, nil
}

// relationshipTypeFor is the role a candidate plays when the provider's own
// type string is not recognized
func relationshipTypeFor(direction identifier.Direction) recommendation.RelationshipType {
	if direction == identifier.DirectionCustomers {
		return recommendation.TypeCustomer
	}
	return recommendation.TypeSupplier
}

func (p *Pipeline) recordMetrics(ctx context.Context, report *RunReport, err error, elapsed time.Duration) {
	if p.businessMetrics == nil {
		return
	}
	run := telemetry.ReconciliationRun{Succeeded: err == nil, Duration: elapsed}
	if err == nil && report != nil {
		run.Cursor = report.Window.NextCursor
		run.Resolved = report.Resolved
		run.Unavailable = report.Unavailable
		run.ProviderFailed = report.ProviderFailed
		run.Skipped = report.Skipped
		run.Created = report.Created
		run.Duplicates = report.Duplicates
		run.Unkeyed = report.Unkeyed
		run.Failed = report.Failed
	}
	p.businessMetrics.RecordReconciliationRun(ctx, run)
}
