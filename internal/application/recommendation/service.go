// Package recommendation lets a company browse and review the relationship
// recommendations produced by reconciliation.
package recommendation

import (
	"context"
	"errors"
	"time"

	"github.com/carbonlink/backend/internal/domain/audit"
	"github.com/carbonlink/backend/internal/domain/connection"
	"github.com/carbonlink/backend/internal/domain/recommendation"
	"github.com/carbonlink/backend/internal/domain/shared"
	"github.com/carbonlink/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const entityTypeRecommendation = "company_relationship_recommendation"

// RecommendationService handles recommendation listing and review
type RecommendationService struct {
	recommendations recommendation.RecommendationRepository
	scope           TransactionScope
	logger          *zap.Logger
	metrics         *telemetry.BusinessMetrics
}

// NewRecommendationService creates a new RecommendationService
func NewRecommendationService(recommendations recommendation.RecommendationRepository, scope TransactionScope, logger *zap.Logger) *RecommendationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationService{
		recommendations: recommendations,
		scope:           scope,
		logger:          logger,
	}
}

// SetBusinessMetrics sets the business metrics recorder
func (s *RecommendationService) SetBusinessMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// List returns the actor company's recommendations, unacknowledged first by default
func (s *RecommendationService) List(ctx context.Context, actor connection.Actor, filter ListRecommendationsFilter) (shared.Paginated[RecommendationResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = []recommendation.Status{recommendation.StatusUnacknowledged}
	}

	views, total, err := s.recommendations.FindByStatusAndType(ctx, recommendation.StatusTypeQuery{
		TargetCompanyID: actor.CompanyID,
		Statuses:        statuses,
		Types:           filter.Types,
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.SortBy,
			OrderDir: filter.SortDir,
		},
	})
	if err != nil {
		return shared.Paginated[RecommendationResponse]{}, err
	}

	items := make([]RecommendationResponse, len(views))
	for i, v := range views {
		items[i] = ToRecommendationResponse(v)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Review accepts or dismisses an unacknowledged recommendation of the actor's company
func (s *RecommendationService) Review(ctx context.Context, id uuid.UUID, input ReviewRecommendationInput, actor connection.Actor) (*RecommendationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "recommendation", "review",
		telemetry.WithAttribute(telemetry.SpanAttrRecommendationID, id.String()),
	)
	defer span.End()

	var reviewed *recommendation.Recommendation
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := repos.RecommendationRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if rec.TargetCompanyID != actor.CompanyID {
			return recommendation.ErrNotTarget
		}

		update := recommendation.StatusUpdate{
			ID:       rec.ID,
			From:     rec.Status,
			To:       input.Status,
			Reviewer: actor.UserID,
		}
		if err := update.Validate(); err != nil {
			return err
		}
		if err := repos.RecommendationRepo().UpdateStatus(ctx, update); err != nil {
			return err
		}

		now := time.Now()
		before, after, err := audit.Diff(
			audit.Snapshot{"status": string(rec.Status)},
			audit.Snapshot{"status": string(input.Status), "reviewed_by": actor.UserID.String()},
		)
		if err != nil {
			return err
		}
		if err := repos.AuditRecorder().Record(ctx, audit.Entry{
			ActorID:    actor.UserID,
			Action:     audit.ActionRecommendationReviewed,
			EntityType: entityTypeRecommendation,
			EntityID:   rec.ID,
			Before:     before,
			After:      after,
		}); err != nil {
			return err
		}

		rec.Status = input.Status
		rec.ReviewedBy = &actor.UserID
		rec.ReviewedAt = &now
		reviewed = rec
		return nil
	})
	if err != nil {
		if !errors.Is(err, recommendation.ErrStatusMismatch) {
			telemetry.RecordError(span, err)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordRecommendationReviewed(ctx, string(reviewed.Status))
	}
	s.logger.Info("recommendation reviewed",
		zap.String("recommendation_id", reviewed.ID.String()),
		zap.String("status", string(reviewed.Status)),
		zap.String("reviewer", actor.UserID.String()),
	)
	telemetry.SetOK(span)

	resp := ToRecommendationResponse(recommendation.View{Recommendation: *reviewed})
	return &resp, nil
}
