// Package connection coordinates the negotiation of supplier/customer
// relationships between companies on behalf of an acting user.
package connection

import (
	"context"
	"errors"

	"github.com/carbonlink/backend/internal/domain/audit"
	"github.com/carbonlink/backend/internal/domain/company"
	"github.com/carbonlink/backend/internal/domain/connection"
	"github.com/carbonlink/backend/internal/domain/recommendation"
	"github.com/carbonlink/backend/internal/domain/shared"
	"github.com/carbonlink/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	entityTypeRelationship   = "company_relationship"
	entityTypeRecommendation = "company_relationship_recommendation"
)

// RelationshipCoordinator handles relationship create, update and purge
type RelationshipCoordinator struct {
	relationships  connection.RelationshipRepository
	companies      company.CompanyRepository
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	metrics        *telemetry.BusinessMetrics
}

// NewRelationshipCoordinator creates a new RelationshipCoordinator.
// Writes run inside scope; relationships is used for reads outside a transaction.
func NewRelationshipCoordinator(
	relationships connection.RelationshipRepository,
	companies company.CompanyRepository,
	scope TransactionScope,
	logger *zap.Logger,
) *RelationshipCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelationshipCoordinator{
		relationships: relationships,
		companies:     companies,
		scope:         scope,
		logger:        logger,
	}
}

// SetEventPublisher sets the publisher used after a successful commit
func (c *RelationshipCoordinator) SetEventPublisher(publisher shared.EventPublisher) {
	c.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (c *RelationshipCoordinator) SetBusinessMetrics(metrics *telemetry.BusinessMetrics) {
	c.metrics = metrics
}

// Create sends a connection request from the actor's company to the other company
func (c *RelationshipCoordinator) Create(ctx context.Context, input CreateRelationshipInput, actor connection.Actor) (*RelationshipResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "relationship", "create",
		telemetry.WithAttribute(telemetry.SpanAttrInviteType, string(input.InviteType)),
	)
	defer span.End()

	if !input.InviteType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INVITE_TYPE", "Invalid invite type")
	}
	initiator := input.InviteType.InitiatingSide()
	initiatorCompany, otherCompany := input.CustomerID, input.SupplierID
	if initiator == connection.SideSupplier {
		initiatorCompany, otherCompany = input.SupplierID, input.CustomerID
	}
	if actor.CompanyID != initiatorCompany {
		return nil, connection.ErrOwnership
	}

	existing, err := c.relationships.FindOne(ctx, input.SupplierID, input.CustomerID)
	switch {
	case err == nil && existing != nil:
		return nil, connection.ConflictFor(existing.Status)
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		telemetry.RecordError(span, err)
		return nil, err
	}

	companies, err := c.companies.FindByIDs(ctx, []uuid.UUID{input.CustomerID, input.SupplierID})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	var other *company.Company
	for i := range companies {
		if companies[i].ID == otherCompany {
			other = &companies[i]
		}
	}
	if len(companies) < 2 || other == nil {
		return nil, connection.ErrCompaniesNotFound
	}

	relationship, err := connection.NewCompanyRelationship(input.InviteType, input.CustomerID, input.SupplierID, input.Note, actor)
	if err != nil {
		return nil, err
	}

	err = c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.RelationshipRepo().Save(ctx, relationship); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				return connection.ErrAlreadyPending
			}
			return err
		}

		after, err := audit.Marshal(relationship.Snapshot())
		if err != nil {
			return err
		}
		if err := repos.AuditRecorder().Record(ctx, audit.Entry{
			ActorID:    actor.UserID,
			Action:     audit.ActionRelationshipCreated,
			EntityType: entityTypeRelationship,
			EntityID:   relationship.ID,
			After:      after,
		}); err != nil {
			return err
		}

		return c.acknowledgeRecommendation(ctx, repos, actor, other, recommendationTypeFor(initiator.Other()))
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	events := c.publish(ctx, relationship)
	if c.metrics != nil {
		c.metrics.RecordRelationshipCreated(ctx, string(relationship.InviteType))
	}

	c.logger.Info("relationship created",
		zap.String("relationship_id", relationship.ID.String()),
		zap.String("customer_id", relationship.CustomerID.String()),
		zap.String("supplier_id", relationship.SupplierID.String()),
		zap.String("status", string(relationship.Status)),
	)
	telemetry.SetOK(span)
	return &RelationshipResult{Relationship: relationship, Events: events}, nil
}

// acknowledgeRecommendation accepts the open recommendation the actor's
// company had for the invited company, if any.
func (c *RelationshipCoordinator) acknowledgeRecommendation(
	ctx context.Context,
	repos TransactionalRepositories,
	actor connection.Actor,
	other *company.Company,
	relType recommendation.RelationshipType,
) error {
	if !other.HasExternalID() {
		return nil
	}
	rec, err := repos.RecommendationRepo().FindUnacknowledgedByExternalID(ctx, actor.CompanyID, other.ExternalIDValue(), relType)
	if errors.Is(err, shared.ErrNotFound) || (err == nil && rec == nil) {
		return nil
	}
	if err != nil {
		return err
	}

	err = repos.RecommendationRepo().UpdateStatus(ctx, recommendation.StatusUpdate{
		ID:       rec.ID,
		From:     recommendation.StatusUnacknowledged,
		To:       recommendation.StatusAccepted,
		Reviewer: actor.UserID,
	})
	if errors.Is(err, recommendation.ErrStatusMismatch) || errors.Is(err, shared.ErrNotFound) {
		c.logger.Info("recommendation already reviewed, skipping acknowledgement",
			zap.String("recommendation_id", rec.ID.String()),
		)
		return nil
	}
	if err != nil {
		return err
	}

	before, after, err := audit.Diff(
		audit.Snapshot{"status": string(recommendation.StatusUnacknowledged)},
		audit.Snapshot{"status": string(recommendation.StatusAccepted), "reviewed_by": actor.UserID.String()},
	)
	if err != nil {
		return err
	}
	return repos.AuditRecorder().Record(ctx, audit.Entry{
		ActorID:    actor.UserID,
		Action:     audit.ActionRecommendationReviewed,
		EntityType: entityTypeRecommendation,
		EntityID:   rec.ID,
		Before:     before,
		After:      after,
	})
}

// Update changes the status and/or note of a relationship for the acting side
func (c *RelationshipCoordinator) Update(ctx context.Context, relationshipID uuid.UUID, input UpdateRelationshipInput, actor connection.Actor) (*RelationshipResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "relationship", "update",
		telemetry.WithAttribute(telemetry.SpanAttrRelationshipID, relationshipID.String()),
	)
	defer span.End()

	var (
		relationship *connection.CompanyRelationship
		previous     connection.RelationshipStatus
		changed      bool
	)
	err := c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		relationship, err = repos.RelationshipRepo().FindByIDWithCompanies(ctx, relationshipID)
		if errors.Is(err, shared.ErrNotFound) || (err == nil && relationship == nil) {
			return connection.ErrNotFound
		}
		if err != nil {
			return err
		}
		if _, err := relationship.ActingSideFor(actor.CompanyID); err != nil {
			return err
		}
		if isNoOp(relationship, input) {
			return nil
		}

		previous = relationship.Status
		before := relationship.Snapshot()
		if err := relationship.Update(input.Status, input.Note, actor); err != nil {
			return err
		}
		if err := repos.RelationshipRepo().Save(ctx, relationship); err != nil {
			return err
		}
		changed = true

		beforeJSON, afterJSON, err := audit.Diff(before, relationship.Snapshot())
		if err != nil {
			return err
		}
		if beforeJSON == nil && afterJSON == nil {
			return nil
		}
		return repos.AuditRecorder().Record(ctx, audit.Entry{
			ActorID:    actor.UserID,
			Action:     audit.ActionRelationshipUpdated,
			EntityType: entityTypeRelationship,
			EntityID:   relationship.ID,
			Before:     beforeJSON,
			After:      afterJSON,
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	events := c.publish(ctx, relationship)
	if changed && previous != relationship.Status {
		if c.metrics != nil {
			c.metrics.RecordRelationshipStatusChanged(ctx, string(previous), string(relationship.Status))
		}
		c.logger.Info("relationship status changed",
			zap.String("relationship_id", relationship.ID.String()),
			zap.String("from", string(previous)),
			zap.String("to", string(relationship.Status)),
		)
	}
	telemetry.SetOK(span)
	return &RelationshipResult{Relationship: relationship, Events: events}, nil
}

// isNoOp reports whether the input would leave the relationship untouched
func isNoOp(r *connection.CompanyRelationship, input UpdateRelationshipInput) bool {
	statusUnchanged := input.Status == nil || *input.Status == r.Status
	return statusUnchanged && input.Note == nil
}

// DeleteAllForCompany removes every relationship the company takes part in.
// Recommendations are left untouched.
func (c *RelationshipCoordinator) DeleteAllForCompany(ctx context.Context, companyID uuid.UUID, actor connection.Actor) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "relationship", "delete_all_for_company",
		telemetry.WithAttribute(telemetry.SpanAttrCompanyID, companyID.String()),
	)
	defer span.End()

	var ids []uuid.UUID
	err := c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rows, err := repos.RelationshipRepo().FindMany(ctx, connection.WhereParticipant(companyID)...)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		ids = make([]uuid.UUID, 0, len(rows))
		for i := range rows {
			ids = append(ids, rows[i].ID)
		}
		if _, err := repos.RelationshipRepo().Delete(ctx, ids); err != nil {
			return err
		}

		for i := range rows {
			before, err := audit.Marshal(rows[i].Snapshot())
			if err != nil {
				return err
			}
			if err := repos.AuditRecorder().Record(ctx, audit.Entry{
				ActorID:    actor.UserID,
				Action:     audit.ActionRelationshipDeleted,
				EntityType: entityTypeRelationship,
				EntityID:   rows[i].ID,
				Before:     before,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, err
	}
	if len(ids) == 0 {
		telemetry.SetOK(span)
		return 0, nil
	}

	if c.eventPublisher != nil {
		if err := c.eventPublisher.Publish(ctx, connection.NewRelationshipsPurgedEvent(companyID, ids)); err != nil {
			c.logger.Warn("failed to publish relationships purged event",
				zap.String("company_id", companyID.String()),
				zap.Error(err),
			)
		}
	}

	c.logger.Info("relationships purged for company",
		zap.String("company_id", companyID.String()),
		zap.Int("count", len(ids)),
	)
	telemetry.SetAttributes(span, "deleted", len(ids))
	telemetry.SetOK(span)
	return len(ids), nil
}

// publish sends the aggregate's pending events and clears them. Publish
// failures are logged; the change is already committed.
func (c *RelationshipCoordinator) publish(ctx context.Context, r *connection.CompanyRelationship) []shared.DomainEvent {
	events := r.GetDomainEvents()
	r.ClearDomainEvents()
	if c.eventPublisher == nil || len(events) == 0 {
		return events
	}
	if err := c.eventPublisher.Publish(ctx, events...); err != nil {
		c.logger.Warn("failed to publish relationship events",
			zap.String("relationship_id", r.ID.String()),
			zap.Error(err),
		)
	}
	return events
}

// recommendationTypeFor maps the side a company plays in a relationship to
// the recommendation type describing it
func recommendationTypeFor(side connection.ActingSide) recommendation.RelationshipType {
	if side == connection.SideCustomer {
		return recommendation.TypeCustomer
	}
	return recommendation.TypeSupplier
}
