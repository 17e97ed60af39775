package recommendation

import (
	"context"

	"github.com/google/uuid"
)

// RecommendationRepository defines the interface for recommendation persistence
type RecommendationRepository interface {
	// InsertIfAbsent inserts rec unless a row with the same targeted lookup key
	// exists. It returns the new id and true when a row was created; a duplicate
	// is reported as (uuid.Nil, false, nil).
	InsertIfAbsent(ctx context.Context, rec *Recommendation) (uuid.UUID, bool, error)

	// FindByID finds a recommendation by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Recommendation, error)

	// FindByTargetedLookup finds the recommendation for a uniqueness key
	FindByTargetedLookup(ctx context.Context, lookup TargetedLookup) (*Recommendation, error)

	// FindUnacknowledgedByExternalID finds an open recommendation for the target
	// whose candidate has the given canonical external id
	FindUnacknowledgedByExternalID(ctx context.Context, targetCompanyID uuid.UUID, externalID string, relType RelationshipType) (*Recommendation, error)

	// FindByStatusAndType lists recommendations for a target joined with candidate company and relationship ids
	FindByStatusAndType(ctx context.Context, query StatusTypeQuery) ([]View, int64, error)

	// UpdateStatus applies an optimistic status change
	UpdateStatus(ctx context.Context, update StatusUpdate) error

	// SetDeletedFlag flags every recommendation for the given secondary ids as stale
	SetDeletedFlag(ctx context.Context, secondaryIDs []string) (int64, error)

	// EnrichBusinessData fills descriptive fields that are still empty
	EnrichBusinessData(ctx context.Context, lookup TargetedLookup, data BusinessData) error
}
