package connection

import (
	"context"

	"github.com/carbonlink/backend/internal/domain/audit"
	"github.com/carbonlink/backend/internal/domain/connection"
	"github.com/carbonlink/backend/internal/domain/recommendation"
)

// TransactionScope runs a unit of work in one database transaction. If fn
// returns an error the transaction is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the stores written by relationship
// mutations, all bound to the same transaction.
type TransactionalRepositories interface {
	RelationshipRepo() connection.RelationshipRepository
	RecommendationRepo() recommendation.RecommendationRepository
	AuditRecorder() audit.Recorder
}

// NoOpTransactionScope runs the function against plain repositories without a
// transaction. Used in tests and by callers without transaction support.
type NoOpTransactionScope struct {
	relationships   connection.RelationshipRepository
	recommendations recommendation.RecommendationRepository
	recorder        audit.Recorder
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	relationships connection.RelationshipRepository,
	recommendations recommendation.RecommendationRepository,
	recorder audit.Recorder,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		relationships:   relationships,
		recommendations: recommendations,
		recorder:        recorder,
	}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// RelationshipRepo returns the relationship repository
func (s *NoOpTransactionScope) RelationshipRepo() connection.RelationshipRepository {
	return s.relationships
}

// RecommendationRepo returns the recommendation repository
func (s *NoOpTransactionScope) RecommendationRepo() recommendation.RecommendationRepository {
	return s.recommendations
}

// AuditRecorder returns the audit recorder
func (s *NoOpTransactionScope) AuditRecorder() audit.Recorder {
	return s.recorder
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
