package recommendation

import (
	"context"

	"github.com/carbonlink/backend/internal/domain/audit"
	"github.com/carbonlink/backend/internal/domain/recommendation"
)

// TransactionScope runs a review in one database transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the stores written by a review
type TransactionalRepositories interface {
	RecommendationRepo() recommendation.RecommendationRepository
	AuditRecorder() audit.Recorder
}

// NoOpTransactionScope runs the function without a transaction
type NoOpTransactionScope struct {
	recommendations recommendation.RecommendationRepository
	recorder        audit.Recorder
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(recommendations recommendation.RecommendationRepository, recorder audit.Recorder) *NoOpTransactionScope {
	return &NoOpTransactionScope{recommendations: recommendations, recorder: recorder}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// RecommendationRepo returns the recommendation repository
func (s *NoOpTransactionScope) RecommendationRepo() recommendation.RecommendationRepository {
	return s.recommendations
}

// AuditRecorder returns the audit recorder
func (s *NoOpTransactionScope) AuditRecorder() audit.Recorder {
	return s.recorder
}
