package recommendation

import (
	"context"

	"github.com/carbonlink/backend/internal/domain/audit"
	"github.com/carbonlink/backend/internal/domain/recommendation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRecommendationRepository is a mock implementation of recommendation.RecommendationRepository
type MockRecommendationRepository struct {
	mock.Mock
}

func (m *MockRecommendationRepository) InsertIfAbsent(ctx context.Context, rec *recommendation.Recommendation) (uuid.UUID, bool, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *MockRecommendationRepository) FindByID(ctx context.Context, id uuid.UUID) (*recommendation.Recommendation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recommendation.Recommendation), args.Error(1)
}

func (m *MockRecommendationRepository) FindByTargetedLookup(ctx context.Context, lookup recommendation.TargetedLookup) (*recommendation.Recommendation, error) {
	args := m.Called(ctx, lookup)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recommendation.Recommendation), args.Error(1)
}

func (m *MockRecommendationRepository) FindUnacknowledgedByExternalID(ctx context.Context, targetCompanyID uuid.UUID, externalID string, relType recommendation.RelationshipType) (*recommendation.Recommendation, error) {
	args := m.Called(ctx, targetCompanyID, externalID, relType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recommendation.Recommendation), args.Error(1)
}

func (m *MockRecommendationRepository) FindByStatusAndType(ctx context.Context, query recommendation.StatusTypeQuery) ([]recommendation.View, int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]recommendation.View), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecommendationRepository) UpdateStatus(ctx context.Context, update recommendation.StatusUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockRecommendationRepository) SetDeletedFlag(ctx context.Context, secondaryIDs []string) (int64, error) {
	args := m.Called(ctx, secondaryIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecommendationRepository) EnrichBusinessData(ctx context.Context, lookup recommendation.TargetedLookup, data recommendation.BusinessData) error {
	args := m.Called(ctx, lookup, data)
	return args.Error(0)
}

// MockAuditRecorder is a mock implementation of audit.Recorder
type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, entry audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
