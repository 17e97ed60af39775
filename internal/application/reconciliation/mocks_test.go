package reconciliation

import (
	"context"
	"time"

	"github.com/carbonlink/backend/internal/domain/company"
	"github.com/carbonlink/backend/internal/domain/identifier"
	"github.com/carbonlink/backend/internal/domain/recommendation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCompanyRepository is a mock implementation of company.CompanyRepository
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]company.Company, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]company.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindWithExternalID(ctx context.Context) ([]company.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]company.Company), args.Error(1)
}

func (m *MockCompanyRepository) Save(ctx context.Context, c *company.Company) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

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

// MockIdentifierClient is a mock implementation of identifier.Client
type MockIdentifierClient struct {
	mock.Mock
}

func (m *MockIdentifierClient) ConvertIdentifiers(ctx context.Context, scheme identifier.Scheme, ids []string) ([]identifier.Resolution, error) {
	args := m.Called(ctx, scheme, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identifier.Resolution), args.Error(1)
}

func (m *MockIdentifierClient) RelatedCompanies(ctx context.Context, ref identifier.Reference, direction identifier.Direction) ([]identifier.Candidate, error) {
	args := m.Called(ctx, ref, direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identifier.Candidate), args.Error(1)
}

// MockCursorStore is a mock implementation of CursorStore
type MockCursorStore struct {
	mock.Mock
}

func (m *MockCursorStore) Get(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *MockCursorStore) Set(ctx context.Context, key string, value int) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockRunLock is a mock implementation of RunLock
type MockRunLock struct {
	mock.Mock
}

func (m *MockRunLock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockRunLock) Unlock(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
