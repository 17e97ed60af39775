package connection

import (
	"context"

	"github.com/carbonlink/backend/internal/domain/audit"
	"github.com/carbonlink/backend/internal/domain/company"
	"github.com/carbonlink/backend/internal/domain/connection"
	"github.com/carbonlink/backend/internal/domain/recommendation"
	"github.com/carbonlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRelationshipRepository is a mock implementation of connection.RelationshipRepository
type MockRelationshipRepository struct {
	mock.Mock
}

func (m *MockRelationshipRepository) FindOne(ctx context.Context, supplierID, customerID uuid.UUID) (*connection.CompanyRelationship, error) {
	args := m.Called(ctx, supplierID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connection.CompanyRelationship), args.Error(1)
}

func (m *MockRelationshipRepository) FindByID(ctx context.Context, id uuid.UUID) (*connection.CompanyRelationship, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connection.CompanyRelationship), args.Error(1)
}

func (m *MockRelationshipRepository) FindByIDWithCompanies(ctx context.Context, id uuid.UUID) (*connection.CompanyRelationship, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connection.CompanyRelationship), args.Error(1)
}

func (m *MockRelationshipRepository) FindMany(ctx context.Context, clauses ...connection.WhereClause) ([]connection.CompanyRelationship, error) {
	args := m.Called(ctx, clauses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]connection.CompanyRelationship), args.Error(1)
}

func (m *MockRelationshipRepository) Save(ctx context.Context, relationship *connection.CompanyRelationship) error {
	args := m.Called(ctx, relationship)
	return args.Error(0)
}

func (m *MockRelationshipRepository) Delete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

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

// MockAuditRecorder is a mock implementation of audit.Recorder
type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, entry audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockMemberDirectory is a mock implementation of company.MemberDirectory
type MockMemberDirectory struct {
	mock.Mock
}

func (m *MockMemberDirectory) FindConnectionManagers(ctx context.Context, companyID uuid.UUID) ([]company.Member, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]company.Member), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyConnectionRequested(ctx context.Context, n ConnectionRequestNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotifier) NotifyStatusChanged(ctx context.Context, n StatusChangeNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
