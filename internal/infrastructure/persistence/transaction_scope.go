package persistence

import (
	"context"

	appconn "github.com/carbonlink/backend/internal/application/connection"
	apprec "github.com/carbonlink/backend/internal/application/recommendation"
	"github.com/carbonlink/backend/internal/domain/audit"
	"github.com/carbonlink/backend/internal/domain/connection"
	"github.com/carbonlink/backend/internal/domain/recommendation"
	"gorm.io/gorm"
)

// GormConnectionTransactionScope runs relationship mutations in a GORM transaction
type GormConnectionTransactionScope struct {
	db *gorm.DB
}

// NewGormConnectionTransactionScope creates a new GormConnectionTransactionScope
func NewGormConnectionTransactionScope(db *gorm.DB) *GormConnectionTransactionScope {
	return &GormConnectionTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormConnectionTransactionScope) Execute(ctx context.Context, fn func(repos appconn.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormRecommendationTransactionScope runs recommendation reviews in a GORM transaction
type GormRecommendationTransactionScope struct {
	db *gorm.DB
}

// NewGormRecommendationTransactionScope creates a new GormRecommendationTransactionScope
func NewGormRecommendationTransactionScope(db *gorm.DB) *GormRecommendationTransactionScope {
	return &GormRecommendationTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormRecommendationTransactionScope) Execute(ctx context.Context, fn func(repos apprec.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories builds repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) RelationshipRepo() connection.RelationshipRepository {
	return NewGormRelationshipRepository(r.tx)
}

func (r *gormTransactionalRepositories) RecommendationRepo() recommendation.RecommendationRepository {
	return NewGormRecommendationRepository(r.tx)
}

func (r *gormTransactionalRepositories) AuditRecorder() audit.Recorder {
	return NewGormAuditRecorder(r.tx)
}

var (
	_ appconn.TransactionScope          = (*GormConnectionTransactionScope)(nil)
	_ apprec.TransactionScope           = (*GormRecommendationTransactionScope)(nil)
	_ appconn.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ apprec.TransactionalRepositories  = (*gormTransactionalRepositories)(nil)
)
