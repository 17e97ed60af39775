package persistence

import (
	"context"
	"time"

	"github.com/carbonlink/backend/internal/domain/audit"
	"github.com/carbonlink/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditRecorder writes audit entries to the audit_logs table
type GormAuditRecorder struct {
	db *gorm.DB
}

// NewGormAuditRecorder creates a new GormAuditRecorder
func NewGormAuditRecorder(db *gorm.DB) *GormAuditRecorder {
	return &GormAuditRecorder{db: db}
}

// Record persists one entry, assigning an id and timestamp when missing
func (r *GormAuditRecorder) Record(ctx context.Context, entry audit.Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(models.AuditLogModelFromDomain(entry)).Error
}

// FindByEntity lists the audit trail of one entity, oldest first
func (r *GormAuditRecorder) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]audit.Entry, error) {
	var logModels []models.AuditLogModel
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&logModels).Error; err != nil {
		return nil, err
	}

	entries := make([]audit.Entry, len(logModels))
	for i := range logModels {
		entries[i] = logModels[i].ToDomain()
	}
	return entries, nil
}

var _ audit.Recorder = (*GormAuditRecorder)(nil)
