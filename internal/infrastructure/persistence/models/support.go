package models

import (
	"time"

	"github.com/carbonlink/backend/internal/domain/audit"
	"github.com/google/uuid"
)

// KeyValueModel is a single persisted setting, such as the reconciliation cursor.
type KeyValueModel struct {
	Key       string    `gorm:"type:varchar(100);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (KeyValueModel) TableName() string {
	return "key_values"
}

// AuditLogModel is one audit trail record. Before/After hold JSON documents.
type AuditLogModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Action     string    `gorm:"type:varchar(64);not null;index"`
	EntityType string    `gorm:"type:varchar(64);not null"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Before     *string   `gorm:"type:jsonb"`
	After      *string   `gorm:"type:jsonb"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// AuditLogModelFromDomain creates a new persistence model from an audit entry.
func AuditLogModelFromDomain(e audit.Entry) *AuditLogModel {
	return &AuditLogModel{
		ID:         e.ID,
		ActorID:    e.ActorID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Before:     rawToString(e.Before),
		After:      rawToString(e.After),
		CreatedAt:  e.CreatedAt,
	}
}

// ToDomain converts the persistence model to an audit entry.
func (m *AuditLogModel) ToDomain() audit.Entry {
	return audit.Entry{
		ID:         m.ID,
		ActorID:    m.ActorID,
		Action:     m.Action,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		Before:     stringToRaw(m.Before),
		After:      stringToRaw(m.After),
		CreatedAt:  m.CreatedAt,
	}
}

func rawToString(raw []byte) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}

func stringToRaw(s *string) []byte {
	if s == nil {
		return nil
	}
	return []byte(*s)
}

// NotificationModel is an in-app inbox entry for one user.
type NotificationModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null"`
	Kind      string    `gorm:"type:varchar(64);not null"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Body      string    `gorm:"type:text;not null;default:''"`
	ReadAt    *time.Time
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}
