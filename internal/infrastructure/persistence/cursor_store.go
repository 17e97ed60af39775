package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/carbonlink/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCursorStore keeps integer cursors in the key_values table
type GormCursorStore struct {
	db *gorm.DB
}

// NewGormCursorStore creates a new GormCursorStore
func NewGormCursorStore(db *gorm.DB) *GormCursorStore {
	return &GormCursorStore{db: db}
}

// Get returns the stored cursor, or 0 when the key has never been written
func (s *GormCursorStore) Get(ctx context.Context, key string) (int, error) {
	var model models.KeyValueModel
	if err := s.db.WithContext(ctx).First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	value, err := strconv.Atoi(model.Value)
	if err != nil {
		return 0, fmt.Errorf("cursor %q holds non-integer value %q: %w", key, model.Value, err)
	}
	return value, nil
}

// Set upserts the cursor value
func (s *GormCursorStore) Set(ctx context.Context, key string, value int) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&models.KeyValueModel{
			Key:       key,
			Value:     strconv.Itoa(value),
			UpdatedAt: time.Now(),
		}).Error
}
