package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/carbonlink/backend/internal/domain/company"
	"github.com/carbonlink/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory SQLite database with every table migrated.
// A single connection keeps the in-memory database alive across queries.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.CompanyModel{},
		&models.CompanyMemberModel{},
		&models.RelationshipModel{},
		&models.RecommendationModel{},
		&models.KeyValueModel{},
		&models.AuditLogModel{},
		&models.NotificationModel{},
	))
	return db
}

// seedCompany stores a company; createdAt controls ordering
func seedCompany(t *testing.T, db *gorm.DB, name string, externalID *string, createdAt time.Time) *company.Company {
	t.Helper()

	c, err := company.NewCompany(name, externalID)
	require.NoError(t, err)
	c.CreatedAt = createdAt
	c.UpdatedAt = createdAt
	require.NoError(t, NewGormCompanyRepository(db).Save(context.Background(), c))
	return c
}

func strPtr(s string) *string { return &s }
