package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/carbonlink/backend/internal/domain/connection"
	"github.com/carbonlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newInvite(t *testing.T, customerID, supplierID uuid.UUID) *connection.CompanyRelationship {
	t.Helper()
	rel, err := connection.NewCompanyRelationship(
		connection.InviteCustomerInvitesSupplier, customerID, supplierID, "hello",
		connection.Actor{UserID: uuid.New(), CompanyID: customerID},
	)
	require.NoError(t, err)
	return rel
}

func TestGormRelationshipRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRelationshipRepository(db)
	ctx := context.Background()

	customer := seedCompany(t, db, "Customer Co", strPtr("111"), time.Now())
	supplier := seedCompany(t, db, "Supplier Co", strPtr("222"), time.Now())
	rel := newInvite(t, customer.ID, supplier.ID)
	require.NoError(t, repo.Save(ctx, rel))

	t.Run("finds by exact pair", func(t *testing.T) {
		found, err := repo.FindOne(ctx, supplier.ID, customer.ID)
		require.NoError(t, err)
		assert.Equal(t, rel.ID, found.ID)
		assert.Equal(t, connection.StatusAwaitingSupplierApproval, found.Status)
		assert.Equal(t, rel.CustomerApproverID, found.CustomerApproverID)
		assert.Nil(t, found.SupplierApproverID)
		assert.Nil(t, found.Customer)
	})

	t.Run("pair is directional", func(t *testing.T) {
		_, err := repo.FindOne(ctx, customer.ID, supplier.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("preloads both companies", func(t *testing.T) {
		found, err := repo.FindByIDWithCompanies(ctx, rel.ID)
		require.NoError(t, err)
		require.NotNil(t, found.Customer)
		require.NotNil(t, found.Supplier)
		assert.Equal(t, "Customer Co", found.Customer.Name)
		assert.Equal(t, "Supplier Co", found.Supplier.Name)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormRelationshipRepository_SaveDuplicatePair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRelationshipRepository(db)
	ctx := context.Background()
	customerID, supplierID := uuid.New(), uuid.New()

	require.NoError(t, repo.Save(ctx, newInvite(t, customerID, supplierID)))

	err := repo.Save(ctx, newInvite(t, customerID, supplierID))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	all, err := repo.FindMany(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGormRelationshipRepository_SaveVersioned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRelationshipRepository(db)
	ctx := context.Background()
	customerID, supplierID := uuid.New(), uuid.New()

	rel := newInvite(t, customerID, supplierID)
	require.NoError(t, repo.Save(ctx, rel))

	stale, err := repo.FindByID(ctx, rel.ID)
	require.NoError(t, err)

	approved := connection.StatusApproved
	supplierUser := uuid.New()
	require.NoError(t, rel.Update(&approved, nil, connection.Actor{UserID: supplierUser, CompanyID: supplierID}))
	require.NoError(t, repo.Save(ctx, rel))

	found, err := repo.FindByID(ctx, rel.ID)
	require.NoError(t, err)
	assert.Equal(t, connection.StatusApproved, found.Status)
	assert.Equal(t, 2, found.Version)
	require.NotNil(t, found.SupplierApproverID)
	assert.Equal(t, supplierUser, *found.SupplierApproverID)

	emptyNote := ""
	require.NoError(t, stale.Update(nil, &emptyNote, connection.Actor{UserID: uuid.New(), CompanyID: customerID}))
	err = repo.Save(ctx, stale)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestGormRelationshipRepository_FindManyAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormRelationshipRepository(db)
	ctx := context.Background()

	offboarded := uuid.New()
	asCustomer := newInvite(t, offboarded, uuid.New())
	asSupplier := newInvite(t, uuid.New(), offboarded)
	unrelated := newInvite(t, uuid.New(), uuid.New())
	for _, rel := range []*connection.CompanyRelationship{asCustomer, asSupplier, unrelated} {
		require.NoError(t, repo.Save(ctx, rel))
	}

	found, err := repo.FindMany(ctx, connection.WhereParticipant(offboarded)...)
	require.NoError(t, err)
	require.Len(t, found, 2)

	pending, err := repo.FindMany(ctx, connection.WhereClause{
		CustomerID: &offboarded,
		Statuses:   []connection.RelationshipStatus{connection.StatusApproved},
	})
	require.NoError(t, err)
	assert.Empty(t, pending)

	removed, err := repo.Delete(ctx, []uuid.UUID{found[0].ID, found[1].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	remaining, err := repo.FindMany(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, unrelated.ID, remaining[0].ID)

	removed, err = repo.Delete(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func newMockRelationshipRepository(t *testing.T) (*GormRelationshipRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewGormRelationshipRepository(gormDB), mock, mockDB
}

func TestGormRelationshipRepository_SaveUsesVersionGuard(t *testing.T) {
	repo, mock, mockDB := newMockRelationshipRepository(t)
	defer mockDB.Close()

	customerID, supplierID := uuid.New(), uuid.New()
	rel := newInvite(t, customerID, supplierID)
	approved := connection.StatusApproved
	require.NoError(t, rel.Update(&approved, nil, connection.Actor{UserID: uuid.New(), CompanyID: supplierID}))

	mock.ExpectExec(`UPDATE "company_relationships" SET .* WHERE id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), rel)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
