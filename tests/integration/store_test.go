//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/carbonlink/backend/internal/domain/company"
	"github.com/carbonlink/backend/internal/domain/connection"
	"github.com/carbonlink/backend/internal/domain/recommendation"
	"github.com/carbonlink/backend/internal/domain/shared"
	"github.com/carbonlink/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCompany(t *testing.T, db *gorm.DB, name string, externalID *string) *company.Company {
	t.Helper()
	c, err := company.NewCompany(name, externalID)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormCompanyRepository(db).Save(context.Background(), c))
	return c
}

func strPtr(s string) *string { return &s }

func TestRelationshipRepository_ConcurrentCreateOfSamePair(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormRelationshipRepository(tdb.DB)
	ctx := context.Background()

	customer := seedCompany(t, tdb.DB, "Customer Co", nil)
	supplier := seedCompany(t, tdb.DB, "Supplier Co", nil)
	actor := connection.Actor{UserID: uuid.New(), CompanyID: customer.ID}

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rel, err := connection.NewCompanyRelationship(connection.InviteCustomerInvitesSupplier, customer.ID, supplier.ID, "", actor)
			if err != nil {
				errs[i] = err
				return
			}
			errs[i] = repo.Save(ctx, rel)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	}
	assert.Equal(t, 1, succeeded)

	stored, err := repo.FindMany(ctx, connection.WhereParticipant(customer.ID)...)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestRelationshipRepository_StaleVersionIsRejected(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormRelationshipRepository(tdb.DB)
	ctx := context.Background()

	customer := seedCompany(t, tdb.DB, "Customer Co", nil)
	supplier := seedCompany(t, tdb.DB, "Supplier Co", nil)
	rel, err := connection.NewCompanyRelationship(connection.InviteCustomerInvitesSupplier, customer.ID, supplier.ID, "",
		connection.Actor{UserID: uuid.New(), CompanyID: customer.ID})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, rel))

	first, err := repo.FindByID(ctx, rel.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, rel.ID)
	require.NoError(t, err)

	supplierActor := connection.Actor{UserID: uuid.New(), CompanyID: supplier.ID}
	approved := connection.StatusApproved
	require.NoError(t, first.Update(&approved, nil, supplierActor))
	require.NoError(t, repo.Save(ctx, first))

	rejected := connection.StatusRejectedBySupplier
	require.NoError(t, second.Update(&rejected, nil, supplierActor))
	assert.ErrorIs(t, repo.Save(ctx, second), shared.ErrConcurrencyConflict)

	stored, err := repo.FindByID(ctx, rel.ID)
	require.NoError(t, err)
	assert.Equal(t, connection.StatusApproved, stored.Status)
}

func TestRecommendationRepository_ConcurrentInsertIfAbsent(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormRecommendationRepository(tdb.DB)
	ctx := context.Background()
	target := seedCompany(t, tdb.DB, "Target Co", strPtr("100000001"))

	const attempts = 8
	created := make([]bool, attempts)
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := recommendation.NewRecommendation(target.ID, "pv-42", recommendation.TypeSupplier, "Vendor",
				strPtr("200000002"), recommendation.BusinessData{Name: "Acme Steel"})
			if err != nil {
				errs[i] = err
				return
			}
			_, created[i], errs[i] = repo.InsertIfAbsent(ctx, rec)
		}()
	}
	wg.Wait()

	count := 0
	for i := range attempts {
		require.NoError(t, errs[i])
		if created[i] {
			count++
		}
	}
	assert.Equal(t, 1, count)

	views, total, err := repo.FindByStatusAndType(ctx, recommendation.StatusTypeQuery{TargetCompanyID: target.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, views, 1)
	assert.Equal(t, "Acme Steel", views[0].Name)
}

func TestRecommendationRepository_SetDeletedFlag(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormRecommendationRepository(tdb.DB)
	ctx := context.Background()
	target := seedCompany(t, tdb.DB, "Target Co", strPtr("100000001"))

	for _, secondary := range []string{"pv-1", "pv-2"} {
		rec, err := recommendation.NewRecommendation(target.ID, secondary, recommendation.TypeCustomer, "Client", nil, recommendation.BusinessData{})
		require.NoError(t, err)
		_, _, err = repo.InsertIfAbsent(ctx, rec)
		require.NoError(t, err)
	}

	n, err := repo.SetDeletedFlag(ctx, []string{"pv-1", "pv-unknown"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	visible, total, err := repo.FindByStatusAndType(ctx, recommendation.StatusTypeQuery{TargetCompanyID: target.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, visible, 1)
	assert.Equal(t, "pv-2", visible[0].SecondaryID)
}

func TestCursorStore_Upsert(t *testing.T) {
	tdb := NewTestDB(t)
	store := persistence.NewGormCursorStore(tdb.DB)
	ctx := context.Background()

	v, err := store.Get(ctx, "integration.cursor")
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	require.NoError(t, store.Set(ctx, "integration.cursor", 25))
	require.NoError(t, store.Set(ctx, "integration.cursor", 50))

	v, err = store.Get(ctx, "integration.cursor")
	require.NoError(t, err)
	assert.Equal(t, 50, v)
}
