package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/carbonlink/backend/internal/domain/recommendation"
	"github.com/carbonlink/backend/internal/domain/shared"
	"github.com/carbonlink/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRecommendationRepository implements RecommendationRepository using GORM
type GormRecommendationRepository struct {
	db *gorm.DB
}

// NewGormRecommendationRepository creates a new GormRecommendationRepository
func NewGormRecommendationRepository(db *gorm.DB) *GormRecommendationRepository {
	return &GormRecommendationRepository{db: db}
}

// InsertIfAbsent inserts a single row and treats a unique-key violation as
// "already known". No pre-check is made; the unique index arbitrates
// between concurrent runs.
func (r *GormRecommendationRepository) InsertIfAbsent(ctx context.Context, rec *recommendation.Recommendation) (uuid.UUID, bool, error) {
	model := models.RecommendationModelFromDomain(rec)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if IsDuplicateKeyError(err) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, err
	}
	return model.ID, true, nil
}

// FindByID finds a recommendation by its ID
func (r *GormRecommendationRepository) FindByID(ctx context.Context, id uuid.UUID) (*recommendation.Recommendation, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByTargetedLookup finds the recommendation for a uniqueness key
func (r *GormRecommendationRepository) FindByTargetedLookup(ctx context.Context, lookup recommendation.TargetedLookup) (*recommendation.Recommendation, error) {
	return r.first(r.db.WithContext(ctx).Scopes(byLookup(lookup)))
}

// FindUnacknowledgedByExternalID finds an open recommendation for the target
// whose candidate carries externalID
func (r *GormRecommendationRepository) FindUnacknowledgedByExternalID(ctx context.Context, targetCompanyID uuid.UUID, externalID string, relType recommendation.RelationshipType) (*recommendation.Recommendation, error) {
	return r.first(r.db.WithContext(ctx).
		Where("target_company_id = ? AND external_id = ? AND relationship_type = ?", targetCompanyID, externalID, relType).
		Where("status = ? AND deleted = ?", recommendation.StatusUnacknowledged, false).
		Order("created_at ASC"))
}

func (r *GormRecommendationRepository) first(query *gorm.DB) (*recommendation.Recommendation, error) {
	var model models.RecommendationModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStatusAndType lists a target company's recommendations, joined with
// the internal company matching the candidate's external id and any
// relationship that already exists between the two.
func (r *GormRecommendationRepository) FindByStatusAndType(ctx context.Context, query recommendation.StatusTypeQuery) ([]recommendation.View, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.RecommendationModel{}).
		Scopes(statusTypeFilter(query, "")).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := r.db.WithContext(ctx).
		Table("company_relationship_recommendations AS rec").
		Select("rec.*, c.id AS candidate_company_id, rel.id AS relationship_id").
		Joins("LEFT JOIN companies c ON c.external_id = rec.external_id").
		Joins(`LEFT JOIN company_relationships rel ON c.id IS NOT NULL AND (
			(rec.relationship_type = ? AND rel.supplier_id = rec.target_company_id AND rel.customer_id = c.id) OR
			(rec.relationship_type = ? AND rel.customer_id = rec.target_company_id AND rel.supplier_id = c.id))`,
			recommendation.TypeCustomer, recommendation.TypeSupplier).
		Scopes(statusTypeFilter(query, "rec.")).
		Order(orderClause("rec.", query.Filter.OrderBy, query.Filter.OrderDir, RecommendationSortFields, "created_at"))
	if query.Filter.PageSize > 0 {
		listQuery = listQuery.Limit(query.Filter.PageSize).Offset(query.Filter.Offset())
	}

	var rows []models.RecommendationViewRow
	if err := listQuery.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	views := make([]recommendation.View, len(rows))
	for i := range rows {
		views[i] = rows[i].ToDomain()
	}
	return views, total, nil
}

func statusTypeFilter(query recommendation.StatusTypeQuery, prefix string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where(prefix+"target_company_id = ?", query.TargetCompanyID)
		if len(query.Statuses) > 0 {
			db = db.Where(prefix+"status IN ?", query.Statuses)
		}
		if len(query.Types) > 0 {
			db = db.Where(prefix+"relationship_type IN ?", query.Types)
		}
		if !query.IncludeDeleted {
			db = db.Where(prefix+"deleted = ?", false)
		}
		return db
	}
}

func byLookup(lookup recommendation.TargetedLookup) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("target_company_id = ? AND secondary_id = ? AND relationship_type = ?",
			lookup.TargetCompanyID, lookup.SecondaryID, lookup.RelationshipType)
	}
}

// UpdateStatus applies the change only while the stored status equals
// update.From.
func (r *GormRecommendationRepository) UpdateStatus(ctx context.Context, update recommendation.StatusUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}

	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.RecommendationModel{}).
		Where("id = ? AND status = ?", update.ID, update.From).
		Updates(map[string]any{
			"status":      update.To,
			"reviewed_by": update.Reviewer,
			"reviewed_at": now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.RecommendationModel{}).Where("id = ?", update.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return recommendation.ErrStatusMismatch
}

// SetDeletedFlag flags every recommendation for the given secondary ids as stale
func (r *GormRecommendationRepository) SetDeletedFlag(ctx context.Context, secondaryIDs []string) (int64, error) {
	if len(secondaryIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.RecommendationModel{}).
		Where("secondary_id IN ? AND deleted = ?", secondaryIDs, false).
		Updates(map[string]any{"deleted": true, "updated_at": time.Now()})
	return result.RowsAffected, result.Error
}

// EnrichBusinessData fills descriptive fields that are still empty. Fields
// already set are never overwritten.
func (r *GormRecommendationRepository) EnrichBusinessData(ctx context.Context, lookup recommendation.TargetedLookup, data recommendation.BusinessData) error {
	updates := map[string]any{}
	for column, value := range map[string]string{
		"name":    data.Name,
		"sector":  data.Sector,
		"region":  data.Region,
		"country": data.Country,
	} {
		if value != "" {
			updates[column] = gorm.Expr("CASE WHEN "+column+" = '' THEN ? ELSE "+column+" END", value)
		}
	}
	if len(updates) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Model(&models.RecommendationModel{}).
		Scopes(byLookup(lookup)).
		Updates(updates).Error
}

var _ recommendation.RecommendationRepository = (*GormRecommendationRepository)(nil)
