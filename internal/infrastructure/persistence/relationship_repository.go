package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carbonlink/backend/internal/domain/connection"
	"github.com/carbonlink/backend/internal/domain/shared"
	"github.com/carbonlink/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRelationshipRepository implements RelationshipRepository using GORM
type GormRelationshipRepository struct {
	db *gorm.DB
}

// NewGormRelationshipRepository creates a new GormRelationshipRepository
func NewGormRelationshipRepository(db *gorm.DB) *GormRelationshipRepository {
	return &GormRelationshipRepository{db: db}
}

// FindOne finds the relationship for an exact (supplier, customer) pair
func (r *GormRelationshipRepository) FindOne(ctx context.Context, supplierID, customerID uuid.UUID) (*connection.CompanyRelationship, error) {
	var model models.RelationshipModel
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND customer_id = ?", supplierID, customerID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds a relationship by its ID
func (r *GormRelationshipRepository) FindByID(ctx context.Context, id uuid.UUID) (*connection.CompanyRelationship, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

// FindByIDWithCompanies finds a relationship with both companies preloaded
func (r *GormRelationshipRepository) FindByIDWithCompanies(ctx context.Context, id uuid.UUID) (*connection.CompanyRelationship, error) {
	return r.findByID(r.db.WithContext(ctx).Preload("Customer").Preload("Supplier"), id)
}

func (r *GormRelationshipRepository) findByID(query *gorm.DB, id uuid.UUID) (*connection.CompanyRelationship, error) {
	var model models.RelationshipModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindMany returns relationships matching any of the clauses, oldest first.
// Without clauses every relationship is returned.
func (r *GormRelationshipRepository) FindMany(ctx context.Context, clauses ...connection.WhereClause) ([]connection.CompanyRelationship, error) {
	query := r.db.WithContext(ctx).Model(&models.RelationshipModel{})
	if sql, args := buildWhereClauses(clauses); sql != "" {
		query = query.Where(sql, args...)
	}

	var relationshipModels []models.RelationshipModel
	if err := query.Order("created_at ASC, id ASC").Find(&relationshipModels).Error; err != nil {
		return nil, err
	}

	relationships := make([]connection.CompanyRelationship, len(relationshipModels))
	for i := range relationshipModels {
		relationships[i] = *relationshipModels[i].ToDomain()
	}
	return relationships, nil
}

// buildWhereClauses ORs the clauses together. A clause without fields matches
// every row, which disables filtering.
func buildWhereClauses(clauses []connection.WhereClause) (string, []any) {
	parts := make([]string, 0, len(clauses))
	var args []any
	for _, c := range clauses {
		var conds []string
		if c.CustomerID != nil {
			conds = append(conds, "customer_id = ?")
			args = append(args, *c.CustomerID)
		}
		if c.SupplierID != nil {
			conds = append(conds, "supplier_id = ?")
			args = append(args, *c.SupplierID)
		}
		if len(c.Statuses) > 0 {
			conds = append(conds, "status IN ?")
			args = append(args, c.Statuses)
		}
		if len(conds) == 0 {
			return "", nil
		}
		parts = append(parts, "("+strings.Join(conds, " AND ")+")")
	}
	return strings.Join(parts, " OR "), args
}

// Save inserts a new relationship (version 1) or updates an existing one with
// an optimistic version check. A concurrent insert of the same pair surfaces
// as shared.ErrAlreadyExists.
func (r *GormRelationshipRepository) Save(ctx context.Context, relationship *connection.CompanyRelationship) error {
	model := models.RelationshipModelFromDomain(relationship)

	if relationship.Version <= 1 {
		err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error
		if IsDuplicateKeyError(err) {
			return fmt.Errorf("relationship %s -> %s: %w", relationship.CustomerID, relationship.SupplierID, shared.ErrAlreadyExists)
		}
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&models.RelationshipModel{}).
		Where("id = ? AND version = ?", relationship.ID, relationship.Version-1).
		Updates(map[string]any{
			"status":               model.Status,
			"note":                 model.Note,
			"customer_approver_id": model.CustomerApproverID,
			"supplier_approver_id": model.SupplierApproverID,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes relationships by id and returns the number removed
func (r *GormRelationshipRepository) Delete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Delete(&models.RelationshipModel{}, "id IN ?", ids)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

var _ connection.RelationshipRepository = (*GormRelationshipRepository)(nil)
