package connection

import (
	"context"

	"github.com/google/uuid"
)

// WhereClause is one conjunctive filter for FindMany. Unset fields are ignored.
type WhereClause struct {
	CustomerID *uuid.UUID
	SupplierID *uuid.UUID
	Statuses   []RelationshipStatus
}

// WhereParticipant matches every relationship where companyID is on either side
func WhereParticipant(companyID uuid.UUID) []WhereClause {
	id := companyID
	return []WhereClause{
		{CustomerID: &id},
		{SupplierID: &id},
	}
}

// RelationshipRepository defines the interface for relationship persistence
type RelationshipRepository interface {
	// FindOne finds the relationship for an exact (supplier, customer) pair
	FindOne(ctx context.Context, supplierID, customerID uuid.UUID) (*CompanyRelationship, error)

	// FindByID finds a relationship by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*CompanyRelationship, error)

	// FindByIDWithCompanies finds a relationship with both companies populated
	FindByIDWithCompanies(ctx context.Context, id uuid.UUID) (*CompanyRelationship, error)

	// FindMany returns relationships matching any of the clauses
	FindMany(ctx context.Context, clauses ...WhereClause) ([]CompanyRelationship, error)

	// Save inserts a new relationship or updates an existing one using its version
	Save(ctx context.Context, relationship *CompanyRelationship) error

	// Delete removes relationships by id and returns the number removed
	Delete(ctx context.Context, ids []uuid.UUID) (int64, error)
}
