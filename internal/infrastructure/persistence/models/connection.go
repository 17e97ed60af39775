package models

import (
	"github.com/carbonlink/backend/internal/domain/connection"
	"github.com/google/uuid"
)

// RelationshipModel is the persistence model for the CompanyRelationship aggregate.
type RelationshipModel struct {
	AggregateModel
	CustomerID         uuid.UUID                     `gorm:"type:uuid;not null;uniqueIndex:uq_company_relationships_pair,priority:1"`
	SupplierID         uuid.UUID                     `gorm:"type:uuid;not null;uniqueIndex:uq_company_relationships_pair,priority:2;index"`
	InviteType         connection.InviteType         `gorm:"type:varchar(40);not null"`
	Status             connection.RelationshipStatus `gorm:"type:varchar(40);not null;index"`
	CustomerApproverID *uuid.UUID                    `gorm:"type:uuid"`
	SupplierApproverID *uuid.UUID                    `gorm:"type:uuid"`
	Note               string                        `gorm:"type:text;not null;default:''"`

	Customer *CompanyModel `gorm:"foreignKey:CustomerID;references:ID"`
	Supplier *CompanyModel `gorm:"foreignKey:SupplierID;references:ID"`
}

// TableName returns the table name for GORM
func (RelationshipModel) TableName() string {
	return "company_relationships"
}

// ToDomain converts the persistence model to a domain CompanyRelationship.
// Preloaded companies are carried over when present.
func (m *RelationshipModel) ToDomain() *connection.CompanyRelationship {
	r := &connection.CompanyRelationship{
		BaseAggregateRoot:  m.AggregateModel.ToDomainAggregateRoot(),
		CustomerID:         m.CustomerID,
		SupplierID:         m.SupplierID,
		InviteType:         m.InviteType,
		Status:             m.Status,
		CustomerApproverID: m.CustomerApproverID,
		SupplierApproverID: m.SupplierApproverID,
		Note:               m.Note,
	}
	if m.Customer != nil {
		r.Customer = m.Customer.ToDomain()
	}
	if m.Supplier != nil {
		r.Supplier = m.Supplier.ToDomain()
	}
	return r
}

// FromDomain populates the persistence model from a domain CompanyRelationship.
// Company associations are never written through the relationship.
func (m *RelationshipModel) FromDomain(r *connection.CompanyRelationship) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.CustomerID = r.CustomerID
	m.SupplierID = r.SupplierID
	m.InviteType = r.InviteType
	m.Status = r.Status
	m.CustomerApproverID = r.CustomerApproverID
	m.SupplierApproverID = r.SupplierApproverID
	m.Note = r.Note
}

// RelationshipModelFromDomain creates a new persistence model from a domain CompanyRelationship.
func RelationshipModelFromDomain(r *connection.CompanyRelationship) *RelationshipModel {
	m := &RelationshipModel{}
	m.FromDomain(r)
	return m
}
