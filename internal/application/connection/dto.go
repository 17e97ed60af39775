package connection

import (
	"time"

	"github.com/carbonlink/backend/internal/domain/connection"
	"github.com/carbonlink/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateRelationshipInput represents a connection request sent by one company
type CreateRelationshipInput struct {
	InviteType connection.InviteType `json:"invite_type" binding:"required,oneof=CustomerInvitesSupplier SupplierInvitesCustomer"`
	SupplierID uuid.UUID             `json:"supplier_id" binding:"required"`
	CustomerID uuid.UUID             `json:"customer_id" binding:"required"`
	Note       string                `json:"note" binding:"max=2000"`
}

// UpdateRelationshipInput changes the status and/or note of a relationship
type UpdateRelationshipInput struct {
	Status *connection.RelationshipStatus `json:"status" binding:"omitempty,oneof=AwaitingCustomerApproval AwaitingSupplierApproval Approved RejectedByCustomer RejectedBySupplier"`
	Note   *string                        `json:"note" binding:"omitempty,max=2000"`
}

// CompanySummary is the part of a company shown alongside a relationship
type CompanySummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ExternalID *string   `json:"external_id,omitempty"`
}

// RelationshipResponse represents a relationship in API responses
type RelationshipResponse struct {
	ID                 uuid.UUID                     `json:"id"`
	CustomerID         uuid.UUID                     `json:"customer_id"`
	SupplierID         uuid.UUID                     `json:"supplier_id"`
	InviteType         connection.InviteType         `json:"invite_type"`
	Status             connection.RelationshipStatus `json:"status"`
	CustomerApproverID *uuid.UUID                    `json:"customer_approver_id,omitempty"`
	SupplierApproverID *uuid.UUID                    `json:"supplier_approver_id,omitempty"`
	Note               string                        `json:"note"`
	Customer           *CompanySummary               `json:"customer,omitempty"`
	Supplier           *CompanySummary               `json:"supplier,omitempty"`
	// AllowedTransitions lists the statuses the requesting company may move to next
	AllowedTransitions []connection.RelationshipStatus `json:"allowed_transitions,omitempty"`
	CreatedAt          time.Time                       `json:"created_at"`
	UpdatedAt          time.Time                       `json:"updated_at"`
	Version            int                             `json:"version"`
}

// RelationshipResult is the outcome of a mutating coordinator call
type RelationshipResult struct {
	Relationship *connection.CompanyRelationship
	// Events are the domain events published for the change
	Events []shared.DomainEvent
}

// ToRelationshipResponse converts a relationship for the given viewer company
func ToRelationshipResponse(r *connection.CompanyRelationship, viewer uuid.UUID) RelationshipResponse {
	resp := RelationshipResponse{
		ID:                 r.ID,
		CustomerID:         r.CustomerID,
		SupplierID:         r.SupplierID,
		InviteType:         r.InviteType,
		Status:             r.Status,
		CustomerApproverID: r.CustomerApproverID,
		SupplierApproverID: r.SupplierApproverID,
		Note:               r.Note,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		Version:            r.Version,
	}
	if r.Customer != nil {
		resp.Customer = &CompanySummary{ID: r.Customer.ID, Name: r.Customer.Name, ExternalID: r.Customer.ExternalID}
	}
	if r.Supplier != nil {
		resp.Supplier = &CompanySummary{ID: r.Supplier.ID, Name: r.Supplier.Name, ExternalID: r.Supplier.ExternalID}
	}
	if side, err := r.ActingSideFor(viewer); err == nil {
		resp.AllowedTransitions = connection.AllowedTransitions(r.Status, side)
	}
	return resp
}

// DeleteRelationshipsResponse reports an offboarding purge
type DeleteRelationshipsResponse struct {
	CompanyID uuid.UUID `json:"company_id"`
	Deleted   int       `json:"deleted"`
}
