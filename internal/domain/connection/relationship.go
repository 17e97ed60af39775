package connection

import (
	"strings"

	"github.com/carbonlink/backend/internal/domain/audit"
	"github.com/carbonlink/backend/internal/domain/company"
	"github.com/carbonlink/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const maxNoteLength = 2000

// CompanyRelationship is a directional invitation or bilateral connection
// between a customer company and a supplier company.
// It is the aggregate root for connection negotiation.
type CompanyRelationship struct {
	shared.BaseAggregateRoot
	CustomerID         uuid.UUID
	SupplierID         uuid.UUID
	InviteType         InviteType
	Status             RelationshipStatus
	CustomerApproverID *uuid.UUID
	SupplierApproverID *uuid.UUID
	Note               string

	// Populated only by loaders that join the company rows
	Customer *company.Company
	Supplier *company.Company
}

// NewCompanyRelationship creates a relationship initiated by actor. The
// relationship waits on the non-initiating side's approval.
func NewCompanyRelationship(inviteType InviteType, customerID, supplierID uuid.UUID, note string, actor Actor) (*CompanyRelationship, error) {
	if !inviteType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INVITE_TYPE", "Invalid invite type")
	}
	if customerID == uuid.Nil || supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Customer and supplier must be set")
	}
	if customerID == supplierID {
		return nil, shared.NewDomainError("INVALID_COMPANY", "A company cannot connect to itself")
	}
	note, err := normalizeNote(note)
	if err != nil {
		return nil, err
	}

	r := &CompanyRelationship{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		SupplierID:        supplierID,
		InviteType:        inviteType,
		Note:              note,
	}
	initiator := inviteType.InitiatingSide()
	if r.companyFor(initiator) != actor.CompanyID {
		return nil, ErrOwnership
	}
	r.Status = AwaitingApprovalOf(initiator.Other())
	r.stampApprover(initiator, actor.UserID)

	r.AddDomainEvent(NewRelationshipCreatedEvent(r, initiator))
	return r, nil
}

// ActingSideFor derives the acting side from the caller's company
func (r *CompanyRelationship) ActingSideFor(companyID uuid.UUID) (ActingSide, error) {
	switch companyID {
	case r.CustomerID:
		return SideCustomer, nil
	case r.SupplierID:
		return SideSupplier, nil
	}
	return "", ErrOwnership
}

// CounterpartyOf returns the company id on the other side of side
func (r *CompanyRelationship) CounterpartyOf(side ActingSide) uuid.UUID {
	return r.companyFor(side.Other())
}

// Update applies a requested status and/or note change on behalf of actor.
// Nothing is mutated when the requested transition is not allowed.
func (r *CompanyRelationship) Update(status *RelationshipStatus, note *string, actor Actor) error {
	side, err := r.ActingSideFor(actor.CompanyID)
	if err != nil {
		return err
	}

	statusChanged := status != nil && *status != r.Status
	if statusChanged && !IsValidTransition(r.Status, *status, side) {
		return ErrIllegalTransition
	}

	var newNote string
	if note != nil {
		newNote, err = normalizeNote(*note)
		if err != nil {
			return err
		}
	}

	previous := r.Status
	if statusChanged {
		r.Status = *status
	}
	if note != nil {
		r.Note = newNote
	}
	r.stampApprover(side, actor.UserID)
	r.Touch()
	r.IncrementVersion()

	if statusChanged {
		r.AddDomainEvent(NewRelationshipStatusChangedEvent(r, side, previous))
	}
	return nil
}

// Snapshot returns the audited fields of the relationship
func (r *CompanyRelationship) Snapshot() audit.Snapshot {
	return audit.Snapshot{
		"id":                   r.ID.String(),
		"customer_id":          r.CustomerID.String(),
		"supplier_id":          r.SupplierID.String(),
		"invite_type":          string(r.InviteType),
		"status":               string(r.Status),
		"customer_approver_id": optionalID(r.CustomerApproverID),
		"supplier_approver_id": optionalID(r.SupplierApproverID),
		"note":                 r.Note,
	}
}

func optionalID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func (r *CompanyRelationship) companyFor(side ActingSide) uuid.UUID {
	if side == SideCustomer {
		return r.CustomerID
	}
	return r.SupplierID
}

func (r *CompanyRelationship) stampApprover(side ActingSide, userID uuid.UUID) {
	id := userID
	if side == SideCustomer {
		r.CustomerApproverID = &id
		return
	}
	r.SupplierApproverID = &id
}

func normalizeNote(note string) (string, error) {
	note = strings.TrimSpace(note)
	if len(note) > maxNoteLength {
		return "", shared.NewDomainError("INVALID_NOTE", "Note cannot exceed 2000 characters")
	}
	return note, nil
}
