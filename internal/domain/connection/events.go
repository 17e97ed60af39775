package connection

import (
	"github.com/carbonlink/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for CompanyRelationship
const AggregateTypeRelationship = "CompanyRelationship"

// Event type constants for CompanyRelationship
const (
	EventTypeRelationshipCreated       = "RelationshipCreated"
	EventTypeRelationshipStatusChanged = "RelationshipStatusChanged"
	EventTypeRelationshipsPurged       = "RelationshipsPurged"
)

// RelationshipCreatedEvent is published when a company sends a connection request
type RelationshipCreatedEvent struct {
	shared.BaseDomainEvent
	RelationshipID     uuid.UUID          `json:"relationship_id"`
	CustomerID         uuid.UUID          `json:"customer_id"`
	SupplierID         uuid.UUID          `json:"supplier_id"`
	InviteType         InviteType         `json:"invite_type"`
	Status             RelationshipStatus `json:"status"`
	SenderCompanyID    uuid.UUID          `json:"sender_company_id"`
	RecipientCompanyID uuid.UUID          `json:"recipient_company_id"`
	Direction          Direction          `json:"direction"`
	Note               string             `json:"note,omitempty"`
}

// NewRelationshipCreatedEvent creates a new RelationshipCreatedEvent
func NewRelationshipCreatedEvent(r *CompanyRelationship, sender ActingSide) *RelationshipCreatedEvent {
	return &RelationshipCreatedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeRelationshipCreated, AggregateTypeRelationship, r.ID),
		RelationshipID:     r.ID,
		CustomerID:         r.CustomerID,
		SupplierID:         r.SupplierID,
		InviteType:         r.InviteType,
		Status:             r.Status,
		SenderCompanyID:    r.companyFor(sender),
		RecipientCompanyID: r.CounterpartyOf(sender),
		Direction:          DirectionFrom(sender),
		Note:               r.Note,
	}
}

// RelationshipStatusChangedEvent is published when either side moves a relationship to a new status
type RelationshipStatusChangedEvent struct {
	shared.BaseDomainEvent
	RelationshipID     uuid.UUID          `json:"relationship_id"`
	CustomerID         uuid.UUID          `json:"customer_id"`
	SupplierID         uuid.UUID          `json:"supplier_id"`
	ActingSide         ActingSide         `json:"acting_side"`
	SenderCompanyID    uuid.UUID          `json:"sender_company_id"`
	RecipientCompanyID uuid.UUID          `json:"recipient_company_id"`
	Direction          Direction          `json:"direction"`
	FromStatus         RelationshipStatus `json:"from_status"`
	ToStatus           RelationshipStatus `json:"to_status"`
	Kind               NotificationKind   `json:"kind,omitempty"`
}

// NewRelationshipStatusChangedEvent creates a new RelationshipStatusChangedEvent
func NewRelationshipStatusChangedEvent(r *CompanyRelationship, side ActingSide, from RelationshipStatus) *RelationshipStatusChangedEvent {
	kind, _ := NotificationKindFor(from, r.Status)
	return &RelationshipStatusChangedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeRelationshipStatusChanged, AggregateTypeRelationship, r.ID),
		RelationshipID:     r.ID,
		CustomerID:         r.CustomerID,
		SupplierID:         r.SupplierID,
		ActingSide:         side,
		SenderCompanyID:    r.companyFor(side),
		RecipientCompanyID: r.CounterpartyOf(side),
		Direction:          DirectionFrom(side),
		FromStatus:         from,
		ToStatus:           r.Status,
		Kind:               kind,
	}
}

// RelationshipsPurgedEvent is published after a company's relationships are removed during offboarding
type RelationshipsPurgedEvent struct {
	shared.BaseDomainEvent
	CompanyID       uuid.UUID   `json:"company_id"`
	RelationshipIDs []uuid.UUID `json:"relationship_ids"`
}

// NewRelationshipsPurgedEvent creates a new RelationshipsPurgedEvent
func NewRelationshipsPurgedEvent(companyID uuid.UUID, ids []uuid.UUID) *RelationshipsPurgedEvent {
	return &RelationshipsPurgedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRelationshipsPurged, "Company", companyID),
		CompanyID:       companyID,
		RelationshipIDs: ids,
	}
}
