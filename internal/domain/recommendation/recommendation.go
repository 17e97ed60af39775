package recommendation

import (
	"strings"
	"time"

	"github.com/carbonlink/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status represents the review state of a recommendation
type Status string

const (
	StatusUnacknowledged Status = "Unacknowledged"
	StatusAccepted       Status = "Accepted"
	StatusDismissed      Status = "Dismissed"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	return s == StatusUnacknowledged || s == StatusAccepted || s == StatusDismissed
}

// IsTerminal reports whether no further review is possible
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusDismissed
}

// CanTransitionTo checks if a recommendation can move from s to target
func (s Status) CanTransitionTo(target Status) bool {
	return s == StatusUnacknowledged && target.IsTerminal()
}

// RelationshipType is the role the candidate company would play for the target company
type RelationshipType string

const (
	TypeCustomer RelationshipType = "Customer"
	TypeSupplier RelationshipType = "Supplier"
)

// IsValid checks if the relationship type is a known value
func (t RelationshipType) IsValid() bool {
	return t == TypeCustomer || t == TypeSupplier
}

// providerTypeAliases is checked in order; the first substring match wins
var providerTypeAliases = []struct {
	alias string
	typ   RelationshipType
}{
	{"customer", TypeCustomer},
	{"client", TypeCustomer},
	{"buyer", TypeCustomer},
	{"distributor", TypeCustomer},
	{"supplier", TypeSupplier},
	{"vendor", TypeSupplier},
	{"provider", TypeSupplier},
	{"contractor", TypeSupplier},
}

// MapProviderType maps a relationship type string reported by the data provider
// onto the internal two-valued type. The fallback is used for unknown strings.
func MapProviderType(raw string, fallback RelationshipType) RelationshipType {
	key := strings.ToLower(strings.TrimSpace(raw))
	for _, a := range providerTypeAliases {
		if strings.Contains(key, a.alias) {
			return a.typ
		}
	}
	return fallback
}

// BusinessData holds descriptive fields that may be enriched after creation
type BusinessData struct {
	Name    string
	Sector  string
	Region  string
	Country string
}

// IsEmpty reports whether no descriptive field is set
func (d BusinessData) IsEmpty() bool {
	return d.Name == "" && d.Sector == "" && d.Region == "" && d.Country == ""
}

// Recommendation is a system-suggested relationship between the target
// company and an external candidate company.
type Recommendation struct {
	shared.BaseEntity
	TargetCompanyID          uuid.UUID
	ExternalID               *string
	SecondaryID              string
	RelationshipType         RelationshipType
	ProviderRelationshipType string
	Status                   Status
	ReviewedBy               *uuid.UUID
	ReviewedAt               *time.Time
	BusinessData
	Deleted bool
}

// NewRecommendation creates an unacknowledged recommendation
func NewRecommendation(targetCompanyID uuid.UUID, secondaryID string, relType RelationshipType, providerType string, externalID *string, data BusinessData) (*Recommendation, error) {
	if targetCompanyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TARGET_COMPANY", "Target company is required")
	}
	secondaryID = strings.TrimSpace(secondaryID)
	if secondaryID == "" {
		return nil, shared.NewDomainError("INVALID_SECONDARY_ID", "Secondary id is required")
	}
	if !relType.IsValid() {
		return nil, shared.NewDomainError("INVALID_RELATIONSHIP_TYPE", "Invalid relationship type")
	}
	if externalID != nil && strings.TrimSpace(*externalID) == "" {
		externalID = nil
	}

	return &Recommendation{
		BaseEntity:               shared.NewBaseEntity(),
		TargetCompanyID:          targetCompanyID,
		ExternalID:               externalID,
		SecondaryID:              secondaryID,
		RelationshipType:         relType,
		ProviderRelationshipType: providerType,
		Status:                   StatusUnacknowledged,
		BusinessData:             data,
	}, nil
}

// Lookup returns the dedup key of the recommendation
func (r *Recommendation) Lookup() TargetedLookup {
	return TargetedLookup{
		TargetCompanyID:  r.TargetCompanyID,
		SecondaryID:      r.SecondaryID,
		RelationshipType: r.RelationshipType,
	}
}

// TargetedLookup is the uniqueness key of a recommendation
type TargetedLookup struct {
	TargetCompanyID  uuid.UUID
	SecondaryID      string
	RelationshipType RelationshipType
}

// StatusTypeQuery selects recommendations for a target company by status and type.
// Empty slices match every value.
type StatusTypeQuery struct {
	TargetCompanyID uuid.UUID
	Statuses        []Status
	Types           []RelationshipType
	IncludeDeleted  bool
	Filter          shared.Filter
}

// StatusUpdate is an optimistic status change; it only applies while the
// stored status still equals From.
type StatusUpdate struct {
	ID       uuid.UUID
	From     Status
	To       Status
	Reviewer uuid.UUID
}

// Validate checks the requested transition
func (u StatusUpdate) Validate() error {
	if !u.From.CanTransitionTo(u.To) {
		return ErrInvalidTransition
	}
	return nil
}

// View is a recommendation joined with what the platform already knows about
// the candidate: the matching internal company and any relationship between them.
type View struct {
	Recommendation
	CandidateCompanyID *uuid.UUID
	RelationshipID     *uuid.UUID
}
