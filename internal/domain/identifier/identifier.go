// Package identifier models company identity data returned by the external
// financial-data provider and normalizes it into CompanyIdentifier records.
package identifier

import (
	"context"
	"errors"
)

// Scheme is one of the provider's two numbering schemes
type Scheme string

const (
	// SchemeDUNS is the canonical external id stored on internal companies
	SchemeDUNS Scheme = "DUNS"
	// SchemeProviderID is the provider's own company-graph id, used as the secondary id
	SchemeProviderID Scheme = "PROVIDER_ID"
)

// IsValid checks if the scheme is supported
func (s Scheme) IsValid() bool {
	return s == SchemeDUNS || s == SchemeProviderID
}

// ErrDataUnavailable is the provider's explicit "no data" signal. It is not a failure.
var ErrDataUnavailable = errors.New("identifier: data unavailable")

// Reference is a typed identifier value
type Reference struct {
	Scheme Scheme
	Value  string
}

// IdentityRecord is one identifier known to the provider for a company
type IdentityRecord struct {
	Scheme  Scheme `json:"scheme"`
	Value   string `json:"value"`
	Active  bool   `json:"active"`
	Primary bool   `json:"primary"`
}

// Outcome classifies the provider's answer for one requested identifier
type Outcome string

const (
	OutcomeResolved    Outcome = "resolved"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeFailed      Outcome = "failed"
)

// Resolution is the provider's answer for one requested identifier
type Resolution struct {
	Input      Reference
	Outcome    Outcome
	Name       string
	Identities []IdentityRecord
	Err        error
}

// Direction selects upstream or downstream related companies
type Direction string

const (
	DirectionCustomers Direction = "customers"
	DirectionSuppliers Direction = "suppliers"
)

// Candidate is a related company reported by the provider
type Candidate struct {
	// ProviderID is the candidate's top-level provider id, when present
	ProviderID               string
	Name                     string
	ProviderRelationshipType string
	Sector                   string
	Region                   string
	Country                  string
	// Identifiers is the nested identifier map keyed by scheme
	Identifiers map[Scheme]string
}

// CompanyIdentifier is the normalized identity of a company
type CompanyIdentifier struct {
	ExternalID  string
	SecondaryID string
	Name        string
	Identities  []IdentityRecord
}

// HasSecondaryID reports whether the identifier can form a dedup key
func (c CompanyIdentifier) HasSecondaryID() bool {
	return c.SecondaryID != ""
}

// Client is the port to the external provider
type Client interface {
	// ConvertIdentifiers resolves ids of the given scheme into full identity
	// lists. It returns one Resolution per input, in input order.
	ConvertIdentifiers(ctx context.Context, scheme Scheme, ids []string) ([]Resolution, error)

	// RelatedCompanies lists the provider's known customers or suppliers of a
	// company. It returns ErrDataUnavailable when the provider has no data.
	RelatedCompanies(ctx context.Context, ref Reference, direction Direction) ([]Candidate, error)
}
