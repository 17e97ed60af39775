package company

import (
	"strings"

	"github.com/carbonlink/backend/internal/domain/shared"
)

// Status represents the lifecycle status of a company on the platform
type Status string

const (
	StatusActive   Status = "active"
	StatusPending  Status = "pending"
	StatusVetoed   Status = "vetoed"
	StatusDeclined Status = "declined"
	StatusArchived Status = "archived"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusPending, StatusVetoed, StatusDeclined, StatusArchived:
		return true
	}
	return false
}

// Company is an internal company known to the platform.
// ExternalID holds the canonical (DUNS) identifier used by the data provider.
type Company struct {
	shared.BaseEntity
	Name       string
	ExternalID *string
	Status     Status
	CRMID      *string
}

// NewCompany creates a pending company
func NewCompany(name string, externalID *string) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Company name cannot be empty")
	}
	if len(name) > 255 {
		return nil, shared.NewDomainError("INVALID_NAME", "Company name cannot exceed 255 characters")
	}
	if externalID != nil {
		trimmed := strings.TrimSpace(*externalID)
		if trimmed == "" {
			externalID = nil
		} else {
			externalID = &trimmed
		}
	}

	return &Company{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		ExternalID: externalID,
		Status:     StatusPending,
	}, nil
}

// HasExternalID reports whether the company has a canonical external id
func (c *Company) HasExternalID() bool {
	return c.ExternalID != nil && *c.ExternalID != ""
}

// ExternalIDValue returns the canonical external id or an empty string
func (c *Company) ExternalIDValue() string {
	if c.ExternalID == nil {
		return ""
	}
	return *c.ExternalID
}

// SetStatus changes the lifecycle status
func (c *Company) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid company status")
	}
	c.Status = status
	c.Touch()
	return nil
}
