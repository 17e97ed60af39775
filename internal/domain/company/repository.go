package company

import (
	"context"

	"github.com/google/uuid"
)

// CompanyRepository defines the interface for company persistence
type CompanyRepository interface {
	// FindByID finds a company by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)

	// FindByIDs finds multiple companies by their IDs; missing ids are omitted
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Company, error)

	// FindWithExternalID returns every company with a canonical external id,
	// in a stable order (created_at, id)
	FindWithExternalID(ctx context.Context) ([]Company, error)

	// Save creates or updates a company
	Save(ctx context.Context, company *Company) error
}

// MemberDirectory resolves the users allowed to manage a company's connections
type MemberDirectory interface {
	FindConnectionManagers(ctx context.Context, companyID uuid.UUID) ([]Member, error)
}
