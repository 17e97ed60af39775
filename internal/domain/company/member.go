package company

import "github.com/google/uuid"

// Member is a user authorized to act on behalf of a company
type Member struct {
	CompanyID            uuid.UUID
	UserID               uuid.UUID
	Email                string
	CanManageConnections bool
}
