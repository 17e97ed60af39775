package connection

import "github.com/google/uuid"

// Actor is the user performing an operation together with the company they
// are already known to belong to.
type Actor struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
}
