package connection

import "github.com/carbonlink/backend/internal/domain/shared"

// Error codes returned by relationship operations
const (
	CodeOwnership         = "RELATIONSHIP_OWNERSHIP"
	CodeAlreadyConnected  = "RELATIONSHIP_ALREADY_CONNECTED"
	CodeAlreadyPending    = "RELATIONSHIP_ALREADY_PENDING"
	CodeAlreadyRejected   = "RELATIONSHIP_ALREADY_REJECTED"
	CodeIllegalTransition = "RELATIONSHIP_ILLEGAL_TRANSITION"
	CodeCompaniesNotFound = "COMPANIES_NOT_FOUND"
	CodeNotFound          = "RELATIONSHIP_NOT_FOUND"
)

var (
	ErrOwnership         = shared.NewDomainError(CodeOwnership, "Acting company is not a party to this relationship")
	ErrAlreadyConnected  = shared.NewDomainError(CodeAlreadyConnected, "Companies are already connected")
	ErrAlreadyPending    = shared.NewDomainError(CodeAlreadyPending, "A connection request between these companies is already pending")
	ErrAlreadyRejected   = shared.NewDomainError(CodeAlreadyRejected, "A connection request between these companies was rejected, re-send the existing request instead")
	ErrIllegalTransition = shared.NewDomainError(CodeIllegalTransition, "Status transition is not allowed for the acting company")
	ErrCompaniesNotFound = shared.NewDomainError(CodeCompaniesNotFound, "One or both companies could not be found")
	ErrNotFound          = shared.NewDomainError(CodeNotFound, "Relationship not found")
)

// IsOwnershipError reports whether err is an ownership error
func IsOwnershipError(err error) bool {
	return shared.HasCode(err, CodeOwnership)
}

// IsStateConflict reports whether err is one of the state-conflict errors
func IsStateConflict(err error) bool {
	return shared.HasCode(err, CodeAlreadyConnected) ||
		shared.HasCode(err, CodeAlreadyPending) ||
		shared.HasCode(err, CodeAlreadyRejected) ||
		shared.HasCode(err, CodeIllegalTransition)
}

// IsNotFound reports whether err is a not-found error for companies or relationships
func IsNotFound(err error) bool {
	return shared.HasCode(err, CodeNotFound) || shared.HasCode(err, CodeCompaniesNotFound)
}

// ConflictFor returns the conflict error describing an existing relationship's status
func ConflictFor(status RelationshipStatus) error {
	switch {
	case status == StatusApproved:
		return ErrAlreadyConnected
	case status.IsPending():
		return ErrAlreadyPending
	case status.IsRejected():
		return ErrAlreadyRejected
	}
	return shared.ErrInvalidState
}
