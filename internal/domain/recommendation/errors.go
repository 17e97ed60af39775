package recommendation

import "github.com/carbonlink/backend/internal/domain/shared"

var (
	ErrStatusMismatch    = shared.NewDomainError("RECOMMENDATION_STATUS_CONFLICT", "Recommendation status has changed since it was read")
	ErrInvalidTransition = shared.NewDomainError("RECOMMENDATION_INVALID_TRANSITION", "Recommendation can only move from Unacknowledged to Accepted or Dismissed")
	ErrNotTarget         = shared.NewDomainError("RECOMMENDATION_FORBIDDEN", "Recommendation belongs to another company")
)
