package recommendation

import (
	"time"

	"github.com/carbonlink/backend/internal/domain/recommendation"
	"github.com/google/uuid"
)

// ListRecommendationsFilter selects the recommendations shown to a company
type ListRecommendationsFilter struct {
	Statuses []recommendation.Status           `form:"status" binding:"omitempty,dive,oneof=Unacknowledged Accepted Dismissed"`
	Types    []recommendation.RelationshipType `form:"type" binding:"omitempty,dive,oneof=Customer Supplier"`
	Page     int                               `form:"page" binding:"omitempty,min=1"`
	PageSize int                               `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy   string                            `form:"sort_by" binding:"omitempty,oneof=created_at name status relationship_type country"`
	SortDir  string                            `form:"sort_dir" binding:"omitempty,oneof=asc desc"`
}

// ReviewRecommendationInput is the decision taken on a recommendation
type ReviewRecommendationInput struct {
	Status recommendation.Status `json:"status" binding:"required,oneof=Accepted Dismissed"`
}

// RecommendationResponse represents a recommendation in API responses
type RecommendationResponse struct {
	ID                       uuid.UUID                       `json:"id"`
	TargetCompanyID          uuid.UUID                       `json:"target_company_id"`
	ExternalID               *string                         `json:"external_id,omitempty"`
	SecondaryID              string                          `json:"secondary_id"`
	RelationshipType         recommendation.RelationshipType `json:"relationship_type"`
	ProviderRelationshipType string                          `json:"provider_relationship_type,omitempty"`
	Status                   recommendation.Status           `json:"status"`
	ReviewedBy               *uuid.UUID                      `json:"reviewed_by,omitempty"`
	ReviewedAt               *time.Time                      `json:"reviewed_at,omitempty"`
	Name                     string                          `json:"name"`
	Sector                   string                          `json:"sector,omitempty"`
	Region                   string                          `json:"region,omitempty"`
	Country                  string                          `json:"country,omitempty"`
	// CandidateCompanyID is set when the candidate is already a platform company
	CandidateCompanyID *uuid.UUID `json:"candidate_company_id,omitempty"`
	// RelationshipID is set when the two companies already have a relationship
	RelationshipID *uuid.UUID `json:"relationship_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToRecommendationResponse converts a recommendation view to a response
func ToRecommendationResponse(v recommendation.View) RecommendationResponse {
	return RecommendationResponse{
		ID:                       v.ID,
		TargetCompanyID:          v.TargetCompanyID,
		ExternalID:               v.ExternalID,
		SecondaryID:              v.SecondaryID,
		RelationshipType:         v.RelationshipType,
		ProviderRelationshipType: v.ProviderRelationshipType,
		Status:                   v.Status,
		ReviewedBy:               v.ReviewedBy,
		ReviewedAt:               v.ReviewedAt,
		Name:                     v.Name,
		Sector:                   v.Sector,
		Region:                   v.Region,
		Country:                  v.Country,
		CandidateCompanyID:       v.CandidateCompanyID,
		RelationshipID:           v.RelationshipID,
		CreatedAt:                v.CreatedAt,
	}
}
