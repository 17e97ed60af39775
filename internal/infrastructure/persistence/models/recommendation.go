package models

import (
	"time"

	"github.com/carbonlink/backend/internal/domain/recommendation"
	"github.com/google/uuid"
)

// RecommendationModel is the persistence model for a relationship recommendation.
// (target_company_id, secondary_id, relationship_type) is unique.
type RecommendationModel struct {
	BaseModel
	TargetCompanyID          uuid.UUID                       `gorm:"type:uuid;not null;uniqueIndex:uq_recommendations_lookup,priority:1"`
	ExternalID               *string                         `gorm:"type:varchar(50);index"`
	SecondaryID              string                          `gorm:"type:varchar(100);not null;uniqueIndex:uq_recommendations_lookup,priority:2;index"`
	RelationshipType         recommendation.RelationshipType `gorm:"type:varchar(20);not null;uniqueIndex:uq_recommendations_lookup,priority:3"`
	ProviderRelationshipType string                          `gorm:"type:varchar(100);not null;default:''"`
	Status                   recommendation.Status           `gorm:"type:varchar(20);not null;default:'Unacknowledged'"`
	ReviewedBy               *uuid.UUID                      `gorm:"type:uuid"`
	ReviewedAt               *time.Time
	Name                     string `gorm:"type:varchar(255);not null;default:''"`
	Sector                   string `gorm:"type:varchar(255);not null;default:''"`
	Region                   string `gorm:"type:varchar(100);not null;default:''"`
	Country                  string `gorm:"type:varchar(100);not null;default:''"`
	Deleted                  bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (RecommendationModel) TableName() string {
	return "company_relationship_recommendations"
}

// ToDomain converts the persistence model to a domain Recommendation.
func (m *RecommendationModel) ToDomain() *recommendation.Recommendation {
	return &recommendation.Recommendation{
		BaseEntity:               m.BaseModel.ToDomain(),
		TargetCompanyID:          m.TargetCompanyID,
		ExternalID:               m.ExternalID,
		SecondaryID:              m.SecondaryID,
		RelationshipType:         m.RelationshipType,
		ProviderRelationshipType: m.ProviderRelationshipType,
		Status:                   m.Status,
		ReviewedBy:               m.ReviewedBy,
		ReviewedAt:               m.ReviewedAt,
		BusinessData: recommendation.BusinessData{
			Name:    m.Name,
			Sector:  m.Sector,
			Region:  m.Region,
			Country: m.Country,
		},
		Deleted: m.Deleted,
	}
}

// FromDomain populates the persistence model from a domain Recommendation.
func (m *RecommendationModel) FromDomain(r *recommendation.Recommendation) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.TargetCompanyID = r.TargetCompanyID
	m.ExternalID = r.ExternalID
	m.SecondaryID = r.SecondaryID
	m.RelationshipType = r.RelationshipType
	m.ProviderRelationshipType = r.ProviderRelationshipType
	m.Status = r.Status
	m.ReviewedBy = r.ReviewedBy
	m.ReviewedAt = r.ReviewedAt
	m.Name = r.Name
	m.Sector = r.Sector
	m.Region = r.Region
	m.Country = r.Country
	m.Deleted = r.Deleted
}

// RecommendationModelFromDomain creates a new persistence model from a domain Recommendation.
func RecommendationModelFromDomain(r *recommendation.Recommendation) *RecommendationModel {
	m := &RecommendationModel{}
	m.FromDomain(r)
	return m
}

// RecommendationViewRow is the scan target of the recommendation list query
type RecommendationViewRow struct {
	RecommendationModel
	CandidateCompanyID *uuid.UUID `gorm:"column:candidate_company_id"`
	RelationshipID     *uuid.UUID `gorm:"column:relationship_id"`
}

// ToDomain converts the row to a domain View.
func (r *RecommendationViewRow) ToDomain() recommendation.View {
	return recommendation.View{
		Recommendation:     *r.RecommendationModel.ToDomain(),
		CandidateCompanyID: r.CandidateCompanyID,
		RelationshipID:     r.RelationshipID,
	}
}
