package models

import (
	"github.com/carbonlink/backend/internal/domain/company"
	"github.com/google/uuid"
)

// CompanyModel is the persistence model for the Company read model.
type CompanyModel struct {
	BaseModel
	Name       string         `gorm:"type:varchar(255);not null"`
	ExternalID *string        `gorm:"type:varchar(50);uniqueIndex:uq_companies_external_id"`
	Status     company.Status `gorm:"type:varchar(20);not null;default:'pending'"`
	CRMID      *string        `gorm:"column:crm_id;type:varchar(100)"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the persistence model to a domain Company.
func (m *CompanyModel) ToDomain() *company.Company {
	return &company.Company{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		ExternalID: m.ExternalID,
		Status:     m.Status,
		CRMID:      m.CRMID,
	}
}

// FromDomain populates the persistence model from a domain Company.
func (m *CompanyModel) FromDomain(c *company.Company) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.ExternalID = c.ExternalID
	m.Status = c.Status
	m.CRMID = c.CRMID
}

// CompanyModelFromDomain creates a new persistence model from a domain Company.
func CompanyModelFromDomain(c *company.Company) *CompanyModel {
	m := &CompanyModel{}
	m.FromDomain(c)
	return m
}

// CompanyMemberModel links a user to a company.
type CompanyMemberModel struct {
	CompanyID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email                string    `gorm:"type:varchar(255);not null"`
	CanManageConnections bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CompanyMemberModel) TableName() string {
	return "company_members"
}

// ToDomain converts the persistence model to a domain Member.
func (m *CompanyMemberModel) ToDomain() company.Member {
	return company.Member{
		CompanyID:            m.CompanyID,
		UserID:               m.UserID,
		Email:                m.Email,
		CanManageConnections: m.CanManageConnections,
	}
}
