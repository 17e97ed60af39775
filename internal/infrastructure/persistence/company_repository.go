package persistence

import (
	"context"
	"errors"

	"github.com/carbonlink/backend/internal/domain/company"
	"github.com/carbonlink/backend/internal/domain/shared"
	"github.com/carbonlink/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCompanyRepository implements CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds a company by its ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple companies by their IDs
func (r *GormCompanyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]company.Company, error) {
	if len(ids) == 0 {
		return []company.Company{}, nil
	}

	var companyModels []models.CompanyModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&companyModels).Error; err != nil {
		return nil, err
	}
	return toCompanies(companyModels), nil
}

// FindWithExternalID returns every company with a canonical external id in
// a stable order, so cursor offsets stay meaningful between runs.
func (r *GormCompanyRepository) FindWithExternalID(ctx context.Context) ([]company.Company, error) {
	var companyModels []models.CompanyModel
	if err := r.db.WithContext(ctx).
		Where("external_id IS NOT NULL AND external_id <> ''").
		Order("created_at ASC, id ASC").
		Find(&companyModels).Error; err != nil {
		return nil, err
	}
	return toCompanies(companyModels), nil
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, c *company.Company) error {
	return r.db.WithContext(ctx).Save(models.CompanyModelFromDomain(c)).Error
}

func toCompanies(companyModels []models.CompanyModel) []company.Company {
	companies := make([]company.Company, len(companyModels))
	for i := range companyModels {
		companies[i] = *companyModels[i].ToDomain()
	}
	return companies
}

// GormMemberDirectory implements company.MemberDirectory using GORM
type GormMemberDirectory struct {
	db *gorm.DB
}

// NewGormMemberDirectory creates a new GormMemberDirectory
func NewGormMemberDirectory(db *gorm.DB) *GormMemberDirectory {
	return &GormMemberDirectory{db: db}
}

// FindConnectionManagers lists the members allowed to manage the company's connections
func (d *GormMemberDirectory) FindConnectionManagers(ctx context.Context, companyID uuid.UUID) ([]company.Member, error) {
	var memberModels []models.CompanyMemberModel
	if err := d.db.WithContext(ctx).
		Where("company_id = ? AND can_manage_connections = ?", companyID, true).
		Order("email ASC").
		Find(&memberModels).Error; err != nil {
		return nil, err
	}

	members := make([]company.Member, len(memberModels))
	for i := range memberModels {
		members[i] = memberModels[i].ToDomain()
	}
	return members, nil
}

// Add registers a member; used by onboarding tooling and tests
func (d *GormMemberDirectory) Add(ctx context.Context, member company.Member) error {
	return d.db.WithContext(ctx).Create(&models.CompanyMemberModel{
		CompanyID:            member.CompanyID,
		UserID:               member.UserID,
		Email:                member.Email,
		CanManageConnections: member.CanManageConnections,
	}).Error
}

var (
	_ company.CompanyRepository = (*GormCompanyRepository)(nil)
	_ company.MemberDirectory   = (*GormMemberDirectory)(nil)
)
