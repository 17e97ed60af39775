package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormConnectionStatsProvider implements ConnectionStatsProvider using GORM.
// It aggregates the relationship and recommendation tables directly.
type GormConnectionStatsProvider struct {
	db *gorm.DB
}

// NewGormConnectionStatsProvider creates a new GormConnectionStatsProvider.
func NewGormConnectionStatsProvider(db *gorm.DB) *GormConnectionStatsProvider {
	return &GormConnectionStatsProvider{db: db}
}

// CountRelationshipsByStatus returns the number of relationships per status.
func (p *GormConnectionStatsProvider) CountRelationshipsByStatus(ctx context.Context) (map[string]int64, error) {
	type result struct {
		Status string `gorm:"column:status"`
		Total  int64  `gorm:"column:total"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("company_relationships").
		Select("status, COUNT(*) AS total").
		Group("status").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	m := make(map[string]int64, len(results))
	for _, r := range results {
		m[r.Status] = r.Total
	}
	return m, nil
}

// CountUnacknowledgedRecommendations returns the number of open, non-deleted recommendations.
func (p *GormConnectionStatsProvider) CountUnacknowledgedRecommendations(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("company_relationship_recommendations").
		Where("status = ? AND deleted = ?", "Unacknowledged", false).
		Count(&count).Error
	return count, err
}

var _ ConnectionStatsProvider = (*GormConnectionStatsProvider)(nil)
