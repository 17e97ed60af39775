// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: shared persistence fields (BaseModel, AggregateModel)
//   - company.go: companies and company_members
//   - connection.go: company_relationships
//   - recommendation.go: company_relationship_recommendations
//   - support.go: key_values, audit_logs, notifications
package models
