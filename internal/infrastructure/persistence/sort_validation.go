package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// RecommendationSortFields contains allowed sort fields for recommendation listings
var RecommendationSortFields = map[string]bool{
	"created_at":        true,
	"name":              true,
	"status":            true,
	"relationship_type": true,
	"country":           true,
}

// orderClause builds a whitelisted ORDER BY clause with id as tie-breaker.
// prefix is the table alias including the dot, or empty.
func orderClause(prefix, field, dir string, allowed map[string]bool, defaultField string) string {
	column := ValidateSortField(field, allowed, defaultField)
	return prefix + column + " " + ValidateSortOrder(dir) + ", " + prefix + "id ASC"
}
