package persistence

import (
	"strings"

	"github.com/epharmacy/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// validateSortOrder normalizes the sort order to ASC or DESC.
// Returns "DESC" if the input is invalid or empty.
func validateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// validateSortField validates the sort field against a whitelist of allowed columns.
// Returns the defaultField if the input is empty or not in the whitelist.
func validateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// commonSortFields contains columns present on every table
var commonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// sortFieldsWith extends commonSortFields with table-specific columns
func sortFieldsWith(extra ...string) map[string]bool {
	fields := make(map[string]bool, len(commonSortFields)+len(extra))
	for k := range commonSortFields {
		fields[k] = true
	}
	for _, f := range extra {
		fields[f] = true
	}
	return fields
}

// applyPagination applies page-based offset and limit to the query
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// applyOrdering applies whitelisted ordering to the query
func applyOrdering(query *gorm.DB, filter shared.Filter, allowedFields map[string]bool, defaultField string) *gorm.DB {
	field := validateSortField(filter.OrderBy, allowedFields, defaultField)
	return query.Order(field + " " + validateSortOrder(filter.OrderDir))
}
