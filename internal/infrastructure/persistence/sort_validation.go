package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Anything other than "asc" sorts descending.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
// Request parameters may use the JSON spelling (inStock) or the column name (stock).
func ValidateSortField(sortField string, allowedFields map[string]string, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if column, ok := allowedFields[trimmed]; ok {
		return column
	}
	return defaultField
}

// MenuItemSortFields maps accepted sort parameters to menu item columns
var MenuItemSortFields = map[string]string{
	"id":          "id",
	"created_at":  "created_at",
	"createdAt":   "created_at",
	"createdDate": "created_at",
	"updated_at":  "updated_at",
	"updatedAt":   "updated_at",
	"name":        "name",
	"description": "description",
	"price":       "price",
	"stock":       "stock",
	"inStock":     "stock",
	"enabled":     "enabled",
}

// BillSortFields maps accepted sort parameters to bill columns
var BillSortFields = map[string]string{
	"id":          "id",
	"created_at":  "created_at",
	"createdAt":   "created_at",
	"createdDate": "created_at",
	"updated_at":  "updated_at",
	"updatedAt":   "updated_at",
	"paid":        "paid",
	"total_price": "total_price",
	"totalPrice":  "total_price",
}
