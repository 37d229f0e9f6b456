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

// Common allowed sort fields for entities with base fields

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// PlantSortFields contains allowed sort fields for plants
var PlantSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"location":   true,
	"capacity":   true,
	"active":     true,
}

// VehicleSortFields contains allowed sort fields for vehicles
var VehicleSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"plate":      true,
	"capacity":   true,
	"active":     true,
}

// ClientSortFields contains allowed sort fields for clients
var ClientSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"name":        true,
	"client_type": true,
	"status":      true,
}

// RouteSortFields contains allowed sort fields for routes
var RouteSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"route_number": true,
	"status":       true,
	"planned_date": true,
	"started_at":   true,
	"finished_at":  true,
	"closed_at":    true,
	"assigned_qty": true,
}

// MovementSortFields contains allowed sort fields for ledger movements
var MovementSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"occurred_at":   true,
	"movement_type": true,
	"quantity":      true,
}

// AnomalySortFields contains allowed sort fields for anomalies
var AnomalySortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"anomaly_type": true,
	"severity":     true,
	"status":       true,
}
