// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFleetMetricsProvider implements FleetMetricsProvider using GORM.
// It queries the routes and anomalies tables directly for aggregated metrics.
type GormFleetMetricsProvider struct {
	db *gorm.DB
}

// NewGormFleetMetricsProvider creates a new GormFleetMetricsProvider.
func NewGormFleetMetricsProvider(db *gorm.DB) *GormFleetMetricsProvider {
	return &GormFleetMetricsProvider{db: db}
}

// GetOpenRouteCountByPlant returns the number of non-terminal routes per plant for a tenant.
func (p *GormFleetMetricsProvider) GetOpenRouteCountByPlant(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]int64, error) {
	type result struct {
		PlantID   uuid.UUID `gorm:"column:plant_id"`
		OpenCount int64     `gorm:"column:open_count"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("routes").
		Select("plant_id, COUNT(*) as open_count").
		Where("tenant_id = ?", tenantID).
		Where("status IN ?", []string{"PLANNED", "IN_PROGRESS", "PENDING_RETURN_REVIEW"}).
		Group("plant_id").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	m := make(map[uuid.UUID]int64, len(results))
	for _, r := range results {
		m[r.PlantID] = r.OpenCount
	}

	return m, nil
}

// GetOpenAnomalyCount returns the number of unresolved anomalies for a tenant.
func (p *GormFleetMetricsProvider) GetOpenAnomalyCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("anomalies").
		Where("tenant_id = ?", tenantID).
		Where("status IN ?", []string{"NEW", "IN_REVIEW"}).
		Count(&count).Error

	return count, err
}

// GormTenantProvider implements TenantProvider using GORM.
// Tenants are inferred from the plant registry since identity management
// lives outside this service.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetActiveTenantIDs returns all tenant IDs with at least one active plant.
func (p *GormTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("plants").
		Distinct("tenant_id").
		Where("active = ?", true).
		Find(&ids).Error

	return ids, err
}
