package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/fleet/backend/internal/domain/registry"
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVehicleRepository implements VehicleRepository using GORM
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByID finds a vehicle by its ID
func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*registry.Vehicle, error) {
	var vehicle registry.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// FindByIDForTenant finds a vehicle by ID scoped to a tenant
func (r *GormVehicleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*registry.Vehicle, error) {
	var vehicle registry.Vehicle
	if err := r.db.WithContext(ctx).
		First(&vehicle, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// FindByPlate finds a vehicle by its plate
func (r *GormVehicleRepository) FindByPlate(ctx context.Context, tenantID uuid.UUID, plate string) (*registry.Vehicle, error) {
	var vehicle registry.Vehicle
	if err := r.db.WithContext(ctx).
		First(&vehicle, "tenant_id = ? AND plate = ?", tenantID, plate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// FindAllForTenant finds all vehicles for a tenant
func (r *GormVehicleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]registry.Vehicle, error) {
	var vehicles []registry.Vehicle
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&registry.Vehicle{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// CountForTenant counts vehicles for a tenant
func (r *GormVehicleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&registry.Vehicle{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists a vehicle
func (r *GormVehicleRepository) Save(ctx context.Context, vehicle *registry.Vehicle) error {
	return r.db.WithContext(ctx).Save(vehicle).Error
}

// applyFilter applies filter options to the query
func (r *GormVehicleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, VehicleSortFields, "plate")
	orderDir := "DESC"
	if strings.ToLower(filter.OrderDir) != "desc" {
		orderDir = "ASC"
	}
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormVehicleRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("plate ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "active":
			query = query.Where("active = ?", value)
		case "driver_id":
			query = query.Where("driver_id = ?", value)
		}
	}

	return query
}

// Ensure GormVehicleRepository implements VehicleRepository
var _ registry.VehicleRepository = (*GormVehicleRepository)(nil)
