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

// GormPlantRepository implements PlantRepository using GORM
type GormPlantRepository struct {
	db *gorm.DB
}

// NewGormPlantRepository creates a new GormPlantRepository
func NewGormPlantRepository(db *gorm.DB) *GormPlantRepository {
	return &GormPlantRepository{db: db}
}

// FindByID finds a plant by its ID
func (r *GormPlantRepository) FindByID(ctx context.Context, id uuid.UUID) (*registry.Plant, error) {
	var plant registry.Plant
	if err := r.db.WithContext(ctx).First(&plant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plant, nil
}

// FindByIDForTenant finds a plant by ID scoped to a tenant
func (r *GormPlantRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*registry.Plant, error) {
	var plant registry.Plant
	if err := r.db.WithContext(ctx).
		First(&plant, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plant, nil
}

// FindAllForTenant finds all plants for a tenant
func (r *GormPlantRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]registry.Plant, error) {
	var plants []registry.Plant
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&registry.Plant{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&plants).Error; err != nil {
		return nil, err
	}
	return plants, nil
}

// CountForTenant counts plants for a tenant
func (r *GormPlantRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&registry.Plant{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists a plant
func (r *GormPlantRepository) Save(ctx context.Context, plant *registry.Plant) error {
	return r.db.WithContext(ctx).Save(plant).Error
}

// applyFilter applies filter options to the query
func (r *GormPlantRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, PlantSortFields, "name")
	orderDir := "DESC"
	if strings.ToLower(filter.OrderDir) != "desc" {
		orderDir = "ASC"
	}
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPlantRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "active":
			query = query.Where("active = ?", value)
		}
	}

	return query
}

// Ensure GormPlantRepository implements PlantRepository
var _ registry.PlantRepository = (*GormPlantRepository)(nil)
