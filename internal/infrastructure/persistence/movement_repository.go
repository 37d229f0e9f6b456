package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fleet/backend/internal/domain/ledger"
	"github.com/fleet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMovementRepository implements MovementRepository using GORM.
// The table is append-only: there are no update or delete paths.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append writes a single movement
func (r *GormMovementRepository) Append(ctx context.Context, movement *ledger.Movement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// AppendAll writes several movements as one unit
func (r *GormMovementRepository) AppendAll(ctx context.Context, movements ...*ledger.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&movements).Error
}

// FindByID finds a movement by its ID
func (r *GormMovementRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Movement, error) {
	var movement ledger.Movement
	if err := r.db.WithContext(ctx).
		First(&movement, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindByReference finds all movements caused by a reference document
func (r *GormMovementRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, refType ledger.ReferenceType, refID uuid.UUID) ([]ledger.Movement, error) {
	var movements []ledger.Movement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ?", tenantID, refType, refID).
		Order("occurred_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindAllForTenant finds all movements for a tenant
func (r *GormMovementRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ledger.Movement, error) {
	var movements []ledger.Movement
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&ledger.Movement{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// CountForTenant counts movements for a tenant
func (r *GormMovementRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&ledger.Movement{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// BalanceOf folds the signed quantities of every movement at a location
func (r *GormMovementRepository) BalanceOf(ctx context.Context, tenantID uuid.UUID, location ledger.LocationRef) (decimal.Decimal, error) {
	return r.balanceOf(ctx, tenantID, location, false)
}

// BalanceOfForUpdate is BalanceOf with the location's rows locked until the
// enclosing transaction ends
func (r *GormMovementRepository) BalanceOfForUpdate(ctx context.Context, tenantID uuid.UUID, location ledger.LocationRef) (decimal.Decimal, error) {
	return r.balanceOf(ctx, tenantID, location, true)
}

func (r *GormMovementRepository) balanceOf(ctx context.Context, tenantID uuid.UUID, location ledger.LocationRef, lock bool) (decimal.Decimal, error) {
	if !location.IsValid() {
		return decimal.Zero, shared.NewValidationError("Balance query must reference exactly one plant or vehicle")
	}

	query := r.db.WithContext(ctx).Model(&ledger.Movement{}).Where("tenant_id = ?", tenantID)
	if location.IsVehicle() {
		query = query.Where("vehicle_id = ?", *location.VehicleID)
	} else {
		query = query.Where("plant_id = ?", *location.PlantID)
	}
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var result struct {
		Total decimal.Decimal
	}
	if err := query.Select("COALESCE(SUM(quantity), 0) as total").Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// TotalInPlants sums balances across all plant locations of a tenant
func (r *GormMovementRepository) TotalInPlants(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	return r.sumWhere(ctx, "tenant_id = ? AND plant_id IS NOT NULL", tenantID)
}

// TotalInVehicles sums balances across all vehicle locations of a tenant
func (r *GormMovementRepository) TotalInVehicles(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	return r.sumWhere(ctx, "tenant_id = ? AND vehicle_id IS NOT NULL", tenantID)
}

// SumDeliveredSince sums the magnitude of delivery-referenced outflows
// recorded at or after the given time
func (r *GormMovementRepository) SumDeliveredSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&ledger.Movement{}).
		Select("COALESCE(SUM(-quantity), 0) as total").
		Where("tenant_id = ? AND reference_type = ? AND quantity < 0 AND occurred_at >= ?",
			tenantID, ledger.ReferenceTypeDelivery, since).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (r *GormMovementRepository) sumWhere(ctx context.Context, cond string, args ...interface{}) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&ledger.Movement{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where(cond, args...).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// applyFilter applies filter options to the query
func (r *GormMovementRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	orderBy := ValidateSortField(filter.OrderBy, MovementSortFields, "occurred_at")
	orderDir := "ASC"
	if strings.ToLower(filter.OrderDir) != "asc" {
		orderDir = "DESC"
	}
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormMovementRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "plant_id":
			query = query.Where("plant_id = ?", value)
		case "vehicle_id":
			query = query.Where("vehicle_id = ?", value)
		case "movement_type":
			query = query.Where("movement_type = ?", value)
		case "reference_type":
			query = query.Where("reference_type = ?", value)
		case "reference_id":
			query = query.Where("reference_id = ?", value)
		case "start_date":
			query = query.Where("occurred_at >= ?", value)
		case "end_date":
			query = query.Where("occurred_at <= ?", value)
		case "created_by":
			query = query.Where("created_by = ?", value)
		}
	}

	return query
}

// Ensure GormMovementRepository implements MovementRepository
var _ ledger.MovementRepository = (*GormMovementRepository)(nil)
